package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/carlmjohnson/requests"

	"miheater/internal/heater"
)

const (
	defaultBridgeTimeout = 5 * time.Second
	rpcPath              = "rpc"
)

// BridgeConfig addresses a device behind a local gateway. The gateway owns
// the device handshake, encryption and datagram framing; the bridge only
// forwards method calls.
type BridgeConfig struct {
	URL     string
	Host    string
	Token   string
	Timeout time.Duration
}

// Bridge sends JSON-RPC requests to the gateway over HTTP.
type Bridge struct {
	cfg    BridgeConfig
	client *http.Client
	nextID atomic.Int64
}

var _ heater.Transport = (*Bridge)(nil)

type rpcRequest struct {
	ID     int64  `json:"id"`
	Method string `json:"method"`
	Params []any  `json:"params"`
	Host   string `json:"host,omitempty"`
	Token  string `json:"token,omitempty"`
}

type rpcResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error,omitempty"`
}

func NewBridge(cfg BridgeConfig) *Bridge {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultBridgeTimeout
	}
	return &Bridge{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Send posts one request and returns the result values. A device error is
// returned as *RPCError.
func (b *Bridge) Send(ctx context.Context, method string, params []any) ([]any, error) {
	if params == nil {
		params = []any{}
	}
	req := rpcRequest{
		ID:     b.nextID.Add(1),
		Method: method,
		Params: params,
		Host:   b.cfg.Host,
		Token:  b.cfg.Token,
	}

	var resp rpcResponse
	err := requests.URL(b.cfg.URL).
		Path(rpcPath).
		Client(b.client).
		Method(http.MethodPost).
		BodyJSON(&req).
		ToJSON(&resp).
		Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	if resp.ID != req.ID {
		return nil, fmt.Errorf("%w: id %d for request %d", ErrBadResponse, resp.ID, req.ID)
	}
	return decodeResult(resp.Result)
}

// decodeResult normalises a result to a list: arrays are returned as is,
// any other JSON value becomes a single element.
func decodeResult(raw json.RawMessage) ([]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: missing result", ErrBadResponse)
	}
	if raw[0] == '[' {
		var out []any
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
		}
		return out, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return []any{v}, nil
}
