package heater

import (
	"context"
	"fmt"
	"sync"

	"miheater/internal/logger"
)

const (
	methodGetProp = "get_prop"
	methodInfo    = "miIO.info"
)

// Transport is a request/response channel to one physical device. It owns
// encryption, framing, timeouts and retries.
type Transport interface {
	Send(ctx context.Context, method string, params []any) ([]any, error)
}

// Ack is the device's acknowledgement of a command, returned uninterpreted.
type Ack []any

// DeviceInfo is the subset of miIO.info the client uses.
type DeviceInfo struct {
	Model           string `json:"model"`
	FirmwareVersion string `json:"fw_ver"`
	HardwareVersion string `json:"hw_ver"`
	MAC             string `json:"mac"`
}

// Client talks to one heater. The model is fixed once chosen: either
// explicitly via WithModel or later by ResolveModel.
type Client struct {
	transport Transport
	registry  *Registry
	log       *logger.Logger

	mu       sync.RWMutex
	model    ModelSpec
	explicit bool
}

type Option func(*Client)

// WithModel selects the model. Unknown identifiers fall back to DefaultModel.
func WithModel(id string) Option {
	return func(c *Client) {
		if id == "" {
			return
		}
		c.model = c.registry.Resolve(id)
		c.explicit = true
	}
}

// WithRegistry replaces the default model registry. It must precede
// WithModel in the option list.
func WithRegistry(r *Registry) Option {
	return func(c *Client) {
		if r != nil {
			c.registry = r
			c.model = r.Resolve(c.model.ID)
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New builds a client. It never fails: without WithModel the default model
// is used until ResolveModel is called.
func New(t Transport, opts ...Option) *Client {
	c := &Client{
		transport: t,
		registry:  DefaultRegistry(),
		log:       logger.Nop(),
	}
	c.model = c.registry.Resolve(DefaultModel)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the active model spec.
func (c *Client) Model() ModelSpec {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model.clone()
}

// Info queries the device identity.
func (c *Client) Info(ctx context.Context) (DeviceInfo, error) {
	res, err := c.transport.Send(ctx, methodInfo, nil)
	if err != nil {
		return DeviceInfo{}, err
	}
	if len(res) != 1 {
		return DeviceInfo{}, fmt.Errorf("%w: %s returned %d values", ErrUnexpectedResponse, methodInfo, len(res))
	}
	m, ok := res[0].(map[string]any)
	if !ok {
		return DeviceInfo{}, fmt.Errorf("%w: %s returned %T", ErrUnexpectedResponse, methodInfo, res[0])
	}
	str := func(key string) string {
		s, _ := m[key].(string)
		return s
	}
	return DeviceInfo{
		Model:           str("model"),
		FirmwareVersion: str("fw_ver"),
		HardwareVersion: str("hw_ver"),
		MAC:             str("mac"),
	}, nil
}

// ResolveModel selects the model reported by the device unless one was set
// explicitly. The reported identifier falls back to DefaultModel when unknown.
func (c *Client) ResolveModel(ctx context.Context) (ModelSpec, error) {
	c.mu.RLock()
	explicit := c.explicit
	c.mu.RUnlock()
	if explicit {
		return c.Model(), nil
	}

	info, err := c.Info(ctx)
	if err != nil {
		return ModelSpec{}, err
	}
	spec := c.registry.Resolve(info.Model)
	if spec.ID != info.Model {
		c.log.Warnw("heater_model_unknown", "reported", info.Model, "fallback", spec.ID)
	}

	c.mu.Lock()
	c.model = spec
	c.explicit = true
	c.mu.Unlock()

	c.log.Infow("heater_model_resolved", "model", spec.ID,
		"firmware", info.FirmwareVersion, "hardware", info.HardwareVersion)
	return spec.clone(), nil
}

// Status reads every property of the active model and decodes the result.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	spec := c.Model()
	values, err := c.getProperties(ctx, spec.Properties, spec.PropsPerRequest)
	if err != nil {
		return nil, err
	}
	return newStatus(spec.ID, spec.Properties, values, spec.CountdownProperties)
}

// getProperties issues one get_prop per chunk and concatenates the values in
// request order. The decoder zips names to values by position, so any count
// mismatch aborts the refresh.
func (c *Client) getProperties(ctx context.Context, props []string, perRequest int) ([]any, error) {
	values := make([]any, 0, len(props))
	for _, chunk := range chunkProperties(props, perRequest) {
		res, err := c.transport.Send(ctx, methodGetProp, toParams(chunk))
		if err != nil {
			return nil, err
		}
		if len(res) != len(chunk) {
			c.log.Errorw("heater_property_count_mismatch",
				"chunk", chunk, "requested", len(chunk), "received", len(res))
			return nil, &MismatchError{Requested: len(props), Received: len(values) + len(res)}
		}
		values = append(values, res...)
	}
	if len(values) != len(props) {
		c.log.Errorw("heater_property_count_mismatch",
			"requested", len(props), "received", len(values))
		return nil, &MismatchError{Requested: len(props), Received: len(values)}
	}
	return values, nil
}

// chunkProperties splits props into consecutive chunks of at most n.
func chunkProperties(props []string, n int) [][]string {
	if n <= 0 {
		n = defaultPropsPerRequest
	}
	chunks := make([][]string, 0, (len(props)+n-1)/n)
	for start := 0; start < len(props); start += n {
		end := start + n
		if end > len(props) {
			end = len(props)
		}
		chunks = append(chunks, props[start:end:end])
	}
	return chunks
}

func toParams[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}
