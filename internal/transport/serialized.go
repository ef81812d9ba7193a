package transport

import (
	"context"
	"sync"
	"time"

	"miheater/internal/heater"
	"miheater/internal/logger"
)

// Serialized allows one in-flight exchange at a time. A physical heater
// cannot usefully process concurrent requests, so every transport built by
// the daemon is wrapped in one.
type Serialized struct {
	mu   sync.Mutex
	next heater.Transport
	log  *logger.Logger
}

var _ heater.Transport = (*Serialized)(nil)

// Serialize wraps next. log may be nil.
func Serialize(next heater.Transport, log *logger.Logger) *Serialized {
	if log == nil {
		log = logger.Nop()
	}
	return &Serialized{next: next, log: log}
}

// Send waits for any exchange in progress, then forwards the request.
// A context cancelled while waiting is returned without contacting the device.
func (s *Serialized) Send(ctx context.Context, method string, params []any) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := s.next.Send(ctx, method, params)
	if err != nil {
		s.log.Debugw("transport_send_failed", "method", method, "params", params,
			"took", time.Since(start), "err", err)
		return nil, err
	}
	s.log.Debugw("transport_send", "method", method, "params", params,
		"result", res, "took", time.Since(start))
	return res, nil
}
