package heater

import (
	"context"
	"fmt"
	"sync"
)

type sentRequest struct {
	Method string
	Params []any
}

// fakeTransport answers get_prop from a property map and records every
// request. reply overrides the answer for a method when set.
type fakeTransport struct {
	mu    sync.Mutex
	props map[string]any
	sent  []sentRequest
	err   error
	reply func(method string, params []any) ([]any, error)
}

func newFakeTransport(props map[string]any) *fakeTransport {
	return &fakeTransport{props: props}
}

func (f *fakeTransport) Send(_ context.Context, method string, params []any) ([]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentRequest{Method: method, Params: append([]any(nil), params...)})
	if f.err != nil {
		return nil, f.err
	}
	if f.reply != nil {
		return f.reply(method, params)
	}
	if method != methodGetProp {
		return []any{"ok"}, nil
	}
	out := make([]any, 0, len(params))
	for _, p := range params {
		name, ok := p.(string)
		if !ok {
			return nil, fmt.Errorf("bad param %v", p)
		}
		out = append(out, f.props[name])
	}
	return out, nil
}

func (f *fakeTransport) requests() []sentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentRequest(nil), f.sent...)
}

func za1Props() map[string]any {
	return map[string]any{
		"power":              "off",
		"target_temperature": 24,
		"brightness":         1,
		"buzzer":             "on",
		"child_lock":         "off",
		"temperature":        22.3,
		"use_time":           43117,
		"poweroff_time":      0,
		"relative_humidity":  34,
	}
}

func ma1Props() map[string]any {
	return map[string]any{
		"power":              "on",
		"target_temperature": 28,
		"brightness":         0,
		"buzzer":             2,
		"child_lock":         "on",
		"temperature":        19.5,
		"use_time":           120,
		"poweroff_level":     3,
		"poweroff_value":     10800,
	}
}
