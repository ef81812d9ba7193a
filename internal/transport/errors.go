package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrBadResponse is returned when the gateway answers with a body that
	// cannot be matched to the request.
	ErrBadResponse = errors.New("bad gateway response")
)

// RPCError is an error reported by the device itself.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("device error %d: %s", e.Code, e.Message)
}

// Error codes used by the simulator, matching what devices return.
const (
	codeInvalidArg     = -5001
	codeMethodNotFound = -32601
)
