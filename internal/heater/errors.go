package heater

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned when an input fails model validation.
	// No request is sent to the device in that case.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrProtocolMismatch is returned when the device answers with a
	// different number of values than properties were requested.
	ErrProtocolMismatch = errors.New("property count mismatch")

	// ErrInvalidValue is returned when a reported value cannot be decoded.
	ErrInvalidValue = errors.New("invalid property value")

	// ErrNotReported is returned by readers whose property is absent from
	// the snapshot.
	ErrNotReported = errors.New("property not reported")

	// ErrUnexpectedResponse is returned when a response has an unusable shape.
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// MismatchError carries the counts behind an ErrProtocolMismatch.
type MismatchError struct {
	Requested int
	Received  int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: requested %d properties, received %d values",
		ErrProtocolMismatch, e.Requested, e.Received)
}

func (e *MismatchError) Unwrap() error { return ErrProtocolMismatch }

func invalidParam(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidParameter}, args...)...)
}

func isNotReported(err error) bool { return errors.Is(err, ErrNotReported) }
