package api

import (
	"errors"
	"fmt"
)

// Every failure the external storefront API can produce is normalized here:
// transport problems become *NetworkError, `success:false` envelopes become
// *ServerError, lookup misses become ErrNotFound. No other error shape crosses
// this package boundary.

var ErrNotFound = errors.New("not found")

// ServerError is a response the server produced on purpose: a well-formed
// envelope with success=false, or a non-2xx status.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server rejected request: %s", e.Message)
	}
	return fmt.Sprintf("server rejected request with status %d", e.StatusCode)
}

// NetworkError is a transport-level failure; the request may or may not have
// reached the server.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
