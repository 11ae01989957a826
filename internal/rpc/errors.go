package rpc

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError covers every way a call can fail before a JSON-RPC
// response is in hand: network failure, non-2xx status, unreadable or
// undecodable body.
type TransportError struct {
	Method     string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is (or wraps) a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// retryable is true for failures a second attempt might fix.
func (e *TransportError) retryable() bool {
	switch {
	case e.StatusCode == 0:
		// network level
		return true
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500:
		return true
	default:
		return false
	}
}
