package contract

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrMissingCredential = errors.New("VAPI_API_KEY environment variable not set")
	ErrValidation        = errors.New("validation failed")
	ErrTransport         = errors.New("transport request failed")
	ErrRecordNotFound    = errors.New("call record not found")
)

// TransportError is a failed call to the call-control service.
// StatusCode is zero when no response was received.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: http status=%d body=%s", e.Op, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": " + ErrTransport.Error()
	}
}

func (e *TransportError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrTransport, e.Err}
	}
	return []error{ErrTransport}
}

// Retryable reports whether repeating the same request may succeed.
func (e *TransportError) Retryable() bool {
	if e == nil {
		return false
	}
	if e.StatusCode == 0 {
		return true
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}
