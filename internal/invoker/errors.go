package invoker

import (
	"errors"
	"fmt"
	"net"
)

var (
	ErrInvalidRequest = errors.New("invoker: invalid request")
	ErrNetwork        = errors.New("invoker: network error")
	ErrDecode         = errors.New("invoker: decode error")
)

// NetworkError reports that the round trip could not complete: DNS failure,
// refused or reset connections, timeouts and cancellation.
type NetworkError struct {
	Method   string
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("invoker: %s %s: network error: %v", e.Method, e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() []error { return []error{ErrNetwork, e.Err} }

// Timeout reports whether the failure was a transport timeout.
func (e *NetworkError) Timeout() bool {
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// DecodeError reports a response body that is not a JSON document.
type DecodeError struct {
	Endpoint    string
	StatusCode  int
	ContentType string
	Body        []byte
	// PageTitle is set when the body was an HTML page.
	PageTitle string
	Err       error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("invoker: %s: decode error (status %d", e.Endpoint, e.StatusCode)
	if e.ContentType != "" {
		msg += ", content-type " + e.ContentType
	}
	msg += ")"
	if e.PageTitle != "" {
		msg += fmt.Sprintf(": html page %q", e.PageTitle)
	} else if snippet := bodySnippet(e.Body); snippet != "" {
		msg += fmt.Sprintf(": body %q", snippet)
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// IsNetworkError extracts a *NetworkError from err.
func IsNetworkError(err error) (*NetworkError, bool) {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr, true
	}
	return nil, false
}

// IsDecodeError extracts a *DecodeError from err.
func IsDecodeError(err error) (*DecodeError, bool) {
	var decErr *DecodeError
	if errors.As(err, &decErr) {
		return decErr, true
	}
	return nil, false
}
