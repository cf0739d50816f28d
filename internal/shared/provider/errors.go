package provider

import (
	"errors"
	"fmt"
)

// Kind classifies a provider failure so callers never inspect messages.
type Kind int

const (
	// KindTransport covers dial/read failures and 5xx answers.
	KindTransport Kind = iota + 1
	// KindUnauthorized covers 401/403: bad credentials or a dead session.
	KindUnauthorized
	// KindRejected covers any other non-2xx answer and success=false envelopes.
	KindRejected
	// KindMalformed covers 2xx answers that cannot be decoded or lack required fields.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindRejected:
		return "rejected"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error is returned by every Client call that fails.
type Error struct {
	Kind       Kind
	Op         string
	StatusCode int
	// Message is the provider supplied message when one could be decoded.
	Message string
	// Payload is the raw response body, nil when no response was received.
	Payload []byte
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("provider %s: %s: %s", e.Op, e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("provider %s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("provider %s: %s (status %d)", e.Op, e.Kind, e.StatusCode)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Detail returns the deepest human readable reason: the provider message,
// then the transport error, then a generic text.
func (e *Error) Detail() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("provider returned status %d", e.StatusCode)
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsKind reports whether err is a provider error of kind k.
func IsKind(err error, k Kind) bool {
	pe, ok := AsError(err)
	return ok && pe.Kind == k
}
