package entity

import "fmt"

type SessionFailure int

const (
	SessionFailureTransport SessionFailure = iota + 1
	SessionFailureCredentials
	SessionFailureMalformed
)

func (f SessionFailure) String() string {
	switch f {
	case SessionFailureTransport:
		return "transport"
	case SessionFailureCredentials:
		return "credentials"
	case SessionFailureMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// SessionError is returned when a session cannot be obtained. It is never
// retried by the session manager.
type SessionError struct {
	Reason  SessionFailure
	Message string
	Err     error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session: %s: %s", e.Reason, e.Message)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}
