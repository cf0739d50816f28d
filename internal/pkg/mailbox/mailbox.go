package mailbox

import (
	"context"
	"errors"
	"time"
)

// ErrHostRequired is returned when dialing without a host.
var ErrHostRequired = errors.New("mailbox: host is required")

// DefaultTimeout bounds every protocol command when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Config describes how to reach one mailbox.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	// InsecureSkipVerify accepts self-signed server certificates.
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// Criteria filters inbox messages. Empty fields are not applied.
type Criteria struct {
	From            string
	To              string
	SubjectContains string
	// Since is day-granular on the server side.
	Since time.Time
}

// Message is a decoded inbox message.
type Message struct {
	UID        uint32
	Subject    string
	From       []string
	To         []string
	ReceivedAt time.Time
	HTMLBody   string
	TextBody   string
}

// Dialer opens mailbox sessions.
type Dialer interface {
	Dial(ctx context.Context, cfg Config) (Session, error)
}

// Session is an authenticated connection with INBOX selected read-only.
type Session interface {
	Search(ctx context.Context, c Criteria) ([]Message, error)
	Close() error
}
