package entity

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrSendBeforeFetch     = errors.New("verification: no pending request, send a code first")
	ErrMailboxUnresolvable = errors.New("verification: no mailbox can serve the request")
	ErrCodeNotFound        = errors.New("verification: code not found in mailbox")
)

// Request is the pending state between a send and a successful fetch.
// Code is empty until a code has been read from the mailbox.
type Request struct {
	Email  string    `json:"email"`
	Code   string    `json:"code,omitempty"`
	SentAt time.Time `json:"sent_at"`
}

// NormalizeEmail is the key every Request is stored under.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Mailbox is a polled inbox that receives provider e-mails.
type Mailbox struct {
	ID                 int64
	Name               string
	Address            string
	Host               string
	Port               int
	Username           string
	Password           string
	InsecureSkipVerify bool
	Enabled            bool
	CreatedAt          time.Time
}

// Domain returns the part of Address after '@', lower-cased.
func (m Mailbox) Domain() string {
	return EmailDomain(m.Address)
}

// EmailDomain returns the lower-cased domain of an e-mail address.
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[at+1:]))
}

// Message is an inbox message relevant to code extraction.
type Message struct {
	Subject    string
	ReceivedAt time.Time
	HTMLBody   string
	TextBody   string
}

// SearchCriteria selects candidate messages in a mailbox.
type SearchCriteria struct {
	From            string
	To              string
	SubjectContains string
	Since           time.Time
}
