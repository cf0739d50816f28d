package mailbox

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-imap"
)

func TestParseBodyMultipart(t *testing.T) {
	raw := strings.Join([]string{
		"From: Platform <no-reply@platform.test>",
		"To: alice@example.com",
		"Subject: Your verification code",
		"MIME-Version: 1.0",
		`Content-Type: multipart/alternative; boundary="b1"`,
		"",
		"--b1",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Your code is 482913",
		"--b1",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<p>Your code is<br/><b>482913</b></p>",
		"--b1--",
		"",
	}, "\r\n")

	html, text := parseBody(strings.NewReader(raw))

	if !strings.Contains(html, "<b>482913</b>") {
		t.Fatalf("html = %q", html)
	}
	if !strings.Contains(text, "Your code is 482913") {
		t.Fatalf("text = %q", text)
	}
}

func TestParseBodySinglePart(t *testing.T) {
	raw := "Subject: code\r\nContent-Type: text/html\r\n\r\n<strong>1234</strong>\r\n"

	html, text := parseBody(strings.NewReader(raw))
	if !strings.Contains(html, "<strong>1234</strong>") || text != "" {
		t.Fatalf("parseBody() = %q, %q", html, text)
	}
}

func TestBuildCriteria(t *testing.T) {
	since := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	c := buildCriteria(Criteria{From: "no-reply@platform.test", To: "alice@example.com", SubjectContains: "verification", Since: since})

	if c.Header.Get("FROM") != "no-reply@platform.test" || c.Header.Get("TO") != "alice@example.com" || c.Header.Get("SUBJECT") != "verification" {
		t.Fatalf("header criteria = %v", c.Header)
	}
	if !c.Since.Equal(since) {
		t.Fatalf("Since = %v", c.Since)
	}

	empty := buildCriteria(Criteria{})
	if len(empty.Header) != 0 || !empty.Since.IsZero() {
		t.Fatalf("empty criteria = %+v", empty)
	}
}

func TestAddresses(t *testing.T) {
	got := addresses([]*imap.Address{
		{PersonalName: "Alice", MailboxName: "Alice", HostName: "Example.com"},
		nil,
		{MailboxName: ""},
	})
	if len(got) != 1 || got[0] != "alice@example.com" {
		t.Fatalf("addresses() = %v", got)
	}
}

func TestDialRequiresHost(t *testing.T) {
	if _, err := NewIMAPDialer().Dial(context.Background(), Config{}); !errors.Is(err, ErrHostRequired) {
		t.Fatalf("Dial() error = %v, want ErrHostRequired", err)
	}
}
