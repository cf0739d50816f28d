package mailbox

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset" // registers non-UTF-8 decoders
	"github.com/emersion/go-message/mail"
)

const (
	defaultPort = 993
	inbox       = "INBOX"
)

// IMAPDialer dials IMAP servers over implicit TLS.
type IMAPDialer struct{}

// NewIMAPDialer returns an IMAP dialer.
func NewIMAPDialer() *IMAPDialer {
	return &IMAPDialer{}
}

// Dial connects, logs in and selects INBOX read-only.
func (d *IMAPDialer) Dial(ctx context.Context, cfg Config) (Session, error) {
	if cfg.Host == "" {
		return nil, ErrHostRequired
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	c, err := client.DialWithDialerTLS(&net.Dialer{Timeout: timeout}, addr, &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // self-signed mailbox servers are configured explicitly
		MinVersion:         tls.VersionTLS12,
	})
	if err != nil {
		return nil, fmt.Errorf("mailbox: dial %s: %w", addr, err)
	}
	c.Timeout = timeout

	s := &imapSession{c: c}
	s.stop = context.AfterFunc(ctx, func() { _ = c.Terminate() })

	if err := c.Login(cfg.Username, cfg.Password); err != nil {
		return nil, errors.Join(fmt.Errorf("mailbox: login: %w", err), s.Close())
	}

	if _, err := c.Select(inbox, true); err != nil {
		return nil, errors.Join(fmt.Errorf("mailbox: select %s: %w", inbox, err), s.Close())
	}

	return s, nil
}

type imapSession struct {
	c    *client.Client
	stop func() bool
}

func (s *imapSession) Search(ctx context.Context, cr Criteria) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	uids, err := s.c.UidSearch(buildCriteria(cr))
	if err != nil {
		return nil, fmt.Errorf("mailbox: search: %w", err)
	}
	if len(uids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchInternalDate, imap.FetchUid, section.FetchItem()}

	ch := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- s.c.UidFetch(seqset, items, ch)
	}()

	out := make([]Message, 0, len(uids))
	for msg := range ch {
		out = append(out, decode(msg, section))
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("mailbox: fetch: %w", err)
	}

	return out, nil
}

func (s *imapSession) Close() error {
	if s.stop != nil {
		s.stop()
	}
	if err := s.c.Logout(); err != nil && !errors.Is(err, client.ErrAlreadyLoggedOut) {
		return errors.Join(err, s.c.Terminate())
	}
	return nil
}

func buildCriteria(cr Criteria) *imap.SearchCriteria {
	c := imap.NewSearchCriteria()
	if cr.From != "" {
		c.Header.Add("FROM", cr.From)
	}
	if cr.To != "" {
		c.Header.Add("TO", cr.To)
	}
	if cr.SubjectContains != "" {
		c.Header.Add("SUBJECT", cr.SubjectContains)
	}
	if !cr.Since.IsZero() {
		c.Since = cr.Since
	}
	return c
}

func decode(msg *imap.Message, section *imap.BodySectionName) Message {
	m := Message{UID: msg.Uid, ReceivedAt: msg.InternalDate}

	if env := msg.Envelope; env != nil {
		m.Subject = env.Subject
		m.From = addresses(env.From)
		m.To = addresses(env.To)
		if m.ReceivedAt.IsZero() {
			m.ReceivedAt = env.Date
		}
	}

	if body := msg.GetBody(section); body != nil {
		m.HTMLBody, m.TextBody = parseBody(body)
	}

	return m
}

func addresses(in []*imap.Address) []string {
	out := make([]string, 0, len(in))
	for _, a := range in {
		if a == nil || a.MailboxName == "" {
			continue
		}
		out = append(out, strings.ToLower(a.MailboxName+"@"+a.HostName))
	}
	return out
}

// parseBody returns the concatenated text/html and text/plain inline parts.
// Decoding stops at the first unrecoverable part error; what was read so far
// is kept.
func parseBody(r io.Reader) (html, text string) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return "", ""
	}

	var hb, tb strings.Builder
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			break
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		b, err := io.ReadAll(p.Body)
		if err != nil {
			break
		}

		ct, _, _ := h.ContentType()
		switch ct {
		case "text/html":
			hb.Write(b)
		default:
			tb.Write(b)
		}
	}

	return hb.String(), tb.String()
}
