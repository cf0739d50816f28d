// Package provider is the HTTP/JSON client of the financial platform.
//
// Every response uses the envelope {"success":bool,"message":string,"data":any}.
// Failures are returned as *Error with a Kind; the raw body is kept so the
// caller can persist it for audit.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/gotransfer/internal/pkg/instrument"
)

const (
	pathLogin        = "/auth/login"
	pathVerification = "/verification/request"
	pathTransfer     = "/transfers/internal"

	// maxBodyBytes caps how much of a response is read and stored.
	maxBodyBytes = 1 << 20
)

// Config configures the client.
type Config struct {
	BaseURL string
	// TokenHeader carries the session token out of login and into
	// authenticated calls.
	TokenHeader string
	// ExpiryHeader carries the session expiry (RFC3339 or unix seconds).
	ExpiryHeader string
	UserAgent    string
}

// Session is the result of a successful login. ExpiresAt is zero when the
// provider did not announce an expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// TransferBody is the payload of an internal transfer.
type TransferBody struct {
	DestinationKind  string `json:"destination_kind"`
	DestinationValue string `json:"destination_value"`
	Amount           string `json:"amount"`
	Code             string `json:"code,omitempty"`
	Remarks          string `json:"remarks,omitempty"`
}

// Response is a decoded successful envelope.
type Response struct {
	StatusCode int
	Message    string
	Data       json.RawMessage
	// Raw is the full response body.
	Raw []byte
}

type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client calls the provider endpoints.
type Client struct {
	httpClient *http.Client
	cfg        Config
	ins        instrument.Instrumentation
}

// NewClient returns a Client. Empty header names fall back to
// X-Session-Token and X-Session-Expires.
func NewClient(httpClient *http.Client, cfg Config, ins instrument.Instrumentation) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.TokenHeader == "" {
		cfg.TokenHeader = "X-Session-Token"
	}
	if cfg.ExpiryHeader == "" {
		cfg.ExpiryHeader = "X-Session-Expires"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{httpClient: httpClient, cfg: cfg, ins: ins}
}

func (c *Client) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("shared.provider").Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Authenticate logs in and returns the session announced in the response headers.
func (c *Client) Authenticate(ctx context.Context, email, password string) (_ Session, err error) {
	ctx, span := c.startSpan(ctx, "Authenticate")
	defer func() { endSpan(span, err) }()

	const op = "authenticate"
	resp, header, err := c.do(ctx, op, pathLogin, "", map[string]string{"email": email, "password": password})
	if err != nil {
		return Session{}, err
	}

	token := strings.TrimSpace(header.Get(c.cfg.TokenHeader))
	if token == "" {
		return Session{}, &Error{Kind: KindMalformed, Op: op, StatusCode: resp.StatusCode, Message: "session token header is missing", Payload: resp.Raw}
	}

	session := Session{Token: token}
	if raw := strings.TrimSpace(header.Get(c.cfg.ExpiryHeader)); raw != "" {
		expiresAt, ok := parseExpiry(raw)
		if !ok {
			slog.WarnContext(ctx, "unparsable session expiry header, default ttl applies", "value", raw)
		}
		session.ExpiresAt = expiresAt
	}

	return session, nil
}

// RequestVerificationCode asks the provider to e-mail a one-time code.
func (c *Client) RequestVerificationCode(ctx context.Context, email, codeType string) (err error) {
	ctx, span := c.startSpan(ctx, "RequestVerificationCode")
	defer func() { endSpan(span, err) }()

	_, _, err = c.do(ctx, "request verification code", pathVerification, "", map[string]string{"email": email, "type": codeType})
	return err
}

// ExecuteInternalTransfer submits a transfer with the given session token.
func (c *Client) ExecuteInternalTransfer(ctx context.Context, token string, body TransferBody) (_ *Response, err error) {
	ctx, span := c.startSpan(ctx, "ExecuteInternalTransfer")
	defer func() { endSpan(span, err) }()

	span.SetAttributes(attribute.String("destination_kind", body.DestinationKind))

	resp, _, err := c.do(ctx, "execute internal transfer", pathTransfer, token, body)
	return resp, err
}

func (c *Client) do(ctx context.Context, op, path, token string, payload any) (*Response, http.Header, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return nil, nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if token != "" {
		req.Header.Set(c.cfg.TokenHeader, token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, &Error{Kind: KindTransport, Op: op, StatusCode: httpResp.StatusCode, Err: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	status := httpResp.StatusCode
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, nil, &Error{Kind: KindUnauthorized, Op: op, StatusCode: status, Message: env.Message, Payload: raw}
	case status >= http.StatusInternalServerError:
		return nil, nil, &Error{Kind: KindTransport, Op: op, StatusCode: status, Message: env.Message, Payload: raw}
	case status < 200 || status > 299:
		return nil, nil, &Error{Kind: KindRejected, Op: op, StatusCode: status, Message: env.Message, Payload: raw}
	}

	if decodeErr != nil || env.Success == nil {
		if decodeErr == nil {
			decodeErr = errors.New("success field is missing")
		}
		return nil, nil, &Error{Kind: KindMalformed, Op: op, StatusCode: status, Payload: raw, Err: fmt.Errorf("decode envelope: %w", decodeErr)}
	}

	if !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = "provider reported failure"
		}
		return nil, nil, &Error{Kind: KindRejected, Op: op, StatusCode: status, Message: msg, Payload: raw}
	}

	return &Response{StatusCode: status, Message: env.Message, Data: env.Data, Raw: raw}, httpResp.Header, nil
}

// parseExpiry accepts RFC3339 timestamps and unix seconds.
func parseExpiry(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil && secs > 0 {
		return time.Unix(secs, 0), true
	}
	return time.Time{}, false
}
