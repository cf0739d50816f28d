package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shandysiswandi/gotransfer/internal/pkg/instrument"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return NewClient(srv.Client(), Config{BaseURL: srv.URL + "/"}, instrument.NewNoop())
}

func TestAuthenticate(t *testing.T) {
	expiry := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("path got = %s, want /auth/login", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["email"] != "a@b.test" || body["password"] != "pw" {
			t.Errorf("body got = %v", body)
		}
		w.Header().Set("X-Session-Token", "tok-1")
		w.Header().Set("X-Session-Expires", expiry.Format(time.RFC3339))
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":null}`))
	})

	got, err := c.Authenticate(context.Background(), "a@b.test", "pw")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.Token != "tok-1" {
		t.Errorf("Token got = %q, want tok-1", got.Token)
	}
	if !got.ExpiresAt.Equal(expiry) {
		t.Errorf("ExpiresAt got = %v, want %v", got.ExpiresAt, expiry)
	}
}

func TestAuthenticateUnixExpiryAndMissingToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Session-Token", "tok")
		w.Header().Set("X-Session-Expires", "1700000000")
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	got, err := c.Authenticate(context.Background(), "a@b.test", "pw")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.ExpiresAt.Unix() != 1700000000 {
		t.Errorf("ExpiresAt got = %v, want unix 1700000000", got.ExpiresAt)
	}

	noToken := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	_, err = noToken.Authenticate(context.Background(), "a@b.test", "pw")
	if !IsKind(err, KindMalformed) {
		t.Errorf("Authenticate() error = %v, want malformed", err)
	}
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    Kind
		wantMsg string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"success":false,"message":"expired"}`, want: KindUnauthorized, wantMsg: "expired"},
		{name: "forbidden", status: http.StatusForbidden, body: ``, want: KindUnauthorized},
		{name: "server error", status: http.StatusBadGateway, body: `oops`, want: KindTransport},
		{name: "bad request", status: http.StatusBadRequest, body: `{"success":false,"message":"insufficient balance"}`, want: KindRejected, wantMsg: "insufficient balance"},
		{name: "success false", status: http.StatusOK, body: `{"success":false,"message":"limit reached"}`, want: KindRejected, wantMsg: "limit reached"},
		{name: "undecodable", status: http.StatusOK, body: `<html>`, want: KindMalformed},
		{name: "missing success", status: http.StatusOK, body: `{"message":"?"}`, want: KindMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.ExecuteInternalTransfer(context.Background(), "tok", TransferBody{Amount: "1.00"})
			pe, ok := AsError(err)
			if !ok {
				t.Fatalf("error got = %v, want *Error", err)
			}
			if pe.Kind != tt.want {
				t.Errorf("Kind got = %v, want %v", pe.Kind, tt.want)
			}
			if pe.Message != tt.wantMsg {
				t.Errorf("Message got = %q, want %q", pe.Message, tt.wantMsg)
			}
			if pe.StatusCode != tt.status {
				t.Errorf("StatusCode got = %d, want %d", pe.StatusCode, tt.status)
			}
			if string(pe.Payload) != tt.body {
				t.Errorf("Payload got = %q, want %q", pe.Payload, tt.body)
			}
		})
	}
}

func TestExecuteInternalTransfer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Session-Token"); got != "tok" {
			t.Errorf("token header got = %q, want tok", got)
		}
		var body TransferBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Code != "123456" || body.DestinationKind != "uid" {
			t.Errorf("body got = %+v", body)
		}
		_, _ = w.Write([]byte(`{"success":true,"message":"done","data":{"ref":"X1"}}`))
	})

	got, err := c.ExecuteInternalTransfer(context.Background(), "tok", TransferBody{
		DestinationKind:  "uid",
		DestinationValue: "U-1",
		Amount:           "10.00",
		Code:             "123456",
	})
	if err != nil {
		t.Fatalf("ExecuteInternalTransfer() error = %v", err)
	}
	if got.Message != "done" || string(got.Data) != `{"ref":"X1"}` {
		t.Errorf("response got = %+v", got)
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(nil, Config{BaseURL: url}, instrument.NewNoop())
	err := c.RequestVerificationCode(context.Background(), "a@b.test", "transfer")
	if !IsKind(err, KindTransport) {
		t.Fatalf("error got = %v, want transport", err)
	}
	pe, _ := AsError(err)
	if pe.Payload != nil {
		t.Errorf("Payload got = %q, want nil", pe.Payload)
	}
	if pe.Detail() == "" {
		t.Error("Detail() is empty")
	}
}

func TestDetail(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{err: &Error{Message: "m", Err: errors.New("e")}, want: "m"},
		{err: &Error{Err: errors.New("e")}, want: "e"},
		{err: &Error{StatusCode: 418}, want: "provider returned status 418"},
	}
	for _, tt := range tests {
		if got := tt.err.Detail(); got != tt.want {
			t.Errorf("Detail() got = %q, want %q", got, tt.want)
		}
	}
}
