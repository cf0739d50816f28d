package command

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"

	"github.com/shandysiswandi/gotransfer/internal/pkg/goerror"
	"github.com/shandysiswandi/gotransfer/internal/pkg/instrument"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

func run(t *testing.T, h Handler, args ...string) (stdout, stderr *bytes.Buffer, err error) {
	t.Helper()

	root := &cobra.Command{Use: "app"}
	r := NewRouter(root, Config{UUID: fixedID("cid-generated"), Instrument: instrument.NewNoop()})

	cmd := &cobra.Command{Use: "do [id]", Args: cobra.MaximumNArgs(1)}
	cmd.Flags().String("password", "", "")
	r.Group("thing", "things").Handle(cmd, h)

	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(append([]string{"thing", "do"}, args...))

	err = root.ExecuteContext(context.Background())
	return stdout, stderr, err
}

func TestHandleSuccess(t *testing.T) {
	var gotCID string
	stdout, _, err := run(t, func(r *Request) (any, error) {
		gotCID = instrument.GetCorrelationID(r.Context())
		id, err := r.ArgInt64(0)
		if err != nil {
			return nil, err
		}
		return map[string]any{"id": id, "password": r.GetString("password")}, nil
	}, "42", "--password", "pw")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if gotCID != "cid-generated" {
		t.Errorf("correlation id got = %q, want cid-generated", gotCID)
	}

	var out struct {
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("stdout is not json: %v (%s)", err, stdout)
	}
	if out.Message != "command completed" || out.Data["id"] != float64(42) {
		t.Errorf("stdout got = %+v", out)
	}
}

func TestHandleCorrelationFlag(t *testing.T) {
	var gotCID string
	_, _, err := run(t, func(r *Request) (any, error) {
		gotCID = instrument.GetCorrelationID(r.Context())
		return nil, nil
	}, "--correlation-id", "abc")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if gotCID != "abc" {
		t.Errorf("correlation id got = %q, want abc", gotCID)
	}
}

func TestHandleErrors(t *testing.T) {
	tests := []struct {
		name     string
		h        Handler
		args     []string
		wantExit int
		wantMsg  string
	}{
		{
			name:     "business",
			h:        func(*Request) (any, error) { return nil, goerror.NewBusiness("account not found", goerror.CodeNotFound) },
			wantExit: ExitBusiness,
			wantMsg:  "account not found",
		},
		{
			name:     "validation",
			h:        func(r *Request) (any, error) { _, err := r.ArgInt64(0); return nil, err },
			args:     []string{"x"},
			wantExit: ExitValidation,
			wantMsg:  "argument must be an integer value",
		},
		{
			name:     "server",
			h:        func(*Request) (any, error) { return nil, goerror.NewServer(context.DeadlineExceeded) },
			wantExit: ExitServer,
			wantMsg:  "Internal server error",
		},
		{
			name:     "panic",
			h:        func(*Request) (any, error) { panic("boom") },
			wantExit: ExitServer,
			wantMsg:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := run(t, tt.h, tt.args...)
			if got := ExitCode(err); got != tt.wantExit {
				t.Fatalf("ExitCode() = %d, want %d (err %v)", got, tt.wantExit, err)
			}
			if stdout.Len() != 0 {
				t.Errorf("stdout should be empty, got %s", stdout)
			}

			var out errorResponse
			if err := json.Unmarshal(stderr.Bytes(), &out); err != nil {
				t.Fatalf("stderr is not json: %v (%s)", err, stderr)
			}
			if out.Message != tt.wantMsg {
				t.Errorf("message got = %q, want %q", out.Message, tt.wantMsg)
			}
		})
	}
}

func TestExitCodeForCobraErrors(t *testing.T) {
	_, _, err := run(t, func(*Request) (any, error) { return nil, nil }, "1", "2")
	if got := ExitCode(err); got != ExitValidation {
		t.Errorf("ExitCode() = %d, want %d", got, ExitValidation)
	}
	if ExitCode(nil) != 0 {
		t.Error("ExitCode(nil) should be 0")
	}
}

func TestMaskFlags(t *testing.T) {
	got := maskFlags(map[string]string{"password": "pw", "second-factor-secret": "S", "amount": "1.00"},
		map[string]struct{}{"password": {}, "secret": {}})

	if got["password"] != "***" || got["second-factor-secret"] != "***" || got["amount"] != "1.00" {
		t.Errorf("maskFlags() = %v", got)
	}
}
