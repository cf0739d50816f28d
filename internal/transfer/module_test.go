package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/shandysiswandi/gotransfer/internal/pkg/clock"
	"github.com/shandysiswandi/gotransfer/internal/pkg/command"
	"github.com/shandysiswandi/gotransfer/internal/pkg/config"
	"github.com/shandysiswandi/gotransfer/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotransfer/internal/pkg/instrument"
	"github.com/shandysiswandi/gotransfer/internal/pkg/messaging"
	"github.com/shandysiswandi/gotransfer/internal/pkg/otp"
	"github.com/shandysiswandi/gotransfer/internal/pkg/pgtest"
	"github.com/shandysiswandi/gotransfer/internal/pkg/uid"
	"github.com/shandysiswandi/gotransfer/internal/pkg/validator"
	"github.com/shandysiswandi/gotransfer/internal/shared/provider"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

func fakeProvider(t *testing.T, logins *int) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		*logins++
		w.Header().Set("X-Session-Token", "tok-1")
		w.Header().Set("X-Session-Expires", time.Now().Add(time.Hour).UTC().Format(time.RFC3339))
		_, _ = w.Write([]byte(`{"success":true,"message":"ok"}`))
	})
	mux.HandleFunc("/transfers/internal", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Session-Token") != "tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body provider.TransferBody
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Amount == "999.00" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"success":false,"message":"insufficient balance"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"message":"transfer accepted","data":{"ref":"TRX-9"}}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func TestTransferCommands(t *testing.T) {
	pool := pgtest.Start(t)
	ctx := context.Background()
	if _, err := pool.Exec(ctx, `INSERT INTO accounts (id, external_user_id, email, credential_secret)
		VALUES (1, 'u-1', 'one@corp.test', 'pw1'), (2, 'u-2', 'two@corp.test', 'pw2')`); err != nil {
		t.Fatalf("seed accounts: %v", err)
	}

	logins := 0
	srv := fakeProvider(t, &logins)

	cfg, err := config.NewViperFromBytes("yaml", []byte("provider:\n  session:\n    default_ttl_minutes: 60\n"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	snow, err := uid.NewSnowflake(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	ins := instrument.NewNoop()
	clk := clock.New()
	worker := goroutine.NewManager(4)

	root := &cobra.Command{Use: "gotransfer"}
	router := command.NewRouter(root, command.Config{Config: cfg, UUID: fixedID("cid"), Instrument: ins})

	if err := New(Dependency{
		DBConn:     pool,
		Publisher:  messaging.Noop{},
		Command:    router,
		Provider:   provider.NewClient(srv.Client(), provider.Config{BaseURL: srv.URL}, ins),
		OTP:        otp.NewTOTP(clk, 30, 6),
		Goroutine:  worker,
		Config:     cfg,
		Instrument: ins,
		Clock:      clk,
		UID:        snow,
		Validator:  v,
	}); err != nil {
		t.Fatalf("New() error = %v", err)
	}

	run := func(args ...string) (envelope, error) {
		t.Helper()
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		root.SetOut(stdout)
		root.SetErr(stderr)
		root.SetArgs(args)
		err := root.ExecuteContext(ctx)

		var env envelope
		out := stdout
		if err != nil {
			out = stderr
		}
		if jErr := json.Unmarshal(out.Bytes(), &env); jErr != nil {
			t.Fatalf("%v: output is not json: %v (%s)", args, jErr, out)
		}
		return env, err
	}

	env, err := run("transfer", "execute", "--account-id", "1", "--destination-kind", "internal_account_id",
		"--destination-value", "2", "--amount", "10.00")
	if err != nil {
		t.Fatalf("transfer execute error = %v", err)
	}
	var exec struct {
		Outcome    string `json:"outcome"`
		TransferID string `json:"transfer_id"`
		Status     string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &exec); err != nil {
		t.Fatalf("execute data: %v", err)
	}
	if exec.Outcome != "success" || exec.Status != "completed" {
		t.Fatalf("transfer execute got = %+v", exec)
	}
	if _, err := strconv.ParseInt(exec.TransferID, 10, 64); err != nil {
		t.Fatalf("transfer id got = %q", exec.TransferID)
	}

	env, err = run("transfer", "history", exec.TransferID)
	if err != nil {
		t.Fatalf("transfer history error = %v", err)
	}
	var history struct {
		Transfer struct {
			DestinationKind  string `json:"destination_kind"`
			DestinationValue string `json:"destination_value"`
			Status           string `json:"status"`
		} `json:"transfer"`
		Entries []struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(env.Data, &history); err != nil {
		t.Fatalf("history data: %v", err)
	}
	if history.Transfer.DestinationKind != "uid" || history.Transfer.DestinationValue != "u-2" {
		t.Errorf("resolved destination got = %+v", history.Transfer)
	}
	if len(history.Entries) < 3 || history.Entries[len(history.Entries)-1].Status != "completed" {
		t.Errorf("history entries got = %+v", history.Entries)
	}

	env, err = run("transfer", "execute", "--account-id", "1", "--destination-kind", "uid",
		"--destination-value", "u-7", "--amount", "999.00")
	if err != nil {
		t.Fatalf("rejected transfer error = %v", err)
	}
	if err := json.Unmarshal(env.Data, &exec); err != nil {
		t.Fatalf("execute data: %v", err)
	}
	if exec.Outcome != "provider_rejected" || exec.Status != "failed" {
		t.Errorf("rejected transfer got = %+v", exec)
	}

	if logins != 1 {
		t.Errorf("provider logins got = %d, want 1 (session reused)", logins)
	}

	if _, err := run("transfer", "history", "12345"); command.ExitCode(err) != command.ExitBusiness {
		t.Errorf("unknown transfer exit code got = %d", command.ExitCode(err))
	}

	if err := worker.Wait(); err != nil {
		t.Errorf("background tasks: %v", err)
	}
}
