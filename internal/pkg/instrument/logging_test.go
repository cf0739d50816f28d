package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid json log line %q: %v", buf.String(), err)
	}
	return out
}

func TestHandlerMasksFields(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, &Config{ServiceName: "gotransfer", MaskFields: []string{"Password", "code"}}, nil))

	// Act
	logger.Info("login", "password", "hunter2", "payload", `{"code":"123456","amount":"10.00"}`, "email", "a@b.c")

	// Assert
	line := decodeLine(t, &buf)
	if line["password"] != "***" {
		t.Errorf("password = %v, want masked", line["password"])
	}
	if line["payload"] != `{"amount":"10.00","code":"***"}` {
		t.Errorf("payload = %v", line["payload"])
	}
	if line["email"] != "a@b.c" {
		t.Errorf("email = %v", line["email"])
	}
	if line["service"] != "gotransfer" {
		t.Errorf("service = %v", line["service"])
	}
	if _, ok := line["ts"]; !ok {
		t.Error("missing ts key")
	}
	if line["severity"] != "INFO" {
		t.Errorf("severity = %v", line["severity"])
	}
}

func TestHandlerAddsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, &Config{ServiceName: "svc"}, nil))

	ctx := SetCorrelationID(context.Background(), "cid-1")
	logger.With("component", "transfer").InfoContext(ctx, "hello")

	line := decodeLine(t, &buf)
	if line["_cID"] != "cid-1" {
		t.Fatalf("_cID = %v", line["_cID"])
	}
	if line["component"] != "transfer" {
		t.Fatalf("component = %v", line["component"])
	}
}

func TestHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, &Config{LogLevel: "warn"}, nil))

	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %s", buf.String())
	}
}

func TestEnsureCorrelationID(t *testing.T) {
	ctx := EnsureCorrelationID(context.Background())
	first := GetCorrelationID(ctx)
	if first == "" {
		t.Fatal("expected generated correlation id")
	}
	if got := GetCorrelationID(EnsureCorrelationID(ctx)); got != first {
		t.Fatalf("EnsureCorrelationID replaced existing id: %s vs %s", got, first)
	}
}
