package valueobject

import (
	"testing"
)

func TestFromRaw(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		key  string
		want any
	}{
		{name: "object", raw: `{"success":true,"message":"ok"}`, key: "message", want: "ok"},
		{name: "array wrapped", raw: `[1,2]`, key: RawKey, want: `[1,2]`},
		{name: "html wrapped", raw: `<html>502</html>`, key: RawKey, want: `<html>502</html>`},
		{name: "broken object wrapped", raw: `{"success":`, key: RawKey, want: `{"success":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromRaw([]byte(tt.raw))
			if got[tt.key] != tt.want {
				t.Fatalf("FromRaw()[%q] = %v, want %v", tt.key, got[tt.key], tt.want)
			}
		})
	}

	if got := FromRaw(nil); len(got) != 0 {
		t.Fatalf("FromRaw(nil) = %v, want empty", got)
	}
}

func TestJSONMapScan(t *testing.T) {
	var m JSONMap
	if err := m.Scan([]byte(`{"data":{"id":"t-1"}}`)); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if m.GetMap("data").GetString("id") != "t-1" {
		t.Fatalf("Scan() = %v", m)
	}

	if err := m.Scan(nil); err != nil || len(m) != 0 {
		t.Fatalf("Scan(nil) = %v, %v", m, err)
	}

	if err := m.Scan(42); err != ErrScanValueNotBytes {
		t.Fatalf("Scan(42) error = %v", err)
	}

	v, err := JSONMap(nil).Value()
	if err != nil || string(v.([]byte)) != "{}" {
		t.Fatalf("Value() of nil = %v, %v", v, err)
	}
}
