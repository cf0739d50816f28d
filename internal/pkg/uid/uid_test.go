package uid

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestSnowflakeMonotonic(t *testing.T) {
	gen, err := NewSnowflake(1)
	if err != nil {
		t.Fatalf("NewSnowflake() error = %v", err)
	}

	prev := gen.Generate()
	for range 1000 {
		next := gen.Generate()
		if next <= prev {
			t.Fatalf("id %d not greater than %d", next, prev)
		}
		prev = next
	}
}

func TestSnowflakeInvalidNode(t *testing.T) {
	if _, err := NewSnowflake(5000); err == nil {
		t.Fatal("expected error for node id out of range")
	}
}

func TestUUIDVersion(t *testing.T) {
	id, err := uuid.Parse(NewUUID().Generate())
	if err != nil {
		t.Fatalf("Generate() produced invalid uuid: %v", err)
	}
	if id.Version() != 7 {
		t.Fatalf("version = %d, want 7", id.Version())
	}
}

func TestUUIDFallback(t *testing.T) {
	gen := &UUID{next: func() (uuid.UUID, error) { return uuid.Nil, errors.New("clock") }}

	id, err := uuid.Parse(gen.Generate())
	if err != nil {
		t.Fatalf("Generate() produced invalid uuid: %v", err)
	}
	if id.Version() != 4 {
		t.Fatalf("version = %d, want 4", id.Version())
	}
}
