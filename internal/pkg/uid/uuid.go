package uid

import "github.com/google/uuid"

// UUID generates UUIDv7 strings, used for correlation and message ids.
type UUID struct {
	next func() (uuid.UUID, error)
}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{next: uuid.NewV7}
}

// Generate returns a new UUID string. A random v4 is returned when the v7
// source fails.
func (u *UUID) Generate() string {
	if id, err := u.next(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
