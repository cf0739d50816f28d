package config

import (
	"io"
	"time"
)

// Config is the read-only view of application settings used by the wiring
// layer and the usecases.
//
// Missing keys resolve to the zero value of the requested type; callers that
// need a non-zero fallback apply it themselves.
type Config interface {
	io.Closer

	// GetBool returns the value for key as a bool.
	GetBool(key string) bool
	// GetString returns the value for key as a string.
	GetString(key string) string
	// GetInt returns the value for key as an int.
	GetInt(key string) int
	// GetInt32 returns the value for key as an int32.
	GetInt32(key string) int32
	// GetUint returns the value for key as a uint.
	GetUint(key string) uint
	// GetFloat64 returns the value for key as a float64.
	GetFloat64(key string) float64

	// GetMillisecond interprets the integer value for key as milliseconds.
	GetMillisecond(key string) time.Duration
	// GetSecond interprets the integer value for key as seconds.
	GetSecond(key string) time.Duration
	// GetMinute interprets the integer value for key as minutes.
	GetMinute(key string) time.Duration

	// GetArray returns the value for key split by commas. A YAML sequence is
	// accepted as well.
	GetArray(key string) []string
	// GetBinary returns the base64-decoded value for key, nil when invalid.
	GetBinary(key string) []byte
}
