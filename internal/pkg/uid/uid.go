// Package uid provides identifier generators.
//
// Entities use 64-bit snowflake ids so rows created within the same instant
// still sort in creation order. Messages and correlation use UUIDv7 strings.
package uid

// NumberID generates int64 identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}
