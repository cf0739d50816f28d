// Package validator provides a small validation abstraction for input and
// domain structs.
//
// Business code depends on the Validator interface so validation can be
// shared and faked in tests. The go-playground/validator v10 implementation
// lives in this package.
package validator
