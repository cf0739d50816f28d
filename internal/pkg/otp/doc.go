// Package otp generates time-based one-time passwords (TOTP) and decodes
// otpauth provisioning URIs.
//
// It is used to satisfy a second authentication factor without a human in the
// loop: the shared secret stored for an account is turned into the code the
// provider expects for the current time step.
package otp
