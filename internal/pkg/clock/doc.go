// Package clock provides a tiny time abstraction.
//
// Session expiry checks, verification time windows and TOTP generation all
// read the time through Clocker, so tests can pin it with Manual instead of
// racing the wall clock.
package clock
