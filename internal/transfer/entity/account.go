package entity

import "time"

// Account is a platform account operated by this system. The session and
// secret fields stay inside the transfer module.
type Account struct {
	ID                  int64
	ExternalUserID      string
	Email               string
	CredentialSecret    string
	CachedSessionToken  string
	SessionExpiry       time.Time
	SecondFactorSecret  string
	SecondFactorEnabled bool
}

// HasValidSession reports whether the cached token can be used at now.
func (a *Account) HasValidSession(now time.Time) bool {
	return a.CachedSessionToken != "" && a.SessionExpiry.After(now)
}
