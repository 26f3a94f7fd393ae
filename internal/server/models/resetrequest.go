package models

import "time"

// ResetPasswordRequest is a single-use ledger entry for a password reset.
// Token is stored verbatim so the emailed value can be looked up.
type ResetPasswordRequest struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the request is no longer usable at now.
func (r *ResetPasswordRequest) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
