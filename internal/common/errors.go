// Package common defines shared constants and sentinel errors used across
// the Festivio server layers. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"sort"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrDuplicateEmail = errors.New("user already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Token lifecycle errors.
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature mismatch")

	// Authentication workflow errors.
	ErrDuplicateUnverified   = errors.New("user already exists but email is not verified")
	ErrAlreadyVerified       = errors.New("user is already verified")
	ErrInvalidToken          = errors.New("invalid token")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrEmailNotVerified      = errors.New("email not verified")
	ErrMissingToken          = errors.New("token required")
	ErrInvalidRefreshToken   = errors.New("invalid refresh token")
	ErrPasswordMismatch      = errors.New("passwords do not match")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

	// Reset-request ledger errors.
	ErrResetTokenNotFound = errors.New("reset token not found")
	ErrResetTokenExpired  = errors.New("reset token expired")
	ErrResetTokenExists   = errors.New("reset token already recorded")

	// Authorization errors.
	ErrAccessDenied      = errors.New("access denied")
	ErrOrganizerMismatch = errors.New("organizer mismatch")

	// Participation errors.
	ErrAlreadyParticipating = errors.New("already participating")
	ErrNotParticipating     = errors.New("not participating")
)

// ValidationError carries field-level validation failures.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError from field/reason pairs.
func NewValidationError(kv ...string) *ValidationError {
	v := &ValidationError{Fields: make(map[string]string, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Fields[kv[i]] = kv[i+1]
	}
	return v
}

// Add records a failure for field, keeping the first reason reported.
func (v *ValidationError) Add(field, reason string) {
	if v.Fields == nil {
		v.Fields = map[string]string{}
	}
	if _, ok := v.Fields[field]; !ok {
		v.Fields[field] = reason
	}
}

// Empty reports whether no failures were recorded.
func (v *ValidationError) Empty() bool {
	return v == nil || len(v.Fields) == 0
}

// OrNil returns v as an error, or nil when nothing was recorded.
func (v *ValidationError) OrNil() error {
	if v.Empty() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v.Fields[k])
	}
	return "validation error: " + strings.Join(parts, "; ")
}
