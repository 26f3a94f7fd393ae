// Package resetrequests declares the storage contract for password-reset
// ledger entries, with PostgreSQL and Redis implementations.
package resetrequests

import (
	"context"

	"github.com/chouaib-skitou/Festivio/internal/server/models"
)

// Repository stores single-use reset requests keyed by their token.
type Repository interface {
	// Create stores req and fills its ID and CreatedAt. A token that is
	// already recorded fails with common.ErrResetTokenExists.
	Create(ctx context.Context, req *models.ResetPasswordRequest) error

	// Find looks up a request by token. Returns common.ErrorNotFound when absent.
	// Expired entries may still be returned; callers check ExpiresAt.
	Find(ctx context.Context, token string) (*models.ResetPasswordRequest, error)

	// Delete removes the request for token and returns common.ErrorNotFound when
	// there was nothing to remove. Of several concurrent callers at most one
	// succeeds.
	Delete(ctx context.Context, token string) error
}
