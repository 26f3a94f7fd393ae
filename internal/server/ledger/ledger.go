// Package ledger tracks single-use password-reset requests. Ledger expiry is
// authoritative: a request past ExpiresAt is rejected even when the signed
// reset token it carries would still verify.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/chouaib-skitou/Festivio/internal/common"
	"github.com/chouaib-skitou/Festivio/internal/dbx"
	"github.com/chouaib-skitou/Festivio/internal/server/models"
	"github.com/chouaib-skitou/Festivio/internal/server/repositories/repomanager"
)

type Ledger struct {
	repomanager repomanager.RepositoryManager

	// Now is the clock used for ExpiresAt and expiry checks.
	Now func() time.Time
}

func New(m repomanager.RepositoryManager) *Ledger {
	return &Ledger{repomanager: m, Now: time.Now}
}

// Create records a request for userID valid for ttl from now.
func (l *Ledger) Create(ctx context.Context, db dbx.DBTX, userID, token string, ttl time.Duration) (*models.ResetPasswordRequest, error) {
	req := &models.ResetPasswordRequest{
		Token:     token,
		UserID:    userID,
		ExpiresAt: l.Now().Add(ttl),
	}
	if err := l.repomanager.ResetRequests(db).Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Find returns the live request for token. It fails with
// common.ErrResetTokenNotFound or common.ErrResetTokenExpired.
func (l *Ledger) Find(ctx context.Context, db dbx.DBTX, token string) (*models.ResetPasswordRequest, error) {
	req, err := l.repomanager.ResetRequests(db).Find(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrResetTokenNotFound
		}
		return nil, err
	}
	if req.Expired(l.Now()) {
		return nil, common.ErrResetTokenExpired
	}
	return req, nil
}

// Consume deletes req. Only one of several concurrent consumers succeeds;
// the others get common.ErrResetTokenNotFound.
func (l *Ledger) Consume(ctx context.Context, db dbx.DBTX, req *models.ResetPasswordRequest) error {
	err := l.repomanager.ResetRequests(db).Delete(ctx, req.Token)
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrResetTokenNotFound
	}
	return err
}
