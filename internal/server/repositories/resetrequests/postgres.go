package resetrequests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chouaib-skitou/Festivio/internal/common"
	"github.com/chouaib-skitou/Festivio/internal/dbx"
	"github.com/chouaib-skitou/Festivio/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, req *models.ResetPasswordRequest) error {
	query := `
		INSERT INTO reset_password_requests (token, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowContext(ctx, query, req.Token, req.UserID, req.ExpiresAt).Scan(&req.ID, &req.CreatedAt); err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrResetTokenExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, token string) (*models.ResetPasswordRequest, error) {
	query := `
		SELECT id, token, user_id, expires_at, created_at
		FROM reset_password_requests
		WHERE token = $1
	`
	req := &models.ResetPasswordRequest{}
	if err := r.db.QueryRowContext(ctx, query, token).Scan(&req.ID, &req.Token, &req.UserID, &req.ExpiresAt, &req.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return req, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, token string) error {
	query := `
		DELETE FROM reset_password_requests
		WHERE token = $1
	`
	res, err := r.db.ExecContext(ctx, query, token)
	return dbx.ExpectOneRow(res, err, common.ErrorNotFound)
}
