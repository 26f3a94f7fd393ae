// Package users is the credential store: persisted account records looked up
// by email or id.
package users

import (
	"context"

	"github.com/chouaib-skitou/Festivio/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills its ID and timestamps.
	// Returns common.ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// Update overwrites every mutable column; last write wins.
	Update(ctx context.Context, user *models.User) error
	// List returns all users, or only those with the given role.
	List(ctx context.Context, role *models.Role) ([]*models.User, error)
	// EventIDs returns events the user organizes or participates in.
	EventIDs(ctx context.Context, userID string) ([]string, error)
	// TaskIDs returns tasks assigned to the user.
	TaskIDs(ctx context.Context, userID string) ([]string, error)
}
