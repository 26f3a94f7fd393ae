// Package tasks stores tasks, optionally attached to events.
package tasks

import (
	"context"

	"github.com/chouaib-skitou/Festivio/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id string) (*models.Task, error)
	// List returns tasks, only those of eventID when it is non-empty.
	List(ctx context.Context, eventID string) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id string) error
}
