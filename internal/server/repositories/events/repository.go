// Package events stores events and their participant sets.
package events

import (
	"context"

	"github.com/chouaib-skitou/Festivio/internal/server/models"
)

// Filter narrows List. Empty fields do not filter.
type Filter struct {
	OrganizerID   string
	ParticipantID string
}

type Repository interface {
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	// GetByID loads the event with its participant and task ids.
	GetByID(ctx context.Context, id string) (*models.Event, error)
	List(ctx context.Context, f Filter) ([]*models.Event, error)
	// Update writes name, description, date and image key.
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
	// AddParticipant returns common.ErrAlreadyParticipating when userID is
	// already in the set. The check and insert are one statement.
	AddParticipant(ctx context.Context, eventID, userID string) error
	// RemoveParticipant returns common.ErrNotParticipating when userID is
	// not in the set.
	RemoveParticipant(ctx context.Context, eventID, userID string) error
	// SetParticipants replaces the participant set with userIDs, keeping
	// their order. Callers run it in the same transaction as the event write.
	SetParticipants(ctx context.Context, eventID string, userIDs []string) error
}
