package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chouaib-skitou/Festivio/internal/common"
	"github.com/chouaib-skitou/Festivio/internal/dbx"
	"github.com/chouaib-skitou/Festivio/internal/server/models"
	"github.com/chouaib-skitou/Festivio/internal/server/storage"
)

type EventInput struct {
	Name        string     `json:"name" validate:"required"`
	Description string     `json:"description"`
	Date        *time.Time `json:"date" validate:"required"`
	// Organizer may be sent by clients but must name the requester (on
	// create) or the current organizer (on update).
	Organizer *string `json:"organizer"`
	// Participants, when present, replaces the participant set. Every id
	// must name an existing user.
	Participants []string `json:"participants"`
}

type EventPatch struct {
	Name         *string    `json:"name"`
	Description  *string    `json:"description"`
	Date         *time.Time `json:"date"`
	Organizer    *string    `json:"organizer"`
	Participants []string   `json:"participants"`
}

// ImageUpload is a presigned URL the client PUTs the image bytes to.
type ImageUpload struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type EventService struct {
	deps   Deps
	policy ListingPolicy
	images storage.ImageStore
}

// NewEventService builds the service. images may be nil, in which case the
// image operations fail with common.ErrorInternal.
func NewEventService(deps Deps, policy ListingPolicy, images storage.ImageStore) *EventService {
	if policy == nil {
		policy = DefaultListingPolicy()
	}
	return &EventService{deps: deps, policy: policy, images: images}
}

func requireOrganizer(id models.Identity, e *models.Event) error {
	if e.OrganizerID != id.Subject {
		return common.ErrAccessDenied
	}
	return nil
}

func requireRole(id models.Identity) error {
	if id.Subject == "" || !id.Role.Valid() {
		return common.ErrAccessDenied
	}
	return nil
}

// participantIDs drops duplicate ids and records a validation failure when
// an id names no user.
func (s *EventService) participantIDs(ctx context.Context, db dbx.DBTX, ids []string, ve *common.ValidationError) ([]string, error) {
	users := s.deps.Repos.Users(db)
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, userID := range ids {
		if seen[userID] {
			continue
		}
		seen[userID] = true

		_, err := users.GetByID(ctx, userID)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			ve.Add("participants", "unknown user "+userID)
		case err != nil:
			return nil, err
		}
		out = append(out, userID)
	}
	return out, nil
}

func (s *EventService) Create(ctx context.Context, id models.Identity, in EventInput) (*models.Event, error) {
	if !id.Role.IsOrganizerClass() {
		return nil, common.ErrAccessDenied
	}
	if in.Organizer != nil && *in.Organizer != id.Subject {
		return nil, common.ErrOrganizerMismatch
	}

	var out *models.Event
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		ve := &common.ValidationError{}
		if err := validateStruct(in); err != nil && !errors.As(err, &ve) {
			return err
		}
		participants, err := s.participantIDs(ctx, tx, in.Participants, ve)
		if err != nil {
			return err
		}
		if err := ve.OrNil(); err != nil {
			return err
		}

		repo := s.deps.Repos.Events(tx)
		event, err := repo.Create(ctx, &models.Event{
			Name:        in.Name,
			Description: in.Description,
			Date:        *in.Date,
			OrganizerID: id.Subject,
		})
		if err != nil {
			return err
		}
		if len(participants) > 0 {
			if err := repo.SetParticipants(ctx, event.ID, participants); err != nil {
				return err
			}
			event.Participants = participants
		}
		out = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.logger().Info(ctx, "event created", "event_id", out.ID, "organizer", id.Subject)
	return out, nil
}

func (s *EventService) Get(ctx context.Context, id models.Identity, eventID string) (*models.Event, error) {
	if err := requireRole(id); err != nil {
		return nil, err
	}
	return s.deps.Repos.Events(s.deps.DB).GetByID(ctx, eventID)
}

// List returns the events visible to the requester under the listing policy.
func (s *EventService) List(ctx context.Context, id models.Identity) ([]*models.Event, error) {
	f, err := s.policy.Filter(id)
	if err != nil {
		return nil, err
	}
	return s.deps.Repos.Events(s.deps.DB).List(ctx, f)
}

// Update replaces name, description and date, and the participant set when
// in.Participants is present. The organizer cannot change.
func (s *EventService) Update(ctx context.Context, id models.Identity, eventID string, in EventInput) (*models.Event, error) {
	var out *models.Event
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.deps.Repos.Events(tx)

		event, err := repo.GetByID(ctx, eventID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(id, event); err != nil {
			return err
		}
		if in.Organizer != nil && *in.Organizer != event.OrganizerID {
			return common.ErrOrganizerMismatch
		}

		ve := &common.ValidationError{}
		if err := validateStruct(in); err != nil && !errors.As(err, &ve) {
			return err
		}
		var participants []string
		if in.Participants != nil {
			if participants, err = s.participantIDs(ctx, tx, in.Participants, ve); err != nil {
				return err
			}
		}
		if err := ve.OrNil(); err != nil {
			return err
		}

		event.Name = in.Name
		event.Description = in.Description
		event.Date = *in.Date
		if err := repo.Update(ctx, event); err != nil {
			return err
		}
		if in.Participants != nil {
			if err := repo.SetParticipants(ctx, event.ID, participants); err != nil {
				return err
			}
			event.Participants = participants
		}
		out = event
		return nil
	})
	return out, err
}

// Patch applies the fields present in in.
func (s *EventService) Patch(ctx context.Context, id models.Identity, eventID string, in EventPatch) (*models.Event, error) {
	var out *models.Event
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.deps.Repos.Events(tx)

		event, err := repo.GetByID(ctx, eventID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(id, event); err != nil {
			return err
		}
		if in.Organizer != nil && *in.Organizer != event.OrganizerID {
			return common.ErrOrganizerMismatch
		}

		ve := &common.ValidationError{}
		if in.Name != nil {
			if *in.Name == "" {
				ve.Add("name", "is required")
			}
			event.Name = *in.Name
		}
		if in.Description != nil {
			event.Description = *in.Description
		}
		if in.Date != nil {
			if in.Date.IsZero() {
				ve.Add("date", "is required")
			}
			event.Date = *in.Date
		}
		var participants []string
		if in.Participants != nil {
			if participants, err = s.participantIDs(ctx, tx, in.Participants, ve); err != nil {
				return err
			}
		}
		if err := ve.OrNil(); err != nil {
			return err
		}

		if err := repo.Update(ctx, event); err != nil {
			return err
		}
		if in.Participants != nil {
			if err := repo.SetParticipants(ctx, event.ID, participants); err != nil {
				return err
			}
			event.Participants = participants
		}
		out = event
		return nil
	})
	return out, err
}

func (s *EventService) Delete(ctx context.Context, id models.Identity, eventID string) error {
	return s.deps.Tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.deps.Repos.Events(tx)

		event, err := repo.GetByID(ctx, eventID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(id, event); err != nil {
			return err
		}
		if err := repo.Delete(ctx, eventID); err != nil {
			return err
		}

		s.deps.logger().Info(ctx, "event deleted", "event_id", eventID)
		return nil
	})
}

// Participate adds the requester to the event's participants.
func (s *EventService) Participate(ctx context.Context, id models.Identity, eventID string) error {
	if err := requireRole(id); err != nil {
		return err
	}
	return s.deps.Tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.deps.Repos.Events(tx)
		if _, err := repo.GetByID(ctx, eventID); err != nil {
			return err
		}
		return repo.AddParticipant(ctx, eventID, id.Subject)
	})
}

// Unparticipate removes the requester from the event's participants.
func (s *EventService) Unparticipate(ctx context.Context, id models.Identity, eventID string) error {
	if err := requireRole(id); err != nil {
		return err
	}
	return s.deps.Tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.deps.Repos.Events(tx)
		if _, err := repo.GetByID(ctx, eventID); err != nil {
			return err
		}
		return repo.RemoveParticipant(ctx, eventID, id.Subject)
	})
}

// ImageUploadURL presigns an upload for a new event image and records its key
// on the event.
func (s *EventService) ImageUploadURL(ctx context.Context, id models.Identity, eventID string) (*ImageUpload, error) {
	if s.images == nil {
		return nil, fmt.Errorf("%w: image storage not configured", common.ErrorInternal)
	}

	var out *ImageUpload
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.deps.Repos.Events(tx)

		event, err := repo.GetByID(ctx, eventID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(id, event); err != nil {
			return err
		}

		key, url, err := s.images.PresignUpload(ctx, eventID)
		if err != nil {
			return fmt.Errorf("presign upload: %w", err)
		}

		event.ImageKey = key
		if err := repo.Update(ctx, event); err != nil {
			return err
		}
		out = &ImageUpload{Key: key, URL: url}
		return nil
	})
	return out, err
}

// ImageURL presigns a download of the event's current image.
func (s *EventService) ImageURL(ctx context.Context, id models.Identity, eventID string) (string, error) {
	if s.images == nil {
		return "", fmt.Errorf("%w: image storage not configured", common.ErrorInternal)
	}

	event, err := s.Get(ctx, id, eventID)
	if err != nil {
		return "", err
	}
	if event.ImageKey == "" {
		return "", common.ErrorNotFound
	}

	url, err := s.images.PresignDownload(ctx, event.ImageKey)
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return url, nil
}
