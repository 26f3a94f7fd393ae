package memory

import (
	"context"
	"sort"

	"github.com/chouaib-skitou/Festivio/internal/common"
	"github.com/chouaib-skitou/Festivio/internal/server/models"
	"github.com/chouaib-skitou/Festivio/internal/server/repositories/events"
)

type EventRepository struct {
	s *Store
}

// loadEvent must be called with mu held.
func (r *EventRepository) loadEvent(e *models.Event) *models.Event {
	c := *e
	c.Participants = cloneStrings(r.s.participants[e.ID])
	c.Tasks = r.s.tasksOfEvent(e.ID)
	return &c
}

func (r *EventRepository) Create(_ context.Context, event *models.Event) (*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	event.ID = r.s.newID()
	event.CreatedAt = now
	event.UpdatedAt = now
	event.Participants = []string{}
	event.Tasks = []string{}

	stored := *event
	r.s.events[event.ID] = &stored
	return event, nil
}

func (r *EventRepository) GetByID(_ context.Context, id string) (*models.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.events[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.loadEvent(e), nil
}

func (r *EventRepository) List(_ context.Context, f events.Filter) ([]*models.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []*models.Event{}
	for _, e := range r.s.events {
		if f.OrganizerID != "" && e.OrganizerID != f.OrganizerID {
			continue
		}
		loaded := r.loadEvent(e)
		if f.ParticipantID != "" && !loaded.HasParticipant(f.ParticipantID) {
			continue
		}
		result = append(result, loaded)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (r *EventRepository) Update(_ context.Context, event *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.events[event.ID]
	if !ok {
		return common.ErrorNotFound
	}
	stored.Name = event.Name
	stored.Description = event.Description
	stored.Date = event.Date
	stored.ImageKey = event.ImageKey
	stored.UpdatedAt = r.s.now()
	event.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *EventRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.events, id)
	delete(r.s.participants, id)
	for tid, t := range r.s.tasks {
		if t.EventID != nil && *t.EventID == id {
			delete(r.s.tasks, tid)
		}
	}
	return nil
}

func (r *EventRepository) AddParticipant(_ context.Context, eventID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[eventID]; !ok {
		return common.ErrorNotFound
	}
	for _, p := range r.s.participants[eventID] {
		if p == userID {
			return common.ErrAlreadyParticipating
		}
	}
	r.s.participants[eventID] = append(r.s.participants[eventID], userID)
	return nil
}

func (r *EventRepository) RemoveParticipant(_ context.Context, eventID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ps := r.s.participants[eventID]
	for i, p := range ps {
		if p == userID {
			r.s.participants[eventID] = append(ps[:i:i], ps[i+1:]...)
			return nil
		}
	}
	return common.ErrNotParticipating
}

func (r *EventRepository) SetParticipants(_ context.Context, eventID string, userIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[eventID]; !ok {
		return common.ErrorNotFound
	}

	seen := make(map[string]bool, len(userIDs))
	set := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if !seen[id] {
			seen[id] = true
			set = append(set, id)
		}
	}
	r.s.participants[eventID] = set
	return nil
}
