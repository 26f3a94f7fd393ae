// Package memory provides in-process implementations of every repository.
// It backs the server when no database DSN is configured and is used by
// service and HTTP tests. Writes are visible immediately; there are no
// transactions.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/chouaib-skitou/Festivio/internal/server/models"
	"github.com/google/uuid"
)

// Store holds all tables behind one lock so cross-table reads (back
// references, participant sets) are consistent.
type Store struct {
	mu sync.RWMutex

	users        map[string]*models.User
	events       map[string]*models.Event
	participants map[string][]string // event id -> user ids in join order
	tasks        map[string]*models.Task
	resets       map[string]*models.ResetPasswordRequest // token -> request

	now   func() time.Time
	newID func() string
}

func NewStore() *Store {
	return &Store{
		users:        map[string]*models.User{},
		events:       map[string]*models.Event{},
		participants: map[string][]string{},
		tasks:        map[string]*models.Task{},
		resets:       map[string]*models.ResetPasswordRequest{},
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

func (s *Store) Users() *UserRepository                 { return &UserRepository{s: s} }
func (s *Store) Events() *EventRepository               { return &EventRepository{s: s} }
func (s *Store) Tasks() *TaskRepository                 { return &TaskRepository{s: s} }
func (s *Store) ResetRequests() *ResetRequestRepository { return &ResetRequestRepository{s: s} }

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// tasksOfEvent must be called with mu held.
func (s *Store) tasksOfEvent(eventID string) []string {
	var ts []*models.Task
	for _, t := range s.tasks {
		if t.EventID != nil && *t.EventID == eventID {
			ts = append(ts, t)
		}
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].CreatedAt.Before(ts[j].CreatedAt) })

	ids := make([]string, 0, len(ts))
	for _, t := range ts {
		ids = append(ids, t.ID)
	}
	return ids
}
