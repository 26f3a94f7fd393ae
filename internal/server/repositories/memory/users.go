package memory

import (
	"context"
	"sort"

	"github.com/chouaib-skitou/Festivio/internal/common"
	"github.com/chouaib-skitou/Festivio/internal/server/models"
)

type UserRepository struct {
	s *Store
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.FirstName = cloneStringPtr(u.FirstName)
	c.LastName = cloneStringPtr(u.LastName)
	c.Events = nil
	c.Tasks = nil
	return &c
}

func (r *UserRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return nil, common.ErrDuplicateEmail
		}
	}

	now := r.s.now()
	user.ID = r.s.newID()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = copyUser(user)
	return user, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepository) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; !ok {
		return common.ErrorNotFound
	}
	for id, u := range r.s.users {
		if id != user.ID && u.Email == user.Email {
			return common.ErrDuplicateEmail
		}
	}

	user.UpdatedAt = r.s.now()
	r.s.users[user.ID] = copyUser(user)
	return nil
}

func (r *UserRepository) List(_ context.Context, role *models.Role) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []*models.User{}
	for _, u := range r.s.users {
		if role != nil && u.Role != *role {
			continue
		}
		result = append(result, copyUser(u))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *UserRepository) EventIDs(_ context.Context, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := []string{}
	for id, e := range r.s.events {
		if e.OrganizerID == userID {
			ids = append(ids, id)
			continue
		}
		for _, p := range r.s.participants[id] {
			if p == userID {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *UserRepository) TaskIDs(_ context.Context, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var ts []*models.Task
	for _, t := range r.s.tasks {
		if t.AssignedTo != nil && *t.AssignedTo == userID {
			ts = append(ts, t)
		}
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].CreatedAt.Before(ts[j].CreatedAt) })

	ids := make([]string, 0, len(ts))
	for _, t := range ts {
		ids = append(ids, t.ID)
	}
	return ids, nil
}
