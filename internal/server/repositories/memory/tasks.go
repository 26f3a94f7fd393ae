package memory

import (
	"context"
	"sort"

	"github.com/chouaib-skitou/Festivio/internal/common"
	"github.com/chouaib-skitou/Festivio/internal/server/models"
)

type TaskRepository struct {
	s *Store
}

func copyTask(t *models.Task) *models.Task {
	c := *t
	c.AssignedTo = cloneStringPtr(t.AssignedTo)
	c.EventID = cloneStringPtr(t.EventID)
	return &c
}

func (r *TaskRepository) Create(_ context.Context, task *models.Task) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	task.ID = r.s.newID()
	task.CreatedAt = now
	task.UpdatedAt = now
	r.s.tasks[task.ID] = copyTask(task)
	return task, nil
}

func (r *TaskRepository) GetByID(_ context.Context, id string) (*models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyTask(t), nil
}

func (r *TaskRepository) List(_ context.Context, eventID string) ([]*models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []*models.Task{}
	for _, t := range r.s.tasks {
		if eventID != "" && (t.EventID == nil || *t.EventID != eventID) {
			continue
		}
		result = append(result, copyTask(t))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *TaskRepository) Update(_ context.Context, task *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[task.ID]; !ok {
		return common.ErrorNotFound
	}
	task.UpdatedAt = r.s.now()
	r.s.tasks[task.ID] = copyTask(task)
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.tasks, id)
	return nil
}
