package services

import (
	"context"
	"errors"

	"github.com/chouaib-skitou/Festivio/internal/common"
	"github.com/chouaib-skitou/Festivio/internal/dbx"
	"github.com/chouaib-skitou/Festivio/internal/server/models"
)

type TaskInput struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	AssignedTo  *string `json:"assignedTo"`
	EventID     *string `json:"eventId"`
}

// TaskPatch applies only the fields present. An empty AssignedTo or EventID
// clears the reference.
type TaskPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	AssignedTo  *string `json:"assignedTo"`
	EventID     *string `json:"eventId"`
}

// TaskService manages tasks. Any authenticated user may create one; the
// creator, the assignee and the organizer of the task's event may change it;
// only the creator and the event organizer may delete it.
type TaskService struct {
	deps Deps
}

func NewTaskService(deps Deps) *TaskService {
	return &TaskService{deps: deps}
}

func (s *TaskService) Create(ctx context.Context, id models.Identity, in TaskInput) (*models.Task, error) {
	if err := requireRole(id); err != nil {
		return nil, err
	}

	ve := &common.ValidationError{}
	if err := validateStruct(in); err != nil && !errors.As(err, &ve) {
		return nil, err
	}

	task := &models.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      models.TaskPending,
		AssignedTo:  nonEmpty(in.AssignedTo),
		EventID:     nonEmpty(in.EventID),
		CreatedBy:   id.Subject,
	}
	if in.Status != "" {
		st, err := models.ParseTaskStatus(in.Status)
		if err != nil {
			ve.Add("status", "is invalid")
		}
		task.Status = st
	}
	if err := s.checkRefs(ctx, s.deps.DB, task, ve); err != nil {
		return nil, err
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	created, err := s.deps.Repos.Tasks(s.deps.DB).Create(ctx, task)
	if err != nil {
		return nil, err
	}

	s.deps.logger().Info(ctx, "task created", "task_id", created.ID, "created_by", id.Subject)
	return created, nil
}

// List returns all tasks, or those of eventID when it is non-empty.
func (s *TaskService) List(ctx context.Context, id models.Identity, eventID string) ([]*models.Task, error) {
	if err := requireRole(id); err != nil {
		return nil, err
	}
	return s.deps.Repos.Tasks(s.deps.DB).List(ctx, eventID)
}

func (s *TaskService) Get(ctx context.Context, id models.Identity, taskID string) (*models.Task, error) {
	if err := requireRole(id); err != nil {
		return nil, err
	}
	return s.deps.Repos.Tasks(s.deps.DB).GetByID(ctx, taskID)
}

func (s *TaskService) Update(ctx context.Context, id models.Identity, taskID string, in TaskInput) (*models.Task, error) {
	patch := TaskPatch{
		Title:       &in.Title,
		Description: &in.Description,
		AssignedTo:  in.AssignedTo,
		EventID:     in.EventID,
	}
	if in.Status != "" {
		patch.Status = &in.Status
	}

	var out *models.Task
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		task, err := s.modifiable(ctx, tx, id, taskID, true)
		if err != nil {
			return err
		}

		ve := &common.ValidationError{}
		if err := validateStruct(in); err != nil && !errors.As(err, &ve) {
			return err
		}
		// A full update replaces the references too.
		task.AssignedTo, task.EventID = nil, nil
		out, err = s.apply(ctx, tx, task, patch, ve)
		return err
	})
	return out, err
}

func (s *TaskService) Patch(ctx context.Context, id models.Identity, taskID string, in TaskPatch) (*models.Task, error) {
	var out *models.Task
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		task, err := s.modifiable(ctx, tx, id, taskID, true)
		if err != nil {
			return err
		}
		out, err = s.apply(ctx, tx, task, in, &common.ValidationError{})
		return err
	})
	return out, err
}

func (s *TaskService) Delete(ctx context.Context, id models.Identity, taskID string) error {
	return s.deps.Tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.modifiable(ctx, tx, id, taskID, false); err != nil {
			return err
		}
		if err := s.deps.Repos.Tasks(tx).Delete(ctx, taskID); err != nil {
			return err
		}

		s.deps.logger().Info(ctx, "task deleted", "task_id", taskID)
		return nil
	})
}

// modifiable loads the task and checks that id may change it. The assignee
// counts only when allowAssignee is set.
func (s *TaskService) modifiable(ctx context.Context, db dbx.DBTX, id models.Identity, taskID string, allowAssignee bool) (*models.Task, error) {
	if err := requireRole(id); err != nil {
		return nil, err
	}

	task, err := s.deps.Repos.Tasks(db).GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if task.CreatedBy == id.Subject {
		return task, nil
	}
	if allowAssignee && task.AssignedTo != nil && *task.AssignedTo == id.Subject {
		return task, nil
	}
	if task.EventID != nil {
		event, err := s.deps.Repos.Events(db).GetByID(ctx, *task.EventID)
		switch {
		case err == nil:
			if event.OrganizerID == id.Subject {
				return task, nil
			}
		case !errors.Is(err, common.ErrorNotFound):
			return nil, err
		}
	}
	return nil, common.ErrAccessDenied
}

func (s *TaskService) apply(ctx context.Context, db dbx.DBTX, task *models.Task, in TaskPatch, ve *common.ValidationError) (*models.Task, error) {
	if in.Title != nil {
		if *in.Title == "" {
			ve.Add("title", "is required")
		}
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		st, err := models.ParseTaskStatus(*in.Status)
		if err != nil {
			ve.Add("status", "is invalid")
		}
		task.Status = st
	}
	if in.AssignedTo != nil {
		task.AssignedTo = nonEmpty(in.AssignedTo)
	}
	if in.EventID != nil {
		task.EventID = nonEmpty(in.EventID)
	}

	if err := s.checkRefs(ctx, db, task, ve); err != nil {
		return nil, err
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	if err := s.deps.Repos.Tasks(db).Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// checkRefs records a validation failure for each reference to a missing
// event or user.
func (s *TaskService) checkRefs(ctx context.Context, db dbx.DBTX, task *models.Task, ve *common.ValidationError) error {
	if task.EventID != nil {
		_, err := s.deps.Repos.Events(db).GetByID(ctx, *task.EventID)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			ve.Add("eventId", "unknown event")
		case err != nil:
			return err
		}
	}
	if task.AssignedTo != nil {
		_, err := s.deps.Repos.Users(db).GetByID(ctx, *task.AssignedTo)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			ve.Add("assignedTo", "unknown user")
		case err != nil:
			return err
		}
	}
	return nil
}

func nonEmpty(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	v := *p
	return &v
}
