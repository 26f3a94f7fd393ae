package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/chouaib-skitou/Festivio/internal/common"
	"github.com/chouaib-skitou/Festivio/internal/dbx"
	"github.com/chouaib-skitou/Festivio/internal/server/auth"
	"github.com/chouaib-skitou/Festivio/internal/server/models"
	"github.com/chouaib-skitou/Festivio/internal/server/repositories/users"
)

// ProfileUpdate applies only the fields present. Role may only be sent by
// an Admin.
type ProfileUpdate struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Role      *string `json:"role"`
}

type AdminInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type UserService struct {
	deps Deps
}

func NewUserService(deps Deps) *UserService {
	return &UserService{deps: deps}
}

func loadUserRefs(ctx context.Context, repo users.Repository, u *models.User) error {
	evs, err := repo.EventIDs(ctx, u.ID)
	if err != nil {
		return err
	}
	ts, err := repo.TaskIDs(ctx, u.ID)
	if err != nil {
		return err
	}
	u.Events, u.Tasks = evs, ts
	return nil
}

// canListUsers reports whether role may see the user directory.
func canListUsers(role models.Role) bool {
	switch role {
	case models.RoleAdmin, models.RoleOrganizer, models.RoleOrganizerAdmin:
		return true
	case models.RoleParticipant:
		return false
	default:
		return false
	}
}

// Me returns the requester's own profile.
func (s *UserService) Me(ctx context.Context, id models.Identity) (*models.UserView, error) {
	if err := requireRole(id); err != nil {
		return nil, err
	}

	repo := s.deps.Repos.Users(s.deps.DB)
	user, err := repo.GetByID(ctx, id.Subject)
	if err != nil {
		return nil, err
	}
	if err := loadUserRefs(ctx, repo, user); err != nil {
		return nil, err
	}

	v := user.View()
	return &v, nil
}

// List returns every user, or those with role when it is non-empty.
func (s *UserService) List(ctx context.Context, id models.Identity, role string) ([]models.UserView, error) {
	if !canListUsers(id.Role) {
		return nil, common.ErrAccessDenied
	}

	var filter *models.Role
	if role != "" {
		r, err := models.ParseRole(role)
		if err != nil {
			return nil, common.NewValidationError("role", "is invalid")
		}
		filter = &r
	}

	repo := s.deps.Repos.Users(s.deps.DB)
	list, err := repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]models.UserView, 0, len(list))
	for _, u := range list {
		if err := loadUserRefs(ctx, repo, u); err != nil {
			return nil, err
		}
		out = append(out, u.View())
	}
	return out, nil
}

// UpdateProfile changes userID's profile. The requester must be that user or
// an Admin.
func (s *UserService) UpdateProfile(ctx context.Context, id models.Identity, userID string, in ProfileUpdate) (*models.UserView, error) {
	isAdmin := id.Role == models.RoleAdmin
	if id.Subject != userID && !isAdmin {
		return nil, common.ErrAccessDenied
	}
	if in.Role != nil && !isAdmin {
		return nil, common.ErrAccessDenied
	}

	ve := &common.ValidationError{}
	if in.Username != nil && *in.Username == "" {
		ve.Add("username", "is required")
	}
	if in.Email != nil && validate.Var(*in.Email, "required,email") != nil {
		ve.Add("email", "must be a valid email")
	}
	if in.Password != nil && len(*in.Password) < MinPasswordLength {
		ve.Add("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	var role models.Role
	if in.Role != nil {
		r, err := models.ParseRole(*in.Role)
		if err != nil {
			ve.Add("role", "is invalid")
		}
		role = r
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	var hash string
	if in.Password != nil {
		h, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		hash = h
	}

	var out *models.UserView
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.deps.Repos.Users(tx)

		user, err := repo.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if in.FirstName != nil {
			user.FirstName = in.FirstName
		}
		if in.LastName != nil {
			user.LastName = in.LastName
		}
		if in.Username != nil {
			user.Username = *in.Username
		}
		if in.Email != nil {
			user.Email = *in.Email
		}
		if hash != "" {
			user.PasswordHash = hash
		}
		if in.Role != nil {
			user.Role = role
		}

		if err := repo.Update(ctx, user); err != nil {
			return err
		}
		if err := loadUserRefs(ctx, repo, user); err != nil {
			return err
		}

		v := user.View()
		out = &v
		return nil
	})
	if err != nil {
		return nil, err
	}

	if in.Role != nil {
		s.deps.logger().Info(ctx, "role changed", "user_id", userID, "role", role, "by", id.Subject)
	}
	return out, nil
}

// CreateAdmin creates a verified Admin account. Admins cannot register
// themselves; this is used by the admin command.
func (s *UserService) CreateAdmin(ctx context.Context, in AdminInput) (*models.User, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	repo := s.deps.Repos.Users(s.deps.DB)
	if _, err := repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, common.ErrDuplicateEmail
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := repo.Create(ctx, &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsVerified:   true,
	})
	if err != nil {
		return nil, err
	}

	s.deps.logger().Info(ctx, "admin created", "user_id", user.ID)
	return user, nil
}
