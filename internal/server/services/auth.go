package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chouaib-skitou/Festivio/internal/common"
	"github.com/chouaib-skitou/Festivio/internal/dbx"
	"github.com/chouaib-skitou/Festivio/internal/server/auth"
	"github.com/chouaib-skitou/Festivio/internal/server/ledger"
	"github.com/chouaib-skitou/Festivio/internal/server/mailer"
	"github.com/chouaib-skitou/Festivio/internal/server/models"
)

// AuthConfig holds the workflow settings that do not belong to the token
// service.
type AuthConfig struct {
	// PublicBaseURL prefixes the verification link, e.g. http://localhost:5000.
	PublicBaseURL string
	// FrontendURL prefixes the reset-password link and the post-verify redirect.
	FrontendURL string
	// ResetRequestTTL is the ledger lifetime of a reset request. Zero or a
	// negative value selects the reset token lifetime, so the ledger never
	// outlives the token it records.
	ResetRequestTTL time.Duration
	// HideUnknownResetEmails answers reset requests for unknown emails with
	// the generic success instead of common.ErrorNotFound.
	HideUnknownResetEmails bool
}

type RegisterInput struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Username  string  `json:"username" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=6"`
	Role      string  `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordInput struct {
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// TokenPair is what the client keeps between requests.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Session is the result of a successful login.
type Session struct {
	User models.UserView `json:"user"`
	TokenPair
}

// AuthService drives registration, email verification, login, token refresh
// and password reset.
type AuthService struct {
	deps   Deps
	tokens *auth.TokenService
	ledger *ledger.Ledger
	mailer mailer.Mailer
	cfg    AuthConfig
}

// NewAuthService builds the workflow. A non-positive cfg.ResetRequestTTL is
// replaced by tokens.ResetTTL(); there is no way to configure ledger entries
// that are born expired.
func NewAuthService(deps Deps, tokens *auth.TokenService, l *ledger.Ledger, m mailer.Mailer, cfg AuthConfig) *AuthService {
	if cfg.ResetRequestTTL <= 0 {
		cfg.ResetRequestTTL = tokens.ResetTTL()
	}
	return &AuthService{deps: deps, tokens: tokens, ledger: l, mailer: m, cfg: cfg}
}

// Register creates an unverified account and mails a verification link.
// No tokens are returned; the account must be verified before login.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	role, err := validateRegister(in)
	if err != nil {
		return nil, err
	}

	repo := s.deps.Repos.Users(s.deps.DB)

	existing, err := repo.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		if existing.IsVerified {
			return nil, common.ErrDuplicateEmail
		}
		return nil, common.ErrDuplicateUnverified
	case !errors.Is(err, common.ErrorNotFound):
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := repo.Create(ctx, &models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return nil, err
	}

	s.deps.logger().Info(ctx, "user registered", "user_id", user.ID, "role", user.Role)

	if err := s.sendVerification(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func validateRegister(in RegisterInput) (models.Role, error) {
	ve := &common.ValidationError{}
	if err := validateStruct(in); err != nil && !errors.As(err, &ve) {
		return "", err
	}

	role := models.RoleParticipant
	if in.Role != "" {
		r, err := models.ParseRole(in.Role)
		switch {
		case err != nil:
			ve.Add("role", "is invalid")
		case r == models.RoleAdmin:
			ve.Add("role", "cannot be self-assigned")
		default:
			role = r
		}
	}

	return role, ve.OrNil()
}

// ResendVerification mails a fresh verification link to an unverified account.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	if err := validateStruct(struct {
		Email string `json:"email" validate:"required,email"`
	}{email}); err != nil {
		return err
	}

	user, err := s.deps.Repos.Users(s.deps.DB).GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return common.ErrAlreadyVerified
	}
	return s.sendVerification(ctx, user)
}

func (s *AuthService) sendVerification(ctx context.Context, user *models.User) error {
	token, err := s.tokens.IssueEmailVerificationToken(user.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	link := fmt.Sprintf("%s/api/auth/verify-email/%s/%s", strings.TrimRight(s.cfg.PublicBaseURL, "/"), user.ID, token)
	if err := s.mailer.SendVerification(ctx, user.Email, link); err != nil {
		s.deps.logger().Warn(ctx, "verification email not sent", "user_id", user.ID, "error", err)
		return fmt.Errorf("%w: send verification email", common.ErrorInternal)
	}
	return nil
}

// VerifyEmail marks userID verified when token is a valid verification token
// issued for that user.
func (s *AuthService) VerifyEmail(ctx context.Context, userID, token string) error {
	claims, err := s.tokens.Verify(token, auth.PurposeVerification)
	if err != nil || claims.Subject != userID {
		return common.ErrInvalidToken
	}

	return s.deps.Tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.deps.Repos.Users(tx)

		user, err := repo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user.IsVerified {
			return common.ErrAlreadyVerified
		}

		user.IsVerified = true
		if err := repo.Update(ctx, user); err != nil {
			return err
		}

		s.deps.logger().Info(ctx, "email verified", "user_id", userID)
		return nil
	})
}

// Login checks the password first and only then the verification state, so
// ErrEmailNotVerified is never returned for a wrong password.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	repo := s.deps.Repos.Users(s.deps.DB)

	user, err := repo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		return nil, common.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, common.ErrEmailNotVerified
	}

	access, err := s.tokens.IssueAccessToken(user.ID, user.Role.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	refresh, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if err := loadUserRefs(ctx, repo, user); err != nil {
		return nil, err
	}

	return &Session{
		User:      user.View(),
		TokenPair: TokenPair{AccessToken: access, RefreshToken: refresh},
	}, nil
}

// Refresh mints a new access token carrying the user's current role. The
// refresh token is returned unchanged.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, common.ErrMissingToken
	}

	repo := s.deps.Repos.Users(s.deps.DB)
	access, err := s.tokens.RefreshAccessToken(refreshToken, func(userID string) (string, error) {
		user, err := repo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return "", common.ErrInvalidRefreshToken
			}
			return "", err
		}
		return user.Role.String(), nil
	})
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refreshToken}, nil
}

// RequestPasswordReset records a ledger entry and mails the reset link.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.deps.Repos.Users(s.deps.DB).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) && s.cfg.HideUnknownResetEmails {
			s.deps.logger().Debug(ctx, "reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := s.tokens.IssuePasswordResetToken(user.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if _, err := s.ledger.Create(ctx, s.deps.DB, user.ID, token, s.cfg.ResetRequestTTL); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password/%s", strings.TrimRight(s.cfg.FrontendURL, "/"), token)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		s.deps.logger().Warn(ctx, "password reset email not sent", "user_id", user.ID, "error", err)
		return fmt.Errorf("%w: send password reset email", common.ErrorInternal)
	}

	s.deps.logger().Info(ctx, "password reset requested", "user_id", user.ID)
	return nil
}

// ResetPassword spends a reset token. The ledger entry must exist and be
// unexpired, and the token must verify for the same user. The entry is
// consumed and the new hash stored in one transaction.
func (s *AuthService) ResetPassword(ctx context.Context, token string, in ResetPasswordInput) error {
	if in.NewPassword != in.ConfirmPassword {
		return common.ErrPasswordMismatch
	}
	if err := validateStruct(in); err != nil {
		return err
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}

	return s.deps.Tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		req, err := s.ledger.Find(ctx, tx, token)
		if err != nil {
			return invalidResetToken(err)
		}

		claims, err := s.tokens.Verify(token, auth.PurposeReset)
		if err != nil || claims.Subject != req.UserID {
			return common.ErrInvalidOrExpiredToken
		}

		if err := s.ledger.Consume(ctx, tx, req); err != nil {
			return invalidResetToken(err)
		}

		repo := s.deps.Repos.Users(tx)
		user, err := repo.GetByID(ctx, req.UserID)
		if err != nil {
			return invalidResetToken(err)
		}

		user.PasswordHash = hash
		if err := repo.Update(ctx, user); err != nil {
			return err
		}

		s.deps.logger().Info(ctx, "password reset", "user_id", user.ID)
		return nil
	})
}

func invalidResetToken(err error) error {
	switch {
	case errors.Is(err, common.ErrResetTokenNotFound),
		errors.Is(err, common.ErrResetTokenExpired),
		errors.Is(err, common.ErrorNotFound):
		return common.ErrInvalidOrExpiredToken
	default:
		return err
	}
}
