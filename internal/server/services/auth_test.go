package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chouaib-skitou/Festivio/internal/common"
	"github.com/chouaib-skitou/Festivio/internal/server/auth"
	mailmock "github.com/chouaib-skitou/Festivio/internal/server/mailer/mock"
	"github.com/chouaib-skitou/Festivio/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)

	valid := RegisterInput{Username: "ann", Email: "ann@example.com", Password: "secret1"}

	tests := []struct {
		name  string
		edit  func(in *RegisterInput)
		field string
	}{
		{"missing username", func(in *RegisterInput) { in.Username = "" }, "username"},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"short password", func(in *RegisterInput) { in.Password = "12345" }, "password"},
		{"unknown role", func(in *RegisterInput) { in.Role = "ROLE_GOD" }, "role"},
		{"admin role", func(in *RegisterInput) { in.Role = string(models.RoleAdmin) }, "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.edit(&in)

			_, err := f.auth.Register(context.Background(), in)

			var ve *common.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}

	_, err := f.repos.Users(nil).GetByEmail(context.Background(), "ann@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound, "nothing may be persisted on validation failure")
}

func TestRegister_CreatesUnverifiedParticipantAndMailsLink(t *testing.T) {
	f := newFixture(t)

	u, err := f.auth.Register(context.Background(), RegisterInput{
		Username: "ann",
		Email:    "ann@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, models.RoleParticipant, u.Role)
	assert.False(t, u.IsVerified)
	assert.True(t, auth.CheckPassword(u.PasswordHash, "secret1"))

	link := f.link("ann@example.com")
	assert.True(t, strings.HasPrefix(link, testBaseURL+"/api/auth/verify-email/"+u.ID+"/"), link)

	claims, err := f.tokens.Verify(f.linkToken(t, "ann@example.com"), auth.PurposeVerification)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)
}

func TestRegister_AcceptsLegacyOrganizerSpelling(t *testing.T) {
	f := newFixture(t)

	u, err := f.auth.Register(context.Background(), RegisterInput{
		Username: "olga", Email: "olga@example.com", Password: "secret1", Role: "Organizer",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleOrganizer, u.Role)
}

func TestRegister_Duplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := RegisterInput{Username: "ann", Email: "ann@example.com", Password: "secret1"}

	u, err := f.auth.Register(ctx, in)
	require.NoError(t, err)

	_, err = f.auth.Register(ctx, in)
	assert.ErrorIs(t, err, common.ErrDuplicateUnverified)

	require.NoError(t, f.auth.VerifyEmail(ctx, u.ID, f.linkToken(t, in.Email)))

	_, err = f.auth.Register(ctx, in)
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)
}

func TestRegister_MailerFailure(t *testing.T) {
	f := newFixture(t)

	m := &mailmock.MailerMock{}
	m.On("SendVerification", mock.Anything, "ann@example.com", mock.Anything).Return(errors.New("smtp down"))
	svc := NewAuthService(f.deps, f.tokens, f.ledger, m, AuthConfig{PublicBaseURL: testBaseURL})

	_, err := svc.Register(context.Background(), RegisterInput{Username: "ann", Email: "ann@example.com", Password: "secret1"})
	require.ErrorIs(t, err, common.ErrorInternal)
	m.AssertExpectations(t)

	// The account exists; a fresh link can be requested.
	u, err := f.repos.Users(nil).GetByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.False(t, u.IsVerified)

	require.NoError(t, f.auth.ResendVerification(context.Background(), "ann@example.com"))
	assert.NotEmpty(t, f.link("ann@example.com"))
}

func TestResendVerification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.auth.ResendVerification(ctx, "nobody@example.com"), common.ErrorNotFound)

	var ve *common.ValidationError
	assert.True(t, errors.As(f.auth.ResendVerification(ctx, "nope"), &ve))

	f.verified(t, "ann@example.com", models.RoleParticipant)
	assert.ErrorIs(t, f.auth.ResendVerification(ctx, "ann@example.com"), common.ErrAlreadyVerified)
}

func TestVerifyEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.register(t, "ann@example.com", models.RoleParticipant)
	token := f.linkToken(t, "ann@example.com")

	t.Run("token for another user", func(t *testing.T) {
		assert.ErrorIs(t, f.auth.VerifyEmail(ctx, "someone-else", token), common.ErrInvalidToken)
	})

	t.Run("access token is not a verification token", func(t *testing.T) {
		access, err := f.tokens.IssueAccessToken(u.ID, string(u.Role))
		require.NoError(t, err)
		assert.ErrorIs(t, f.auth.VerifyEmail(ctx, u.ID, access), common.ErrInvalidToken)
	})

	t.Run("unknown user", func(t *testing.T) {
		ghost, err := f.tokens.IssueEmailVerificationToken("ghost")
		require.NoError(t, err)
		assert.ErrorIs(t, f.auth.VerifyEmail(ctx, "ghost", ghost), common.ErrorNotFound)
	})

	t.Run("expired", func(t *testing.T) {
		f.advance(25 * time.Hour)
		defer f.advance(-25 * time.Hour)
		assert.ErrorIs(t, f.auth.VerifyEmail(ctx, u.ID, token), common.ErrInvalidToken)
	})

	require.NoError(t, f.auth.VerifyEmail(ctx, u.ID, token))

	got, err := f.repos.Users(nil).GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)

	assert.ErrorIs(t, f.auth.VerifyEmail(ctx, u.ID, token), common.ErrAlreadyVerified)

	again, err := f.repos.Users(nil).GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.register(t, "ann@example.com", models.RoleOrganizer)

	_, err := f.auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	// The password is checked before the verification state.
	_, err = f.auth.Login(ctx, LoginInput{Email: "ann@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, LoginInput{Email: "ann@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, common.ErrEmailNotVerified)

	require.NoError(t, f.auth.VerifyEmail(ctx, u.ID, f.linkToken(t, "ann@example.com")))

	s, err := f.auth.Login(ctx, LoginInput{Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, u.ID, s.User.ID)
	assert.True(t, s.User.IsVerified)
	assert.Equal(t, []string{}, s.User.Events)

	claims, err := f.tokens.Verify(s.AccessToken, auth.PurposeAccess)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)
	assert.Equal(t, string(models.RoleOrganizer), claims.Role)

	_, err = f.tokens.Verify(s.RefreshToken, auth.PurposeRefresh)
	require.NoError(t, err)
}

func TestLogin_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Login(context.Background(), LoginInput{Email: "", Password: ""})
	var ve *common.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "email")
	assert.Contains(t, ve.Fields, "password")
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.verified(t, "ann@example.com", models.RoleParticipant)
	s, err := f.auth.Login(ctx, LoginInput{Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.auth.Refresh(ctx, "")
	assert.ErrorIs(t, err, common.ErrMissingToken)

	_, err = f.auth.Refresh(ctx, s.AccessToken)
	assert.ErrorIs(t, err, common.ErrInvalidRefreshToken, "access token must not refresh")

	// The new access token carries the current role.
	user, err := f.repos.Users(nil).GetByID(ctx, id.Subject)
	require.NoError(t, err)
	user.Role = models.RoleOrganizerAdmin
	require.NoError(t, f.repos.Users(nil).Update(ctx, user))

	f.advance(time.Minute)
	pair, err := f.auth.Refresh(ctx, s.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, s.RefreshToken, pair.RefreshToken)

	claims, err := f.tokens.Verify(pair.AccessToken, auth.PurposeAccess)
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleOrganizerAdmin), claims.Role)

	_, err = f.tokens.Verify(pair.AccessToken, auth.PurposeRefresh)
	assert.Error(t, err, "refresh secret must not accept access tokens")

	f.advance(8 * 24 * time.Hour)
	_, err = f.auth.Refresh(ctx, s.RefreshToken)
	assert.ErrorIs(t, err, common.ErrInvalidRefreshToken)
}

func TestRefresh_UnknownSubject(t *testing.T) {
	f := newFixture(t)

	rt, err := f.tokens.IssueRefreshToken("ghost")
	require.NoError(t, err)

	_, err = f.auth.Refresh(context.Background(), rt)
	assert.ErrorIs(t, err, common.ErrInvalidRefreshToken)
}

func TestRequestPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email is reported", func(t *testing.T) {
		f := newFixture(t)
		assert.ErrorIs(t, f.auth.RequestPasswordReset(ctx, "nobody@example.com"), common.ErrorNotFound)
	})

	t.Run("unknown email can be hidden", func(t *testing.T) {
		f := newFixtureWith(t, AuthConfig{HideUnknownResetEmails: true})
		require.NoError(t, f.auth.RequestPasswordReset(ctx, "nobody@example.com"))
		f.mail.AssertNotCalled(t, "SendPasswordReset", mock.Anything, "nobody@example.com", mock.Anything)
	})

	t.Run("records ledger entry and mails link", func(t *testing.T) {
		f := newFixture(t)
		id := f.verified(t, "ann@example.com", models.RoleParticipant)

		require.NoError(t, f.auth.RequestPasswordReset(ctx, "ann@example.com"))

		link := f.link("ann@example.com")
		assert.True(t, strings.HasPrefix(link, testFrontendURL+"/reset-password/"), link)

		token := f.linkToken(t, "ann@example.com")
		req, err := f.repos.ResetRequests(nil).Find(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, id.Subject, req.UserID)
		assert.True(t, req.ExpiresAt.Equal(f.clock().Add(time.Hour)), "expires at %v", req.ExpiresAt)
	})

	t.Run("ledger lifetime", func(t *testing.T) {
		for _, tc := range []struct {
			name string
			ttl  time.Duration
			want time.Duration
		}{
			{"unset uses token lifetime", 0, time.Hour},
			{"negative uses token lifetime", -time.Minute, time.Hour},
			{"shorter than token", 10 * time.Minute, 10 * time.Minute},
		} {
			t.Run(tc.name, func(t *testing.T) {
				f := newFixture(t)
				f.verified(t, "ann@example.com", models.RoleParticipant)
				svc := NewAuthService(f.deps, f.tokens, f.ledger, f.mail, AuthConfig{
					PublicBaseURL: testBaseURL, FrontendURL: testFrontendURL, ResetRequestTTL: tc.ttl,
				})

				require.NoError(t, svc.RequestPasswordReset(ctx, "ann@example.com"))
				req, err := f.repos.ResetRequests(nil).Find(ctx, f.linkToken(t, "ann@example.com"))
				require.NoError(t, err)
				assert.True(t, req.ExpiresAt.Equal(f.clock().Add(tc.want)), "expires at %v", req.ExpiresAt)
			})
		}
	})

	t.Run("mailer failure", func(t *testing.T) {
		f := newFixture(t)
		f.verified(t, "ann@example.com", models.RoleParticipant)

		m := &mailmock.MailerMock{}
		m.On("SendPasswordReset", mock.Anything, "ann@example.com", mock.Anything).Return(errors.New("smtp down"))
		svc := NewAuthService(f.deps, f.tokens, f.ledger, m, AuthConfig{})

		assert.ErrorIs(t, svc.RequestPasswordReset(ctx, "ann@example.com"), common.ErrorInternal)
	})
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fixture, models.Identity, string) {
		f := newFixture(t)
		id := f.verified(t, "ann@example.com", models.RoleParticipant)
		require.NoError(t, f.auth.RequestPasswordReset(ctx, "ann@example.com"))
		return f, id, f.linkToken(t, "ann@example.com")
	}
	in := ResetPasswordInput{NewPassword: "newpass1", ConfirmPassword: "newpass1"}

	t.Run("mismatch", func(t *testing.T) {
		f, _, token := setup(t)
		err := f.auth.ResetPassword(ctx, token, ResetPasswordInput{NewPassword: "newpass1", ConfirmPassword: "newpass2"})
		assert.ErrorIs(t, err, common.ErrPasswordMismatch)
	})

	t.Run("too short", func(t *testing.T) {
		f, _, token := setup(t)
		err := f.auth.ResetPassword(ctx, token, ResetPasswordInput{NewPassword: "abc", ConfirmPassword: "abc"})
		var ve *common.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Contains(t, ve.Fields, "newPassword")
	})

	t.Run("unknown token", func(t *testing.T) {
		f, _, _ := setup(t)
		assert.ErrorIs(t, f.auth.ResetPassword(ctx, "bogus", in), common.ErrInvalidOrExpiredToken)
	})

	t.Run("ledger expired", func(t *testing.T) {
		f, _, token := setup(t)
		f.advance(time.Hour)
		assert.ErrorIs(t, f.auth.ResetPassword(ctx, token, in), common.ErrInvalidOrExpiredToken)
	})

	t.Run("ledger stricter than token", func(t *testing.T) {
		f, id, _ := setup(t)
		token, err := f.tokens.IssuePasswordResetToken(id.Subject)
		require.NoError(t, err)
		_, err = f.ledger.Create(ctx, nil, id.Subject, token, 0)
		require.NoError(t, err)

		assert.ErrorIs(t, f.auth.ResetPassword(ctx, token, in), common.ErrInvalidOrExpiredToken)
	})

	t.Run("token subject differs from ledger user", func(t *testing.T) {
		f, id, _ := setup(t)
		other, err := f.tokens.IssuePasswordResetToken("someone-else")
		require.NoError(t, err)
		_, err = f.ledger.Create(ctx, nil, id.Subject, other, time.Hour)
		require.NoError(t, err)

		assert.ErrorIs(t, f.auth.ResetPassword(ctx, other, in), common.ErrInvalidOrExpiredToken)

		_, err = f.repos.ResetRequests(nil).Find(ctx, other)
		assert.NoError(t, err, "a rejected token must not be consumed")
	})

	t.Run("wrong purpose token in ledger", func(t *testing.T) {
		f, id, _ := setup(t)
		access, err := f.tokens.IssueAccessToken(id.Subject, string(id.Role))
		require.NoError(t, err)
		_, err = f.ledger.Create(ctx, nil, id.Subject, access, time.Hour)
		require.NoError(t, err)

		assert.ErrorIs(t, f.auth.ResetPassword(ctx, access, in), common.ErrInvalidOrExpiredToken)
	})

	t.Run("several pending requests stay independent", func(t *testing.T) {
		f, _, first := setup(t)

		require.NoError(t, f.auth.RequestPasswordReset(ctx, "ann@example.com"))
		second := f.linkToken(t, "ann@example.com")
		require.NotEqual(t, first, second, "requests issued at the same instant must differ")

		for _, tok := range []string{first, second} {
			_, err := f.repos.ResetRequests(nil).Find(ctx, tok)
			require.NoError(t, err)
		}

		require.NoError(t, f.auth.ResetPassword(ctx, second, in))
		assert.ErrorIs(t, f.auth.ResetPassword(ctx, second, in), common.ErrInvalidOrExpiredToken)

		again := ResetPasswordInput{NewPassword: "newpass2", ConfirmPassword: "newpass2"}
		require.NoError(t, f.auth.ResetPassword(ctx, first, again))

		_, err := f.auth.Login(ctx, LoginInput{Email: "ann@example.com", Password: "newpass2"})
		assert.NoError(t, err)
	})

	t.Run("success is single use", func(t *testing.T) {
		f, _, token := setup(t)

		require.NoError(t, f.auth.ResetPassword(ctx, token, in))

		_, err := f.repos.ResetRequests(nil).Find(ctx, token)
		assert.ErrorIs(t, err, common.ErrorNotFound)

		assert.ErrorIs(t, f.auth.ResetPassword(ctx, token, in), common.ErrInvalidOrExpiredToken)

		_, err = f.auth.Login(ctx, LoginInput{Email: "ann@example.com", Password: "secret1"})
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)

		_, err = f.auth.Login(ctx, LoginInput{Email: "ann@example.com", Password: "newpass1"})
		assert.NoError(t, err)
	})
}

func TestResetPassword_ConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.verified(t, "ann@example.com", models.RoleParticipant)
	require.NoError(t, f.auth.RequestPasswordReset(ctx, "ann@example.com"))
	token := f.linkToken(t, "ann@example.com")

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.auth.ResetPassword(ctx, token, ResetPasswordInput{NewPassword: "newpass1", ConfirmPassword: "newpass1"})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, common.ErrInvalidOrExpiredToken)
	}
	assert.Equal(t, 1, wins)
}

func TestAuthFlow_RegisterVerifyLoginRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.auth.Register(ctx, RegisterInput{
		FirstName: strPtr("Ann"),
		Username:  "ann",
		Email:     "ann@example.com",
		Password:  "secret1",
		Role:      string(models.RoleOrganizer),
	})
	require.NoError(t, err)

	require.NoError(t, f.auth.VerifyEmail(ctx, u.ID, f.linkToken(t, "ann@example.com")))

	s, err := f.auth.Login(ctx, LoginInput{Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Ann", *s.User.FirstName)

	pair, err := f.auth.Refresh(ctx, s.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, s.RefreshToken, pair.RefreshToken)
	assert.NotEmpty(t, pair.AccessToken)
}
