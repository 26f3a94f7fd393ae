package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chouaib-skitou/Festivio/internal/dbx"
	"github.com/chouaib-skitou/Festivio/internal/logging"
	"github.com/chouaib-skitou/Festivio/internal/server/auth"
	"github.com/chouaib-skitou/Festivio/internal/server/ledger"
	mailmock "github.com/chouaib-skitou/Festivio/internal/server/mailer/mock"
	"github.com/chouaib-skitou/Festivio/internal/server/models"
	"github.com/chouaib-skitou/Festivio/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testBaseURL     = "http://api.test"
	testFrontendURL = "http://app.test"
)

type fixture struct {
	repos  *repomanager.MemoryRepositoryManager
	deps   Deps
	tokens *auth.TokenService
	ledger *ledger.Ledger
	mail   *mailmock.MailerMock
	auth   *AuthService

	mu    sync.Mutex
	now   time.Time
	links map[string]string // recipient -> last link mailed
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, AuthConfig{})
}

func newFixtureWith(t *testing.T, cfg AuthConfig) *fixture {
	t.Helper()

	f := &fixture{
		repos: repomanager.NewMemoryRepositoryManager(nil),
		now:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		links: map[string]string{},
		mail:  &mailmock.MailerMock{},
	}
	f.deps = Deps{
		Tx:     dbx.NoopTransactor{},
		Repos:  f.repos,
		Logger: logging.Nop{},
	}

	f.tokens = auth.NewTokenService(auth.TokenSecrets{
		Access:       []byte("access-secret"),
		Refresh:      []byte("refresh-secret"),
		Verification: []byte("verification-secret"),
		Reset:        []byte("reset-secret"),
	}, auth.TokenTTLs{
		Access:       15 * time.Minute,
		Refresh:      7 * 24 * time.Hour,
		Verification: 24 * time.Hour,
		Reset:        time.Hour,
	})
	f.tokens.Now = f.clock

	f.ledger = ledger.New(f.repos)
	f.ledger.Now = f.clock

	capture := func(args mock.Arguments) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.links[args.String(1)] = args.String(2)
	}
	f.mail.On("SendVerification", mock.Anything, mock.Anything, mock.Anything).Run(capture).Return(nil).Maybe()
	f.mail.On("SendPasswordReset", mock.Anything, mock.Anything, mock.Anything).Run(capture).Return(nil).Maybe()

	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = testBaseURL
	}
	if cfg.FrontendURL == "" {
		cfg.FrontendURL = testFrontendURL
	}
	f.auth = NewAuthService(f.deps, f.tokens, f.ledger, f.mail, cfg)
	return f
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// linkToken returns the last path segment of the last link mailed to email.
func (f *fixture) linkToken(t *testing.T, email string) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	link, ok := f.links[email]
	require.True(t, ok, "no mail sent to %s", email)
	return link[strings.LastIndex(link, "/")+1:]
}

func (f *fixture) link(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.links[email]
}

// register creates an unverified account with password "secret1".
func (f *fixture) register(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), RegisterInput{
		Username: strings.Split(email, "@")[0],
		Email:    email,
		Password: "secret1",
		Role:     string(role),
	})
	require.NoError(t, err)
	return u
}

// verified registers and verifies an account and returns its identity.
func (f *fixture) verified(t *testing.T, email string, role models.Role) models.Identity {
	t.Helper()
	u := f.register(t, email, role)
	require.NoError(t, f.auth.VerifyEmail(context.Background(), u.ID, f.linkToken(t, email)))
	return models.Identity{Subject: u.ID, Role: u.Role}
}

func strPtr(s string) *string { return &s }
