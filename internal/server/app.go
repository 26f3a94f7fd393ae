// Package server initializes and runs the Festivio backend. It selects the
// storage backends, wires the services, and runs the REST API and the gRPC
// health service until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chouaib-skitou/Festivio/internal/dbx"
	"github.com/chouaib-skitou/Festivio/internal/logging"
	"github.com/chouaib-skitou/Festivio/internal/server/auth"
	"github.com/chouaib-skitou/Festivio/internal/server/config"
	"github.com/chouaib-skitou/Festivio/internal/server/ledger"
	"github.com/chouaib-skitou/Festivio/internal/server/mailer"
	"github.com/chouaib-skitou/Festivio/internal/server/repositories/repomanager"
	"github.com/chouaib-skitou/Festivio/internal/server/services"
	"github.com/chouaib-skitou/Festivio/internal/server/storage"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	gs "github.com/chouaib-skitou/Festivio/internal/server/grpc"
	hs "github.com/chouaib-skitou/Festivio/internal/server/http"
)

var (
	sqlOpen        = sql.Open
	newRedisClient = func(addr string) redis.UniversalClient {
		return redis.NewClient(&redis.Options{Addr: addr})
	}
)

type App struct {
	config *config.Config
	logger logging.Logger

	db    *sql.DB
	redis redis.UniversalClient

	tokens   *auth.TokenService
	handlers *hs.Handlers
	users    *services.UserService
}

// NewApp connects the configured stores and builds the services. An empty
// DatabaseDSN selects the in-memory store.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogFormat)
	if err != nil {
		return nil, err
	}

	app := &App{config: c, logger: logger}

	if c.RedisAddr != "" {
		app.redis = newRedisClient(c.RedisAddr)
		if err := app.redis.Ping(ctx).Err(); err != nil {
			app.Close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
	}

	deps := services.Deps{Logger: logger}
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "no database configured, using in-memory store")
		deps.Repos = repomanager.NewMemoryRepositoryManager(app.redis)
		deps.Tx = dbx.NoopTransactor{}
	} else {
		db, err := openDB(ctx, c.DatabaseDSN)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db = db

		repos := repomanager.NewPostgresRepositoryManager(app.redis)
		if err := repos.RunMigrations(ctx, db); err != nil {
			app.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		deps.DB = db
		deps.Repos = repos
		deps.Tx = dbx.SQLTransactor{DB: db}
	}

	policy, err := services.ParseListingPolicy(c.ListingPolicy)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("listing policy: %w", err)
	}

	app.tokens = auth.NewTokenService(auth.TokenSecrets{
		Access:       []byte(c.AccessTokenSecret),
		Refresh:      []byte(c.RefreshTokenSecret),
		Verification: []byte(c.VerificationTokenSecret),
		Reset:        []byte(c.ResetTokenSecret),
	}, auth.TokenTTLs{
		Access:       c.AccessTokenValidityDuration,
		Refresh:      c.RefreshTokenValidityDuration,
		Verification: c.VerificationTokenValidityDuration,
		Reset:        c.ResetTokenValidityDuration,
	})

	authService := services.NewAuthService(deps, app.tokens, ledger.New(deps.Repos), newMailer(c, logger), services.AuthConfig{
		PublicBaseURL:          c.PublicBaseURL,
		FrontendURL:            c.FrontendURL,
		ResetRequestTTL:        c.ResetRequestValidityDuration,
		HideUnknownResetEmails: c.HideUnknownResetEmails,
	})

	var images storage.ImageStore
	if c.S3Bucket != "" {
		images = storage.NewS3ImageStore(storage.S3Config{
			RootUser:     c.S3RootUser,
			RootPassword: c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
	}

	app.users = services.NewUserService(deps)
	app.handlers = &hs.Handlers{
		Auth:        authService,
		Events:      services.NewEventService(deps, policy, images),
		Tasks:       services.NewTaskService(deps),
		Users:       app.users,
		FrontendURL: c.FrontendURL,
		Logger:      logger,
	}
	if app.db != nil {
		app.handlers.Health = app.db
	}

	return app, nil
}

func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newMailer(c *config.Config, logger logging.Logger) mailer.Mailer {
	if c.SMTPHost == "" {
		return mailer.NewLogMailer(logger)
	}
	return mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		User:     c.SMTPUser,
		Password: c.SMTPPassword,
		From:     c.MailFrom,
	}, logger)
}

// Users exposes the user service for the admin command.
func (app *App) Users() *services.UserService { return app.users }

// Close releases the store connections.
func (app *App) Close() {
	if app.db != nil {
		_ = app.db.Close()
	}
	if app.redis != nil {
		_ = app.redis.Close()
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	router := hs.NewRouter(app.handlers, app.tokens)
	s := hs.NewServer(app.config.EndpointAddrHTTP, app.logger, router)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	var store gs.Pinger
	if app.db != nil {
		store = app.db
	}
	s := gs.NewHealthServer(app.config.EndpointAddrGRPC, app.logger, store)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a signal arrives, or a server fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.Close()

	app.logger.Info(ctx, "App stopped")
}
