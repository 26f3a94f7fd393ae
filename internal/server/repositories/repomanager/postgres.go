package repomanager

import (
	"context"
	"database/sql"

	"github.com/chouaib-skitou/Festivio/internal/dbx"
	"github.com/chouaib-skitou/Festivio/internal/server/migrations"
	"github.com/chouaib-skitou/Festivio/internal/server/repositories/events"
	"github.com/chouaib-skitou/Festivio/internal/server/repositories/resetrequests"
	"github.com/chouaib-skitou/Festivio/internal/server/repositories/tasks"
	"github.com/chouaib-skitou/Festivio/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories. When a
// Redis client is attached, reset requests are kept in Redis instead.
type PostgresRepositoryManager struct {
	redis redis.UniversalClient
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Events returns an events.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Events(db dbx.DBTX) events.Repository {
	return events.NewPostgresRepository(db)
}

// Tasks returns a tasks.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Tasks(db dbx.DBTX) tasks.Repository {
	return tasks.NewPostgresRepository(db)
}

// ResetRequests returns the reset-request ledger storage. The Redis variant
// ignores db.
func (m *PostgresRepositoryManager) ResetRequests(db dbx.DBTX) resetrequests.Repository {
	if m.redis != nil {
		return resetrequests.NewRedisRepository(m.redis, "")
	}
	return resetrequests.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
// redisClient may be nil.
func NewPostgresRepositoryManager(redisClient redis.UniversalClient) RepositoryManager {
	return &PostgresRepositoryManager{redis: redisClient}
}
