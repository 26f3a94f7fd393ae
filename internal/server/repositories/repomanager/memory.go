package repomanager

import (
	"context"
	"database/sql"

	"github.com/chouaib-skitou/Festivio/internal/dbx"
	"github.com/chouaib-skitou/Festivio/internal/server/repositories/events"
	"github.com/chouaib-skitou/Festivio/internal/server/repositories/memory"
	"github.com/chouaib-skitou/Festivio/internal/server/repositories/resetrequests"
	"github.com/chouaib-skitou/Festivio/internal/server/repositories/tasks"
	"github.com/chouaib-skitou/Festivio/internal/server/repositories/users"
	"github.com/redis/go-redis/v9"
)

// MemoryRepositoryManager serves every repository from one in-process store.
// The DBTX arguments are ignored; pair it with dbx.NoopTransactor.
type MemoryRepositoryManager struct {
	store *memory.Store
	redis redis.UniversalClient
}

// NewMemoryRepositoryManager builds a manager over a fresh store. redisClient
// may be nil.
func NewMemoryRepositoryManager(redisClient redis.UniversalClient) *MemoryRepositoryManager {
	return &MemoryRepositoryManager{store: memory.NewStore(), redis: redisClient}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository   { return m.store.Users() }
func (m *MemoryRepositoryManager) Events(dbx.DBTX) events.Repository { return m.store.Events() }
func (m *MemoryRepositoryManager) Tasks(dbx.DBTX) tasks.Repository   { return m.store.Tasks() }

func (m *MemoryRepositoryManager) ResetRequests(dbx.DBTX) resetrequests.Repository {
	if m.redis != nil {
		return resetrequests.NewRedisRepository(m.redis, "")
	}
	return m.store.ResetRequests()
}
