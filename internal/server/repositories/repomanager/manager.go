// Package repomanager vends repository implementations bound to a DBTX, so a
// service can use the same code path inside and outside a transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/chouaib-skitou/Festivio/internal/dbx"
	"github.com/chouaib-skitou/Festivio/internal/server/repositories/events"
	"github.com/chouaib-skitou/Festivio/internal/server/repositories/resetrequests"
	"github.com/chouaib-skitou/Festivio/internal/server/repositories/tasks"
	"github.com/chouaib-skitou/Festivio/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Events(db dbx.DBTX) events.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	ResetRequests(db dbx.DBTX) resetrequests.Repository
}
