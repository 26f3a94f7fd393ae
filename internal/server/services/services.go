// Package services holds the authentication workflow and the resource
// services. Every operation takes the requester identity explicitly; nothing
// is read from ambient state.
package services

import (
	"github.com/chouaib-skitou/Festivio/internal/dbx"
	"github.com/chouaib-skitou/Festivio/internal/logging"
	"github.com/chouaib-skitou/Festivio/internal/server/repositories/repomanager"
)

// Deps are the collaborators shared by all services. DB may be nil when
// Repos is the in-memory manager.
type Deps struct {
	DB     dbx.DBTX
	Tx     dbx.Transactor
	Repos  repomanager.RepositoryManager
	Logger logging.Logger
}

func (d Deps) logger() logging.Logger {
	if d.Logger == nil {
		return logging.Nop{}
	}
	return d.Logger
}
