package repomanager

import (
	"context"
	"database/sql"

	"github.com/avoronova/kinkeeper/internal/dbx"
	"github.com/avoronova/kinkeeper/internal/server/repositories/tombstones"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Tombstones(db dbx.DBTX) tombstones.Repository
}
