package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/tokenbot/internal/bot/repositories/accounts"
	"github.com/dmitrijs2005/tokenbot/internal/bot/repositories/refunds"
	"github.com/dmitrijs2005/tokenbot/internal/bot/repositories/users"
	"github.com/dmitrijs2005/tokenbot/internal/dbx"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Accounts(db dbx.DBTX) accounts.Repository
	Refunds(db dbx.DBTX) refunds.Repository
	WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx dbx.DBTX) error) error
}
