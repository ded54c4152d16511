// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/tokenbot/internal/bot/migrations"
	"github.com/dmitrijs2005/tokenbot/internal/bot/repositories/accounts"
	"github.com/dmitrijs2005/tokenbot/internal/bot/repositories/refunds"
	"github.com/dmitrijs2005/tokenbot/internal/bot/repositories/users"
	"github.com/dmitrijs2005/tokenbot/internal/dbx"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories and exposes
// a schema migration hook.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Refunds(db dbx.DBTX) refunds.Repository {
	return refunds.NewPostgresRepository(db)
}

// WithTx runs fn inside a database transaction.
func (m *PostgresRepositoryManager) WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return dbx.WithTx(ctx, db, nil, fn)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// sqlOpen is a seam for testing sql.Open.
var sqlOpen = sql.Open

// RunMigrations applies the embedded migrations.
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

// Open connects to PostgreSQL through the pgx stdlib driver and pings it.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
