package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tokenbot/internal/bot/models"
	"github.com/dmitrijs2005/tokenbot/internal/common"
	"github.com/dmitrijs2005/tokenbot/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert creates the user or refreshes its display fields. The authorized
// flag is OR-ed with the stored one, so a grant is never revoked here.
func (r *PostgresRepository) Upsert(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, username, first_name, last_name, authorized)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
		   username = excluded.username,
		   first_name = excluded.first_name,
		   last_name = excluded.last_name,
		   authorized = users.authorized OR excluded.authorized,
		   updated_at = now()
		 RETURNING authorized, refund_count, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.UserName, user.FirstName, user.LastName, user.Authorized).
		Scan(&user.Authorized, &user.RefundCount, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	query :=
		`SELECT id, username, first_name, last_name, authorized, refund_count, created_at, updated_at
		 FROM users
		 WHERE id = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.UserName, &user.FirstName, &user.LastName,
		&user.Authorized, &user.RefundCount, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// Grant sets the authorized flag, creating a bare row for users the bot has
// not met yet.
func (r *PostgresRepository) Grant(ctx context.Context, id int64) error {
	query :=
		`INSERT INTO users (id, authorized)
		 VALUES ($1, TRUE)
		 ON CONFLICT (id) DO UPDATE SET authorized = TRUE, updated_at = now()
		 `

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) IncrementRefundCount(ctx context.Context, id int64) (int64, error) {
	query :=
		`UPDATE users SET refund_count = refund_count + 1, updated_at = now()
		 WHERE id = $1
		 RETURNING refund_count
		 `

	var count int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(&count)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return count, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}
