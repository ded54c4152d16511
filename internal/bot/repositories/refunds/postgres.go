package refunds

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tokenbot/internal/bot/models"
	"github.com/dmitrijs2005/tokenbot/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, rec *models.RefundRecord) (*models.RefundRecord, error) {
	query :=
		`INSERT INTO refund_records (user_id, credential, order_id, has_photo, photo_filename, photo_key,
		   message, request_id, trace_id, status_code, raw_body)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		rec.UserID, rec.Credential, rec.OrderID, rec.HasPhoto, rec.PhotoFilename, rec.PhotoKey,
		rec.Message, rec.RequestID, rec.TraceID, rec.StatusCode, []byte(rec.RawBody),
	).Scan(&rec.ID, &rec.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

func (r *PostgresRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM refund_records WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM refund_records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}
