package accounts

import (
	"context"
	"encoding/json"
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

func (r *PostgresRepository) Create(ctx context.Context, rec *models.AccountRecord) (*models.AccountRecord, error) {
	a := rec.Account

	subscriptionIDs, err := jsonList(a.SubscriptionIDs)
	if err != nil {
		return nil, err
	}
	phoneIDKeys, err := jsonList(a.PhoneIDKeys)
	if err != nil {
		return nil, err
	}
	flags, err := jsonMap(a.Flags)
	if err != nil {
		return nil, err
	}

	// raw_body is BYTEA: responses are stored as received, NULs and all.
	query :=
		`INSERT INTO account_records (user_id, credential, authorized, token_valid, can_order, rating, status,
		   loyalty, subscription_ids, subscription_count, debt_flow_enabled, debt_limit, phone, phone_id_keys,
		   user_ref, account_ref, device_ref, session_ref, flags, parsed, status_code, raw_body)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		 RETURNING id, created_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		rec.UserID, rec.Credential, a.Authorized, a.TokenValid, a.CanOrder, a.Rating, a.Status,
		a.Loyalty, subscriptionIDs, a.SubscriptionCount, a.DebtFlowEnabled, a.DebtLimit, a.Phone, phoneIDKeys,
		a.UserRef, a.AccountRef, a.DeviceRef, a.SessionRef, flags, rec.Parsed, rec.StatusCode, []byte(rec.RawBody),
	).Scan(&rec.ID, &rec.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

func (r *PostgresRepository) ExistsByCredential(ctx context.Context, credential string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM account_records WHERE credential = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, credential).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM account_records WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM account_records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

// jsonList encodes items for a JSONB column; nil becomes [].
func jsonList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}

func jsonMap(m map[string]string) (string, error) {
	if m == nil {
		m = map[string]string{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode map: %w", err)
	}
	return string(b), nil
}
