package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tokenbot/internal/bot/models"
	"github.com/dmitrijs2005/tokenbot/internal/bot/observability"
	"github.com/dmitrijs2005/tokenbot/internal/bot/remote"
	"github.com/dmitrijs2005/tokenbot/internal/bot/repositories/repomanager"
	"github.com/dmitrijs2005/tokenbot/internal/logging"
	"github.com/dmitrijs2005/tokenbot/internal/normalize"
)

const pipelineAccount = "account"

// AccountChecker is the remote account-check call.
type AccountChecker interface {
	CheckAccount(ctx context.Context, credential string) remote.Response
}

// AccountService verifies credentials against the remote API and keeps an
// append-only log of every attempt.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	remote      AccountChecker
	metrics     *observability.Metrics
	logger      logging.Logger
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, r AccountChecker,
	metrics *observability.Metrics, logger logging.Logger) *AccountService {
	return &AccountService{db: db, repomanager: m, remote: r, metrics: metrics, logger: logger}
}

// IsKnownCredential reports whether any account record already carries
// credential (exact match).
func (s *AccountService) IsKnownCredential(ctx context.Context, credential string) (bool, error) {
	ok, err := s.repomanager.Accounts(s.db).ExistsByCredential(ctx, credential)
	if err != nil {
		return false, fmt.Errorf("error checking credential: %w", err)
	}
	return ok, nil
}

// Verify calls the remote API and persists exactly one record whatever the
// outcome. When the body is not a JSON object the record keeps all defaults
// and Parsed is false. Only persistence failures are returned as errors.
func (s *AccountService) Verify(ctx context.Context, userID int64, credential string) (*models.AccountRecord, error) {
	started := time.Now()
	res := s.remote.CheckAccount(ctx, credential)
	if s.metrics != nil {
		s.metrics.ObserveRemoteCall(pipelineAccount, res.StatusCode, time.Since(started))
	}
	if res.Err != nil {
		s.logger.Warn(ctx, "account check failed", "user_id", userID, "status", res.StatusCode, "error", res.Err)
	}

	rec := &models.AccountRecord{
		UserID:     userID,
		Credential: credential,
		StatusCode: res.StatusCode,
		RawBody:    string(res.Body),
	}
	if root, ok := normalize.Parse(res.Body); ok && res.Err == nil {
		rec.Account = normalize.NormalizeAccount(root)
		rec.Parsed = true
	}

	out, err := s.repomanager.Accounts(s.db).Create(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("error saving account record: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordsWritten.WithLabelValues("account_records").Inc()
	}
	return out, nil
}
