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
	"github.com/dmitrijs2005/tokenbot/internal/common"
	"github.com/dmitrijs2005/tokenbot/internal/dbx"
	"github.com/dmitrijs2005/tokenbot/internal/logging"
)

const pipelineRefund = "refund"

// RefundSubmitter is the remote refund call.
type RefundSubmitter interface {
	SubmitRefund(ctx context.Context, credential, traceID string, req remote.RefundRequest) remote.Response
}

// PhotoArchive stores a local photo somewhere durable and returns its key.
type PhotoArchive interface {
	Upload(ctx context.Context, userID int64, path string) (string, error)
}

// Refund is a confirmed refund request as collected by the chat flow.
type Refund struct {
	UserID        int64
	Credential    string
	OrderID       string
	HasPhoto      bool
	PhotoFilename string
	PhotoPath     string
	Message       string
}

var (
	newRequestID = common.NewRequestID
	newTraceID   = common.NewTraceID
)

type RefundService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	remote      RefundSubmitter
	archive     PhotoArchive
	metrics     *observability.Metrics
	logger      logging.Logger
}

// NewRefundService builds the service. archive may be nil, in which case
// photos stay local only.
func NewRefundService(db *sql.DB, m repomanager.RepositoryManager, r RefundSubmitter, archive PhotoArchive,
	metrics *observability.Metrics, logger logging.Logger) *RefundService {
	return &RefundService{db: db, repomanager: m, remote: r, archive: archive, metrics: metrics, logger: logger}
}

// Submit sends the refund with fresh correlation ids, then stores the record
// and bumps the user's refund counter in one transaction. The counter moves on
// every submission regardless of the remote outcome.
func (s *RefundService) Submit(ctx context.Context, r Refund) (*models.RefundRecord, error) {
	requestID, err := newRequestID()
	if err != nil {
		return nil, fmt.Errorf("error generating request id: %w", err)
	}
	traceID, err := newTraceID()
	if err != nil {
		return nil, fmt.Errorf("error generating trace id: %w", err)
	}

	rec := &models.RefundRecord{
		UserID:     r.UserID,
		Credential: r.Credential,
		OrderID:    r.OrderID,
		HasPhoto:   r.HasPhoto,
		Message:    r.Message,
		RequestID:  requestID,
		TraceID:    traceID,
	}
	if r.HasPhoto && r.PhotoFilename != "" {
		name := r.PhotoFilename
		rec.PhotoFilename = &name
		if s.archive != nil && r.PhotoPath != "" {
			key, err := s.archive.Upload(ctx, r.UserID, r.PhotoPath)
			if err != nil {
				s.logger.Warn(ctx, "photo archive failed", "user_id", r.UserID, "file", name, "error", err)
			} else {
				rec.PhotoKey = &key
			}
		}
	}

	started := time.Now()
	res := s.remote.SubmitRefund(ctx, r.Credential, traceID, remote.RefundRequest{
		OrderID:   r.OrderID,
		Message:   r.Message,
		HasPhoto:  r.HasPhoto,
		RequestID: requestID,
	})
	if s.metrics != nil {
		s.metrics.ObserveRemoteCall(pipelineRefund, res.StatusCode, time.Since(started))
	}
	if res.Err != nil {
		s.logger.Warn(ctx, "refund submission failed", "user_id", r.UserID, "request_id", requestID, "error", res.Err)
	}
	rec.StatusCode = res.StatusCode
	rec.RawBody = string(res.Body)

	err = s.repomanager.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Refunds(tx).Create(ctx, rec); err != nil {
			return fmt.Errorf("error saving refund record: %w", err)
		}
		if _, err := s.repomanager.Users(tx).IncrementRefundCount(ctx, r.UserID); err != nil {
			return fmt.Errorf("error incrementing refund counter: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordsWritten.WithLabelValues("refund_records").Inc()
	}
	return rec, nil
}
