package refunds

import (
	"context"

	"github.com/dmitrijs2005/tokenbot/internal/bot/models"
)

type Repository interface {
	Create(ctx context.Context, rec *models.RefundRecord) (*models.RefundRecord, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	Count(ctx context.Context) (int64, error)
}
