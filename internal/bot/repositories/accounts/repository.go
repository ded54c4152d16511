package accounts

import (
	"context"

	"github.com/dmitrijs2005/tokenbot/internal/bot/models"
)

type Repository interface {
	Create(ctx context.Context, rec *models.AccountRecord) (*models.AccountRecord, error)
	ExistsByCredential(ctx context.Context, credential string) (bool, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	Count(ctx context.Context) (int64, error)
}
