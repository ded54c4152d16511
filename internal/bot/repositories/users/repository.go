package users

import (
	"context"

	"github.com/dmitrijs2005/tokenbot/internal/bot/models"
)

type Repository interface {
	Upsert(ctx context.Context, user *models.User) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	Grant(ctx context.Context, id int64) error
	IncrementRefundCount(ctx context.Context, id int64) (int64, error)
	Count(ctx context.Context) (int64, error)
}
