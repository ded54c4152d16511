// Package services contains the bot's business logic on top of the
// repositories: user profiles and admin queries, account verification, and
// refund submission.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/tokenbot/internal/bot/models"
	"github.com/dmitrijs2005/tokenbot/internal/bot/repositories/repomanager"
)

// AllowList is the fixed set of administrator ids.
type AllowList map[int64]struct{}

func NewAllowList(ids []int64) AllowList {
	a := make(AllowList, len(ids))
	for _, id := range ids {
		a[id] = struct{}{}
	}
	return a
}

func (a AllowList) Contains(id int64) bool {
	_, ok := a[id]
	return ok
}

// UserService maintains user profiles and answers admin queries.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	admins      AllowList
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, admins AllowList) *UserService {
	return &UserService{db: db, repomanager: m, admins: admins}
}

// IsAdmin reports membership in the administrator allow-list.
func (s *UserService) IsAdmin(userID int64) bool {
	return s.admins.Contains(userID)
}

// Touch upserts the profile seen on a conversation entry. Administrators are
// always stored as authorized; everyone else keeps whatever flag they had.
func (s *UserService) Touch(ctx context.Context, u *models.User) (*models.User, error) {
	u.Authorized = s.IsAdmin(u.ID)
	out, err := s.repomanager.Users(s.db).Upsert(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("error saving user: %w", err)
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, userID int64) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return u, nil
}

// Grant marks userID as authorized for refunds.
func (s *UserService) Grant(ctx context.Context, userID int64) error {
	if err := s.repomanager.Users(s.db).Grant(ctx, userID); err != nil {
		return fmt.Errorf("error granting access: %w", err)
	}
	return nil
}

// Stats returns the per-user drill-down. Accounts are counted from their
// records; refunds come from the stored counter.
func (s *UserService) Stats(ctx context.Context, userID int64) (*models.UserStats, error) {
	u, err := s.repomanager.Users(s.db).Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	accounts, err := s.repomanager.Accounts(s.db).CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error counting accounts: %w", err)
	}
	return &models.UserStats{User: u, AccountCount: accounts, RefundCount: u.RefundCount}, nil
}

func (s *UserService) Totals(ctx context.Context) (*models.Totals, error) {
	var t models.Totals
	var err error

	if t.Users, err = s.repomanager.Users(s.db).Count(ctx); err != nil {
		return nil, fmt.Errorf("error counting users: %w", err)
	}
	if t.Accounts, err = s.repomanager.Accounts(s.db).Count(ctx); err != nil {
		return nil, fmt.Errorf("error counting accounts: %w", err)
	}
	if t.Refunds, err = s.repomanager.Refunds(s.db).Count(ctx); err != nil {
		return nil, fmt.Errorf("error counting refunds: %w", err)
	}
	return &t, nil
}
