package inmemory

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/tokenbot/internal/bot/models"
	"github.com/dmitrijs2005/tokenbot/internal/bot/repositories/repomanager"
	"github.com/dmitrijs2005/tokenbot/internal/common"
	"github.com/dmitrijs2005/tokenbot/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ repomanager.RepositoryManager = (*RepositoryManager)(nil)

func TestUsers_UpsertNeverRevokesGrant(t *testing.T) {
	ctx := context.Background()
	m := NewRepositoryManager()
	users := m.Users(nil)

	_, err := users.Upsert(ctx, &models.User{ID: 1, UserName: "a"})
	require.NoError(t, err)
	require.NoError(t, users.Grant(ctx, 1))

	got, err := users.Upsert(ctx, &models.User{ID: 1, UserName: "renamed", Authorized: false})
	require.NoError(t, err)
	assert.True(t, got.Authorized)
	assert.Equal(t, "renamed", got.UserName)

	n, _ := users.Count(ctx)
	assert.Equal(t, int64(1), n)

	_, err = users.Get(ctx, 2)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAccounts_ExistsAndCounts(t *testing.T) {
	ctx := context.Background()
	m := NewRepositoryManager()
	repo := m.Accounts(nil)

	ok, _ := repo.ExistsByCredential(ctx, "abc")
	assert.False(t, ok)

	rec, err := repo.Create(ctx, &models.AccountRecord{UserID: 1, Credential: "abc"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.ID)
	_, _ = repo.Create(ctx, &models.AccountRecord{UserID: 2, Credential: "def"})

	ok, _ = repo.ExistsByCredential(ctx, "abc")
	assert.True(t, ok)
	n, _ := repo.CountByUser(ctx, 1)
	assert.Equal(t, int64(1), n)
	n, _ = repo.Count(ctx)
	assert.Equal(t, int64(2), n)
	assert.Len(t, m.AccountRecords(), 2)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	m := NewRepositoryManager()
	_, err := m.Users(nil).Upsert(ctx, &models.User{ID: 1})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = m.WithTx(ctx, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := m.Refunds(tx).Create(ctx, &models.RefundRecord{UserID: 1}); err != nil {
			return err
		}
		if _, err := m.Users(tx).IncrementRefundCount(ctx, 1); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	assert.Empty(t, m.RefundRecords())
	u, _ := m.Users(nil).Get(ctx, 1)
	assert.Equal(t, int64(0), u.RefundCount)

	require.NoError(t, m.WithTx(ctx, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := m.Refunds(tx).Create(ctx, &models.RefundRecord{UserID: 1}); err != nil {
			return err
		}
		_, err := m.Users(tx).IncrementRefundCount(ctx, 1)
		return err
	}))
	assert.Len(t, m.RefundRecords(), 1)
	u, _ = m.Users(nil).Get(ctx, 1)
	assert.Equal(t, int64(1), u.RefundCount)
}

func TestWithTx_RollbackKeepsOutsideWrites(t *testing.T) {
	ctx := context.Background()
	m := NewRepositoryManager()
	_, err := m.Users(nil).Upsert(ctx, &models.User{ID: 1})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = m.WithTx(ctx, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := m.Refunds(tx).Create(ctx, &models.RefundRecord{UserID: 1}); err != nil {
			return err
		}
		if _, err := m.Users(tx).IncrementRefundCount(ctx, 1); err != nil {
			return err
		}

		// Concurrent writers go through non-transactional repositories.
		if _, err := m.Users(nil).Upsert(ctx, &models.User{ID: 2, UserName: "bob"}); err != nil {
			return err
		}
		if _, err := m.Accounts(nil).Create(ctx, &models.AccountRecord{UserID: 2, Credential: "c"}); err != nil {
			return err
		}
		if err := m.Users(nil).Grant(ctx, 1); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	assert.Empty(t, m.RefundRecords())
	require.Len(t, m.AccountRecords(), 1)
	assert.Equal(t, "c", m.AccountRecords()[0].Credential)

	u1, err := m.Users(nil).Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), u1.RefundCount)
	assert.True(t, u1.Authorized)

	u2, err := m.Users(nil).Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "bob", u2.UserName)

	rec, err := m.Refunds(nil).Create(ctx, &models.RefundRecord{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.ID)
}

func TestRefunds_RequireUser(t *testing.T) {
	m := NewRepositoryManager()
	_, err := m.Refunds(nil).Create(context.Background(), &models.RefundRecord{UserID: 9})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
