// Package inmemory is a process-local RepositoryManager. It backs the bot when
// no database DSN is configured and serves as the store in flow tests.
package inmemory

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/tokenbot/internal/bot/models"
	"github.com/dmitrijs2005/tokenbot/internal/bot/repositories/accounts"
	"github.com/dmitrijs2005/tokenbot/internal/bot/repositories/refunds"
	"github.com/dmitrijs2005/tokenbot/internal/bot/repositories/users"
	"github.com/dmitrijs2005/tokenbot/internal/common"
	"github.com/dmitrijs2005/tokenbot/internal/dbx"
)

type store struct {
	mu         sync.RWMutex
	users      map[int64]models.User
	accounts   []models.AccountRecord
	refunds    []models.RefundRecord
	accountSeq int64
	refundSeq  int64
	now        func() time.Time
}

var errNoSQL = errors.New("inmemory: no SQL backend")

// txLog records how to undo the writes made through repositories created
// for one WithTx call. It is a dbx.DBTX only so it can be handed to the
// repository factories; its SQL methods are never used.
type txLog struct {
	undo []func()
}

func (*txLog) ExecContext(context.Context, string, ...any) (sql.Result, error) { return nil, errNoSQL }
func (*txLog) QueryContext(context.Context, string, ...any) (*sql.Rows, error) { return nil, errNoSQL }
func (*txLog) QueryRowContext(context.Context, string, ...any) *sql.Row { return nil }

// record must be called with store.mu held.
func (l *txLog) record(fn func()) {
	if l != nil {
		l.undo = append(l.undo, fn)
	}
}

func asLog(tx dbx.DBTX) *txLog {
	l, _ := tx.(*txLog)
	return l
}

// RepositoryManager keeps all records in memory. The db arguments are ignored.
type RepositoryManager struct {
	txMu  sync.Mutex
	store *store
}

func NewRepositoryManager() *RepositoryManager {
	return &RepositoryManager{store: &store{
		users: make(map[int64]models.User),
		now:   func() time.Time { return time.Now().UTC() },
	}}
}

func (m *RepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *RepositoryManager) Users(tx dbx.DBTX) users.Repository {
	return &userRepo{s: m.store, tx: asLog(tx)}
}

func (m *RepositoryManager) Accounts(tx dbx.DBTX) accounts.Repository {
	return &accountRepo{s: m.store, tx: asLog(tx)}
}

func (m *RepositoryManager) Refunds(tx dbx.DBTX) refunds.Repository {
	return &refundRepo{s: m.store, tx: asLog(tx)}
}

// WithTx serializes units of work. When fn fails, only the writes fn made
// are undone, newest first; writes from outside the unit survive.
func (m *RepositoryManager) WithTx(ctx context.Context, _ *sql.DB, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	tl := &txLog{}
	if err := fn(ctx, tl); err != nil {
		m.store.mu.Lock()
		for i := len(tl.undo) - 1; i >= 0; i-- {
			tl.undo[i]()
		}
		m.store.mu.Unlock()
		return err
	}
	return nil
}

// AccountRecords returns a copy of every stored account record.
func (m *RepositoryManager) AccountRecords() []models.AccountRecord {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	return append([]models.AccountRecord(nil), m.store.accounts...)
}

// RefundRecords returns a copy of every stored refund record.
func (m *RepositoryManager) RefundRecords() []models.RefundRecord {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	return append([]models.RefundRecord(nil), m.store.refunds...)
}

// restoreUser returns an undo step putting back the given state of user id.
func (s *store) restoreUser(id int64, prev models.User, existed bool) func() {
	return func() {
		if existed {
			s.users[id] = prev
		} else {
			delete(s.users, id)
		}
	}
}

type userRepo struct {
	s  *store
	tx *txLog
}

func (r *userRepo) Upsert(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	cur, ok := r.s.users[u.ID]
	r.tx.record(r.s.restoreUser(u.ID, cur, ok))
	if !ok {
		cur = models.User{ID: u.ID, CreatedAt: now}
	}
	cur.UserName, cur.FirstName, cur.LastName = u.UserName, u.FirstName, u.LastName
	cur.Authorized = cur.Authorized || u.Authorized
	cur.UpdatedAt = now
	r.s.users[u.ID] = cur

	out := cur
	return &out, nil
}

func (r *userRepo) Get(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *userRepo) Grant(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	u, ok := r.s.users[id]
	r.tx.record(r.s.restoreUser(id, u, ok))
	if !ok {
		u = models.User{ID: id, CreatedAt: now}
	}
	u.Authorized = true
	u.UpdatedAt = now
	r.s.users[id] = u
	return nil
}

func (r *userRepo) IncrementRefundCount(_ context.Context, id int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return 0, common.ErrorNotFound
	}
	u.RefundCount++
	r.s.users[id] = u
	r.tx.record(func() {
		if cur, ok := r.s.users[id]; ok {
			cur.RefundCount--
			r.s.users[id] = cur
		}
	})
	return u.RefundCount, nil
}

func (r *userRepo) Count(context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.users)), nil
}

type accountRepo struct {
	s  *store
	tx *txLog
}

func (r *accountRepo) Create(_ context.Context, rec *models.AccountRecord) (*models.AccountRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.accountSeq++
	rec.ID = r.s.accountSeq
	rec.CreatedAt = r.s.now()
	r.s.accounts = append(r.s.accounts, *rec)
	id := rec.ID
	r.tx.record(func() {
		r.s.accounts = slices.DeleteFunc(r.s.accounts, func(a models.AccountRecord) bool { return a.ID == id })
	})
	return rec, nil
}

func (r *accountRepo) ExistsByCredential(_ context.Context, credential string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.accounts {
		if a.Credential == credential {
			return true, nil
		}
	}
	return false, nil
}

func (r *accountRepo) CountByUser(_ context.Context, userID int64) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, a := range r.s.accounts {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *accountRepo) Count(context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.accounts)), nil
}

type refundRepo struct {
	s  *store
	tx *txLog
}

func (r *refundRepo) Create(_ context.Context, rec *models.RefundRecord) (*models.RefundRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[rec.UserID]; !ok {
		return nil, common.ErrorNotFound
	}
	r.s.refundSeq++
	rec.ID = r.s.refundSeq
	rec.CreatedAt = r.s.now()
	r.s.refunds = append(r.s.refunds, *rec)
	id := rec.ID
	r.tx.record(func() {
		r.s.refunds = slices.DeleteFunc(r.s.refunds, func(rf models.RefundRecord) bool { return rf.ID == id })
	})
	return rec, nil
}

func (r *refundRepo) CountByUser(_ context.Context, userID int64) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, rf := range r.s.refunds {
		if rf.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *refundRepo) Count(context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.refunds)), nil
}
