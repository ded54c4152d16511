package conversation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestManager(timeout time.Duration) (*Manager, *time.Time) {
	m := NewManager(timeout)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestManager_StartGetEnd(t *testing.T) {
	m, _ := newTestManager(time.Minute)

	s := m.Start(1, 10, "account", "login")
	require.NotEmpty(t, s.ID)
	assert.Equal(t, FlowID("account"), s.Flow)
	assert.Equal(t, Step("login"), s.Step)
	assert.Equal(t, int64(10), s.ChatID)

	got, err := m.Get(1)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, 1, m.ActiveCount())

	ended, err := m.End(1)
	require.NoError(t, err)
	assert.Equal(t, s.ID, ended.ID)

	_, err = m.Get(1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.End(1)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, m.ActiveCount())
}

func TestManager_StartReplacesPreviousSession(t *testing.T) {
	m, _ := newTestManager(time.Minute)

	first := m.Start(1, 10, "account", "login")
	first.Set("login", "alice")
	require.NoError(t, m.Save(first))

	second := m.Start(1, 10, "refund", "order")
	assert.NotEqual(t, first.ID, second.ID)
	assert.Empty(t, second.Value("login"))

	assert.ErrorIs(t, m.Save(first), ErrNotFound)
	got, err := m.Get(1)
	require.NoError(t, err)
	assert.Equal(t, FlowID("refund"), got.Flow)
}

func TestManager_GetReturnsCopy(t *testing.T) {
	m, _ := newTestManager(time.Minute)
	s := m.Start(1, 10, "account", "login")
	s.Set("login", "alice")

	got, err := m.Get(1)
	require.NoError(t, err)
	assert.Empty(t, got.Value("login"))

	require.NoError(t, m.Save(s))
	got, err = m.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Value("login"))

	got.Set("login", "mallory")
	again, _ := m.Get(1)
	assert.Equal(t, "alice", again.Value("login"))
}

func TestManager_SaveUpdatesTimestamp(t *testing.T) {
	m, now := newTestManager(time.Minute)
	s := m.Start(1, 10, "account", "login")

	*now = now.Add(30 * time.Second)
	require.NoError(t, m.Save(s))

	got, _ := m.Get(1)
	assert.Equal(t, *now, got.UpdatedAt)
	assert.Equal(t, s.StartedAt, got.StartedAt)
}

func TestManager_ExpireInactive(t *testing.T) {
	m, now := newTestManager(time.Minute)

	var mu sync.Mutex
	var expired []int64
	m.SetExpireHook(func(s *Session) {
		mu.Lock()
		defer mu.Unlock()
		expired = append(expired, s.UserID)
	})

	m.Start(1, 10, "account", "login")
	*now = now.Add(45 * time.Second)
	m.Start(2, 20, "refund", "order")

	*now = now.Add(20 * time.Second)
	m.expireInactive()

	assert.Equal(t, []int64{1}, expired)
	_, err := m.Get(1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(2)
	assert.NoError(t, err)
}

func TestManager_JanitorStopsWithContext(t *testing.T) {
	m := NewManager(time.Millisecond)
	done := make(chan struct{})
	m.SetExpireHook(func(*Session) {
		select {
		case <-done:
		default:
			close(done)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	m.StartJanitor(ctx, 5*time.Millisecond)
	m.Start(1, 10, "account", "login")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not expire the session")
	}
	cancel()
	// goleak in TestMain checks the janitor goroutine exits.
	time.Sleep(20 * time.Millisecond)
}

func TestNewManager_DefaultTimeout(t *testing.T) {
	m := NewManager(0)
	assert.Equal(t, 30*time.Minute, m.inactivityTimeout)
}
