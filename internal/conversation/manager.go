package conversation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

// Manager stores at most one session per user. Reads and writes copy the
// session so handlers never share a buffer with the store.
type Manager struct {
	mu                sync.RWMutex
	sessions          map[int64]*Session
	inactivityTimeout time.Duration
	onExpire          func(*Session)
	now               func() time.Time
}

func NewManager(inactivityTimeout time.Duration) *Manager {
	if inactivityTimeout <= 0 {
		inactivityTimeout = 30 * time.Minute
	}
	return &Manager{
		sessions:          make(map[int64]*Session),
		inactivityTimeout: inactivityTimeout,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

func (m *Manager) SetExpireHook(hook func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

// Start replaces any session of userID with a fresh one at (flow, step).
func (m *Manager) Start(userID, chatID int64, flow FlowID, step Step) *Session {
	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ChatID:    chatID,
		Flow:      flow,
		Step:      step,
		Buffer:    make(map[string]string),
		StartedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = s
	return s.clone()
}

func (m *Manager) Get(userID int64) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return s.clone(), nil
}

// Save writes s back. It fails with ErrNotFound when the stored session for
// the user is gone or has been replaced by a newer one.
func (m *Manager) Save(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.sessions[s.UserID]
	if !ok || cur.ID != s.ID {
		return ErrNotFound
	}
	c := s.clone()
	c.UpdatedAt = m.now()
	m.sessions[s.UserID] = c
	return nil
}

// End removes the user's session and returns it.
func (m *Manager) End(userID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.sessions, userID)
	return s.clone(), nil
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// StartJanitor expires idle sessions every interval until ctx is done.
func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireInactive()
			}
		}
	}()
}

func (m *Manager) expireInactive() {
	now := m.now()
	var expired []*Session

	m.mu.Lock()
	for userID, s := range m.sessions {
		if now.Sub(s.UpdatedAt) < m.inactivityTimeout {
			continue
		}
		expired = append(expired, s.clone())
		delete(m.sessions, userID)
	}
	hook := m.onExpire
	m.mu.Unlock()

	if hook != nil {
		for _, s := range expired {
			hook(s)
		}
	}
}
