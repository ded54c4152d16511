package flows

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/tokenbot/internal/bot/models"
	"github.com/dmitrijs2005/tokenbot/internal/bot/remote"
	"github.com/dmitrijs2005/tokenbot/internal/bot/repositories/inmemory"
	"github.com/dmitrijs2005/tokenbot/internal/bot/services"
	"github.com/dmitrijs2005/tokenbot/internal/bot/storage"
	"github.com/dmitrijs2005/tokenbot/internal/chat"
	"github.com/dmitrijs2005/tokenbot/internal/conversation"
	"github.com/dmitrijs2005/tokenbot/internal/logging"
	"github.com/stretchr/testify/require"
)

const (
	adminID int64 = 100
	userID  int64 = 7
)

type sent struct {
	chatID int64
	text   string
	kb     chat.Keyboard
}

type fakeMessenger struct {
	mu          sync.Mutex
	sent        []sent
	edits       []string
	nextID      int
	downloadErr error
	sendErr     error
}

func (m *fakeMessenger) SendText(ctx context.Context, chatID int64, text string, kb chat.Keyboard) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return 0, m.sendErr
	}
	m.nextID++
	m.sent = append(m.sent, sent{chatID: chatID, text: text, kb: kb})
	return m.nextID, nil
}

func (m *fakeMessenger) EditText(ctx context.Context, chatID int64, messageID int, text string, kb chat.Keyboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, text)
	return nil
}

func (m *fakeMessenger) DownloadFile(ctx context.Context, fileID, path string) error {
	if m.downloadErr != nil {
		return m.downloadErr
	}
	return os.WriteFile(path, []byte("jpeg:"+fileID), 0o600)
}

func (m *fakeMessenger) last() sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sent{}
	}
	return m.sent[len(m.sent)-1]
}

func (m *fakeMessenger) texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	for i, s := range m.sent {
		out[i] = s.text
	}
	return out
}

type fakeRemote struct {
	mu            sync.Mutex
	account       remote.Response
	refund        remote.Response
	accountCalls  int
	refundCalls   int
	lastRefundReq remote.RefundRequest
}

func (f *fakeRemote) CheckAccount(ctx context.Context, credential string) remote.Response {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accountCalls++
	return f.account
}

func (f *fakeRemote) SubmitRefund(ctx context.Context, credential, traceID string, req remote.RefundRequest) remote.Response {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refundCalls++
	f.lastRefundReq = req
	return f.refund
}

type harness struct {
	t        *testing.T
	engine   *conversation.Engine
	sessions *conversation.Manager
	repos    *inmemory.RepositoryManager
	msg      *fakeMessenger
	remote   *fakeRemote
	photos   *storage.PhotoStore
	handlers *Handlers
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	repos := inmemory.NewRepositoryManager()
	msg := &fakeMessenger{}
	rem := &fakeRemote{
		account: remote.Response{StatusCode: 200, Body: []byte(`{}`)},
		refund:  remote.Response{StatusCode: 200, Body: []byte(`{"status":"accepted"}`)},
	}
	photos, err := storage.NewPhotoStore(t.TempDir())
	require.NoError(t, err)

	log := logging.Nop()
	sessions := conversation.NewManager(time.Hour)
	engine := conversation.NewEngine(sessions, log)
	h := Register(engine, Deps{
		Messenger: msg,
		Users:     services.NewUserService(nil, repos, services.NewAllowList([]int64{adminID})),
		Accounts:  services.NewAccountService(nil, repos, rem, nil, log),
		Refunds:   services.NewRefundService(nil, repos, rem, nil, nil, log),
		Photos:    photos,
		Logger:    log,
	})
	h.now = func() time.Time { return time.Unix(1700000000, 0) }

	return &harness{t: t, engine: engine, sessions: sessions, repos: repos, msg: msg, remote: rem, photos: photos, handlers: h}
}

func (h *harness) dispatch(ev chat.Event) {
	h.t.Helper()
	if ev.ChatID == 0 {
		ev.ChatID = ev.UserID
	}
	require.NoError(h.t, h.engine.Dispatch(context.Background(), ev))
}

func (h *harness) command(user int64, name string) {
	h.dispatch(chat.Event{Kind: chat.KindCommand, UserID: user, Payload: name})
}

func (h *harness) button(user int64, payload string) {
	h.dispatch(chat.Event{Kind: chat.KindButton, UserID: user, Payload: payload, MessageID: 1})
}

func (h *harness) text(user int64, s string) {
	h.dispatch(chat.Event{Kind: chat.KindText, UserID: user, Payload: s})
}

func (h *harness) photo(user int64, fileID string) {
	h.dispatch(chat.Event{Kind: chat.KindPhoto, UserID: user, FileID: fileID})
}

func (h *harness) session(user int64) *conversation.Session {
	s, err := h.sessions.Get(user)
	if errors.Is(err, conversation.ErrNotFound) {
		return nil
	}
	require.NoError(h.t, err)
	return s
}

func (h *harness) user(id int64) *models.User {
	u, err := h.repos.Users(nil).Get(context.Background(), id)
	require.NoError(h.t, err)
	return u
}

func (h *harness) grant(id int64) {
	require.NoError(h.t, h.repos.Users(nil).Grant(context.Background(), id))
}

func payloads(kb chat.Keyboard) []string {
	var out []string
	for _, row := range kb {
		for _, b := range row {
			out = append(out, b.Payload)
		}
	}
	return out
}

func containsText(texts []string, sub string) bool {
	for _, s := range texts {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
