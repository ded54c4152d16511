package telegram

import (
	"errors"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	fileURL  string
	sendErr  error
	updates  chan tgbotapi.Update
	stopOnce sync.Once
	stopped  bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 16)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	if f.fileURL == "" {
		return "", errors.New("file not found")
	}
	return f.fileURL + "/" + fileID, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.stopOnce.Do(func() {
		f.mu.Lock()
		f.stopped = true
		f.mu.Unlock()
	})
}

func (f *fakeAPI) requestsSnapshot() []tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), f.requests...)
}
