package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/tokenbot/internal/bot/remote"
)

type fakeRemote struct {
	mu       sync.Mutex
	response remote.Response

	accountCalls []string
	refundCalls  []refundCall
}

type refundCall struct {
	credential string
	traceID    string
	req        remote.RefundRequest
}

func (f *fakeRemote) CheckAccount(ctx context.Context, credential string) remote.Response {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accountCalls = append(f.accountCalls, credential)
	return f.response
}

func (f *fakeRemote) SubmitRefund(ctx context.Context, credential, traceID string, req remote.RefundRequest) remote.Response {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refundCalls = append(f.refundCalls, refundCall{credential: credential, traceID: traceID, req: req})
	return f.response
}

type fakeArchive struct {
	key   string
	err   error
	paths []string
}

func (f *fakeArchive) Upload(ctx context.Context, userID int64, path string) (string, error) {
	f.paths = append(f.paths, path)
	return f.key, f.err
}
