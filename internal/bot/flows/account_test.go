package flows

import (
	"fmt"
	"testing"

	"github.com/dmitrijs2005/tokenbot/internal/bot/remote"
	"github.com/dmitrijs2005/tokenbot/internal/normalize"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_StoresNormalizedRecord(t *testing.T) {
	h := newHarness(t)
	h.remote.account = remote.Response{StatusCode: 200, Body: []byte(`{"authorized": true, "token_valid": true}`)}

	h.command(userID, CommandStart)
	h.button(userID, PayloadAddAccount)
	assert.Equal(t, textEnterToken, h.msg.last().text)

	h.text(userID, "abc123")

	recs := h.repos.AccountRecords()
	require.Len(t, recs, 1)
	rec := recs[0]
	assert.Equal(t, "abc123", rec.Credential)
	assert.True(t, rec.Parsed)
	if diff := cmp.Diff(normalize.Account{Authorized: true, TokenValid: true}, rec.Account); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	texts := h.msg.texts()
	assert.Equal(t, textMenu, texts[len(texts)-1])
	assert.Nil(t, h.session(userID))
	assert.Equal(t, 1, h.remote.accountCalls)
}

func TestAccount_SummaryMatchesStoredRecord(t *testing.T) {
	h := newHarness(t)
	h.remote.account = remote.Response{StatusCode: 200, Body: []byte(`{
		"authorized": 1, "token_valid": "true",
		"flags": [{"name": "can_order", "value": true}, {"name": "beta", "value": "x"}],
		"profile": {"rating": 4.75, "status": "gold", "loyalty": {"active": "yes"}},
		"subscriptions": [{"id": "plus", "active": true}, {"id": "old", "active": false}],
		"debt_flow": {"enabled": true, "limit": 1500},
		"phone": {"number": "+10000000000", "ids": {"primary": "p-1"}},
		"ids": {"user_id": "u-1", "account_id": "a-1", "device_id": "d-1", "session_id": "s-1"}
	}`)}

	h.button(userID, PayloadAddAccount)
	h.text(userID, "tok")

	rec := h.repos.AccountRecords()[0]
	shown := h.msg.texts()[len(h.msg.texts())-2]
	assert.Equal(t, textAccountAdded+"\n"+rec.Account.Summary(), shown)
	for _, line := range rec.Account.Lines() {
		assert.Contains(t, shown, line.Label+": "+line.Value)
	}
}

func TestAccount_UnparsableResponse(t *testing.T) {
	h := newHarness(t)
	h.remote.account = remote.Response{StatusCode: 502, Body: []byte("<html>Bad gateway</html>")}

	h.button(userID, PayloadAddAccount)
	h.text(userID, "tok")

	recs := h.repos.AccountRecords()
	require.Len(t, recs, 1)
	assert.False(t, recs[0].Parsed)
	assert.Equal(t, 502, recs[0].StatusCode)
	assert.Equal(t, "<html>Bad gateway</html>", recs[0].RawBody)
	assert.Equal(t, normalize.Account{}, recs[0].Account)

	texts := h.msg.texts()
	assert.Equal(t, fmt.Sprintf(textCouldNotParse, 502), texts[len(texts)-2])
	assert.Equal(t, textMenu, texts[len(texts)-1])
}

func TestAccount_TransportFailureIsReported(t *testing.T) {
	h := newHarness(t)
	h.remote.account = remote.Response{StatusCode: remote.NoResponse, Err: fmt.Errorf("dial: refused")}

	h.button(userID, PayloadAddAccount)
	h.text(userID, "tok")

	recs := h.repos.AccountRecords()
	require.Len(t, recs, 1)
	assert.Equal(t, 0, recs[0].StatusCode)
	assert.True(t, containsText(h.msg.texts(), fmt.Sprintf(textCouldNotParse, 0)))
}

func TestAccount_EmptyTokenReprompts(t *testing.T) {
	h := newHarness(t)
	h.button(userID, PayloadAddAccount)

	h.text(userID, "   ")

	assert.Equal(t, textEmptyToken, h.msg.last().text)
	assert.Equal(t, StepAwaitingToken, h.session(userID).Step)
	assert.Equal(t, 0, h.remote.accountCalls)
}

func TestAccount_DuplicateNeedsConfirmation(t *testing.T) {
	h := newHarness(t)
	h.button(userID, PayloadAddAccount)
	h.text(userID, "abc123")
	require.Equal(t, 1, h.remote.accountCalls)

	h.button(userID, PayloadAddAccount)
	h.text(userID, "abc123")

	last := h.msg.last()
	assert.Equal(t, textDuplicateToken, last.text)
	assert.Equal(t, []string{PayloadConfirmYes, PayloadConfirmNo}, payloads(last.kb))
	assert.Equal(t, 1, h.remote.accountCalls, "no call before confirmation")
	assert.Len(t, h.repos.AccountRecords(), 1)
	assert.Equal(t, StepAwaitingDuplicateConfirmation, h.session(userID).Step)

	h.button(userID, PayloadConfirmYes)

	assert.Equal(t, 2, h.remote.accountCalls)
	assert.Len(t, h.repos.AccountRecords(), 2)
	assert.Nil(t, h.session(userID))
	assert.Equal(t, textMenu, h.msg.last().text)
	assert.NotEmpty(t, h.msg.edits)
}

func TestAccount_DuplicateDeclined(t *testing.T) {
	h := newHarness(t)
	h.button(userID, PayloadAddAccount)
	h.text(userID, "abc123")

	// A different user submitting the same credential is also asked.
	other := userID + 1
	h.button(other, PayloadAddAccount)
	h.text(other, "abc123")
	require.Equal(t, textDuplicateToken, h.msg.last().text)

	h.button(other, PayloadConfirmNo)

	assert.Equal(t, 1, h.remote.accountCalls)
	assert.Len(t, h.repos.AccountRecords(), 1)
	assert.Nil(t, h.session(other))
	texts := h.msg.texts()
	assert.Equal(t, textCancelled, texts[len(texts)-2])
	assert.Equal(t, textMenu, texts[len(texts)-1])
}

func TestAccount_DuplicateRoutesThroughConfirmationEveryTime(t *testing.T) {
	h := newHarness(t)
	creds := []string{"a", "b", "c"}
	for _, c := range creds {
		h.button(userID, PayloadAddAccount)
		h.text(userID, c)
	}
	calls := h.remote.accountCalls

	for _, c := range creds {
		h.button(userID, PayloadAddAccount)
		h.text(userID, c)
		require.Equal(t, textDuplicateToken, h.msg.last().text, "credential %q", c)
		require.Equal(t, calls, h.remote.accountCalls)

		h.button(userID, PayloadConfirmYes)
		calls++
		require.Equal(t, calls, h.remote.accountCalls)
	}
}

func TestAccount_UnknownButtonAtConfirmationReprompts(t *testing.T) {
	h := newHarness(t)
	h.button(userID, PayloadAddAccount)
	h.text(userID, "abc")
	h.button(userID, PayloadAddAccount)
	h.text(userID, "abc")

	h.button(userID, PayloadWithPhoto)

	assert.Equal(t, textDuplicateToken, h.msg.last().text)
	assert.Equal(t, StepAwaitingDuplicateConfirmation, h.session(userID).Step)
}
