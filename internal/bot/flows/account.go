package flows

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tokenbot/internal/chat"
	"github.com/dmitrijs2005/tokenbot/internal/conversation"
)

func (h *Handlers) registerAccount(e *conversation.Engine) {
	e.Route(chat.KindButton, PayloadAddAccount, conversation.FlowNone, "", h.accountEnter)
	e.Handle(FlowAccount, StepAwaitingToken, chat.KindText, h.accountToken)
	e.Handle(FlowAccount, StepAwaitingDuplicateConfirmation, chat.KindButton, h.accountConfirm)
}

func (h *Handlers) accountEnter(ctx context.Context, _ *conversation.Session, ev chat.Event) (conversation.Result, error) {
	if _, err := h.touch(ctx, ev); err != nil {
		return conversation.Done(), err
	}
	h.enter(ev, FlowAccount, StepAwaitingToken)
	return conversation.Done(), h.send(ctx, ev.ChatID, textEnterToken, nil)
}

// accountToken takes the credential. A credential seen before needs an
// explicit yes before the remote call.
func (h *Handlers) accountToken(ctx context.Context, s *conversation.Session, ev chat.Event) (conversation.Result, error) {
	token := strings.TrimSpace(ev.Payload)
	if token == "" {
		return conversation.Stay(), h.send(ctx, ev.ChatID, textEmptyToken, nil)
	}
	s.Set(fieldToken, token)

	known, err := h.accounts.IsKnownCredential(ctx, token)
	if err != nil {
		return conversation.Done(), err
	}
	if known {
		return conversation.Next(StepAwaitingDuplicateConfirmation),
			h.send(ctx, ev.ChatID, textDuplicateToken, confirmKeyboard())
	}

	return h.verify(ctx, s, ev)
}

func (h *Handlers) accountConfirm(ctx context.Context, s *conversation.Session, ev chat.Event) (conversation.Result, error) {
	switch ev.Payload {
	case PayloadConfirmYes:
		h.ack(ctx, ev, textDuplicateToken, labelYes)
		return h.verify(ctx, s, ev)
	case PayloadConfirmNo:
		h.ack(ctx, ev, textDuplicateToken, labelNo)
		if err := h.send(ctx, ev.ChatID, textCancelled, nil); err != nil {
			return conversation.Done(), err
		}
		return h.finish(ctx, ev)
	default:
		return conversation.Stay(), h.send(ctx, ev.ChatID, textDuplicateToken, confirmKeyboard())
	}
}

// verify runs the remote check, stores the record and renders it. The shown
// summary is built from the stored record.
func (h *Handlers) verify(ctx context.Context, s *conversation.Session, ev chat.Event) (conversation.Result, error) {
	if err := h.send(ctx, ev.ChatID, textChecking, nil); err != nil {
		return conversation.Done(), err
	}

	rec, err := h.accounts.Verify(ctx, ev.UserID, s.Value(fieldToken))
	if err != nil {
		return conversation.Done(), err
	}

	text := fmt.Sprintf(textCouldNotParse, rec.StatusCode)
	if rec.Parsed {
		text = textAccountAdded + "\n" + rec.Account.Summary()
	}
	if err := h.send(ctx, ev.ChatID, text, nil); err != nil {
		return conversation.Done(), err
	}
	return h.finish(ctx, ev)
}
