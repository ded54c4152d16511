package flows

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/tokenbot/internal/chat"
	"github.com/dmitrijs2005/tokenbot/internal/common"
	"github.com/dmitrijs2005/tokenbot/internal/conversation"
)

func (h *Handlers) registerAdmin(e *conversation.Engine) {
	e.Route(chat.KindButton, PayloadAdmin, conversation.FlowNone, "", h.adminMenu)
	e.Route(chat.KindButton, PayloadAdminStats, conversation.FlowNone, "", h.adminTotals)
	e.Route(chat.KindButton, PayloadAdminGrant, conversation.FlowNone, "", h.adminEnter(actionGrant, textAdminGrantPrompt))
	e.Route(chat.KindButton, PayloadAdminRefunds, conversation.FlowNone, "", h.adminEnter(actionRefunds, textAdminStatsPrompt))
	e.Handle(FlowAdmin, StepAwaitingTargetUserID, chat.KindText, h.adminTarget)
}

// denyAdmin answers non-admins and reports whether it did.
func (h *Handlers) denyAdmin(ctx context.Context, ev chat.Event) (bool, error) {
	if h.users.IsAdmin(ev.UserID) {
		return false, nil
	}
	h.logger.Info(ctx, "admin access denied", "user_id", ev.UserID)
	return true, h.send(ctx, ev.ChatID, textAdminDenied, backKeyboard())
}

func (h *Handlers) adminMenu(ctx context.Context, _ *conversation.Session, ev chat.Event) (conversation.Result, error) {
	if denied, err := h.denyAdmin(ctx, ev); denied || err != nil {
		return conversation.Done(), err
	}
	return conversation.Done(), h.send(ctx, ev.ChatID, textAdminMenu, adminKeyboard())
}

func (h *Handlers) adminTotals(ctx context.Context, _ *conversation.Session, ev chat.Event) (conversation.Result, error) {
	if denied, err := h.denyAdmin(ctx, ev); denied || err != nil {
		return conversation.Done(), err
	}
	t, err := h.users.Totals(ctx)
	if err != nil {
		return conversation.Done(), err
	}
	return conversation.Done(), h.send(ctx, ev.ChatID, fmt.Sprintf(textAdminTotals, t.Users, t.Accounts, t.Refunds), adminKeyboard())
}

func (h *Handlers) adminEnter(action, prompt string) conversation.Handler {
	return func(ctx context.Context, _ *conversation.Session, ev chat.Event) (conversation.Result, error) {
		if denied, err := h.denyAdmin(ctx, ev); denied || err != nil {
			return conversation.Done(), err
		}
		s := h.enter(ev, FlowAdmin, StepAwaitingTargetUserID)
		s.Set(fieldAction, action)
		if err := h.engine.Save(s); err != nil {
			return conversation.Done(), err
		}
		return conversation.Done(), h.send(ctx, ev.ChatID, prompt, nil)
	}
}

func (h *Handlers) adminTarget(ctx context.Context, s *conversation.Session, ev chat.Event) (conversation.Result, error) {
	if denied, err := h.denyAdmin(ctx, ev); denied || err != nil {
		return conversation.Done(), err
	}

	target, err := strconv.ParseInt(strings.TrimSpace(ev.Payload), 10, 64)
	if err != nil {
		return conversation.Stay(), h.send(ctx, ev.ChatID, textAdminBadID, nil)
	}

	var text string
	switch s.Value(fieldAction) {
	case actionGrant:
		if err := h.users.Grant(ctx, target); err != nil {
			return conversation.Done(), err
		}
		h.logger.Info(ctx, "refund access granted", "admin_id", ev.UserID, "user_id", target)
		text = fmt.Sprintf(textAdminGranted, target)
	default:
		st, err := h.users.Stats(ctx, target)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			text = fmt.Sprintf(textAdminNoUser, target)
		case err != nil:
			return conversation.Done(), err
		default:
			text = fmt.Sprintf(textAdminUserStats, target, yesNo(st.User.Authorized), st.AccountCount, st.RefundCount)
		}
	}

	return conversation.Done(), h.send(ctx, ev.ChatID, text, adminKeyboard())
}
