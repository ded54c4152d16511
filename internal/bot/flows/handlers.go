// Package flows wires the bot's conversations onto the conversation engine:
// the main menu, account verification, refund submission and admin queries.
package flows

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tokenbot/internal/bot/models"
	"github.com/dmitrijs2005/tokenbot/internal/bot/observability"
	"github.com/dmitrijs2005/tokenbot/internal/bot/services"
	"github.com/dmitrijs2005/tokenbot/internal/bot/storage"
	"github.com/dmitrijs2005/tokenbot/internal/chat"
	"github.com/dmitrijs2005/tokenbot/internal/conversation"
	"github.com/dmitrijs2005/tokenbot/internal/logging"
)

// Deps are the collaborators of the chat handlers.
type Deps struct {
	Messenger chat.Messenger
	Users     *services.UserService
	Accounts  *services.AccountService
	Refunds   *services.RefundService
	Photos    *storage.PhotoStore
	Metrics   *observability.Metrics
	Logger    logging.Logger
}

type Handlers struct {
	engine   *conversation.Engine
	msg      chat.Messenger
	users    *services.UserService
	accounts *services.AccountService
	refunds  *services.RefundService
	photos   *storage.PhotoStore
	metrics  *observability.Metrics
	logger   logging.Logger
	now      func() time.Time
}

// Register builds the handlers and installs every route and transition on e.
func Register(e *conversation.Engine, d Deps) *Handlers {
	h := &Handlers{
		engine:   e,
		msg:      d.Messenger,
		users:    d.Users,
		accounts: d.Accounts,
		refunds:  d.Refunds,
		photos:   d.Photos,
		metrics:  d.Metrics,
		logger:   d.Logger,
		now:      time.Now,
	}

	e.Route(chat.KindCommand, CommandStart, conversation.FlowNone, "", h.showMenu)
	e.Route(chat.KindCommand, CommandMenu, conversation.FlowNone, "", h.showMenu)
	e.Route(chat.KindButton, PayloadMenu, conversation.FlowNone, "", h.showMenu)
	e.Route(chat.KindCommand, CommandCancel, conversation.FlowNone, "", h.cancel)
	e.Route(chat.KindButton, PayloadProfile, conversation.FlowNone, "", h.showProfile)

	h.registerAccount(e)
	h.registerRefund(e)
	h.registerAdmin(e)

	e.Fallback(h.fallback)
	e.OnError(h.onError)
	e.OnDiscard(h.cleanup)

	return h
}

// Expired releases what an idle session held. It is meant as the session
// manager's expiry hook.
func (h *Handlers) Expired(s *conversation.Session) {
	h.cleanup(context.Background(), s)
}

// touch upserts the profile of the user behind ev.
func (h *Handlers) touch(ctx context.Context, ev chat.Event) (*models.User, error) {
	return h.users.Touch(ctx, &models.User{
		ID:        ev.UserID,
		UserName:  ev.Username,
		FirstName: ev.FirstName,
		LastName:  ev.LastName,
	})
}

func (h *Handlers) enter(ev chat.Event, flow conversation.FlowID, step conversation.Step) *conversation.Session {
	if h.metrics != nil {
		h.metrics.FlowEntries.WithLabelValues(string(flow)).Inc()
	}
	return h.engine.Enter(flow, ev.UserID, ev.ChatID, step)
}

func (h *Handlers) send(ctx context.Context, chatID int64, text string, kb chat.Keyboard) error {
	if _, err := h.msg.SendText(ctx, chatID, fitMessage(text), kb); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// ack rewrites the message whose button was pressed so it shows the choice
// and loses its keyboard. Failures are only logged.
func (h *Handlers) ack(ctx context.Context, ev chat.Event, prompt, choice string) {
	if ev.MessageID == 0 {
		return
	}
	if err := h.msg.EditText(ctx, ev.ChatID, ev.MessageID, fmt.Sprintf(textSelected, prompt, choice), nil); err != nil {
		h.logger.Warn(ctx, "edit message failed", "user_id", ev.UserID, "error", err)
	}
}

// sendMenu shows the main menu. Refund appears for authorized users and
// Admin for allow-listed ones.
func (h *Handlers) sendMenu(ctx context.Context, ev chat.Event, u *models.User) error {
	return h.send(ctx, ev.ChatID, textMenu, menuKeyboard(u.Authorized, h.users.IsAdmin(ev.UserID)))
}

// finish shows the menu at the end of a flow.
func (h *Handlers) finish(ctx context.Context, ev chat.Event) (conversation.Result, error) {
	u, err := h.touch(ctx, ev)
	if err != nil {
		return conversation.Done(), err
	}
	return conversation.Done(), h.sendMenu(ctx, ev, u)
}

func (h *Handlers) showMenu(ctx context.Context, _ *conversation.Session, ev chat.Event) (conversation.Result, error) {
	return h.finish(ctx, ev)
}

func (h *Handlers) cancel(ctx context.Context, _ *conversation.Session, ev chat.Event) (conversation.Result, error) {
	if err := h.send(ctx, ev.ChatID, textCancelled, nil); err != nil {
		return conversation.Done(), err
	}
	return h.finish(ctx, ev)
}

func (h *Handlers) showProfile(ctx context.Context, _ *conversation.Session, ev chat.Event) (conversation.Result, error) {
	if _, err := h.touch(ctx, ev); err != nil {
		return conversation.Done(), err
	}
	st, err := h.users.Stats(ctx, ev.UserID)
	if err != nil {
		return conversation.Done(), err
	}

	name := st.User.UserName
	if name == "" {
		name = "-"
	}
	text := fmt.Sprintf(textProfile, st.User.ID, name, yesNo(st.User.Authorized), st.AccountCount, st.RefundCount)
	return conversation.Done(), h.send(ctx, ev.ChatID, text, backKeyboard())
}

// fallback shows the menu to users outside any flow. Stray input inside a
// flow is ignored.
func (h *Handlers) fallback(ctx context.Context, s *conversation.Session, ev chat.Event) (conversation.Result, error) {
	if s != nil {
		h.logger.Debug(ctx, "unexpected event ignored",
			"user_id", ev.UserID, "flow", s.Flow, "step", s.Step, "kind", ev.Kind)
		return conversation.Stay(), nil
	}
	return h.finish(ctx, ev)
}

func (h *Handlers) onError(ctx context.Context, ev chat.Event, err error) {
	if h.metrics != nil {
		h.metrics.HandlerErrors.WithLabelValues(string(ev.Kind)).Inc()
	}
	if _, serr := h.msg.SendText(ctx, ev.ChatID, textFailure, backKeyboard()); serr != nil {
		h.logger.Error(ctx, "failure notice not delivered", "user_id", ev.UserID, "error", serr)
	}
}

// cleanup removes a downloaded refund photo that will never be submitted.
func (h *Handlers) cleanup(ctx context.Context, s *conversation.Session) {
	if s.Flow != FlowRefund || h.photos == nil {
		return
	}
	if err := h.photos.Remove(s.Value(fieldPhoto)); err != nil {
		h.logger.Warn(ctx, "photo cleanup failed", "user_id", s.UserID, "error", err)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
