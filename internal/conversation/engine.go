package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/tokenbot/internal/chat"
	"github.com/dmitrijs2005/tokenbot/internal/logging"
)

type routeKey struct {
	kind    chat.EventKind
	payload string
}

type route struct {
	flow  FlowID
	start Step
	h     Handler
}

// Engine dispatches events to handlers and applies their results.
type Engine struct {
	sessions *Manager
	logger   logging.Logger

	routes    map[routeKey]route
	table     map[Key]Handler
	fallback  Handler
	onError   func(ctx context.Context, ev chat.Event, err error)
	onDiscard func(ctx context.Context, s *Session)

	locks keyedMutex
}

func NewEngine(sessions *Manager, logger logging.Logger) *Engine {
	return &Engine{
		sessions: sessions,
		logger:   logger,
		routes:   make(map[routeKey]route),
		table:    make(map[Key]Handler),
		locks:    keyedMutex{held: make(map[int64]*lockEntry)},
	}
}

// Route registers an entry point for a command or button payload. Matching
// events discard the user's current session. With flow != FlowNone a new
// session is started at start before h runs; with FlowNone h gets a transient
// session that is never stored.
func (e *Engine) Route(kind chat.EventKind, payload string, flow FlowID, start Step, h Handler) {
	e.routes[routeKey{kind: kind, payload: payload}] = route{flow: flow, start: start, h: h}
}

// Handle registers the handler for events of kind arriving at (flow, step).
func (e *Engine) Handle(flow FlowID, step Step, kind chat.EventKind, h Handler) {
	e.table[Key{Flow: flow, Step: step, Kind: kind}] = h
}

// Fallback registers the handler for events nothing else matched. The session
// argument is nil when the user has no active flow.
func (e *Engine) Fallback(h Handler) {
	e.fallback = h
}

// OnError registers a hook run after a handler fails. The failed session has
// already been discarded.
func (e *Engine) OnError(fn func(ctx context.Context, ev chat.Event, err error)) {
	e.onError = fn
}

// OnDiscard registers a hook run when a session is thrown away before its flow
// finished: replaced by a route, or ended by a failing handler.
func (e *Engine) OnDiscard(fn func(ctx context.Context, s *Session)) {
	e.onDiscard = fn
}

// Enter starts flow for the user at step, discarding any previous session.
func (e *Engine) Enter(flow FlowID, userID, chatID int64, step Step) *Session {
	return e.sessions.Start(userID, chatID, flow, step)
}

// Save stores buffer changes made to a session obtained from Enter.
func (e *Engine) Save(s *Session) error {
	return e.sessions.Save(s)
}

// Dispatch handles one inbound event. Events of the same user are processed
// one at a time; different users proceed in parallel.
func (e *Engine) Dispatch(ctx context.Context, ev chat.Event) (err error) {
	unlock := e.locks.lock(ev.UserID)
	defer unlock()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panic: %v", p)
			e.discard(ctx, ev.UserID)
		}
		if err != nil {
			e.logger.Error(ctx, "event handling failed",
				"user_id", ev.UserID, "kind", ev.Kind, "payload", ev.Payload, "error", err)
			if e.onError != nil {
				e.onError(ctx, ev, err)
			}
		}
	}()

	if r, ok := e.lookupRoute(ev); ok {
		return e.enterRoute(ctx, r, ev)
	}

	s, err := e.sessions.Get(ev.UserID)
	switch {
	case errors.Is(err, ErrNotFound):
		s = nil
	case err != nil:
		return err
	}

	if s != nil {
		if h, ok := e.table[Key{Flow: s.Flow, Step: s.Step, Kind: ev.Kind}]; ok {
			res, herr := h(ctx, s, ev)
			return e.apply(ctx, s, res, herr)
		}
	}

	if e.fallback == nil {
		e.logger.Debug(ctx, "event ignored", "user_id", ev.UserID, "kind", ev.Kind)
		return nil
	}
	res, herr := e.fallback(ctx, s, ev)
	if s == nil {
		return herr
	}
	return e.apply(ctx, s, res, herr)
}

func (e *Engine) lookupRoute(ev chat.Event) (route, bool) {
	if ev.Kind != chat.KindCommand && ev.Kind != chat.KindButton {
		return route{}, false
	}
	r, ok := e.routes[routeKey{kind: ev.Kind, payload: ev.Payload}]
	return r, ok
}

func (e *Engine) enterRoute(ctx context.Context, r route, ev chat.Event) error {
	e.discard(ctx, ev.UserID)

	if r.flow == FlowNone {
		transient := &Session{UserID: ev.UserID, ChatID: ev.ChatID, Buffer: map[string]string{}}
		_, err := r.h(ctx, transient, ev)
		return err
	}

	s := e.Enter(r.flow, ev.UserID, ev.ChatID, r.start)
	res, err := r.h(ctx, s, ev)
	return e.apply(ctx, s, res, err)
}

func (e *Engine) discard(ctx context.Context, userID int64) {
	old, err := e.sessions.End(userID)
	if err != nil {
		return
	}
	if e.onDiscard != nil {
		e.onDiscard(ctx, old)
	}
}

func (e *Engine) apply(ctx context.Context, s *Session, res Result, herr error) error {
	if herr != nil {
		e.discard(ctx, s.UserID)
		return herr
	}

	switch res.kind {
	case resultDone:
		_, _ = e.sessions.End(s.UserID)
		return nil
	case resultNext:
		s.Step = res.next
	}

	if err := e.sessions.Save(s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// keyedMutex hands out one mutex per user id and forgets it once nobody holds
// or waits for it.
type keyedMutex struct {
	mu   sync.Mutex
	held map[int64]*lockEntry
}

func (k *keyedMutex) lock(id int64) func() {
	k.mu.Lock()
	l, ok := k.held[id]
	if !ok {
		l = &lockEntry{}
		k.held[id] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.held, id)
		}
		k.mu.Unlock()
	}
}
