// Package conversation is a small engine for multi-turn chat flows.
//
// A flow is a named state machine. Each user has at most one live Session,
// which records the flow, the current step and a buffer of partial input.
// Inbound events are resolved in this order:
//
//  1. global routes (commands and button payloads registered with Route),
//     which discard any previous session and optionally start a new flow;
//  2. the transition table, keyed by (flow, step, event kind);
//  3. the fallback handler.
//
// Handlers return a Result telling the engine to advance, stay or finish.
package conversation

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tokenbot/internal/chat"
)

// FlowID names a flow. FlowNone marks stateless routes such as "show menu".
type FlowID string

const FlowNone FlowID = ""

// Step names a state inside a flow.
type Step string

// Key addresses one entry of the transition table.
type Key struct {
	Flow FlowID
	Step Step
	Kind chat.EventKind
}

// Session is the per-user conversation state.
type Session struct {
	ID        string
	UserID    int64
	ChatID    int64
	Flow      FlowID
	Step      Step
	Buffer    map[string]string
	StartedAt time.Time
	UpdatedAt time.Time
}

// Set stores a buffer field.
func (s *Session) Set(field, value string) {
	if s.Buffer == nil {
		s.Buffer = make(map[string]string)
	}
	s.Buffer[field] = value
}

// Value reads a buffer field; missing fields read as "".
func (s *Session) Value(field string) string {
	return s.Buffer[field]
}

func (s *Session) clone() *Session {
	c := *s
	c.Buffer = make(map[string]string, len(s.Buffer))
	for k, v := range s.Buffer {
		c.Buffer[k] = v
	}
	return &c
}

type resultKind int

const (
	resultStay resultKind = iota
	resultNext
	resultDone
)

// Result is what a handler asks the engine to do with the session.
type Result struct {
	kind resultKind
	next Step
}

// Next advances the session to step.
func Next(step Step) Result { return Result{kind: resultNext, next: step} }

// Stay keeps the session at its current step, e.g. after a validation error.
// Buffer changes made by the handler are kept.
func Stay() Result { return Result{kind: resultStay} }

// Done ends the flow and destroys the session.
func Done() Result { return Result{kind: resultDone} }

// Handler processes one event for a session.
type Handler func(ctx context.Context, s *Session, ev chat.Event) (Result, error)
