package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/tokenbot/internal/bot/observability"
	"github.com/dmitrijs2005/tokenbot/internal/chat"
)

const (
	pollTimeout = 60
	queueSize   = 64
)

// Dispatcher consumes chat events. The conversation engine implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev chat.Event) error
}

// Run long-polls for updates until ctx is done. Events are fanned out to
// workers sharded by user id, so one user's events are handled in arrival
// order while different users proceed in parallel.
//
// An event already being handled when ctx is cancelled runs to completion;
// queued ones are dropped.
func (b *Bot) Run(ctx context.Context, d Dispatcher, workers int, metrics *observability.Metrics) error {
	if workers < 1 {
		workers = 1
	}

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeout
	updates := b.api.GetUpdatesChan(cfg)

	g, ctx := errgroup.WithContext(ctx)

	queues := make([]chan chat.Event, workers)
	for i := range queues {
		q := make(chan chat.Event, queueSize)
		queues[i] = q
		g.Go(func() error {
			for ev := range q {
				if ctx.Err() != nil {
					b.logger.Debug(ctx, "event dropped on shutdown", "user_id", ev.UserID, "kind", string(ev.Kind))
					continue
				}
				if err := d.Dispatch(context.WithoutCancel(ctx), ev); err != nil {
					b.logger.Debug(ctx, "dispatch failed", "user_id", ev.UserID, "error", err)
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer func() {
			for _, q := range queues {
				close(q)
			}
		}()

		b.logger.Info(ctx, "Starting telegram polling", "workers", workers)
		for {
			select {
			case <-ctx.Done():
				b.logger.Info(ctx, "Stopping telegram polling...")
				b.api.StopReceivingUpdates()
				return nil
			case u, ok := <-updates:
				if !ok {
					return nil
				}
				if u.CallbackQuery != nil {
					b.answer(ctx, u.CallbackQuery.ID)
				}
				ev, ok := ToEvent(u)
				if !ok {
					continue
				}
				if metrics != nil {
					metrics.Events.WithLabelValues(string(ev.Kind)).Inc()
				}
				select {
				case queues[shard(ev.UserID, workers)] <- ev:
				case <-ctx.Done():
				}
			}
		}
	})

	return g.Wait()
}

// answer stops the loading indicator on the pressed button.
func (b *Bot) answer(ctx context.Context, queryID string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(queryID, "")); err != nil {
		b.logger.Warn(ctx, "callback answer failed", "error", err)
	}
}

func shard(userID int64, workers int) int {
	return int(uint64(userID) % uint64(workers))
}
