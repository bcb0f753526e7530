package outbox

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"barbershop-backend/internal/notifications"
)

type Deliverer interface {
	Deliver(ctx context.Context, ev notifications.Event) error
}

type Config struct {
	Interval    time.Duration
	MaxAttempts int
	Batch       int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

type Worker struct {
	store Store
	relay Deliverer
	cfg   Config
	log   *slog.Logger
	now   func() time.Time
}

func NewWorker(store Store, relay Deliverer, cfg Config, log *slog.Logger) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Batch <= 0 {
		cfg.Batch = 20
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 10 * time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 15 * time.Minute
	}
	return &Worker{
		store: store,
		relay: relay,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
	}
}

// Run drains the outbox every interval until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	w.log.Info("outbox worker: started", slog.Duration("interval", w.cfg.Interval))
	for {
		select {
		case <-ctx.Done():
			w.log.Info("outbox worker: stopped")
			return
		case <-ticker.C:
			if _, err := w.Drain(ctx); err != nil && ctx.Err() == nil {
				w.log.Error("outbox worker: drain error", slog.String("error", err.Error()))
			}
		}
	}
}

// Drain delivers one batch of due records and returns how many were
// delivered.
func (w *Worker) Drain(ctx context.Context) (int, error) {
	now := w.now()
	lease := w.cfg.Interval * 6
	records, err := w.store.ClaimDue(ctx, now, w.cfg.Batch, lease)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, rec := range records {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		if w.deliver(ctx, rec) {
			delivered++
		}
	}
	return delivered, nil
}

func (w *Worker) deliver(ctx context.Context, rec Record) bool {
	log := w.log.With(slog.String("outbox_id", rec.ID), slog.String("event", string(rec.Event.Kind)))

	sendCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	err := w.relay.Deliver(sendCtx, rec.Event)
	cancel()

	now := w.now()
	if err == nil {
		if err := w.store.MarkDelivered(ctx, rec.ID, now); err != nil {
			log.Error("outbox worker: mark delivered failed", slog.String("error", err.Error()))
		}
		return true
	}

	attempts := rec.Attempts + 1
	if errors.Is(err, notifications.ErrUndeliverable) {
		log.Warn("outbox worker: undeliverable, not retrying", slog.Int("attempts", attempts), slog.String("error", err.Error()))
		if err := w.store.MarkFailed(ctx, rec.ID, attempts, err.Error(), now); err != nil {
			log.Error("outbox worker: mark failed failed", slog.String("error", err.Error()))
		}
		return false
	}
	if attempts >= w.cfg.MaxAttempts {
		log.Error("outbox worker: giving up", slog.Int("attempts", attempts), slog.String("error", err.Error()))
		if err := w.store.MarkFailed(ctx, rec.ID, attempts, err.Error(), now); err != nil {
			log.Error("outbox worker: mark failed failed", slog.String("error", err.Error()))
		}
		return false
	}

	next := now.Add(w.Backoff(attempts))
	log.Warn("outbox worker: delivery failed, will retry", slog.Int("attempts", attempts), slog.Time("next_attempt_at", next), slog.String("error", err.Error()))
	if err := w.store.MarkRetry(ctx, rec.ID, attempts, next, err.Error()); err != nil {
		log.Error("outbox worker: mark retry failed", slog.String("error", err.Error()))
	}
	return false
}

// Backoff doubles from BaseBackoff per attempt and is capped at MaxBackoff.
func (w *Worker) Backoff(attempts int) time.Duration {
	d := w.cfg.BaseBackoff
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= w.cfg.MaxBackoff {
			return w.cfg.MaxBackoff
		}
	}
	return d
}
