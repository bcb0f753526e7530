package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrUnknownEvent = errors.New("unknown event kind")
	ErrNoRecipient  = errors.New("no recipient for event")
	// ErrUndeliverable marks a Deliver failure that a retry cannot fix.
	ErrUndeliverable = errors.New("event undeliverable")
)

// Permanent reports whether a single channel error will repeat on retry.
func Permanent(err error) bool {
	if errors.Is(err, ErrNoRecipient) || errors.Is(err, ErrUnknownEvent) {
		return true
	}
	var p interface{ Permanent() bool }
	return errors.As(err, &p) && p.Permanent()
}

type Sender interface {
	Name() string
	Send(ctx context.Context, ev Event) error
}

// Observer receives one call per channel attempt.
type Observer interface {
	Notification(event, result string)
}

// Relay fans an event out: the webhook first, email when the webhook is
// missing or fails, and the queue whenever it is configured.
type Relay struct {
	webhook  Sender
	email    Sender
	queue    Sender
	log      *slog.Logger
	observer Observer
}

type RelayOption func(*Relay)

func WithWebhook(s Sender) RelayOption { return func(r *Relay) { r.webhook = s } }
func WithEmail(s Sender) RelayOption   { return func(r *Relay) { r.email = s } }
func WithQueue(s Sender) RelayOption   { return func(r *Relay) { r.queue = s } }
func WithObserver(o Observer) RelayOption {
	return func(r *Relay) { r.observer = o }
}

func NewRelay(log *slog.Logger, opts ...RelayOption) *Relay {
	r := &Relay{log: log}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Configured reports whether at least one channel can carry events.
func (r *Relay) Configured() bool {
	return r.webhook != nil || r.email != nil || r.queue != nil
}

// Deliver returns nil when at least one channel accepted the event, or when
// no channel is configured at all. When every attempted channel failed
// permanently the error wraps ErrUndeliverable.
func (r *Relay) Deliver(ctx context.Context, ev Event) error {
	if !ev.Kind.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrUndeliverable, ErrUnknownEvent, ev.Kind)
	}
	if !r.Configured() {
		r.log.Warn("notifications relay: no channel configured", slog.String("event", string(ev.Kind)), slog.String("event_id", ev.ID))
		return nil
	}

	var errs []error

	primaryOK := false
	if r.webhook != nil {
		primaryOK = r.try(ctx, r.webhook, ev, &errs)
	}
	if !primaryOK && r.email != nil {
		primaryOK = r.try(ctx, r.email, ev, &errs)
	}
	delivered := primaryOK

	if r.queue != nil && r.try(ctx, r.queue, ev, &errs) {
		delivered = true
	}

	if delivered {
		return nil
	}
	joined := errors.Join(errs...)
	for _, err := range errs {
		if !Permanent(err) {
			return joined
		}
	}
	return fmt.Errorf("%w: %w", ErrUndeliverable, joined)
}

func (r *Relay) try(ctx context.Context, s Sender, ev Event, errs *[]error) bool {
	log := r.log.With(slog.String("channel", s.Name()), slog.String("event", string(ev.Kind)), slog.String("event_id", ev.ID), slog.String("booking_id", ev.Booking.ID))
	if err := s.Send(ctx, ev); err != nil {
		log.Warn("notifications relay: send failed", slog.String("error", err.Error()))
		r.observe(ev.Kind, s.Name()+"_failed")
		*errs = append(*errs, fmt.Errorf("%s: %w", s.Name(), err))
		return false
	}
	log.Info("notifications relay: sent")
	r.observe(ev.Kind, s.Name()+"_sent")
	return true
}

func (r *Relay) observe(kind EventKind, result string) {
	if r.observer != nil {
		r.observer.Notification(string(kind), result)
	}
}
