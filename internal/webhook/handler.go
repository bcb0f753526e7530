package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"barbershop-backend/internal/httpx"
	"barbershop-backend/internal/middleware"
	"barbershop-backend/internal/models"
	"barbershop-backend/internal/notifications"
	"barbershop-backend/internal/signing"
	"barbershop-backend/internal/transport"
)

const (
	maxBodyBytes = 64 << 10

	minNameLen  = 2
	minPhoneLen = 8
)

var errInvalidPayload = errors.New("invalid payload")

type Enqueuer interface {
	Enqueue(ctx context.Context, ev notifications.Event) error
}

type Limiter interface {
	Allow(ctx context.Context, clientKey string) (bool, time.Duration)
}

type Observer interface {
	Webhook(status int)
}

type Config struct {
	Secret    string
	Tolerance time.Duration
	Location  *time.Location
}

type payload struct {
	Booking struct {
		CustomerName  string `json:"customerName"`
		CustomerPhone string `json:"customerPhone"`
		CustomerEmail string `json:"customerEmail"`
		Service       string `json:"service"`
		Date          string `json:"date"`
		Time          string `json:"time"`
		Lang          string `json:"lang"`
		Notes         string `json:"notes"`
	} `json:"booking"`
}

// Handler accepts signed booking notifications from trusted relays and
// queues an owner notification for each.
type Handler struct {
	events   Enqueuer
	limiter  Limiter
	observer Observer
	cfg      Config
	log      *slog.Logger
	now      func() time.Time
}

func NewHandler(events Enqueuer, limiter Limiter, observer Observer, cfg Config, log *slog.Logger) *Handler {
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = signing.DefaultTolerance
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Handler{
		events:   events,
		limiter:  limiter,
		observer: observer,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.fail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if h.limiter != nil {
		if allowed, _ := h.limiter.Allow(r.Context(), httpx.ClientIP(r)); !allowed {
			log.Warn("webhook booking: rate limited", slog.String("ip", httpx.ClientIP(r)))
			h.fail(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		log.Warn("webhook booking: read error", slog.String("error", err.Error()))
		h.fail(w, http.StatusBadRequest, "invalid body")
		return
	}

	now := h.now()
	if h.cfg.Secret != "" {
		err := signing.Verify(
			[]byte(h.cfg.Secret),
			r.Header.Get(signing.HeaderTimestamp),
			r.Header.Get(signing.HeaderSignature),
			body,
			now,
			h.cfg.Tolerance,
		)
		if err != nil {
			log.Warn("webhook booking: signature rejected", slog.String("reason", err.Error()))
			h.fail(w, http.StatusUnauthorized, "unauthorized")
			return
		}
	}

	booking, err := h.parse(body, now)
	if err != nil {
		log.Warn("webhook booking: invalid payload")
		h.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ev := notifications.NewEvent(notifications.EventBookingCreated, booking, now)
	if err := h.events.Enqueue(ctx, ev); err != nil {
		log.Error("webhook booking: enqueue error", slog.String("error", err.Error()))
		h.fail(w, http.StatusInternalServerError, "internal error")
		return
	}

	log.Info("webhook booking: ok", slog.String("event_id", ev.ID))
	h.observe(http.StatusOK)
	transport.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) parse(body []byte, now time.Time) (models.Booking, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return models.Booking{}, errInvalidPayload
	}
	name := strings.TrimSpace(p.Booking.CustomerName)
	phone := strings.TrimSpace(p.Booking.CustomerPhone)
	if len([]rune(name)) < minNameLen || len(phone) < minPhoneLen {
		return models.Booking{}, errInvalidPayload
	}
	local := now.In(h.cfg.Location)
	return models.Booking{
		CustomerName:  name,
		CustomerPhone: phone,
		CustomerEmail: strings.TrimSpace(p.Booking.CustomerEmail),
		Service:       strings.TrimSpace(p.Booking.Service),
		Date:          strings.TrimSpace(p.Booking.Date),
		Time:          strings.TrimSpace(p.Booking.Time),
		Lang:          strings.TrimSpace(p.Booking.Lang),
		Notes:         strings.TrimSpace(p.Booking.Notes),
		Status:        models.StatusPending,
		CreatedAt:     local,
		UpdatedAt:     local,
	}, nil
}

func (h *Handler) fail(w http.ResponseWriter, status int, msg string) {
	h.observe(status)
	transport.WriteError(w, status, msg, nil)
}

func (h *Handler) observe(status int) {
	if h.observer != nil {
		h.observer.Webhook(status)
	}
}
