package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"barbershop-backend/internal/cache"
	"barbershop-backend/internal/httpx"
	"barbershop-backend/internal/middleware"
	"barbershop-backend/internal/models"
	"barbershop-backend/internal/recurrence"
	"barbershop-backend/internal/slots"
	"barbershop-backend/internal/transport"
	"barbershop-backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service  *Service
	val      *validation.Validator
	cache    cache.Cache
	cacheTTL time.Duration
	log      *slog.Logger
}

func NewHandler(service *Service, val *validation.Validator, c cache.Cache, cacheTTL time.Duration, log *slog.Logger) *Handler {
	if c == nil {
		c = cache.NewNoop()
	}
	return &Handler{
		service:  service,
		val:      val,
		cache:    c,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		log.Warn("availability: missing date")
		transport.WriteError(w, http.StatusBadRequest, "missing date", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	day, err := h.service.Availability(ctx, date)
	if err != nil {
		h.writeError(w, log, "availability", err)
		return
	}

	log.Info("availability: ok", slog.String("date", date), slog.Int("available", day.Available))
	transport.WriteJSON(w, http.StatusOK, day)
}

func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month == "" {
		month = h.service.now().In(h.service.location).Format(slots.MonthLayout)
	}

	key := h.service.CalendarCacheKey(r.Context(), month)
	if cached, ok, err := h.cache.Get(r.Context(), key); err == nil && ok {
		log.Info("calendar: cache hit", slog.String("month", month))
		transport.WriteRaw(w, http.StatusOK, cached)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	days, err := h.service.Calendar(ctx, month)
	if err != nil {
		h.writeError(w, log, "calendar", err)
		return
	}

	response := map[string]interface{}{
		"month":       month,
		"totalPerDay": slots.TotalPerDay,
		"days":        days,
	}
	if payload, err := json.Marshal(response); err == nil {
		if err := h.cache.Set(r.Context(), key, payload, h.cacheTTL); err != nil {
			log.Warn("calendar: cache set failed", slog.String("error", err.Error()))
		}
	}

	log.Info("calendar: ok", slog.String("month", month), slog.Int("days", len(days)))
	transport.WriteJSON(w, http.StatusOK, response)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)

	var req CreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("bookings create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)

	if err := h.val.Struct(req); err != nil {
		log.Warn("bookings create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	result, err := h.service.Create(ctx, req)
	if err != nil {
		h.writeError(w, log, "bookings create", err)
		return
	}

	log.Info("bookings create: ok",
		slog.String("booking_id", result.Bookings[0].ID),
		slog.String("date", req.Date),
		slog.String("time", req.Time),
		slog.Int("created", len(result.Bookings)),
		slog.Int("skipped", len(result.Skipped)),
	)
	transport.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)

	var req LookupRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("bookings lookup: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	if err := h.val.Struct(req); err != nil {
		log.Warn("bookings lookup: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.ListByCustomer(ctx, req.CustomerPhone)
	if err != nil {
		h.writeError(w, log, "bookings lookup", err)
		return
	}

	log.Info("bookings lookup: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)
	id, ok := h.bookingID(w, r, log, "bookings cancel")
	if !ok {
		return
	}

	var req CancelRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("bookings cancel: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	if err := h.val.Struct(req); err != nil {
		log.Warn("bookings cancel: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	b, err := h.service.Cancel(ctx, id, req.CustomerPhone)
	if err != nil {
		h.writeError(w, log, "bookings cancel", err)
		return
	}

	log.Info("bookings cancel: ok", slog.String("booking_id", id))
	transport.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) CustomerReschedule(w http.ResponseWriter, r *http.Request) {
	h.reschedule(w, r, true)
}

func (h *Handler) AdminReschedule(w http.ResponseWriter, r *http.Request) {
	h.reschedule(w, r, false)
}

func (h *Handler) reschedule(w http.ResponseWriter, r *http.Request, customer bool) {
	log := middleware.WithRequest(h.log, r)
	op := "admin bookings reschedule"
	if customer {
		op = "bookings reschedule"
	}
	id, ok := h.bookingID(w, r, log, op)
	if !ok {
		return
	}

	var req RescheduleRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn(op + ": invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	if err := h.val.Struct(req); err != nil {
		log.Warn(op + ": validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}
	if customer && req.CustomerPhone == "" {
		log.Warn(op + ": missing phone")
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"customerPhone": "required"})
		return
	}
	if !customer {
		req.CustomerPhone = ""
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	result, err := h.service.Reschedule(ctx, id, req)
	if err != nil {
		h.writeError(w, log, op, err)
		return
	}

	log.Info(op+": ok", slog.String("booking_id", id), slog.String("date", req.Date), slog.String("time", req.Time))
	transport.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)
	limit, offset, err := httpx.ParseLimitOffset(r.URL.Query(), 50, 200)
	if err != nil {
		log.Warn("admin bookings list: invalid query", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	filter := ListFilter{Status: models.Status(strings.TrimSpace(r.URL.Query().Get("status")))}
	if filter.Status != "" && !filter.Status.Valid() {
		log.Warn("admin bookings list: invalid status", slog.String("status", string(filter.Status)))
		transport.WriteError(w, http.StatusBadRequest, "invalid status", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	items, total, err := h.service.List(ctx, filter, limit, offset)
	if err != nil {
		h.writeError(w, log, "admin bookings list", err)
		return
	}

	log.Info("admin bookings list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (h *Handler) AdminRange(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))
	if from == "" || to == "" {
		log.Warn("admin bookings range: missing bounds")
		transport.WriteError(w, http.StatusBadRequest, "missing from or to", nil)
		return
	}
	if to < from {
		log.Warn("admin bookings range: inverted bounds", slog.String("from", from), slog.String("to", to))
		transport.WriteError(w, http.StatusBadRequest, "from must not be after to", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	items, err := h.service.ListByDateRange(ctx, from, to)
	if err != nil {
		h.writeError(w, log, "admin bookings range", err)
		return
	}

	log.Info("admin bookings range: ok", slog.String("from", from), slog.String("to", to), slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.adminTransition(w, r, "admin bookings approve", h.service.Approve)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.adminTransition(w, r, "admin bookings reject", h.service.Reject)
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.adminTransition(w, r, "admin bookings complete", h.service.Complete)
}

func (h *Handler) adminTransition(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, string) (TransitionResult, error)) {
	log := middleware.WithRequest(h.log, r)
	id, ok := h.bookingID(w, r, log, op)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := fn(ctx, id)
	if err != nil {
		h.writeError(w, log, op, err)
		return
	}

	log.Info(op+": ok",
		slog.String("booking_id", id),
		slog.String("status", string(result.Booking.Status)),
		slog.String("admin", middleware.AdminFromContext(r.Context())),
	)
	transport.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)
	id, ok := h.bookingID(w, r, log, "admin bookings delete")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		h.writeError(w, log, "admin bookings delete", err)
		return
	}

	log.Info("admin bookings delete: ok", slog.String("booking_id", id), slog.String("admin", middleware.AdminFromContext(r.Context())))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) bookingID(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		log.Warn(op + ": missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return "", false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		log.Warn(op + ": not found")
		transport.WriteError(w, http.StatusNotFound, "booking not found", nil)
	case errors.Is(err, ErrInvalidTransition):
		log.Warn(op + ": invalid transition")
		transport.WriteError(w, http.StatusConflict, "invalid status transition", nil)
	case errors.Is(err, ErrSlotTaken):
		log.Warn(op + ": slot taken")
		transport.WriteError(w, http.StatusConflict, "slot already booked", nil)
	case errors.Is(err, ErrPastDate):
		log.Warn(op + ": date in the past")
		transport.WriteError(w, http.StatusBadRequest, "date in the past", nil)
	case errors.Is(err, ErrPhoneMismatch):
		log.Warn(op + ": phone mismatch")
		transport.WriteError(w, http.StatusForbidden, "phone does not match booking", nil)
	case errors.Is(err, slots.ErrInvalidDate):
		log.Warn(op + ": invalid date")
		transport.WriteError(w, http.StatusBadRequest, "invalid date", nil)
	case errors.Is(err, recurrence.ErrInvalidCadence), errors.Is(err, recurrence.ErrInvalidCount):
		log.Warn(op + ": invalid recurrence")
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"recurrence": "invalid"})
	default:
		log.Error(op+": database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
	}
}
