package bookings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"barbershop-backend/internal/cache"
	"barbershop-backend/internal/models"
	"barbershop-backend/internal/notifications"
	"barbershop-backend/internal/obs"
	"barbershop-backend/internal/profiles"
	"barbershop-backend/internal/recurrence"
	"barbershop-backend/internal/slots"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	calendarKeyPrefix = "calendar:"
	calendarGenPrefix = "calendar:gen:"
)

// Enqueuer persists an event for later delivery.
type Enqueuer interface {
	Enqueue(ctx context.Context, ev notifications.Event) error
}

type Observer interface {
	Transition(to string)
}

type Deps struct {
	Repo     Repository
	Profiles profiles.Repository
	Events   Enqueuer
	Cache    cache.Cache
	Observer Observer
	Log      *slog.Logger
}

type Options struct {
	Location   *time.Location
	OwnerPhone string
}

type Service struct {
	repo       Repository
	profiles   profiles.Repository
	events     Enqueuer
	cache      cache.Cache
	observer   Observer
	log        *slog.Logger
	location   *time.Location
	ownerPhone string
	now        func() time.Time
}

func NewService(d Deps, o Options) *Service {
	if d.Cache == nil {
		d.Cache = cache.NewNoop()
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return &Service{
		repo:       d.Repo,
		profiles:   d.Profiles,
		events:     d.Events,
		cache:      d.Cache,
		observer:   d.Observer,
		log:        d.Log,
		location:   o.Location,
		ownerPhone: o.OwnerPhone,
		now:        time.Now,
	}
}

// CalendarCacheKey names the cached calendar payload for month. The key
// carries the month's generation, bumped by every booking write, and the
// current local date so past and selectable flags roll over at midnight.
// Callers take the key before reading bookings: a payload built from a
// read that raced a write lands under the old generation and is never served.
func (s *Service) CalendarCacheKey(ctx context.Context, month string) string {
	gen := "0"
	if raw, ok, err := s.cache.Get(ctx, calendarGenPrefix+month); err != nil {
		s.log.Warn("bookings cache: generation read failed", slog.String("month", month), slog.String("error", err.Error()))
		gen = uuid.NewString()
	} else if ok {
		gen = string(raw)
	}
	today := s.now().In(s.location).Format(slots.DateLayout)
	return calendarKeyPrefix + month + ":" + today + ":" + gen
}

// Create stores one booking, or one per date of the requested series.
// Series dates that are past or already taken are skipped and reported.
func (s *Service) Create(ctx context.Context, req CreateRequest) (CreateResult, error) {
	ctx, span := obs.Start(ctx, "bookings.Create")
	defer span.End()

	dates := []string{req.Date}
	seriesID := ""
	if req.Recurrence != nil {
		series, err := recurrence.SeriesDates(req.Date, recurrence.Cadence(req.Recurrence.Cadence), req.Recurrence.Count, s.location)
		if err != nil {
			return CreateResult{}, obs.Fail(span, err)
		}
		dates = series
		seriesID = uuid.NewString()
	}

	now := s.now().In(s.location)
	if past, err := slots.IsDatePast(req.Date, s.location, now); err != nil {
		return CreateResult{}, obs.Fail(span, err)
	} else if past {
		return CreateResult{}, ErrPastDate
	}

	result := CreateResult{
		Bookings: make([]models.Booking, 0, len(dates)),
		Skipped:  make([]SkippedDate, 0),
		SeriesID: seriesID,
	}
	for _, date := range dates {
		if past, _ := slots.IsDatePast(date, s.location, now); past {
			result.Skipped = append(result.Skipped, SkippedDate{Date: date, Reason: SkipReasonPast})
			continue
		}

		b := models.Booking{
			ID:            primitive.NewObjectID().Hex(),
			CustomerName:  strings.TrimSpace(req.CustomerName),
			CustomerPhone: strings.TrimSpace(req.CustomerPhone),
			PhoneKey:      models.PhoneKey(req.CustomerPhone),
			CustomerEmail: strings.TrimSpace(req.CustomerEmail),
			UserID:        strings.TrimSpace(req.UserID),
			Lang:          req.Lang,
			Service:       req.Service,
			Date:          date,
			Time:          req.Time,
			Status:        models.StatusPending,
			Occupied:      true,
			SeriesID:      seriesID,
			Notes:         strings.TrimSpace(req.Notes),
			Version:       1,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.repo.Create(ctx, b); err != nil {
			if errors.Is(err, ErrSlotTaken) && seriesID != "" {
				result.Skipped = append(result.Skipped, SkippedDate{Date: date, Reason: SkipReasonTaken})
				continue
			}
			if len(result.Bookings) > 0 {
				s.invalidate(ctx, result.Bookings...)
			}
			return result, obs.Fail(span, err)
		}
		result.Bookings = append(result.Bookings, b)
		s.observe(models.StatusPending)
		s.notify(ctx, notifications.EventBookingCreated, b)
	}

	if len(result.Bookings) == 0 {
		return result, ErrSlotTaken
	}
	s.invalidate(ctx, result.Bookings...)

	result.OwnerLink = s.link(notifications.EventBookingCreated, result.Bookings[0])
	span.SetAttributes(attribute.Int("bookings.created", len(result.Bookings)), attribute.Int("bookings.skipped", len(result.Skipped)))
	return result, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]models.Booking, int64, error) {
	items, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) ListByCustomer(ctx context.Context, phone string) ([]models.Booking, error) {
	key := models.PhoneKey(phone)
	if key == "" {
		return []models.Booking{}, nil
	}
	return s.repo.ListByCustomer(ctx, key, "")
}

func (s *Service) ListByDateRange(ctx context.Context, from, to string) ([]models.Booking, error) {
	if _, err := slots.ParseDate(from, s.location); err != nil {
		return nil, err
	}
	if _, err := slots.ParseDate(to, s.location); err != nil {
		return nil, err
	}
	return s.repo.ListByDateRange(ctx, from, to)
}

func (s *Service) Approve(ctx context.Context, id string) (TransitionResult, error) {
	ctx, span := s.startTransition(ctx, "bookings.Approve", id)
	defer span.End()

	b, err := s.transition(ctx, id, StatusChange{From: AllowedFrom(models.StatusApproved), To: models.StatusApproved})
	if err != nil {
		return TransitionResult{}, obs.Fail(span, err)
	}
	s.notify(ctx, notifications.EventBookingApproved, b)
	return TransitionResult{Booking: b, WhatsAppLink: s.link(notifications.EventBookingApproved, b)}, nil
}

func (s *Service) Reject(ctx context.Context, id string) (TransitionResult, error) {
	ctx, span := s.startTransition(ctx, "bookings.Reject", id)
	defer span.End()

	b, err := s.transition(ctx, id, StatusChange{From: AllowedFrom(models.StatusRejected), To: models.StatusRejected})
	if err != nil {
		return TransitionResult{}, obs.Fail(span, err)
	}
	s.notify(ctx, notifications.EventBookingRejected, b)
	return TransitionResult{Booking: b, WhatsAppLink: s.link(notifications.EventBookingRejected, b)}, nil
}

// Cancel is the customer's own rejection. It needs the booking's phone and
// sends no notification.
func (s *Service) Cancel(ctx context.Context, id, phone string) (models.Booking, error) {
	ctx, span := s.startTransition(ctx, "bookings.Cancel", id)
	defer span.End()

	current, err := s.checkOwner(ctx, id, phone)
	if err != nil {
		return models.Booking{}, obs.Fail(span, err)
	}
	if !CanTransition(current.Status, models.StatusRejected) {
		return models.Booking{}, obs.Fail(span, ErrInvalidTransition)
	}
	b, err := s.transition(ctx, id, StatusChange{
		From:        AllowedFrom(models.StatusRejected),
		To:          models.StatusRejected,
		CancelledBy: models.CancelledByCustomer,
	})
	if err != nil {
		return models.Booking{}, obs.Fail(span, err)
	}
	return b, nil
}

// Complete closes a visit and credits the customer's profile. The
// conditional status write guarantees the reward is applied at most once.
func (s *Service) Complete(ctx context.Context, id string) (TransitionResult, error) {
	ctx, span := s.startTransition(ctx, "bookings.Complete", id)
	defer span.End()

	b, err := s.transition(ctx, id, StatusChange{From: AllowedFrom(models.StatusCompleted), To: models.StatusCompleted})
	if err != nil {
		return TransitionResult{}, obs.Fail(span, err)
	}
	result := TransitionResult{Booking: b}
	if b.UserID == "" || s.profiles == nil {
		return result, nil
	}

	profile, err := s.profiles.AwardCompletion(ctx, b.UserID, s.now().In(s.location))
	if err != nil {
		s.log.Error("bookings complete: award failed",
			slog.String("booking_id", b.ID),
			slog.String("user_id", b.UserID),
			slog.String("error", err.Error()),
		)
		return result, obs.Fail(span, fmt.Errorf("award completion: %w", err))
	}
	result.Profile = &profile
	return result, nil
}

// Reschedule moves a booking to a new slot and puts it back to pending.
// A non-empty phone restricts the call to the booking's customer.
func (s *Service) Reschedule(ctx context.Context, id string, req RescheduleRequest) (TransitionResult, error) {
	ctx, span := s.startTransition(ctx, "bookings.Reschedule", id)
	defer span.End()

	now := s.now().In(s.location)
	past, err := slots.IsDatePast(req.Date, s.location, now)
	if err != nil {
		return TransitionResult{}, obs.Fail(span, err)
	}
	if past {
		return TransitionResult{}, ErrPastDate
	}

	previous, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return TransitionResult{}, obs.Fail(span, err)
	}
	if req.CustomerPhone != "" && !samePhone(previous.CustomerPhone, req.CustomerPhone) {
		return TransitionResult{}, ErrPhoneMismatch
	}
	sameDay, err := s.repo.ListByDateRange(ctx, req.Date, req.Date)
	if err != nil {
		return TransitionResult{}, obs.Fail(span, err)
	}
	others := make([]models.Booking, 0, len(sameDay))
	for _, o := range sameDay {
		if o.ID != previous.ID {
			others = append(others, o)
		}
	}
	if !slots.IsFree(req.Date, req.Time, others) {
		return TransitionResult{}, ErrSlotTaken
	}

	b, err := s.repo.Reschedule(ctx, id, req.Date, req.Time, now)
	if err != nil {
		return TransitionResult{}, obs.Fail(span, err)
	}
	s.observe(models.StatusPending)
	s.invalidate(ctx, previous, b)
	s.notify(ctx, notifications.EventBookingCreated, b)
	return TransitionResult{Booking: b, WhatsAppLink: s.link(notifications.EventBookingCreated, b)}, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := s.startTransition(ctx, "bookings.Delete", id)
	defer span.End()

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return obs.Fail(span, err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return obs.Fail(span, err)
	}
	s.invalidate(ctx, b)
	return nil
}

func (s *Service) Availability(ctx context.Context, date string) (slots.Day, error) {
	if _, err := slots.ParseDate(date, s.location); err != nil {
		return slots.Day{}, err
	}
	items, err := s.repo.ListByDateRange(ctx, date, date)
	if err != nil {
		return slots.Day{}, err
	}
	return slots.CalculateAt(date, items, s.now(), s.location)
}

func (s *Service) Calendar(ctx context.Context, month string) ([]slots.Day, error) {
	first, from, to, err := slots.MonthRange(month, s.location)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return slots.Month(first.Year(), first.Month(), items, s.now(), s.location), nil
}

func (s *Service) transition(ctx context.Context, id string, change StatusChange) (models.Booking, error) {
	change.Now = s.now().In(s.location)
	b, err := s.repo.Transition(ctx, id, change)
	if err != nil {
		return models.Booking{}, err
	}
	s.observe(change.To)
	s.invalidate(ctx, b)
	return b, nil
}

func (s *Service) checkOwner(ctx context.Context, id, phone string) (models.Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	if !samePhone(b.CustomerPhone, phone) {
		return models.Booking{}, ErrPhoneMismatch
	}
	return b, nil
}

// notify persists the event in the outbox; failures are logged and never
// undo the status change that caused them.
func (s *Service) notify(ctx context.Context, kind notifications.EventKind, b models.Booking) {
	if s.events == nil {
		return
	}
	ev := notifications.NewEvent(kind, b, s.now().In(s.location))
	if err := s.events.Enqueue(ctx, ev); err != nil {
		s.log.Warn("bookings notify: enqueue failed",
			slog.String("event", string(kind)),
			slog.String("booking_id", b.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) link(kind notifications.EventKind, b models.Booking) string {
	link, err := notifications.LinkFor(notifications.NewEvent(kind, b, s.now()), s.ownerPhone)
	if err != nil {
		s.log.Warn("bookings link: render failed", slog.String("event", string(kind)), slog.String("error", err.Error()))
		return ""
	}
	return link
}

// invalidate starts a new calendar generation for every month the bookings
// touch and drops the payloads cached under older ones.
func (s *Service) invalidate(ctx context.Context, items ...models.Booking) {
	seen := make(map[string]struct{}, len(items))
	for _, b := range items {
		if len(b.Date) < len(slots.MonthLayout) {
			continue
		}
		month := b.Date[:len(slots.MonthLayout)]
		if _, ok := seen[month]; ok {
			continue
		}
		seen[month] = struct{}{}
		if err := s.cache.Set(ctx, calendarGenPrefix+month, []byte(uuid.NewString()), 0); err != nil {
			s.log.Warn("bookings cache: invalidate failed", slog.String("month", month), slog.String("error", err.Error()))
		}
		if err := s.cache.DeletePrefix(ctx, calendarKeyPrefix+month+":"); err != nil {
			s.log.Warn("bookings cache: purge failed", slog.String("month", month), slog.String("error", err.Error()))
		}
	}
}

func (s *Service) observe(to models.Status) {
	if s.observer != nil {
		s.observer.Transition(string(to))
	}
}

func (s *Service) startTransition(ctx context.Context, name, id string) (context.Context, trace.Span) {
	ctx, span := obs.Start(ctx, name)
	span.SetAttributes(attribute.String("booking.id", id))
	return ctx, span
}

func samePhone(a, b string) bool {
	ka := models.PhoneKey(a)
	return ka != "" && ka == models.PhoneKey(b)
}
