package bookings

import (
	"context"
	"sort"
	"sync"
	"time"

	"barbershop-backend/internal/models"
	"barbershop-backend/internal/notifications"
	"barbershop-backend/internal/profiles"
)

// memRepo mirrors MongoRepository, including the unique index on occupied
// slots.
type memRepo struct {
	mu    sync.Mutex
	items  map[string]models.Booking
	err    error
	writes int
}

func newMemRepo() *memRepo {
	return &memRepo{items: map[string]models.Booking{}}
}

func (m *memRepo) slotTaken(id, date, slot string) bool {
	for _, b := range m.items {
		if b.ID != id && b.Occupied && b.Date == date && b.Time == slot {
			return true
		}
	}
	return false
}

func (m *memRepo) Create(ctx context.Context, b models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if b.Occupied && m.slotTaken(b.ID, b.Date, b.Time) {
		return ErrSlotTaken
	}
	m.items[b.ID] = b
	return nil
}

func (m *memRepo) sorted(keep func(models.Booking) bool) []models.Booking {
	out := []models.Booking{}
	for _, b := range m.items {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memRepo) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	all := m.sorted(func(b models.Booking) bool { return filter.Status == "" || b.Status == filter.Status })
	if offset >= int64(len(all)) {
		return []models.Booking{}, nil
	}
	end := offset + limit
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[offset:end], nil
}

func (m *memRepo) Count(ctx context.Context, filter ListFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.sorted(func(b models.Booking) bool { return filter.Status == "" || b.Status == filter.Status })
	return int64(len(all)), nil
}

func (m *memRepo) ListByCustomer(ctx context.Context, phoneKey, userID string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(b models.Booking) bool {
		return (phoneKey != "" && b.PhoneKey == phoneKey) || (userID != "" && b.UserID == userID)
	}), nil
}

func (m *memRepo) GetByID(ctx context.Context, id string) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.Booking{}, m.err
	}
	b, ok := m.items[id]
	if !ok {
		return models.Booking{}, ErrNotFound
	}
	return b, nil
}

func (m *memRepo) Transition(ctx context.Context, id string, change StatusChange) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	b, ok := m.items[id]
	if !ok {
		return models.Booking{}, ErrNotFound
	}
	allowed := false
	for _, s := range change.From {
		if b.Status == s {
			allowed = true
		}
	}
	if !allowed {
		return models.Booking{}, ErrInvalidTransition
	}
	b.Status = change.To
	b.Occupied = change.To.Occupies()
	b.UpdatedAt = change.Now
	b.Version++
	if change.CancelledBy != "" {
		at := change.Now
		b.CancelledAt = &at
		b.CancelledBy = change.CancelledBy
	}
	m.items[id] = b
	return b, nil
}

func (m *memRepo) Reschedule(ctx context.Context, id, date, slot string, now time.Time) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	b, ok := m.items[id]
	if !ok {
		return models.Booking{}, ErrNotFound
	}
	if m.slotTaken(id, date, slot) {
		return models.Booking{}, ErrSlotTaken
	}
	b.Date, b.Time = date, slot
	b.Status = models.StatusPending
	b.Occupied = true
	b.RescheduledAt = &now
	b.UpdatedAt = now
	b.Version++
	m.items[id] = b
	return b, nil
}

func (m *memRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memRepo) ListByDateRange(ctx context.Context, from, to string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(func(b models.Booking) bool { return b.Date >= from && b.Date <= to }), nil
}

type memProfiles struct {
	mu       sync.Mutex
	profiles map[string]models.UserProfile
	awards   int
}

func newMemProfiles() *memProfiles {
	return &memProfiles{profiles: map[string]models.UserProfile{}}
}

func (p *memProfiles) Get(ctx context.Context, userID string) (models.UserProfile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prof, ok := p.profiles[userID]
	if !ok {
		return models.UserProfile{}, profiles.ErrNotFound
	}
	return prof, nil
}

func (p *memProfiles) AwardCompletion(ctx context.Context, userID string, now time.Time) (models.UserProfile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.awards++
	prof := p.profiles[userID]
	prof.ID = userID
	prof.LoyaltyPoints += profiles.CompletionPoints
	prof.TotalBookings += profiles.CompletionBookings
	prof.UpdatedAt = now
	p.profiles[userID] = prof
	return prof, nil
}

type memEvents struct {
	mu     sync.Mutex
	events []notifications.Event
	err    error
}

func (e *memEvents) Enqueue(ctx context.Context, ev notifications.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.events = append(e.events, ev)
	return nil
}

func (e *memEvents) kinds() []notifications.EventKind {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]notifications.EventKind, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Kind)
	}
	return out
}
