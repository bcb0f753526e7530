package notifications

import (
	"time"

	"barbershop-backend/internal/models"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventBookingCreated  EventKind = "booking.created"
	EventBookingApproved EventKind = "booking.approved"
	EventBookingRejected EventKind = "booking.rejected"
)

func (k EventKind) Valid() bool {
	switch k {
	case EventBookingCreated, EventBookingApproved, EventBookingRejected:
		return true
	}
	return false
}

// ToOwner reports whether the event is addressed to the shop owner rather
// than the customer.
func (k EventKind) ToOwner() bool {
	return k == EventBookingCreated
}

// Event is the payload relayed to every channel.
type Event struct {
	ID         string         `bson:"eventId" json:"id"`
	Kind       EventKind      `bson:"kind" json:"event"`
	Booking    models.Booking `bson:"booking" json:"booking"`
	OccurredAt time.Time      `bson:"occurredAt" json:"occurredAt"`
}

func NewEvent(kind EventKind, booking models.Booking, now time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		Booking:    booking,
		OccurredAt: now,
	}
}
