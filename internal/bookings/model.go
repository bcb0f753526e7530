package bookings

import "barbershop-backend/internal/models"

type CreateRequest struct {
	CustomerName  string             `json:"customerName" validate:"required,min=2,max=120"`
	CustomerPhone string             `json:"customerPhone" validate:"required,phone"`
	CustomerEmail string             `json:"customerEmail" validate:"omitempty,email,max=254"`
	UserID        string             `json:"userId" validate:"omitempty,max=128"`
	Lang          string             `json:"lang" validate:"omitempty,oneof=ar en he"`
	Service       string             `json:"service" validate:"required,service"`
	Date          string             `json:"date" validate:"required,date"`
	Time          string             `json:"time" validate:"required,slot"`
	Notes         string             `json:"notes" validate:"max=500"`
	Recurrence    *RecurrenceRequest `json:"recurrence"`
}

type RecurrenceRequest struct {
	Cadence string `json:"cadence" validate:"required,oneof=weekly biweekly monthly"`
	Count   int    `json:"count" validate:"required,gte=2,lte=12"`
}

type LookupRequest struct {
	CustomerPhone string `json:"customerPhone" validate:"required,phone"`
}

type CancelRequest struct {
	CustomerPhone string `json:"customerPhone" validate:"required,phone"`
}

// RescheduleRequest is shared by the customer and admin routes; the
// customer route additionally requires the phone.
type RescheduleRequest struct {
	Date          string `json:"date" validate:"required,date"`
	Time          string `json:"time" validate:"required,slot"`
	CustomerPhone string `json:"customerPhone" validate:"omitempty,phone"`
}

const (
	SkipReasonPast  = "past"
	SkipReasonTaken = "taken"
)

type SkippedDate struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

type CreateResult struct {
	Bookings  []models.Booking `json:"bookings"`
	Skipped   []SkippedDate    `json:"skipped"`
	SeriesID  string           `json:"seriesId,omitempty"`
	OwnerLink string           `json:"whatsAppLink,omitempty"`
}

type TransitionResult struct {
	Booking      models.Booking      `json:"booking"`
	WhatsAppLink string              `json:"whatsAppLink,omitempty"`
	Profile      *models.UserProfile `json:"profile,omitempty"`
}

type ListFilter struct {
	Status models.Status
}
