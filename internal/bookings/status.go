package bookings

import "barbershop-backend/internal/models"

// allowedFrom lists, per target status, the statuses a booking may leave to
// reach it. Reschedule is handled separately: it accepts any status.
var allowedFrom = map[models.Status][]models.Status{
	models.StatusApproved:  {models.StatusPending},
	models.StatusRejected:  {models.StatusPending, models.StatusApproved},
	models.StatusCompleted: {models.StatusPending, models.StatusApproved},
}

func AllowedFrom(to models.Status) []models.Status {
	from := allowedFrom[to]
	out := make([]models.Status, len(from))
	copy(out, from)
	return out
}

func CanTransition(from, to models.Status) bool {
	for _, s := range allowedFrom[to] {
		if s == from {
			return true
		}
	}
	return false
}
