package announcements

import (
	"time"

	"barbershop-backend/internal/models"
)

const (
	TypeInfo    = "info"
	TypePromo   = "promo"
	TypeWarning = "warning"
	TypeHoliday = "holiday"
)

type Announcement struct {
	ID        string           `bson:"_id,omitempty" json:"id"`
	Text      models.Localized `bson:"text" json:"text"`
	Type      string           `bson:"type" json:"type"`
	Active    bool             `bson:"active" json:"active"`
	CreatedAt time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// Text requires at least one language variant.
type Text struct {
	AR string `json:"ar" validate:"required_without_all=EN HE,max=500"`
	EN string `json:"en" validate:"required_without_all=AR HE,max=500"`
	HE string `json:"he" validate:"required_without_all=AR EN,max=500"`
}

type UpsertRequest struct {
	Text   Text   `json:"text"`
	Type   string `json:"type" validate:"required,oneof=info promo warning holiday"`
	Active *bool  `json:"active"`
}

type AdminListFilter struct {
	Type string
}
