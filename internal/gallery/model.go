package gallery

import (
	"time"

	"barbershop-backend/internal/models"
)

// Image is the metadata of a picture stored in external object storage.
type Image struct {
	ID        string           `bson:"_id,omitempty" json:"id"`
	URL       string           `bson:"url" json:"url"`
	Caption   models.Localized `bson:"caption" json:"caption"`
	Visible   bool             `bson:"visible" json:"visible"`
	SortOrder int              `bson:"sortOrder" json:"sortOrder"`
	CreatedAt time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time        `bson:"updatedAt" json:"updatedAt"`
}

type UpsertRequest struct {
	URL       string  `json:"url" validate:"required,url,max=1024"`
	Caption   Caption `json:"caption"`
	Visible   *bool   `json:"visible"`
	SortOrder *int    `json:"sortOrder" validate:"omitempty,gte=0"`
}

type Caption struct {
	AR string `json:"ar" validate:"max=200"`
	EN string `json:"en" validate:"max=200"`
	HE string `json:"he" validate:"max=200"`
}
