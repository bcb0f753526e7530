package reviews

import "time"

type Review struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Rating    int       `bson:"rating" json:"rating"`
	Text      string    `bson:"text" json:"text"`
	Lang      string    `bson:"lang,omitempty" json:"lang,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

type CreateRequest struct {
	Name   string `json:"name" validate:"required,min=2,max=120"`
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	Text   string `json:"text" validate:"required,max=2000"`
	Lang   string `json:"lang" validate:"omitempty,oneof=ar en he"`
}

type Summary struct {
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
}
