package models

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"

	UserRoleAdmin = "admin"

	LangArabic  = "ar"
	LangEnglish = "en"
	LangHebrew  = "he"

	CancelledByCustomer = "customer"
	CancelledByAdmin    = "admin"
)

var validStatuses = map[Status]struct{}{
	StatusPending:   {},
	StatusApproved:  {},
	StatusRejected:  {},
	StatusCompleted: {},
}

func (s Status) Valid() bool {
	_, ok := validStatuses[s]
	return ok
}

// PhoneKey reduces a phone number to its digits so that "+972 52-741-2003"
// and "972527412003" address the same customer.
func PhoneKey(phone string) string {
	var sb strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Occupies reports whether a booking in this status holds its slot.
func (s Status) Occupies() bool {
	return s != StatusRejected
}

type Booking struct {
	ID            string     `bson:"_id,omitempty" json:"id"`
	CustomerName  string     `bson:"customerName" json:"customerName"`
	CustomerPhone string     `bson:"customerPhone" json:"customerPhone"`
	PhoneKey      string     `bson:"phoneKey" json:"-"`
	CustomerEmail string     `bson:"customerEmail,omitempty" json:"customerEmail,omitempty"`
	UserID        string     `bson:"userId,omitempty" json:"userId,omitempty"`
	Lang          string     `bson:"lang,omitempty" json:"lang,omitempty"`
	Service       string     `bson:"service" json:"service"`
	Date          string     `bson:"date" json:"date"`
	Time          string     `bson:"time" json:"time"`
	Status        Status     `bson:"status" json:"status"`
	Occupied      bool       `bson:"occupied" json:"-"`
	SeriesID      string     `bson:"seriesId,omitempty" json:"seriesId,omitempty"`
	Notes         string     `bson:"notes,omitempty" json:"notes,omitempty"`
	Version       int        `bson:"version" json:"version"`
	CreatedAt     time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time  `bson:"updatedAt" json:"updatedAt"`
	CancelledAt   *time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CancelledBy   string     `bson:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	RescheduledAt *time.Time `bson:"rescheduledAt,omitempty" json:"rescheduledAt,omitempty"`
}

type UserProfile struct {
	ID            string    `bson:"_id" json:"id"`
	LoyaltyPoints int       `bson:"loyaltyPoints" json:"loyaltyPoints"`
	TotalBookings int       `bson:"totalBookings" json:"totalBookings"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Username     string    `bson:"username" json:"username"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	Role         string    `bson:"role" json:"role"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Localized carries the three language variants used by the public site.
type Localized struct {
	AR string `bson:"ar" json:"ar"`
	EN string `bson:"en" json:"en"`
	HE string `bson:"he" json:"he"`
}

// Pick returns the variant for lang, falling back to English.
func (l Localized) Pick(lang string) string {
	switch lang {
	case LangArabic:
		if l.AR != "" {
			return l.AR
		}
	case LangHebrew:
		if l.HE != "" {
			return l.HE
		}
	}
	return l.EN
}
