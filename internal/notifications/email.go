package notifications

import (
	"context"
	"fmt"
	"strings"
)

type Mailer interface {
	Send(ctx context.Context, e Email) (string, error)
}

// EmailSender mails owner events to OwnerEmail and customer events to the
// booking's address. Customer replies go to the owner.
type EmailSender struct {
	mailer     Mailer
	ownerEmail string
}

func NewEmailSender(mailer Mailer, ownerEmail string) *EmailSender {
	return &EmailSender{mailer: mailer, ownerEmail: strings.TrimSpace(ownerEmail)}
}

func (s *EmailSender) Name() string { return "email" }

func (s *EmailSender) Send(ctx context.Context, ev Event) error {
	e, err := s.compose(ev)
	if err != nil {
		return err
	}
	if _, err := s.mailer.Send(ctx, e); err != nil {
		return err
	}
	return nil
}

func (s *EmailSender) compose(ev Event) (Email, error) {
	e := Email{
		To:      strings.TrimSpace(ev.Booking.CustomerEmail),
		ToName:  ev.Booking.CustomerName,
		ReplyTo: s.ownerEmail,
		Tags:    []string{string(ev.Kind)},
	}
	if ev.Kind.ToOwner() {
		e.To, e.ToName, e.ReplyTo = s.ownerEmail, "", strings.TrimSpace(ev.Booking.CustomerEmail)
	}
	if e.To == "" {
		return Email{}, ErrNoRecipient
	}

	text, err := Message(ev)
	if err != nil {
		return Email{}, fmt.Errorf("email render: %w", err)
	}
	html, err := buildEmailHTML(ev)
	if err != nil {
		return Email{}, fmt.Errorf("email render: %w", err)
	}
	e.Subject = Subject(ev)
	e.Text = text
	e.HTML = html
	return e, nil
}
