package notifications

import (
	"net/url"
	"strings"
)

const whatsAppBase = "https://wa.me/"

// WhatsAppLink builds a click-to-chat link. Sending still needs a human.
func WhatsAppLink(phone, text string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	link := whatsAppBase + digits.String()
	if text != "" {
		link += "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	}
	return link
}

// LinkFor returns the deep link for ev addressed to the customer, or to
// ownerPhone for owner events. Empty when no phone is known.
func LinkFor(ev Event, ownerPhone string) (string, error) {
	phone := ev.Booking.CustomerPhone
	if ev.Kind.ToOwner() {
		phone = ownerPhone
	}
	if strings.TrimSpace(phone) == "" {
		return "", nil
	}
	text, err := Message(ev)
	if err != nil {
		return "", err
	}
	return WhatsAppLink(phone, text), nil
}
