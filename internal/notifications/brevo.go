package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const brevoSendURL = "https://api.brevo.com/v3/smtp/email"

// Email is one rendered notification ready for a transactional mail API.
type Email struct {
	To      string
	ToName  string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
	Tags    []string
}

func (e Email) validate() error {
	switch {
	case strings.TrimSpace(e.To) == "":
		return ErrNoRecipient
	case strings.TrimSpace(e.Subject) == "":
		return errors.New("email without subject")
	case strings.TrimSpace(e.HTML) == "" && strings.TrimSpace(e.Text) == "":
		return errors.New("email without body")
	}
	return nil
}

// BrevoClient sends Email values through the Brevo SMTP API.
type BrevoClient struct {
	apiKey  string
	from    brevoContact
	sandbox bool
	url     string
	http    *http.Client
}

// NewBrevoClient returns nil when the key or sender is missing so callers
// can treat email as unconfigured.
func NewBrevoClient(apiKey, senderEmail, senderName string, sandbox bool) *BrevoClient {
	apiKey, senderEmail = strings.TrimSpace(apiKey), strings.TrimSpace(senderEmail)
	if apiKey == "" || senderEmail == "" {
		return nil
	}
	if strings.TrimSpace(senderName) == "" {
		senderName = senderEmail
	}
	return &BrevoClient{
		apiKey:  apiKey,
		from:    brevoContact{Email: senderEmail, Name: senderName},
		sandbox: sandbox,
		url:     brevoSendURL,
		http:    &http.Client{Timeout: 8 * time.Second},
	}
}

// Send posts the message and returns Brevo's message id.
func (c *BrevoClient) Send(ctx context.Context, e Email) (string, error) {
	if err := e.validate(); err != nil {
		return "", err
	}

	payload := brevoMessage{
		Sender:      c.from,
		To:          []brevoContact{{Email: e.To, Name: e.ToName}},
		Subject:     e.Subject,
		HTMLContent: e.HTML,
		TextContent: e.Text,
		Tags:        e.Tags,
	}
	if e.ReplyTo != "" {
		payload.ReplyTo = &brevoContact{Email: e.ReplyTo}
	}
	if c.sandbox {
		payload.Headers = map[string]string{"X-Sib-Sandbox": "drop"}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("brevo encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("brevo request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("brevo send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", &BrevoError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out struct {
		MessageID string `json:"messageId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("brevo decode: %w", err)
	}
	if out.MessageID == "" {
		return "", errors.New("brevo: empty messageId")
	}
	return out.MessageID, nil
}

// BrevoError is a non-2xx answer from the API. Client errors other than
// 429 will fail the same way on every retry.
type BrevoError struct {
	Status int
	Body   string
}

func (e *BrevoError) Error() string {
	return fmt.Sprintf("brevo: status %d: %s", e.Status, e.Body)
}

func (e *BrevoError) Permanent() bool {
	return e.Status >= 400 && e.Status < 500 && e.Status != http.StatusTooManyRequests
}

type brevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoMessage struct {
	Sender      brevoContact      `json:"sender"`
	To          []brevoContact    `json:"to"`
	ReplyTo     *brevoContact     `json:"replyTo,omitempty"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent,omitempty"`
	TextContent string            `json:"textContent,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}
