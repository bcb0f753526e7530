package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"barbershop-backend/internal/signing"
)

// WebhookRelay posts events to an external relay that does the actual
// dispatching. A 2xx answer counts as delivered; there is no retry here.
type WebhookRelay struct {
	url        string
	secret     []byte
	httpClient *http.Client
	now        func() time.Time
}

func NewWebhookRelay(url, secret string) *WebhookRelay {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	r := &WebhookRelay{
		url:        url,
		httpClient: &http.Client{Timeout: 8 * time.Second},
		now:        time.Now,
	}
	if secret != "" {
		r.secret = []byte(secret)
	}
	return r
}

func (r *WebhookRelay) Name() string { return "webhook" }

func (r *WebhookRelay) Send(ctx context.Context, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("relay marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("relay create request: %w", err)
	}
	req.Header.Set("content-type", "application/json")
	if len(r.secret) > 0 {
		signing.SetHeaders(req.Header, r.secret, raw, r.now())
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("relay send failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
