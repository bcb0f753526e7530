package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"barbershop-backend/internal/notifications"
	"barbershop-backend/internal/signing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	secret = "s3cret"
	body   = `{"booking":{"customerName":"Yossi","customerPhone":"+972527412003","service":"Haircut","date":"2025-01-06","time":"9:00 AM"}}`
)

type memEvents struct {
	events []notifications.Event
	err    error
}

func (m *memEvents) Enqueue(ctx context.Context, ev notifications.Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, ev)
	return nil
}

type countingLimiter struct {
	limit int
	hits  int
}

func (l *countingLimiter) Allow(ctx context.Context, key string) (bool, time.Duration) {
	l.hits++
	return l.hits <= l.limit, time.Second
}

type statusLog struct {
	codes []int
}

func (s *statusLog) Webhook(status int) {
	s.codes = append(s.codes, status)
}

var fixedNow = time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)

func newTestHandler(events Enqueuer, limiter Limiter, obs Observer) *Handler {
	h := NewHandler(events, limiter, obs, Config{Secret: secret}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.now = func() time.Time { return fixedNow }
	return h
}

func signedRequest(payload string, ts time.Time) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/booking", strings.NewReader(payload))
	signing.SetHeaders(req.Header, []byte(secret), []byte(payload), ts)
	return req
}

func TestSignatureTenSecondsOldPasses(t *testing.T) {
	events := &memEvents{}
	obs := &statusLog{}
	h := newTestHandler(events, nil, obs)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(body, fixedNow.Add(-10*time.Second)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	require.Len(t, events.events, 1)
	assert.Equal(t, notifications.EventBookingCreated, events.events[0].Kind)
	assert.Equal(t, "Yossi", events.events[0].Booking.CustomerName)
	assert.Equal(t, []int{http.StatusOK}, obs.codes)
}

func TestSignatureFourHundredSecondsOldRejected(t *testing.T) {
	events := &memEvents{}
	h := newTestHandler(events, nil, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(body, fixedNow.Add(-400*time.Second)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, events.events)
}

func TestRejectsBadSignatures(t *testing.T) {
	ts := strconv.FormatInt(fixedNow.Unix(), 10)
	cases := []struct {
		name    string
		headers map[string]string
	}{
		{"missing timestamp", map[string]string{signing.HeaderSignature: signing.Sign([]byte(secret), fixedNow.Unix(), []byte(body))}},
		{"missing signature", map[string]string{signing.HeaderTimestamp: ts}},
		{"wrong secret", map[string]string{
			signing.HeaderTimestamp: ts,
			signing.HeaderSignature: signing.Sign([]byte("other"), fixedNow.Unix(), []byte(body)),
		}},
		{"garbage timestamp", map[string]string{signing.HeaderTimestamp: "soon", signing.HeaderSignature: "abcd"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandler(&memEvents{}, nil, nil)
			req := httptest.NewRequest(http.MethodPost, "/api/webhooks/booking", strings.NewReader(body))
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestValidatesPayload(t *testing.T) {
	cases := []string{
		`{"booking":{"customerName":" Y ","customerPhone":"+972527412003"}}`,
		`{"booking":{"customerName":"Yossi","customerPhone":" 1234567 "}}`,
		`{"booking":`,
	}
	for _, payload := range cases {
		h := newTestHandler(&memEvents{}, nil, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, signedRequest(payload, fixedNow))
		assert.Equal(t, http.StatusBadRequest, rec.Code, payload)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandler(&memEvents{}, nil, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/webhooks/booking", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestRateLimited(t *testing.T) {
	events := &memEvents{}
	h := newTestHandler(events, &countingLimiter{limit: 10}, nil)

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, signedRequest(body, fixedNow))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(body, fixedNow))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Len(t, events.events, 10)
}

func TestEnqueueFailure(t *testing.T) {
	h := newTestHandler(&memEvents{err: errors.New("mongo down")}, nil, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(body, fixedNow))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUnsignedWhenNoSecret(t *testing.T) {
	events := &memEvents{}
	h := NewHandler(events, nil, nil, Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/webhooks/booking", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, events.events, 1)
}
