package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New("barbershop")
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/bookings/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/bookings/abc", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/bookings/{id}", "GET", "404"))
	assert.Equal(t, 1.0, got)
}

func TestCountersAndHandler(t *testing.T) {
	m := New("barbershop")
	m.Transition("approved")
	m.Notification("booking.created", "delivered")
	m.Webhook(401)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `barbershop_booking_transitions_total{to="approved"} 1`))
	assert.True(t, strings.Contains(string(body), `barbershop_webhook_requests_total{status="401"} 1`))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.Transition("approved")
	m.Notification("booking.created", "failed")
	m.Webhook(200)
}
