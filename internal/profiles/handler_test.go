package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"barbershop-backend/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	profiles map[string]models.UserProfile
	err      error
}

func (s *stubRepo) Get(ctx context.Context, userID string) (models.UserProfile, error) {
	if s.err != nil {
		return models.UserProfile{}, s.err
	}
	p, ok := s.profiles[userID]
	if !ok {
		return models.UserProfile{}, ErrNotFound
	}
	return p, nil
}

func (s *stubRepo) AwardCompletion(ctx context.Context, userID string, now time.Time) (models.UserProfile, error) {
	p := s.profiles[userID]
	p.ID = userID
	p.LoyaltyPoints += CompletionPoints
	p.TotalBookings += CompletionBookings
	s.profiles[userID] = p
	return p, nil
}

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/profiles/{userId}", h.Get)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestGetProfile(t *testing.T) {
	repo := &stubRepo{profiles: map[string]models.UserProfile{
		"u1": {ID: "u1", LoyaltyPoints: 30, TotalBookings: 3},
	}}
	h := NewHandler(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := serve(h, "/profiles/u1")
	require.Equal(t, http.StatusOK, rec.Code)
	var p models.UserProfile
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	assert.Equal(t, 30, p.LoyaltyPoints)

	rec = serve(h, "/profiles/nobody")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	assert.Equal(t, "nobody", p.ID)
	assert.Zero(t, p.LoyaltyPoints)

	repo.err = errors.New("down")
	rec = serve(h, "/profiles/u1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
