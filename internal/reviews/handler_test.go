package reviews

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"barbershop-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	items []Review
}

func (m *memRepo) Create(ctx context.Context, review Review) error {
	m.items = append(m.items, review)
	return nil
}

func (m *memRepo) List(ctx context.Context, limit, offset int64) ([]Review, error) {
	return m.items, nil
}

func (m *memRepo) Delete(ctx context.Context, id string) (bool, error) {
	for i, it := range m.items {
		if it.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) Totals(ctx context.Context) (int64, int64, error) {
	var sum int64
	for _, it := range m.items {
		sum += int64(it.Rating)
	}
	return int64(len(m.items)), sum, nil
}

func newRouter(repo *memRepo) http.Handler {
	h := NewHandler(NewService(repo, time.UTC), validation.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Get("/reviews", h.List)
	r.Post("/reviews", h.Create)
	r.Get("/reviews/summary", h.Summary)
	r.Delete("/admin/reviews/{id}", h.AdminDelete)
	return r
}

func post(t *testing.T, h http.Handler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reviews", bytes.NewReader(raw)))
	return rec
}

func TestCreateValidatesRating(t *testing.T) {
	repo := &memRepo{}
	h := newRouter(repo)

	rec := post(t, h, CreateRequest{Name: "Omar", Rating: 6, Text: "great"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Rating":"lte"`)

	rec = post(t, h, CreateRequest{Name: "  Omar ", Rating: 5, Text: "great fade"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.items, 1)
	assert.Equal(t, "Omar", repo.items[0].Name)
}

func TestSummaryRoundsToOneDecimal(t *testing.T) {
	repo := &memRepo{}
	h := newRouter(repo)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reviews/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":0,"average":0}`, rec.Body.String())

	for _, rating := range []int{5, 4, 4} {
		require.Equal(t, http.StatusCreated, post(t, h, CreateRequest{Name: "Dana", Rating: rating, Text: "ok"}).Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reviews/summary", nil))
	assert.JSONEq(t, `{"count":3,"average":4.3}`, rec.Body.String())
}

func TestAdminDelete(t *testing.T) {
	repo := &memRepo{items: []Review{{ID: "r1", Name: "Dana", Rating: 5}}}
	h := newRouter(repo)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/reviews/r1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/reviews/r1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
