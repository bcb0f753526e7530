package admin

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

	"barbershop-backend/internal/auth"
	"barbershop-backend/internal/middleware"
	"barbershop-backend/internal/models"
	"barbershop-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUsers struct {
	users map[string]models.User
}

func (m *memUsers) FindByUsername(ctx context.Context, username string) (models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (m *memUsers) FindByID(ctx context.Context, id string) (models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return u, nil
}

func (m *memUsers) UpsertAdmin(ctx context.Context, username, passwordHash string, now time.Time) (models.User, error) {
	u := models.User{ID: "u-" + username, Username: username, PasswordHash: passwordHash, Role: models.UserRoleAdmin}
	m.users[u.ID] = u
	return u, nil
}

func setup(t *testing.T) (http.Handler, *memUsers) {
	t.Helper()
	users := &memUsers{users: map[string]models.User{}}
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	_, err = users.UpsertAdmin(context.Background(), "admin", hash, time.Now())
	require.NoError(t, err)

	manager := &auth.Manager{
		Secret:     []byte("test-secret"),
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
		Issuer:     "barbershop-backend",
	}
	h := NewHandler(users, manager, validation.New(), false, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(manager))
			r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(middleware.AdminFromContext(r.Context())))
			})
		})
	})
	return r, users
}

func post(h http.Handler, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func cookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLoginIssuesCookies(t *testing.T) {
	h, _ := setup(t)

	rec := post(h, "/api/admin/login", LoginRequest{Username: " Admin ", Password: "s3cret"})
	require.Equal(t, http.StatusOK, rec.Code)
	access := cookie(rec, middleware.AccessCookie)
	require.NotNil(t, access)
	require.NotNil(t, cookie(rec, RefreshCookie))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.AddCookie(access)
	me := httptest.NewRecorder()
	h.ServeHTTP(me, req)
	assert.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "u-admin", me.Body.String())
}

func TestLoginFailuresLookAlike(t *testing.T) {
	h, _ := setup(t)

	wrong := post(h, "/api/admin/login", LoginRequest{Username: "admin", Password: "nope"})
	missing := post(h, "/api/admin/login", LoginRequest{Username: "ghost", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, missing.Code)
	assert.Equal(t, wrong.Body.String(), missing.Body.String())

	rec := post(h, "/api/admin/login", map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGuardRejectsMissingOrWrongToken(t *testing.T) {
	h, _ := setup(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	login := post(h, "/api/admin/login", LoginRequest{Username: "admin", Password: "s3cret"})
	refresh := cookie(login, RefreshCookie)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.Header.Set("Authorization", "Bearer "+refresh.Value)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshAndLogout(t *testing.T) {
	h, users := setup(t)
	login := post(h, "/api/admin/login", LoginRequest{Username: "admin", Password: "s3cret"})
	refresh := cookie(login, RefreshCookie)

	rec := post(h, "/api/admin/refresh", nil, refresh)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, cookie(rec, middleware.AccessCookie))

	rec = post(h, "/api/admin/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	delete(users.users, "u-admin")
	rec = post(h, "/api/admin/refresh", nil, refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post(h, "/api/admin/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := cookie(rec, middleware.AccessCookie)
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)
}
