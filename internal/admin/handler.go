package admin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"barbershop-backend/internal/auth"
	"barbershop-backend/internal/httpx"
	"barbershop-backend/internal/middleware"
	"barbershop-backend/internal/models"
	"barbershop-backend/internal/transport"
	"barbershop-backend/internal/validation"
)

const RefreshCookie = "barber_refresh"

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

type LoginResponse struct {
	Status   string `json:"status"`
	Username string `json:"username,omitempty"`
}

type Handler struct {
	users        UserRepository
	manager      *auth.Manager
	val          *validation.Validator
	cookieSecure bool
	log          *slog.Logger
}

func NewHandler(users UserRepository, manager *auth.Manager, val *validation.Validator, cookieSecure bool, log *slog.Logger) *Handler {
	return &Handler{
		users:        users,
		manager:      manager,
		val:          val,
		cookieSecure: cookieSecure,
		log:          log,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)
	var req LoginRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin login: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if err := h.val.Struct(req); err != nil {
		log.Warn("admin login: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	if h.manager == nil {
		log.Warn("admin login: not configured")
		transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := h.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			log.Error("admin login: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
			return
		}
		auth.DummyCompare(req.Password)
		log.Warn("admin login: invalid credentials", slog.String("username", req.Username))
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if user.Role != models.UserRoleAdmin || auth.ComparePassword(user.PasswordHash, req.Password) != nil {
		log.Warn("admin login: invalid credentials", slog.String("username", req.Username))
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	if !h.issue(w, log, user.ID, user.Role) {
		return
	}
	log.Info("admin login: ok", slog.String("username", user.Username))
	transport.WriteJSON(w, http.StatusOK, LoginResponse{Status: "ok", Username: user.Username})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)
	if h.manager == nil {
		log.Warn("admin refresh: not configured")
		transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
		return
	}

	cookie, err := r.Cookie(RefreshCookie)
	if err != nil || cookie.Value == "" {
		log.Warn("admin refresh: missing refresh token")
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	claims, err := h.manager.ParseType(cookie.Value, auth.TokenRefresh)
	if err != nil || claims.Role != models.UserRoleAdmin {
		log.Warn("admin refresh: invalid refresh token")
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// the account may have been removed or demoted since the token was issued
	user, err := h.users.FindByID(ctx, claims.Subject)
	if err != nil || user.Role != models.UserRoleAdmin {
		if err != nil && !errors.Is(err, ErrUserNotFound) {
			log.Error("admin refresh: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
			return
		}
		log.Warn("admin refresh: user gone", slog.String("user_id", claims.Subject))
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	if !h.issue(w, log, user.ID, user.Role) {
		return
	}
	log.Info("admin refresh: ok", slog.String("username", user.Username))
	transport.WriteJSON(w, http.StatusOK, LoginResponse{Status: "ok", Username: user.Username})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)
	clearAuthCookies(w, h.cookieSecure)
	log.Info("admin logout: ok")
	transport.WriteJSON(w, http.StatusOK, LoginResponse{Status: "ok"})
}

func (h *Handler) issue(w http.ResponseWriter, log *slog.Logger, subject, role string) bool {
	access, err := h.manager.NewAccessToken(subject, role)
	if err != nil {
		log.Error("admin auth: token error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "token error", nil)
		return false
	}
	refresh, err := h.manager.NewRefreshToken(subject, role)
	if err != nil {
		log.Error("admin auth: token error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "token error", nil)
		return false
	}
	setAuthCookies(w, access, refresh, h.manager.AccessTTL, h.manager.RefreshTTL, h.cookieSecure)
	return true
}

func setAuthCookies(w http.ResponseWriter, access, refresh string, accessTTL, refreshTTL time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessCookie,
		Value:    access,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(accessTTL.Seconds()),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    refresh,
		Path:     "/api/admin",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(refreshTTL.Seconds()),
	})
}

func clearAuthCookies(w http.ResponseWriter, secure bool) {
	expire := time.Now().Add(-1 * time.Hour)
	for _, c := range []struct{ name, path string }{
		{middleware.AccessCookie, "/"},
		{RefreshCookie, "/api/admin"},
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     c.name,
			Value:    "",
			Path:     c.path,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
			Expires:  expire,
			MaxAge:   -1,
		})
	}
}
