package profiles

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"barbershop-backend/internal/middleware"
	"barbershop-backend/internal/models"
	"barbershop-backend/internal/transport"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	repo Repository
	log  *slog.Logger
}

func NewHandler(repo Repository, log *slog.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

// Get answers with an empty profile for users that never completed a visit.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := middleware.WithRequest(h.log, r)
	userID := strings.TrimSpace(chi.URLParam(r, "userId"))
	if userID == "" {
		log.Warn("profiles get: missing user id")
		transport.WriteError(w, http.StatusBadRequest, "missing user id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	profile, err := h.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			transport.WriteJSON(w, http.StatusOK, models.UserProfile{ID: userID})
			return
		}
		log.Error("profiles get: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	transport.WriteJSON(w, http.StatusOK, profile)
}
