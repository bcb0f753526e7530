package ratelimit

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"barbershop-backend/internal/httpx"
	"barbershop-backend/internal/transport"
)

// Store counts hits per key over a sliding window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (bool, time.Duration, error)
}

type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	prefix string
	log    *slog.Logger
	now    func() time.Time
}

func New(store Store, prefix string, limit int, window time.Duration, log *slog.Logger) *Limiter {
	return &Limiter{
		store:  store,
		limit:  limit,
		window: window,
		prefix: prefix,
		log:    log,
		now:    time.Now,
	}
}

func (l *Limiter) Allow(ctx context.Context, clientKey string) (bool, time.Duration) {
	allowed, retry, err := l.store.Allow(ctx, "rl:"+l.prefix+":"+clientKey, l.limit, l.window, l.now())
	if err != nil {
		// fail open: a broken counter store must not take the site down
		if l.log != nil {
			l.log.Warn("ratelimit: store error", slog.String("prefix", l.prefix), slog.String("error", err.Error()))
		}
		return true, 0
	}
	return allowed, retry
}

// Middleware keys requests by client IP.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, retry := l.Allow(r.Context(), httpx.ClientIP(r))
		if !allowed {
			secs := int(math.Ceil(retry.Seconds()))
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			transport.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
