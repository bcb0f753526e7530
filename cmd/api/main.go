package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"barbershop-backend/internal/admin"
	"barbershop-backend/internal/announcements"
	"barbershop-backend/internal/auth"
	"barbershop-backend/internal/bookings"
	"barbershop-backend/internal/cache"
	"barbershop-backend/internal/catalog"
	"barbershop-backend/internal/config"
	"barbershop-backend/internal/db"
	"barbershop-backend/internal/gallery"
	"barbershop-backend/internal/metrics"
	"barbershop-backend/internal/middleware"
	"barbershop-backend/internal/notifications"
	"barbershop-backend/internal/obs"
	"barbershop-backend/internal/outbox"
	"barbershop-backend/internal/profiles"
	"barbershop-backend/internal/ratelimit"
	"barbershop-backend/internal/reviews"
	"barbershop-backend/internal/transport"
	"barbershop-backend/internal/validation"
	"barbershop-backend/internal/webhook"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(rootCtx, 10*time.Second)
	defer cancel()

	shutdownTracer, err := obs.InitTracer(ctx, "barbershop-backend", cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("tracer init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		tctx, tcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer tcancel()
		_ = shutdownTracer(tctx)
	}()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("mongo connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("mongo connected", slog.String("db", cfg.MongoDB))
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		logger.Error("index creation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var cacheStore cache.Cache = cache.NewMemory()
	memLimits := ratelimit.NewMemoryStore()
	var limitStore ratelimit.Store = memLimits
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisCache.Close()
		logger.Info("redis connected")
		cacheStore = redisCache
		limitStore = ratelimit.NewRedisStore(redisCache.Client())
	} else {
		go sweepLimiter(rootCtx, memLimits, cfg.RateLimitWindow())
	}

	var jwtManager *auth.Manager
	if cfg.JWTSecret != "" {
		jwtManager = &auth.Manager{
			Secret:     []byte(cfg.JWTSecret),
			AccessTTL:  time.Duration(cfg.AccessTTLMinutes) * time.Minute,
			RefreshTTL: time.Duration(cfg.RefreshTTLMinutes) * time.Minute,
			Issuer:     "barbershop-backend",
		}
	} else {
		logger.Warn("JWT_SECRET not set: admin routes disabled")
	}

	m := metrics.New("barbershop")
	val := validation.New()

	relay, closeRelay := buildRelay(cfg, m, logger)
	defer closeRelay()

	outboxStore := outbox.NewMongoStore(cols.Outbox)
	worker := outbox.NewWorker(outboxStore, relay, outbox.Config{
		Interval:    cfg.OutboxPollInterval,
		MaxAttempts: cfg.OutboxMaxAttempts,
		Batch:       cfg.OutboxBatch,
	}, logger)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(rootCtx)
	}()

	profileRepo := profiles.NewRepository(cols.Profiles)
	bookingService := bookings.NewService(bookings.Deps{
		Repo:     bookings.NewRepository(cols.Bookings),
		Profiles: profileRepo,
		Events:   outboxStore,
		Cache:    cacheStore,
		Observer: m,
		Log:      logger,
	}, bookings.Options{
		Location:   cfg.Timezone,
		OwnerPhone: cfg.OwnerPhone,
	})
	bookingHandler := bookings.NewHandler(bookingService, val, cacheStore, cfg.CacheTTL(), logger)
	profileHandler := profiles.NewHandler(profileRepo, logger)
	adminHandler := admin.NewHandler(admin.NewUserRepository(cols.Users), jwtManager, val, cfg.CookieSecure, logger)
	galleryHandler := gallery.NewHandler(gallery.NewService(gallery.NewRepository(cols.Gallery), cfg.Timezone), val, logger)
	announcementHandler := announcements.NewHandler(announcements.NewService(announcements.NewRepository(cols.Announcements), cfg.Timezone), val, logger)
	reviewHandler := reviews.NewHandler(reviews.NewService(reviews.NewRepository(cols.Reviews), cfg.Timezone), val, logger)

	window := cfg.RateLimitWindow()
	bookingLimiter := ratelimit.New(limitStore, "bookings", cfg.RateLimitBookings, window, logger)
	reviewLimiter := ratelimit.New(limitStore, "reviews", cfg.RateLimitReviews, window, logger)
	webhookLimiter := ratelimit.New(limitStore, "webhook", cfg.RateLimitWebhook, window, logger)

	webhookHandler := webhook.NewHandler(outboxStore, webhookLimiter, m, webhook.Config{
		Secret:    cfg.WebhookSecret,
		Tolerance: cfg.WebhookTolerance(),
		Location:  cfg.Timezone,
	}, logger)
	if cfg.WebhookSecret == "" {
		logger.Warn("WEBHOOK_SECRET not set: inbound webhook accepts unsigned requests")
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(m.Middleware)
	r.Use(middleware.CORS(cfg.FrontendOrigin))
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	r.Handle("/metrics", m.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		api.Get("/services", catalog.ListHandler)
		api.Get("/availability", bookingHandler.Availability)
		api.Get("/calendar", bookingHandler.Calendar)
		api.With(bookingLimiter.Middleware).Post("/bookings", bookingHandler.Create)
		api.Post("/bookings/lookup", bookingHandler.Lookup)
		api.Post("/bookings/{id}/cancel", bookingHandler.Cancel)
		api.Post("/bookings/{id}/reschedule", bookingHandler.CustomerReschedule)
		api.Get("/profiles/{userId}", profileHandler.Get)
		api.Get("/gallery", galleryHandler.PublicList)
		api.Get("/announcements", announcementHandler.PublicList)
		api.Get("/reviews", reviewHandler.List)
		api.With(reviewLimiter.Middleware).Post("/reviews", reviewHandler.Create)
		api.Get("/reviews/summary", reviewHandler.Summary)
		// the handler answers non-POST methods itself with 405 + Allow
		api.Handle("/webhooks/booking", webhookHandler)

		api.Route("/admin", func(ar chi.Router) {
			ar.Post("/login", adminHandler.Login)
			ar.Post("/refresh", adminHandler.Refresh)
			ar.Post("/logout", adminHandler.Logout)

			ar.Group(func(protected chi.Router) {
				protected.Use(middleware.AdminAuth(jwtManager))

				protected.Get("/bookings", bookingHandler.AdminList)
				protected.Get("/bookings/range", bookingHandler.AdminRange)
				protected.Post("/bookings/{id}/approve", bookingHandler.Approve)
				protected.Post("/bookings/{id}/reject", bookingHandler.Reject)
				protected.Post("/bookings/{id}/complete", bookingHandler.Complete)
				protected.Post("/bookings/{id}/reschedule", bookingHandler.AdminReschedule)
				protected.Delete("/bookings/{id}", bookingHandler.AdminDelete)

				protected.Get("/gallery", galleryHandler.AdminList)
				protected.Post("/gallery", galleryHandler.AdminCreate)
				protected.Put("/gallery/{id}", galleryHandler.AdminUpdate)
				protected.Delete("/gallery/{id}", galleryHandler.AdminDelete)

				protected.Get("/announcements", announcementHandler.AdminList)
				protected.Post("/announcements", announcementHandler.AdminCreate)
				protected.Put("/announcements/{id}", announcementHandler.AdminUpdate)
				protected.Delete("/announcements/{id}", announcementHandler.AdminDelete)

				protected.Delete("/reviews/{id}", reviewHandler.AdminDelete)
			})
		})
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-rootCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	<-workerDone
	logger.Info("server stopped")
}

// buildRelay assembles the notification channels that are configured. Nil
// clients are never wrapped in an interface.
func buildRelay(cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) (*notifications.Relay, func()) {
	opts := []notifications.RelayOption{notifications.WithObserver(m)}
	closeFn := func() {}

	if hook := notifications.NewWebhookRelay(cfg.RelayURL, cfg.WebhookSecret); hook != nil {
		opts = append(opts, notifications.WithWebhook(hook))
		logger.Info("relay webhook enabled")
	}

	if mailer := notifications.NewBrevoClient(cfg.BrevoAPIKey, cfg.BrevoSenderEmail, cfg.BrevoSenderName, cfg.BrevoSandbox); mailer != nil {
		opts = append(opts, notifications.WithEmail(notifications.NewEmailSender(mailer, cfg.OwnerEmail)))
		logger.Info("brevo mailer enabled", slog.String("sender", cfg.BrevoSenderEmail), slog.Bool("sandbox", cfg.BrevoSandbox))
	} else {
		logger.Info("brevo mailer disabled")
	}

	if cfg.AMQPURL != "" {
		pub, err := notifications.NewQueuePublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("rabbitmq publisher disabled", slog.String("error", err.Error()))
		} else {
			opts = append(opts, notifications.WithQueue(pub))
			closeFn = func() { _ = pub.Close() }
			logger.Info("rabbitmq publisher enabled", slog.String("exchange", cfg.AMQPExchange))
		}
	}

	relay := notifications.NewRelay(logger, opts...)
	if !relay.Configured() {
		logger.Warn("no notification channel configured: outbox events are dropped as delivered")
	}
	return relay, closeFn
}

func sweepLimiter(ctx context.Context, store *ratelimit.MemoryStore, window time.Duration) {
	ticker := time.NewTicker(window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			store.Sweep(window, now)
		}
	}
}
