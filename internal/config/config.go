package config

import (
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env            string `envconfig:"APP_ENV" default:"development"`
	ServerAddr     string `envconfig:"SERVER_ADDR" default:":8080"`
	FrontendOrigin string `envconfig:"FRONTEND_ORIGIN" default:"http://localhost:5173"`
	TimezoneName   string `envconfig:"TZ" default:"Asia/Jerusalem"`

	MongoURI string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017/barbershop"`
	MongoDB  string `envconfig:"MONGO_DB"`

	RedisURL        string `envconfig:"REDIS_URL"`
	RedisAddr       string `envconfig:"REDIS_ADDR"`
	RedisPassword   string `envconfig:"REDIS_PASSWORD"`
	RedisDB         int    `envconfig:"REDIS_DB" default:"0"`
	CacheTTLSeconds int    `envconfig:"CACHE_TTL_SECONDS" default:"60"`

	RateLimitBookings  int `envconfig:"RATE_LIMIT_BOOKINGS" default:"10"`
	RateLimitReviews   int `envconfig:"RATE_LIMIT_REVIEWS" default:"5"`
	RateLimitWebhook   int `envconfig:"RATE_LIMIT_WEBHOOK" default:"10"`
	RateLimitWindowSec int `envconfig:"RATE_LIMIT_WINDOW_SEC" default:"60"`

	JWTSecret         string `envconfig:"JWT_SECRET"`
	AccessTTLMinutes  int    `envconfig:"ACCESS_TTL_MINUTES" default:"15"`
	RefreshTTLMinutes int    `envconfig:"REFRESH_TTL_MINUTES" default:"10080"`
	CookieSecure      bool   `envconfig:"COOKIE_SECURE" default:"false"`
	AdminUser         string `envconfig:"ADMIN_USER" default:"admin"`
	AdminPassword     string `envconfig:"ADMIN_PASSWORD"`

	WebhookSecret       string `envconfig:"WEBHOOK_SECRET"`
	WebhookToleranceSec int    `envconfig:"WEBHOOK_TOLERANCE_SEC" default:"300"`
	RelayURL            string `envconfig:"RELAY_URL"`
	OwnerPhone          string `envconfig:"OWNER_PHONE"`
	OwnerEmail          string `envconfig:"OWNER_EMAIL"`

	BrevoAPIKey      string `envconfig:"BREVO_API_KEY"`
	BrevoSenderEmail string `envconfig:"BREVO_SENDER_EMAIL"`
	BrevoSenderName  string `envconfig:"BREVO_SENDER_NAME" default:"Barbershop"`
	BrevoSandbox     bool   `envconfig:"BREVO_SANDBOX" default:"false"`

	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"booking.events"`

	OutboxPollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"5s"`
	OutboxMaxAttempts  int           `envconfig:"OUTBOX_MAX_ATTEMPTS" default:"5"`
	OutboxBatch        int           `envconfig:"OUTBOX_BATCH" default:"20"`

	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	Timezone *time.Location `ignored:"true"`
}

func (c *Config) WebhookTolerance() time.Duration {
	return time.Duration(c.WebhookToleranceSec) * time.Second
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSec) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Load reads .env (without overriding the real environment) and then the
// process environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.TimezoneName)
	if err != nil {
		return nil, err
	}
	cfg.Timezone = loc

	if cfg.MongoDB == "" {
		cfg.MongoDB = mongoDBFromURI(cfg.MongoURI)
	}
	if cfg.MongoDB == "" {
		cfg.MongoDB = "barbershop"
	}

	return &cfg, nil
}

func mongoDBFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	db := strings.Trim(u.Path, "/")
	if db == "" {
		return ""
	}
	// only the first path segment names the database
	if idx := strings.Index(db, "/"); idx >= 0 {
		db = db[:idx]
	}
	return db
}
