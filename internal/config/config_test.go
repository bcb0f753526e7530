package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017/shop")
	t.Setenv("MONGO_DB", "")
	t.Setenv("TZ", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "shop", cfg.MongoDB)
	assert.Equal(t, 10, cfg.RateLimitWebhook)
	assert.Equal(t, 60*time.Second, cfg.RateLimitWindow())
	assert.Equal(t, 300*time.Second, cfg.WebhookTolerance())
	assert.Equal(t, 5*time.Second, cfg.OutboxPollInterval)
	assert.Equal(t, "UTC", cfg.Timezone.String())
}

func TestLoadExplicitDatabase(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MONGO_DB", "")
	t.Setenv("TZ", "UTC")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "barbershop", cfg.MongoDB)
}

func TestLoadInvalidTimezone(t *testing.T) {
	t.Setenv("TZ", "Nowhere/Invalid")
	_, err := Load()
	assert.Error(t, err)
}

func TestMongoDBFromURI(t *testing.T) {
	assert.Equal(t, "shop", mongoDBFromURI("mongodb://h:1/shop/extra"))
	assert.Equal(t, "", mongoDBFromURI("mongodb://h:1"))
}
