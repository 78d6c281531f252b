package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ORDER_LEAD_TIME_DAYS", "7")
	t.Setenv("SESSION_IDLE_TTL", "not-a-duration")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.com, http://localhost:5173,")

	cfg := Load()
	assert.Equal(t, "9090", cfg.AppPort)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 7*24*time.Hour, cfg.OrderLeadTime)
	assert.Equal(t, 2*time.Hour, cfg.SessionIdleTTL)
	assert.Equal(t, []string{"https://shop.example.com", "http://localhost:5173"}, cfg.AllowedOrigins)
	assert.False(t, cfg.CloudinaryEnabled())
}
