package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/postpilot")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.SchedulerPoll)
	assert.Equal(t, 10, cfg.SchedulerBatch)
	assert.Equal(t, "https://api.linkedin.com", cfg.LinkedInAPIBase)
	assert.Equal(t, 25*time.Second, cfg.LinkedInTimeout)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/postpilot")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SCHEDULER_POLL_SECONDS", "3")
	t.Setenv("SCHEDULER_BATCH_LIMIT", "25")
	t.Setenv("LINKEDIN_API_BASE", "http://127.0.0.1:9999")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:4200, https://app.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.SchedulerPoll)
	assert.Equal(t, 25, cfg.SchedulerBatch)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.LinkedInAPIBase)
	assert.Equal(t, []string{"http://localhost:4200", "https://app.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadBadIntFallsBack(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/postpilot")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SCHEDULER_BATCH_LIMIT", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.SchedulerBatch)
}
