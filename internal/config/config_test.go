package config_test

import (
	"complaintdesk/backend/internal/config"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REALTIME_BACKEND", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.RealtimeRedis, cfg.RealtimeBackend)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 72*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REALTIME_BACKEND", "Postgres")
	t.Setenv("JWT_TTL", "15m")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("DB_NAME", "desk_test")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.RealtimePostgres, cfg.RealtimeBackend)
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Contains(t, cfg.Database.DSN(), "dbname=desk_test")
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REALTIME_BACKEND", "kafka")

	_, err := config.Load()
	assert.Error(t, err)
}
