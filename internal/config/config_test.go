package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		"DB_DSN": "postgres://localhost/swap",
	}))
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, time.UTC, cfg.Timezone)
	assert.Equal(t, 2.0, cfg.RateLimitRPS)
	assert.Equal(t, 5, cfg.RateLimitBurst)
	assert.Equal(t, 10*time.Minute, cfg.ReconcileInterval)
	assert.Equal(t, 2*time.Minute, cfg.ReconcileGrace)
	assert.True(t, cfg.AutoMigrate)
	assert.Error(t, cfg.RequireToken())
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		"TELEGRAM_TOKEN":     "123:abc",
		"DB_DRIVER":          "memory",
		"ENV":                "production",
		"LOG_LEVEL":          "warn",
		"TIMEZONE":           "Europe/Moscow",
		"REDIS_ADDR":         "localhost:6379",
		"REDIS_DB":           "3",
		"RATE_LIMIT_RPS":     "0.5",
		"RATE_LIMIT_BURST":   "1",
		"RECONCILE_INTERVAL": "0s",
		"RECONCILE_GRACE":    "30s",
		"AUTO_MIGRATE":       "false",
	}))
	require.NoError(t, err)

	assert.NoError(t, cfg.RequireToken())
	assert.Equal(t, DriverMemory, cfg.DBDriver)
	assert.Equal(t, "Europe/Moscow", cfg.Timezone.String())
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 0.5, cfg.RateLimitRPS)
	assert.Equal(t, time.Duration(0), cfg.ReconcileInterval)
	assert.Equal(t, 30*time.Second, cfg.ReconcileGrace)
	assert.False(t, cfg.AutoMigrate)
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{"missing dsn", map[string]string{}, "DB_DSN"},
		{"unknown driver", map[string]string{"DB_DRIVER": "mongo"}, "DB_DRIVER"},
		{"bad duration", map[string]string{"DB_DRIVER": "memory", "RECONCILE_INTERVAL": "often"}, "RECONCILE_INTERVAL"},
		{"bad int", map[string]string{"DB_DRIVER": "memory", "REDIS_DB": "one"}, "REDIS_DB"},
		{"bad bool", map[string]string{"DB_DRIVER": "memory", "AUTO_MIGRATE": "sometimes"}, "AUTO_MIGRATE"},
		{"bad timezone", map[string]string{"DB_DRIVER": "memory", "TIMEZONE": "Mars/Olympus"}, "TIMEZONE"},
		{"zero burst", map[string]string{"DB_DRIVER": "memory", "RATE_LIMIT_BURST": "0"}, "RATE_LIMIT_BURST"},
		{"zero grace", map[string]string{"DB_DRIVER": "memory", "RECONCILE_GRACE": "0s"}, "RECONCILE_GRACE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(lookupFrom(tt.vars))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFromEnvZeroGraceWithReconcileDisabled(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		"DB_DRIVER":          "memory",
		"RECONCILE_INTERVAL": "0",
		"RECONCILE_GRACE":    "0s",
	}))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.ReconcileGrace)
}
