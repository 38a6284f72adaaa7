package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Freeeeeet/slot_swap_bot/internal/config"
	"github.com/Freeeeeet/slot_swap_bot/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		storage, err := OpenStorage(ctx, &config.Config{DBDriver: config.DriverMemory}, true, zap.NewNop())
		require.NoError(t, err)
		defer storage.Close()

		_, transactional := storage.Store.(repository.Transactor)
		assert.False(t, transactional)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := &config.Config{DBDriver: config.DriverSQLite, DBDSN: filepath.Join(t.TempDir(), "swap.db")}
		storage, err := OpenStorage(ctx, cfg, true, zap.NewNop())
		require.NoError(t, err)
		defer storage.Close()

		_, transactional := storage.Store.(repository.Transactor)
		assert.True(t, transactional)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := OpenStorage(ctx, &config.Config{DBDriver: "mongo"}, true, zap.NewNop())
		assert.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("production", "warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))

	logger, err = NewLogger("development", "")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	_, err = NewLogger("development", "loud")
	assert.Error(t, err)
}
