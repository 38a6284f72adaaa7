package app

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/slot_swap_bot/internal/config"
	"github.com/Freeeeeet/slot_swap_bot/internal/repository"
	"github.com/Freeeeeet/slot_swap_bot/internal/repository/memory"
	"github.com/Freeeeeet/slot_swap_bot/internal/repository/postgres"
	"github.com/Freeeeeet/slot_swap_bot/internal/repository/sqlite"
	"go.uber.org/zap"
)

// Storage - открытое хранилище и функция его закрытия
type Storage struct {
	Store repository.Store
	close func()
}

func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStorage открывает хранилище по DB_DRIVER. migrate применяет миграции
// PostgreSQL; SQLite мигрирует себя при открытии.
func OpenStorage(ctx context.Context, cfg *config.Config, migrate bool, logger *zap.Logger) (*Storage, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := postgres.Open(ctx, cfg.DBDSN)
		if err != nil {
			return nil, err
		}

		if migrate {
			migrator, err := NewMigrator(pool, logger)
			if err != nil {
				pool.Close()
				return nil, err
			}
			err = migrator.Run(ctx)
			migrator.Close()
			if err != nil {
				pool.Close()
				return nil, err
			}
		}

		logger.Info("Connected to PostgreSQL")
		return &Storage{Store: postgres.NewStore(pool), close: pool.Close}, nil

	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.DBDSN)
		if err != nil {
			return nil, err
		}

		logger.Info("Opened SQLite database", zap.String("path", cfg.DBDSN))
		return &Storage{Store: store, close: func() { _ = store.Close() }}, nil

	case config.DriverMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		return &Storage{Store: memory.NewStore()}, nil

	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.DBDriver)
	}
}
