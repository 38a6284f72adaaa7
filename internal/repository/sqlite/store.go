package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Freeeeeet/slot_swap_bot/internal/migrations"
	"github.com/Freeeeeet/slot_swap_bot/internal/repository"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// querier - общее подмножество *sql.DB и *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store - встраиваемое хранилище на SQLite.
// Одно соединение: SQLite допускает одного писателя, транзакции выполняются строго по очереди.
type Store struct {
	db       *sql.DB
	slots    *SlotRepository
	requests *SwapRequestRepository
	users    *UserRepository
}

var (
	_ repository.Store      = (*Store)(nil)
	_ repository.Transactor = (*Store)(nil)
)

// Open открывает (или создаёт) базу по пути и применяет миграции
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:       db,
		slots:    &SlotRepository{q: db},
		requests: &SwapRequestRepository{q: db},
		users:    &UserRepository{q: db},
	}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := migrations.Dialect("sqlite")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// DB возвращает *sql.DB для прямых запросов (административные операции, тесты)
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Slots() repository.SlotRepository               { return s.slots }
func (s *Store) SwapRequests() repository.SwapRequestRepository { return s.requests }
func (s *Store) Users() repository.UserRepository               { return s.users }

// WithinTx выполняет fn в одной транзакции
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, &txStore{
		slots:    &SlotRepository{q: tx},
		requests: &SwapRequestRepository{q: tx},
		users:    &UserRepository{q: tx},
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type txStore struct {
	slots    *SlotRepository
	requests *SwapRequestRepository
	users    *UserRepository
}

func (s *txStore) Slots() repository.SlotRepository               { return s.slots }
func (s *txStore) SwapRequests() repository.SwapRequestRepository { return s.requests }
func (s *txStore) Users() repository.UserRepository               { return s.users }

// now - все отметки времени хранятся в UTC, чтобы текстовое сравнение в SQLite совпадало с хронологическим
func now() time.Time {
	return time.Now().UTC()
}

func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
