package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/slot_swap_bot/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

// maxTxRetries - сколько раз повторяется транзакция, прерванная дедлоком или сериализацией
const maxTxRetries = 3

// txOptions - все транзакции хранилища сериализуемые
var txOptions = pgx.TxOptions{IsoLevel: pgx.Serializable}

// Store - хранилище на PostgreSQL с поддержкой транзакций
type Store struct {
	pool     *pgxpool.Pool
	slots    *SlotRepository
	requests *SwapRequestRepository
	users    *UserRepository
}

var (
	_ repository.Store      = (*Store)(nil)
	_ repository.Transactor = (*Store)(nil)
)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:     pool,
		slots:    NewSlotRepository(pool),
		requests: NewSwapRequestRepository(pool),
		users:    NewUserRepository(pool),
	}
}

// Open создаёт пул соединений и проверяет доступность базы
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse db dsn: %w", err)
	}
	cfg.MaxConnLifetime = 5 * time.Minute
	cfg.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return pool, nil
}

func (s *Store) Pool() *pgxpool.Pool                           { return s.pool }
func (s *Store) Slots() repository.SlotRepository               { return s.slots }
func (s *Store) SwapRequests() repository.SwapRequestRepository { return s.requests }
func (s *Store) Users() repository.UserRepository               { return s.users }

// WithinTx выполняет fn в одной транзакции SERIALIZABLE.
// Проверка, прочитанная внутри fn, не может устареть к коммиту: конфликтующая
// транзакция прерывается с 40001 и повторяется до maxTxRetries раз.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	backoff := retry.WithMaxRetries(maxTxRetries-1, retry.NewExponential(20*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.runTx(ctx, fn)
		if isRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})

	if isRetryable(err) {
		return fmt.Errorf("%w: %v", repository.ErrSerialization, err)
	}
	return err
}

func (s *Store) runTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	tx, err := s.pool.BeginTx(ctx, txOptions)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &txStore{
		slots:    NewSlotRepository(tx),
		requests: NewSwapRequestRepository(tx),
		users:    NewUserRepository(tx),
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore - репозитории, привязанные к открытой транзакции
type txStore struct {
	slots    *SlotRepository
	requests *SwapRequestRepository
	users    *UserRepository
}

func (s *txStore) Slots() repository.SlotRepository               { return s.slots }
func (s *txStore) SwapRequests() repository.SwapRequestRepository { return s.requests }
func (s *txStore) Users() repository.UserRepository               { return s.users }
