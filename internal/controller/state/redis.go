package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultPrefix = "swapbot:state"
	defaultTTL    = 24 * time.Hour

	stateField = "state"
	dataPrefix = "d:"
)

// RedisStore хранит диалоги в hash-ключах Redis, чтобы они переживали
// перезапуск бота. Ключ живёт ttl с последней записи.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

var _ Store = (*RedisStore)(nil)

type RedisOption func(*RedisStore)

func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = strings.Trim(prefix, ":") }
}

func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = ttl }
}

func NewRedisStore(rdb *redis.Client, logger *zap.Logger, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		rdb:    rdb,
		prefix: defaultPrefix,
		ttl:    defaultTTL,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DialRedis открывает клиент и проверяет соединение
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return rdb, nil
}

func (s *RedisStore) key(telegramID int64) string {
	return fmt.Sprintf("%s:%d", s.prefix, telegramID)
}

func (s *RedisStore) GetState(ctx context.Context, telegramID int64) UserState {
	v, err := s.rdb.HGet(ctx, s.key(telegramID), stateField).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logError("get state", telegramID, err)
		}
		return StateNone
	}
	return UserState(v)
}

// SetState устанавливает состояние. StateNone удаляет запись вместе с данными.
func (s *RedisStore) SetState(ctx context.Context, telegramID int64, state UserState) {
	if state == StateNone {
		s.ClearState(ctx, telegramID)
		return
	}
	s.write(ctx, telegramID, "set state", stateField, string(state))
}

func (s *RedisStore) GetData(ctx context.Context, telegramID int64, key string) (string, bool) {
	v, err := s.rdb.HGet(ctx, s.key(telegramID), dataPrefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logError("get data", telegramID, err)
		}
		return "", false
	}
	return v, true
}

func (s *RedisStore) SetData(ctx context.Context, telegramID int64, key, value string) {
	s.write(ctx, telegramID, "set data", dataPrefix+key, value)
}

func (s *RedisStore) GetAllData(ctx context.Context, telegramID int64) map[string]string {
	result := make(map[string]string)

	fields, err := s.rdb.HGetAll(ctx, s.key(telegramID)).Result()
	if err != nil {
		s.logError("get all data", telegramID, err)
		return result
	}
	for field, v := range fields {
		if k, ok := strings.CutPrefix(field, dataPrefix); ok {
			result[k] = v
		}
	}
	return result
}

func (s *RedisStore) ClearState(ctx context.Context, telegramID int64) {
	if err := s.rdb.Del(ctx, s.key(telegramID)).Err(); err != nil {
		s.logError("clear state", telegramID, err)
	}
}

func (s *RedisStore) write(ctx context.Context, telegramID int64, op, field, value string) {
	key := s.key(telegramID)

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, field, value)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.logError(op, telegramID, err)
	}
}

func (s *RedisStore) logError(op string, telegramID int64, err error) {
	s.logger.Error("Dialog state storage failed",
		zap.String("op", op),
		zap.Int64("telegram_id", telegramID),
		zap.Error(err),
	)
}
