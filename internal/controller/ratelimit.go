package controller

import (
	"context"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter - token bucket на каждого пользователя Telegram
type RateLimiter struct {
	mu      sync.Mutex
	entries map[int64]*limiterEntry
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	logger  *zap.Logger
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(rps float64, burst int, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		entries: make(map[int64]*limiterEntry),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: 15 * time.Minute,
		logger:  logger,
	}
}

// Allow списывает токен пользователя
func (l *RateLimiter) Allow(telegramID int64) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	ent, ok := l.entries[telegramID]
	if !ok {
		ent = &limiterEntry{lim: rate.NewLimiter(l.rps, l.burst)}
		l.entries[telegramID] = ent
	}
	ent.lastSeen = now
	return ent.lim.AllowN(now, 1)
}

// Cleanup забывает пользователей, молчавших дольше idleTTL
func (l *RateLimiter) Cleanup() {
	cutoff := time.Now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	for id, ent := range l.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(l.entries, id)
		}
	}
}

// StartJanitor периодически вызывает Cleanup до отмены ctx
func (l *RateLimiter) StartJanitor(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Cleanup()
			}
		}
	}()
}

// Middleware отбрасывает апдейты сверх лимита. На нажатие кнопки
// пользователь получает ответ, сообщение просто игнорируется.
func (l *RateLimiter) Middleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		telegramID := senderID(update)
		if telegramID == 0 || l.Allow(telegramID) {
			next(ctx, b, update)
			return
		}

		l.logger.Debug("Update throttled", zap.Int64("telegram_id", telegramID))
		if update.CallbackQuery != nil {
			b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
				CallbackQueryID: update.CallbackQuery.ID,
				Text:            "⏳ Слишком часто, подождите немного",
			})
		}
	}
}

func senderID(update *models.Update) int64 {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID
	default:
		return 0
	}
}
