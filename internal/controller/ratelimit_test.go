package controller

import (
	"context"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRateLimiterAllow(t *testing.T) {
	l := NewRateLimiter(0.001, 2, zap.NewNop())

	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))

	// у другого пользователя свой бакет
	assert.True(t, l.Allow(2))
}

func TestRateLimiterCleanup(t *testing.T) {
	l := NewRateLimiter(1, 1, zap.NewNop())
	l.Allow(1)
	l.Allow(2)

	l.mu.Lock()
	l.entries[1].lastSeen = time.Now().Add(-time.Hour)
	l.mu.Unlock()

	l.Cleanup()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.entries, int64(1))
	assert.Contains(t, l.entries, int64(2))
}

func TestRateLimiterMiddlewareDropsMessages(t *testing.T) {
	l := NewRateLimiter(0.001, 1, zap.NewNop())

	calls := 0
	h := l.Middleware(func(ctx context.Context, b *bot.Bot, update *models.Update) {
		calls++
	})

	h(context.Background(), nil, messageUpdate(alice, "/myslots"))
	h(context.Background(), nil, messageUpdate(alice, "/myslots"))
	h(context.Background(), nil, messageUpdate(bob, "/myslots"))
	// апдейты без отправителя не лимитируются
	h(context.Background(), nil, &models.Update{})

	assert.Equal(t, 3, calls)
}

func TestRateLimiterMiddlewareAnswersCallbacks(t *testing.T) {
	tg, b := newFakeTelegram(t)
	l := NewRateLimiter(0.001, 1, zap.NewNop())

	calls := 0
	h := l.Middleware(func(ctx context.Context, b *bot.Bot, update *models.Update) {
		calls++
	})

	h(context.Background(), b, callbackUpdate(alice, "myslots"))
	h(context.Background(), b, callbackUpdate(alice, "myslots"))

	require.Equal(t, 1, calls)
	answers := tg.find("answerCallbackQuery", 0)
	require.Len(t, answers, 1)
	assert.Contains(t, answers[0].Form["text"], "Слишком часто")
}
