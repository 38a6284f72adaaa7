package state

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testStore(t *testing.T, s Store) {
	ctx := context.Background()
	const alice, bob = int64(1001), int64(1002)

	assert.Equal(t, StateNone, s.GetState(ctx, alice))
	_, ok := s.GetData(ctx, alice, KeyTitle)
	assert.False(t, ok)
	assert.Empty(t, s.GetAllData(ctx, alice))

	s.SetState(ctx, alice, StateNewSlotTitle)
	s.SetData(ctx, alice, KeyTitle, "Дежурство")
	s.SetData(ctx, alice, KeyStart, "2030-01-15T10:00:00Z")
	s.SetState(ctx, bob, StateEditSlotTime)

	assert.Equal(t, StateNewSlotTitle, s.GetState(ctx, alice))
	title, ok := s.GetData(ctx, alice, KeyTitle)
	require.True(t, ok)
	assert.Equal(t, "Дежурство", title)
	assert.Equal(t, map[string]string{
		KeyTitle: "Дежурство",
		KeyStart: "2030-01-15T10:00:00Z",
	}, s.GetAllData(ctx, alice))

	// смена шага сохраняет накопленные данные
	s.SetState(ctx, alice, StateNewSlotEnd)
	_, ok = s.GetData(ctx, alice, KeyTitle)
	assert.True(t, ok)

	s.ClearState(ctx, alice)
	assert.Equal(t, StateNone, s.GetState(ctx, alice))
	assert.Empty(t, s.GetAllData(ctx, alice))
	assert.Equal(t, StateEditSlotTime, s.GetState(ctx, bob))

	s.SetState(ctx, bob, StateNone)
	assert.Equal(t, StateNone, s.GetState(ctx, bob))
}

func TestManager(t *testing.T) {
	testStore(t, NewManager())
}

func TestManagerGetAllDataReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewManager()
	m.SetData(ctx, 1, KeySlotID, "a")

	data := m.GetAllData(ctx, 1)
	data[KeySlotID] = "b"

	v, _ := m.GetData(ctx, 1, KeySlotID)
	assert.Equal(t, "a", v)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("SWAPBOT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SWAPBOT_TEST_REDIS_ADDR is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rdb, err := DialRedis(ctx, addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	prefix := "swapbot:test:" + uuid.NewString()
	s := NewRedisStore(rdb, zaptest.NewLogger(t), WithPrefix(prefix), WithTTL(time.Minute))
	testStore(t, s)

	s.SetState(ctx, 7, StateNewSlotTitle)
	ttl, err := rdb.TTL(ctx, prefix+":7").Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
	s.ClearState(ctx, 7)
}
