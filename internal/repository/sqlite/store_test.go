package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/Freeeeeet/slot_swap_bot/internal/repository"
	"github.com/Freeeeeet/slot_swap_bot/internal/repository/repotest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "swap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreContract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.Store {
		return openTestStore(t)
	})
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swap.db")

	store, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestWithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	errAbort := errors.New("abort")

	err := store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Users().Create(ctx, &model.User{TelegramID: 7, Username: "ghost"}); err != nil {
			return err
		}
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	user, err := store.Users().GetByTelegramID(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, user)

	err = store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		return tx.Users().Create(ctx, &model.User{TelegramID: 7, Username: "alice"})
	})
	require.NoError(t, err)

	user, err = store.Users().GetByTelegramID(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
}

func TestSchemaRejectsInvalidRows(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	start := time.Date(2030, 1, 15, 10, 0, 0, 0, time.UTC)
	moscow := time.FixedZone("MSK", 3*60*60)

	newSlot := func(start, end time.Time) *model.Slot {
		return &model.Slot{ID: uuid.New(), OwnerID: 1, Title: "Дежурство", StartTime: start, EndTime: end, Status: model.SlotStatusBusy}
	}

	t.Run("slot ends before start", func(t *testing.T) {
		assert.Error(t, store.Slots().Create(ctx, newSlot(start, start.Add(-time.Hour))))
	})

	t.Run("empty slot", func(t *testing.T) {
		assert.Error(t, store.Slots().Create(ctx, newSlot(start, start)))
	})

	t.Run("end earlier in another zone", func(t *testing.T) {
		// 12:00 MSK = 09:00 UTC
		end := time.Date(2030, 1, 15, 12, 0, 0, 0, moscow)
		assert.Error(t, store.Slots().Create(ctx, newSlot(start, end)))
	})

	t.Run("fractional end accepted", func(t *testing.T) {
		require.NoError(t, store.Slots().Create(ctx, newSlot(start, start.Add(500*time.Millisecond))))
	})

	t.Run("offered equals requested", func(t *testing.T) {
		slotID := uuid.New()
		err := store.SwapRequests().Create(ctx, &model.SwapRequest{
			ID:              uuid.New(),
			RequesterID:     1,
			ReceiverID:      2,
			OfferedSlotID:   slotID,
			RequestedSlotID: slotID,
			Status:          model.SwapStatusPending,
		})
		assert.Error(t, err)
	})
}
