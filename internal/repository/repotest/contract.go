// Package repotest - общий набор проверок контрактов repository.Store,
// которые проходят все реализации хранилища
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/Freeeeeet/slot_swap_bot/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Opener возвращает пустое хранилище для одного подтеста
type Opener func(t *testing.T) repository.Store

var day = time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC)

// Run прогоняет контракт на хранилище
func Run(t *testing.T, open Opener) {
	t.Run("users", func(t *testing.T) { testUsers(t, open(t)) })
	t.Run("slot reads", func(t *testing.T) { testSlotReads(t, open(t)) })
	t.Run("slot guarded writes", func(t *testing.T) { testSlotGuardedWrites(t, open(t)) })
	t.Run("swap requests", func(t *testing.T) { testSwapRequests(t, open(t)) })
}

func testUsers(t *testing.T, store repository.Store) {
	ctx := context.Background()
	users := store.Users()

	missing, err := users.GetByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, missing)

	user := &model.User{TelegramID: 42, Username: "alice", FirstName: "Alice", LanguageCode: "ru"}
	require.NoError(t, users.Create(ctx, user))
	assert.Positive(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byTelegram, err := users.GetByTelegramID(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, byTelegram)
	assert.Equal(t, user.ID, byTelegram.ID)

	user.Username = "alice2"
	require.NoError(t, users.Update(ctx, user))

	byID, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "alice2", byID.Username)
	assert.Equal(t, "Alice", byID.FirstName)

	assert.Error(t, users.Create(ctx, &model.User{TelegramID: 42}))

	missingByID, err := users.GetByID(ctx, user.ID+1000)
	require.NoError(t, err)
	assert.Nil(t, missingByID)
}

func testSlotReads(t *testing.T, store repository.Store) {
	ctx := context.Background()
	alice := createUser(t, store, 1)
	bob := createUser(t, store, 2)

	late := createSlot(t, store, alice, 18, model.SlotStatusSwappable)
	early := createSlot(t, store, alice, 8, model.SlotStatusBusy)
	bobs := createSlot(t, store, bob, 12, model.SlotStatusSwappable)

	got, err := store.Slots().GetByID(ctx, early.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, early.Title, got.Title)
	assert.Equal(t, alice, got.OwnerID)
	assert.True(t, got.StartTime.Equal(early.StartTime))
	assert.True(t, got.EndTime.Equal(early.EndTime))
	assert.Equal(t, model.SlotStatusBusy, got.Status)

	missing, err := store.Slots().GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	owned, err := store.Slots().ListByOwner(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{early.ID, late.ID}, slotIDs(owned))

	market, err := store.Slots().ListSwappable(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{late.ID}, slotIDs(market))

	market, err = store.Slots().ListSwappable(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bobs.ID}, slotIDs(market))

	busy, err := store.Slots().ListByStatus(ctx, model.SlotStatusBusy)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{early.ID}, slotIDs(busy))
}

func testSlotGuardedWrites(t *testing.T, store repository.Store) {
	ctx := context.Background()
	slots := store.Slots()
	alice := createUser(t, store, 1)
	bob := createUser(t, store, 2)
	slot := createSlot(t, store, alice, 10, model.SlotStatusSwappable)

	ok, err := slots.UpdateStatus(ctx, slot.ID, model.SlotStatusBusy, model.SlotStatusSwappable)
	require.NoError(t, err)
	assert.False(t, ok, "guard on stale status must not match")

	ok, err = slots.UpdateStatus(ctx, uuid.New(), model.SlotStatusSwappable, model.SlotStatusBusy)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = slots.UpdateStatus(ctx, slot.ID, model.SlotStatusSwappable, model.SlotStatusSwapPending)
	require.NoError(t, err)
	assert.True(t, ok)

	// заблокированный слот нельзя редактировать и удалять
	edit := *slot
	edit.Title = "Новое"
	ok, err = slots.UpdateDetails(ctx, &edit)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = slots.Delete(ctx, slot.ID, alice)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = slots.TransferOwnership(ctx, slot.ID, bob, alice, model.SlotStatusSwapPending, model.SlotStatusBusy)
	require.NoError(t, err)
	assert.False(t, ok, "guard on stale owner must not match")

	ok, err = slots.TransferOwnership(ctx, slot.ID, alice, bob, model.SlotStatusSwapPending, model.SlotStatusBusy)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, bob, got.OwnerID)
	assert.Equal(t, model.SlotStatusBusy, got.Status)
	assert.False(t, got.UpdatedAt.Before(slot.UpdatedAt))

	// после обмена слот принадлежит bob
	edit.OwnerID = alice
	ok, err = slots.UpdateDetails(ctx, &edit)
	require.NoError(t, err)
	assert.False(t, ok)

	edit.OwnerID = bob
	edit.EndTime = edit.StartTime.Add(2 * time.Hour)
	ok, err = slots.UpdateDetails(ctx, &edit)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Новое", got.Title)
	assert.True(t, got.EndTime.Equal(edit.EndTime))

	ok, err = slots.Delete(ctx, slot.ID, alice)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = slots.Delete(ctx, slot.ID, bob)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func testSwapRequests(t *testing.T, store repository.Store) {
	ctx := context.Background()
	requests := store.SwapRequests()
	alice := createUser(t, store, 1)
	bob := createUser(t, store, 2)

	older := createRequest(t, store, bob, alice)
	time.Sleep(5 * time.Millisecond)
	newer := createRequest(t, store, bob, alice)
	time.Sleep(5 * time.Millisecond)
	reverse := createRequest(t, store, alice, bob)

	got, err := requests.GetByID(ctx, older.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, older.OfferedSlotID, got.OfferedSlotID)
	assert.Equal(t, older.RequestedSlotID, got.RequestedSlotID)
	assert.Equal(t, model.SwapStatusPending, got.Status)

	missing, err := requests.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	incoming, err := requests.ListIncoming(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{older.ID, newer.ID}, requestIDs(incoming))

	ok, err := requests.UpdateStatus(ctx, older.ID, model.SwapStatusPending, model.SwapStatusRejected)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = requests.UpdateStatus(ctx, older.ID, model.SwapStatusPending, model.SwapStatusAccepted)
	require.NoError(t, err)
	assert.False(t, ok, "resolved request must not be claimed twice")

	incoming, err = requests.ListIncoming(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{newer.ID}, requestIDs(incoming))

	outgoing, err := requests.ListOutgoing(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{newer.ID, older.ID}, requestIDs(outgoing))

	pending, err := requests.ListByStatus(ctx, model.SwapStatusPending)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{newer.ID, reverse.ID}, requestIDs(pending))

	for _, id := range []uuid.UUID{newer.OfferedSlotID, newer.RequestedSlotID, reverse.RequestedSlotID} {
		held, err := requests.ExistsPendingForSlot(ctx, id)
		require.NoError(t, err)
		assert.True(t, held, "slot %s", id)
	}
	for _, id := range []uuid.UUID{older.OfferedSlotID, uuid.New()} {
		held, err := requests.ExistsPendingForSlot(ctx, id)
		require.NoError(t, err)
		assert.False(t, held, "slot %s", id)
	}
}

func createUser(t *testing.T, store repository.Store, telegramID int64) int64 {
	t.Helper()
	user := &model.User{TelegramID: telegramID, Username: "user"}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user.ID
}

func createSlot(t *testing.T, store repository.Store, ownerID int64, hour int, status model.SlotStatus) *model.Slot {
	t.Helper()
	start := day.Add(time.Duration(hour) * time.Hour)
	slot := &model.Slot{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     "Слот",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    status,
	}
	require.NoError(t, store.Slots().Create(context.Background(), slot))
	return slot
}

func createRequest(t *testing.T, store repository.Store, requesterID, receiverID int64) *model.SwapRequest {
	t.Helper()
	req := &model.SwapRequest{
		ID:              uuid.New(),
		RequesterID:     requesterID,
		ReceiverID:      receiverID,
		OfferedSlotID:   uuid.New(),
		RequestedSlotID: uuid.New(),
		Status:          model.SwapStatusPending,
	}
	require.NoError(t, store.SwapRequests().Create(context.Background(), req))
	return req
}

func slotIDs(slots []*model.Slot) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(slots))
	for _, s := range slots {
		ids = append(ids, s.ID)
	}
	return ids
}

func requestIDs(reqs []*model.SwapRequest) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ID)
	}
	return ids
}
