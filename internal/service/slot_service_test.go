package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSlot(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		owner := f.register(t, 1001, "alice")
		start := testDay.Add(10 * time.Hour)

		slot, err := f.slots.CreateSlot(ctx, owner, "  Дежурство  ", start, start.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "Дежурство", slot.Title)
		assert.Equal(t, model.SlotStatusBusy, slot.Status)

		stored := f.slot(t, slot.ID)
		assert.True(t, stored.StartTime.Equal(start))
		assert.True(t, stored.EndTime.Equal(start.Add(time.Hour)))
		assert.Equal(t, owner, stored.OwnerID)

		_, err = f.slots.CreateSlot(ctx, owner, "Пусто", start, start)
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, err, model.ErrTimeRange)

		_, err = f.slots.CreateSlot(ctx, owner, "Назад", start, start.Add(-time.Hour))
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, err, model.ErrTimeRange)

		_, err = f.slots.CreateSlot(ctx, owner, "   ", start, start.Add(time.Hour))
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, err, ErrTitleRequired)
		assert.NotErrorIs(t, err, model.ErrTimeRange)

		_, err = f.slots.CreateSlot(ctx, owner, strings.Repeat("я", MaxTitleLength+1), start, start.Add(time.Hour))
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, err, ErrTitleTooLong)

		_, err = f.slots.CreateSlot(ctx, 0, "Аноним", start, start.Add(time.Hour))
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestListMySlotsOrderedByStart(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		owner := f.register(t, 1001, "alice")
		other := f.register(t, 1002, "bob")

		late := f.slotAt(t, owner, "Вечер", 18)
		early := f.slotAt(t, owner, "Утро", 8)
		f.slotAt(t, other, "Чужой", 12)

		slots, err := f.slots.ListMySlots(ctx, owner)
		require.NoError(t, err)
		require.Len(t, slots, 2)
		assert.Equal(t, early.ID, slots[0].ID)
		assert.Equal(t, late.ID, slots[1].ID)
	})
}

func TestSetSlotStatus(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		owner := f.register(t, 1001, "alice")
		other := f.register(t, 1002, "bob")
		slot := f.slotAt(t, owner, "Дежурство", 10)

		got, err := f.slots.SetSlotStatus(ctx, owner, slot.ID, model.SlotStatusSwappable)
		require.NoError(t, err)
		assert.Equal(t, model.SlotStatusSwappable, got.Status)

		// повторная установка того же статуса ничего не ломает
		got, err = f.slots.SetSlotStatus(ctx, owner, slot.ID, model.SlotStatusSwappable)
		require.NoError(t, err)
		assert.Equal(t, model.SlotStatusSwappable, got.Status)

		_, err = f.slots.SetSlotStatus(ctx, owner, slot.ID, model.SlotStatusSwapPending)
		assert.ErrorIs(t, err, ErrValidation)

		_, err = f.slots.SetSlotStatus(ctx, other, slot.ID, model.SlotStatusBusy)
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = f.slots.SetSlotStatus(ctx, owner, uuid.New(), model.SlotStatusBusy)
		assert.ErrorIs(t, err, ErrNotFound)

		offered := f.swappableAt(t, other, "Смена", 14)
		_, err = f.coordinator.ProposeSwap(ctx, other, offered.ID, slot.ID)
		require.NoError(t, err)

		for _, status := range []model.SlotStatus{model.SlotStatusBusy, model.SlotStatusSwappable} {
			_, err = f.slots.SetSlotStatus(ctx, owner, slot.ID, status)
			assert.ErrorIs(t, err, ErrConflict)
		}
		assert.Equal(t, model.SlotStatusSwapPending, f.slot(t, slot.ID).Status)
		f.assertLockInvariant(t)
	})
}

func TestUpdateSlot(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		owner := f.register(t, 1001, "alice")
		other := f.register(t, 1002, "bob")
		slot := f.slotAt(t, owner, "Дежурство", 10)

		title := "Ночное дежурство"
		updated, err := f.slots.UpdateSlot(ctx, owner, slot.ID, model.SlotPatch{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, title, updated.Title)
		assert.True(t, updated.StartTime.Equal(slot.StartTime))

		end := slot.StartTime.Add(3 * time.Hour)
		updated, err = f.slots.UpdateSlot(ctx, owner, slot.ID, model.SlotPatch{EndTime: &end})
		require.NoError(t, err)
		assert.True(t, f.slot(t, slot.ID).EndTime.Equal(end))
		assert.Equal(t, title, f.slot(t, slot.ID).Title)

		beforeStart := slot.StartTime.Add(-time.Hour)
		_, err = f.slots.UpdateSlot(ctx, owner, slot.ID, model.SlotPatch{EndTime: &beforeStart})
		assert.ErrorIs(t, err, ErrValidation)
		assert.True(t, f.slot(t, slot.ID).EndTime.Equal(end))

		empty := " "
		_, err = f.slots.UpdateSlot(ctx, owner, slot.ID, model.SlotPatch{Title: &empty})
		assert.ErrorIs(t, err, ErrValidation)

		_, err = f.slots.UpdateSlot(ctx, owner, slot.ID, model.SlotPatch{})
		assert.ErrorIs(t, err, ErrValidation)

		_, err = f.slots.UpdateSlot(ctx, other, slot.ID, model.SlotPatch{Title: &title})
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = f.slots.SetSlotStatus(ctx, owner, slot.ID, model.SlotStatusSwappable)
		require.NoError(t, err)
		offered := f.swappableAt(t, other, "Смена", 14)
		_, err = f.coordinator.ProposeSwap(ctx, other, offered.ID, slot.ID)
		require.NoError(t, err)

		locked := "Заблокирован"
		_, err = f.slots.UpdateSlot(ctx, owner, slot.ID, model.SlotPatch{Title: &locked})
		assert.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, title, f.slot(t, slot.ID).Title)
	})
}

func TestDeleteSlot(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		owner := f.register(t, 1001, "alice")
		other := f.register(t, 1002, "bob")
		slot := f.slotAt(t, owner, "Дежурство", 10)

		assert.ErrorIs(t, f.slots.DeleteSlot(ctx, other, slot.ID), ErrForbidden)
		assert.ErrorIs(t, f.slots.DeleteSlot(ctx, owner, uuid.New()), ErrNotFound)

		require.NoError(t, f.slots.DeleteSlot(ctx, owner, slot.ID))
		_, err := f.slots.GetSlot(ctx, owner, slot.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, f.slots.DeleteSlot(ctx, owner, slot.ID), ErrNotFound)
	})
}
