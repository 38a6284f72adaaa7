package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name  string
		from  SlotStatus
		to    SlotStatus
		actor Actor
		want  bool
	}{
		{"owner makes swappable", SlotStatusBusy, SlotStatusSwappable, ActorOwner, true},
		{"owner makes busy", SlotStatusSwappable, SlotStatusBusy, ActorOwner, true},
		{"owner keeps busy", SlotStatusBusy, SlotStatusBusy, ActorOwner, true},
		{"owner cannot lock", SlotStatusSwappable, SlotStatusSwapPending, ActorOwner, false},
		{"owner cannot unlock to busy", SlotStatusSwapPending, SlotStatusBusy, ActorOwner, false},
		{"owner cannot unlock to swappable", SlotStatusSwapPending, SlotStatusSwappable, ActorOwner, false},
		{"owner cannot touch locked", SlotStatusSwapPending, SlotStatusSwapPending, ActorOwner, false},
		{"coordinator locks swappable", SlotStatusSwappable, SlotStatusSwapPending, ActorCoordinator, true},
		{"coordinator cannot lock busy", SlotStatusBusy, SlotStatusSwapPending, ActorCoordinator, false},
		{"coordinator releases to busy", SlotStatusSwapPending, SlotStatusBusy, ActorCoordinator, true},
		{"coordinator releases to swappable", SlotStatusSwapPending, SlotStatusSwappable, ActorCoordinator, true},
		{"coordinator does not toggle", SlotStatusBusy, SlotStatusSwappable, ActorCoordinator, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to, tt.actor))
		})
	}
}

func TestParseStatuses(t *testing.T) {
	st, err := ParseSlotStatus("SWAP_PENDING")
	require.NoError(t, err)
	assert.True(t, st.Locked())

	_, err = ParseSlotStatus("swappable")
	assert.Error(t, err)

	sw, err := ParseSwapStatus("REJECTED")
	require.NoError(t, err)
	assert.True(t, sw.Terminal())
	assert.False(t, SwapStatusPending.Terminal())

	_, err = ParseSwapStatus("CANCELED")
	assert.Error(t, err)
}

func TestValidateTimes(t *testing.T) {
	start := time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateTimes(start, start.Add(time.Hour)))
	assert.ErrorIs(t, ValidateTimes(start, start), ErrTimeRange)
	assert.ErrorIs(t, ValidateTimes(start.Add(time.Hour), start), ErrTimeRange)
	assert.ErrorIs(t, ValidateTimes(time.Time{}, start), ErrTimeRange)
}

func TestSlotPatchApply(t *testing.T) {
	start := time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC)
	slot := Slot{Title: "Дежурство", StartTime: start, EndTime: start.Add(time.Hour)}

	assert.True(t, SlotPatch{}.Empty())

	title := "Смена"
	end := start.Add(2 * time.Hour)
	patched := SlotPatch{Title: &title, EndTime: &end}.Apply(slot)

	assert.Equal(t, "Смена", patched.Title)
	assert.Equal(t, start, patched.StartTime)
	assert.Equal(t, end, patched.EndTime)
	assert.Equal(t, "Дежурство", slot.Title)
}
