package app

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/Freeeeeet/slot_swap_bot/internal/repository/memory"
	"github.com/Freeeeeet/slot_swap_bot/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSchedulerReleasesOrphans(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	start := time.Date(2030, 1, 15, 10, 0, 0, 0, time.UTC)

	slot := &model.Slot{
		ID:        uuid.New(),
		OwnerID:   1,
		Title:     "Сирота",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    model.SlotStatusSwapPending,
	}
	require.NoError(t, store.Slots().Create(ctx, slot))

	logger := zap.NewNop()
	reconciler := service.NewReconciler(service.NewSwapCoordinator(store, logger), service.MinReconcileGrace, logger)
	scheduler := NewScheduler(reconciler, 50*time.Millisecond, logger)

	scheduler.Start(ctx)
	defer scheduler.Stop()

	assert.Eventually(t, func() bool {
		got, err := store.Slots().GetByID(ctx, slot.ID)
		return err == nil && got != nil && got.Status == model.SlotStatusSwappable
	}, 5*time.Second, 50*time.Millisecond)
}

func TestSchedulerDisabled(t *testing.T) {
	logger := zap.NewNop()
	reconciler := service.NewReconciler(service.NewSwapCoordinator(memory.NewStore(), logger), 0, logger)
	scheduler := NewScheduler(reconciler, 0, logger)

	scheduler.Start(context.Background())

	stopped := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on disabled scheduler")
	}
}
