package service

import (
	"context"
	"errors"
	"time"

	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/Freeeeeet/slot_swap_bot/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReconcileReport - итог одного прохода Reconciler
type ReconcileReport struct {
	StaleRejected   int // запросы с пропавшим слотом, отклонённые автоматически
	OrphansReleased int // заблокированные слоты без PENDING запроса, возвращённые в SWAPPABLE
	Mismatches      int // PENDING запросы с незаблокированными слотами, оставлены как есть
}

// Reconciler находит и устраняет рассогласования между слотами и запросами,
// оставшиеся после сбоев компенсации или внеполосного удаления слотов
type Reconciler struct {
	coordinator *SwapCoordinator
	grace       time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

// MinReconcileGrace - нижняя граница grace. Между блокировкой слотов и записью
// запроса в хранилище без транзакций слоты выглядят как осиротевшие.
const MinReconcileGrace = time.Second

// NewReconciler создаёт Reconciler. Слот, заблокированный менее grace назад,
// не трогается: его запрос может ещё создаваться. grace меньше
// MinReconcileGrace поднимается до неё.
func NewReconciler(coordinator *SwapCoordinator, grace time.Duration, logger *zap.Logger) *Reconciler {
	if grace < MinReconcileGrace {
		logger.Warn("Reconcile grace too small, using minimum",
			zap.Duration("grace", grace),
			zap.Duration("minimum", MinReconcileGrace))
		grace = MinReconcileGrace
	}
	return &Reconciler{
		coordinator: coordinator,
		grace:       grace,
		now:         time.Now,
		logger:      logger,
	}
}

func (r *Reconciler) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	store := r.coordinator.store
	report := &ReconcileReport{}

	pending, err := store.SwapRequests().ListByStatus(ctx, model.SwapStatusPending)
	if err != nil {
		return nil, storageErr("list pending swap requests", err)
	}

	referenced := make(map[uuid.UUID]bool)
	for _, req := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		offered, err := store.Slots().GetByID(ctx, req.OfferedSlotID)
		if err != nil {
			return report, storageErr("get offered slot", err)
		}
		requested, err := store.Slots().GetByID(ctx, req.RequestedSlotID)
		if err != nil {
			return report, storageErr("get requested slot", err)
		}

		if offered == nil || requested == nil {
			rejected, err := r.rejectStale(ctx, req.ID)
			if err != nil {
				return report, err
			}
			if rejected {
				report.StaleRejected++
			}
			continue
		}

		referenced[offered.ID] = true
		referenced[requested.ID] = true

		if !offered.Status.Locked() || !requested.Status.Locked() {
			report.Mismatches++
			r.logger.Error("Pending swap request references unlocked slot, manual reconciliation required",
				zap.String("request_id", req.ID.String()),
				zap.String("offered_slot_id", offered.ID.String()),
				zap.String("offered_slot_status", string(offered.Status)),
				zap.String("requested_slot_id", requested.ID.String()),
				zap.String("requested_slot_status", string(requested.Status)),
			)
		}
	}

	locked, err := store.Slots().ListByStatus(ctx, model.SlotStatusSwapPending)
	if err != nil {
		return report, storageErr("list locked slots", err)
	}

	cutoff := r.now().Add(-r.grace)
	for _, slot := range locked {
		if referenced[slot.ID] || slot.UpdatedAt.After(cutoff) {
			continue
		}

		released, err := r.releaseOrphan(ctx, slot.ID, cutoff)
		if err != nil {
			return report, err
		}
		if !released {
			continue
		}

		report.OrphansReleased++
		r.logger.Warn("Orphan slot lock released",
			zap.String("slot_id", slot.ID.String()),
			zap.Int64("owner_id", slot.OwnerID),
			zap.Time("locked_since", slot.UpdatedAt),
		)
	}

	r.logger.Info("Reconcile finished",
		zap.Int("stale_rejected", report.StaleRejected),
		zap.Int("orphans_released", report.OrphansReleased),
		zap.Int("mismatches", report.Mismatches),
	)

	return report, nil
}

// releaseOrphan снимает блокировку, только если слот всё ещё заблокирован с
// момента до cutoff и на него не ссылается ни один PENDING запрос. Проверка и
// запись выполняются в одной атомарной операции: запрос мог появиться после
// того, как Reconcile прочитал список PENDING.
func (r *Reconciler) releaseOrphan(ctx context.Context, slotID uuid.UUID, cutoff time.Time) (bool, error) {
	var released bool

	err := r.coordinator.atomically(ctx, "release orphan slot", func(ctx context.Context, st repository.Store, j *journal) error {
		released = false

		slot, err := st.Slots().GetByID(ctx, slotID)
		if err != nil {
			return storageErr("get locked slot", err)
		}
		if slot == nil || slot.Status != model.SlotStatusSwapPending || slot.UpdatedAt.After(cutoff) {
			return nil
		}

		held, err := st.SwapRequests().ExistsPendingForSlot(ctx, slotID)
		if err != nil {
			return storageErr("check pending swap requests", err)
		}
		if held {
			return nil
		}

		if err := moveSlot(ctx, st, j, slotID, model.SlotStatusSwapPending, model.SlotStatusSwappable); err != nil {
			return err
		}
		released = true
		return nil
	})
	if errors.Is(err, ErrConflict) {
		// слот изменился параллельно
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return released, nil
}

// rejectStale перепроверяет запрос внутри атомарной операции и отклоняет его
// тем же путём, что и ResolveSwap
func (r *Reconciler) rejectStale(ctx context.Context, requestID uuid.UUID) (bool, error) {
	c := r.coordinator
	var rejected bool

	err := c.atomically(ctx, "reconcile stale request", func(ctx context.Context, st repository.Store, _ *journal) error {
		rejected = false

		req, err := st.SwapRequests().GetByID(ctx, requestID)
		if err != nil {
			return storageErr("get swap request", err)
		}
		if req == nil || req.Status != model.SwapStatusPending {
			return nil
		}

		offered, err := st.Slots().GetByID(ctx, req.OfferedSlotID)
		if err != nil {
			return storageErr("get offered slot", err)
		}
		requested, err := st.Slots().GetByID(ctx, req.RequestedSlotID)
		if err != nil {
			return storageErr("get requested slot", err)
		}
		if offered != nil && requested != nil {
			return nil
		}

		if err := c.rejectStale(ctx, st, req, offered, requested); err != nil {
			return err
		}
		rejected = true
		return nil
	})
	if errors.Is(err, ErrConflict) {
		// запрос успели разрешить параллельно
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return rejected, nil
}
