package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/Freeeeeet/slot_swap_bot/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SwapCoordinator - единственный, кто блокирует и разблокирует слоты
// и меняет статус запросов на обмен
type SwapCoordinator struct {
	executor
}

func NewSwapCoordinator(store repository.Store, logger *zap.Logger) *SwapCoordinator {
	return &SwapCoordinator{executor{store: store, logger: logger}}
}

// ProposeSwap блокирует оба слота и создаёт PENDING запрос от requesterID
// владельцу requestedSlotID
func (c *SwapCoordinator) ProposeSwap(ctx context.Context, requesterID int64, offeredSlotID, requestedSlotID uuid.UUID) (*model.SwapRequest, error) {
	if err := requireCaller(requesterID); err != nil {
		return nil, err
	}

	var req *model.SwapRequest
	err := c.atomically(ctx, "propose swap", func(ctx context.Context, st repository.Store, j *journal) error {
		offered, err := st.Slots().GetByID(ctx, offeredSlotID)
		if err != nil {
			return storageErr("get offered slot", err)
		}
		requested, err := st.Slots().GetByID(ctx, requestedSlotID)
		if err != nil {
			return storageErr("get requested slot", err)
		}

		if offered == nil {
			return fmt.Errorf("%w: offered slot %s", ErrNotFound, offeredSlotID)
		}
		if requested == nil {
			return fmt.Errorf("%w: requested slot %s", ErrNotFound, requestedSlotID)
		}
		if offered.OwnerID != requesterID {
			return fmt.Errorf("%w: offered slot %s belongs to another user", ErrForbidden, offeredSlotID)
		}
		if requested.OwnerID == requesterID {
			return fmt.Errorf("%w: cannot swap with yourself", ErrInvalidOperation)
		}
		if err := checkSwappable("offered", offered); err != nil {
			return err
		}
		if err := checkSwappable("requested", requested); err != nil {
			return err
		}

		first, second := orderedPair(offered.ID, requested.ID)
		if err := moveSlot(ctx, st, j, first, model.SlotStatusSwappable, model.SlotStatusSwapPending); err != nil {
			return err
		}
		if err := moveSlot(ctx, st, j, second, model.SlotStatusSwappable, model.SlotStatusSwapPending); err != nil {
			return err
		}

		req = &model.SwapRequest{
			ID:              uuid.New(),
			RequesterID:     requesterID,
			ReceiverID:      requested.OwnerID,
			OfferedSlotID:   offered.ID,
			RequestedSlotID: requested.ID,
			Status:          model.SwapStatusPending,
		}
		if err := st.SwapRequests().Create(ctx, req); err != nil {
			return storageErr("create swap request", err)
		}
		return nil
	})
	if err != nil {
		c.logger.Info("Swap proposal refused",
			zap.Int64("requester_id", requesterID),
			zap.String("offered_slot_id", offeredSlotID.String()),
			zap.String("requested_slot_id", requestedSlotID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Info("Swap proposed",
		zap.String("request_id", req.ID.String()),
		zap.Int64("requester_id", req.RequesterID),
		zap.Int64("receiver_id", req.ReceiverID),
		zap.String("offered_slot_id", req.OfferedSlotID.String()),
		zap.String("requested_slot_id", req.RequestedSlotID.String()),
	)

	return req, nil
}

func checkSwappable(role string, slot *model.Slot) error {
	switch slot.Status {
	case model.SlotStatusSwappable:
		return nil
	case model.SlotStatusSwapPending:
		return fmt.Errorf("%w: %s slot %s is already locked by another swap", ErrConflict, role, slot.ID)
	default:
		return fmt.Errorf("%w: %s slot %s is not swappable", ErrConflict, role, slot.ID)
	}
}

// ResolveSwap принимает или отклоняет PENDING запрос от имени получателя.
// Если один из слотов исчез, запрос отклоняется автоматически, уцелевший слот
// разблокируется, и возвращается ErrConflict вместе с уже отклонённым запросом.
func (c *SwapCoordinator) ResolveSwap(ctx context.Context, receiverID int64, requestID uuid.UUID, accept bool) (*model.SwapRequest, error) {
	if err := requireCaller(receiverID); err != nil {
		return nil, err
	}

	var (
		req   *model.SwapRequest
		stale bool
	)
	err := c.atomically(ctx, "resolve swap", func(ctx context.Context, st repository.Store, j *journal) error {
		stale = false

		var err error
		req, err = st.SwapRequests().GetByID(ctx, requestID)
		if err != nil {
			return storageErr("get swap request", err)
		}
		if req == nil {
			return fmt.Errorf("%w: swap request %s", ErrNotFound, requestID)
		}
		if req.ReceiverID != receiverID {
			return fmt.Errorf("%w: swap request %s is addressed to another user", ErrForbidden, requestID)
		}
		if req.Status != model.SwapStatusPending {
			return fmt.Errorf("%w: swap request %s is already resolved", ErrConflict, requestID)
		}

		offered, err := st.Slots().GetByID(ctx, req.OfferedSlotID)
		if err != nil {
			return storageErr("get offered slot", err)
		}
		requested, err := st.Slots().GetByID(ctx, req.RequestedSlotID)
		if err != nil {
			return storageErr("get requested slot", err)
		}

		if offered == nil || requested == nil {
			stale = true
			return c.rejectStale(ctx, st, req, offered, requested)
		}

		if accept {
			return c.accept(ctx, st, j, req)
		}
		return c.reject(ctx, st, j, req)
	})
	if err != nil {
		c.logger.Info("Swap resolution refused",
			zap.String("request_id", requestID.String()),
			zap.Int64("receiver_id", receiverID),
			zap.Bool("accept", accept),
			zap.Error(err),
		)
		return nil, err
	}

	if stale {
		return req, fmt.Errorf("%w: stale request %s, auto-rejected", ErrConflict, requestID)
	}

	c.logger.Info("Swap resolved",
		zap.String("request_id", req.ID.String()),
		zap.Int64("requester_id", req.RequesterID),
		zap.Int64("receiver_id", req.ReceiverID),
		zap.String("status", string(req.Status)),
	)

	return req, nil
}

// accept: владельцы меняются местами, оба слота становятся BUSY
func (c *SwapCoordinator) accept(ctx context.Context, st repository.Store, j *journal, req *model.SwapRequest) error {
	if err := claimRequest(ctx, st, j, req.ID, model.SwapStatusAccepted); err != nil {
		return err
	}

	owners := map[uuid.UUID][2]int64{
		req.OfferedSlotID:   {req.RequesterID, req.ReceiverID},
		req.RequestedSlotID: {req.ReceiverID, req.RequesterID},
	}
	first, second := orderedPair(req.OfferedSlotID, req.RequestedSlotID)
	for _, id := range []uuid.UUID{first, second} {
		if err := transferSlot(ctx, st, j, id, owners[id][0], owners[id][1]); err != nil {
			return err
		}
	}

	req.Status = model.SwapStatusAccepted
	return nil
}

// reject: оба слота снова SWAPPABLE
func (c *SwapCoordinator) reject(ctx context.Context, st repository.Store, j *journal, req *model.SwapRequest) error {
	if err := claimRequest(ctx, st, j, req.ID, model.SwapStatusRejected); err != nil {
		return err
	}

	first, second := orderedPair(req.OfferedSlotID, req.RequestedSlotID)
	for _, id := range []uuid.UUID{first, second} {
		if err := moveSlot(ctx, st, j, id, model.SlotStatusSwapPending, model.SlotStatusSwappable); err != nil {
			return err
		}
	}

	req.Status = model.SwapStatusRejected
	return nil
}

// rejectStale отклоняет запрос, у которого пропал хотя бы один слот, и
// разблокирует уцелевшие. Отклонение запроса - точка фиксации: повторный вызов
// увидит REJECTED и не повторит восстановление. Сбой разблокировки не отменяет
// отклонение, осиротевший слот подберёт Reconciler.
func (c *SwapCoordinator) rejectStale(ctx context.Context, st repository.Store, req *model.SwapRequest, offered, requested *model.Slot) error {
	if err := claimRequest(ctx, st, nil, req.ID, model.SwapStatusRejected); err != nil {
		return err
	}
	req.Status = model.SwapStatusRejected

	for _, slot := range []*model.Slot{offered, requested} {
		if slot == nil {
			continue
		}
		ok, err := st.Slots().UpdateStatus(ctx, slot.ID, model.SlotStatusSwapPending, model.SlotStatusSwappable)
		if err != nil || !ok {
			c.logger.Warn("Failed to unlock surviving slot of stale request",
				zap.String("request_id", req.ID.String()),
				zap.String("slot_id", slot.ID.String()),
				zap.Bool("guard_matched", ok),
				zap.Error(err),
			)
		}
	}

	c.logger.Warn("Stale swap request auto-rejected",
		zap.String("request_id", req.ID.String()),
		zap.Bool("offered_slot_missing", offered == nil),
		zap.Bool("requested_slot_missing", requested == nil),
	)
	return nil
}

// GetRequest возвращает запрос участнику обмена
func (c *SwapCoordinator) GetRequest(ctx context.Context, callerID int64, requestID uuid.UUID) (*model.SwapRequest, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}

	req, err := c.store.SwapRequests().GetByID(ctx, requestID)
	if err != nil {
		return nil, storageErr("get swap request", err)
	}
	if req == nil {
		return nil, fmt.Errorf("%w: swap request %s", ErrNotFound, requestID)
	}
	if req.RequesterID != callerID && req.ReceiverID != callerID {
		return nil, fmt.Errorf("%w: swap request %s", ErrForbidden, requestID)
	}

	if err := c.populate(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ListIncoming возвращает ожидающие ответа запросы, адресованные userID
func (c *SwapCoordinator) ListIncoming(ctx context.Context, userID int64) ([]*model.SwapRequest, error) {
	if err := requireCaller(userID); err != nil {
		return nil, err
	}

	reqs, err := c.store.SwapRequests().ListIncoming(ctx, userID)
	if err != nil {
		return nil, storageErr("list incoming swap requests", err)
	}
	return reqs, c.populateAll(ctx, reqs)
}

// ListOutgoing возвращает все запросы, созданные userID, новые первыми
func (c *SwapCoordinator) ListOutgoing(ctx context.Context, userID int64) ([]*model.SwapRequest, error) {
	if err := requireCaller(userID); err != nil {
		return nil, err
	}

	reqs, err := c.store.SwapRequests().ListOutgoing(ctx, userID)
	if err != nil {
		return nil, storageErr("list outgoing swap requests", err)
	}
	return reqs, c.populateAll(ctx, reqs)
}

func (c *SwapCoordinator) populateAll(ctx context.Context, reqs []*model.SwapRequest) error {
	users := newUserCache(c.store.Users())
	for _, req := range reqs {
		if err := c.populateWith(ctx, req, users); err != nil {
			return err
		}
	}
	return nil
}

func (c *SwapCoordinator) populate(ctx context.Context, req *model.SwapRequest) error {
	return c.populateWith(ctx, req, newUserCache(c.store.Users()))
}

// populateWith заполняет слоты и участников для отображения. Удалённый слот остаётся nil.
func (c *SwapCoordinator) populateWith(ctx context.Context, req *model.SwapRequest, users *userCache) error {
	var err error
	if req.OfferedSlot, err = c.store.Slots().GetByID(ctx, req.OfferedSlotID); err != nil {
		return storageErr("get offered slot", err)
	}
	if req.RequestedSlot, err = c.store.Slots().GetByID(ctx, req.RequestedSlotID); err != nil {
		return storageErr("get requested slot", err)
	}
	if req.Requester, err = users.get(ctx, req.RequesterID); err != nil {
		return err
	}
	if req.Receiver, err = users.get(ctx, req.ReceiverID); err != nil {
		return err
	}
	return nil
}
