package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/Freeeeeet/slot_swap_bot/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxTitleLength - максимальная длина названия слота в символах
const MaxTitleLength = 200

// SlotService - прямые операции владельца со своими слотами.
// Блокировкой слотов занимается только SwapCoordinator.
type SlotService struct {
	slots  repository.SlotRepository
	logger *zap.Logger
}

func NewSlotService(store repository.Store, logger *zap.Logger) *SlotService {
	return &SlotService{
		slots:  store.Slots(),
		logger: logger,
	}
}

// CreateSlot создаёт новый слот в статусе BUSY
func (s *SlotService) CreateSlot(ctx context.Context, ownerID int64, title string, start, end time.Time) (*model.Slot, error) {
	if err := requireCaller(ownerID); err != nil {
		return nil, err
	}

	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}
	if err := model.ValidateTimes(start, end); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	slot := &model.Slot{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     title,
		StartTime: start,
		EndTime:   end,
		Status:    model.SlotStatusBusy,
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, storageErr("create slot", err)
	}

	s.logger.Info("Slot created",
		zap.String("slot_id", slot.ID.String()),
		zap.Int64("owner_id", ownerID),
		zap.Time("start_time", start),
		zap.Time("end_time", end),
	)

	return slot, nil
}

// ListMySlots возвращает слоты владельца по времени начала
func (s *SlotService) ListMySlots(ctx context.Context, ownerID int64) ([]*model.Slot, error) {
	if err := requireCaller(ownerID); err != nil {
		return nil, err
	}

	slots, err := s.slots.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storageErr("list slots by owner", err)
	}
	return slots, nil
}

// GetSlot возвращает слот его владельцу
func (s *SlotService) GetSlot(ctx context.Context, ownerID int64, slotID uuid.UUID) (*model.Slot, error) {
	if err := requireCaller(ownerID); err != nil {
		return nil, err
	}
	return s.loadOwned(ctx, ownerID, slotID)
}

// SetSlotStatus переключает BUSY <-> SWAPPABLE. Заблокированный слот не меняется.
func (s *SlotService) SetSlotStatus(ctx context.Context, ownerID int64, slotID uuid.UUID, status model.SlotStatus) (*model.Slot, error) {
	if err := requireCaller(ownerID); err != nil {
		return nil, err
	}
	if status != model.SlotStatusBusy && status != model.SlotStatusSwappable {
		return nil, fmt.Errorf("%w: owner cannot set status %q", ErrValidation, status)
	}

	slot, err := s.loadOwned(ctx, ownerID, slotID)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(slot.Status, status, model.ActorOwner) {
		return nil, fmt.Errorf("%w: slot %s is %s", ErrConflict, slotID, slot.Status)
	}
	if slot.Status == status {
		return slot, nil
	}

	ok, err := s.slots.UpdateStatus(ctx, slotID, slot.Status, status)
	if err != nil {
		return nil, storageErr("update slot status", err)
	}
	if !ok {
		return nil, s.classifyMiss(ctx, ownerID, slotID)
	}

	s.logger.Info("Slot status changed",
		zap.String("slot_id", slotID.String()),
		zap.Int64("owner_id", ownerID),
		zap.String("from", string(slot.Status)),
		zap.String("to", string(status)),
	)

	slot.Status = status
	return slot, nil
}

// UpdateSlot меняет название и время слота. nil-поле патча остаётся прежним.
func (s *SlotService) UpdateSlot(ctx context.Context, ownerID int64, slotID uuid.UUID, patch model.SlotPatch) (*model.Slot, error) {
	if err := requireCaller(ownerID); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	if patch.Title != nil {
		title, err := normalizeTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		patch.Title = &title
	}

	slot, err := s.loadOwned(ctx, ownerID, slotID)
	if err != nil {
		return nil, err
	}
	if slot.Status.Locked() {
		return nil, fmt.Errorf("%w: slot %s is locked by a pending swap", ErrConflict, slotID)
	}

	updated := patch.Apply(*slot)
	if err := model.ValidateTimes(updated.StartTime, updated.EndTime); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	ok, err := s.slots.UpdateDetails(ctx, &updated)
	if err != nil {
		return nil, storageErr("update slot details", err)
	}
	if !ok {
		return nil, s.classifyMiss(ctx, ownerID, slotID)
	}

	s.logger.Info("Slot updated",
		zap.String("slot_id", slotID.String()),
		zap.Int64("owner_id", ownerID),
	)

	return &updated, nil
}

// DeleteSlot удаляет слот, если он не участвует в обмене
func (s *SlotService) DeleteSlot(ctx context.Context, ownerID int64, slotID uuid.UUID) error {
	if err := requireCaller(ownerID); err != nil {
		return err
	}

	slot, err := s.loadOwned(ctx, ownerID, slotID)
	if err != nil {
		return err
	}
	if slot.Status.Locked() {
		return fmt.Errorf("%w: slot %s is locked by a pending swap", ErrConflict, slotID)
	}

	ok, err := s.slots.Delete(ctx, slotID, ownerID)
	if err != nil {
		return storageErr("delete slot", err)
	}
	if !ok {
		return s.classifyMiss(ctx, ownerID, slotID)
	}

	s.logger.Info("Slot deleted",
		zap.String("slot_id", slotID.String()),
		zap.Int64("owner_id", ownerID),
	)

	return nil
}

func (s *SlotService) loadOwned(ctx context.Context, ownerID int64, slotID uuid.UUID) (*model.Slot, error) {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, storageErr("get slot", err)
	}
	if slot == nil {
		return nil, fmt.Errorf("%w: slot %s", ErrNotFound, slotID)
	}
	if slot.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: slot %s belongs to another user", ErrForbidden, slotID)
	}
	return slot, nil
}

// classifyMiss объясняет, почему условная запись не совпала: слот успели
// удалить, обменять или заблокировать между чтением и записью
func (s *SlotService) classifyMiss(ctx context.Context, ownerID int64, slotID uuid.UUID) error {
	slot, err := s.loadOwned(ctx, ownerID, slotID)
	if err != nil {
		return err
	}
	if slot.Status.Locked() {
		return fmt.Errorf("%w: slot %s is locked by a pending swap", ErrConflict, slotID)
	}
	return fmt.Errorf("%w: slot %s was modified concurrently", ErrConflict, slotID)
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: %w", ErrValidation, ErrTitleRequired)
	}
	if len([]rune(title)) > MaxTitleLength {
		return "", fmt.Errorf("%w: %w: limit is %d characters", ErrValidation, ErrTitleTooLong, MaxTitleLength)
	}
	return title, nil
}
