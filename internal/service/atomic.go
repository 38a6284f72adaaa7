package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/Freeeeeet/slot_swap_bot/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// unitOfWork - последовательность условных записей, которая должна примениться целиком.
// Каждая успешная запись регистрирует обратную в журнале.
type unitOfWork func(ctx context.Context, st repository.Store, j *journal) error

// executor выполняет unitOfWork транзакцией, если хранилище это умеет,
// иначе - напрямую с откатом по журналу компенсаций
type executor struct {
	store  repository.Store
	logger *zap.Logger
}

func (e *executor) atomically(ctx context.Context, op string, work unitOfWork) error {
	if tx, ok := e.store.(repository.Transactor); ok {
		err := tx.WithinTx(ctx, func(ctx context.Context, txStore repository.Store) error {
			// Откат транзакции заменяет компенсации, журнал не нужен
			return work(ctx, txStore, nil)
		})
		if errors.Is(err, repository.ErrSerialization) {
			return fmt.Errorf("%w: %s: %v", ErrConflict, op, err)
		}
		if err != nil && !classified(err) {
			// сбой начала или коммита транзакции
			return storageErr(op, err)
		}
		return err
	}

	j := &journal{}
	err := work(ctx, e.store, j)
	if err == nil {
		return nil
	}

	if cerr := j.compensate(ctx, e.store, e.logger.With(zap.String("operation", op))); cerr != nil {
		return fmt.Errorf("%w: %s: %w (compensation failed: %v)", ErrUnavailable, op, err, cerr)
	}
	return err
}

// journal хранит обратные записи для хранилищ без транзакций. nil-журнал ничего не записывает.
type journal struct {
	steps []undoStep
}

type undoStep struct {
	what string
	fn   func(ctx context.Context, st repository.Store) (bool, error)
}

func (j *journal) record(what string, fn func(ctx context.Context, st repository.Store) (bool, error)) {
	if j == nil {
		return
	}
	j.steps = append(j.steps, undoStep{what: what, fn: fn})
}

// compensate применяет обратные записи в порядке LIFO.
// Выполняется даже при отменённом контексте запроса.
func (j *journal) compensate(ctx context.Context, st repository.Store, logger *zap.Logger) error {
	ctx = context.WithoutCancel(ctx)

	var failed []string
	for i := len(j.steps) - 1; i >= 0; i-- {
		step := j.steps[i]
		ok, err := step.fn(ctx, st)
		if err != nil || !ok {
			logger.Error("Compensation failed, manual reconciliation required",
				zap.String("step", step.what),
				zap.Bool("guard_matched", ok),
				zap.Error(err),
			)
			failed = append(failed, step.what)
			continue
		}
		logger.Warn("Compensation applied", zap.String("step", step.what))
	}
	j.steps = nil

	if len(failed) > 0 {
		return fmt.Errorf("%d compensation step(s) failed: %v", len(failed), failed)
	}
	return nil
}

// ===== Условные записи, общие для путей создания, разрешения и восстановления =====

// classified - ошибка уже относится к одному из классов операций
func classified(err error) bool {
	for _, class := range []error{
		ErrValidation, ErrNotFound, ErrForbidden, ErrInvalidOperation,
		ErrConflict, ErrUnauthorized, ErrUnavailable,
	} {
		if errors.Is(err, class) {
			return true
		}
	}
	return false
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

// moveSlot переводит слот from -> to и регистрирует обратный переход
func moveSlot(ctx context.Context, st repository.Store, j *journal, id uuid.UUID, from, to model.SlotStatus) error {
	ok, err := st.Slots().UpdateStatus(ctx, id, from, to)
	if err != nil {
		return storageErr("update slot status", err)
	}
	if !ok {
		return fmt.Errorf("%w: slot %s is no longer %s", ErrConflict, id, from)
	}

	j.record(fmt.Sprintf("slot %s %s->%s", id, to, from), func(ctx context.Context, st repository.Store) (bool, error) {
		return st.Slots().UpdateStatus(ctx, id, to, from)
	})
	return nil
}

// transferSlot меняет владельца заблокированного слота и снимает блокировку
func transferSlot(ctx context.Context, st repository.Store, j *journal, id uuid.UUID, fromOwner, toOwner int64) error {
	ok, err := st.Slots().TransferOwnership(ctx, id, fromOwner, toOwner, model.SlotStatusSwapPending, model.SlotStatusBusy)
	if err != nil {
		return storageErr("transfer slot ownership", err)
	}
	if !ok {
		return fmt.Errorf("%w: slot %s changed while swap was pending", ErrConflict, id)
	}

	j.record(fmt.Sprintf("slot %s owner %d->%d", id, toOwner, fromOwner), func(ctx context.Context, st repository.Store) (bool, error) {
		return st.Slots().TransferOwnership(ctx, id, toOwner, fromOwner, model.SlotStatusBusy, model.SlotStatusSwapPending)
	})
	return nil
}

// claimRequest - точка сериализации разрешения: только один вызов переводит запрос из PENDING
func claimRequest(ctx context.Context, st repository.Store, j *journal, id uuid.UUID, to model.SwapStatus) error {
	ok, err := st.SwapRequests().UpdateStatus(ctx, id, model.SwapStatusPending, to)
	if err != nil {
		return storageErr("update swap request status", err)
	}
	if !ok {
		return fmt.Errorf("%w: swap request %s is already resolved", ErrConflict, id)
	}

	j.record(fmt.Sprintf("swap request %s %s->%s", id, to, model.SwapStatusPending), func(ctx context.Context, st repository.Store) (bool, error) {
		return st.SwapRequests().UpdateStatus(ctx, id, to, model.SwapStatusPending)
	})
	return nil
}

// orderedPair возвращает идентификаторы по возрастанию, чтобы блокировки брались в одном порядке
func orderedPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() > b.String() {
		return b, a
	}
	return a, b
}
