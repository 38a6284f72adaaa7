package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/google/uuid"
)

const slotColumns = `id, owner_id, title, start_time, end_time, status, created_at, updated_at`

type SlotRepository struct {
	q querier
}

func (r *SlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	ts := now()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO slots (id, owner_id, title, start_time, end_time, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		slot.ID, slot.OwnerID, slot.Title, slot.StartTime.UTC(), slot.EndTime.UTC(), slot.Status, ts, ts,
	)
	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	slot.CreatedAt, slot.UpdatedAt = ts, ts
	return nil
}

func (r *SlotRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+slotColumns+` FROM slots WHERE id = ?`, id)

	slot, err := scanSlot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}
	return slot, nil
}

func (r *SlotRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*model.Slot, error) {
	slots, err := r.list(ctx, `SELECT `+slotColumns+` FROM slots WHERE owner_id = ? ORDER BY start_time`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list slots by owner: %w", err)
	}
	return slots, nil
}

func (r *SlotRepository) ListSwappable(ctx context.Context, excludeOwnerID int64) ([]*model.Slot, error) {
	slots, err := r.list(ctx, `
		SELECT `+slotColumns+`
		FROM slots
		WHERE status = 'SWAPPABLE' AND owner_id <> ?
		ORDER BY start_time`, excludeOwnerID)
	if err != nil {
		return nil, fmt.Errorf("list swappable slots: %w", err)
	}
	return slots, nil
}

func (r *SlotRepository) ListByStatus(ctx context.Context, status model.SlotStatus) ([]*model.Slot, error) {
	slots, err := r.list(ctx, `SELECT `+slotColumns+` FROM slots WHERE status = ? ORDER BY updated_at`, status)
	if err != nil {
		return nil, fmt.Errorf("list slots by status: %w", err)
	}
	return slots, nil
}

func (r *SlotRepository) UpdateDetails(ctx context.Context, slot *model.Slot) (bool, error) {
	ts := now()
	res, err := r.q.ExecContext(ctx, `
		UPDATE slots
		SET title = ?, start_time = ?, end_time = ?, updated_at = ?
		WHERE id = ? AND owner_id = ? AND status <> 'SWAP_PENDING'`,
		slot.Title, slot.StartTime.UTC(), slot.EndTime.UTC(), ts, slot.ID, slot.OwnerID,
	)
	if err != nil {
		return false, fmt.Errorf("update slot details: %w", err)
	}

	ok, err := affectedOne(res)
	if err != nil {
		return false, fmt.Errorf("update slot details: %w", err)
	}
	if ok {
		slot.UpdatedAt = ts
	}
	return ok, nil
}

func (r *SlotRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.SlotStatus) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE slots SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, now(), id, from,
	)
	if err != nil {
		return false, fmt.Errorf("update slot status: %w", err)
	}

	ok, err := affectedOne(res)
	if err != nil {
		return false, fmt.Errorf("update slot status: %w", err)
	}
	return ok, nil
}

func (r *SlotRepository) TransferOwnership(ctx context.Context, id uuid.UUID, fromOwner, toOwner int64, from, to model.SlotStatus) (bool, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE slots
		SET owner_id = ?, status = ?, updated_at = ?
		WHERE id = ? AND owner_id = ? AND status = ?`,
		toOwner, to, now(), id, fromOwner, from,
	)
	if err != nil {
		return false, fmt.Errorf("transfer slot ownership: %w", err)
	}

	ok, err := affectedOne(res)
	if err != nil {
		return false, fmt.Errorf("transfer slot ownership: %w", err)
	}
	return ok, nil
}

func (r *SlotRepository) Delete(ctx context.Context, id uuid.UUID, ownerID int64) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM slots WHERE id = ? AND owner_id = ? AND status <> 'SWAP_PENDING'`,
		id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("delete slot: %w", err)
	}

	ok, err := affectedOne(res)
	if err != nil {
		return false, fmt.Errorf("delete slot: %w", err)
	}
	return ok, nil
}

func (r *SlotRepository) list(ctx context.Context, query string, args ...any) ([]*model.Slot, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSlot(row scanner) (*model.Slot, error) {
	var slot model.Slot
	err := row.Scan(
		&slot.ID,
		&slot.OwnerID,
		&slot.Title,
		&slot.StartTime,
		&slot.EndTime,
		&slot.Status,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}
