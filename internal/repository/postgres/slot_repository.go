package postgres

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const slotColumns = `id, owner_id, title, start_time, end_time, status, created_at, updated_at`

type SlotRepository struct {
	base
}

func NewSlotRepository(q querier) *SlotRepository {
	return &SlotRepository{base{q: q}}
}

// Create создаёт новый слот
func (r *SlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	query := `
		INSERT INTO slots (id, owner_id, title, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(
		ctx, query,
		slot.ID,
		slot.OwnerID,
		slot.Title,
		slot.StartTime,
		slot.EndTime,
		slot.Status,
	).Scan(&slot.CreatedAt, &slot.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`

	slot, err := scanSlot(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// ListByOwner получает все слоты владельца
func (r *SlotRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE owner_id = $1 ORDER BY start_time`

	slots, err := r.list(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list slots by owner: %w", err)
	}
	return slots, nil
}

// ListSwappable получает слоты, открытые для обмена, кроме слотов excludeOwnerID
func (r *SlotRepository) ListSwappable(ctx context.Context, excludeOwnerID int64) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE status = 'SWAPPABLE' AND owner_id <> $1
		ORDER BY start_time
	`

	slots, err := r.list(ctx, query, excludeOwnerID)
	if err != nil {
		return nil, fmt.Errorf("list swappable slots: %w", err)
	}
	return slots, nil
}

// ListByStatus получает все слоты в указанном статусе
func (r *SlotRepository) ListByStatus(ctx context.Context, status model.SlotStatus) ([]*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE status = $1 ORDER BY updated_at`

	slots, err := r.list(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("list slots by status: %w", err)
	}
	return slots, nil
}

// UpdateDetails обновляет название и время незаблокированного слота
func (r *SlotRepository) UpdateDetails(ctx context.Context, slot *model.Slot) (bool, error) {
	query := `
		UPDATE slots
		SET title = $1, start_time = $2, end_time = $3, updated_at = now()
		WHERE id = $4 AND owner_id = $5 AND status <> 'SWAP_PENDING'
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query, slot.Title, slot.StartTime, slot.EndTime, slot.ID, slot.OwnerID).
		Scan(&slot.UpdatedAt)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("update slot details: %w", err)
	}

	return true, nil
}

// UpdateStatus меняет статус, только если текущий статус равен from
func (r *SlotRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.SlotStatus) (bool, error) {
	query := `
		UPDATE slots
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
	`

	affected, err := r.execAffected(ctx, query, to, id, from)
	if err != nil {
		return false, fmt.Errorf("update slot status: %w", err)
	}

	return affected == 1, nil
}

// TransferOwnership меняет владельца и статус, только если оба совпадают с ожидаемыми
func (r *SlotRepository) TransferOwnership(ctx context.Context, id uuid.UUID, fromOwner, toOwner int64, from, to model.SlotStatus) (bool, error) {
	query := `
		UPDATE slots
		SET owner_id = $1, status = $2, updated_at = now()
		WHERE id = $3 AND owner_id = $4 AND status = $5
	`

	affected, err := r.execAffected(ctx, query, toOwner, to, id, fromOwner, from)
	if err != nil {
		return false, fmt.Errorf("transfer slot ownership: %w", err)
	}

	return affected == 1, nil
}

// Delete удаляет незаблокированный слот владельца
func (r *SlotRepository) Delete(ctx context.Context, id uuid.UUID, ownerID int64) (bool, error) {
	query := `DELETE FROM slots WHERE id = $1 AND owner_id = $2 AND status <> 'SWAP_PENDING'`

	affected, err := r.execAffected(ctx, query, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete slot: %w", err)
	}

	return affected == 1, nil
}

func (r *SlotRepository) list(ctx context.Context, query string, args ...any) ([]*model.Slot, error) {
	rows, err := r.q.Query(ctx, query, args...)
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

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}

	return slots, nil
}

func scanSlot(row pgx.Row) (*model.Slot, error) {
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
