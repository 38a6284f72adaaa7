package postgres

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const swapRequestColumns = `id, requester_id, receiver_id, offered_slot_id, requested_slot_id, status, created_at, updated_at`

type SwapRequestRepository struct {
	base
}

func NewSwapRequestRepository(q querier) *SwapRequestRepository {
	return &SwapRequestRepository{base{q: q}}
}

// Create сохраняет новый запрос на обмен
func (r *SwapRequestRepository) Create(ctx context.Context, req *model.SwapRequest) error {
	query := `
		INSERT INTO swap_requests (id, requester_id, receiver_id, offered_slot_id, requested_slot_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(
		ctx, query,
		req.ID,
		req.RequesterID,
		req.ReceiverID,
		req.OfferedSlotID,
		req.RequestedSlotID,
		req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create swap request: %w", err)
	}

	return nil
}

// GetByID получает запрос по ID
func (r *SwapRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SwapRequest, error) {
	query := `SELECT ` + swapRequestColumns + ` FROM swap_requests WHERE id = $1`

	req, err := scanSwapRequest(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get swap request by id: %w", err)
	}

	return req, nil
}

// ListIncoming получает ожидающие ответа запросы получателя
func (r *SwapRequestRepository) ListIncoming(ctx context.Context, receiverID int64) ([]*model.SwapRequest, error) {
	query := `
		SELECT ` + swapRequestColumns + `
		FROM swap_requests
		WHERE receiver_id = $1 AND status = 'PENDING'
		ORDER BY created_at ASC
	`

	reqs, err := r.list(ctx, query, receiverID)
	if err != nil {
		return nil, fmt.Errorf("list incoming swap requests: %w", err)
	}
	return reqs, nil
}

// ListOutgoing получает все запросы инициатора
func (r *SwapRequestRepository) ListOutgoing(ctx context.Context, requesterID int64) ([]*model.SwapRequest, error) {
	query := `
		SELECT ` + swapRequestColumns + `
		FROM swap_requests
		WHERE requester_id = $1
		ORDER BY created_at DESC
	`

	reqs, err := r.list(ctx, query, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list outgoing swap requests: %w", err)
	}
	return reqs, nil
}

// ListByStatus получает все запросы в указанном статусе
func (r *SwapRequestRepository) ListByStatus(ctx context.Context, status model.SwapStatus) ([]*model.SwapRequest, error) {
	query := `SELECT ` + swapRequestColumns + ` FROM swap_requests WHERE status = $1 ORDER BY created_at`

	reqs, err := r.list(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("list swap requests by status: %w", err)
	}
	return reqs, nil
}

// UpdateStatus меняет статус запроса, только если текущий статус равен from
func (r *SwapRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.SwapStatus) (bool, error) {
	query := `
		UPDATE swap_requests
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
	`

	affected, err := r.execAffected(ctx, query, to, id, from)
	if err != nil {
		return false, fmt.Errorf("update swap request status: %w", err)
	}

	return affected == 1, nil
}

// ExistsPendingForSlot проверяет, держит ли слот какой-либо PENDING запрос
func (r *SwapRequestRepository) ExistsPendingForSlot(ctx context.Context, slotID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM swap_requests
			WHERE status = 'PENDING' AND (offered_slot_id = $1 OR requested_slot_id = $1)
		)
	`

	var exists bool
	if err := r.q.QueryRow(ctx, query, slotID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check pending swap requests for slot: %w", err)
	}
	return exists, nil
}

func (r *SwapRequestRepository) list(ctx context.Context, query string, args ...any) ([]*model.SwapRequest, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []*model.SwapRequest
	for rows.Next() {
		req, err := scanSwapRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan swap request: %w", err)
		}
		reqs = append(reqs, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swap requests: %w", err)
	}

	return reqs, nil
}

func scanSwapRequest(row pgx.Row) (*model.SwapRequest, error) {
	var req model.SwapRequest
	err := row.Scan(
		&req.ID,
		&req.RequesterID,
		&req.ReceiverID,
		&req.OfferedSlotID,
		&req.RequestedSlotID,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}
