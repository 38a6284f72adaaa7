package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/google/uuid"
)

const swapRequestColumns = `id, requester_id, receiver_id, offered_slot_id, requested_slot_id, status, created_at, updated_at`

type SwapRequestRepository struct {
	q querier
}

func (r *SwapRequestRepository) Create(ctx context.Context, req *model.SwapRequest) error {
	ts := now()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO swap_requests (id, requester_id, receiver_id, offered_slot_id, requested_slot_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.RequesterID, req.ReceiverID, req.OfferedSlotID, req.RequestedSlotID, req.Status, ts, ts,
	)
	if err != nil {
		return fmt.Errorf("create swap request: %w", err)
	}

	req.CreatedAt, req.UpdatedAt = ts, ts
	return nil
}

func (r *SwapRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SwapRequest, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+swapRequestColumns+` FROM swap_requests WHERE id = ?`, id)

	req, err := scanSwapRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get swap request by id: %w", err)
	}
	return req, nil
}

func (r *SwapRequestRepository) ListIncoming(ctx context.Context, receiverID int64) ([]*model.SwapRequest, error) {
	reqs, err := r.list(ctx, `
		SELECT `+swapRequestColumns+`
		FROM swap_requests
		WHERE receiver_id = ? AND status = 'PENDING'
		ORDER BY created_at ASC`, receiverID)
	if err != nil {
		return nil, fmt.Errorf("list incoming swap requests: %w", err)
	}
	return reqs, nil
}

func (r *SwapRequestRepository) ListOutgoing(ctx context.Context, requesterID int64) ([]*model.SwapRequest, error) {
	reqs, err := r.list(ctx, `
		SELECT `+swapRequestColumns+`
		FROM swap_requests
		WHERE requester_id = ?
		ORDER BY created_at DESC`, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list outgoing swap requests: %w", err)
	}
	return reqs, nil
}

func (r *SwapRequestRepository) ListByStatus(ctx context.Context, status model.SwapStatus) ([]*model.SwapRequest, error) {
	reqs, err := r.list(ctx, `SELECT `+swapRequestColumns+` FROM swap_requests WHERE status = ? ORDER BY created_at`, status)
	if err != nil {
		return nil, fmt.Errorf("list swap requests by status: %w", err)
	}
	return reqs, nil
}

func (r *SwapRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.SwapStatus) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE swap_requests SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, now(), id, from,
	)
	if err != nil {
		return false, fmt.Errorf("update swap request status: %w", err)
	}

	ok, err := affectedOne(res)
	if err != nil {
		return false, fmt.Errorf("update swap request status: %w", err)
	}
	return ok, nil
}

func (r *SwapRequestRepository) ExistsPendingForSlot(ctx context.Context, slotID uuid.UUID) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM swap_requests WHERE status = 'PENDING' AND (offered_slot_id = ? OR requested_slot_id = ?))`,
		slotID, slotID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check pending swap requests for slot: %w", err)
	}
	return exists, nil
}

func (r *SwapRequestRepository) list(ctx context.Context, query string, args ...any) ([]*model.SwapRequest, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
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
	return reqs, rows.Err()
}

func scanSwapRequest(row scanner) (*model.SwapRequest, error) {
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
