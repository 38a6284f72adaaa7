// Package memory - хранилище в памяти процесса.
//
// Каждая операция атомарна по отдельной записи, многозаписных транзакций нет:
// Store намеренно не реализует repository.Transactor, и сервисы применяют
// к нему компенсирующие записи.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/Freeeeeet/slot_swap_bot/internal/repository"
	"github.com/google/uuid"
)

type Store struct {
	mu       sync.RWMutex
	slots    map[uuid.UUID]model.Slot
	requests map[uuid.UUID]model.SwapRequest
	users    map[int64]model.User
	nextUser int64
	now      func() time.Time
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		slots:    make(map[uuid.UUID]model.Slot),
		requests: make(map[uuid.UUID]model.SwapRequest),
		users:    make(map[int64]model.User),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Slots() repository.SlotRepository               { return (*slotRepo)(s) }
func (s *Store) SwapRequests() repository.SwapRequestRepository { return (*requestRepo)(s) }
func (s *Store) Users() repository.UserRepository               { return (*userRepo)(s) }

// ForceDeleteSlot удаляет слот без проверок статуса (внеполосное удаление)
func (s *Store) ForceDeleteSlot(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, id)
}

// ===== Slots =====

type slotRepo Store

func (r *slotRepo) Create(_ context.Context, slot *model.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.slots[slot.ID]; exists {
		return fmt.Errorf("create slot: duplicate id %s", slot.ID)
	}
	ts := r.now()
	slot.CreatedAt, slot.UpdatedAt = ts, ts
	r.slots[slot.ID] = *slot
	return nil
}

func (r *slotRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slot, ok := r.slots[id]
	if !ok {
		return nil, nil
	}
	return &slot, nil
}

func (r *slotRepo) ListByOwner(_ context.Context, ownerID int64) ([]*model.Slot, error) {
	return r.filter(func(s model.Slot) bool { return s.OwnerID == ownerID }, byStart), nil
}

func (r *slotRepo) ListSwappable(_ context.Context, excludeOwnerID int64) ([]*model.Slot, error) {
	return r.filter(func(s model.Slot) bool {
		return s.Status == model.SlotStatusSwappable && s.OwnerID != excludeOwnerID
	}, byStart), nil
}

func (r *slotRepo) ListByStatus(_ context.Context, status model.SlotStatus) ([]*model.Slot, error) {
	return r.filter(func(s model.Slot) bool { return s.Status == status }, byUpdated), nil
}

func (r *slotRepo) UpdateDetails(_ context.Context, slot *model.Slot) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.slots[slot.ID]
	if !ok || cur.OwnerID != slot.OwnerID || cur.Status.Locked() {
		return false, nil
	}
	cur.Title, cur.StartTime, cur.EndTime = slot.Title, slot.StartTime, slot.EndTime
	cur.UpdatedAt = r.now()
	r.slots[slot.ID] = cur
	slot.UpdatedAt = cur.UpdatedAt
	return true, nil
}

func (r *slotRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to model.SlotStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.slots[id]
	if !ok || cur.Status != from {
		return false, nil
	}
	cur.Status = to
	cur.UpdatedAt = r.now()
	r.slots[id] = cur
	return true, nil
}

func (r *slotRepo) TransferOwnership(_ context.Context, id uuid.UUID, fromOwner, toOwner int64, from, to model.SlotStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.slots[id]
	if !ok || cur.OwnerID != fromOwner || cur.Status != from {
		return false, nil
	}
	cur.OwnerID, cur.Status = toOwner, to
	cur.UpdatedAt = r.now()
	r.slots[id] = cur
	return true, nil
}

func (r *slotRepo) Delete(_ context.Context, id uuid.UUID, ownerID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.slots[id]
	if !ok || cur.OwnerID != ownerID || cur.Status.Locked() {
		return false, nil
	}
	delete(r.slots, id)
	return true, nil
}

func (r *slotRepo) filter(keep func(model.Slot) bool, less func(a, b *model.Slot) bool) []*model.Slot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.Slot
	for _, s := range r.slots {
		if keep(s) {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byStart(a, b *model.Slot) bool   { return a.StartTime.Before(b.StartTime) }
func byUpdated(a, b *model.Slot) bool { return a.UpdatedAt.Before(b.UpdatedAt) }

// ===== Swap requests =====

type requestRepo Store

func (r *requestRepo) Create(_ context.Context, req *model.SwapRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.requests[req.ID]; exists {
		return fmt.Errorf("create swap request: duplicate id %s", req.ID)
	}
	ts := r.now()
	req.CreatedAt, req.UpdatedAt = ts, ts
	r.requests[req.ID] = *req
	return nil
}

func (r *requestRepo) GetByID(_ context.Context, id uuid.UUID) (*model.SwapRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	return &req, nil
}

func (r *requestRepo) ListIncoming(_ context.Context, receiverID int64) ([]*model.SwapRequest, error) {
	return r.filter(func(q model.SwapRequest) bool {
		return q.ReceiverID == receiverID && q.Status == model.SwapStatusPending
	}, false), nil
}

func (r *requestRepo) ListOutgoing(_ context.Context, requesterID int64) ([]*model.SwapRequest, error) {
	return r.filter(func(q model.SwapRequest) bool { return q.RequesterID == requesterID }, true), nil
}

func (r *requestRepo) ListByStatus(_ context.Context, status model.SwapStatus) ([]*model.SwapRequest, error) {
	return r.filter(func(q model.SwapRequest) bool { return q.Status == status }, false), nil
}

func (r *requestRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to model.SwapStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.requests[id]
	if !ok || cur.Status != from {
		return false, nil
	}
	cur.Status = to
	cur.UpdatedAt = r.now()
	r.requests[id] = cur
	return true, nil
}

func (r *requestRepo) ExistsPendingForSlot(_ context.Context, slotID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, q := range r.requests {
		if q.Status == model.SwapStatusPending && (q.OfferedSlotID == slotID || q.RequestedSlotID == slotID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *requestRepo) filter(keep func(model.SwapRequest) bool, newestFirst bool) []*model.SwapRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.SwapRequest
	for _, q := range r.requests {
		if keep(q) {
			q := q
			out = append(out, &q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// ===== Users =====

type userRepo Store

func (r *userRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.TelegramID == user.TelegramID {
			return fmt.Errorf("create user: telegram id %d already registered", user.TelegramID)
		}
	}
	r.nextUser++
	user.ID = r.nextUser
	user.CreatedAt = r.now()
	r.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.TelegramID == telegramID {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepo) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("user not found")
	}
	r.users[user.ID] = *user
	return nil
}
