package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/Freeeeeet/slot_swap_bot/internal/repository"
	"github.com/Freeeeeet/slot_swap_bot/internal/repository/memory"
	"github.com/Freeeeeet/slot_swap_bot/internal/repository/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testDay = time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC)

type fixture struct {
	store       repository.Store
	users       *UserService
	slots       *SlotService
	market      *Marketplace
	coordinator *SwapCoordinator
	reconciler  *Reconciler

	// forceDelete удаляет слот в обход SlotService (внеполосное удаление)
	forceDelete func(t *testing.T, id uuid.UUID)
}

type backend struct {
	name string
	open func(t *testing.T) (repository.Store, func(t *testing.T, id uuid.UUID))
}

var backends = []backend{
	{
		name: "memory",
		open: func(t *testing.T) (repository.Store, func(t *testing.T, id uuid.UUID)) {
			store := memory.NewStore()
			return store, func(t *testing.T, id uuid.UUID) { store.ForceDeleteSlot(id) }
		},
	},
	{
		name: "sqlite",
		open: func(t *testing.T) (repository.Store, func(t *testing.T, id uuid.UUID)) {
			store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "swap.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })

			return store, func(t *testing.T, id uuid.UUID) {
				_, err := store.DB().ExecContext(context.Background(), `DELETE FROM slots WHERE id = ?`, id)
				require.NoError(t, err)
			}
		},
	},
}

// forEachBackend прогоняет сценарий на каждом хранилище
func forEachBackend(t *testing.T, fn func(t *testing.T, f *fixture)) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			store, forceDelete := b.open(t)
			fn(t, newFixture(store, zap.NewNop(), forceDelete))
		})
	}
}

func newFixture(store repository.Store, logger *zap.Logger, forceDelete func(t *testing.T, id uuid.UUID)) *fixture {
	coordinator := NewSwapCoordinator(store, logger)
	return &fixture{
		store:       store,
		users:       NewUserService(store, logger),
		slots:       NewSlotService(store, logger),
		market:      NewMarketplace(store, logger),
		coordinator: coordinator,
		reconciler:  NewReconciler(coordinator, 2*time.Minute, logger),
		forceDelete: forceDelete,
	}
}

func (f *fixture) register(t *testing.T, telegramID int64, username string) int64 {
	t.Helper()
	user, err := f.users.RegisterUser(context.Background(), telegramID, username, username, "", "ru")
	require.NoError(t, err)
	return user.ID
}

// slotAt создаёт часовой слот, начинающийся в hour часов тестового дня
func (f *fixture) slotAt(t *testing.T, ownerID int64, title string, hour int) *model.Slot {
	t.Helper()
	start := testDay.Add(time.Duration(hour) * time.Hour)
	slot, err := f.slots.CreateSlot(context.Background(), ownerID, title, start, start.Add(time.Hour))
	require.NoError(t, err)
	return slot
}

func (f *fixture) swappableAt(t *testing.T, ownerID int64, title string, hour int) *model.Slot {
	t.Helper()
	slot := f.slotAt(t, ownerID, title, hour)
	slot, err := f.slots.SetSlotStatus(context.Background(), ownerID, slot.ID, model.SlotStatusSwappable)
	require.NoError(t, err)
	return slot
}

func (f *fixture) slot(t *testing.T, id uuid.UUID) *model.Slot {
	t.Helper()
	slot, err := f.store.Slots().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, slot, "slot %s", id)
	return slot
}

func (f *fixture) request(t *testing.T, id uuid.UUID) *model.SwapRequest {
	t.Helper()
	req, err := f.store.SwapRequests().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, req, "swap request %s", id)
	return req
}

// assertLockInvariant: слот в SWAP_PENDING тогда и только тогда, когда на него
// ссылается ровно один PENDING запрос
func (f *fixture) assertLockInvariant(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	locked, err := f.store.Slots().ListByStatus(ctx, model.SlotStatusSwapPending)
	require.NoError(t, err)
	pending, err := f.store.SwapRequests().ListByStatus(ctx, model.SwapStatusPending)
	require.NoError(t, err)

	refs := make(map[uuid.UUID]int)
	for _, req := range pending {
		assert.NotEqual(t, req.RequesterID, req.ReceiverID)
		refs[req.OfferedSlotID]++
		refs[req.RequestedSlotID]++
	}

	lockedIDs := make(map[uuid.UUID]bool)
	for _, slot := range locked {
		lockedIDs[slot.ID] = true
		assert.Equal(t, 1, refs[slot.ID], "locked slot %s must be referenced by exactly one pending request", slot.ID)
	}
	for id := range refs {
		assert.True(t, lockedIDs[id], "slot %s referenced by a pending request must be locked", id)
	}
}

var errInjected = errors.New("injected storage failure")

// faultyStore - хранилище в памяти с управляемыми сбоями записей
type faultyStore struct {
	*memory.Store

	failRequestCreate bool
	failTransferAt    int // номер вызова TransferOwnership, который упадёт; 0 - никогда
	failUnlock        bool
	transfers         int
}

func (s *faultyStore) Slots() repository.SlotRepository {
	return &faultySlots{SlotRepository: s.Store.Slots(), s: s}
}

func (s *faultyStore) SwapRequests() repository.SwapRequestRepository {
	return &faultyRequests{SwapRequestRepository: s.Store.SwapRequests(), s: s}
}

type faultySlots struct {
	repository.SlotRepository
	s *faultyStore
}

func (r *faultySlots) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.SlotStatus) (bool, error) {
	if r.s.failUnlock && from == model.SlotStatusSwapPending && to == model.SlotStatusSwappable {
		return false, errInjected
	}
	return r.SlotRepository.UpdateStatus(ctx, id, from, to)
}

func (r *faultySlots) TransferOwnership(ctx context.Context, id uuid.UUID, fromOwner, toOwner int64, from, to model.SlotStatus) (bool, error) {
	r.s.transfers++
	if r.s.transfers == r.s.failTransferAt {
		return false, errInjected
	}
	return r.SlotRepository.TransferOwnership(ctx, id, fromOwner, toOwner, from, to)
}

type faultyRequests struct {
	repository.SwapRequestRepository
	s *faultyStore
}

func (r *faultyRequests) Create(ctx context.Context, req *model.SwapRequest) error {
	if r.s.failRequestCreate {
		return errInjected
	}
	return r.SwapRequestRepository.Create(ctx, req)
}
