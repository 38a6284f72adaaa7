package repository

import (
	"context"
	"errors"

	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/google/uuid"
)

// ErrSerialization - транзакция прервана конкурентным изменением и повторы исчерпаны
var ErrSerialization = errors.New("transaction aborted by concurrent update")

// Контракты хранилища. Одиночные чтения возвращают (nil, nil), если записи нет.
// Условные записи возвращают (false, nil), если условие не выполнилось.

type SlotRepository interface {
	Create(ctx context.Context, slot *model.Slot) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Slot, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*model.Slot, error)
	// ListSwappable возвращает SWAPPABLE слоты всех владельцев, кроме excludeOwnerID
	ListSwappable(ctx context.Context, excludeOwnerID int64) ([]*model.Slot, error)
	ListByStatus(ctx context.Context, status model.SlotStatus) ([]*model.Slot, error)

	// UpdateDetails меняет название и время, если слот принадлежит slot.OwnerID и не заблокирован
	UpdateDetails(ctx context.Context, slot *model.Slot) (bool, error)
	// UpdateStatus - compare-and-set статуса
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.SlotStatus) (bool, error)
	// TransferOwnership - compare-and-set владельца и статуса одновременно
	TransferOwnership(ctx context.Context, id uuid.UUID, fromOwner, toOwner int64, from, to model.SlotStatus) (bool, error)
	// Delete удаляет слот владельца, если он не заблокирован
	Delete(ctx context.Context, id uuid.UUID, ownerID int64) (bool, error)
}

type SwapRequestRepository interface {
	Create(ctx context.Context, req *model.SwapRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.SwapRequest, error)
	// ListIncoming - PENDING запросы получателя, старые первыми
	ListIncoming(ctx context.Context, receiverID int64) ([]*model.SwapRequest, error)
	// ListOutgoing - все запросы инициатора, новые первыми
	ListOutgoing(ctx context.Context, requesterID int64) ([]*model.SwapRequest, error)
	ListByStatus(ctx context.Context, status model.SwapStatus) ([]*model.SwapRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.SwapStatus) (bool, error)
	// ExistsPendingForSlot - есть ли PENDING запрос, ссылающийся на слот с любой стороны
	ExistsPendingForSlot(ctx context.Context, slotID uuid.UUID) (bool, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

// Store объединяет репозитории одного хранилища
type Store interface {
	Slots() SlotRepository
	SwapRequests() SwapRequestRepository
	Users() UserRepository
}

// Transactor реализуется хранилищами с многозаписными транзакциями.
// fn получает Store, привязанный к транзакции; ошибка fn откатывает транзакцию.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
