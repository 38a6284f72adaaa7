package service

import (
	"context"

	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/Freeeeeet/slot_swap_bot/internal/repository"
	"go.uber.org/zap"
)

// Marketplace - проекция только для чтения: слоты, открытые для обмена
type Marketplace struct {
	slots  repository.SlotRepository
	users  repository.UserRepository
	logger *zap.Logger
}

func NewMarketplace(store repository.Store, logger *zap.Logger) *Marketplace {
	return &Marketplace{
		slots:  store.Slots(),
		users:  store.Users(),
		logger: logger,
	}
}

// ListMarketplace возвращает SWAPPABLE слоты других пользователей, ближайшие первыми
func (m *Marketplace) ListMarketplace(ctx context.Context, callerID int64) ([]*model.Slot, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}

	slots, err := m.slots.ListSwappable(ctx, callerID)
	if err != nil {
		return nil, storageErr("list swappable slots", err)
	}

	users := newUserCache(m.users)
	for _, slot := range slots {
		if slot.Owner, err = users.get(ctx, slot.OwnerID); err != nil {
			return nil, err
		}
	}

	m.logger.Debug("Marketplace listed",
		zap.Int64("caller_id", callerID),
		zap.Int("count", len(slots)),
	)

	return slots, nil
}

// userCache избегает повторных чтений одного пользователя в пределах выборки
type userCache struct {
	repo  repository.UserRepository
	users map[int64]*model.User
}

func newUserCache(repo repository.UserRepository) *userCache {
	return &userCache{repo: repo, users: make(map[int64]*model.User)}
}

// get возвращает пользователя или nil, если его нет в хранилище
func (c *userCache) get(ctx context.Context, id int64) (*model.User, error) {
	if u, ok := c.users[id]; ok {
		return u, nil
	}
	u, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("get user", err)
	}
	c.users[id] = u
	return u, nil
}
