package handlers

import (
	"time"

	"github.com/Freeeeeet/slot_swap_bot/internal/controller/state"
	"github.com/Freeeeeet/slot_swap_bot/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	userService  *service.UserService
	slotService  *service.SlotService
	marketplace  *service.Marketplace
	coordinator  *service.SwapCoordinator
	stateManager state.Store
	location     *time.Location
	logger       *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	userService *service.UserService,
	slotService *service.SlotService,
	marketplace *service.Marketplace,
	coordinator *service.SwapCoordinator,
	stateManager state.Store,
	location *time.Location,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		userService:  userService,
		slotService:  slotService,
		marketplace:  marketplace,
		coordinator:  coordinator,
		stateManager: stateManager,
		location:     location,
		logger:       logger,
	}
}
