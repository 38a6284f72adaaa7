package callbacktypes

import (
	"time"

	"github.com/Freeeeeet/slot_swap_bot/internal/controller/state"
	"github.com/Freeeeeet/slot_swap_bot/internal/service"
	"go.uber.org/zap"
)

// Handler содержит общие зависимости для всех callback handlers
type Handler struct {
	UserService  *service.UserService
	SlotService  *service.SlotService
	Marketplace  *service.Marketplace
	Coordinator  *service.SwapCoordinator
	StateManager state.Store
	Location     *time.Location // часовой пояс, в котором показывается и вводится время
	Logger       *zap.Logger
}
