package callbacks

import (
	"context"
	"strings"

	"github.com/Freeeeeet/slot_swap_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/slot_swap_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/slot_swap_bot/internal/controller/callbacks/slots"
	"github.com/Freeeeeet/slot_swap_bot/internal/controller/callbacks/swaps"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Route распределяет callback query по соответствующим обработчикам
func Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	data := callback.Data

	switch {
	// ===== Свои слоты =====
	case data == common.CbMySlots:
		slots.HandleMySlots(ctx, b, callback, h)
	case data == common.CbNewSlot:
		slots.HandleNewSlot(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixSlot):
		slots.HandleViewSlot(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixStatus):
		slots.HandleSetStatus(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixEditTitle):
		slots.HandleEditTitle(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixEditTime):
		slots.HandleEditTime(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixDeleteYes):
		slots.HandleDeleteConfirm(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixDelete):
		slots.HandleDelete(ctx, b, callback, h)

	// ===== Маркет и обмены =====
	case data == common.CbMarket:
		swaps.HandleMarket(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixWant):
		swaps.HandleWant(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixOffer):
		swaps.HandleOffer(ctx, b, callback, h)
	case data == common.CbIncoming:
		swaps.HandleIncoming(ctx, b, callback, h)
	case data == common.CbOutgoing:
		swaps.HandleOutgoing(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixRequest):
		swaps.HandleViewRequest(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PrefixAccept):
		swaps.HandleResolve(ctx, b, callback, h, true)
	case strings.HasPrefix(data, common.PrefixReject):
		swaps.HandleResolve(ctx, b, callback, h, false)

	case data == common.CbNoop:
		common.AnswerCallback(ctx, b, callback.ID, "")

	default:
		h.Logger.Warn("Unknown callback",
			zap.String("data", data),
			zap.Int64("user_id", callback.From.ID))
		common.AnswerCallback(ctx, b, callback.ID, "❌ Неизвестная команда")
	}
}
