package slots

import (
	"context"

	"github.com/Freeeeeet/slot_swap_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/slot_swap_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/slot_swap_bot/internal/controller/state"
	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleMySlots показывает список слотов пользователя
func HandleMySlots(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		if showMySlots(hc) {
			hc.Answer("")
		}
	})
}

func showMySlots(hc *common.HandlerContext) bool {
	slots, err := hc.Handler.SlotService.ListMySlots(hc.Ctx, hc.User.ID)
	if err != nil {
		common.HandleError(hc, err, "list my slots")
		return false
	}
	hc.Render(common.BuildMySlotsScreen(slots, hc.Handler.Location))
	return true
}

// HandleNewSlot начинает диалог создания слота
func HandleNewSlot(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		hc.ClearState()
		hc.SetState(state.StateNewSlotTitle)

		if err := hc.SendMessage(common.PromptNewSlotTitle, nil); err != nil {
			h.Logger.Error("Failed to send prompt", zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleViewSlot показывает карточку слота
func HandleViewSlot(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		slot, ok := loadSlot(hc, common.PrefixSlot)
		if !ok {
			return
		}
		hc.Render(common.BuildSlotScreen(slot, h.Location))
		hc.Answer("")
	})
}

// HandleSetStatus открывает слот для обмена или снимает его с обмена
func HandleSetStatus(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		slotID, status, err := common.ParseStatusData(callback.Data)
		if err != nil {
			common.HandleError(hc, err, "parse status callback")
			return
		}

		slot, err := h.SlotService.SetSlotStatus(ctx, hc.User.ID, slotID, status)
		if err != nil {
			common.HandleError(hc, err, "set slot status")
			return
		}

		h.Logger.Info("Slot status changed from bot",
			zap.Int64("user_id", hc.User.ID),
			zap.String("slot_id", slotID.String()),
			zap.String("status", string(slot.Status)))

		hc.Render(common.BuildSlotScreen(slot, h.Location))
		if slot.Status == model.SlotStatusSwappable {
			hc.Answer("🔄 Слот открыт для обмена")
		} else {
			hc.Answer("🔴 Слот снят с обмена")
		}
	})
}

// HandleEditTitle запрашивает новое название
func HandleEditTitle(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	startEdit(ctx, b, callback, h, common.PrefixEditTitle, state.StateEditSlotTitle, common.PromptEditTitle)
}

// HandleEditTime запрашивает новое время
func HandleEditTime(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	startEdit(ctx, b, callback, h, common.PrefixEditTime, state.StateEditSlotTime, common.PromptEditTime)
}

func startEdit(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
	prefix string,
	next state.UserState,
	prompt string,
) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		slot, ok := loadSlot(hc, prefix)
		if !ok {
			return
		}
		if slot.Status.Locked() {
			hc.AnswerAlert("⏳ Слот участвует в обмене и не может быть изменён")
			return
		}

		hc.ClearState()
		hc.SetState(next)
		hc.SetData(state.KeySlotID, slot.ID.String())

		if err := hc.SendMessage(prompt, nil); err != nil {
			h.Logger.Error("Failed to send prompt", zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleDelete спрашивает подтверждение удаления
func HandleDelete(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		slot, ok := loadSlot(hc, common.PrefixDelete)
		if !ok {
			return
		}
		hc.Render(common.BuildDeleteConfirmScreen(slot, h.Location))
		hc.Answer("")
	})
}

// HandleDeleteConfirm удаляет слот и возвращает к списку
func HandleDeleteConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		slotID, err := common.ParseUUID(callback.Data, common.PrefixDeleteYes)
		if err != nil {
			common.HandleError(hc, err, "parse delete callback")
			return
		}

		if err := h.SlotService.DeleteSlot(ctx, hc.User.ID, slotID); err != nil {
			common.HandleError(hc, err, "delete slot")
			return
		}

		if showMySlots(hc) {
			hc.Answer("🗑 Слот удалён")
		}
	})
}

// loadSlot читает слот пользователя по id из callback data
func loadSlot(hc *common.HandlerContext, prefix string) (*model.Slot, bool) {
	slotID, err := common.ParseUUID(hc.Callback.Data, prefix)
	if err != nil {
		common.HandleError(hc, err, "parse slot callback")
		return nil, false
	}

	slot, err := hc.Handler.SlotService.GetSlot(hc.Ctx, hc.User.ID, slotID)
	if err != nil {
		common.HandleError(hc, err, "get slot")
		return nil, false
	}
	return slot, true
}
