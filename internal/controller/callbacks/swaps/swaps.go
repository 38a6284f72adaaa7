package swaps

import (
	"context"
	"errors"

	"github.com/Freeeeeet/slot_swap_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/slot_swap_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/slot_swap_bot/internal/controller/state"
	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/Freeeeeet/slot_swap_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HandleMarket показывает маркет
func HandleMarket(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		slots, err := h.Marketplace.ListMarketplace(ctx, hc.User.ID)
		if err != nil {
			common.HandleError(hc, err, "list marketplace")
			return
		}
		hc.Render(common.BuildMarketScreen(slots, h.Location))
		hc.Answer("")
	})
}

// HandleWant запоминает желаемый слот и предлагает выбрать свой взамен.
// Выбор хранится в состоянии диалога: два UUID не помещаются в callback data.
func HandleWant(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		wantedID, err := common.ParseUUID(callback.Data, common.PrefixWant)
		if err != nil {
			common.HandleError(hc, err, "parse want callback")
			return
		}

		market, err := h.Marketplace.ListMarketplace(ctx, hc.User.ID)
		if err != nil {
			common.HandleError(hc, err, "list marketplace")
			return
		}

		wanted := findSlot(market, wantedID)
		if wanted == nil {
			hc.Render(common.BuildMarketScreen(market, h.Location))
			hc.AnswerAlert("⚠️ Этот слот больше не доступен для обмена")
			return
		}

		mine, err := h.SlotService.ListMySlots(ctx, hc.User.ID)
		if err != nil {
			common.HandleError(hc, err, "list my slots")
			return
		}

		offerable := make([]*model.Slot, 0, len(mine))
		for _, slot := range mine {
			if slot.Status == model.SlotStatusSwappable {
				offerable = append(offerable, slot)
			}
		}

		hc.SetData(state.KeyWantedID, wanted.ID.String())
		hc.Render(common.BuildOfferScreen(wanted, offerable, h.Location))
		hc.Answer("")
	})
}

// HandleOffer создаёт запрос на обмен: свой слот из callback data на
// запомненный желаемый слот
func HandleOffer(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		offeredID, err := common.ParseUUID(callback.Data, common.PrefixOffer)
		if err != nil {
			common.HandleError(hc, err, "parse offer callback")
			return
		}

		wantedText, ok := hc.GetData(state.KeyWantedID)
		if !ok {
			common.HandleError(hc, common.ErrNoDialogData, "propose swap")
			return
		}
		wantedID, err := uuid.Parse(wantedText)
		if err != nil {
			common.HandleError(hc, common.ErrNoDialogData, "propose swap")
			return
		}

		req, err := h.Coordinator.ProposeSwap(ctx, hc.User.ID, offeredID, wantedID)
		if err != nil {
			common.HandleError(hc, err, "propose swap")
			return
		}
		hc.ClearState()

		populated, err := h.Coordinator.GetRequest(ctx, hc.User.ID, req.ID)
		if err != nil {
			// запрос уже создан, показать карточку не удалось
			h.Logger.Error("Failed to load proposed request", zap.String("request_id", req.ID.String()), zap.Error(err))
			hc.AnswerAlert("📨 Запрос отправлен")
			return
		}

		hc.Render(common.BuildRequestScreen(populated, hc.User.ID, h.Location))
		hc.Answer("📨 Запрос отправлен")

		notice, kb := common.BuildNewRequestNotice(populated, h.Location)
		hc.Notify(populated.Receiver, notice, kb)
	})
}

// HandleIncoming показывает входящие запросы
func HandleIncoming(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		if showIncoming(hc) {
			hc.Answer("")
		}
	})
}

func showIncoming(hc *common.HandlerContext) bool {
	reqs, err := hc.Handler.Coordinator.ListIncoming(hc.Ctx, hc.User.ID)
	if err != nil {
		common.HandleError(hc, err, "list incoming")
		return false
	}
	hc.Render(common.BuildIncomingScreen(reqs, hc.Handler.Location))
	return true
}

// HandleOutgoing показывает исходящие запросы
func HandleOutgoing(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		reqs, err := h.Coordinator.ListOutgoing(ctx, hc.User.ID)
		if err != nil {
			common.HandleError(hc, err, "list outgoing")
			return
		}
		hc.Render(common.BuildOutgoingScreen(reqs, h.Location))
		hc.Answer("")
	})
}

// HandleViewRequest показывает карточку запроса
func HandleViewRequest(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		requestID, err := common.ParseUUID(callback.Data, common.PrefixRequest)
		if err != nil {
			common.HandleError(hc, err, "parse request callback")
			return
		}

		req, err := h.Coordinator.GetRequest(ctx, hc.User.ID, requestID)
		if err != nil {
			common.HandleError(hc, err, "get swap request")
			return
		}
		hc.Render(common.BuildRequestScreen(req, hc.User.ID, h.Location))
		hc.Answer("")
	})
}

// HandleResolve принимает или отклоняет входящий запрос
func HandleResolve(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler, accept bool) {
	prefix := common.PrefixReject
	if accept {
		prefix = common.PrefixAccept
	}

	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		requestID, err := common.ParseUUID(callback.Data, prefix)
		if err != nil {
			common.HandleError(hc, err, "parse resolve callback")
			return
		}

		req, err := h.Coordinator.ResolveSwap(ctx, hc.User.ID, requestID, accept)
		if err != nil {
			if req != nil && errors.Is(err, service.ErrConflict) {
				// один из слотов удалён, запрос отклонён автоматически
				h.Logger.Info("Stale swap request auto-rejected from bot",
					zap.String("request_id", requestID.String()),
					zap.Int64("user_id", hc.User.ID))
				if showIncoming(hc) {
					hc.AnswerAlert("⚠️ Один из слотов был удалён, запрос отклонён автоматически")
				}
				return
			}
			common.HandleError(hc, err, "resolve swap")
			return
		}

		populated, err := h.Coordinator.GetRequest(ctx, hc.User.ID, req.ID)
		if err != nil {
			h.Logger.Error("Failed to load resolved request", zap.String("request_id", req.ID.String()), zap.Error(err))
			populated = req
		} else {
			hc.Render(common.BuildRequestScreen(populated, hc.User.ID, h.Location))
		}

		if req.Status == model.SwapStatusAccepted {
			hc.Answer("✅ Обмен выполнен")
		} else {
			hc.Answer("🚫 Запрос отклонён")
		}

		if populated.Requester != nil {
			hc.Notify(populated.Requester, common.BuildResolvedNotice(populated, h.Location), nil)
		}
	})
}

func findSlot(slots []*model.Slot, id uuid.UUID) *model.Slot {
	for _, slot := range slots {
		if slot.ID == id {
			return slot
		}
	}
	return nil
}
