package handlers

import (
	"context"

	"github.com/Freeeeeet/slot_swap_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// requireUser проверяет что пользователь зарегистрирован.
// Возвращает user и true если OK, иначе сам отвечает пользователю.
func (h *Handlers) requireUser(ctx context.Context, b *bot.Bot, update *models.Update) (*model.User, bool) {
	if update.Message == nil || update.Message.From == nil {
		return nil, false
	}

	telegramID := update.Message.From.ID
	user, err := h.userService.GetByTelegramID(ctx, telegramID)

	if err != nil {
		h.logger.Error("Failed to get user", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
		return nil, false
	}

	if user == nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Пользователь не найден. Используйте /start для регистрации.")
		return nil, false
	}

	return user, true
}

// reportError логирует ошибку операции и показывает её пользователю
func (h *Handlers) reportError(ctx context.Context, b *bot.Bot, update *models.Update, err error, operation string) {
	h.logger.Warn("Operation failed",
		zap.String("operation", operation),
		zap.Int64("telegram_id", update.Message.From.ID),
		zap.Error(err))
	h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
}
