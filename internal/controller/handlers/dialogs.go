package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Freeeeeet/slot_swap_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/slot_swap_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/slot_swap_bot/internal/controller/state"
	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/Freeeeeet/slot_swap_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HandleNewSlot начинает процесс создания слота
func (h *Handlers) HandleNewSlot(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	telegramID := update.Message.From.ID

	h.stateManager.ClearState(ctx, telegramID)
	h.stateManager.SetState(ctx, telegramID, state.StateNewSlotTitle)

	h.logger.Debug("Starting slot creation",
		zap.Int64("telegram_id", telegramID),
		zap.Int64("user_id", user.ID))

	h.sendMessage(ctx, b, update.Message.Chat.ID, common.PromptNewSlotTitle)
}

// handleNewSlotTitle обрабатывает ввод названия слота
func (h *Handlers) handleNewSlotTitle(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	title, ok := h.readTitle(ctx, b, update)
	if !ok {
		return
	}

	h.stateManager.SetData(ctx, telegramID, state.KeyTitle, title)
	h.stateManager.SetState(ctx, telegramID, state.StateNewSlotStart)

	h.sendMessage(ctx, b, update.Message.Chat.ID, fmt.Sprintf("✅ Название: %s\n\n%s", title, common.PromptNewSlotStart))
}

// handleNewSlotStart обрабатывает ввод начала слота
func (h *Handlers) handleNewSlotStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID

	start, err := formatting.ParseDateTime(update.Message.Text, h.location)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID,
			"❌ Не удалось разобрать дату. Формат: ДД.ММ.ГГГГ ЧЧ:ММ, например 15.01.2030 10:00\n\nПопробуйте ещё раз:")
		return
	}

	h.stateManager.SetData(ctx, telegramID, state.KeyStart, start.UTC().Format(time.RFC3339))
	h.stateManager.SetState(ctx, telegramID, state.StateNewSlotEnd)

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		fmt.Sprintf("✅ Начало: %s\n\n%s", formatting.FormatDateTime(start, h.location), common.PromptNewSlotEnd))
}

// handleNewSlotEnd обрабатывает ввод окончания и создаёт слот
func (h *Handlers) handleNewSlotEnd(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID

	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	data := h.stateManager.GetAllData(ctx, telegramID)
	start, err := time.Parse(time.RFC3339, data[state.KeyStart])
	if err != nil || data[state.KeyTitle] == "" {
		h.logger.Error("Missing data for new slot", zap.Int64("telegram_id", telegramID))
		h.stateManager.ClearState(ctx, telegramID)
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(common.ErrNoDialogData)+": /newslot")
		return
	}

	end, err := formatting.ParseEnd(start, update.Message.Text, h.location)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID,
			"❌ Не удалось разобрать время. Укажите ЧЧ:ММ или ДД.ММ.ГГГГ ЧЧ:ММ\n\nПопробуйте ещё раз:")
		return
	}

	slot, err := h.slotService.CreateSlot(ctx, user.ID, data[state.KeyTitle], start, end)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err)+"\n\nПопробуйте ещё раз:")
			return
		}
		h.stateManager.ClearState(ctx, telegramID)
		h.reportError(ctx, b, update, err, "create slot")
		return
	}

	h.stateManager.ClearState(ctx, telegramID)

	text, kb := common.BuildSlotScreen(slot, h.location)
	h.sendScreen(ctx, b, update.Message.Chat.ID, "✅ Слот создан!\n\n"+text, kb)
}

// handleEditSlotTitle обрабатывает ввод нового названия
func (h *Handlers) handleEditSlotTitle(ctx context.Context, b *bot.Bot, update *models.Update) {
	title, ok := h.readTitle(ctx, b, update)
	if !ok {
		return
	}
	h.applyPatch(ctx, b, update, model.SlotPatch{Title: &title})
}

// handleEditSlotTime обрабатывает ввод нового интервала
func (h *Handlers) handleEditSlotTime(ctx context.Context, b *bot.Bot, update *models.Update) {
	start, end, err := formatting.ParseTimeRange(update.Message.Text, h.location)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID,
			"❌ Не удалось разобрать время. Формат: ДД.ММ.ГГГГ ЧЧ:ММ-ЧЧ:ММ\n\nПопробуйте ещё раз:")
		return
	}
	h.applyPatch(ctx, b, update, model.SlotPatch{StartTime: &start, EndTime: &end})
}

// applyPatch применяет изменение к слоту из состояния диалога
func (h *Handlers) applyPatch(ctx context.Context, b *bot.Bot, update *models.Update, patch model.SlotPatch) {
	telegramID := update.Message.From.ID

	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	raw, _ := h.stateManager.GetData(ctx, telegramID, state.KeySlotID)
	slotID, err := uuid.Parse(raw)
	if err != nil {
		h.stateManager.ClearState(ctx, telegramID)
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(common.ErrNoDialogData)+": /myslots")
		return
	}

	slot, err := h.slotService.UpdateSlot(ctx, user.ID, slotID, patch)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err)+"\n\nПопробуйте ещё раз:")
			return
		}
		h.stateManager.ClearState(ctx, telegramID)
		h.reportError(ctx, b, update, err, "update slot")
		return
	}

	h.stateManager.ClearState(ctx, telegramID)

	text, kb := common.BuildSlotScreen(slot, h.location)
	h.sendScreen(ctx, b, update.Message.Chat.ID, "✅ Слот обновлён!\n\n"+text, kb)
}

// readTitle проверяет введённое название, при ошибке просит ввести снова
func (h *Handlers) readTitle(ctx context.Context, b *bot.Bot, update *models.Update) (string, bool) {
	title := strings.TrimSpace(update.Message.Text)

	if title == "" {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Название не может быть пустым.\n\nПопробуйте ещё раз:")
		return "", false
	}

	if utf8.RuneCountInString(title) > SlotTitleMaxLength {
		h.sendError(ctx, b, update.Message.Chat.ID,
			fmt.Sprintf("❌ Название слишком длинное. Максимум %d символов.\n\nПопробуйте ещё раз:", SlotTitleMaxLength))
		return "", false
	}

	return title, true
}
