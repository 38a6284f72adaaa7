package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/slot_swap_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/slot_swap_bot/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	user := update.Message.From

	registeredUser, err := h.userService.RegisterUser(
		ctx,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.LanguageCode,
	)
	if err != nil {
		h.logger.Error("Failed to register user", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}

	welcomeText := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Это бот для обмена слотами в расписании. Откройте свой слот для обмена, "+
			"найдите подходящий слот коллеги в маркете и предложите обмен.\n\n"+
			"Доступные команды:\n"+
			"/myslots - Мои слоты\n"+
			"/newslot - Создать слот\n"+
			"/market - Слоты, открытые для обмена\n"+
			"/incoming - Входящие запросы\n"+
			"/outgoing - Исходящие запросы\n"+
			"/help - Справка",
		registeredUser.DisplayName(),
	)

	h.sendMessage(ctx, b, update.Message.Chat.ID, welcomeText)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	helpText := "📚 Справка по командам:\n\n" +
		"/start - Начать работу с ботом\n" +
		"/myslots - Мои слоты и управление ими\n" +
		"/newslot - Создать слот\n" +
		"/market - Слоты других пользователей, открытые для обмена\n" +
		"/incoming - Запросы на обмен, ожидающие вашего ответа\n" +
		"/outgoing - Отправленные вами запросы\n" +
		"/cancel - Отменить текущий диалог\n" +
		"/help - Показать эту справку\n\n" +
		"Как обменяться:\n" +
		"1. Откройте свой слот для обмена в /myslots\n" +
		"2. Выберите слот коллеги в /market и предложите свой взамен\n" +
		"3. Пока запрос ждёт ответа, оба слота заблокированы\n" +
		"4. Когда коллега примет запрос, слоты поменяются владельцами"

	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleMySlots обрабатывает команду /myslots
func (h *Handlers) HandleMySlots(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	slots, err := h.slotService.ListMySlots(ctx, user.ID)
	if err != nil {
		h.reportError(ctx, b, update, err, "list my slots")
		return
	}

	text, kb := common.BuildMySlotsScreen(slots, h.location)
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleMarket обрабатывает команду /market
func (h *Handlers) HandleMarket(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	slots, err := h.marketplace.ListMarketplace(ctx, user.ID)
	if err != nil {
		h.reportError(ctx, b, update, err, "list marketplace")
		return
	}

	text, kb := common.BuildMarketScreen(slots, h.location)
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleIncoming обрабатывает команду /incoming
func (h *Handlers) HandleIncoming(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	reqs, err := h.coordinator.ListIncoming(ctx, user.ID)
	if err != nil {
		h.reportError(ctx, b, update, err, "list incoming")
		return
	}

	text, kb := common.BuildIncomingScreen(reqs, h.location)
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleOutgoing обрабатывает команду /outgoing
func (h *Handlers) HandleOutgoing(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	reqs, err := h.coordinator.ListOutgoing(ctx, user.ID)
	if err != nil {
		h.reportError(ctx, b, update, err, "list outgoing")
		return
	}

	text, kb := common.BuildOutgoingScreen(reqs, h.location)
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	telegramID := update.Message.From.ID
	if h.stateManager.GetState(ctx, telegramID) == state.StateNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Нет активных операций для отмены.")
		return
	}

	h.stateManager.ClearState(ctx, telegramID)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Операция отменена.\n\nИспользуйте /help для просмотра доступных команд.")
}

// HandleUnknownCommand отвечает на команду, которой нет в меню
func (h *Handlers) HandleUnknownCommand(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, "❓ Неизвестная команда. Список команд: /help")
}

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от состояния пользователя
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}

	// команды сюда не доходят, их разбирает контроллер
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	currentState := h.stateManager.GetState(ctx, telegramID)

	switch currentState {
	case state.StateNone:
		h.logger.Debug("No active state, ignoring message",
			zap.Int64("telegram_id", telegramID))
	case state.StateNewSlotTitle:
		h.handleNewSlotTitle(ctx, b, update)
	case state.StateNewSlotStart:
		h.handleNewSlotStart(ctx, b, update)
	case state.StateNewSlotEnd:
		h.handleNewSlotEnd(ctx, b, update)
	case state.StateEditSlotTitle:
		h.handleEditSlotTitle(ctx, b, update)
	case state.StateEditSlotTime:
		h.handleEditSlotTime(ctx, b, update)
	default:
		h.logger.Warn("Unknown state, clearing", zap.String("state", string(currentState)))
		h.stateManager.ClearState(ctx, telegramID)
	}
}
