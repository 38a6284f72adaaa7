package common

import (
	"context"

	"github.com/Freeeeeet/slot_swap_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/slot_swap_bot/internal/controller/state"
	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandlerContext содержит общие данные для обработки callback
type HandlerContext struct {
	Ctx        context.Context
	Bot        *bot.Bot
	Callback   *models.CallbackQuery
	Handler    *callbacktypes.Handler
	Message    *models.Message
	User       *model.User
	TelegramID int64
	ChatID     int64
}

// NewHandlerContext создаёт новый контекст обработчика
func NewHandlerContext(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
) *HandlerContext {
	msg := GetMessageFromCallback(callback)
	var chatID int64
	if msg != nil {
		chatID = msg.Chat.ID
	}

	return &HandlerContext{
		Ctx:        ctx,
		Bot:        b,
		Callback:   callback,
		Handler:    h,
		Message:    msg,
		TelegramID: callback.From.ID,
		ChatID:     chatID,
	}
}

// LoadUser загружает пользователя в контекст
func (hc *HandlerContext) LoadUser() error {
	user, err := hc.Handler.UserService.GetByTelegramID(hc.Ctx, hc.TelegramID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	hc.User = user
	return nil
}

// Answer отвечает на callback query
func (hc *HandlerContext) Answer(text string) {
	AnswerCallback(hc.Ctx, hc.Bot, hc.Callback.ID, text)
}

// AnswerAlert отвечает на callback query с alert
func (hc *HandlerContext) AnswerAlert(text string) {
	AnswerCallbackAlert(hc.Ctx, hc.Bot, hc.Callback.ID, text)
}

// EditMessage редактирует сообщение с кнопками
func (hc *HandlerContext) EditMessage(text string, keyboard *models.InlineKeyboardMarkup) error {
	if hc.Message == nil {
		return ErrNoMessage
	}

	params := &bot.EditMessageTextParams{
		ChatID:    hc.ChatID,
		MessageID: hc.Message.ID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}
	_, err := hc.Bot.EditMessageText(hc.Ctx, params)

	// "message is not modified" - не настоящая ошибка
	if IsMessageNotModifiedError(err) {
		return nil
	}

	return err
}

// Render заменяет сообщение с кнопками новым экраном, ошибка только логируется
func (hc *HandlerContext) Render(text string, keyboard *models.InlineKeyboardMarkup) {
	if err := hc.EditMessage(text, keyboard); err != nil {
		hc.Handler.Logger.Error("Failed to edit message",
			zap.Int64("telegram_id", hc.TelegramID),
			zap.Error(err))
	}
}

// SendMessage отправляет новое сообщение в текущий чат
func (hc *HandlerContext) SendMessage(text string, keyboard *models.InlineKeyboardMarkup) error {
	return Send(hc.Ctx, hc.Bot, hc.ChatID, text, keyboard)
}

// Notify отправляет сообщение другому пользователю. В личном чате
// chat_id совпадает с telegram_id.
func (hc *HandlerContext) Notify(user *model.User, text string, keyboard *models.InlineKeyboardMarkup) {
	if user == nil || user.TelegramID == 0 {
		return
	}
	if err := Send(hc.Ctx, hc.Bot, user.TelegramID, text, keyboard); err != nil {
		hc.Handler.Logger.Warn("Failed to notify user",
			zap.Int64("user_id", user.ID),
			zap.Error(err))
	}
}

// ClearState очищает состояние пользователя
func (hc *HandlerContext) ClearState() {
	hc.Handler.StateManager.ClearState(hc.Ctx, hc.TelegramID)
}

// SetState устанавливает состояние пользователя
func (hc *HandlerContext) SetState(st state.UserState) {
	hc.Handler.StateManager.SetState(hc.Ctx, hc.TelegramID, st)
}

// SetData устанавливает данные в state
func (hc *HandlerContext) SetData(key, value string) {
	hc.Handler.StateManager.SetData(hc.Ctx, hc.TelegramID, key, value)
}

// GetData получает данные из state
func (hc *HandlerContext) GetData(key string) (string, bool) {
	return hc.Handler.StateManager.GetData(hc.Ctx, hc.TelegramID, key)
}
