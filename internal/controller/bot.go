package controller

import (
	"context"
	"time"

	"github.com/Freeeeeet/slot_swap_bot/internal/controller/callbacks"
	"github.com/Freeeeeet/slot_swap_bot/internal/controller/handlers"
	"github.com/Freeeeeet/slot_swap_bot/internal/controller/state"
	"github.com/Freeeeeet/slot_swap_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// command - пункт меню бота и его обработчик
type command struct {
	name        string
	description string
	handler     bot.HandlerFunc
}

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	limiter         *RateLimiter
	commands        []command
	logger          *zap.Logger
}

// NewBot создаёт клиента Telegram, ошибки polling уходят в лог
func NewBot(token string, logger *zap.Logger, opts ...bot.Option) (*bot.Bot, error) {
	opts = append([]bot.Option{
		bot.WithErrorsHandler(func(err error) {
			logger.Error("Telegram API error", zap.Error(err))
		}),
	}, opts...)
	return bot.New(token, opts...)
}

func NewBotController(
	botInstance *bot.Bot,
	userService *service.UserService,
	slotService *service.SlotService,
	marketplace *service.Marketplace,
	coordinator *service.SwapCoordinator,
	stateManager state.Store,
	limiter *RateLimiter,
	location *time.Location,
	logger *zap.Logger,
) *BotController {
	cmdHandlers := handlers.NewHandlers(
		userService,
		slotService,
		marketplace,
		coordinator,
		stateManager,
		location,
		logger,
	)

	callbackHandler := callbacks.NewHandler(
		userService,
		slotService,
		marketplace,
		coordinator,
		stateManager,
		location,
		logger,
	)

	c := &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		limiter:         limiter,
		logger:          logger,
	}

	c.commands = []command{
		{"start", "🚀 Начать работу с ботом", cmdHandlers.HandleStart},
		{"myslots", "📋 Мои слоты", cmdHandlers.HandleMySlots},
		{"newslot", "➕ Создать слот", cmdHandlers.HandleNewSlot},
		{"market", "🛒 Слоты, открытые для обмена", cmdHandlers.HandleMarket},
		{"incoming", "📥 Входящие запросы", cmdHandlers.HandleIncoming},
		{"outgoing", "📤 Исходящие запросы", cmdHandlers.HandleOutgoing},
		{"cancel", "❌ Отменить диалог", cmdHandlers.HandleCancel},
		{"help", "❓ Справка по командам", cmdHandlers.HandleHelp},
	}

	return c
}

// RegisterHandlers регистрирует обработчики и меню команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	var mw []bot.Middleware
	if c.limiter != nil {
		mw = append(mw, c.limiter.Middleware)
	}

	// Все текстовые сообщения идут через один обработчик: команды
	// разбираются здесь же, остальное - шаги диалогов
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handleMessage, mw...)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery, mw...)

	return c.setCommands(ctx)
}

func (c *BotController) handleMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	name, ok := handlers.ParseCommand(update.Message.Text)
	if !ok {
		c.handlers.HandleTextMessage(ctx, b, update)
		return
	}

	for _, cmd := range c.commands {
		if cmd.name == name {
			cmd.handler(ctx, b, update)
			return
		}
	}
	c.handlers.HandleUnknownCommand(ctx, b, update)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := make([]models.BotCommand, 0, len(c.commands))
	for _, cmd := range c.commands {
		commands = append(commands, models.BotCommand{Command: cmd.name, Description: cmd.description})
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает long polling и блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting bot...")
	if c.limiter != nil {
		c.limiter.StartJanitor(ctx, 2*time.Minute)
	}
	c.bot.Start(ctx)
	c.logger.Info("Bot stopped")
}
