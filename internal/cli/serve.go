package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/slot_swap_bot/internal/app"
	"github.com/Freeeeeet/slot_swap_bot/internal/controller"
	"github.com/Freeeeeet/slot_swap_bot/internal/controller/state"
	"github.com/Freeeeeet/slot_swap_bot/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if err := cfg.RequireToken(); err != nil {
				return err
			}

			logger.Info("Starting slot swap bot",
				zap.String("environment", cfg.Environment),
				zap.String("db_driver", cfg.DBDriver),
				zap.String("timezone", cfg.Timezone.String()))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			storage, err := app.OpenStorage(ctx, cfg, cfg.AutoMigrate, logger)
			if err != nil {
				return err
			}
			defer storage.Close()

			userService := service.NewUserService(storage.Store, logger)
			slotService := service.NewSlotService(storage.Store, logger)
			marketplace := service.NewMarketplace(storage.Store, logger)
			coordinator := service.NewSwapCoordinator(storage.Store, logger)
			reconciler := service.NewReconciler(coordinator, cfg.ReconcileGrace, logger)

			var stateStore state.Store
			if cfg.RedisAddr != "" {
				rdb, err := state.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
				if err != nil {
					return err
				}
				defer rdb.Close()
				stateStore = state.NewRedisStore(rdb, logger)
				logger.Info("Dialog state stored in Redis", zap.String("addr", cfg.RedisAddr))
			} else {
				stateStore = state.NewManager()
				logger.Info("Dialog state stored in memory")
			}

			b, err := controller.NewBot(cfg.TelegramToken, logger)
			if err != nil {
				return err
			}

			limiter := controller.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
			botController := controller.NewBotController(
				b,
				userService,
				slotService,
				marketplace,
				coordinator,
				stateStore,
				limiter,
				cfg.Timezone,
				logger,
			)
			if err := botController.RegisterHandlers(ctx); err != nil {
				// меню команд не критично, бот работает и без него
				logger.Warn("Bot commands menu not set", zap.Error(err))
			}

			scheduler := app.NewScheduler(reconciler, cfg.ReconcileInterval, logger)
			scheduler.Start(ctx)
			defer scheduler.Stop()

			botController.Start(ctx)
			return nil
		},
	}
}
