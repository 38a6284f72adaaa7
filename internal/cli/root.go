package cli

import (
	"github.com/Freeeeeet/slot_swap_bot/internal/app"
	"github.com/Freeeeeet/slot_swap_bot/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "swapbot",
		Short:         "Telegram bot for swapping schedule slots",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewReconcileCmd())
	cmd.AddCommand(NewVersionCmd())
	return cmd
}

// bootstrap загружает конфигурацию и создаёт логгер
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger, err := app.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
