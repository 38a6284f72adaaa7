package cli

import (
	"fmt"

	"github.com/Freeeeeet/slot_swap_bot/internal/app"
	"github.com/Freeeeeet/slot_swap_bot/internal/service"
	"github.com/spf13/cobra"
)

func NewReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Run one reconciliation pass over slots and swap requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			storage, err := app.OpenStorage(cmd.Context(), cfg, cfg.AutoMigrate, logger)
			if err != nil {
				return err
			}
			defer storage.Close()

			coordinator := service.NewSwapCoordinator(storage.Store, logger)
			report, err := service.NewReconciler(coordinator, cfg.ReconcileGrace, logger).Reconcile(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "stale rejected: %d\norphans released: %d\nmismatches: %d\n",
				report.StaleRejected, report.OrphansReleased, report.Mismatches)
			return nil
		},
	}
}
