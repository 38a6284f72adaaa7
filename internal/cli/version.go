package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Заполняются через -ldflags при сборке
var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "swapbot %s (commit=%s, built=%s)\n", Version, CommitSHA, BuildDate)
		},
	}
}
