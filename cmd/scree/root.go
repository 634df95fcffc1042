package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/SCREE/internal/logging"
)

var (
	logLevel string
	logger   *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "scree",
	Short: "Stochastic search over discrete optimization problems",
	Long: `SCREE drives randomized optimization algorithms (hill climbing,
simulated annealing, genetic algorithms and MIMIC) over a catalog of
discrete fitness landscapes.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.New(logging.ParseLevel(logLevel), os.Stderr)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}
