// killrate simulates combat against every monster, dungeon and slayer task
// for one build and reports kill, xp, gp, drop and pet rates.
//
// Usage:
//
//	killrate simulate          - Run a recompute and print the result table
//	killrate serve             - Stream recomputes over a WebSocket feed
//	killrate rates export      - Print the stored consumable costs as JSON
//	killrate rates import <f>  - Replace the stored consumable costs
//	killrate rates list        - List stored cost profiles
//	killrate runs              - Show recent recompute history
package main

import (
	"fmt"
	"os"

	"github.com/lawnchairsociety/killrate/internal/logger"
	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagLogging string
	flagData    string
	flagBuild   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "killrate",
	Short: "Combat rate simulator",
	Long: `killrate replays combat tick by tick for a build against every
monster, dungeon and slayer task in the reference data, then values the
loot, estimates pet chances and amortizes consumable costs.

Examples:
  killrate simulate --trials 500
  killrate simulate --target monster:chicken --target task:easy
  killrate serve --address :4480
  killrate rates import costs.json`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "killrate.yaml", "Path to settings YAML file")
	rootCmd.PersistentFlags().StringVar(&flagLogging, "logging", "data/logging.yaml", "Path to logging config YAML file")
	rootCmd.PersistentFlags().StringVar(&flagData, "data", "", "Reference data directory (overrides settings)")
	rootCmd.PersistentFlags().StringVar(&flagBuild, "build", "", "Build YAML file (overrides settings)")

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ratesCmd)
	rootCmd.AddCommand(runsCmd)
}
