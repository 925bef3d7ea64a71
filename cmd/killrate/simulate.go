package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lawnchairsociety/killrate/internal/database"
	"github.com/lawnchairsociety/killrate/internal/logger"
	"github.com/lawnchairsociety/killrate/internal/pipeline"
	"github.com/lawnchairsociety/killrate/internal/results"
	"github.com/spf13/cobra"
)

var (
	simTrials    int
	simTickLimit int
	simSeed      int64
	simHorizon   float64
	simTargets   []string
	simJSON      bool
	simApply     bool
	simSave      bool
	simAdjusted  bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run one recompute and print the results",
	Long: `Simulate every target (or the ones given with --target) and print a
table of kill time, xp, gp, drop and pet rates. Ctrl-C stops after the
current target and prints what finished.

Targets are written as monster:<id>, dungeon:<id>, dungeon:<id>/<monster>
or task:<id>.`,
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.IntVar(&simTrials, "trials", 0, "Trials per target (overrides settings)")
	f.IntVar(&simTickLimit, "tick-limit", 0, "Tick budget per trial (overrides settings)")
	f.Int64Var(&simSeed, "seed", 0, "Batch seed (0 = settings, then random)")
	f.Float64Var(&simHorizon, "horizon", 0, "Probability horizon in seconds (overrides settings; negative = indefinite)")
	f.StringArrayVar(&simTargets, "target", nil, "Restrict to a target key (repeatable)")
	f.BoolVar(&simJSON, "json", false, "Print the result set as JSON")
	f.BoolVar(&simApply, "apply-rates", false, "Amortize consumable costs")
	f.BoolVar(&simSave, "save", false, "Store the run in the database")
	f.BoolVar(&simAdjusted, "adjusted", false, "Show amortized rates in the table")
}

func parseTargets(raw []string) ([]results.Key, error) {
	keys := make([]results.Key, 0, len(raw))
	for _, s := range raw {
		var k results.Key
		if err := k.UnmarshalText([]byte(s)); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	a, err := loadApp(simSave)
	if err != nil {
		return err
	}
	defer a.close()

	cfg := pipeline.FromSettings(a.cfg)
	flags := cmd.Flags()
	if flags.Changed("trials") {
		cfg.Trials = simTrials
	}
	if flags.Changed("tick-limit") {
		cfg.TickLimit = simTickLimit
	}
	if flags.Changed("seed") {
		cfg.Seed = simSeed
	}
	if flags.Changed("horizon") {
		cfg.Horizon = results.Horizon{Seconds: simHorizon}
	}
	if flags.Changed("apply-rates") {
		cfg.ApplyRates = simApply
	}
	if cfg.Trials <= 0 || cfg.TickLimit <= 0 {
		return fmt.Errorf("trials and tick limit must be positive")
	}
	if cfg.Targets, err = parseTargets(simTargets); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := pipeline.NewEngine(a.reg, a.build, a.costs)
	engine.OnProgress = func(p pipeline.Progress) {
		logger.Debug("Target simulated", "key", p.Key, "done", p.Done, "total", p.Total, "success", p.Success)
	}

	batch, err := engine.Recompute(ctx, cfg)
	if batch == nil {
		return err
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if simSave && a.db != nil {
		run := database.Run{
			ID:         batch.ID,
			StartedAt:  batch.StartedAt,
			FinishedAt: batch.FinishedAt,
			Seed:       batch.Seed,
			Targets:    batch.Results.Len(),
			Failed:     batch.Failed,
			Cancelled:  batch.Cancelled,
		}
		if err := a.db.SaveRun(run, batch.Results); err != nil {
			return fmt.Errorf("store run: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if simJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(batch.Results)
	}

	fmt.Fprintln(out, renderTable(batch.Results, simAdjusted))
	fmt.Fprintln(out, renderSummary(batch, cfg))
	return nil
}
