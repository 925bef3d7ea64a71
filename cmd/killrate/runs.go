package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent recompute history",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 10, "Number of runs to show")
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet. Use 'killrate simulate --save' or 'killrate serve'.")
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  %-36s  %-14s  %7s  %6s  %s\n", "ID", "Started", "Targets", "Failed", "Status")
	for _, r := range runs {
		status := "complete"
		switch {
		case r.Cancelled:
			status = "cancelled"
		case r.FinishedAt.IsZero():
			status = "unfinished"
		}
		fmt.Fprintf(out, "  %-36s  %-14s  %7d  %6d  %s\n", r.ID, humanize.Time(r.StartedAt), r.Targets, r.Failed, status)
	}
	return nil
}
