package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/lawnchairsociety/killrate/internal/pipeline"
	"github.com/lawnchairsociety/killrate/internal/results"
	"github.com/lawnchairsociety/killrate/internal/stats"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	failedStyle = cellStyle.Foreground(lipgloss.Color("241"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("57"))
)

// fmtRate prints an undefined rate as "-".
func fmtRate(r stats.Rate, digits int) string {
	v, ok := r.Value()
	if !ok {
		return "-"
	}
	return humanize.FormatFloat("#,###."+strings.Repeat("#", digits), v)
}

// fmtGP prints gp per second as gp per hour with thousands separators.
func fmtGP(r stats.Rate) string {
	v, ok := r.Value()
	if !ok {
		return "-"
	}
	return humanize.Commaf(float64(int64(v*3600))) + "/h"
}

func fmtPercent(r stats.Rate) string {
	v, ok := r.Value()
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.3g%%", v)
}

// row renders one result; adjusted selects the amortized rates.
func row(r results.Result, adjusted bool) []string {
	if !r.Success {
		return []string{r.Key.String(), "-", "-", "-", "-", "-", "-", "-", r.Reason}
	}

	kill, xp, gp, drop := r.KillTimeS, r.XPPerSecond, r.GPPerSecond, r.DropChance
	if adjusted {
		kill, xp, gp, drop = r.Adjusted.KillTimeS, r.Adjusted.XPPerSecond, r.Adjusted.GPPerSecond, r.Adjusted.DropChance
	}
	note := r.Reason
	if r.Factor > 1 {
		note = strings.TrimSpace(fmt.Sprintf("x%.3f %s", r.Factor, note))
	}
	return []string{
		r.Key.String(),
		fmtRate(kill, 2),
		fmtRate(xp, 2),
		fmtGP(gp),
		fmtRate(r.DeathRate, 3),
		fmtRate(drop, 5),
		fmtPercent(r.SignetChance),
		fmtPercent(r.PetChance),
		note,
	}
}

func renderTable(set results.Set, adjusted bool) string {
	all := set.All()
	failed := make(map[int]bool)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("TARGET", "KILL S", "XP/S", "GP", "DEATHS", "DROP/S", "SIGNET", "PET", "NOTE").
		StyleFunc(func(r, c int) lipgloss.Style {
			switch {
			case r == table.HeaderRow:
				return headerStyle
			case failed[r]:
				return failedStyle
			default:
				return cellStyle
			}
		})
	for i, r := range all {
		failed[i] = !r.Success
		t.Row(row(r, adjusted)...)
	}
	return t.Render()
}

func renderSummary(b *pipeline.Batch, cfg pipeline.Config) string {
	horizon := "indefinite"
	if !cfg.Horizon.Indefinite() {
		horizon = humanize.Comma(int64(cfg.Horizon.Seconds)) + "s"
	}
	status := "complete"
	if b.Cancelled {
		status = "cancelled"
	}
	return titleStyle.Render(fmt.Sprintf("batch %s", b.ID)) +
		fmt.Sprintf(" %s: %d results, %d failed, seed %d, horizon %s, %s",
			status, b.Results.Len(), b.Failed, b.Seed, horizon, b.FinishedAt.Sub(b.StartedAt).Round(time.Millisecond))
}
