package main

import (
	"context"
	"strings"
	"testing"

	"github.com/lawnchairsociety/killrate/internal/consumables"
	"github.com/lawnchairsociety/killrate/internal/gamedata"
	"github.com/lawnchairsociety/killrate/internal/pipeline"
	"github.com/lawnchairsociety/killrate/internal/player"
	"github.com/lawnchairsociety/killrate/internal/results"
	"github.com/lawnchairsociety/killrate/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatting(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"undefined rate", fmtRate(stats.Undefined, 2), "-"},
		{"rate", fmtRate(stats.Of(1234.5), 2), "1,234.50"},
		{"undefined gp", fmtGP(stats.Undefined), "-"},
		{"gp per hour", fmtGP(stats.Of(1)), "3,600/h"},
		{"percent", fmtPercent(stats.Of(12.5)), "12.5%"},
		{"undefined percent", fmtPercent(stats.Undefined), "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestRowFailedResult(t *testing.T) {
	r := results.Failed(results.MonsterKey("imp"), "simulated 3/1000 trials")
	cells := row(r, false)
	require.Len(t, cells, 9)
	assert.Equal(t, "monster:imp", cells[0])
	assert.Equal(t, "-", cells[1])
	assert.Equal(t, "simulated 3/1000 trials", cells[8])
}

func TestRowAdjusted(t *testing.T) {
	r := results.Result{
		Key:         results.MonsterKey("cow"),
		Success:     true,
		KillTimeS:   stats.Of(10),
		XPPerSecond: stats.Of(4),
		GPPerSecond: stats.Of(2),
		Factor:      1.25,
		Adjusted: results.Adjusted{
			KillTimeS:   stats.Of(12.5),
			XPPerSecond: stats.Of(3.2),
			GPPerSecond: stats.Of(1.6),
		},
	}
	assert.Equal(t, "10.00", row(r, false)[1])
	assert.Equal(t, "12.50", row(r, true)[1])
	assert.Equal(t, "x1.250", row(r, true)[8])
}

func TestParseTargets(t *testing.T) {
	keys, err := parseTargets([]string{"monster:cow", "dungeon:chicken_coop", "dungeon:chicken_coop/cow", "task:easy"})
	require.NoError(t, err)
	assert.Equal(t, []results.Key{
		results.MonsterKey("cow"),
		results.DungeonKey("chicken_coop"),
		results.SlotKey("cow", "chicken_coop"),
		results.TaskKey("easy"),
	}, keys)

	_, err = parseTargets([]string{"cow"})
	assert.Error(t, err)
}

// The shipped reference data and build must load and simulate.
func TestShippedData(t *testing.T) {
	reg, err := gamedata.LoadRegistryFromYAML("../../data")
	require.NoError(t, err)
	build, err := player.LoadBuild("../../data/build.yaml")
	require.NoError(t, err)

	engine := pipeline.NewEngine(reg, build, consumables.NewCosts(reg))
	batch, err := engine.Recompute(context.Background(), pipeline.Config{
		Trials:    20,
		TickLimit: 1000,
		Seed:      7,
		Horizon:   results.Horizon{Seconds: 3600},
		PetSkill:  gamedata.SkillStrength,
		Targets:   []results.Key{results.MonsterKey("chicken"), results.TaskKey("easy")},
	})
	require.NoError(t, err)

	chicken, ok := batch.Results.Get(results.MonsterKey("chicken"))
	require.True(t, ok)
	assert.True(t, chicken.Success, chicken.Reason)

	out := renderTable(batch.Results, false)
	assert.True(t, strings.Contains(out, "monster:chicken"))
	assert.Contains(t, out, "task:easy")
}
