package results_test

import (
	"encoding/json"
	"testing"

	"github.com/lawnchairsociety/killrate/internal/combat"
	"github.com/lawnchairsociety/killrate/internal/gamedata"
	"github.com/lawnchairsociety/killrate/internal/results"
	"github.com/lawnchairsociety/killrate/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func member(id string, killTimeS, gpPerSecond float64) results.Result {
	return results.Result{
		Key:         results.MonsterKey(id),
		Success:     true,
		KillTimeS:   stats.Of(killTimeS),
		GPPerSecond: stats.Of(gpPerSecond),
		XPPerSecond: stats.Of(1),
	}
}

func TestFromTally(t *testing.T) {
	tally := combat.Tally{
		Target:        combat.Target{Monster: "chicken"},
		Success:       true,
		Trials:        10,
		Ticks:         2000,
		Kills:         8,
		Deaths:        2,
		XP:            map[string]float64{gamedata.SkillStrength: 400, gamedata.SkillHitpoints: 133},
		GP:            500,
		PotionCharges: 40,
		Runes:         map[string]float64{"air_rune": 200},
	}

	r := results.FromTally(tally, 4)

	assert.Equal(t, results.MonsterKey("chicken"), r.Key)
	assert.True(t, r.Success)
	assertRate(t, 12.5, r.KillTimeS)
	assertRate(t, 0.08, r.KillsPerSecond)
	assertRate(t, 0.2, r.DeathRate)
	assertRate(t, 4, r.XPPerSecond)
	assertRate(t, 1.33, r.HPXPPerSecond)
	assertRate(t, 5, r.BaseGPPerSecond)
	assertRate(t, 5, r.GPPerSecond)
	assertRate(t, 0.1, r.PotionsUsedPerSecond)
	assertRate(t, 2, r.RunesUsedPerSecond["air_rune"])
	assert.Equal(t, 1.0, r.Factor)
	assert.Equal(t, r.KillTimeS, r.Adjusted.KillTimeS)
}

func TestFromTallyNoKillsIsUndefined(t *testing.T) {
	tally := combat.Tally{
		Target:  combat.Target{Monster: "giant"},
		Success: true,
		Trials:  3,
		Ticks:   900,
		Deaths:  3,
	}

	r := results.FromTally(tally, 1)

	assert.False(t, r.KillTimeS.Defined())
	assert.False(t, r.KillsPerSecond.Defined())
	assertRate(t, 1, r.DeathRate)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kill_time_s":null`)
}

func TestFromTallyFailedRunIsUndefined(t *testing.T) {
	r := results.FromTally(combat.Tally{Target: combat.Target{Monster: "imp"}, Reason: "requires Slayer level 20"}, 1)

	assert.False(t, r.Success)
	assert.False(t, r.KillTimeS.Defined())
	assert.False(t, r.DeathRate.Defined())
	assert.False(t, r.XPPerSecond.Defined())
	assert.Equal(t, "requires Slayer level 20", r.Reason)
}

func TestTimeWeightedTaskExample(t *testing.T) {
	members := []results.Result{member("slow", 10, 5), member("fast", 2, 50)}

	gp := results.TimeWeighted(func(r results.Result) stats.Rate { return r.GPPerSecond }, members)
	assertRate(t, 12.5, gp)

	task := results.TaskResult(results.TaskKey("pair"), members)
	assert.True(t, task.Success)
	assertRate(t, 12.5, task.GPPerSecond)
	assertRate(t, 6, task.KillTimeS)
	assertRate(t, 1, task.XPPerSecond)
	assert.Equal(t, []results.Key{results.MonsterKey("slow"), results.MonsterKey("fast")}, task.Members)
}

func TestTimeWeightedUndefinedMember(t *testing.T) {
	broken := member("broken", 0, 1)
	broken.KillTimeS = stats.Undefined
	members := []results.Result{member("ok", 10, 5), broken}

	gp := results.TimeWeighted(func(r results.Result) stats.Rate { return r.GPPerSecond }, members)
	assert.False(t, gp.Defined())
	assert.False(t, results.TimeWeighted(func(r results.Result) stats.Rate { return r.GPPerSecond }, nil).Defined())

	task := results.TaskResult(results.TaskKey("t"), members)
	assert.False(t, task.KillTimeS.Defined())
}

func TestTaskResultFailedMember(t *testing.T) {
	failed := results.Failed(results.MonsterKey("imp"), "requires Slayer level 20")
	task := results.TaskResult(results.TaskKey("t"), []results.Result{member("ok", 10, 5), failed})

	assert.False(t, task.Success)
	assert.Contains(t, task.Reason, "monster:imp")
}

func TestTaskResultKeepsLowestHitpointsOfDeath(t *testing.T) {
	died := member("bandit", 8, 3)
	died.LowestHitpoints, died.Deaths = 0, 3
	safe := member("cow", 4, 1)
	safe.LowestHitpoints = 50

	for _, order := range [][]results.Result{{died, safe}, {safe, died}} {
		task := results.TaskResult(results.TaskKey("t"), order)
		assert.Equal(t, 0, task.LowestHitpoints)
		assert.Equal(t, 3, task.Deaths)
	}
}

func TestKeys(t *testing.T) {
	tests := []struct {
		key  results.Key
		kind results.Kind
		text string
	}{
		{results.MonsterKey("cow"), results.KindMonster, "monster:cow"},
		{results.SlotKey("imp", "fire_temple"), results.KindSlot, "dungeon:fire_temple/imp"},
		{results.DungeonKey("fire_temple"), results.KindDungeon, "dungeon:fire_temple"},
		{results.TaskKey("farm_animals"), results.KindTask, "task:farm_animals"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.key.Kind())
			assert.Equal(t, tt.text, tt.key.String())

			var parsed results.Key
			require.NoError(t, parsed.UnmarshalText([]byte(tt.text)))
			assert.Equal(t, tt.key, parsed)
		})
	}

	target, ok := results.DungeonKey("barn").Target()
	assert.True(t, ok)
	assert.True(t, target.WholeDungeon)
	_, ok = results.TaskKey("x").Target()
	assert.False(t, ok)
}

func TestSetTransformSeesMembers(t *testing.T) {
	a, b := member("a", 10, 5), member("b", 2, 50)
	task := results.TaskResult(results.TaskKey("t"), []results.Result{a, b})
	set := results.NewSet(task, b, a)

	all := set.All()
	require.Len(t, all, 3)
	assert.Equal(t, results.KindTask, all[2].Key.Kind())

	doubled := set.Transform(func(r results.Result, done results.Set) results.Result {
		if r.Key.Kind() == results.KindTask {
			r.GPPerSecond = results.TimeWeighted(func(m results.Result) stats.Rate { return m.GPPerSecond }, done.Members(r))
			return r
		}
		r.GPPerSecond = r.GPPerSecond.Mul(2)
		return r
	})

	got, ok := doubled.Get(results.TaskKey("t"))
	require.True(t, ok)
	assertRate(t, 25, got.GPPerSecond)

	orig, _ := set.Get(results.MonsterKey("a"))
	assertRate(t, 5, orig.GPPerSecond)
}

func assertRate(t *testing.T, want float64, r stats.Rate) {
	t.Helper()
	v, ok := r.Value()
	if assert.True(t, ok, "rate undefined, want %v", want) {
		assert.InDelta(t, want, v, 1e-9)
	}
}
