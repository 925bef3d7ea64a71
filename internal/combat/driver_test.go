package combat_test

import (
	"testing"

	"github.com/lawnchairsociety/killrate/internal/combat"
	"github.com/lawnchairsociety/killrate/internal/gamedata"
	"github.com/lawnchairsociety/killrate/internal/gamedata/gamedatatest"
	"github.com/lawnchairsociety/killrate/internal/player"
	"github.com/lawnchairsociety/killrate/internal/player/playertest"
	"github.com/lawnchairsociety/killrate/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, b *player.Build, target combat.Target, trials, tickLimit int, seed int64) combat.Tally {
	t.Helper()
	d := combat.NewDriver(gamedatatest.Registry(), b)
	return d.Run(combat.Request{
		Target:    target,
		Trials:    trials,
		TickLimit: tickLimit,
		Source:    stats.NewSource(seed),
	})
}

func TestHitChance(t *testing.T) {
	tests := []struct {
		acc, eva int
		want     float64
	}{
		{100, 100, 0.5},
		{50, 100, 0.25},
		{200, 100, 0.75},
		{0, 100, 0},
		{100, 0, 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, combat.HitChance(tt.acc, tt.eva), 1e-12, "acc=%d eva=%d", tt.acc, tt.eva)
	}
}

func TestRunIsDeterministicForSeed(t *testing.T) {
	target := combat.Target{Monster: "chicken"}
	a := run(t, playertest.Build(), target, 25, 1000, 42)
	b := run(t, playertest.Build(), target, 25, 1000, 42)
	assert.Equal(t, a, b)
}

func TestRunMonster(t *testing.T) {
	const trials, tickLimit = 50, 1000
	tally := run(t, playertest.Build(), combat.Target{Monster: "chicken"}, trials, tickLimit, 1)

	require.True(t, tally.Success, tally.Reason)
	assert.False(t, tally.Partial)
	assert.Equal(t, trials, tally.Kills+tally.Deaths)
	assert.Positive(t, tally.Kills)
	assert.LessOrEqual(t, tally.Ticks, trials*tickLimit)
	assert.Positive(t, tally.GP)
	assert.Positive(t, tally.XP[gamedata.SkillStrength])
	assert.Zero(t, tally.XP[gamedata.SkillAttack])
	assert.Positive(t, tally.XP[gamedata.SkillHitpoints])

	b := playertest.Build()
	attacks := float64(tally.PlayerAttacks)
	assert.Equal(t, attacks*b.PrayerPointsPerAttack, tally.PrayerPoints)
	assert.Equal(t, attacks, tally.PotionCharges)
	assert.Equal(t, attacks, tally.SummonCharges["wolf_tablet"])
	assert.InDelta(t, attacks*5, tally.XP[gamedata.SkillSummoning], 1e-9)

	rolls := tally.PetRolls()
	require.Len(t, rolls, 1)
	assert.Equal(t, 2400, rolls[0].IntervalMs)
	assert.Equal(t, tally.PlayerAttacks, rolls[0].Attacks)
}

func TestRunSoftTimeout(t *testing.T) {
	tally := run(t, playertest.Build(), combat.Target{Monster: "chicken"}, 5, 10, 1)

	assert.True(t, tally.Success)
	assert.True(t, tally.Partial)
	assert.Equal(t, "simulated 0/5 trials", tally.Reason)
	assert.Equal(t, 50, tally.Ticks)
}

func TestRunRequirementsNotMet(t *testing.T) {
	b := playertest.Build()
	b.Levels[gamedata.SkillSlayer] = 10

	tally := run(t, b, combat.Target{Monster: "imp"}, 10, 1000, 1)
	assert.False(t, tally.Success)
	assert.ErrorIs(t, tally.Err, combat.ErrRequirementsNotMet)
	assert.NotEmpty(t, tally.Reason)
	assert.Zero(t, tally.Ticks)
	assert.Zero(t, tally.Kills+tally.Deaths)

	tally = run(t, playertest.Build(), combat.Target{Dungeon: "barn", WholeDungeon: true}, 10, 1000, 1)
	assert.False(t, tally.Success)
	assert.ErrorIs(t, tally.Err, combat.ErrRequirementsNotMet)
	assert.Zero(t, tally.Ticks)
}

func TestRunUnknownTarget(t *testing.T) {
	tally := run(t, playertest.Build(), combat.Target{Monster: "dragon"}, 10, 1000, 1)
	assert.False(t, tally.Success)
	assert.ErrorIs(t, tally.Err, combat.ErrUnknownTarget)

	tally = run(t, playertest.Build(), combat.Target{Monster: "imp", Dungeon: "barn"}, 10, 1000, 1)
	assert.ErrorIs(t, tally.Err, combat.ErrUnknownTarget)
}

func TestRunWholeDungeon(t *testing.T) {
	b := playertest.Build()
	b.Equipment.Items = []string{"amulet"}

	tally := run(t, b, combat.Target{Dungeon: "barn", WholeDungeon: true}, 5, 2000, 7)
	require.True(t, tally.Success, tally.Reason)
	assert.Equal(t, 5, tally.Kills)
	assert.Zero(t, tally.Deaths)
	assert.Equal(t, 10, tally.MonsterKills)
	assert.Equal(t, 5, tally.Pauses, "barn pauses once after each chicken")
	// Only the final cow drops coins, a flat 5 each.
	assert.Equal(t, 25.0, tally.GP)
	assert.Zero(t, tally.SlayerCoins)
}

func TestRunWholeDungeonRetriesCurrentMonsterAfterDeath(t *testing.T) {
	const trials = 200
	b := playertest.Build()
	b.Equipment.Items = []string{"amulet"}
	b.Equipment.Food = ""
	b.AutoEatPercent = 0
	b.Defense.Hitpoints = 15
	b.Defense.Evasion = gamedata.Evasion{Melee: 20, Ranged: 20, Magic: 20}

	tally := run(t, b, combat.Target{Dungeon: "barn", WholeDungeon: true}, trials, 2000, 11)
	require.True(t, tally.Success, tally.Reason)
	assert.False(t, tally.Partial)
	assert.Equal(t, trials, tally.Kills+tally.Deaths)
	assert.Positive(t, tally.Kills)
	assert.Positive(t, tally.Deaths)
	assert.Zero(t, tally.LowestHitpoints)

	// A death keeps the chicken kill, so at most one monster of an
	// unfinished clear is left over.
	extra := tally.MonsterKills - 2*tally.Kills
	assert.GreaterOrEqual(t, extra, 0)
	assert.LessOrEqual(t, extra, 1)
	assert.Equal(t, tally.MonsterKills-tally.Kills, tally.Pauses)
}

func TestRunWholeDungeonPauseTakesNoTime(t *testing.T) {
	b := playertest.Build()
	b.Equipment.Items = []string{"amulet"}
	target := combat.Target{Dungeon: "barn", WholeDungeon: true}

	paused := run(t, b, target, 20, 2000, 5)
	require.Positive(t, paused.Pauses)

	reg := gamedatatest.Registry()
	reg.Dungeons["barn"].PauseBetween = false
	straight := combat.NewDriver(reg, b).Run(combat.Request{
		Target:    target,
		Trials:    20,
		TickLimit: 2000,
		Source:    stats.NewSource(5),
	})
	assert.Zero(t, straight.Pauses)

	paused.Pauses = 0
	assert.Equal(t, straight, paused)
}

func TestRunDungeonSlot(t *testing.T) {
	b := playertest.Build()
	b.Equipment.Items = []string{"amulet"}

	tally := run(t, b, combat.Target{Monster: "chicken", Dungeon: "barn"}, 10, 1000, 7)
	require.True(t, tally.Success, tally.Reason)
	assert.Equal(t, 10, tally.Kills)
	assert.Zero(t, tally.GP, "non-final dungeon monsters drop no coins")
}

func TestRunSlayerRewards(t *testing.T) {
	b := playertest.Build()
	b.SlayerTask = true

	tally := run(t, b, combat.Target{Monster: "imp"}, 10, 3000, 3)
	require.True(t, tally.Success, tally.Reason)
	require.Positive(t, tally.Kills)

	// 150 hp imp in a slayer area on task: 75 + 150 slayer xp per kill.
	assert.InDelta(t, float64(tally.Kills)*225, tally.XP[gamedata.SkillSlayer], 1e-9)
	assert.InDelta(t, float64(tally.Kills)*15, tally.SlayerCoins, 1e-9)
}

func TestRunMagicRunes(t *testing.T) {
	tally := run(t, playertest.Mage(), combat.Target{Monster: "chicken"}, 10, 1000, 5)
	require.True(t, tally.Success, tally.Reason)

	attacks := float64(tally.PlayerAttacks)
	assert.Equal(t, 2*attacks, tally.Runes["air_rune"])
	assert.Equal(t, attacks, tally.CombinationRunes["smoke_rune"])
	assert.NotContains(t, tally.Runes, "smoke_rune")
	assert.Positive(t, tally.XP[gamedata.SkillMagic])
	assert.InDelta(t, tally.XP[gamedata.SkillMagic], tally.XP[gamedata.SkillDefence], 1e-9)
}

func TestRunRangedAmmo(t *testing.T) {
	tally := run(t, playertest.Archer(), combat.Target{Monster: "chicken"}, 10, 1000, 5)
	assert.Equal(t, float64(tally.PlayerAttacks), tally.Ammo)

	b := playertest.Archer()
	b.Modifiers.AmmoPreservationPercent = 100
	tally = run(t, b, combat.Target{Monster: "chicken"}, 10, 1000, 5)
	assert.Zero(t, tally.Ammo)
}

func TestRunUnbeatableMonster(t *testing.T) {
	b := playertest.Build()
	b.Equipment.Food = ""

	tally := run(t, b, combat.Target{Monster: "giant"}, 3, 5000, 11)
	assert.True(t, tally.Success)
	assert.Zero(t, tally.Kills)
	assert.Equal(t, 3, tally.Deaths)
	assert.Zero(t, tally.LowestHitpoints)
	assert.Positive(t, tally.HighestDamageTaken)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "spawning", combat.Spawning.String())
	assert.Equal(t, "paused", combat.Paused.String())
}
