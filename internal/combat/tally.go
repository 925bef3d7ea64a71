package combat

import (
	"fmt"
	"sort"
)

// Target identifies what a run fights: a monster in its own area, a monster
// slot within a dungeon, or a whole dungeon.
type Target struct {
	Monster      string
	Dungeon      string
	WholeDungeon bool
}

func (t Target) String() string {
	switch {
	case t.WholeDungeon:
		return "dungeon:" + t.Dungeon
	case t.Dungeon != "":
		return fmt.Sprintf("dungeon:%s/%s", t.Dungeon, t.Monster)
	default:
		return "monster:" + t.Monster
	}
}

// PetRoll counts player attacks made at one attack interval. Each attack is
// one pet roll.
type PetRoll struct {
	IntervalMs int
	Attacks    int
}

// Tally is the raw outcome of one run. It is owned by the caller once Run
// returns.
type Tally struct {
	Target  Target
	Success bool
	Partial bool
	Reason  string
	Err     error

	Trials int
	Ticks  int
	Kills  int
	Deaths int

	// MonsterKills counts individual monsters in whole-dungeon runs, where
	// Kills counts full clears.
	MonsterKills  int
	PlayerAttacks int
	DamageDealt   int

	// Pauses counts stops between monsters of a dungeon that pauses.
	Pauses int

	PrayerPoints     float64
	PotionCharges    float64
	Food             float64
	Runes            map[string]float64
	CombinationRunes map[string]float64
	Ammo             float64
	SummonCharges    map[string]float64

	XP          map[string]float64
	GP          float64
	SlayerCoins float64

	HighestDamageTaken int
	LowestHitpoints    int

	petRolls map[int]int
}

func newTally(target Target, trials int) *Tally {
	return &Tally{
		Target:           target,
		Trials:           trials,
		Runes:            make(map[string]float64),
		CombinationRunes: make(map[string]float64),
		SummonCharges:    make(map[string]float64),
		XP:               make(map[string]float64),
		petRolls:         make(map[int]int),
	}
}

// PetRolls returns one roll source per distinct attack interval, ordered by
// interval.
func (t Tally) PetRolls() []PetRoll {
	rolls := make([]PetRoll, 0, len(t.petRolls))
	for interval, n := range t.petRolls {
		rolls = append(rolls, PetRoll{IntervalMs: interval, Attacks: n})
	}
	sort.Slice(rolls, func(i, j int) bool { return rolls[i].IntervalMs < rolls[j].IntervalMs })
	return rolls
}

// Completed is the number of finished trials.
func (t Tally) Completed() int {
	return t.Kills + t.Deaths
}

// Seconds is the simulated time.
func (t Tally) Seconds() float64 {
	return float64(t.Ticks) / TicksPerSecond
}
