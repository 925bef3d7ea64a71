// Package results turns raw simulation tallies into per-second rates and
// aggregates them across grouped targets.
package results

import (
	"github.com/lawnchairsociety/killrate/internal/combat"
	"github.com/lawnchairsociety/killrate/internal/gamedata"
	"github.com/lawnchairsociety/killrate/internal/stats"
)

// combatSkills feed XPPerSecond.
var combatSkills = []string{
	gamedata.SkillAttack, gamedata.SkillStrength, gamedata.SkillDefence,
	gamedata.SkillRanged, gamedata.SkillMagic,
}

// PetSource is one independent pet-roll process: Speed is the attack
// interval in milliseconds.
type PetSource struct {
	Speed          float64 `json:"speed"`
	RollsPerSecond float64 `json:"rolls_per_second"`
}

// Adjusted holds the rates after consumption amortization.
type Adjusted struct {
	XPPerSecond          stats.Rate `json:"xp_per_second"`
	HPXPPerSecond        stats.Rate `json:"hp_xp_per_second"`
	SlayerXPPerSecond    stats.Rate `json:"slayer_xp_per_second"`
	PrayerXPPerSecond    stats.Rate `json:"prayer_xp_per_second"`
	SummoningXPPerSecond stats.Rate `json:"summoning_xp_per_second"`
	GPPerSecond          stats.Rate `json:"gp_per_second"`
	DropChance           stats.Rate `json:"drop_chance"`
	SlayerCoinsPerSecond stats.Rate `json:"slayer_coins_per_second"`
	KillTimeS            stats.Rate `json:"kill_time_s"`
	KillsPerSecond       stats.Rate `json:"kills_per_second"`
}

// Result is the immutable outcome for one target. Stages never modify a
// Result in place; they return an updated copy. Maps are shared between
// copies and must be treated as read-only.
type Result struct {
	Key     Key    `json:"key"`
	Success bool   `json:"success"`
	Partial bool   `json:"partial"`
	Reason  string `json:"reason,omitempty"`

	Trials int `json:"trials"`
	Ticks  int `json:"ticks"`
	Kills  int `json:"kills"`
	Deaths int `json:"deaths"`

	HighestDamageTaken int `json:"highest_damage_taken"`
	LowestHitpoints    int `json:"lowest_hitpoints"`

	KillTimeS      stats.Rate `json:"kill_time_s"`
	KillsPerSecond stats.Rate `json:"kills_per_second"`
	DeathRate      stats.Rate `json:"death_rate"`

	XPPerSecond          stats.Rate            `json:"xp_per_second"`
	HPXPPerSecond        stats.Rate            `json:"hp_xp_per_second"`
	SlayerXPPerSecond    stats.Rate            `json:"slayer_xp_per_second"`
	PrayerXPPerSecond    stats.Rate            `json:"prayer_xp_per_second"`
	SummoningXPPerSecond stats.Rate            `json:"summoning_xp_per_second"`
	SkillXPPerSecond     map[string]stats.Rate `json:"skill_xp_per_second,omitempty"`

	PPConsumedPerSecond  stats.Rate            `json:"pp_consumed_per_second"`
	PotionsUsedPerSecond stats.Rate            `json:"potions_used_per_second"`
	AtePerSecond         stats.Rate            `json:"ate_per_second"`
	AmmoUsedPerSecond    stats.Rate            `json:"ammo_used_per_second"`
	RunesUsedPerSecond   map[string]stats.Rate `json:"runes_used_per_second,omitempty"`
	CombinationRunesUsed map[string]stats.Rate `json:"combination_runes_per_second,omitempty"`
	TabletsUsedPerSecond map[string]stats.Rate `json:"tablets_used_per_second,omitempty"`

	BaseGPPerSecond      stats.Rate `json:"base_gp_per_second"`
	SlayerCoinsPerSecond stats.Rate `json:"slayer_coins_per_second"`

	PetSources []PetSource `json:"pet_sources,omitempty"`

	// Valuation, filled by the loot and pet stages.
	GPPerSecond  stats.Rate `json:"gp_per_second"`
	DropChance   stats.Rate `json:"drop_chance"`
	SignetChance stats.Rate `json:"signet_chance"`
	PetChance    stats.Rate `json:"pet_chance"`
	// Indefinite marks probabilities computed as per-kill rates instead of
	// cumulative chances over a horizon.
	Indefinite bool `json:"indefinite,omitempty"`

	// Amortization, filled by the consumables stage.
	Factor   float64  `json:"factor"`
	Adjusted Adjusted `json:"adjusted"`

	// Members are the member results of a dungeon or task, in sequence
	// order.
	Members []Key `json:"members,omitempty"`
}

// FromTally derives the base rates of a run. potionCapacity is the number of
// charges in one potion, used to express potion use in whole potions.
func FromTally(t combat.Tally, potionCapacity int) Result {
	r := Result{
		Key:                KeyOf(t.Target),
		Success:            t.Success,
		Partial:            t.Partial,
		Reason:             t.Reason,
		Trials:             t.Trials,
		Ticks:              t.Ticks,
		Kills:              t.Kills,
		Deaths:             t.Deaths,
		HighestDamageTaken: t.HighestDamageTaken,
		LowestHitpoints:    t.LowestHitpoints,
		Factor:             1,
	}

	seconds := t.Seconds()
	perSecond := func(total float64) stats.Rate {
		return stats.Div(total, seconds)
	}

	if t.Kills > 0 {
		r.KillTimeS = stats.Div(seconds, float64(t.Kills))
	}
	r.KillsPerSecond = r.KillTimeS.Inverse()
	r.DeathRate = stats.Div(float64(t.Deaths), float64(t.Kills+t.Deaths))

	combatXP := 0.0
	r.SkillXPPerSecond = make(map[string]stats.Rate, len(t.XP))
	for skill, xp := range t.XP {
		r.SkillXPPerSecond[skill] = perSecond(xp)
	}
	for _, s := range combatSkills {
		combatXP += t.XP[s]
	}
	r.XPPerSecond = perSecond(combatXP)
	r.HPXPPerSecond = perSecond(t.XP[gamedata.SkillHitpoints])
	r.SlayerXPPerSecond = perSecond(t.XP[gamedata.SkillSlayer])
	r.PrayerXPPerSecond = perSecond(t.XP[gamedata.SkillPrayer])
	r.SummoningXPPerSecond = perSecond(t.XP[gamedata.SkillSummoning])

	r.PPConsumedPerSecond = perSecond(t.PrayerPoints)
	r.PotionsUsedPerSecond = perSecond(t.PotionCharges).Mul(1 / float64(max(1, potionCapacity)))
	r.AtePerSecond = perSecond(t.Food)
	r.AmmoUsedPerSecond = perSecond(t.Ammo)
	r.RunesUsedPerSecond = perSecondMap(t.Runes, seconds)
	r.CombinationRunesUsed = perSecondMap(t.CombinationRunes, seconds)
	r.TabletsUsedPerSecond = perSecondMap(t.SummonCharges, seconds)

	r.BaseGPPerSecond = perSecond(t.GP)
	r.GPPerSecond = r.BaseGPPerSecond
	r.SlayerCoinsPerSecond = perSecond(t.SlayerCoins)

	for _, roll := range t.PetRolls() {
		r.PetSources = append(r.PetSources, PetSource{
			Speed:          float64(roll.IntervalMs),
			RollsPerSecond: perSecond(float64(roll.Attacks)).Or(0),
		})
	}

	r.Adjusted = Unadjusted(r)
	return r
}

func perSecondMap(totals map[string]float64, seconds float64) map[string]stats.Rate {
	out := make(map[string]stats.Rate, len(totals))
	for id, total := range totals {
		out[id] = stats.Div(total, seconds)
	}
	return out
}

// Unadjusted copies the base rates into an Adjusted, as if the
// amortization factor were 1.
func Unadjusted(r Result) Adjusted {
	return Adjusted{
		XPPerSecond:          r.XPPerSecond,
		HPXPPerSecond:        r.HPXPPerSecond,
		SlayerXPPerSecond:    r.SlayerXPPerSecond,
		PrayerXPPerSecond:    r.PrayerXPPerSecond,
		SummoningXPPerSecond: r.SummoningXPPerSecond,
		GPPerSecond:          r.GPPerSecond,
		DropChance:           r.DropChance,
		SlayerCoinsPerSecond: r.SlayerCoinsPerSecond,
		KillTimeS:            r.KillTimeS,
		KillsPerSecond:       r.KillsPerSecond,
	}
}

// Failed builds an unsuccessful result with every rate undefined.
func Failed(key Key, reason string) Result {
	r := Result{Key: key, Reason: reason, Factor: 1}
	r.Adjusted = Unadjusted(r)
	return r
}
