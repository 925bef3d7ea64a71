package consumables

import (
	"sort"

	"github.com/lawnchairsociety/killrate/internal/player"
	"github.com/lawnchairsociety/killrate/internal/results"
	"github.com/lawnchairsociety/killrate/internal/stats"
)

// Amortizer applies consumption costs to results for one build.
type Amortizer struct {
	costs *Costs
	build *player.Build
	apply bool
}

// NewAmortizer creates an amortizer. With apply false the factor is pinned
// at 1 and adjusted rates equal base rates.
func NewAmortizer(costs *Costs, build *player.Build, apply bool) *Amortizer {
	return &Amortizer{costs: costs, build: build, apply: apply}
}

// Factor is 1 + Σ consumedPerSecond × secondsPerUnit over every resource r
// consumes.
func (a *Amortizer) Factor(r results.Result) float64 {
	if !a.apply {
		return 1
	}
	b := a.build
	factor := 1.0
	add := func(rate stats.Rate, id string) {
		if v := rate.Or(0); v > 0 {
			factor += v * a.costs.CostInSeconds(id)
		}
	}

	add(r.PPConsumedPerSecond, CategoryPP)
	add(r.PotionsUsedPerSecond, b.Potion)
	add(r.AtePerSecond, b.Equipment.Food)
	for _, id := range sortedKeys(r.RunesUsedPerSecond) {
		add(r.RunesUsedPerSecond[id], id)
	}
	for _, id := range sortedKeys(r.CombinationRunesUsed) {
		add(r.CombinationRunesUsed[id], id)
	}
	add(r.AmmoUsedPerSecond, b.Equipment.Quiver)
	for _, s := range b.Equipment.Summons {
		add(r.TabletsUsedPerSecond[s.Item], s.Item)
	}
	return factor
}

func sortedKeys(m map[string]stats.Rate) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Adjust returns r with Factor and Adjusted filled. Throughput rates are
// divided by the factor; kill time is multiplied by it; gp uses the blend
// (k+a)/(k·factor+a) so alching time is not amortized at the combat rate.
func (a *Amortizer) Adjust(r results.Result) results.Result {
	f := a.Factor(r)
	r.Factor = f
	if f == 1 {
		r.Adjusted = results.Unadjusted(r)
		return r
	}

	div := stats.Of(f)
	adj := results.Adjusted{
		XPPerSecond:          r.XPPerSecond.Over(div),
		HPXPPerSecond:        r.HPXPPerSecond.Over(div),
		SlayerXPPerSecond:    r.SlayerXPPerSecond.Over(div),
		PrayerXPPerSecond:    r.PrayerXPPerSecond.Over(div),
		SummoningXPPerSecond: r.SummoningXPPerSecond.Over(div),
		DropChance:           r.DropChance.Over(div),
		SlayerCoinsPerSecond: r.SlayerCoinsPerSecond.Over(div),
		KillTimeS:            r.KillTimeS.Mul(f),
	}
	alch := stats.Of(a.build.AlchTimeS)
	gpFactor := r.KillTimeS.Plus(alch).Over(r.KillTimeS.Mul(f).Plus(alch))
	adj.GPPerSecond = r.GPPerSecond.Times(gpFactor)
	adj.KillsPerSecond = adj.KillTimeS.Inverse()

	r.Adjusted = adj
	return r
}

// Stage adjusts every result. Slayer task kill time is already the average
// per kill across the rotation, so it is scaled by the factor like any
// other target.
func (a *Amortizer) Stage(set results.Set) results.Set {
	return set.Transform(func(r results.Result, _ results.Set) results.Result {
		return a.Adjust(r)
	})
}
