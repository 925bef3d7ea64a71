package results

import (
	"github.com/lawnchairsociety/killrate/internal/stats"
)

// Property reads one rate from a result.
type Property func(Result) stats.Rate

// TimeWeighted combines a property across members weighted by kill time:
// Σ(P·killTimeS)/Σ killTimeS. It is undefined if any member's property or
// kill time is undefined, or the total time is zero.
func TimeWeighted(p Property, members []Result) stats.Rate {
	if len(members) == 0 {
		return stats.Undefined
	}
	weighted, total := 0.0, 0.0
	for _, m := range members {
		v, ok := p(m).Value()
		k, kok := m.KillTimeS.Value()
		if !ok || !kok {
			return stats.Undefined
		}
		weighted += v * k
		total += k
	}
	return stats.Div(weighted, total)
}

func timeWeightedMap(get func(Result) map[string]stats.Rate, members []Result) map[string]stats.Rate {
	ids := make(map[string]bool)
	for _, m := range members {
		for id := range get(m) {
			ids[id] = true
		}
	}
	out := make(map[string]stats.Rate, len(ids))
	for id := range ids {
		out[id] = TimeWeighted(func(r Result) stats.Rate {
			if v, ok := get(r)[id]; ok {
				return v
			}
			if r.KillTimeS.Defined() {
				return stats.Of(0)
			}
			return stats.Undefined
		}, members)
	}
	return out
}

// TaskResult aggregates a slayer task from its member monster results. Rates
// are time-weighted; kill time is the average time per kill across the
// rotation.
func TaskResult(key Key, members []Result) Result {
	r := Result{Key: key, Success: len(members) > 0, Factor: 1}
	if len(members) == 0 {
		r.Reason = "no member monsters"
	}

	killTime := 0.0
	killTimeOK := len(members) > 0
	for i, m := range members {
		r.Members = append(r.Members, m.Key)
		r.Trials += m.Trials
		r.Ticks += m.Ticks
		r.Kills += m.Kills
		r.Deaths += m.Deaths
		r.HighestDamageTaken = max(r.HighestDamageTaken, m.HighestDamageTaken)
		if i == 0 || m.LowestHitpoints < r.LowestHitpoints {
			r.LowestHitpoints = m.LowestHitpoints
		}
		r.Partial = r.Partial || m.Partial
		if !m.Success && r.Success {
			r.Success = false
			r.Reason = m.Key.String() + ": " + m.Reason
		}
		if k, ok := m.KillTimeS.Value(); ok {
			killTime += k
		} else {
			killTimeOK = false
		}
	}

	if killTimeOK {
		r.KillTimeS = stats.Div(killTime, float64(len(members)))
	}
	r.KillsPerSecond = r.KillTimeS.Inverse()
	r.DeathRate = stats.Div(float64(r.Deaths), float64(r.Kills+r.Deaths))

	tw := func(p Property) stats.Rate { return TimeWeighted(p, members) }
	r.XPPerSecond = tw(func(m Result) stats.Rate { return m.XPPerSecond })
	r.HPXPPerSecond = tw(func(m Result) stats.Rate { return m.HPXPPerSecond })
	r.SlayerXPPerSecond = tw(func(m Result) stats.Rate { return m.SlayerXPPerSecond })
	r.PrayerXPPerSecond = tw(func(m Result) stats.Rate { return m.PrayerXPPerSecond })
	r.SummoningXPPerSecond = tw(func(m Result) stats.Rate { return m.SummoningXPPerSecond })
	r.PPConsumedPerSecond = tw(func(m Result) stats.Rate { return m.PPConsumedPerSecond })
	r.PotionsUsedPerSecond = tw(func(m Result) stats.Rate { return m.PotionsUsedPerSecond })
	r.AtePerSecond = tw(func(m Result) stats.Rate { return m.AtePerSecond })
	r.AmmoUsedPerSecond = tw(func(m Result) stats.Rate { return m.AmmoUsedPerSecond })
	r.BaseGPPerSecond = tw(func(m Result) stats.Rate { return m.BaseGPPerSecond })
	r.GPPerSecond = tw(func(m Result) stats.Rate { return m.GPPerSecond })
	r.SlayerCoinsPerSecond = tw(func(m Result) stats.Rate { return m.SlayerCoinsPerSecond })

	r.SkillXPPerSecond = timeWeightedMap(func(m Result) map[string]stats.Rate { return m.SkillXPPerSecond }, members)
	r.RunesUsedPerSecond = timeWeightedMap(func(m Result) map[string]stats.Rate { return m.RunesUsedPerSecond }, members)
	r.CombinationRunesUsed = timeWeightedMap(func(m Result) map[string]stats.Rate { return m.CombinationRunesUsed }, members)
	r.TabletsUsedPerSecond = timeWeightedMap(func(m Result) map[string]stats.Rate { return m.TabletsUsedPerSecond }, members)

	r.Adjusted = Unadjusted(r)
	return r
}

// DungeonResult attaches the dungeon's slot results, in sequence order, to a
// whole-dungeon result so later stages can split its time between monsters.
func DungeonResult(whole Result, slots []Result) Result {
	r := whole
	r.Members = make([]Key, 0, len(slots))
	for _, s := range slots {
		r.Members = append(r.Members, s.Key)
	}
	return r
}

// Horizon is the time window probabilities are reported over. A
// non-positive Seconds means indefinite: probabilities are reported per kill
// instead of accumulated.
type Horizon struct {
	Seconds float64
}

// Indefinite reports whether the horizon is unbounded.
func (h Horizon) Indefinite() bool {
	return h.Seconds <= 0
}
