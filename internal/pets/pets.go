// Package pets estimates the chance of a skill pet over a time horizon from
// the independent roll sources a simulation produced.
package pets

import (
	"math"

	"github.com/lawnchairsociety/killrate/internal/gamedata"
	"github.com/lawnchairsociety/killrate/internal/player"
	"github.com/lawnchairsociety/killrate/internal/results"
	"github.com/lawnchairsociety/killrate/internal/stats"
)

// RollDivisor scales a roll's success chance: speed × level / RollDivisor.
const RollDivisor = 25e9

// FailureChance is the probability that source never rolls the pet in
// seconds of play at the given skill level.
func FailureChance(src results.PetSource, level int, seconds float64) float64 {
	p := src.Speed * float64(level) / RollDivisor
	p = math.Min(1, math.Max(0, p))
	return math.Pow(1-p, src.RollsPerSecond*seconds)
}

// Chance is the percentage chance of at least one pet from any of sources
// over seconds.
func Chance(sources []results.PetSource, level int, seconds float64) float64 {
	fail := 1.0
	for _, src := range sources {
		fail *= FailureChance(src, level, seconds)
	}
	return 100 * (1 - fail)
}

// Estimator computes pet chances for one configured pet skill.
type Estimator struct {
	build *player.Build
	skill string
}

// NewEstimator creates an estimator for the pet of skill.
func NewEstimator(build *player.Build, skill string) *Estimator {
	return &Estimator{build: build, skill: skill}
}

// Eligible reports whether the configured skill can currently roll its pet.
func (e *Estimator) Eligible() bool {
	return gamedata.IsSkill(e.skill) && e.build.PetSkills(e.build.SlayerTask)[e.skill]
}

// Stage fills PetChance for every result in the set.
func (e *Estimator) Stage(set results.Set, h results.Horizon) results.Set {
	eligible := e.Eligible()
	// The current level is used as is, with no +1 for the level being trained.
	level := e.build.Level(e.skill)

	return set.Transform(func(r results.Result, done results.Set) results.Result {
		switch {
		case !eligible || !r.Success:
			r.PetChance = stats.Of(0)
		case r.Key.Kind() == results.KindMonster || r.Key.Kind() == results.KindSlot:
			r.PetChance = e.single(r, level, h)
		case r.Key.Kind() == results.KindDungeon && e.skill == gamedata.SkillSlayer:
			r.PetChance = stats.Of(0)
		default:
			r.PetChance = e.group(r, done.Members(r), level, h)
		}
		return r
	})
}

func horizonFor(killTimeS stats.Rate, h results.Horizon) (float64, bool) {
	if h.Indefinite() {
		return killTimeS.Value()
	}
	return h.Seconds, true
}

func (e *Estimator) single(r results.Result, level int, h results.Horizon) stats.Rate {
	seconds, ok := horizonFor(r.KillTimeS, h)
	if !ok {
		return stats.Undefined
	}
	return stats.Of(Chance(r.PetSources, level, seconds))
}

// group combines member sources, scaling each member's share of the horizon
// by timeRatio = killTimeS_member / killTimeS_target. A dungeon's target time
// is its clear time; a task's is one full rotation of its members.
func (e *Estimator) group(r results.Result, members []results.Result, level int, h results.Horizon) stats.Rate {
	if len(members) == 0 {
		return stats.Undefined
	}
	target := r.KillTimeS
	if r.Key.Kind() == results.KindTask {
		sum := stats.Of(0)
		for _, m := range members {
			sum = sum.Plus(m.KillTimeS)
		}
		target = sum
	}
	seconds, ok := horizonFor(target, h)
	if !ok {
		return stats.Undefined
	}

	fail := 1.0
	for _, m := range members {
		ratio, ok := m.KillTimeS.Over(target).Value()
		if !ok {
			return stats.Undefined
		}
		for _, src := range m.PetSources {
			fail *= FailureChance(src, level, seconds*ratio)
		}
	}
	return stats.Of(100 * (1 - fail))
}
