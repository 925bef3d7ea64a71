package loot

import (
	"github.com/lawnchairsociety/killrate/internal/results"
	"github.com/lawnchairsociety/killrate/internal/stats"
)

// Stage adds loot value to gp rates, and fills drop and signet chances, for
// every result in the set.
func (v *Valuer) Stage(set results.Set, h results.Horizon) results.Set {
	return set.Transform(func(r results.Result, done results.Set) results.Result {
		r = v.value(r, done, h)
		r.Indefinite = h.Indefinite()
		r.Adjusted = results.Unadjusted(r)
		return r
	})
}

func (v *Valuer) value(r results.Result, done results.Set, h results.Horizon) results.Result {
	r.SignetChance = stats.Of(0)
	if r.Key.Kind() == results.KindTask {
		members := done.Members(r)
		r.GPPerSecond = results.TimeWeighted(func(m results.Result) stats.Rate { return m.GPPerSecond }, members)
		r.DropChance = results.TimeWeighted(func(m results.Result) stats.Rate { return m.DropChance }, members)
		r.SignetChance = stats.Undefined
		return r
	}
	if !r.Success {
		r.GPPerSecond = stats.Undefined
		r.DropChance = stats.Undefined
		return r
	}

	switch r.Key.Kind() {
	case results.KindMonster:
		m, ok := v.reg.Monster(r.Key.Monster)
		if !ok {
			return r
		}
		r.GPPerSecond = r.BaseGPPerSecond.Plus(stats.Of(v.MonsterValue(m)).Over(r.KillTimeS))
		r.DropChance = v.DropRate(v.ExpectedDrops(m), r.KillTimeS)
		if v.mods.SignetAllowed {
			r.SignetChance = Cumulative(SignetRate(m), r.KillTimeS, h).Mul(100)
		}

	case results.KindSlot:
		m, mok := v.reg.Monster(r.Key.Monster)
		d, dok := v.reg.Dungeon(r.Key.Dungeon)
		if !mok || !dok {
			return r
		}
		r.GPPerSecond = r.BaseGPPerSecond.Plus(stats.Of(v.SlotValue(m, d)).Over(r.KillTimeS))
		r.DropChance = v.DropRate(v.SlotDrops(m, d), r.KillTimeS)

	case results.KindDungeon:
		d, ok := v.reg.Dungeon(r.Key.Dungeon)
		if !ok {
			return r
		}
		r.GPPerSecond = r.BaseGPPerSecond.Plus(stats.Of(v.DungeonValue(d)).Over(r.KillTimeS))
		r.DropChance = v.DropRate(v.DungeonDrops(d), r.KillTimeS)
		if last, ok := v.reg.Monster(d.LastMonster()); ok && v.mods.SignetAllowed {
			r.SignetChance = Cumulative(SignetRate(last), r.KillTimeS, h).Mul(100)
		}
	}
	return r
}
