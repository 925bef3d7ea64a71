package pipeline

import (
	"github.com/lawnchairsociety/killrate/internal/gamedata"
	"github.com/lawnchairsociety/killrate/internal/results"
)

// plan is the ordered list of targets to simulate and the aggregates built
// from them.
type plan struct {
	simulate []results.Key
	dungeons []*gamedata.Dungeon
	tasks    []*gamedata.SlayerTask
}

type planner struct {
	reg  *gamedata.Registry
	p    plan
	seen map[results.Key]bool
}

func (e *Engine) plan(keys []results.Key) plan {
	pl := &planner{reg: e.reg, seen: make(map[results.Key]bool)}
	if len(keys) == 0 {
		for _, id := range e.reg.AreaIDs() {
			for _, m := range e.reg.Areas[id].Monsters {
				pl.add(results.MonsterKey(m))
			}
		}
		for _, id := range e.reg.DungeonIDs() {
			pl.add(results.DungeonKey(id))
		}
		for _, id := range e.reg.TaskIDs() {
			pl.add(results.TaskKey(id))
		}
		return pl.p
	}
	for _, k := range keys {
		pl.add(k)
	}
	return pl.p
}

func (pl *planner) add(k results.Key) {
	if pl.seen[k] {
		return
	}
	pl.seen[k] = true

	switch k.Kind() {
	case results.KindMonster, results.KindSlot:
		pl.p.simulate = append(pl.p.simulate, k)
	case results.KindDungeon:
		d, ok := pl.reg.Dungeon(k.Dungeon)
		if !ok {
			pl.p.simulate = append(pl.p.simulate, k)
			return
		}
		for _, m := range d.Monsters {
			pl.add(results.SlotKey(m, d.ID))
		}
		pl.p.simulate = append(pl.p.simulate, k)
		pl.p.dungeons = append(pl.p.dungeons, d)
	case results.KindTask:
		t, ok := pl.reg.Task(k.Task)
		if !ok {
			return
		}
		for _, m := range t.Monsters {
			pl.add(results.MonsterKey(m))
		}
		pl.p.tasks = append(pl.p.tasks, t)
	}
}

// assemble builds the result set from simulated results. Aggregates whose
// members were not all simulated, as after cancellation, are left out.
func (p plan) assemble(simulated map[results.Key]results.Result) results.Set {
	rs := make([]results.Result, 0, len(simulated)+len(p.tasks))
	for _, k := range p.simulate {
		r, ok := simulated[k]
		if !ok || k.Kind() == results.KindDungeon {
			continue
		}
		rs = append(rs, r)
	}

	for _, d := range p.dungeons {
		whole, ok := simulated[results.DungeonKey(d.ID)]
		if !ok {
			continue
		}
		slots := make([]results.Result, 0, len(d.Monsters))
		for _, m := range d.Monsters {
			if s, ok := simulated[results.SlotKey(m, d.ID)]; ok {
				slots = append(slots, s)
			}
		}
		if len(slots) < len(d.Monsters) {
			continue
		}
		rs = append(rs, results.DungeonResult(whole, slots))
	}

	// Unknown dungeons still surface their failed whole-dungeon result.
	for _, k := range p.simulate {
		if k.Kind() != results.KindDungeon {
			continue
		}
		if _, known := findDungeon(p.dungeons, k.Dungeon); !known {
			if r, ok := simulated[k]; ok {
				rs = append(rs, r)
			}
		}
	}

	for _, t := range p.tasks {
		members := make([]results.Result, 0, len(t.Monsters))
		for _, m := range t.Monsters {
			if r, ok := simulated[results.MonsterKey(m)]; ok {
				members = append(members, r)
			}
		}
		if len(members) < len(t.Monsters) {
			continue
		}
		rs = append(rs, results.TaskResult(results.TaskKey(t.ID), members))
	}
	return results.NewSet(rs...)
}

func findDungeon(ds []*gamedata.Dungeon, id string) (*gamedata.Dungeon, bool) {
	for _, d := range ds {
		if d.ID == id {
			return d, true
		}
	}
	return nil, false
}
