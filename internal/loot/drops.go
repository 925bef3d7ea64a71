package loot

import (
	"math"

	"github.com/lawnchairsociety/killrate/internal/gamedata"
	"github.com/lawnchairsociety/killrate/internal/results"
	"github.com/lawnchairsociety/killrate/internal/stats"
)

// expectedCount is the expected number of item id per roll on table,
// counting copies found inside containers.
func (v *Valuer) expectedCount(table []gamedata.LootEntry, id string, visited map[string]bool) float64 {
	total := gamedata.TotalWeight(table)
	if total <= 0 || id == "" {
		return 0
	}
	count := 0.0
	for _, e := range table {
		share := e.Weight / total * e.ExpectedQty()
		if e.ItemID == id {
			count += share
			continue
		}
		it, ok := v.reg.Item(e.ItemID)
		if !ok || !it.CanOpen() || visited[it.ID] {
			continue
		}
		visited[it.ID] = true
		count += share * v.expectedCount(it.OpenTable, id, visited)
		delete(visited, it.ID)
	}
	return count
}

// containerCount is the expected number of id from one of container item
// cid, or 1 if cid is id itself.
func (v *Valuer) containerCount(cid, id string) float64 {
	if cid == id {
		return 1
	}
	it, ok := v.reg.Item(cid)
	if !ok || !it.CanOpen() {
		return 0
	}
	return v.expectedCount(it.OpenTable, id, map[string]bool{cid: true})
}

// boneCount is the expected number of the selected item per kill through a
// monster's bones, including bones upgraded into containers.
func (v *Valuer) boneCount(m *gamedata.Monster, id string) float64 {
	if m.Bones == "" || id == "" {
		return 0
	}
	qty := float64(m.BoneCount())
	if m.Bones == id {
		return qty
	}
	bone, ok := v.reg.Item(m.Bones)
	if !ok || bone.UpgradesTo == "" || bone.UpgradeCost <= 0 {
		return 0
	}
	return qty / float64(bone.UpgradeCost) * v.containerCount(bone.UpgradesTo, id)
}

// ExpectedDrops is the expected number of the selected drop per kill of a
// monster in its own area, before the loot bonus.
func (v *Valuer) ExpectedDrops(m *gamedata.Monster) float64 {
	id := v.policy.SelectedDrop
	regular := m.LootChance() * v.expectedCount(m.LootTable, id, map[string]bool{})
	return regular + v.boneCount(m, id)
}

// SlotDrops is the expected number of the selected drop per kill inside a
// dungeon, where only bones or shards drop.
func (v *Valuer) SlotDrops(m *gamedata.Monster, d *gamedata.Dungeon) float64 {
	if !d.ShardDrops && !d.DropBones {
		return 0
	}
	return v.boneCount(m, v.policy.SelectedDrop)
}

// DungeonDrops is the expected number of the selected drop per clear from
// rewards and, in shard dungeons, from every monster's shards.
func (v *Valuer) DungeonDrops(d *gamedata.Dungeon) float64 {
	id := v.policy.SelectedDrop
	if id == "" {
		return 0
	}
	count := 0.0
	for _, reward := range d.Rewards {
		count += v.containerCount(reward, id)
	}
	for _, mid := range d.Monsters {
		if m, ok := v.reg.Monster(mid); ok {
			count += v.SlotDrops(m, d)
		}
	}
	return count
}

// DropRate converts expected drops per kill into drops per second.
func (v *Valuer) DropRate(perKill float64, killTimeS stats.Rate) stats.Rate {
	return stats.Of(perKill * v.LootBonus()).Over(killTimeS)
}

// SignetRate is the per-kill chance of the signet drop.
func SignetRate(m *gamedata.Monster) float64 {
	return float64(m.CombatLevel) * m.LootChance() / SignetDivisor
}

// Cumulative is the chance of at least one success over the horizon when
// each kill succeeds with probability p: 1 − (1−p)^(T/killTimeS). An
// indefinite horizon returns p itself, the per-kill rate.
func Cumulative(p float64, killTimeS stats.Rate, h results.Horizon) stats.Rate {
	if h.Indefinite() {
		return stats.Of(p)
	}
	k, ok := killTimeS.Value()
	if !ok || k <= 0 {
		return stats.Undefined
	}
	return stats.Of(1 - math.Pow(1-p, h.Seconds/k))
}
