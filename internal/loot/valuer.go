// Package loot values drops: expected gp per kill or per dungeon clear,
// selected-item drop rates, and signet chances.
package loot

import (
	"github.com/lawnchairsociety/killrate/internal/gamedata"
	"github.com/lawnchairsociety/killrate/internal/player"
)

// SignetDivisor is the balance constant in the signet drop rate
// combatLevel × lootChance / SignetDivisor.
const SignetDivisor = 500000

// SeedBonusQty is added to a herb seed drop's expected quantity when seed
// conversion is possible.
const SeedBonusQty = 3

// ShardPolicy decides how dungeon shards are valued.
type ShardPolicy string

const (
	ShardsSell    ShardPolicy = "sell"
	ShardsConvert ShardPolicy = "convert"
)

// Policy holds the user's selling choices.
type Policy struct {
	SellBones    bool
	Shards       ShardPolicy
	SelectedDrop string
}

// Valuer computes expected values over a registry for one build's
// modifiers.
type Valuer struct {
	reg    *gamedata.Registry
	mods   player.Modifiers
	policy Policy
}

// NewValuer creates a valuer.
func NewValuer(reg *gamedata.Registry, mods player.Modifiers, policy Policy) *Valuer {
	if policy.Shards == "" {
		policy.Shards = ShardsSell
	}
	return &Valuer{reg: reg, mods: mods, policy: policy}
}

// LootBonus is the average loot multiplier from the double-loot chance.
func (v *Valuer) LootBonus() float64 {
	return v.mods.LootMultiplier()
}

// TableValue is the expected gp of one roll on table.
func (v *Valuer) TableValue(table []gamedata.LootEntry) float64 {
	return v.tableValue(table, map[string]bool{})
}

// ContainerValue is the expected gp of opening one container item.
func (v *Valuer) ContainerValue(id string) float64 {
	return v.containerValue(id, map[string]bool{})
}

// tableValue is Σ(value × expectedQty × weight)/Σweight. visited holds the
// containers on the current path; a container already on it is worth 0.
func (v *Valuer) tableValue(table []gamedata.LootEntry, visited map[string]bool) float64 {
	total := gamedata.TotalWeight(table)
	if total <= 0 {
		return 0
	}
	sum := 0.0
	for _, e := range table {
		it, ok := v.reg.Item(e.ItemID)
		if !ok {
			continue
		}
		qty := e.ExpectedQty()
		value := it.SellsFor
		switch {
		case it.CanOpen():
			value = v.containerValue(it.ID, visited)
		case it.Category == gamedata.CategoryHerbSeed && v.mods.SeedConversionChance > 0:
			p := v.mods.SeedConversionChance
			qty += SeedBonusQty
			value = it.SellsFor*(1-p) + v.reg.SellValue(it.GrownItem)*p
		}
		sum += value * qty * e.Weight
	}
	return sum / total
}

func (v *Valuer) containerValue(id string, visited map[string]bool) float64 {
	it, ok := v.reg.Item(id)
	if !ok {
		return 0
	}
	if !it.CanOpen() {
		return it.SellsFor
	}
	if visited[id] {
		return 0
	}
	visited[id] = true
	defer delete(visited, id)
	return v.tableValue(it.OpenTable, visited)
}

// SignetValue is the expected gp per kill from the level-scaled signet roll,
// before the monster's loot chance.
func (v *Valuer) SignetValue(m *gamedata.Monster) float64 {
	if !v.mods.SignetAllowed || v.reg.SignetItem == "" {
		return 0
	}
	return v.reg.SellValue(v.reg.SignetItem) * float64(m.CombatLevel) / SignetDivisor
}

// MonsterValue is the expected gp per kill of a monster fought in its own
// area.
func (v *Valuer) MonsterValue(m *gamedata.Monster) float64 {
	value := 0.0
	if len(m.LootTable) > 0 {
		value = v.TableValue(m.LootTable) * v.LootBonus()
	}
	value += v.SignetValue(m)
	value *= m.LootChance()

	if v.policy.SellBones && !v.mods.AutoBury && m.Bones != "" {
		value += v.reg.SellValue(m.Bones) * v.LootBonus() * float64(m.BoneCount())
	}
	return value
}

// shardValue values count shards of id under the shard policy.
func (v *Valuer) shardValue(id string, count float64) float64 {
	it, ok := v.reg.Item(id)
	if !ok {
		return 0
	}
	if v.policy.Shards == ShardsConvert && it.UpgradesTo != "" && it.UpgradeCost > 0 {
		return count / float64(it.UpgradeCost) * v.ContainerValue(it.UpgradesTo)
	}
	return count * it.SellsFor
}

// SlotValue is the expected gp per kill of a monster fought inside a
// dungeon: only shards, or bones when the dungeon drops them and they are
// sold.
func (v *Valuer) SlotValue(m *gamedata.Monster, d *gamedata.Dungeon) float64 {
	if m.Bones == "" {
		return 0
	}
	count := float64(m.BoneCount()) * v.LootBonus()
	switch {
	case d.ShardDrops:
		return v.shardValue(m.Bones, count)
	case d.DropBones && v.policy.SellBones && !v.mods.AutoBury:
		return count * v.reg.SellValue(m.Bones)
	default:
		return 0
	}
}

// DungeonValue is the expected gp of one full clear: rewards, shards and the
// final monster's signet roll.
func (v *Valuer) DungeonValue(d *gamedata.Dungeon) float64 {
	value := 0.0
	for _, id := range d.Rewards {
		it, ok := v.reg.Item(id)
		if !ok {
			continue
		}
		if it.CanOpen() {
			value += v.ContainerValue(id) * v.LootBonus()
		} else {
			value += it.SellsFor
		}
	}

	if d.ShardDrops && len(d.Monsters) > 0 {
		if first, ok := v.reg.Monster(d.Monsters[0]); ok && first.Bones != "" {
			count := 0.0
			for _, id := range d.Monsters {
				if m, ok := v.reg.Monster(id); ok {
					count += float64(max(1, m.BoneCount()))
				}
			}
			value += v.shardValue(first.Bones, count*v.LootBonus())
		}
	}

	if last, ok := v.reg.Monster(d.LastMonster()); ok {
		value += v.SignetValue(last)
	}
	return value
}
