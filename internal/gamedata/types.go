// Package gamedata holds the read-only reference data (items, monsters,
// areas, dungeons, slayer tasks) every simulation and valuation step reads.
package gamedata

import (
	"github.com/lawnchairsociety/killrate/internal/stats"
)

// Skill identifiers.
const (
	SkillAttack    = "Attack"
	SkillStrength  = "Strength"
	SkillDefence   = "Defence"
	SkillHitpoints = "Hitpoints"
	SkillRanged    = "Ranged"
	SkillMagic     = "Magic"
	SkillPrayer    = "Prayer"
	SkillSlayer    = "Slayer"
	SkillSummoning = "Summoning"
)

// Skills lists every skill the simulator tracks, in display order.
var Skills = []string{
	SkillAttack, SkillStrength, SkillDefence, SkillHitpoints,
	SkillRanged, SkillMagic, SkillPrayer, SkillSlayer, SkillSummoning,
}

// IsSkill reports whether name is a known skill.
func IsSkill(name string) bool {
	for _, s := range Skills {
		if s == name {
			return true
		}
	}
	return false
}

// AttackType is melee, ranged or magic.
type AttackType string

const (
	Melee  AttackType = "melee"
	Ranged AttackType = "ranged"
	Magic  AttackType = "magic"
)

// Item categories that change valuation or consumption behavior.
const (
	CategoryHerbSeed        = "herb_seed"
	CategoryBone            = "bone"
	CategoryShard           = "shard"
	CategoryRune            = "rune"
	CategoryCombinationRune = "combination_rune"
	CategoryPotion          = "potion"
	CategoryFood            = "food"
	CategoryAmmo            = "ammo"
	CategoryTablet          = "tablet"
)

// LootEntry is one weighted row of a loot or container table.
type LootEntry struct {
	ItemID string  `yaml:"item"`
	Weight float64 `yaml:"weight"`
	MaxQty int     `yaml:"max_qty"`
}

// ExpectedQty is the mean of a uniform draw over 1..MaxQty.
func (e LootEntry) ExpectedQty() float64 {
	return float64(e.MaxQty+1) / 2
}

// TotalWeight sums the weights of a table.
func TotalWeight(table []LootEntry) float64 {
	total := 0.0
	for _, e := range table {
		total += e.Weight
	}
	return total
}

// Item is anything that can drop, be sold, opened or consumed.
type Item struct {
	ID       string  `yaml:"-"`
	Name     string  `yaml:"name"`
	SellsFor float64 `yaml:"sells_for"`
	Category string  `yaml:"category"`

	// OpenTable makes the item a container resolved through the same weighting.
	OpenTable []LootEntry `yaml:"open_table,omitempty"`

	// GrownItem is what a herb seed converts into.
	GrownItem string `yaml:"grown_item,omitempty"`

	// UpgradesTo and UpgradeCost describe a fixed exchange: UpgradeCost of
	// this item buy one UpgradesTo.
	UpgradesTo  string `yaml:"upgrades_to,omitempty"`
	UpgradeCost int    `yaml:"upgrade_cost,omitempty"`

	PotionCharges int `yaml:"potion_charges,omitempty"`
	HealAmount    int `yaml:"heal_amount,omitempty"`
}

// CanOpen reports whether the item is a container.
func (i *Item) CanOpen() bool {
	return len(i.OpenTable) > 0
}

// Evasion ratings per incoming attack type.
type Evasion struct {
	Melee  int `yaml:"melee"`
	Ranged int `yaml:"ranged"`
	Magic  int `yaml:"magic"`
}

// Against returns the rating used to defend against attack type t.
func (e Evasion) Against(t AttackType) int {
	switch t {
	case Ranged:
		return e.Ranged
	case Magic:
		return e.Magic
	default:
		return e.Melee
	}
}

// Monster is a combat target.
type Monster struct {
	ID          string `yaml:"-"`
	Name        string `yaml:"name"`
	CombatLevel int    `yaml:"combat_level"`
	Hitpoints   int    `yaml:"hitpoints"`

	AttackType     AttackType `yaml:"attack_type"`
	AttackInterval int        `yaml:"attack_interval"` // ticks
	MaxHit         int        `yaml:"max_hit"`
	Accuracy       int        `yaml:"accuracy"`
	Evasion        Evasion    `yaml:"evasion"`

	LootTable         []LootEntry `yaml:"loot_table,omitempty"`
	LootChancePercent *float64    `yaml:"loot_chance,omitempty"`
	Bones             string      `yaml:"bones,omitempty"`
	BoneQty           int         `yaml:"bone_qty,omitempty"`
	Coins             stats.Dice  `yaml:"coins,omitempty"`
	Boss              bool        `yaml:"boss,omitempty"`
}

// LootChance is the probability in [0,1] that a kill rolls the loot table.
func (m *Monster) LootChance() float64 {
	if m.LootChancePercent == nil {
		return 1
	}
	return *m.LootChancePercent / 100
}

// BoneCount is the number of bones dropped per kill.
func (m *Monster) BoneCount() int {
	if m.Bones == "" {
		return 0
	}
	if m.BoneQty <= 0 {
		return 1
	}
	return m.BoneQty
}

// Requirements gate entry to an area or dungeon.
type Requirements struct {
	SlayerLevel  int            `yaml:"slayer_level,omitempty"`
	SkillLevels  map[string]int `yaml:"skill_levels,omitempty"`
	EquippedItem string         `yaml:"equipped_item,omitempty"`
}

// AreaKind distinguishes regular combat areas from slayer areas.
type AreaKind string

const (
	AreaCombat AreaKind = "combat"
	AreaSlayer AreaKind = "slayer"
)

// Area is a combat zone containing monsters.
type Area struct {
	ID           string       `yaml:"-"`
	Name         string       `yaml:"name"`
	Kind         AreaKind     `yaml:"kind"`
	Monsters     []string     `yaml:"monsters"`
	Requirements Requirements `yaml:"requirements,omitempty"`
}

// Dungeon is a fixed monster sequence with a completion reward.
type Dungeon struct {
	ID       string   `yaml:"-"`
	Name     string   `yaml:"name"`
	Monsters []string `yaml:"monsters"`
	Rewards  []string `yaml:"rewards"`

	DropBones    bool `yaml:"drop_bones,omitempty"`
	ShardDrops   bool `yaml:"shard_drops,omitempty"`
	PauseBetween bool `yaml:"pause_between,omitempty"`

	Requirements Requirements `yaml:"requirements,omitempty"`
}

// LastMonster is the final monster of the sequence.
func (d *Dungeon) LastMonster() string {
	if len(d.Monsters) == 0 {
		return ""
	}
	return d.Monsters[len(d.Monsters)-1]
}

// SlayerTask is a set of eligible monsters.
type SlayerTask struct {
	ID       string   `yaml:"-"`
	Name     string   `yaml:"name"`
	Monsters []string `yaml:"monsters"`
}
