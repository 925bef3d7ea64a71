// Package gamedatatest builds small synthetic registries for tests.
package gamedatatest

import (
	"github.com/lawnchairsociety/killrate/internal/gamedata"
	"github.com/lawnchairsociety/killrate/internal/stats"
)

func pct(v float64) *float64 { return &v }

// Registry returns a validated registry with a handful of monsters, one
// combat area, one slayer area, one shard dungeon, one plain dungeon and one
// slayer task.
func Registry() *gamedata.Registry {
	reg := gamedata.NewRegistry()

	items := map[string]*gamedata.Item{
		"bones":        {Name: "Bones", SellsFor: 1, Category: gamedata.CategoryBone},
		"big_bones":    {Name: "Big Bones", SellsFor: 8, Category: gamedata.CategoryBone},
		"feather":      {Name: "Feather", SellsFor: 2},
		"raw_beef":     {Name: "Raw Beef", SellsFor: 5},
		"ruby":         {Name: "Ruby", SellsFor: 500},
		"seed_herb":    {Name: "Herb Seed", SellsFor: 10, Category: gamedata.CategoryHerbSeed, GrownItem: "herb"},
		"herb":         {Name: "Herb", SellsFor: 40},
		"signet_half":  {Name: "Signet Half", SellsFor: 50000},
		"fire_shard":   {Name: "Fire Shard", SellsFor: 5, Category: gamedata.CategoryShard, UpgradesTo: "fire_chest", UpgradeCost: 100},
		"fire_chest":   {Name: "Fire Chest", OpenTable: []gamedata.LootEntry{{ItemID: "ruby", Weight: 1, MaxQty: 1}, {ItemID: "feather", Weight: 1, MaxQty: 3}}},
		"small_chest":  {Name: "Small Chest", OpenTable: []gamedata.LootEntry{{ItemID: "ruby", Weight: 1, MaxQty: 1}, {ItemID: "feather", Weight: 3, MaxQty: 5}}},
		"dungeon_gold": {Name: "Dungeon Gold Bar", SellsFor: 1000},
		"attack_pot":   {Name: "Attack Potion", SellsFor: 20, Category: gamedata.CategoryPotion, PotionCharges: 4},
		"shark":        {Name: "Shark", SellsFor: 30, Category: gamedata.CategoryFood, HealAmount: 100},
		"air_rune":     {Name: "Air Rune", SellsFor: 1, Category: gamedata.CategoryRune},
		"fire_rune":    {Name: "Fire Rune", SellsFor: 1, Category: gamedata.CategoryRune},
		"smoke_rune":   {Name: "Smoke Rune", SellsFor: 3, Category: gamedata.CategoryCombinationRune},
		"arrows":       {Name: "Bronze Arrows", SellsFor: 1, Category: gamedata.CategoryAmmo},
		"wolf_tablet":  {Name: "Wolf Tablet", SellsFor: 2, Category: gamedata.CategoryTablet},
		"golem_tablet": {Name: "Golem Tablet", SellsFor: 2, Category: gamedata.CategoryTablet},
		"amulet":       {Name: "Slayer Amulet"},
	}
	for id, it := range items {
		reg.Items[id] = it
	}

	weak := gamedata.Evasion{Melee: 20, Ranged: 20, Magic: 20}
	reg.Monsters["chicken"] = &gamedata.Monster{
		Name: "Chicken", CombatLevel: 3, Hitpoints: 30,
		AttackType: gamedata.Melee, AttackInterval: 48, MaxHit: 5, Accuracy: 20, Evasion: weak,
		LootTable: []gamedata.LootEntry{{ItemID: "feather", Weight: 3, MaxQty: 10}, {ItemID: "seed_herb", Weight: 1, MaxQty: 1}},
		Bones:     "bones",
		Coins:     stats.Dice{Count: 1, Sides: 10},
	}
	reg.Monsters["cow"] = &gamedata.Monster{
		Name: "Cow", CombatLevel: 6, Hitpoints: 80,
		AttackType: gamedata.Melee, AttackInterval: 48, MaxHit: 10, Accuracy: 40, Evasion: weak,
		LootTable:         []gamedata.LootEntry{{ItemID: "raw_beef", Weight: 1, MaxQty: 1}, {ItemID: "small_chest", Weight: 1, MaxQty: 1}},
		LootChancePercent: pct(50),
		Bones:             "big_bones",
		Coins:             stats.Dice{Bonus: 5},
	}
	reg.Monsters["imp"] = &gamedata.Monster{
		Name: "Imp", CombatLevel: 40, Hitpoints: 150,
		AttackType: gamedata.Magic, AttackInterval: 60, MaxHit: 40, Accuracy: 300, Evasion: gamedata.Evasion{Melee: 200, Ranged: 200, Magic: 400},
		Bones: "fire_shard", BoneQty: 2,
	}
	reg.Monsters["fire_lord"] = &gamedata.Monster{
		Name: "Fire Lord", CombatLevel: 120, Hitpoints: 400,
		AttackType: gamedata.Magic, AttackInterval: 60, MaxHit: 60, Accuracy: 500, Evasion: gamedata.Evasion{Melee: 300, Ranged: 300, Magic: 600},
		Bones: "fire_shard", BoneQty: 10, Boss: true,
		Coins: stats.Dice{Count: 1, Sides: 100, Bonus: 100},
	}
	reg.Monsters["giant"] = &gamedata.Monster{
		Name: "Giant", CombatLevel: 200, Hitpoints: 5000,
		AttackType: gamedata.Melee, AttackInterval: 40, MaxHit: 400, Accuracy: 5000, Evasion: gamedata.Evasion{Melee: 5000, Ranged: 5000, Magic: 5000},
	}

	reg.Areas["farm"] = &gamedata.Area{Name: "Farm", Kind: gamedata.AreaCombat, Monsters: []string{"chicken", "cow", "giant"}}
	reg.Areas["hell_pit"] = &gamedata.Area{
		Name: "Hell Pit", Kind: gamedata.AreaSlayer, Monsters: []string{"imp"},
		Requirements: gamedata.Requirements{SlayerLevel: 20},
	}

	reg.Dungeons["fire_temple"] = &gamedata.Dungeon{
		Name: "Fire Temple", Monsters: []string{"imp", "imp", "fire_lord"}, Rewards: []string{"fire_chest", "dungeon_gold"},
		ShardDrops: true,
	}
	reg.Dungeons["barn"] = &gamedata.Dungeon{
		Name: "Barn", Monsters: []string{"chicken", "cow"}, Rewards: []string{"dungeon_gold"},
		DropBones: true, PauseBetween: true,
		Requirements: gamedata.Requirements{EquippedItem: "amulet"},
	}

	reg.Tasks["farm_animals"] = &gamedata.SlayerTask{Name: "Farm Animals", Monsters: []string{"chicken", "cow"}}

	reg.SignetItem = "signet_half"

	if err := reg.Validate(); err != nil {
		panic(err)
	}
	return reg
}
