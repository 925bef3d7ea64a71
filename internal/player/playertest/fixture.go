// Package playertest provides build snapshots for tests.
package playertest

import (
	"github.com/lawnchairsociety/killrate/internal/gamedata"
	"github.com/lawnchairsociety/killrate/internal/player"
)

// Build returns a sturdy melee build that comfortably beats the fixture
// chickens and cows and loses to the giant.
func Build() *player.Build {
	return &player.Build{
		Name:  "Test Slasher",
		Style: player.StyleSlash,
		Equipment: player.Equipment{
			Weapon:  "sword",
			Food:    "shark",
			Summons: []player.Summon{{Item: "wolf_tablet", XPPerCharge: 5}},
		},
		Offense: player.Offense{MaxHit: 40, Accuracy: 400, AttackIntervalMs: 2400},
		Defense: player.Defense{
			Evasion:         gamedata.Evasion{Melee: 300, Ranged: 300, Magic: 300},
			DamageReduction: 10,
			Hitpoints:       500,
		},
		Levels: map[string]int{
			gamedata.SkillAttack:    60,
			gamedata.SkillStrength:  60,
			gamedata.SkillDefence:   60,
			gamedata.SkillHitpoints: 50,
			gamedata.SkillPrayer:    40,
			gamedata.SkillSlayer:    30,
		},
		PrayerPointsPerAttack: 1,
		Potion:                "attack_pot",
		AutoEatPercent:        40,
		Modifiers:             player.Modifiers{SignetAllowed: true},
	}
}

// Mage returns a magic build casting a two-rune spell.
func Mage() *player.Build {
	b := Build()
	b.Name = "Test Mage"
	b.Style = player.StyleDefensive
	b.Equipment.Summons = nil
	b.Spell = []player.RuneCost{{Item: "air_rune", Qty: 2}, {Item: "smoke_rune", Qty: 1}}
	b.Levels[gamedata.SkillMagic] = 70
	return b
}

// Archer returns a ranged build using arrows from the quiver.
func Archer() *player.Build {
	b := Build()
	b.Name = "Test Archer"
	b.Style = player.StyleRapid
	b.Equipment.Quiver = "arrows"
	b.Equipment.Summons = nil
	b.Levels[gamedata.SkillRanged] = 70
	return b
}
