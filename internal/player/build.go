// Package player holds the read-only build snapshot the simulator fights with:
// equipment, combat style, offensive and defensive stats, skill levels and
// modifiers.
package player

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lawnchairsociety/killrate/internal/gamedata"
)

// ErrUnknownStyle is returned for a style outside the supported set.
var ErrUnknownStyle = errors.New("unknown combat style")

// Style is an attack type and stance pair, written "melee/slash".
type Style string

const (
	StyleStab      Style = "melee/stab"
	StyleSlash     Style = "melee/slash"
	StyleBlock     Style = "melee/block"
	StyleAccurate  Style = "ranged/accurate"
	StyleRapid     Style = "ranged/rapid"
	StyleLongrange Style = "ranged/longrange"
	StyleStandard  Style = "magic/standard"
	StyleDefensive Style = "magic/defensive"
)

// styleSkills maps each style to the skills that receive its combat XP.
var styleSkills = map[Style][]string{
	StyleStab:      {gamedata.SkillAttack},
	StyleSlash:     {gamedata.SkillStrength},
	StyleBlock:     {gamedata.SkillDefence},
	StyleAccurate:  {gamedata.SkillRanged},
	StyleRapid:     {gamedata.SkillRanged},
	StyleLongrange: {gamedata.SkillRanged, gamedata.SkillDefence},
	StyleStandard:  {gamedata.SkillMagic},
	StyleDefensive: {gamedata.SkillMagic, gamedata.SkillDefence},
}

// AttackType is the part of the style before the slash.
func (s Style) AttackType() gamedata.AttackType {
	kind, _, _ := strings.Cut(string(s), "/")
	return gamedata.AttackType(kind)
}

// Skills returns the skills this style trains.
func (s Style) Skills() []string {
	return styleSkills[s]
}

// Valid reports whether s is a supported style.
func (s Style) Valid() bool {
	_, ok := styleSkills[s]
	return ok
}

// Summon is a familiar tablet in one of the two summon slots.
type Summon struct {
	Item        string  `yaml:"item"`
	XPPerCharge float64 `yaml:"xp_per_charge"`
}

// Equipment is what the player has equipped.
type Equipment struct {
	Weapon  string   `yaml:"weapon"`
	Quiver  string   `yaml:"quiver,omitempty"`
	Food    string   `yaml:"food,omitempty"`
	Summons []Summon `yaml:"summons,omitempty"`
	Items   []string `yaml:"items,omitempty"`
}

// Has reports whether id is equipped in any slot.
func (e Equipment) Has(id string) bool {
	if id == "" {
		return false
	}
	if e.Weapon == id || e.Quiver == id || e.Food == id {
		return true
	}
	for _, s := range e.Summons {
		if s.Item == id {
			return true
		}
	}
	for _, it := range e.Items {
		if it == id {
			return true
		}
	}
	return false
}

// Offense holds the player's attack stats.
type Offense struct {
	MaxHit           int `yaml:"max_hit"`
	Accuracy         int `yaml:"accuracy"`
	AttackIntervalMs int `yaml:"attack_interval_ms"`
}

// Defense holds the player's defensive stats.
type Defense struct {
	Evasion         gamedata.Evasion `yaml:"evasion"`
	DamageReduction float64          `yaml:"damage_reduction"` // percent
	Hitpoints       int              `yaml:"hitpoints"`
}

// RuneCost is one rune line of the selected spell.
type RuneCost struct {
	Item string `yaml:"item"`
	Qty  int    `yaml:"qty"`
}

// Modifiers are the build-wide bonuses that matter to valuation and
// consumption.
type Modifiers struct {
	LootBonusPercent        float64 `yaml:"loot_bonus_percent"`
	SignetAllowed           bool    `yaml:"signet_allowed"`
	SeedConversionChance    float64 `yaml:"seed_conversion_chance"` // 0..1
	AutoBury                bool    `yaml:"auto_bury"`
	AmmoPreservationPercent float64 `yaml:"ammo_preservation_percent"`
	PotionChargesFlat       int     `yaml:"potion_charges_flat"`
}

// LootMultiplier is the average multiplier from the double-loot chance.
func (m Modifiers) LootMultiplier() float64 {
	return 1 + m.LootBonusPercent/100
}

// Build is the player snapshot. It is read-only once loaded.
type Build struct {
	Name      string         `yaml:"name"`
	Style     Style          `yaml:"style"`
	Equipment Equipment      `yaml:"equipment"`
	Offense   Offense        `yaml:"offense"`
	Defense   Defense        `yaml:"defense"`
	Levels    map[string]int `yaml:"levels"`

	Spell                 []RuneCost `yaml:"spell,omitempty"`
	PrayerPointsPerAttack float64    `yaml:"prayer_points_per_attack,omitempty"`
	Potion                string     `yaml:"potion,omitempty"`
	AutoEatPercent        float64    `yaml:"auto_eat_percent,omitempty"`

	Modifiers  Modifiers `yaml:"modifiers"`
	SlayerTask bool      `yaml:"slayer_task"`
	AlchTimeS  float64   `yaml:"alch_time_s,omitempty"`
}

// Level returns the level of a skill. Untrained skills are level 1.
func (b *Build) Level(skill string) int {
	if lvl, ok := b.Levels[skill]; ok && lvl > 0 {
		return lvl
	}
	return 1
}

// PetSkills is the set of skills whose pets can currently roll: Hitpoints and
// Prayer always, Slayer while on task, and the skills of the combat style.
func (b *Build) PetSkills(onTask bool) map[string]bool {
	set := map[string]bool{
		gamedata.SkillHitpoints: true,
		gamedata.SkillPrayer:    true,
	}
	if onTask {
		set[gamedata.SkillSlayer] = true
	}
	for _, s := range b.Style.Skills() {
		set[s] = true
	}
	return set
}

// PotionCapacity is the number of charges one potion of the selected type
// provides, 1 when no potion is selected.
func (b *Build) PotionCapacity(reg *gamedata.Registry) int {
	if b.Potion == "" {
		return 1
	}
	it, ok := reg.Item(b.Potion)
	if !ok {
		return 1
	}
	capacity := it.PotionCharges + b.Modifiers.PotionChargesFlat
	if capacity < 1 {
		return 1
	}
	return capacity
}

// CheckRequirements returns an error describing the first unmet requirement.
func (b *Build) CheckRequirements(req gamedata.Requirements, slayerLevel int) error {
	if need := max(req.SlayerLevel, slayerLevel); need > 0 && b.Level(gamedata.SkillSlayer) < need {
		return fmt.Errorf("requires %s level %d", gamedata.SkillSlayer, need)
	}
	for _, skill := range gamedata.Skills {
		need, ok := req.SkillLevels[skill]
		if ok && b.Level(skill) < need {
			return fmt.Errorf("requires %s level %d", skill, need)
		}
	}
	if req.EquippedItem != "" && !b.Equipment.Has(req.EquippedItem) {
		return fmt.Errorf("requires %s equipped", req.EquippedItem)
	}
	return nil
}

// Validate checks the build is usable by the simulator.
func (b *Build) Validate() error {
	var errs []error
	if !b.Style.Valid() {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownStyle, b.Style))
	}
	if b.Offense.MaxHit <= 0 {
		errs = append(errs, errors.New("offense.max_hit must be positive"))
	}
	if b.Offense.AttackIntervalMs <= 0 {
		errs = append(errs, errors.New("offense.attack_interval_ms must be positive"))
	}
	if b.Defense.Hitpoints <= 0 {
		errs = append(errs, errors.New("defense.hitpoints must be positive"))
	}
	if dr := b.Defense.DamageReduction; dr < 0 || dr > 100 {
		errs = append(errs, errors.New("defense.damage_reduction must be within 0-100"))
	}
	if p := b.Modifiers.SeedConversionChance; p < 0 || p > 1 {
		errs = append(errs, errors.New("modifiers.seed_conversion_chance must be within 0-1"))
	}
	if len(b.Equipment.Summons) > 2 {
		errs = append(errs, errors.New("at most two summons can be equipped"))
	}
	for skill := range b.Levels {
		if !gamedata.IsSkill(skill) {
			errs = append(errs, fmt.Errorf("unknown skill %q in levels", skill))
		}
	}
	return errors.Join(errs...)
}
