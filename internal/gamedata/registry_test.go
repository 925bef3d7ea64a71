package gamedata_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lawnchairsociety/killrate/internal/gamedata"
	"github.com/lawnchairsociety/killrate/internal/gamedata/gamedatatest"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

const itemsYAML = `
signet_item: signet
items:
  feather:
    name: Feather
    sells_for: 2
  bones:
    name: Bones
    sells_for: 1
    category: bone
  signet:
    name: Signet Half
    sells_for: 5000
  chest:
    name: Chest
    open_table:
      - {item: feather, weight: 1, max_qty: 4}
`

const monstersYAML = `
monsters:
  chicken:
    name: Chicken
    combat_level: 3
    hitpoints: 30
    attack_type: melee
    attack_interval: 48
    max_hit: 5
    accuracy: 20
    evasion: {melee: 20, ranged: 20, magic: 20}
    loot_chance: 75
    coins: "1d10+2"
    bones: bones
    loot_table:
      - {item: feather, weight: 3, max_qty: 10}
      - {item: chest, weight: 1, max_qty: 1}
`

func TestLoadRegistryFromYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "items.yaml", itemsYAML)
	writeFile(t, dir, "monsters.yaml", monstersYAML)
	writeFile(t, dir, "areas.yaml", `
areas:
  farm:
    name: Farm
    kind: combat
    monsters: [chicken]
`)
	writeFile(t, dir, "slayer_tasks.yaml", `
slayer_tasks:
  birds:
    name: Birds
    monsters: [chicken]
`)

	reg, err := gamedata.LoadRegistryFromYAML(dir)
	if err != nil {
		t.Fatalf("LoadRegistryFromYAML: %v", err)
	}

	chicken, ok := reg.Monster("chicken")
	if !ok {
		t.Fatal("chicken not loaded")
	}
	if chicken.ID != "chicken" {
		t.Errorf("ID = %q, want chicken", chicken.ID)
	}
	if chicken.LootChance() != 0.75 {
		t.Errorf("LootChance = %v, want 0.75", chicken.LootChance())
	}
	if chicken.Coins.Mean() != 7.5 {
		t.Errorf("Coins mean = %v, want 7.5", chicken.Coins.Mean())
	}
	if chicken.BoneCount() != 1 {
		t.Errorf("BoneCount = %d, want default 1", chicken.BoneCount())
	}
	if area, ok := reg.AreaOf("chicken"); !ok || area.ID != "farm" {
		t.Errorf("AreaOf(chicken) = %v, %v", area, ok)
	}
	if reg.SignetItem != "signet" {
		t.Errorf("SignetItem = %q", reg.SignetItem)
	}
	if got := reg.TaskIDs(); len(got) != 1 || got[0] != "birds" {
		t.Errorf("TaskIDs = %v", got)
	}
	chest, _ := reg.Item("chest")
	if !chest.CanOpen() {
		t.Error("chest should be openable")
	}
}

func TestLoadRegistryMissingRequiredFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "items.yaml", itemsYAML)

	if _, err := gamedata.LoadRegistryFromYAML(dir); err == nil {
		t.Fatal("expected error without monsters.yaml")
	}
}

func TestLoadRegistryDuplicateID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "items.yaml", itemsYAML)
	writeFile(t, dir, "monsters.yaml", monstersYAML+`
items:
  feather:
    name: Another Feather
`)

	_, err := gamedata.LoadRegistryFromYAML(dir)
	if err == nil || !strings.Contains(err.Error(), "duplicate item") {
		t.Fatalf("expected duplicate item error, got %v", err)
	}
}

func TestValidateRejectsBadTables(t *testing.T) {
	reg := gamedata.NewRegistry()
	reg.Items["feather"] = &gamedata.Item{Name: "Feather"}
	reg.Monsters["ghost"] = &gamedata.Monster{
		Name: "Ghost", Hitpoints: 10, AttackInterval: 40,
		LootTable: []gamedata.LootEntry{
			{ItemID: "feather", Weight: 0, MaxQty: 1},
			{ItemID: "ectoplasm", Weight: 0, MaxQty: 0},
		},
	}
	reg.Dungeons["crypt"] = &gamedata.Dungeon{Name: "Crypt", Monsters: []string{"ghost", "lich"}}

	err := reg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"non-positive total weight", "max_qty", `unknown item "ectoplasm"`, `unknown monster "lich"`} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q:\n%v", want, err)
		}
	}
}

func TestExpectedQtyBounds(t *testing.T) {
	reg := gamedatatest.Registry()
	for _, id := range reg.MonsterIDs() {
		m := reg.Monsters[id]
		if len(m.LootTable) > 0 && gamedata.TotalWeight(m.LootTable) <= 0 {
			t.Errorf("%s: total weight must be positive", id)
		}
		for _, e := range m.LootTable {
			q := e.ExpectedQty()
			if q < 1 || q > float64(e.MaxQty) {
				t.Errorf("%s/%s: expected qty %v outside [1, %d]", id, e.ItemID, q, e.MaxQty)
			}
		}
	}
}

func TestEvasionAgainst(t *testing.T) {
	e := gamedata.Evasion{Melee: 1, Ranged: 2, Magic: 3}
	if e.Against(gamedata.Melee) != 1 || e.Against(gamedata.Ranged) != 2 || e.Against(gamedata.Magic) != 3 {
		t.Errorf("Against returned wrong ratings: %+v", e)
	}
}

func TestIsSkill(t *testing.T) {
	if !gamedata.IsSkill(gamedata.SkillSlayer) {
		t.Error("Slayer should be a skill")
	}
	if gamedata.IsSkill("Cooking") {
		t.Error("Cooking is not tracked")
	}
}
