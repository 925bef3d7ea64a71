package gamedata

import (
	"errors"
	"fmt"
	"sort"
)

// Registry is the read-only reference-data context. Build it once, validate
// it, and pass it to every entry point; nothing mutates it afterwards.
type Registry struct {
	Items    map[string]*Item       `yaml:"items"`
	Monsters map[string]*Monster    `yaml:"monsters"`
	Areas    map[string]*Area       `yaml:"areas"`
	Dungeons map[string]*Dungeon    `yaml:"dungeons"`
	Tasks    map[string]*SlayerTask `yaml:"slayer_tasks"`

	// SignetItem is the item rolled by the level-scaled signet drop.
	SignetItem string `yaml:"signet_item"`

	monsterArea map[string]*Area
}

// NewRegistry creates an empty registry ready to be filled.
func NewRegistry() *Registry {
	return &Registry{
		Items:    make(map[string]*Item),
		Monsters: make(map[string]*Monster),
		Areas:    make(map[string]*Area),
		Dungeons: make(map[string]*Dungeon),
		Tasks:    make(map[string]*SlayerTask),
	}
}

// Item looks up an item by id.
func (r *Registry) Item(id string) (*Item, bool) {
	it, ok := r.Items[id]
	return it, ok
}

// Monster looks up a monster by id.
func (r *Registry) Monster(id string) (*Monster, bool) {
	m, ok := r.Monsters[id]
	return m, ok
}

// Dungeon looks up a dungeon by id.
func (r *Registry) Dungeon(id string) (*Dungeon, bool) {
	d, ok := r.Dungeons[id]
	return d, ok
}

// Task looks up a slayer task by id.
func (r *Registry) Task(id string) (*SlayerTask, bool) {
	t, ok := r.Tasks[id]
	return t, ok
}

// AreaOf returns the combat or slayer area a monster lives in, if any.
func (r *Registry) AreaOf(monsterID string) (*Area, bool) {
	if r.monsterArea == nil {
		r.index()
	}
	a, ok := r.monsterArea[monsterID]
	return a, ok
}

// SellValue returns an item's sell price, 0 for unknown ids.
func (r *Registry) SellValue(id string) float64 {
	if it, ok := r.Items[id]; ok {
		return it.SellsFor
	}
	return 0
}

// MonsterIDs returns monster ids in sorted order.
func (r *Registry) MonsterIDs() []string {
	return sortedKeys(r.Monsters)
}

// DungeonIDs returns dungeon ids in sorted order.
func (r *Registry) DungeonIDs() []string {
	return sortedKeys(r.Dungeons)
}

// TaskIDs returns slayer task ids in sorted order.
func (r *Registry) TaskIDs() []string {
	return sortedKeys(r.Tasks)
}

// AreaIDs returns area ids in sorted order.
func (r *Registry) AreaIDs() []string {
	return sortedKeys(r.Areas)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// index fills ids from map keys and builds the monster→area lookup.
func (r *Registry) index() {
	for id, it := range r.Items {
		it.ID = id
	}
	for id, m := range r.Monsters {
		m.ID = id
	}
	for id, d := range r.Dungeons {
		d.ID = id
	}
	for id, t := range r.Tasks {
		t.ID = id
	}
	r.monsterArea = make(map[string]*Area)
	for _, id := range r.AreaIDs() {
		a := r.Areas[id]
		a.ID = id
		for _, mid := range a.Monsters {
			if _, taken := r.monsterArea[mid]; !taken {
				r.monsterArea[mid] = a
			}
		}
	}
}

// Validate indexes the registry and checks the invariants the valuation and
// simulation code rely on.
func (r *Registry) Validate() error {
	r.index()

	var errs []error
	checkTable := func(owner string, table []LootEntry) {
		if len(table) == 0 {
			return
		}
		if TotalWeight(table) <= 0 {
			errs = append(errs, fmt.Errorf("%s: loot table has non-positive total weight", owner))
		}
		for _, e := range table {
			if e.Weight < 0 {
				errs = append(errs, fmt.Errorf("%s: negative weight for %q", owner, e.ItemID))
			}
			if e.MaxQty < 1 {
				errs = append(errs, fmt.Errorf("%s: max_qty for %q must be at least 1", owner, e.ItemID))
			}
			if _, ok := r.Items[e.ItemID]; !ok {
				errs = append(errs, fmt.Errorf("%s: unknown item %q", owner, e.ItemID))
			}
		}
	}
	checkItem := func(owner, id string) {
		if id == "" {
			return
		}
		if _, ok := r.Items[id]; !ok {
			errs = append(errs, fmt.Errorf("%s: unknown item %q", owner, id))
		}
	}
	checkMonsters := func(owner string, ids []string) {
		if len(ids) == 0 {
			errs = append(errs, fmt.Errorf("%s: no monsters", owner))
		}
		for _, id := range ids {
			if _, ok := r.Monsters[id]; !ok {
				errs = append(errs, fmt.Errorf("%s: unknown monster %q", owner, id))
			}
		}
	}

	for _, id := range sortedKeys(r.Items) {
		it := r.Items[id]
		owner := "item " + id
		checkTable(owner, it.OpenTable)
		checkItem(owner, it.GrownItem)
		checkItem(owner, it.UpgradesTo)
		if it.UpgradesTo != "" && it.UpgradeCost <= 0 {
			errs = append(errs, fmt.Errorf("%s: upgrade_cost must be positive", owner))
		}
	}
	for _, id := range r.MonsterIDs() {
		m := r.Monsters[id]
		owner := "monster " + id
		if m.Hitpoints <= 0 {
			errs = append(errs, fmt.Errorf("%s: hitpoints must be positive", owner))
		}
		if m.AttackInterval <= 0 {
			errs = append(errs, fmt.Errorf("%s: attack_interval must be positive", owner))
		}
		if lc := m.LootChance(); lc < 0 || lc > 1 {
			errs = append(errs, fmt.Errorf("%s: loot_chance must be within 0-100", owner))
		}
		checkTable(owner, m.LootTable)
		checkItem(owner, m.Bones)
	}
	for _, id := range r.AreaIDs() {
		checkMonsters("area "+id, r.Areas[id].Monsters)
	}
	for _, id := range r.DungeonIDs() {
		d := r.Dungeons[id]
		checkMonsters("dungeon "+id, d.Monsters)
		for _, reward := range d.Rewards {
			checkItem("dungeon "+id, reward)
		}
	}
	for _, id := range r.TaskIDs() {
		checkMonsters("slayer task "+id, r.Tasks[id].Monsters)
	}
	checkItem("signet_item", r.SignetItem)

	return errors.Join(errs...)
}
