package results

import (
	"fmt"
	"strings"

	"github.com/lawnchairsociety/killrate/internal/combat"
)

// Kind is the shape of a result's target.
type Kind string

const (
	KindMonster Kind = "monster"
	KindSlot    Kind = "slot"
	KindDungeon Kind = "dungeon"
	KindTask    Kind = "task"
)

var kindRank = map[Kind]int{KindMonster: 0, KindSlot: 1, KindDungeon: 2, KindTask: 3}

// Key identifies a result: a monster, a monster within a dungeon, a whole
// dungeon, or a slayer task.
type Key struct {
	Monster string
	Dungeon string
	Task    string
}

// MonsterKey keys a monster fought in its own area.
func MonsterKey(id string) Key { return Key{Monster: id} }

// SlotKey keys a monster fought in dungeon context.
func SlotKey(monster, dungeon string) Key { return Key{Monster: monster, Dungeon: dungeon} }

// DungeonKey keys a whole dungeon.
func DungeonKey(id string) Key { return Key{Dungeon: id} }

// TaskKey keys a slayer task.
func TaskKey(id string) Key { return Key{Task: id} }

// KeyOf returns the key for a simulated target.
func KeyOf(t combat.Target) Key {
	if t.WholeDungeon {
		return DungeonKey(t.Dungeon)
	}
	return Key{Monster: t.Monster, Dungeon: t.Dungeon}
}

// Kind reports which shape of target k names.
func (k Key) Kind() Kind {
	switch {
	case k.Task != "":
		return KindTask
	case k.Dungeon != "" && k.Monster == "":
		return KindDungeon
	case k.Dungeon != "":
		return KindSlot
	default:
		return KindMonster
	}
}

// Target returns the combat target for a simulated key. Tasks have no
// target of their own.
func (k Key) Target() (combat.Target, bool) {
	switch k.Kind() {
	case KindTask:
		return combat.Target{}, false
	case KindDungeon:
		return combat.Target{Dungeon: k.Dungeon, WholeDungeon: true}, true
	default:
		return combat.Target{Monster: k.Monster, Dungeon: k.Dungeon}, true
	}
}

func (k Key) String() string {
	switch k.Kind() {
	case KindTask:
		return "task:" + k.Task
	case KindDungeon:
		return "dungeon:" + k.Dungeon
	case KindSlot:
		return fmt.Sprintf("dungeon:%s/%s", k.Dungeon, k.Monster)
	default:
		return "monster:" + k.Monster
	}
}

// MarshalText lets keys be used as JSON object keys.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the String form.
func (k *Key) UnmarshalText(text []byte) error {
	kind, rest, ok := strings.Cut(string(text), ":")
	if !ok || rest == "" {
		return fmt.Errorf("invalid result key %q", text)
	}
	switch kind {
	case "monster":
		*k = MonsterKey(rest)
	case "task":
		*k = TaskKey(rest)
	case "dungeon":
		if dungeon, monster, slot := strings.Cut(rest, "/"); slot {
			*k = SlotKey(monster, dungeon)
		} else {
			*k = DungeonKey(rest)
		}
	default:
		return fmt.Errorf("invalid result key %q", text)
	}
	return nil
}

// less orders keys by kind (members before aggregates), then by name.
func less(a, b Key) bool {
	if ra, rb := kindRank[a.Kind()], kindRank[b.Kind()]; ra != rb {
		return ra < rb
	}
	return a.String() < b.String()
}
