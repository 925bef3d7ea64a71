// Package consumables folds the time it takes to reacquire consumed
// resources into a slowdown factor on simulated rates.
package consumables

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/lawnchairsociety/killrate/internal/gamedata"
	"github.com/lawnchairsociety/killrate/internal/logger"
)

var (
	// ErrMalformedRates is returned when persisted rates cannot be parsed.
	// The existing rates are left untouched.
	ErrMalformedRates = errors.New("malformed consumable rates")
	// ErrUnknownConsumable is returned when setting an id that is not
	// registered.
	ErrUnknownConsumable = errors.New("unknown consumable")
)

// Top-level consumable categories.
const (
	CategoryPP          = "pp"
	CategoryPotion      = "potion"
	CategoryFood        = "food"
	CategoryRune        = "rune"
	CategoryCombination = "combination"
	CategoryAmmo        = "ammo"
	CategorySummon      = "summon"
)

// itemParents maps item categories to the consumable category their ids
// inherit from.
var itemParents = map[string]string{
	gamedata.CategoryPotion:          CategoryPotion,
	gamedata.CategoryFood:            CategoryFood,
	gamedata.CategoryRune:            CategoryRune,
	gamedata.CategoryCombinationRune: CategoryCombination,
	gamedata.CategoryAmmo:            CategoryAmmo,
	gamedata.CategoryTablet:          CategorySummon,
}

type node struct {
	name    string
	parent  string
	seconds *float64
}

// Costs is the seconds-per-unit tree. Ids without an explicit cost inherit
// their parent's. Costs is safe for concurrent use.
type Costs struct {
	mu    sync.RWMutex
	nodes map[string]*node
}

// NewCosts registers the category tree and every consumable item in reg.
func NewCosts(reg *gamedata.Registry) *Costs {
	c := &Costs{nodes: make(map[string]*node)}
	c.Register(CategoryPP, "Prayer Points", "")
	c.Register(CategoryPotion, "Potion", "")
	c.Register(CategoryFood, "Food", "")
	c.Register(CategoryRune, "Runes", "")
	c.Register(CategoryCombination, "Combination Runes", CategoryRune)
	c.Register(CategoryAmmo, "Ammo", "")
	c.Register(CategorySummon, "Familiar Tablets", "")

	if reg != nil {
		for _, id := range sortedItemIDs(reg) {
			it := reg.Items[id]
			if parent, ok := itemParents[it.Category]; ok {
				c.Register(id, it.Name, parent)
			}
		}
	}
	return c
}

func sortedItemIDs(reg *gamedata.Registry) []string {
	ids := make([]string, 0, len(reg.Items))
	for id := range reg.Items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Register adds id under parent. Re-registering an id keeps its cost.
func (c *Costs) Register(id, name, parent string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.nodes[id]; ok {
		n.name, n.parent = name, parent
		return
	}
	c.nodes[id] = &node{name: name, parent: parent}
}

// Set declares the cost of id in seconds per unit.
func (c *Costs) Set(id string, seconds float64) error {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return fmt.Errorf("cost for %q must be a non-negative number", id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.nodes[id]
	if !ok {
		c.warnUnknown(id, "set")
		return fmt.Errorf("%w: %q", ErrUnknownConsumable, id)
	}
	n.seconds = &seconds
	return nil
}

// Clear removes id's explicit cost so it inherits again.
func (c *Costs) Clear(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.nodes[id]; ok {
		n.seconds = nil
	}
}

// Declared returns id's explicit cost, if any.
func (c *Costs) Declared(id string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.nodes[id]
	if !ok || n.seconds == nil {
		return 0, false
	}
	return *n.seconds, true
}

// Name returns the display name of id.
func (c *Costs) Name(id string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if n, ok := c.nodes[id]; ok {
		return n.name
	}
	return id
}

// IDs returns every registered id, sorted.
func (c *Costs) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.nodes))
	for id := range c.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CostInSeconds resolves id's cost through the override chain. The empty id
// costs 0; unknown ids are logged and cost 0.
func (c *Costs) CostInSeconds(id string) float64 {
	if id == "" {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.nodes[id]; !ok {
		c.warnUnknown(id, "cost lookup")
		return 0
	}
	return c.resolve(id, map[string]bool{})
}

func (c *Costs) resolve(id string, visited map[string]bool) float64 {
	n, ok := c.nodes[id]
	if !ok || visited[id] {
		return 0
	}
	visited[id] = true
	if n.seconds != nil {
		return *n.seconds
	}
	if n.parent == "" {
		return 0
	}
	return c.resolve(n.parent, visited)
}

// warnUnknown logs an unknown id with the closest registered id. Callers
// hold at least the read lock.
func (c *Costs) warnUnknown(id, op string) {
	best, bestDist := "", -1
	for known := range c.nodes {
		d := levenshtein.ComputeDistance(id, known)
		if bestDist < 0 || d < bestDist || (d == bestDist && known < best) {
			best, bestDist = known, d
		}
	}
	logger.Warning("Unknown consumable id", "id", id, "op", op, "did_you_mean", best)
}

// Snapshot returns every declared cost.
func (c *Costs) Snapshot() map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]float64)
	for id, n := range c.nodes {
		if n.seconds != nil {
			out[id] = *n.seconds
		}
	}
	return out
}

// Replace clears every cost and declares the given ones. Unknown ids are
// logged and skipped; invalid values reject the whole map.
func (c *Costs) Replace(costs map[string]float64) error {
	for id, s := range costs {
		if s < 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("cost for %q must be a non-negative number", id)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.nodes {
		n.seconds = nil
	}
	for id, s := range costs {
		n, ok := c.nodes[id]
		if !ok {
			c.warnUnknown(id, "import")
			continue
		}
		v := s
		n.seconds = &v
	}
	return nil
}

// ExportJSON encodes the declared costs with sorted keys and one-space
// indentation.
func (c *Costs) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(c.Snapshot(), "", " ")
}

// ImportJSON replaces all costs with the ones in data. Ids missing from data
// become undeclared. If data cannot be parsed, ErrMalformedRates is returned
// and the current costs are kept.
func (c *Costs) ImportJSON(data []byte) error {
	var raw map[string]*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRates, err)
	}
	if raw == nil {
		return fmt.Errorf("%w: not an object", ErrMalformedRates)
	}
	costs := make(map[string]float64, len(raw))
	for id, s := range raw {
		if s != nil {
			costs[id] = *s
		}
	}
	if err := c.Replace(costs); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRates, err)
	}
	return nil
}
