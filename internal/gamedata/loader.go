package gamedata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lawnchairsociety/killrate/internal/logger"
	"gopkg.in/yaml.v3"
)

// DataFiles are the reference-data files read from a data directory, in load order.
var DataFiles = []string{"items.yaml", "monsters.yaml", "areas.yaml", "dungeons.yaml", "slayer_tasks.yaml"}

// LoadRegistryFromYAML reads every file in DataFiles from dir, merges them
// into one registry and validates it. Missing optional files (areas,
// dungeons, tasks) are skipped; items and monsters are required.
func LoadRegistryFromYAML(dir string) (*Registry, error) {
	reg := NewRegistry()

	for _, name := range DataFiles {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) && name != "items.yaml" && name != "monsters.yaml" {
				logger.Debug("Reference data file missing, skipping", "path", path)
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		var part Registry
		if err := yaml.Unmarshal(data, &part); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		if err := reg.merge(&part, name); err != nil {
			return nil, err
		}
	}

	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reference data: %w", err)
	}

	logger.Info("Reference data loaded",
		"items", len(reg.Items),
		"monsters", len(reg.Monsters),
		"areas", len(reg.Areas),
		"dungeons", len(reg.Dungeons),
		"slayer_tasks", len(reg.Tasks))

	return reg, nil
}

func (r *Registry) merge(part *Registry, source string) error {
	if err := mergeInto(r.Items, part.Items, "item", source); err != nil {
		return err
	}
	if err := mergeInto(r.Monsters, part.Monsters, "monster", source); err != nil {
		return err
	}
	if err := mergeInto(r.Areas, part.Areas, "area", source); err != nil {
		return err
	}
	if err := mergeInto(r.Dungeons, part.Dungeons, "dungeon", source); err != nil {
		return err
	}
	if err := mergeInto(r.Tasks, part.Tasks, "slayer task", source); err != nil {
		return err
	}
	if part.SignetItem != "" {
		r.SignetItem = part.SignetItem
	}
	return nil
}

func mergeInto[V any](dst, src map[string]V, kind, source string) error {
	for id, v := range src {
		if _, dup := dst[id]; dup {
			return fmt.Errorf("%s: duplicate %s %q", source, kind, id)
		}
		dst[id] = v
	}
	return nil
}
