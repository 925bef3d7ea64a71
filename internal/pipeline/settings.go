package pipeline

import (
	"github.com/lawnchairsociety/killrate/internal/config"
	"github.com/lawnchairsociety/killrate/internal/loot"
	"github.com/lawnchairsociety/killrate/internal/results"
)

// FromSettings maps loaded settings onto a recompute snapshot.
func FromSettings(c *config.Config) Config {
	shards := loot.ShardsSell
	if c.Loot.ConvertShards {
		shards = loot.ShardsConvert
	}
	return Config{
		Trials:    c.Simulation.Trials,
		TickLimit: c.Simulation.TickLimit,
		Seed:      c.Simulation.Seed,
		Horizon:   results.Horizon{Seconds: c.Simulation.HorizonSeconds},
		Policy: loot.Policy{
			SellBones:    c.Loot.SellBones,
			Shards:       shards,
			SelectedDrop: c.Loot.SelectedDrop,
		},
		PetSkill:   c.Pets.Skill,
		ApplyRates: c.Consumables.ApplyRates,
	}
}
