// Package pipeline runs a full recompute: it simulates every target one at a
// time, aggregates the tallies, and passes the result set through the loot,
// pet and consumption stages.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/lawnchairsociety/killrate/internal/combat"
	"github.com/lawnchairsociety/killrate/internal/consumables"
	"github.com/lawnchairsociety/killrate/internal/gamedata"
	"github.com/lawnchairsociety/killrate/internal/logger"
	"github.com/lawnchairsociety/killrate/internal/loot"
	"github.com/lawnchairsociety/killrate/internal/pets"
	"github.com/lawnchairsociety/killrate/internal/player"
	"github.com/lawnchairsociety/killrate/internal/results"
	"github.com/lawnchairsociety/killrate/internal/stats"
)

// Config is the snapshot one recompute runs against.
type Config struct {
	Trials    int
	TickLimit int

	// Seed fixes every target's random stream. 0 draws a fresh seed.
	Seed int64

	Horizon    results.Horizon
	Policy     loot.Policy
	PetSkill   string
	ApplyRates bool

	// Targets restricts the batch. Empty means every area monster, dungeon
	// and slayer task in the registry.
	Targets []results.Key
}

// Progress reports one simulated target.
type Progress struct {
	BatchID string
	Key     results.Key
	Done    int
	Total   int
	Success bool
	Reason  string
}

// Batch is the outcome of one recompute.
type Batch struct {
	ID         string
	Seed       int64
	StartedAt  time.Time
	FinishedAt time.Time
	Cancelled  bool
	Failed     int
	Results    results.Set
}

// Engine recomputes result sets for one build.
type Engine struct {
	reg   *gamedata.Registry
	build *player.Build
	costs *consumables.Costs

	// OnProgress, if set, is called after each simulated target.
	OnProgress func(Progress)
}

// NewEngine creates an engine. costs may be nil when rates are never applied.
func NewEngine(reg *gamedata.Registry, build *player.Build, costs *consumables.Costs) *Engine {
	if costs == nil {
		costs = consumables.NewCosts(reg)
	}
	return &Engine{reg: reg, build: build, costs: costs}
}

// Costs returns the consumable cost tree the engine amortizes with.
func (e *Engine) Costs() *consumables.Costs {
	return e.costs
}

// Recompute simulates every planned target and runs the valuation stages.
// Cancellation is honored only between targets; on cancellation the results
// completed so far are staged and returned along with ctx's error.
func (e *Engine) Recompute(ctx context.Context, cfg Config) (*Batch, error) {
	seed := cfg.Seed
	if seed == 0 {
		var err error
		if seed, err = stats.NewSeed(); err != nil {
			return nil, err
		}
	}

	batch := &Batch{ID: uuid.NewString(), Seed: seed, StartedAt: time.Now()}
	p := e.plan(cfg.Targets)
	driver := combat.NewDriver(e.reg, e.build)
	capacity := e.build.PotionCapacity(e.reg)

	log := logger.With("batch", batch.ID)
	log.Info("Recompute started", "targets", len(p.simulate), "seed", seed)

	simulated := make(map[results.Key]results.Result, len(p.simulate))
	var cancelErr error
	for i, key := range p.simulate {
		if err := ctx.Err(); err != nil {
			cancelErr = err
			batch.Cancelled = true
			log.Info("Recompute cancelled", "completed", i, "total", len(p.simulate))
			break
		}

		target, _ := key.Target()
		tally := driver.Run(combat.Request{
			Target:    target,
			Trials:    cfg.Trials,
			TickLimit: cfg.TickLimit,
			Source:    stats.NewSource(stats.DeriveSeed(seed, key.String())),
		})
		r := results.FromTally(tally, capacity)
		simulated[key] = r
		if !r.Success {
			batch.Failed++
		}

		if e.OnProgress != nil {
			e.OnProgress(Progress{
				BatchID: batch.ID,
				Key:     key,
				Done:    i + 1,
				Total:   len(p.simulate),
				Success: r.Success,
				Reason:  r.Reason,
			})
		}
		runtime.Gosched()
	}

	set := e.stage(cfg, p.assemble(simulated))
	batch.Results = set
	batch.FinishedAt = time.Now()

	log.Info("Recompute finished",
		"results", set.Len(),
		"failed", batch.Failed,
		"elapsed", batch.FinishedAt.Sub(batch.StartedAt).Round(time.Millisecond))

	if cancelErr != nil {
		return batch, fmt.Errorf("recompute %s: %w", batch.ID, cancelErr)
	}
	return batch, nil
}

// stage runs the post-processing transforms in order.
func (e *Engine) stage(cfg Config, set results.Set) results.Set {
	valuer := loot.NewValuer(e.reg, e.build.Modifiers, cfg.Policy)
	set = valuer.Stage(set, cfg.Horizon)
	set = pets.NewEstimator(e.build, cfg.PetSkill).Stage(set, cfg.Horizon)
	return consumables.NewAmortizer(e.costs, e.build, cfg.ApplyRates).Stage(set)
}
