// Package combat replays encounters tick by tick to measure kill speed,
// survivability and resource use for one target.
package combat

import (
	"errors"
	"fmt"
	"time"

	"github.com/lawnchairsociety/killrate/internal/gamedata"
	"github.com/lawnchairsociety/killrate/internal/logger"
	"github.com/lawnchairsociety/killrate/internal/player"
	"github.com/lawnchairsociety/killrate/internal/stats"
)

// Timing constants, in ticks unless noted.
const (
	TickMs         = 50
	TicksPerSecond = 1000 / TickMs
	SpawnTicks     = 60
	RegenTicks     = 200
)

// XP and reward constants.
const (
	CombatXPPerDamage    = 0.4
	HitpointsXPPerDamage = 0.133
	PrayerXPPerPoint     = 2
	SlayerCoinsPerHP     = 0.1
)

var (
	// ErrRequirementsNotMet means the build cannot enter the target's area
	// or dungeon.
	ErrRequirementsNotMet = errors.New("entry requirements not met")
	// ErrUnknownTarget means the target references ids missing from the
	// registry.
	ErrUnknownTarget = errors.New("unknown target")
)

// Request describes one run.
type Request struct {
	Target    Target
	Trials    int
	TickLimit int
	Source    stats.Source
}

// Driver runs targets against one build. A Driver holds no per-run state and
// may be reused; each Run is isolated.
type Driver struct {
	reg   *gamedata.Registry
	build *player.Build
}

// NewDriver creates a driver for a build over a registry.
func NewDriver(reg *gamedata.Registry, build *player.Build) *Driver {
	return &Driver{reg: reg, build: build}
}

// Run simulates req.Trials trials of req.Target. A run always completes;
// failures are reported on the tally rather than returned.
func (d *Driver) Run(req Request) Tally {
	t := newTally(req.Target, req.Trials)

	e, err := d.prepare(req, t)
	if err != nil {
		t.Err = err
		t.Reason = err.Error()
		logger.Debug("Target not simulated", "target", req.Target, "reason", t.Reason)
		return *t
	}

	start := time.Now()
	totalTickLimit := req.Trials * req.TickLimit
	for t.Completed() < req.Trials && t.Ticks < totalTickLimit {
		e.step()
	}

	t.Success = true
	if t.Completed() < req.Trials {
		t.Partial = true
		t.Reason = fmt.Sprintf("simulated %d/%d trials", t.Completed(), req.Trials)
	}

	logger.Debug("Simulation finished",
		"target", req.Target,
		"kills", t.Kills,
		"deaths", t.Deaths,
		"ticks", t.Ticks,
		"elapsed", time.Since(start))

	return *t
}

// prepare resolves the target, checks entry requirements and builds the
// encounter state machine in Idle.
func (d *Driver) prepare(req Request, t *Tally) (*encounter, error) {
	if req.Source == nil {
		return nil, errors.New("no random source")
	}

	e := &encounter{
		reg:   d.reg,
		build: d.build,
		src:   req.Source,
		tally: t,
		state: Idle,
	}

	target := req.Target
	switch {
	case target.Dungeon != "":
		dungeon, ok := d.reg.Dungeon(target.Dungeon)
		if !ok {
			return nil, fmt.Errorf("%w: dungeon %q", ErrUnknownTarget, target.Dungeon)
		}
		e.dungeon = dungeon
		if target.WholeDungeon {
			for _, id := range dungeon.Monsters {
				m, ok := d.reg.Monster(id)
				if !ok {
					return nil, fmt.Errorf("%w: monster %q", ErrUnknownTarget, id)
				}
				e.sequence = append(e.sequence, m)
			}
		} else {
			m, ok := d.reg.Monster(target.Monster)
			if !ok || !contains(dungeon.Monsters, target.Monster) {
				return nil, fmt.Errorf("%w: monster %q in dungeon %q", ErrUnknownTarget, target.Monster, target.Dungeon)
			}
			e.sequence = []*gamedata.Monster{m}
		}
		if err := d.build.CheckRequirements(dungeon.Requirements, 0); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRequirementsNotMet, err)
		}
	default:
		m, ok := d.reg.Monster(target.Monster)
		if !ok {
			return nil, fmt.Errorf("%w: monster %q", ErrUnknownTarget, target.Monster)
		}
		e.sequence = []*gamedata.Monster{m}
		if area, ok := d.reg.AreaOf(m.ID); ok {
			e.area = area
			if err := d.build.CheckRequirements(area.Requirements, 0); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrRequirementsNotMet, err)
			}
		}
	}

	e.reset()
	return e, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// HitChance is the probability an attack with accuracy acc lands against
// evasion eva.
func HitChance(acc, eva int) float64 {
	switch {
	case acc <= 0:
		return 0
	case eva <= 0:
		return 1
	case acc < eva:
		return 0.5 * float64(acc) / float64(eva)
	default:
		return 1 - 0.5*float64(eva)/float64(acc)
	}
}
