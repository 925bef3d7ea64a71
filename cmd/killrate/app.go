package main

import (
	"fmt"
	"os"

	"github.com/lawnchairsociety/killrate/internal/config"
	"github.com/lawnchairsociety/killrate/internal/consumables"
	"github.com/lawnchairsociety/killrate/internal/database"
	"github.com/lawnchairsociety/killrate/internal/gamedata"
	"github.com/lawnchairsociety/killrate/internal/logger"
	"github.com/lawnchairsociety/killrate/internal/player"
)

// app is everything a command needs, loaded from the settings file.
type app struct {
	cfg   *config.Config
	reg   *gamedata.Registry
	build *player.Build
	costs *consumables.Costs
	db    *database.Database
}

func initLogging() error {
	logConfig, err := logger.LoadConfig(flagLogging)
	if err != nil {
		return err
	}
	return logger.Initialize(logConfig)
}

func loadSettings() (*config.Config, error) {
	cfg, err := config.LoadConfig(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagData != "" {
		cfg.Data.Dir = flagData
	}
	if flagBuild != "" {
		cfg.Data.BuildFile = flagBuild
	}
	return cfg, nil
}

// loadApp reads settings, reference data and the build, and resolves the
// consumable costs from the rates file or the stored profile.
func loadApp(withDB bool) (*app, error) {
	cfg, err := loadSettings()
	if err != nil {
		return nil, err
	}

	reg, err := gamedata.LoadRegistryFromYAML(cfg.Data.Dir)
	if err != nil {
		return nil, err
	}
	build, err := player.LoadBuild(cfg.Data.BuildFile)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, reg: reg, build: build, costs: consumables.NewCosts(reg)}

	if withDB || cfg.Consumables.Profile != "" {
		if a.db, err = openDatabase(cfg); err != nil {
			return nil, err
		}
	}

	if err := a.loadCosts(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) loadCosts() error {
	if path := a.cfg.Consumables.RatesFile; path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := a.costs.ImportJSON(data); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			logger.Info("Consumable costs loaded", "path", path, "declared", len(a.costs.Snapshot()))
		case !os.IsNotExist(err):
			return err
		}
	}

	if a.db != nil && a.cfg.Consumables.Profile != "" {
		costs, err := a.db.LoadProfile(a.cfg.Consumables.Profile)
		if err != nil {
			logger.Warning("Cost profile unavailable", "profile", a.cfg.Consumables.Profile, "error", err)
			return nil
		}
		if err := a.costs.Replace(costs); err != nil {
			return err
		}
		logger.Info("Consumable costs loaded", "profile", a.cfg.Consumables.Profile, "declared", len(costs))
	}
	return nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

func openDatabase(cfg *config.Config) (*database.Database, error) {
	return database.OpenWithConfig(database.FromSettings(cfg.Database))
}
