package player

import (
	"fmt"
	"os"

	"github.com/lawnchairsociety/killrate/internal/logger"
	"gopkg.in/yaml.v3"
)

// LoadBuild reads a build snapshot from a YAML file and validates it.
func LoadBuild(path string) (*Build, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read build file: %w", err)
	}

	var b Build
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse build file: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid build %s: %w", path, err)
	}

	logger.Debug("Build loaded", "path", path, "name", b.Name, "style", b.Style)
	return &b, nil
}
