package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config selects where simulator logs go and in which format (text or json).
type Config struct {
	Level          string `yaml:"level" env:"LOG_LEVEL"`
	ConsoleEnabled bool   `yaml:"console_enabled" env:"LOG_CONSOLE_ENABLED"`
	ConsoleFormat  string `yaml:"console_format" env:"LOG_CONSOLE_FORMAT"`
	FileEnabled    bool   `yaml:"file_enabled" env:"LOG_FILE_ENABLED"`
	FilePath       string `yaml:"file_path" env:"LOG_FILE_PATH"`
	FileFormat     string `yaml:"file_format" env:"LOG_FILE_FORMAT"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb" env:"LOG_FILE_MAX_SIZE_MB"`
	FileMaxBackups int    `yaml:"file_max_backups" env:"LOG_FILE_MAX_BACKUPS"`
	FileMaxAgeDays int    `yaml:"file_max_age_days" env:"LOG_FILE_MAX_AGE_DAYS"`
	FileCompress   bool   `yaml:"file_compress" env:"LOG_FILE_COMPRESS"`
}

// LoggingConfig is the top-level shape of logging.yaml.
type LoggingConfig struct {
	Logging Config `yaml:"logging"`
}

// DefaultConfig logs text to the console at INFO.
func DefaultConfig() Config {
	return Config{
		Level:          "INFO",
		ConsoleEnabled: true,
		ConsoleFormat:  "text",
		FileEnabled:    false,
		FilePath:       "logs/killrate.log",
		FileFormat:     "json",
		FileMaxSizeMB:  10,
		FileMaxBackups: 5,
		FileMaxAgeDays: 30,
	}
}

// LoadConfig loads logging configuration from a YAML file and applies
// LOG_* environment overrides. Keys missing from the file keep their
// defaults; a missing file is not an error.
func LoadConfig(configPath string) (Config, error) {
	wrapper := LoggingConfig{Logging: DefaultConfig()}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &wrapper); err != nil {
				return DefaultConfig(), fmt.Errorf("failed to parse logging YAML: %w", err)
			}
		case !os.IsNotExist(err):
			return DefaultConfig(), fmt.Errorf("failed to read logging config: %w", err)
		}
	}

	config := wrapper.Logging
	if err := env.Parse(&config); err != nil {
		return config, fmt.Errorf("parse env: %w", err)
	}
	for _, format := range []string{config.ConsoleFormat, config.FileFormat} {
		if !strings.EqualFold(format, "text") && !strings.EqualFold(format, "json") {
			return config, fmt.Errorf("unknown log format %q (want text or json)", format)
		}
	}

	return config, nil
}
