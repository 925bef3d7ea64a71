package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"WARNING", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseLogLevel(tt.input)
			if result != tt.expected {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig returned error for missing file: %v", err)
	}

	if config.Level != "INFO" {
		t.Errorf("Default level = %q, want %q", config.Level, "INFO")
	}
	if !config.ConsoleEnabled {
		t.Error("Default ConsoleEnabled = false, want true")
	}
	if config.FileEnabled {
		t.Error("Default FileEnabled = true, want false")
	}
	if config.FilePath != "logs/killrate.log" {
		t.Errorf("Default FilePath = %q, want %q", config.FilePath, "logs/killrate.log")
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logging.yaml")
	yamlContent := `logging:
  level: DEBUG
  console_format: json
  file_enabled: true
  file_path: test.log
  file_max_size_mb: 20
`
	if err := os.WriteFile(path, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if config.Level != "DEBUG" {
		t.Errorf("Level = %q, want %q", config.Level, "DEBUG")
	}
	if config.ConsoleFormat != "json" {
		t.Errorf("ConsoleFormat = %q, want %q", config.ConsoleFormat, "json")
	}
	if !config.ConsoleEnabled {
		t.Error("ConsoleEnabled should keep its default when omitted")
	}
	if !config.FileEnabled {
		t.Error("FileEnabled = false, want true")
	}
	if config.FileMaxSizeMB != 20 {
		t.Errorf("FileMaxSizeMB = %d, want %d", config.FileMaxSizeMB, 20)
	}
	if config.FileMaxBackups != 5 {
		t.Errorf("FileMaxBackups = %d, want default 5", config.FileMaxBackups)
	}
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logging.yaml")
	if err := os.WriteFile(path, []byte("logging: [unterminated"), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	config, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if config.Level != "INFO" {
		t.Errorf("Level = %q, want defaults on error", config.Level)
	}
}

func TestEnvVarOverride(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("LOG_CONSOLE_FORMAT", "json")
	t.Setenv("LOG_FILE_ENABLED", "true")
	t.Setenv("LOG_FILE_PATH", "/custom/path.log")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if config.Level != "ERROR" {
		t.Errorf("Level = %q, want %q (from env var)", config.Level, "ERROR")
	}
	if config.ConsoleFormat != "json" {
		t.Errorf("ConsoleFormat = %q, want %q (from env var)", config.ConsoleFormat, "json")
	}
	if !config.FileEnabled {
		t.Error("FileEnabled = false, want true (from env var)")
	}
	if config.FilePath != "/custom/path.log" {
		t.Errorf("FilePath = %q, want %q (from env var)", config.FilePath, "/custom/path.log")
	}
}

func TestLoadConfigRejectsUnknownFormat(t *testing.T) {
	t.Setenv("LOG_CONSOLE_FORMAT", "xml")

	if _, err := LoadConfig(""); err == nil {
		t.Fatal("expected format error")
	}
}

func TestEnvVarOverrideRotation(t *testing.T) {
	t.Setenv("LOG_FILE_MAX_SIZE_MB", "50")
	t.Setenv("LOG_FILE_COMPRESS", "true")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if config.FileMaxSizeMB != 50 || !config.FileCompress {
		t.Errorf("rotation overrides not applied: %+v", config)
	}
}

func TestEnvVarOverrideInvalidBool(t *testing.T) {
	t.Setenv("LOG_FILE_ENABLED", "sometimes")

	if _, err := LoadConfig(""); err == nil {
		t.Fatal("expected env parse error")
	}
}

func TestInitializeWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "sim.log")
	cfg := DefaultConfig()
	cfg.ConsoleEnabled = false
	cfg.FileEnabled = true
	cfg.FilePath = path

	if err := Initialize(cfg); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer Use(nil)

	Info("Recompute finished", "targets", 3)
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"targets":3`) {
		t.Errorf("log file missing structured field: %s", data)
	}
}

func TestInitializeFileWithoutPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FileEnabled = true
	cfg.FilePath = ""

	if err := Initialize(cfg); err == nil {
		t.Fatal("expected error for empty file path")
	}
}

func TestCloseWithoutFile(t *testing.T) {
	if err := Close(); err != nil {
		t.Errorf("Close with no file open: %v", err)
	}
}

func TestWithCarriesAttrs(t *testing.T) {
	var buf bytes.Buffer
	Use(slog.New(formatHandler(&buf, "text", slog.LevelInfo)))
	defer Use(nil)

	With("batch", "b-1").Info("Recompute started", "targets", 4)

	output := buf.String()
	if !strings.Contains(output, "batch=b-1") || !strings.Contains(output, "targets=4") {
		t.Errorf("child logger lost attributes: %s", output)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Use(slog.New(formatHandler(&buf, "TEXT", slog.LevelInfo)))
	defer Use(nil)

	Debug("Simulation finished")
	Warning("Unknown consumable id", "id", "rune_x")

	output := buf.String()
	if strings.Contains(output, "Simulation finished") {
		t.Errorf("debug record written at INFO: %s", output)
	}
	if !strings.Contains(output, "level=WARN") || !strings.Contains(output, "id=rune_x") {
		t.Errorf("warning record missing: %s", output)
	}
}

func TestFanout(t *testing.T) {
	var text, js bytes.Buffer

	Use(slog.New(fanout{
		slog.NewTextHandler(&text, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&js, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}))
	defer Use(nil)

	Info("target simulated", "monster", "chicken")
	Debug("json only")

	if !strings.Contains(text.String(), "monster=chicken") {
		t.Error("text handler missing structured field")
	}
	if !strings.Contains(js.String(), `"monster":"chicken"`) {
		t.Error("json handler missing structured field")
	}
	if strings.Contains(text.String(), "json only") || !strings.Contains(js.String(), "json only") {
		t.Error("fanout ignored per-handler levels")
	}
}

func TestNilLogger(t *testing.T) {
	Use(nil)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logging with nil logger caused panic: %v", r)
		}
	}()

	Debug("debug")
	Info("info")
	Warning("warning")
	Error("error")
	With("batch", "x").Info("discarded")
	if Logger() == nil {
		t.Error("Logger() returned nil")
	}
}
