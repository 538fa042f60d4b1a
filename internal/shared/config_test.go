package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./tracklist.db" {
			t.Errorf("expected database path ./tracklist.db, got %s", config.Database.Path)
		}

		if config.List.PageSize != 250 {
			t.Errorf("expected page size 250, got %d", config.List.PageSize)
		}

		if config.List.PrefetchDelay() != 250*time.Millisecond {
			t.Errorf("expected prefetch delay 250ms, got %v", config.List.PrefetchDelay())
		}

		if config.List.RenormalizeQuiet() != 2*time.Second {
			t.Errorf("expected renormalize quiet period 2s, got %v", config.List.RenormalizeQuiet())
		}

		if config.List.PrecisionThreshold != 1e-9 {
			t.Errorf("expected precision threshold 1e-9, got %g", config.List.PrecisionThreshold)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[list]
page_size = 100
prefetch_delay_ms = 50
renormalize_quiet_ms = 500
precision_threshold = 1e-6
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected custom database path, got %s", config.Database.Path)
		}

		if config.List.PageSize != 100 {
			t.Errorf("expected page size 100, got %d", config.List.PageSize)
		}

		if config.List.PrefetchDelay() != 50*time.Millisecond {
			t.Errorf("expected prefetch delay 50ms, got %v", config.List.PrefetchDelay())
		}

		if config.List.PrecisionThreshold != 1e-6 {
			t.Errorf("expected precision threshold 1e-6, got %g", config.List.PrecisionThreshold)
		}
	})

	t.Run("LoadConfigMissingFile", func(t *testing.T) {
		if _, err := LoadConfig("/nonexistent/config.toml"); err == nil {
			t.Error("loading a missing config file should fail")
		}
	})
}
