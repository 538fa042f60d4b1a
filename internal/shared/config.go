package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	List     ListConfig     `toml:"list"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ListConfig contains paged list engine tunables.
//
// PrefetchDelayMS and PrecisionThreshold are carried as configuration rather
// than hard-coded: the defaults (250 ms, 1e-9) have no derivation beyond
// working well in practice.
type ListConfig struct {
	PageSize           int     `toml:"page_size"`
	PrefetchDelayMS    int     `toml:"prefetch_delay_ms"`
	RenormalizeQuietMS int     `toml:"renormalize_quiet_ms"`
	PrecisionThreshold float64 `toml:"precision_threshold"`
}

// PrefetchDelay returns the inter-page prefetch delay as a [time.Duration].
func (c ListConfig) PrefetchDelay() time.Duration {
	return time.Duration(c.PrefetchDelayMS) * time.Millisecond
}

// RenormalizeQuiet returns the renormalization debounce quiet period as a [time.Duration].
func (c ListConfig) RenormalizeQuiet() time.Duration {
	return time.Duration(c.RenormalizeQuietMS) * time.Millisecond
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
