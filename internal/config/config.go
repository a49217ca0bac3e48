// Package config implements the server's optional layered configuration.
// The CLI remains the only required way to launch the server; settings
// with no natural CLI spelling (lock-file path, handle-journal path/TTL,
// per-drive FAT overrides, fsnotify invalidation) can be set through an
// optional `-config` file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete optional configuration surface. Every field has a
// usable default, so a server started with no `-config` flag at all runs
// correctly.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging"`

	// LockFilePath overrides the default lock-file location.
	LockFilePath string `mapstructure:"lock_file_path" validate:"required"`

	// Journal controls the optional badger-backed handle journal.
	Journal JournalConfig `mapstructure:"journal"`

	// Watch controls fsnotify-based directory snapshot invalidation.
	Watch WatchConfig `mapstructure:"watch"`

	// FATOverrides lets an operator force a drive root (keyed by its
	// absolute path) to be treated as FAT-backed or not, bypassing the
	// startup probe. Useful when the probe can't see through a bind-mount
	// or container overlay.
	FATOverrides map[string]bool `mapstructure:"fat_overrides"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

// JournalConfig configures the optional persistent handle journal.
type JournalConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Path    string        `mapstructure:"path" validate:"required_if=Enabled true"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// WatchConfig configures fsnotify-based snapshot invalidation.
type WatchConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// envPrefix is the ETHERDFS_* environment variable prefix. Precedence is
// CLI flags > ETHERDFS_* env > config file > defaults.
const envPrefix = "ETHERDFS"

// Load reads configPath (if non-empty) through viper, applies environment
// overrides, fills in defaults, and validates the result. An empty
// configPath is not an error: the server runs on defaults alone.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return &cfg, nil
}
