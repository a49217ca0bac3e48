package config

import "github.com/etherdfs/ethersrv/internal/lockfile"

// ApplyDefaults fills in any field left unset after the config file and
// environment overrides: zero values are replaced, explicit values are
// preserved.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	if cfg.LockFilePath == "" {
		cfg.LockFilePath = lockfile.DefaultPath
	}
	if cfg.Journal.Enabled && cfg.Journal.Path == "" {
		cfg.Journal.Path = "/var/lib/ethersrv/journal"
	}
}
