package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/akulov/spacefs/internal/logger"
	"github.com/akulov/spacefs/pkg/trash"
)

// DefaultGuestSessionTTL is how long guest sessions stay valid by default.
const DefaultGuestSessionTTL = 24 * time.Hour

// ApplyDefaults fills in missing configuration with default values.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	cfg.Database.ApplyDefaults()

	if cfg.Spaces.VolumeRoot == "" {
		cfg.Spaces.VolumeRoot = filepath.Join(dataDir(), "volume")
	}
	if cfg.Spaces.PersonalRoot == "" {
		cfg.Spaces.PersonalRoot = filepath.Join(dataDir(), "personal")
	}

	if cfg.Trash.DirName == "" {
		cfg.Trash.DirName = trash.DefaultDirName
	}
	if cfg.Shares.GuestSessionTTL == 0 {
		cfg.Shares.GuestSessionTTL = DefaultGuestSessionTTL
	}
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{
		Logging: logger.Config{
			Level:  "INFO",
			Format: "text",
			Output: "stdout",
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// dataDir returns the data directory path, honoring XDG_DATA_HOME.
func dataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "spacefs")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "spacefs")
}
