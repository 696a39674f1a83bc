// Package config loads the SpaceFS configuration from file, environment and
// defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/akulov/spacefs/internal/logger"
	"github.com/akulov/spacefs/pkg/access"
	"github.com/akulov/spacefs/pkg/store"
)

// Config represents the SpaceFS configuration.
//
// Dynamic state (user volumes, shares, access rules, trash records) lives in
// the database; this structure covers only the static aspects: logging,
// database connection, space roots and trash behavior.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (SPACEFS_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior
	Logging logger.Config `mapstructure:"logging" yaml:"logging"`

	// Database configures the persistence backend (SQLite or PostgreSQL).
	Database store.Config `mapstructure:"database" yaml:"database"`

	// Spaces declares where the logical spaces live on disk.
	Spaces access.SpacesConfig `mapstructure:"spaces" yaml:"spaces"`

	// Trash controls the soft-delete subsystem.
	Trash TrashConfig `mapstructure:"trash" yaml:"trash"`

	// Shares controls share-link behavior.
	Shares SharesConfig `mapstructure:"shares" yaml:"shares"`
}

// TrashConfig controls the trash subsystem.
type TrashConfig struct {
	// DirName is the trash directory created inside each space root.
	DirName string `mapstructure:"dir_name" yaml:"dir_name"`
}

// SharesConfig controls share-link behavior.
type SharesConfig struct {
	// GuestSessionTTL is how long a verified guest session stays valid.
	GuestSessionTTL time.Duration `mapstructure:"guest_session_ttl" validate:"gt=0" yaml:"guest_session_ttl"`
}

// Load reads the configuration from the given path (or the default location
// when empty), applies environment overrides and defaults, and validates the
// result.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		cfg := Default()
		if err := Validate(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate runs struct validation over the whole configuration.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}
	return cfg.Database.Validate()
}

// Save writes the configuration to a YAML file.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the SPACEFS_ prefix with underscores.
	// Example: SPACEFS_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("SPACEFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(ConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists. A missing file is
// acceptable; defaults are used instead.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// durationDecodeHook converts config strings like "30s" or "24h" into
// time.Duration values.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// ConfigDir returns the configuration directory path, honoring
// XDG_CONFIG_HOME.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "spacefs")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "spacefs")
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
