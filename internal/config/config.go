// Package config loads the account and timing configuration from
// ~/.config/tracktray/config.toml, with TRACKTRAY_* environment variables
// taking precedence over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config is the validated runtime configuration.
type Config struct {
	URI      string
	Username string
	// Interval is the prompt cadence and the oracle's recency window.
	Interval time.Duration
	// StopInterval is the unanswered-prompt timeout.
	StopInterval time.Duration
	// SavePassword controls whether a freshly entered password is written to
	// the system keyring after a successful connect.
	SavePassword bool
}

const (
	defaultIntervalHours    = 0.33
	defaultStopIntervalSecs = 300
)

// Load reads the config file at path (empty means the default location) and
// applies environment overrides and defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("toml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".config", "tracktray"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("TRACKTRAY")
	v.AutomaticEnv()

	v.SetDefault("interval", defaultIntervalHours)
	v.SetDefault("stop_interval", defaultStopIntervalSecs)
	v.SetDefault("save_password", true)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		// Missing file is fine; env vars and defaults still apply.
	}

	cfg := Config{
		URI:          v.GetString("uri"),
		Username:     v.GetString("username"),
		SavePassword: v.GetBool("save_password"),
	}

	intervalHours := v.GetFloat64("interval")
	if intervalHours <= 0 {
		intervalHours = defaultIntervalHours
	}
	cfg.Interval = time.Duration(intervalHours * float64(time.Hour))

	stopSecs := v.GetInt("stop_interval")
	if stopSecs <= 0 {
		stopSecs = defaultStopIntervalSecs
	}
	cfg.StopInterval = time.Duration(stopSecs) * time.Second

	return cfg, nil
}

// Validate reports whether the account fields needed to connect are present.
func (c Config) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("config: uri is required")
	}
	if c.Username == "" {
		return fmt.Errorf("config: username is required")
	}
	return nil
}
