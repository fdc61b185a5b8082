// Package config loads the configuration of the corun demo binary.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Resume policies understood by the demo driver.
const (
	PolicyAck          = "ack"
	PolicyCount        = "count"
	PolicyFailOnSecond = "fail-on-second"
)

// KnownRoutines lists the routines the demo knows how to register.
var KnownRoutines = []string{"immediate", "single", "letters", "custom"}

// Config is the root configuration.
type Config struct {
	Log  LogConfig  `mapstructure:"log"`
	Demo DemoConfig `mapstructure:"demo"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format: console or json
	Format string `mapstructure:"format"`
	// Outputs: stdout, stderr, or file paths
	Outputs []string `mapstructure:"outputs"`

	Rotation    RotationConfig `mapstructure:"rotation"`
	Development bool           `mapstructure:"development"`
}

// RotationConfig controls log file rotation for file outputs.
type RotationConfig struct {
	Enable     bool   `mapstructure:"enable"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// DemoConfig selects what `corun run` registers and how it answers.
type DemoConfig struct {
	// Routines to register, in order. Names may repeat.
	Routines []string `mapstructure:"routines"`
	// Policy answering each yield: ack, count or fail-on-second.
	Policy string `mapstructure:"policy"`
	// Trace is an optional path the CBOR event trace is written to.
	Trace string `mapstructure:"trace"`
}

// Default returns a Config populated with defaults.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:   "info",
			Format:  "console",
			Outputs: []string{"stderr"},
			Rotation: RotationConfig{
				Filename:   "logs/corun.log",
				MaxSizeMB:  50,
				MaxBackups: 3,
				MaxAgeDays: 28,
				Compress:   true,
			},
		},
		Demo: DemoConfig{
			Routines: slices.Clone(KnownRoutines),
			Policy:   PolicyAck,
		},
	}
}

// Load reads configuration from path when non-empty, otherwise from
// corun.yaml in the usual locations if one exists. Environment
// variables use the prefix CORUN with `.` and `-` replaced by `_`,
// e.g. CORUN_DEMO_POLICY=count.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("CORUN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.outputs", cfg.Log.Outputs)
	v.SetDefault("log.development", cfg.Log.Development)
	v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
	v.SetDefault("log.rotation.filename", cfg.Log.Rotation.Filename)
	v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)
	v.SetDefault("demo.routines", cfg.Demo.Routines)
	v.SetDefault("demo.policy", cfg.Demo.Policy)
	v.SetDefault("demo.trace", cfg.Demo.Trace)

	if path == "" {
		path = os.Getenv("CORUN_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("corun")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".corun"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// Decode into a zero value: mapstructure only grows existing slices.
	out := &Config{}
	if err := v.Unmarshal(out); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate checks c and normalizes its fields in place.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if len(c.Log.Outputs) == 0 {
		c.Log.Outputs = []string{"stderr"}
	}

	c.Demo.Policy = strings.ToLower(strings.TrimSpace(c.Demo.Policy))
	switch c.Demo.Policy {
	case PolicyAck, PolicyCount, PolicyFailOnSecond:
	default:
		return fmt.Errorf("invalid demo.policy: %q", c.Demo.Policy)
	}
	for i, name := range c.Demo.Routines {
		name = strings.ToLower(strings.TrimSpace(name))
		if !slices.Contains(KnownRoutines, name) {
			return fmt.Errorf("invalid demo.routines[%d]: %q", i, name)
		}
		c.Demo.Routines[i] = name
	}
	return nil
}
