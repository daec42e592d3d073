// Package config loads the TOML configuration file via viper and applies
// defaults for everything left unset.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/eastway/batchlaunch/internal/logger"
	"github.com/eastway/batchlaunch/internal/store"
)

// Config is the top-level TOML structure.
//
// Example:
//
//	root = "C:/Games/PerfectWorld"
//	launch_delay = "15s"
//	listen = "127.0.0.1:7817"
//
//	[store]
//	type = "sqlite"
//	path = "accounts.db"
type Config struct {
	// Root is the game installation directory the executable is located in.
	Root string `toml:"root" mapstructure:"root"`
	// LaunchDelay is the inter-launch delay for multi-account batches.
	// Clamped into a safe range before use.
	LaunchDelay time.Duration `toml:"launch_delay" mapstructure:"launch_delay"`
	// PollInterval is the liveness poll period.
	PollInterval time.Duration `toml:"poll_interval" mapstructure:"poll_interval"`
	// ScriptGrace is how long a rendered temp script stays on disk after a
	// launch before best-effort deletion.
	ScriptGrace time.Duration `toml:"script_grace" mapstructure:"script_grace"`
	// Listen is the control API address.
	Listen string `toml:"listen" mapstructure:"listen"`
	// IncludeCharacter embeds the character name into rendered scripts.
	IncludeCharacter bool `toml:"include_character" mapstructure:"include_character"`

	Scan  ScanConfig    `toml:"scan" mapstructure:"scan"`
	Store store.Config  `toml:"store" mapstructure:"store"`
	Log   logger.Config `toml:"log" mapstructure:"log"`
}

// ScanConfig bounds directory scans.
type ScanConfig struct {
	MaxDepth      int `toml:"max_depth" mapstructure:"max_depth"`
	MaxCandidates int `toml:"max_candidates" mapstructure:"max_candidates"`
}

// Defaults applied after unmarshal.
const (
	DefaultLaunchDelay   = 15 * time.Second
	DefaultPollInterval  = 5 * time.Second
	DefaultScriptGrace   = 10 * time.Second
	DefaultListen        = "127.0.0.1:7817"
	DefaultMaxDepth      = 5
	DefaultMaxCandidates = 200
)

// Load reads a TOML config file and fills in defaults. An empty path
// returns the defaults alone.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		v := viper.New()
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := v.Unmarshal(&c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.LaunchDelay <= 0 {
		c.LaunchDelay = DefaultLaunchDelay
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.ScriptGrace <= 0 {
		c.ScriptGrace = DefaultScriptGrace
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Scan.MaxDepth <= 0 {
		c.Scan.MaxDepth = DefaultMaxDepth
	}
	if c.Scan.MaxCandidates <= 0 {
		c.Scan.MaxCandidates = DefaultMaxCandidates
	}
	if c.Store.Type == "" {
		c.Store.Type = store.TypeSQLite
	}
	if c.Store.Type == store.TypeSQLite && c.Store.Path == "" {
		c.Store.Path = "accounts.db"
	}
}
