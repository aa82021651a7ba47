// Package config handles pcapflow's static configuration loading, using
// viper so a YAML file, environment variables, and built-in defaults all
// resolve into one Config value.
package config

import "firestige.xyz/pcapflow/internal/log"

// Config is the top-level static configuration. It maps to the
// `pcapflow:` root key in YAML; env vars use the PCAPFLOW_ prefix (e.g.
// PCAPFLOW_LOG_LEVEL).
type Config struct {
	Log    log.LoggerConfig `mapstructure:"log"`
	Filter FilterDefaults   `mapstructure:"filter"`
	Follow FollowConfig     `mapstructure:"follow"`
}

// FilterDefaults seeds FilterConfig for the filter command when the
// matching flag is not given on the command line.
type FilterDefaults struct {
	FirstPacket     *uint64  `mapstructure:"first_packet"`
	LastPacket      *uint64  `mapstructure:"last_packet"`
	FirstTimeOffset *int64   `mapstructure:"first_time_offset"`
	LastTimeOffset  *int64   `mapstructure:"last_time_offset"`
	VlanMatch       []uint32 `mapstructure:"vlan_match"`
	Protocols       []string `mapstructure:"protocols"`
}

// FollowConfig controls PcapStream-style continuous reading.
type FollowConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Retries  int  `mapstructure:"retries"`
	Interval string `mapstructure:"interval"` // parsed with time.ParseDuration
}

// Default returns the configuration pcapflow runs with when the user
// supplies no config file at all.
func Default() *Config {
	return &Config{
		Log: *log.DefaultConfig(),
		Follow: FollowConfig{
			Retries:  5,
			Interval: "500ms",
		},
	}
}
