package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// configRoot mirrors the YAML structure `pcapflow: ...`.
type configRoot struct {
	Pcapflow Config `mapstructure:"pcapflow"`
}

// Load reads path (if non-empty) merged over built-in defaults and
// PCAPFLOW_-prefixed environment overrides. An empty path returns the
// defaults with only environment overrides applied.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
	}

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	cfg := root.Pcapflow
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pcapflow.log.level", "info")
	v.SetDefault("pcapflow.log.pattern", "%time [%level] %msg %field")
	v.SetDefault("pcapflow.log.time", "2006-01-02T15:04:05.000Z07:00")
	v.SetDefault("pcapflow.follow.enabled", false)
	v.SetDefault("pcapflow.follow.retries", 5)
	v.SetDefault("pcapflow.follow.interval", "500ms")
}

func (cfg *Config) validate() error {
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if cfg.Log.Level != "" && !validLevels[strings.ToLower(cfg.Log.Level)] {
		return fmt.Errorf("config: invalid log.level %q", cfg.Log.Level)
	}
	return nil
}
