package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings holds process configuration: where run history lives, which
// AWS region to deploy into, and which workflow engine executes the
// pipeline. The pipeline definition itself (gates and targets) is a
// separate file; see the config package.
type Settings struct {
	Database DatabaseSettings `mapstructure:"database"`
	AWS      AWSSettings      `mapstructure:"aws"`
	Engine   EngineSettings   `mapstructure:"engine"`
	Pip      PipSettings      `mapstructure:"pip"`
}

// DatabaseSettings holds run-history database configuration.
type DatabaseSettings struct {
	Path string `mapstructure:"path"`
}

// AWSSettings holds deployment client configuration.
type AWSSettings struct {
	Region string `mapstructure:"region"`
}

// EngineSettings selects and tunes the workflow engine.
type EngineSettings struct {
	// Name is "sync" for in-process execution or "durable" for the
	// replayable go-workflows engine.
	Name string `mapstructure:"name"`

	// MaxParallel bounds concurrent deployment jobs under the sync
	// engine. Zero or negative means no limit.
	MaxParallel int `mapstructure:"max_parallel"`

	// StatePath is the durable engine's workflow state database.
	StatePath string `mapstructure:"state_path"`

	// Timeout bounds one whole pipeline run under the durable engine.
	Timeout time.Duration `mapstructure:"timeout"`
}

// PipSettings holds dependency resolution configuration.
type PipSettings struct {
	Command string `mapstructure:"command"`
}

// LoadSettings loads settings from the optional file and the
// DEPLOYCTL_* environment.
func LoadSettings(path string) (Settings, error) {
	v := viper.New()

	v.SetDefault("database.path", "./deployctl.db")
	v.SetDefault("aws.region", "ap-southeast-1")
	v.SetDefault("engine.name", "sync")
	v.SetDefault("engine.max_parallel", 4)
	v.SetDefault("engine.state_path", "./deployctl-workflows.db")
	v.SetDefault("engine.timeout", "15m")
	v.SetDefault("pip.command", "pip3")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read settings file: %w", err)
		}
	}

	v.SetEnvPrefix("DEPLOYCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal settings: %w", err)
	}

	if s.Engine.Name != "sync" && s.Engine.Name != "durable" {
		return Settings{}, fmt.Errorf("unknown engine %q (want sync or durable)", s.Engine.Name)
	}
	return s, nil
}
