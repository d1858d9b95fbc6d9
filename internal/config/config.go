// Package config loads the pipeline definition file: the gate stages to
// run and the static target table.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/randallong/irentstuff-transactions/internal/domain"
)

// GateSpec configures one gate stage.
type GateSpec struct {
	Name    string   `yaml:"name"`
	Command []string `yaml:"command"`
	Dir     string   `yaml:"dir"`

	// Policy is "blocking" or "advisory". Empty means blocking.
	Policy string `yaml:"policy"`
}

// Mode returns the gate policy for the spec.
func (g GateSpec) Mode() domain.GatePolicy {
	if g.Policy == "advisory" {
		return domain.GateAdvisory
	}
	return domain.GateBlocking
}

// FunctionSpec configures the function runtime metadata of a target.
type FunctionSpec struct {
	Name           string `yaml:"name"`
	Runtime        string `yaml:"runtime"`
	Handler        string `yaml:"handler"`
	MemoryMB       int32  `yaml:"memory_mb"`
	TimeoutSeconds int32  `yaml:"timeout_seconds"`
}

// TargetSpec configures one deployment target.
type TargetSpec struct {
	ID       string       `yaml:"id"`
	Group    string       `yaml:"group"`
	Source   string       `yaml:"source"`
	Exclude  []string     `yaml:"exclude"`
	Phrase   string       `yaml:"phrase"`
	Function FunctionSpec `yaml:"function"`
}

// Pipeline is the parsed and validated pipeline definition.
type Pipeline struct {
	Gates   []GateSpec
	Targets domain.TargetTable
}

type file struct {
	Gates   []GateSpec   `yaml:"gates"`
	Targets []TargetSpec `yaml:"targets"`
}

// Parse decodes and validates a pipeline definition.
func Parse(data []byte) (Pipeline, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Pipeline{}, fmt.Errorf("parse pipeline definition: %w", err)
	}

	for _, g := range f.Gates {
		if g.Name == "" {
			return Pipeline{}, fmt.Errorf("%w: gate name is required", domain.ErrInvalidArgument)
		}
		if g.Policy != "" && g.Policy != "blocking" && g.Policy != "advisory" {
			return Pipeline{}, fmt.Errorf("%w: gate %q has unknown policy %q", domain.ErrInvalidArgument, g.Name, g.Policy)
		}
	}

	targets := make([]domain.Target, len(f.Targets))
	for i, t := range f.Targets {
		targets[i] = domain.Target{
			ID:         domain.TargetID(t.ID),
			Group:      domain.Group(t.Group),
			Source:     t.Source,
			Exclusions: t.Exclude,
			Phrase:     t.Phrase,
			Function: domain.FunctionConfig{
				Name:           t.Function.Name,
				Runtime:        t.Function.Runtime,
				Handler:        t.Function.Handler,
				MemoryMB:       t.Function.MemoryMB,
				TimeoutSeconds: t.Function.TimeoutSeconds,
			},
		}
	}
	table, err := domain.NewTargetTable(targets)
	if err != nil {
		return Pipeline{}, err
	}

	return Pipeline{Gates: f.Gates, Targets: table}, nil
}

// Load reads and parses the pipeline definition at path. Relative target
// sources and gate working directories are resolved against the file's
// directory, so the definition works no matter where the process starts.
func Load(path string) (Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read pipeline definition: %w", err)
	}

	p, err := Parse(data)
	if err != nil {
		return Pipeline{}, err
	}

	base := filepath.Dir(path)
	for i, g := range p.Gates {
		p.Gates[i].Dir = resolve(base, g.Dir)
	}
	targets := p.Targets.Targets()
	for i, t := range targets {
		targets[i].Source = resolve(base, t.Source)
	}
	p.Targets, err = domain.NewTargetTable(targets)
	if err != nil {
		return Pipeline{}, err
	}
	return p, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
