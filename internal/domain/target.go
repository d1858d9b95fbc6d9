package domain

import "fmt"

// TargetID uniquely identifies one independently deployable function.
type TargetID string

// Group is a feature group that a target may belong to. Group membership
// is configuration, not derived from the target ID: irentstuff_rentals_get
// is a rental target even though its ID does not embed the group name the
// same way as its siblings.
type Group string

const (
	GroupPurchase Group = "purchase"
	GroupRental   Group = "rental"

	// GroupNone marks targets outside any feature group. They match only
	// their individual phrase and the global phrase.
	GroupNone Group = ""
)

// KnownGroups lists the feature groups accepted in target configuration.
var KnownGroups = []Group{GroupPurchase, GroupRental}

// FunctionConfig is deployment metadata for the function runtime. It is
// consumed by the deployment call and the infrastructure template, never
// by deployment decisions.
type FunctionConfig struct {
	// Name overrides the platform function name. Empty means the
	// target ID is used verbatim.
	Name           string
	Runtime        string
	Handler        string
	MemoryMB       int32
	TimeoutSeconds int32
}

// Target describes one independently deployable backend function: where
// its sources live, which group it belongs to, and what must be kept out
// of its packaged artifact. Targets are static configuration; they are
// never created or destroyed at runtime.
type Target struct {
	ID     TargetID
	Group  Group
	Source string

	// Exclusions is an ordered set of dockerignore-style patterns.
	// Shared third-party libraries are supplied as layers, so they are
	// filtered out of the per-function artifact.
	Exclusions []string

	// Phrase overrides the individual trigger phrase. Empty means
	// "deploy <ID>".
	Phrase string

	Function FunctionConfig
}

// IndividualPhrase returns the literal substring that activates only this
// target.
func (t Target) IndividualPhrase() string {
	if t.Phrase != "" {
		return t.Phrase
	}
	return "deploy " + string(t.ID)
}

// FunctionName returns the platform function name the deployment call
// addresses.
func (t Target) FunctionName() string {
	if t.Function.Name != "" {
		return t.Function.Name
	}
	return string(t.ID)
}

// GlobalPhrase activates every configured target.
const GlobalPhrase = "deploy all Lambdas"

// PhraseForGroup returns the literal substring that activates every target
// in the group.
func PhraseForGroup(g Group) string {
	return fmt.Sprintf("deploy all %s Lambdas", g)
}

// TargetTable is the static, validated set of deployment targets for a
// pipeline. It is loaded once per run and read-only afterward.
type TargetTable struct {
	targets []Target
}

// NewTargetTable validates the configured targets and returns the table.
// IDs must be unique and non-empty, source directories non-empty, and
// groups limited to the known set (or none).
func NewTargetTable(targets []Target) (TargetTable, error) {
	seen := make(map[TargetID]struct{}, len(targets))
	for _, t := range targets {
		if t.ID == "" {
			return TargetTable{}, fmt.Errorf("%w: target ID is required", ErrInvalidArgument)
		}
		if t.Source == "" {
			return TargetTable{}, fmt.Errorf("%w: target %q has no source directory", ErrInvalidArgument, t.ID)
		}
		if !knownGroup(t.Group) {
			return TargetTable{}, fmt.Errorf("%w: target %q has unknown group %q", ErrInvalidArgument, t.ID, t.Group)
		}
		if _, dup := seen[t.ID]; dup {
			return TargetTable{}, fmt.Errorf("target %q: %w", t.ID, ErrAlreadyExists)
		}
		seen[t.ID] = struct{}{}
	}

	table := TargetTable{targets: make([]Target, len(targets))}
	copy(table.targets, targets)
	return table, nil
}

func knownGroup(g Group) bool {
	if g == GroupNone {
		return true
	}
	for _, k := range KnownGroups {
		if g == k {
			return true
		}
	}
	return false
}

// Targets returns the targets in configuration order.
func (tt TargetTable) Targets() []Target {
	out := make([]Target, len(tt.targets))
	copy(out, tt.targets)
	return out
}

// Get looks up a target by ID.
func (tt TargetTable) Get(id TargetID) (Target, error) {
	for _, t := range tt.targets {
		if t.ID == id {
			return t, nil
		}
	}
	return Target{}, fmt.Errorf("target %q: %w", id, ErrNotFound)
}

// InGroup returns the targets belonging to the group, in configuration order.
func (tt TargetTable) InGroup(g Group) []Target {
	var out []Target
	for _, t := range tt.targets {
		if t.Group == g {
			out = append(out, t)
		}
	}
	return out
}

// Len returns the number of configured targets.
func (tt TargetTable) Len() int { return len(tt.targets) }
