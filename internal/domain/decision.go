package domain

// Decision is the computed deploy/skip flag for one target in one run.
type Decision struct {
	Target TargetID
	Deploy bool
}

// DecisionSet holds one decision per configured target, in table order.
// It is computed fresh each run and never mutated afterward.
type DecisionSet struct {
	Decisions []Decision
}

// Deploy reports the decision for the given target. Unknown targets are
// never deployed.
func (s DecisionSet) Deploy(id TargetID) bool {
	for _, d := range s.Decisions {
		if d.Target == id {
			return d.Deploy
		}
	}
	return false
}

// ActiveTargets returns the IDs of all targets decided for deployment,
// in table order.
func (s DecisionSet) ActiveTargets() []TargetID {
	var out []TargetID
	for _, d := range s.Decisions {
		if d.Deploy {
			out = append(out, d.Target)
		}
	}
	return out
}

// Flags returns the decisions as named outputs, one "deploy_<target_id>"
// flag per target, for downstream consumers that query flags by name.
func (s DecisionSet) Flags() map[string]bool {
	flags := make(map[string]bool, len(s.Decisions))
	for _, d := range s.Decisions {
		flags["deploy_"+string(d.Target)] = d.Deploy
	}
	return flags
}

// DecisionEngine computes per-target deployment decisions from a trigger
// message and the static target table. Decide is a pure function: the
// same message and table always yield the same decisions, and no target's
// decision depends on another's.
type DecisionEngine struct{}

// Decide evaluates every target independently. A target deploys iff the
// message contains its individual phrase, its group's phrase, or the
// global phrase. Matching is substring containment, not whole-word: a
// message naming a hypothetical longer target ID still activates any
// target whose phrase is a prefix of it. That is the published contract
// of the trigger format.
func (DecisionEngine) Decide(msg TriggerMessage, table TargetTable) DecisionSet {
	targets := table.Targets()
	set := DecisionSet{Decisions: make([]Decision, 0, len(targets))}
	for _, t := range targets {
		set.Decisions = append(set.Decisions, Decision{
			Target: t.ID,
			Deploy: decide(msg, t),
		})
	}
	return set
}

func decide(msg TriggerMessage, t Target) bool {
	if msg.Contains(t.IndividualPhrase()) {
		return true
	}
	if t.Group != GroupNone && msg.Contains(PhraseForGroup(t.Group)) {
		return true
	}
	return msg.Contains(GlobalPhrase)
}
