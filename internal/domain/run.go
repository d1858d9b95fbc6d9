package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunID uniquely identifies one pipeline run.
type RunID string

// NewRunID returns a fresh random run ID.
func NewRunID() RunID {
	return RunID(uuid.NewString())
}

// RunState is the lifecycle state of a pipeline run.
type RunState string

const (
	RunStatePending RunState = "pending"

	// RunStateHalted means a blocking gate failed: no decisions were
	// computed and no deployment job executed.
	RunStateHalted RunState = "halted"

	RunStateCompleted RunState = "completed"
)

// OutcomeStatus is the terminal status of one target within a run.
type OutcomeStatus string

const (
	OutcomeSkipped   OutcomeStatus = "skipped"
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomeFailed    OutcomeStatus = "failed"
)

// JobStep identifies the deployment job step that produced a failure.
type JobStep string

const (
	StepResolveDependencies JobStep = "resolve-dependencies"
	StepPackage             JobStep = "package"
	StepDeploy              JobStep = "deploy"
)

// TargetOutcome records one target's result within a run. Outcomes are
// independent: a failed outcome never alters a sibling's.
type TargetOutcome struct {
	Target TargetID
	Status OutcomeStatus

	// FailedStep and Reason are set only for failed outcomes.
	FailedStep JobStep
	Reason     string

	FinishedAt time.Time
}

// PipelineRun is the aggregate record of one pipeline execution: the
// trigger, what the gates said, what was decided, and how each target
// fared. It is assembled during the run and persisted for observability.
type PipelineRun struct {
	ID        RunID
	Message   TriggerMessage
	Gates     []GateResult
	Decisions DecisionSet
	Outcomes  []TargetOutcome
	State     RunState

	StartedAt  time.Time
	FinishedAt time.Time
}

// Outcome returns the recorded outcome for a target, if any.
func (r PipelineRun) Outcome(id TargetID) (TargetOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Target == id {
			return o, true
		}
	}
	return TargetOutcome{}, false
}

// BlockingGate returns the gate result that halted the run, if any.
func (r PipelineRun) BlockingGate() (GateResult, bool) {
	for _, g := range r.Gates {
		if g.Blocks() {
			return g, true
		}
	}
	return GateResult{}, false
}

// RunSummary is the per-status tally of a run's outcomes, the "8 of 9
// deployed, 1 failed" view.
type RunSummary struct {
	Succeeded int
	Failed    int
	Skipped   int
}

// Summary tallies the run's outcomes.
func (r PipelineRun) Summary() RunSummary {
	var s RunSummary
	for _, o := range r.Outcomes {
		switch o.Status {
		case OutcomeSucceeded:
			s.Succeeded++
		case OutcomeFailed:
			s.Failed++
		case OutcomeSkipped:
			s.Skipped++
		}
	}
	return s
}
