package domain

import (
	"context"
	"fmt"
)

// GatePolicy determines how a gate stage's failure affects the run.
type GatePolicy string

const (
	// GateBlocking halts the run before any deployment decision is made.
	GateBlocking GatePolicy = "blocking"

	// GateAdvisory records the failure and lets the run proceed. Used for
	// the static-analysis stage so evolving scan rules surface findings
	// without blocking releases.
	GateAdvisory GatePolicy = "advisory"
)

// GateStatus is the pass/fail outcome of one gate stage.
type GateStatus string

const (
	GatePassed GateStatus = "passed"
	GateFailed GateStatus = "failed"
)

// GateResult records one gate stage's outcome within a run.
type GateResult struct {
	Gate   string
	Policy GatePolicy
	Status GateStatus

	// Detail carries diagnostic output for failed gates.
	Detail string
}

// Blocks reports whether this result halts the run.
func (r GateResult) Blocks() bool {
	return r.Status == GateFailed && r.Policy == GateBlocking
}

// GateStage is a pass/fail check that runs before deployment decisions.
// A stage that cannot even start (missing tool, bad working directory)
// reports a failed result rather than panicking or returning an error;
// the policy decides what the failure means.
type GateStage interface {
	Name() string
	Policy() GatePolicy
	Run(ctx context.Context) GateResult
}

// GateFailure reports that a blocking gate stopped the run before any
// deployment decision was made.
type GateFailure struct {
	Gate   string
	Detail string
}

func (e *GateFailure) Error() string {
	return fmt.Sprintf("gate %q failed: %s", e.Gate, e.Detail)
}
