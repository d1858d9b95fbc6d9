package domain

import (
	"context"
	"fmt"
	"os"
	"time"
)

// PipelineInput starts one pipeline run: a pre-allocated run ID and the
// raw trigger text from the initiating event.
type PipelineInput struct {
	RunID      RunID
	RawMessage string
}

// StartRunInput is the input to the start-run activity.
type StartRunInput struct {
	RunID      RunID
	RawMessage string
}

// RunGateInput names a gate stage by its position in the configured
// sequence. Gates are process configuration, not serializable payloads,
// so activities address them by index.
type RunGateInput struct {
	Index int
}

// EvaluateDecisionsInput is the input to the evaluate-decisions activity.
type EvaluateDecisionsInput struct {
	Message TriggerMessage
}

// DeployTargetInput is the input to the deploy-target activity.
type DeployTargetInput struct {
	Target Target
}

// FinishRunInput is the input to the finish-run activity.
type FinishRunInput struct {
	Run PipelineRun
}

// PipelineWorkflow is the selective deployment pipeline: gate stages run
// strictly in sequence, the decision engine runs once as a barrier, and
// one deployment job per decided target fans out with no ordering or
// mutual-exclusion requirement between jobs.
//
// The workflow body is deterministic; all I/O and clock reads happen in
// activities so durable engines can replay it.
type PipelineWorkflow struct {
	Targets  TargetTable
	Gates    []GateStage
	Engine   DecisionEngine
	Resolver DependencyResolver
	Packager ArtifactPackager
	Deployer FunctionDeployer
	Runs     RunRepository

	// Now overrides the clock in activities. Nil means time.Now.
	Now func() time.Time
}

// Name returns the stable workflow name used for engine registration.
func (wf *PipelineWorkflow) Name() string { return "selective-deployment-pipeline" }

func (wf *PipelineWorkflow) now() time.Time {
	if wf.Now != nil {
		return wf.Now()
	}
	return time.Now()
}

// Run executes the pipeline. Blocking gate failure halts the run before
// any decision is computed; advisory gate failure is recorded and the
// run proceeds. A deployment job's failure is captured in its own
// outcome and never surfaces as a workflow error, so sibling jobs are
// unaffected.
func (wf *PipelineWorkflow) Run(runner DurableRunner, in PipelineInput) (RunID, error) {
	run, err := RunActivity(runner, wf.StartRun(), StartRunInput{RunID: in.RunID, RawMessage: in.RawMessage})
	if err != nil {
		return in.RunID, err
	}

	for i := range wf.Gates {
		result, err := RunActivity(runner, wf.RunGate(), RunGateInput{Index: i})
		if err != nil {
			return run.ID, err
		}
		run.Gates = append(run.Gates, result)
		if result.Blocks() {
			run.State = RunStateHalted
			if _, err := RunActivity(runner, wf.FinishRun(), FinishRunInput{Run: run}); err != nil {
				return run.ID, err
			}
			return run.ID, nil
		}
	}

	run.Decisions, err = RunActivity(runner, wf.EvaluateDecisions(), EvaluateDecisionsInput{Message: run.Message})
	if err != nil {
		return run.ID, err
	}

	// Fan out one job per decided target. All jobs start before any is
	// awaited; each pending result is independent of its siblings.
	type pendingDeploy struct {
		target TargetID
		result PendingResult[TargetOutcome]
	}
	var pending []pendingDeploy
	outcomes := make(map[TargetID]TargetOutcome, wf.Targets.Len())
	for _, t := range wf.Targets.Targets() {
		if !run.Decisions.Deploy(t.ID) {
			outcomes[t.ID] = TargetOutcome{Target: t.ID, Status: OutcomeSkipped}
			continue
		}
		pending = append(pending, pendingDeploy{
			target: t.ID,
			result: StartActivity(runner, wf.DeployTarget(), DeployTargetInput{Target: t}),
		})
	}
	for _, p := range pending {
		outcome, err := p.result.Await()
		if err != nil {
			// Engine-level failure for this one activity; it still
			// only affects its own target.
			outcome = TargetOutcome{
				Target: p.target,
				Status: OutcomeFailed,
				Reason: err.Error(),
			}
		}
		outcomes[p.target] = outcome
	}
	for _, t := range wf.Targets.Targets() {
		run.Outcomes = append(run.Outcomes, outcomes[t.ID])
	}

	run.State = RunStateCompleted
	if _, err := RunActivity(runner, wf.FinishRun(), FinishRunInput{Run: run}); err != nil {
		return run.ID, err
	}
	return run.ID, nil
}

// StartRun normalizes the trigger message, initializes the run record,
// and persists it in the pending state.
func (wf *PipelineWorkflow) StartRun() Activity[StartRunInput, PipelineRun] {
	return NewActivity("start-run", func(ctx context.Context, in StartRunInput) (PipelineRun, error) {
		run := PipelineRun{
			ID:        in.RunID,
			Message:   NormalizeTrigger(in.RawMessage),
			State:     RunStatePending,
			StartedAt: wf.now(),
		}
		if err := wf.Runs.Create(ctx, run); err != nil {
			return PipelineRun{}, fmt.Errorf("create run record: %w", err)
		}
		return run, nil
	})
}

// RunGate executes one configured gate stage.
func (wf *PipelineWorkflow) RunGate() Activity[RunGateInput, GateResult] {
	return NewActivity("run-gate", func(ctx context.Context, in RunGateInput) (GateResult, error) {
		if in.Index < 0 || in.Index >= len(wf.Gates) {
			return GateResult{}, fmt.Errorf("%w: gate index %d out of range", ErrInvalidArgument, in.Index)
		}
		return wf.Gates[in.Index].Run(ctx), nil
	})
}

// EvaluateDecisions runs the decision engine against the target table.
// The computation is pure; it runs as an activity so durable engines
// record the decisions alongside the run history.
func (wf *PipelineWorkflow) EvaluateDecisions() Activity[EvaluateDecisionsInput, DecisionSet] {
	return NewActivity("evaluate-decisions", func(_ context.Context, in EvaluateDecisionsInput) (DecisionSet, error) {
		return wf.Engine.Decide(in.Message, wf.Targets), nil
	})
}

// DeployTarget executes one target's deployment job: dependency
// resolution, exclusion-filtered packaging, then the update-function-code
// call. Step failures terminate this job only and are reported through
// the outcome, not as an activity error.
func (wf *PipelineWorkflow) DeployTarget() Activity[DeployTargetInput, TargetOutcome] {
	return NewActivity("deploy-target", func(ctx context.Context, in DeployTargetInput) (TargetOutcome, error) {
		return wf.deployTarget(ctx, in.Target), nil
	})
}

func (wf *PipelineWorkflow) deployTarget(ctx context.Context, target Target) TargetOutcome {
	staging, err := wf.Resolver.Resolve(ctx, target)
	if err != nil {
		return wf.failedOutcome(target.ID, StepResolveDependencies, err)
	}
	defer os.RemoveAll(staging)

	artifact, err := wf.Packager.Package(ctx, target, staging)
	if err != nil {
		return wf.failedOutcome(target.ID, StepPackage, err)
	}

	if err := wf.Deployer.UpdateFunctionCode(ctx, target, artifact.Bytes); err != nil {
		return wf.failedOutcome(target.ID, StepDeploy, err)
	}

	return TargetOutcome{Target: target.ID, Status: OutcomeSucceeded, FinishedAt: wf.now()}
}

func (wf *PipelineWorkflow) failedOutcome(id TargetID, step JobStep, err error) TargetOutcome {
	return TargetOutcome{
		Target:     id,
		Status:     OutcomeFailed,
		FailedStep: step,
		Reason:     err.Error(),
		FinishedAt: wf.now(),
	}
}

// FinishRun stamps the end of the run and persists the final record.
func (wf *PipelineWorkflow) FinishRun() Activity[FinishRunInput, struct{}] {
	return NewActivity("finish-run", func(ctx context.Context, in FinishRunInput) (struct{}, error) {
		run := in.Run
		run.FinishedAt = wf.now()
		if err := wf.Runs.Update(ctx, run); err != nil {
			return struct{}{}, fmt.Errorf("update run record: %w", err)
		}
		return struct{}{}, nil
	})
}
