package application

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/randallong/irentstuff-transactions/internal/domain"
)

// PipelineService executes the deployment pipeline as a workflow and
// reports the finished run.
type PipelineService struct {
	Runner domain.PipelineRunner
	Runs   domain.RunRepository
	Log    zerolog.Logger
}

// Run executes the pipeline for the raw trigger message and returns the
// persisted run record. A halted run is returned together with a
// [domain.GateFailure] so callers can distinguish "gates stopped the
// release" from per-target deployment failures, which are reported only
// through the run's outcomes.
func (s *PipelineService) Run(ctx context.Context, rawMessage string) (domain.PipelineRun, error) {
	runID := domain.NewRunID()
	s.Log.Info().Str("run_id", string(runID)).Msg("starting pipeline run")

	handle, err := s.Runner.Run(ctx, domain.PipelineInput{RunID: runID, RawMessage: rawMessage})
	if err != nil {
		return domain.PipelineRun{}, fmt.Errorf("start pipeline workflow: %w", err)
	}
	if _, err := handle.AwaitResult(ctx); err != nil {
		return domain.PipelineRun{}, fmt.Errorf("await pipeline workflow: %w", err)
	}

	run, err := s.Runs.Get(ctx, runID)
	if err != nil {
		return domain.PipelineRun{}, fmt.Errorf("load finished run: %w", err)
	}

	s.logRun(run)

	if gate, halted := run.BlockingGate(); halted {
		return run, &domain.GateFailure{Gate: gate.Gate, Detail: gate.Detail}
	}
	return run, nil
}

func (s *PipelineService) logRun(run domain.PipelineRun) {
	for _, gate := range run.Gates {
		s.Log.Info().
			Str("run_id", string(run.ID)).
			Str("gate", gate.Gate).
			Str("policy", string(gate.Policy)).
			Str("status", string(gate.Status)).
			Msg("gate stage finished")
	}
	for _, outcome := range run.Outcomes {
		event := s.Log.Info()
		if outcome.Status == domain.OutcomeFailed {
			event = s.Log.Error().
				Str("step", string(outcome.FailedStep)).
				Str("reason", outcome.Reason)
		}
		event.
			Str("run_id", string(run.ID)).
			Str("target", string(outcome.Target)).
			Str("status", string(outcome.Status)).
			Msg("target outcome")
	}

	summary := run.Summary()
	s.Log.Info().
		Str("run_id", string(run.ID)).
		Str("state", string(run.State)).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Msg("pipeline run finished")
}
