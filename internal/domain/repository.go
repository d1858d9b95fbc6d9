package domain

import "context"

// RunRepository persists pipeline runs for observability and history.
type RunRepository interface {
	Create(ctx context.Context, run PipelineRun) error
	Get(ctx context.Context, id RunID) (PipelineRun, error)

	// List returns runs ordered by start time, newest first.
	List(ctx context.Context) ([]PipelineRun, error)
	Update(ctx context.Context, run PipelineRun) error
}
