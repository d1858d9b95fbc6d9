package application

import (
	"context"

	"github.com/randallong/irentstuff-transactions/internal/domain"
)

// RunService exposes pipeline run history.
type RunService struct {
	Runs domain.RunRepository
}

// Get retrieves one run by ID.
func (s *RunService) Get(ctx context.Context, id domain.RunID) (domain.PipelineRun, error) {
	return s.Runs.Get(ctx, id)
}

// List returns all recorded runs, newest first.
func (s *RunService) List(ctx context.Context) ([]domain.PipelineRun, error) {
	return s.Runs.List(ctx)
}
