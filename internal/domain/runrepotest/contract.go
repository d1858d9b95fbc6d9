// Package runrepotest provides contract tests for [domain.RunRepository]
// implementations.
package runrepotest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/randallong/irentstuff-transactions/internal/domain"
)

// Factory creates a fresh [domain.RunRepository] for each test invocation.
type Factory func(t *testing.T) domain.RunRepository

// Run exercises the [domain.RunRepository] contract.
func Run(t *testing.T, factory Factory) {
	started := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)

	sample := func(id domain.RunID) domain.PipelineRun {
		return domain.PipelineRun{
			ID:      id,
			Message: "deploy all rental Lambdas",
			Gates: []domain.GateResult{
				{Gate: "lint", Policy: domain.GateBlocking, Status: domain.GatePassed},
				{Gate: "scan", Policy: domain.GateAdvisory, Status: domain.GateFailed, Detail: "3 findings"},
			},
			Decisions: domain.DecisionSet{Decisions: []domain.Decision{
				{Target: "irentstuff_rental_add", Deploy: true},
				{Target: "irentstuff_purchase_add", Deploy: false},
			}},
			Outcomes: []domain.TargetOutcome{
				{Target: "irentstuff_rental_add", Status: domain.OutcomeSucceeded, FinishedAt: started.Add(time.Minute)},
				{Target: "irentstuff_purchase_add", Status: domain.OutcomeSkipped},
			},
			State:     domain.RunStateCompleted,
			StartedAt: started,
		}
	}

	t.Run("CreateAndGet", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		run := sample("r1")

		if err := repo.Create(ctx, run); err != nil {
			t.Fatalf("Create: %v", err)
		}

		got, err := repo.Get(ctx, "r1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Message != run.Message {
			t.Errorf("Message = %q, want %q", got.Message, run.Message)
		}
		if got.State != domain.RunStateCompleted {
			t.Errorf("State = %q, want completed", got.State)
		}
		if len(got.Gates) != 2 || got.Gates[1].Detail != "3 findings" {
			t.Errorf("Gates = %+v", got.Gates)
		}
		if !got.Decisions.Deploy("irentstuff_rental_add") {
			t.Error("decision for irentstuff_rental_add lost")
		}
		if outcome, ok := got.Outcome("irentstuff_purchase_add"); !ok || outcome.Status != domain.OutcomeSkipped {
			t.Errorf("outcome for irentstuff_purchase_add = %+v, %v", outcome, ok)
		}
		if !got.StartedAt.Equal(started) {
			t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
		}
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		if err := repo.Create(ctx, sample("r1")); err != nil {
			t.Fatalf("first Create: %v", err)
		}
		err := repo.Create(ctx, sample("r1"))
		if !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("second Create: got %v, want ErrAlreadyExists", err)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		repo := factory(t)
		_, err := repo.Get(context.Background(), "nope")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Get: got %v, want ErrNotFound", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		run := sample("r1")
		run.State = domain.RunStatePending
		run.Outcomes = nil

		if err := repo.Create(ctx, run); err != nil {
			t.Fatalf("Create: %v", err)
		}

		run.State = domain.RunStateHalted
		run.FinishedAt = started.Add(2 * time.Minute)
		if err := repo.Update(ctx, run); err != nil {
			t.Fatalf("Update: %v", err)
		}

		got, err := repo.Get(ctx, "r1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.State != domain.RunStateHalted {
			t.Errorf("State = %q, want halted", got.State)
		}
		if !got.FinishedAt.Equal(run.FinishedAt) {
			t.Errorf("FinishedAt = %v, want %v", got.FinishedAt, run.FinishedAt)
		}
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		older := sample("r1")
		older.StartedAt = started
		newer := sample("r2")
		newer.StartedAt = started.Add(time.Hour)

		if err := repo.Create(ctx, older); err != nil {
			t.Fatalf("Create older: %v", err)
		}
		if err := repo.Create(ctx, newer); err != nil {
			t.Fatalf("Create newer: %v", err)
		}

		runs, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("List: got %d runs, want 2", len(runs))
		}
		if runs[0].ID != "r2" || runs[1].ID != "r1" {
			t.Errorf("List order = [%s %s], want [r2 r1]", runs[0].ID, runs[1].ID)
		}
	})
}
