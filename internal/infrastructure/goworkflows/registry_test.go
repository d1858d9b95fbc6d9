package goworkflows_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/cschleiden/go-workflows/backend"
	wfsqlite "github.com/cschleiden/go-workflows/backend/sqlite"
	"github.com/cschleiden/go-workflows/client"
	"github.com/cschleiden/go-workflows/worker"

	"github.com/randallong/irentstuff-transactions/internal/domain"
	"github.com/randallong/irentstuff-transactions/internal/infrastructure/goworkflows"
	"github.com/randallong/irentstuff-transactions/internal/infrastructure/sqlite"
)

func startWorker(t *testing.T, b backend.Backend) *worker.Worker {
	t.Helper()
	w := worker.New(b, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = w.WaitForCompletion()
	})
	if err := w.Start(ctx); err != nil {
		t.Fatalf("start worker: %v", err)
	}
	return w
}

func testTable(t *testing.T) domain.TargetTable {
	t.Helper()
	table, err := domain.NewTargetTable([]domain.Target{
		{ID: "irentstuff_purchase_add", Group: domain.GroupPurchase, Source: "src/purchase/add"},
		{ID: "irentstuff_purchase_get", Group: domain.GroupPurchase, Source: "src/purchase/get"},
		{ID: "irentstuff_rental_add", Group: domain.GroupRental, Source: "src/rental/add"},
	})
	if err != nil {
		t.Fatalf("NewTargetTable: %v", err)
	}
	return table
}

type staticGate struct {
	name   string
	policy domain.GatePolicy
	status domain.GateStatus
}

func (g staticGate) Name() string              { return g.name }
func (g staticGate) Policy() domain.GatePolicy { return g.policy }
func (g staticGate) Run(context.Context) domain.GateResult {
	return domain.GateResult{Gate: g.name, Policy: g.policy, Status: g.status}
}

type tempDirResolver struct{}

func (tempDirResolver) Resolve(_ context.Context, target domain.Target) (string, error) {
	return os.MkdirTemp("", "gowf-test-"+string(target.ID)+"-*")
}

type fixedPackager struct{}

func (fixedPackager) Package(_ context.Context, target domain.Target, _ string) (domain.Artifact, error) {
	return domain.Artifact{Target: target.ID, Bytes: []byte("zip:" + target.ID)}, nil
}

type recordingDeployer struct {
	mu       sync.Mutex
	deployed []domain.TargetID
}

func (d *recordingDeployer) UpdateFunctionCode(_ context.Context, target domain.Target, _ []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deployed = append(d.deployed, target.ID)
	return nil
}

func TestPipeline_GoWorkflows(t *testing.T) {
	b := wfsqlite.NewInMemoryBackend()
	w := startWorker(t, b)
	c := client.New(b)

	db := sqlite.OpenTestDB(t)
	repo := &sqlite.RunRepo{DB: db}
	deployer := &recordingDeployer{}

	wf := &domain.PipelineWorkflow{
		Targets: testTable(t),
		Gates: []domain.GateStage{
			staticGate{name: "lint", policy: domain.GateBlocking, status: domain.GatePassed},
			staticGate{name: "test", policy: domain.GateBlocking, status: domain.GatePassed},
		},
		Resolver: tempDirResolver{},
		Packager: fixedPackager{},
		Deployer: deployer,
		Runs:     repo,
		Now:      func() time.Time { return time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC) },
	}

	engine := &goworkflows.Engine{Worker: w, Client: c, Timeout: 10 * time.Second}
	runner, err := engine.PipelineRunner(wf)
	if err != nil {
		t.Fatalf("PipelineRunner: %v", err)
	}

	ctx := context.Background()
	runID := domain.NewRunID()

	handle, err := runner.Run(ctx, domain.PipelineInput{
		RunID:      runID,
		RawMessage: "Receipt fixes\ndeploy all purchase Lambdas",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, err := handle.AwaitResult(ctx)
	if err != nil {
		t.Fatalf("AwaitResult: %v", err)
	}
	if got != runID {
		t.Errorf("result = %q, want %q", got, runID)
	}

	run, err := repo.Get(ctx, runID)
	if err != nil {
		t.Fatalf("Get run: %v", err)
	}
	if run.State != domain.RunStateCompleted {
		t.Errorf("State = %q, want completed", run.State)
	}
	summary := run.Summary()
	if summary.Succeeded != 2 || summary.Failed != 0 || summary.Skipped != 1 {
		t.Errorf("Summary = %+v, want 2 succeeded, 0 failed, 1 skipped", summary)
	}
	if outcome, ok := run.Outcome("irentstuff_rental_add"); !ok || outcome.Status != domain.OutcomeSkipped {
		t.Errorf("rental_add outcome = %+v, want skipped", outcome)
	}
}

func TestPipeline_GoWorkflows_BlockingGateHalts(t *testing.T) {
	b := wfsqlite.NewInMemoryBackend()
	w := startWorker(t, b)
	c := client.New(b)

	db := sqlite.OpenTestDB(t)
	repo := &sqlite.RunRepo{DB: db}
	deployer := &recordingDeployer{}

	wf := &domain.PipelineWorkflow{
		Targets: testTable(t),
		Gates: []domain.GateStage{
			staticGate{name: "test", policy: domain.GateBlocking, status: domain.GateFailed},
		},
		Resolver: tempDirResolver{},
		Packager: fixedPackager{},
		Deployer: deployer,
		Runs:     repo,
	}

	engine := &goworkflows.Engine{Worker: w, Client: c, Timeout: 10 * time.Second}
	runner, err := engine.PipelineRunner(wf)
	if err != nil {
		t.Fatalf("PipelineRunner: %v", err)
	}

	ctx := context.Background()
	runID := domain.NewRunID()

	handle, err := runner.Run(ctx, domain.PipelineInput{RunID: runID, RawMessage: "deploy all Lambdas"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := handle.AwaitResult(ctx); err != nil {
		t.Fatalf("AwaitResult: %v", err)
	}

	run, err := repo.Get(ctx, runID)
	if err != nil {
		t.Fatalf("Get run: %v", err)
	}
	if run.State != domain.RunStateHalted {
		t.Errorf("State = %q, want halted", run.State)
	}
	if len(run.Outcomes) != 0 {
		t.Errorf("Outcomes = %d, want none for a halted run", len(run.Outcomes))
	}
	if len(deployer.deployed) != 0 {
		t.Errorf("deployed %d targets, want 0 after a halted run", len(deployer.deployed))
	}
}
