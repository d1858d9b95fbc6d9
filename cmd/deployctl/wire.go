package main

import (
	"context"
	"database/sql"
	"fmt"

	wfsqlite "github.com/cschleiden/go-workflows/backend/sqlite"
	"github.com/cschleiden/go-workflows/client"
	"github.com/cschleiden/go-workflows/worker"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/randallong/irentstuff-transactions/internal/application"
	"github.com/randallong/irentstuff-transactions/internal/config"
	"github.com/randallong/irentstuff-transactions/internal/domain"
	"github.com/randallong/irentstuff-transactions/internal/infrastructure/awslambda"
	"github.com/randallong/irentstuff-transactions/internal/infrastructure/goworkflows"
	"github.com/randallong/irentstuff-transactions/internal/infrastructure/pipdeps"
	"github.com/randallong/irentstuff-transactions/internal/infrastructure/shellgate"
	"github.com/randallong/irentstuff-transactions/internal/infrastructure/sqlite"
	"github.com/randallong/irentstuff-transactions/internal/infrastructure/syncworkflow"
	"github.com/randallong/irentstuff-transactions/internal/infrastructure/zippack"
)

// services is the fully wired application, ready to run pipelines.
type services struct {
	pipeline *application.PipelineService
	runs     *application.RunService
	targets  *application.TargetService
	close    func()
}

// openHistory opens the run-history database and repository. Commands
// that only read history use this without the full pipeline wiring.
func openHistory(settings Settings) (*sql.DB, *sqlite.RunRepo, error) {
	db, err := sqlite.Open(settings.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open run history database: %w", err)
	}
	return db, &sqlite.RunRepo{DB: db}, nil
}

// buildServices wires the whole pipeline: definition file, gates, run
// history, AWS deployment client, and the selected workflow engine.
func buildServices(ctx context.Context, settings Settings, pipelinePath string) (*services, error) {
	p, err := config.Load(pipelinePath)
	if err != nil {
		return nil, err
	}

	db, repo, err := openHistory(settings)
	if err != nil {
		return nil, err
	}
	closers := []func(){func() { db.Close() }}
	fail := func(err error) (*services, error) {
		for _, c := range closers {
			c()
		}
		return nil, err
	}

	deployer, err := awslambda.New(ctx, settings.AWS.Region)
	if err != nil {
		return fail(fmt.Errorf("create deployment client: %w", err))
	}

	gates := lo.Map(p.Gates, func(g config.GateSpec, _ int) domain.GateStage {
		return &shellgate.Gate{
			StageName: g.Name,
			Argv:      g.Command,
			Dir:       g.Dir,
			Mode:      g.Mode(),
		}
	})

	wf := &domain.PipelineWorkflow{
		Targets:  p.Targets,
		Gates:    gates,
		Resolver: &pipdeps.Resolver{Pip: settings.Pip.Command},
		Packager: &zippack.Packager{},
		Deployer: deployer,
		Runs:     repo,
	}

	var engine domain.WorkflowEngine
	switch settings.Engine.Name {
	case "durable":
		backend := wfsqlite.NewSqliteBackend(settings.Engine.StatePath)
		w := worker.New(backend, nil)
		workerCtx, cancel := context.WithCancel(ctx)
		if err := w.Start(workerCtx); err != nil {
			cancel()
			return fail(fmt.Errorf("start workflow worker: %w", err))
		}
		closers = append(closers, func() {
			cancel()
			_ = w.WaitForCompletion()
		})
		engine = &goworkflows.Engine{
			Worker:  w,
			Client:  client.New(backend),
			Timeout: settings.Engine.Timeout,
		}
	default:
		engine = &syncworkflow.Engine{MaxParallel: settings.Engine.MaxParallel}
	}

	runner, err := engine.PipelineRunner(wf)
	if err != nil {
		return fail(fmt.Errorf("create pipeline runner: %w", err))
	}

	return &services{
		pipeline: &application.PipelineService{Runner: runner, Runs: repo, Log: log.Logger},
		runs:     &application.RunService{Runs: repo},
		targets:  &application.TargetService{Table: p.Targets},
		close: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}, nil
}
