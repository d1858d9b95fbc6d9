// Package syncworkflow provides a synchronous, in-process
// [domain.WorkflowEngine]. Activities execute inline with no persistence
// or replay; asynchronous activities fan out onto goroutines.
package syncworkflow

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/randallong/irentstuff-transactions/internal/domain"
)

var runCounter atomic.Int64

// Engine implements [domain.WorkflowEngine] with in-process execution.
// No durable state is kept. Activities started with RunAsync run
// concurrently, at most MaxParallel at a time.
type Engine struct {
	// MaxParallel bounds concurrent asynchronous activities.
	// Zero or negative means no limit.
	MaxParallel int
}

func (e *Engine) PipelineRunner(wf *domain.PipelineWorkflow) (domain.PipelineRunner, error) {
	return &runner{wf: wf, maxParallel: e.MaxParallel}, nil
}

type runner struct {
	wf          *domain.PipelineWorkflow
	maxParallel int
}

func (r *runner) Run(ctx context.Context, in domain.PipelineInput) (domain.WorkflowHandle[domain.RunID], error) {
	id := runCounter.Add(1)

	group := &errgroup.Group{}
	if r.maxParallel > 0 {
		group.SetLimit(r.maxParallel)
	}

	dr := &syncRunner{id: id, ctx: ctx, group: group}
	result, err := r.wf.Run(dr, in)

	// The workflow body awaits every pending activity before returning,
	// but an early error return must not leak goroutines.
	_ = group.Wait()

	return &handle{id: id, result: result, err: err}, nil
}

type syncRunner struct {
	id    int64
	ctx   context.Context
	group *errgroup.Group
}

func (r *syncRunner) ID() string               { return fmt.Sprintf("sync-%d", r.id) }
func (r *syncRunner) Context() context.Context { return r.ctx }

func (r *syncRunner) Run(activity domain.Activity[any, any], in any) (any, error) {
	return activity.Run(r.ctx, in)
}

func (r *syncRunner) RunAsync(activity domain.Activity[any, any], in any) domain.PendingActivity {
	p := &pending{done: make(chan struct{})}
	r.group.Go(func() error {
		defer close(p.done)
		p.result, p.err = activity.Run(r.ctx, in)
		return nil
	})
	return p
}

type pending struct {
	done   chan struct{}
	result any
	err    error
}

func (p *pending) Await() (any, error) {
	<-p.done
	return p.result, p.err
}

type handle struct {
	id     int64
	result domain.RunID
	err    error
}

func (h *handle) WorkflowID() string { return fmt.Sprintf("sync-%d", h.id) }
func (h *handle) AwaitResult(_ context.Context) (domain.RunID, error) {
	return h.result, h.err
}
