// Package worker runs batches of independent jobs on a fixed set of workers.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/wrapped/internal/adapters/mq/queue"
	"github.com/okian/wrapped/internal/domain/model"
	"github.com/okian/wrapped/pkg/logger"
	"github.com/okian/wrapped/pkg/metrics"
)

const defaultQueueSize = 1024

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Job
}

// InMemoryWorker executes jobs read from a queue.
type InMemoryWorker struct {
	name   string
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		name:   "worker",
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run processes jobs until the queue is drained or ctx is done. It stops at
// the first failing job and returns its error.
func (w *InMemoryWorker) Run(ctx context.Context, q Queue) error {
	for job := range q.Dequeue(ctx) {
		if err := w.process(ctx, job); err != nil {
			return err
		}
	}
	return nil
}

func (w *InMemoryWorker) process(ctx context.Context, job model.Job) error {
	start := time.Now()
	err := job.Run(ctx)
	metrics.ObserveJobLatency(float64(time.Since(start).Microseconds()) / 1000)

	if err != nil {
		metrics.RecordJobFailed()
		w.logger.Error(ctx, "job failed", logger.String("job", job.ID), logger.Error(err))
		return fmt.Errorf("job %s: %w", job.ID, err)
	}
	metrics.RecordJobProcessed()
	return nil
}

// Pool fans a batch of jobs out to named workers through a bounded queue.
// It satisfies model.Runner.
type Pool struct {
	workerCount int
	queueSize   int
	logger      logger.Logger
}

var _ model.Runner = (*Pool)(nil)

// NewPool creates a new worker pool. Non-positive counts use one worker per CPU.
func NewPool(workerCount int, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workerCount: workerCount,
		queueSize:   defaultQueueSize,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Workers returns the configured worker count.
func (p *Pool) Workers() int { return p.workerCount }

// Run executes all jobs and waits for them. The first job error cancels the
// rest of the batch and is returned.
func (p *Pool) Run(ctx context.Context, jobs []model.Job) error {
	if len(jobs) == 0 {
		return ctx.Err()
	}

	q := queue.NewInMemoryQueue(queue.WithCapacity(p.queueSize))
	g, gctx := errgroup.WithContext(ctx)

	n := min(p.workerCount, len(jobs))
	metrics.UpdateWorkerCount(n)
	for i := 0; i < n; i++ {
		w := NewInMemoryWorker(WithName("worker-"+strconv.Itoa(i)), WithLogger(p.logger))
		g.Go(func() error { return w.Run(gctx, q) })
	}

	g.Go(func() error {
		defer func() { _ = q.Close() }()
		for _, job := range jobs {
			if err := q.Submit(gctx, job); err != nil {
				return err
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	// Workers stop quietly on cancellation, so a cancelled parent may
	// leave jobs unrun without any worker error.
	return ctx.Err()
}
