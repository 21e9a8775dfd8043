// Package worker runs submitted conversion jobs off the queue.
package worker

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/okian/spadl/internal/adapters/mq/queue"
	"github.com/okian/spadl/internal/adapters/repository"
	"github.com/okian/spadl/pkg/logger"
	"github.com/okian/spadl/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// ErrShutdownTimeout is returned when workers do not stop in time.
var ErrShutdownTimeout = errors.New("worker shutdown timed out")

// Job is what workers read off the queue.
type Job = queue.Job

// Processor runs the conversion pipeline for one job. It never fails: stage
// errors are reported inside the result.
type Processor interface {
	Process(ctx context.Context, j Job) repository.Result
}

// Sink receives finished results.
type Sink interface {
	Put(ctx context.Context, r repository.Result) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// InMemoryWorker converts jobs one at a time.
type InMemoryWorker struct {
	queue     Queue
	processor Processor
	sink      Sink
	name      string
	logger    logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, p Processor, s Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		processor: p,
		sink:      s,
		name:      "worker",
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run processes jobs until the queue is drained and closed or ctx is done.
func (w *InMemoryWorker) Run(ctx context.Context) {
	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, j); err != nil {
				w.logger.Error(ctx, "error processing job",
					logger.String("job_id", j.ID),
					logger.String("game_id", j.Game.GameID),
					logger.Error(err))
			}
		}
	}
}

// processJob converts one job and stores its result. A panicking processor
// fails the job, not the worker.
func (w *InMemoryWorker) processJob(ctx context.Context, j Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := time.Now()
	ctx = logger.WithFields(ctx, logger.String("job_id", j.ID), logger.String("game_id", j.Game.GameID))
	metrics.AddWorkerActive(1)
	defer func() {
		metrics.AddWorkerActive(-1)
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	var result repository.Result
	var pc panics.Catcher
	pc.Try(func() {
		result = w.processor.Process(ctx, j)
	})
	if r := pc.Recovered(); r != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "panic")
		result = repository.Result{
			JobID:        j.ID,
			GameID:       j.Game.GameID,
			Provider:     j.Provider,
			Status:       repository.StatusFailed,
			ConvertError: r.String(),
			SubmittedAt:  j.SubmittedAt,
			CompletedAt:  time.Now(),
		}
	}

	if err := w.sink.Put(ctx, result); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		return errors.Wrapf(err, "store result of game %s", j.Game.GameID)
	}
	if result.Failed() {
		metrics.RecordWorkerError()
		w.logger.Warn(ctx, "game conversion failed",
			logger.String("game_id", result.GameID),
			logger.String("error", result.ConvertError),
			logger.Int("violations", len(result.Violations)))
	}
	return nil
}

// Pool supervises a fixed set of workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	wg      conc.WaitGroup
	done    chan struct{}
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below one selects
// twice the number of CPUs.
func NewPool(workerCount int, q Queue, p Processor, s Sink) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}
	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		done:    make(chan struct{}),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range pool.workers {
		pool.workers[i] = NewInMemoryWorker(q, p, s, WithName("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Go(func() { w.Run(ctx) })
	}
	go func() {
		defer close(p.done)
		if r := p.wg.WaitAndRecover(); r != nil {
			p.logger.Error(ctx, "worker crashed", logger.String("panic", r.String()))
		}
	}()
}

// Shutdown closes the queue and waits for workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	select {
	case <-p.done:
		return nil
	case <-shutdownCtx.Done():
		p.logger.Warn(ctx, "worker pool shutdown timed out")
		return errors.Mark(errors.Wrap(shutdownCtx.Err(), "worker pool"), ErrShutdownTimeout)
	}
}
