// Package service wires the conversion domain to the job queue, the worker
// pool and the result store. It is what the HTTP API and the CLI drive.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/okian/spadl/internal/adapters/mq/queue"
	"github.com/okian/spadl/internal/adapters/mq/worker"
	"github.com/okian/spadl/internal/adapters/provider/statsbomb"
	"github.com/okian/spadl/internal/adapters/repository"
	"github.com/okian/spadl/internal/domain/convert"
	"github.com/okian/spadl/internal/domain/dedupe"
	"github.com/okian/spadl/internal/domain/model"
	"github.com/okian/spadl/internal/domain/normalize"
	"github.com/okian/spadl/internal/domain/registry"
	"github.com/okian/spadl/internal/domain/schema"
	"github.com/okian/spadl/pkg/logger"
	"github.com/okian/spadl/pkg/metrics"
)

// ProviderStatsBomb is the only event provider currently understood. Jobs
// without a provider are treated as StatsBomb.
const ProviderStatsBomb = "statsbomb"

// Service converts games synchronously, in parallel batches or through the
// asynchronous queue.
type Service struct {
	mu sync.RWMutex

	// Domain
	registry  *registry.Registry
	engine    *convert.Engine
	schema    *schema.Schema
	statsbomb *statsbomb.Converter

	// Infrastructure
	store   repository.Store
	deduper dedupe.Deduper
	queue   queue.Queue
	pool    *worker.Pool

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	maxGames        int
	pitch           normalize.Pitch
	defaultBodyPart string
	dribbles        bool

	started bool
	logger  logger.Logger
}

// New constructs a Service. The domain components and the result store are
// ready immediately; the queue and the workers are created by Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU() * 2,
		queueSize:       1024,
		dedupeSize:      10000,
		pitch:           normalize.DefaultPitch(),
		defaultBodyPart: registry.Foot,
		dribbles:        true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.registry = registry.Default()
	s.engine = convert.New(s.registry, s.pitch,
		convert.WithDefaultBodyPart(s.defaultBodyPart),
		convert.WithDribbles(s.dribbles),
	)
	s.schema = schema.New(s.registry, s.pitch)
	s.statsbomb = statsbomb.NewConverter(s.engine, "")
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.store = repository.NewMemoryStore(
		repository.WithMaxGames(s.maxGames),
		repository.WithOnEvict(s.forget),
	)
	return s
}

// Registry returns the enumeration registry in use.
func (s *Service) Registry() *registry.Registry { return s.registry }

// Schema returns the action contract results are validated against.
func (s *Service) Schema() *schema.Schema { return s.schema }

// Start creates the queue and launches the workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting conversion service...")

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s, s.store)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "conversion service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Float64("fieldLength", s.pitch.Length),
		logger.Float64("fieldWidth", s.pitch.Width),
	)
	return nil
}

// Stop closes the queue and waits for queued games to finish.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping conversion service...")

	err := s.pool.Shutdown(ctx)
	s.started = false
	if err != nil {
		return errors.Wrap(err, "stop conversion service")
	}
	s.logger.Info(ctx, "conversion service stopped")
	return nil
}

// Submit queues j for asynchronous conversion. A game id is accepted once
// until its result is discarded.
func (s *Service) Submit(ctx context.Context, j model.Job) (model.Job, error) { //nolint:gocritic // hugeParam: Job is passed by value like the queue does
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return j, ErrNotStarted
	}
	j, err := s.prepare(j)
	if err != nil {
		return j, err
	}

	if s.deduper.SeenAndRecord(ctx, j.Game.GameID) {
		metrics.RecordGameDuplicate()
		return j, errors.Wrapf(ErrDuplicate, "game %s", j.Game.GameID)
	}

	pending := repository.Result{
		JobID:       j.ID,
		GameID:      j.Game.GameID,
		Provider:    j.Provider,
		Status:      repository.StatusPending,
		SubmittedAt: j.SubmittedAt,
	}
	if err := s.store.Put(ctx, pending); err != nil {
		s.deduper.Unrecord(ctx, j.Game.GameID)
		return j, errors.Wrapf(err, "record pending game %s", j.Game.GameID)
	}

	if err := s.queue.Enqueue(ctx, j); err != nil {
		s.deduper.Unrecord(ctx, j.Game.GameID)
		s.store.Delete(ctx, j.Game.GameID)
		if errors.Is(err, queue.ErrQueueFull) {
			return j, errors.Mark(errors.Wrapf(err, "game %s", j.Game.GameID), ErrBackpressure)
		}
		return j, errors.Wrapf(err, "enqueue game %s", j.Game.GameID)
	}

	s.logger.Debug(ctx, "game queued",
		logger.String("job_id", j.ID),
		logger.String("game_id", j.Game.GameID),
	)
	return j, nil
}

// Result returns the stored result of a submitted game.
func (s *Service) Result(ctx context.Context, gameID string) (repository.Result, error) {
	return s.store.Get(ctx, gameID)
}

// Games lists the ids of stored games.
func (s *Service) Games(ctx context.Context) []string {
	return s.store.List(ctx)
}

// Discard drops a game's result and allows it to be submitted again. The
// game id is forgotten even when no result is stored; ErrNotFound is still
// returned in that case.
func (s *Service) Discard(ctx context.Context, gameID string) error {
	_, err := s.store.Get(ctx, gameID)
	s.store.Delete(ctx, gameID)
	s.deduper.Unrecord(ctx, gameID)
	return err
}

// forget releases an evicted game id so it can be submitted again.
func (s *Service) forget(ctx context.Context, gameID string) {
	s.deduper.Unrecord(ctx, gameID)
	s.logger.Debug(ctx, "stored result evicted", logger.String("game_id", gameID))
}

// ConvertGame converts one game synchronously without storing the result.
// The error reports a failed action pipeline; a minutes failure is only
// recorded in the result.
func (s *Service) ConvertGame(ctx context.Context, j model.Job) (repository.Result, error) { //nolint:gocritic // hugeParam: Job is passed by value like the queue does
	j, err := s.prepare(j)
	if err != nil {
		return repository.Result{}, err
	}
	return s.process(ctx, j)
}

// ConvertAll converts jobs in parallel on a bounded goroutine pool. Results
// are returned in input order; per-game failures are reported inside each
// result.
func (s *Service) ConvertAll(ctx context.Context, jobs []model.Job) ([]repository.Result, error) {
	results := make([]repository.Result, len(jobs))
	if len(jobs) == 0 {
		return results, nil
	}

	size := s.workerCount
	if size > len(jobs) {
		size = len(jobs)
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, errors.Wrap(err, "create batch pool")
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range jobs {
		i := i
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			metrics.UpdateBatchPoolRunning(pool.Running())
			if err := ctx.Err(); err != nil {
				results[i] = failed(jobs[i], err)
				return
			}
			j, err := s.prepare(jobs[i])
			if err != nil {
				results[i] = failed(jobs[i], err)
				return
			}
			results[i], _ = s.process(ctx, j)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, errors.Wrapf(err, "submit game %s to batch pool", jobs[i].Game.GameID)
		}
	}
	wg.Wait()
	metrics.UpdateBatchPoolRunning(0)
	return results, nil
}

// Process implements worker.Processor.
func (s *Service) Process(ctx context.Context, j model.Job) repository.Result { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	r, _ := s.process(ctx, j)
	return r
}

// Validate checks loosely typed action rows against the contract.
func (s *Service) Validate(rows []schema.Row) ([]schema.Row, error) {
	out, err := s.schema.Validate(rows)
	recordViolations(err)
	return out, err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":         s.started,
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"dedupeSize":      s.dedupeSize,
		"dedupeEntries":   s.deduper.Size(),
		"storedGames":     s.store.Count(ctx),
		"fieldLength":     s.pitch.Length,
		"fieldWidth":      s.pitch.Width,
		"schemaVersion":   s.registry.Version,
		"addDribbles":     s.dribbles,
		"defaultBodyPart": s.defaultBodyPart,
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
	}
	return stats
}

func (s *Service) prepare(j model.Job) (model.Job, error) { //nolint:gocritic // hugeParam: Job is passed by value like the queue does
	if j.Game.GameID == "" {
		return j, ErrEmptyGameID
	}
	if j.Provider == "" {
		j.Provider = ProviderStatsBomb
	}
	if j.Provider != ProviderStatsBomb {
		return j, errors.Wrapf(ErrUnsupportedProvider, "%q", j.Provider)
	}
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.SubmittedAt.IsZero() {
		j.SubmittedAt = time.Now()
	}
	return j, nil
}

// process runs decode, convert, validate and minutes for one game.
func (s *Service) process(ctx context.Context, j model.Job) (repository.Result, error) { //nolint:gocritic // hugeParam: Job is passed by value like the queue does
	start := time.Now()
	r := repository.Result{
		JobID:       j.ID,
		GameID:      j.Game.GameID,
		Provider:    j.Provider,
		Status:      repository.StatusDone,
		SubmittedAt: j.SubmittedAt,
	}
	finish := func(err error) (repository.Result, error) {
		r.CompletedAt = time.Now()
		r.Duration = r.CompletedAt.Sub(start)
		status := string(r.Status)
		metrics.RecordGameConverted(r.Provider, status)
		metrics.RecordConversionLatency(float64(r.Duration.Milliseconds()))
		return r, err
	}

	events, err := statsbomb.DecodeEvents(j.Payload)
	if err != nil {
		metrics.RecordErrorByComponent("service", "decode")
		s.logger.Warn(ctx, "cannot decode events", logger.String("game_id", j.Game.GameID), logger.Error(err))
		r.Status = repository.StatusFailed
		r.ConvertError = err.Error()
		return finish(err)
	}

	players, minutesErr := s.statsbomb.Minutes(j.Game.GameID, events)
	if minutesErr != nil {
		metrics.RecordMinutesFailure()
		s.logger.Warn(ctx, "cannot extract minutes", logger.String("game_id", j.Game.GameID), logger.Error(minutesErr))
		r.MinutesError = minutesErr.Error()
	} else {
		r.PlayerGames = players
	}

	actions, err := s.statsbomb.Convert(events, j.Game)
	if err != nil {
		metrics.RecordErrorByComponent("service", "convert")
		s.logger.Warn(ctx, "cannot convert game", logger.String("game_id", j.Game.GameID), logger.Error(err))
		r.Status = repository.StatusFailed
		r.ConvertError = err.Error()
		return finish(err)
	}

	if _, err := s.schema.ValidateActions(actions); err != nil {
		recordViolations(err)
		s.logger.Error(ctx, "converted actions violate the schema", logger.String("game_id", j.Game.GameID), logger.Error(err))
		r.Status = repository.StatusFailed
		var v *schema.Violation
		if errors.As(err, &v) {
			r.Violations = v.Failures
		} else {
			r.ConvertError = err.Error()
		}
		return finish(err)
	}

	counts := map[string]int{}
	for i := range actions {
		counts[actions[i].TypeName]++
	}
	for name, n := range counts {
		metrics.RecordActionEmitted(name, n)
	}
	r.Actions = actions

	s.logger.Debug(ctx, "game converted",
		logger.String("game_id", j.Game.GameID),
		logger.Int("events", len(events)),
		logger.Int("actions", len(actions)),
		logger.Int("players", len(players)),
	)
	return finish(nil)
}

func recordViolations(err error) {
	var v *schema.Violation
	if !errors.As(err, &v) {
		return
	}
	for _, f := range v.Failures {
		metrics.RecordValidationFailure(f.Column, string(f.Check))
	}
}

func failed(j model.Job, err error) repository.Result { //nolint:gocritic // hugeParam: Job is passed by value like the queue does
	now := time.Now()
	return repository.Result{
		JobID:        j.ID,
		GameID:       j.Game.GameID,
		Provider:     j.Provider,
		Status:       repository.StatusFailed,
		ConvertError: err.Error(),
		SubmittedAt:  j.SubmittedAt,
		CompletedAt:  now,
	}
}
