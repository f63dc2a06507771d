package recorder

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/scorekeeper/internal/domain/matchrecord"
	"github.com/riskibarqy/scorekeeper/internal/platform/logging"
)

var ErrClosed = errors.New("recorder is closed")

// SaveMetrics observes the result of each save.
type SaveMetrics interface {
	RecordSaved(err error)
}

type Config struct {
	Workers     int
	SaveTimeout time.Duration
}

// Async saves finished matches on a worker pool so scoring never waits on
// the repository.
type Async struct {
	repo    matchrecord.Repository
	pool    *ants.Pool
	timeout time.Duration
	logger  *logging.Logger
	metrics SaveMetrics

	// mu orders the closed check against inflight.Add so Close never waits
	// while a new save is being registered.
	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

func NewAsync(repo matchrecord.Repository, cfg Config, metrics SaveMetrics, logger *logging.Logger) (*Async, error) {
	if repo == nil {
		return nil, errors.New("match repository is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = 5 * time.Second
	}
	logger = logging.OrDefault(logger).Named("recorder")

	pool, err := ants.NewPool(cfg.Workers, ants.WithPanicHandler(func(p any) {
		logger.Error("match save panicked", "panic", p)
	}))
	if err != nil {
		return nil, errors.Wrap(err, "create recorder pool")
	}

	return &Async{
		repo:    repo,
		pool:    pool,
		timeout: cfg.SaveTimeout,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// RecordMatch queues match for saving. The caller's cancellation does not
// reach the save; its trace does.
func (a *Async) RecordMatch(ctx context.Context, match matchrecord.Match) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.logger.WarnContext(ctx, "dropping finished match", "match_id", match.ID, "error", ErrClosed)
		return
	}
	a.inflight.Add(1)
	a.mu.Unlock()

	saveCtx := context.WithoutCancel(ctx)
	match = matchrecord.CloneMatch(match)

	err := a.pool.Submit(func() {
		defer a.inflight.Done()
		a.save(saveCtx, match)
	})
	if err != nil {
		a.inflight.Done()
		a.logger.WarnContext(ctx, "recorder pool rejected save, saving inline", "match_id", match.ID, "error", err)
		a.save(saveCtx, match)
	}
}

func (a *Async) save(ctx context.Context, match matchrecord.Match) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	err := a.repo.Save(ctx, match)
	if a.metrics != nil {
		a.metrics.RecordSaved(err)
	}
	if err != nil {
		err = errors.Wrapf(err, "save match %s", match.ID)
		a.logger.ErrorContext(ctx, "save finished match failed", "match_id", match.ID, "error", err)
		return
	}
	a.logger.InfoContext(ctx, "finished match saved", "match_id", match.ID, "sets", len(match.Sets))
}

// Close stops accepting matches and waits for queued saves until ctx ends.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()
	defer a.pool.Release()

	done := make(chan struct{})
	go func() {
		a.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "wait for pending match saves")
	}
}
