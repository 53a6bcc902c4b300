package harvest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gomantics/repograph/domains/repos"
	"github.com/gomantics/repograph/libs/gitrepo"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Scheduler runs a pipeline over refs with bounded concurrency and hands every
// finished item to a sink, one at a time.
type Scheduler struct {
	l        *zap.Logger
	pipeline Pipeline
	sink     Sink
	metrics  *metrics

	completed atomic.Int64

	mu       sync.Mutex
	progress Progress
}

// NewScheduler creates a scheduler. Metrics are registered with reg when it is not nil.
func NewScheduler(l *zap.Logger, pipeline Pipeline, sink Sink, reg prometheus.Registerer) *Scheduler {
	return &Scheduler{
		l:        l,
		pipeline: pipeline,
		sink:     sink,
		metrics:  newMetrics(reg),
	}
}

// Completed returns how many items have finished, done or failed, since the scheduler was created.
func (s *Scheduler) Completed() int64 {
	return s.completed.Load()
}

// Progress returns a snapshot of the current or last run.
func (s *Scheduler) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Run harvests refs with at most limit pipelines in flight. Items are dispatched in
// order; a slot is refilled only after its finished item has been committed or
// recorded as failed. Item failures never stop the run.
//
// When ctx is cancelled Run stops dispatching and returns ctx.Err() without waiting
// for in-flight pipelines; their results are discarded. A rate-limited pipeline
// stops the run the same way and Run returns ErrRateLimited.
func (s *Scheduler) Run(ctx context.Context, refs []repos.Ref, limit int) (Report, error) {
	var report Report
	if len(refs) == 0 {
		return report, nil
	}

	limit = max(limit, 1)
	s.reset(len(refs))

	s.l.Info("starting harvest", zap.Int("repositories", len(refs)), zap.Int("concurrency", limit))

	// Cancelling this context kills the subprocesses of abandoned pipelines.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Every dispatched pipeline sends exactly once and at most limit are in flight,
	// so sends never block even after Run has returned.
	results := make(chan WorkItem, limit)

	next, inFlight := 0, 0
	stop := func(err error) (Report, error) {
		report.Abandoned = inFlight
		report.Undispatched = len(refs) - next
		return report, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return stop(err)
		}

		for inFlight < limit && next < len(refs) {
			s.dispatch(ctx, refs[next], results)
			next++
			inFlight++
		}

		if inFlight == 0 {
			break
		}

		select {
		case <-ctx.Done():
			return stop(ctx.Err())
		case item := <-results:
			inFlight--
			if ctx.Err() != nil {
				return stop(ctx.Err())
			}

			s.drain(ctx, &item)

			if item.State == StateDone {
				report.Done++
				continue
			}

			report.Failed = append(report.Failed, item)
			if isRateLimited(item.Err) {
				s.l.Error("remote host is rate limiting, stopping harvest",
					zap.Int64("rank", item.Ref.Rank),
					zap.String("repo", item.Ref.String()),
					zap.Error(item.Err),
				)
				return stop(fmt.Errorf("%w: %s: %w", ErrRateLimited, item.Ref, item.Err))
			}
		}
	}

	s.l.Info("harvest finished",
		zap.Int("done", report.Done),
		zap.Int("failed", len(report.Failed)),
	)
	return report, nil
}

// dispatch starts the pipeline for ref in its own goroutine.
func (s *Scheduler) dispatch(ctx context.Context, ref repos.Ref, results chan<- WorkItem) {
	s.update(func(p *Progress) {
		p.Pending--
		p.InFlight++
	})
	s.metrics.inflight.Inc()

	go func() {
		start := time.Now()
		counts, err := s.pipeline.Harvest(ctx, ref)

		s.metrics.inflight.Dec()
		s.metrics.duration.Observe(time.Since(start).Seconds())
		s.update(func(p *Progress) {
			p.InFlight--
		})

		item := WorkItem{Ref: ref, State: StateDone, Counts: counts}
		if err != nil {
			item = WorkItem{Ref: ref, State: StateFailed, Err: err}
		}
		results <- item
	}()
}

// drain commits a finished item through the sink and records its outcome.
func (s *Scheduler) drain(ctx context.Context, item *WorkItem) {
	l := s.l.With(
		zap.Int64("rank", item.Ref.Rank),
		zap.String("owner", item.Ref.Owner),
		zap.String("project", item.Ref.Project),
	)

	if item.State == StateDone {
		if err := s.sink.Commit(ctx, item.Ref, item.Counts); err != nil {
			item.State = StateFailed
			item.Err = fmt.Errorf("%w: %w", ErrStoreWriteFailed, err)
		}
	}

	s.completed.Add(1)

	if item.State == StateDone {
		s.metrics.items.WithLabelValues(string(StateDone)).Inc()
		s.update(func(p *Progress) { p.Done++ })
		l.Info("harvested", zap.Int("contributors", len(item.Counts)))
		return
	}

	kind := errorKind(item.Err)
	s.metrics.items.WithLabelValues(kind).Inc()
	s.update(func(p *Progress) { p.Failed++ })
	l.Warn("harvest failed", zap.String("kind", kind), zap.Error(item.Err))
}

func (s *Scheduler) reset(total int) {
	s.update(func(p *Progress) {
		*p = Progress{Total: total, Pending: total}
	})
}

func (s *Scheduler) update(fn func(*Progress)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.progress)
}

func isRateLimited(err error) bool {
	return errors.Is(err, gitrepo.ErrRateLimited) || errors.Is(err, ErrRateLimited)
}

// errorKind names the failure class of an item for logs and metrics.
func errorKind(err error) string {
	switch {
	case isRateLimited(err):
		return "rate_limited"
	case errors.Is(err, gitrepo.ErrMirrorUnavailable):
		return "mirror_unavailable"
	case errors.Is(err, gitrepo.ErrSummarizationFailed):
		return "summarization_failed"
	case errors.Is(err, ErrStoreWriteFailed):
		return "store_write_failed"
	default:
		return "failed"
	}
}

// Harvest reads the pending refs from source once and runs them through sched.
func Harvest(ctx context.Context, source Source, sched *Scheduler, limit int) (Report, error) {
	refs, err := source.Pending(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to read work queue: %w", err)
	}
	return sched.Run(ctx, refs, limit)
}
