// Package pipeline orchestrates one fetch → render → publish run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/malbox/malbox/internal/mal"
	"github.com/malbox/malbox/internal/metrics"
	"github.com/malbox/malbox/internal/render"
)

// Fetcher reads the ranked list entries for a user.
type Fetcher interface {
	Fetch(ctx context.Context, username string, contentType mal.ContentType, status mal.Status) ([]mal.Entry, error)
}

// Publisher replaces the remote snippet's content and returns the byte count.
type Publisher interface {
	Publish(ctx context.Context, text string) (int, error)
}

// Limiter guards against publishing more often than the minimum interval.
type Limiter interface {
	Allow(now time.Time) (bool, error)
	MarkPublished(now time.Time) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs.
type IDGenerator interface {
	NewID() (string, error)
}

// Outcome classifies how a run ended without error.
type Outcome string

// Run outcomes.
const (
	// OutcomePublished means the gist now holds this run's snapshot.
	OutcomePublished Outcome = "published"
	// OutcomeSkipped means the rate limit guard declined the run.
	OutcomeSkipped Outcome = "skipped"
)

// Result reports a completed run.
type Result struct {
	Outcome Outcome
	// Length is the number of bytes published; zero when skipped.
	Length int
	RunID  string
}

// RunConfig is the immutable per-run configuration threaded through the
// pipeline. It is constructed once at the entry point; no process-wide
// mutable state exists.
type RunConfig struct {
	Username    string
	ContentType mal.ContentType
	Status      mal.Status
	Unit        render.Unit
}

// Runner executes runs strictly sequentially: fetch, render, publish. Any
// failure aborts before the write, so the gist is never overwritten with
// partial or stale content.
type Runner struct {
	fetcher   Fetcher
	publisher Publisher
	limiter   Limiter
	clock     Clock
	idGen     IDGenerator
	cfg       RunConfig
	logger    *zap.Logger
}

// NewRunner constructs a Runner. limiter may be nil, which disables the
// publish interval guard.
func NewRunner(
	fetcher Fetcher,
	publisher Publisher,
	limiter Limiter,
	clock Clock,
	idGen IDGenerator,
	cfg RunConfig,
	logger *zap.Logger,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		fetcher:   fetcher,
		publisher: publisher,
		limiter:   limiter,
		clock:     clock,
		idGen:     idGen,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run performs one full pipeline pass. Failures from any stage abort the run
// and surface to the caller; nothing is retried here.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	runID, err := r.idGen.NewID()
	if err != nil {
		return Result{}, fmt.Errorf("generate run id: %w", err)
	}
	logger := r.logger.With(zap.String("run_id", runID))

	if r.limiter != nil {
		allowed, err := r.limiter.Allow(r.clock.Now())
		if err != nil {
			// A broken guard must not block publishing.
			logger.Warn("rate limit check failed; continuing", zap.Error(err))
		} else if !allowed {
			metrics.ObserveRun(string(OutcomeSkipped))
			logger.Info("run skipped by rate limit")
			return Result{Outcome: OutcomeSkipped, RunID: runID}, nil
		}
	}

	text, err := r.snapshot(ctx, logger)
	if err != nil {
		return Result{}, err
	}

	length, err := r.publisher.Publish(ctx, text)
	if err != nil {
		metrics.ObserveRun("publish_error")
		return Result{}, fmt.Errorf("publish snapshot: %w", err)
	}

	if r.limiter != nil {
		if err := r.limiter.MarkPublished(r.clock.Now()); err != nil {
			logger.Warn("could not record publish time", zap.Error(err))
		}
	}

	metrics.ObserveRun(string(OutcomePublished))
	metrics.ObservePublish(length)
	logger.Info("snapshot published", zap.Int("bytes", length))
	return Result{Outcome: OutcomePublished, Length: length, RunID: runID}, nil
}

// Preview fetches and renders without publishing. The serve-mode API uses it
// to show what the next run would write.
func (r *Runner) Preview(ctx context.Context) (string, error) {
	return r.snapshot(ctx, r.logger)
}

func (r *Runner) snapshot(ctx context.Context, logger *zap.Logger) (string, error) {
	start := r.clock.Now()
	entries, err := r.fetcher.Fetch(ctx, r.cfg.Username, r.cfg.ContentType, r.cfg.Status)
	if err != nil {
		metrics.ObserveRun("fetch_error")
		return "", fmt.Errorf("fetch list: %w", err)
	}
	metrics.ObserveFetch(r.clock.Now().Sub(start), len(entries))
	logger.Debug("list fetched", zap.Int("entries", len(entries)))

	text, err := render.Render(entries, r.cfg.Unit)
	if err != nil {
		metrics.ObserveRun("render_error")
		return "", fmt.Errorf("render snapshot: %w", err)
	}
	return text, nil
}
