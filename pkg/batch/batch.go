// Package batch proves independent problems in parallel.
package batch

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/geoproof/pkg/prover"
)

// Job is one named problem.
type Job struct {
	Name  string
	Input prover.Input
}

// Result is the outcome of one job. Err holds per-problem failures such as
// malformed input; they do not stop the other jobs.
type Result struct {
	Name     string
	Output   *prover.Output
	Err      error
	Duration time.Duration
}

// Runner proves jobs with a fresh prover each.
type Runner struct {
	NewProver func() *prover.Prover
	// Limit caps the number of jobs proved at once. Zero means no limit.
	Limit  int
	Logger *zap.Logger
}

// Run proves every job and returns the results in job order. It returns an
// error only when ctx is done before all jobs have started.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	if r.Limit > 0 {
		g.SetLimit(r.Limit)
	}

	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			out, err := r.NewProver().Prove(job.Input)
			results[i] = Result{Name: job.Name, Output: out, Err: err, Duration: time.Since(start)}
			if err != nil {
				logger.Warn("problem failed", zap.String("problem", job.Name), zap.Error(err))
				return nil
			}
			logger.Info("problem resolved",
				zap.String("problem", job.Name),
				zap.Int("proven", len(out.Proven)),
				zap.Int("unproven", len(out.Unproven)),
				zap.Int("discovered", len(out.Discovered)),
				zap.Duration("duration", results[i].Duration))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
