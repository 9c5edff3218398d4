package suite

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Baaaaam/optim"
	"github.com/Baaaaam/optim/bat"
)

// Outcome is the result of one case.
type Outcome struct {
	Case
	Result  *bat.Result
	Solved  bool
	// Evals counts the objective calls the case made.
	Evals   int
	Elapsed time.Duration
}

// Run executes every case of the plan concurrently, at most p.Parallel at a
// time.  Runs share no state; each owns its population and a random source
// seeded from the plan.  Outcomes are returned in case order.  The first
// failing case cancels the cases that have not started yet.
func Run(ctx context.Context, p Plan, logger *slog.Logger) ([]Outcome, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	cases := p.Cases()
	out := make([]Outcome, len(cases))

	g, gctx := errgroup.WithContext(ctx)
	if p.Parallel > 0 {
		g.SetLimit(p.Parallel)
	}

	for _, c := range cases {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			start := time.Now()
			prob := c.Func.Problem(p.Dimension)
			counter := optim.NewObjectiveCounter(prob)
			if p.LogEvals {
				counter.Logger = logger.With(
					slog.String("function", c.Func.Name),
					slog.Int("bats", c.PopSize),
				)
			}
			low, up := prob.Bounds()
			prob = optim.NewProblem(prob.Name(), counter, low, up)

			opts := append(p.Options(c), bat.Logger(logger))
			r, err := bat.Run(prob, c.PopSize, p.Iterations, opts...)
			if err != nil {
				return fmt.Errorf("%v with %v bats: %w", c.Func.Name, c.PopSize, err)
			}

			out[c.Index] = Outcome{
				Case:    c,
				Result:  r,
				Solved:  c.Func.Solved(r.Best.Val, p.Tolerance),
				Evals:   counter.Count,
				Elapsed: time.Since(start),
			}
			logger.Info("case finished",
				slog.String("function", c.Func.Name),
				slog.Int("bats", c.PopSize),
				slog.Float64("best", r.Best.Val),
				slog.Float64("optimum", c.Func.Optimum),
				slog.Bool("solved", out[c.Index].Solved),
				slog.Int("evals", counter.Count),
				slog.Duration("elapsed", out[c.Index].Elapsed),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
