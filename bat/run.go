package bat

import (
	"fmt"
	"log/slog"

	"github.com/Baaaaam/optim"
)

// Result holds the outcome of a single run.
type Result struct {
	Name    string
	PopSize int
	// Trace holds the global best value before the first iteration followed
	// by the global best value after every completed iteration.
	Trace []float64
	Best  optim.Point
	Neval int
}

// Run minimizes prob with a population of n bats for maxiter iterations.
// If an objective evaluation fails mid-run, Run returns the partial result,
// with the trace truncated to the completed iterations, together with an
// error wrapping optim.ErrEvaluation.  Failures during initialization return
// a nil result.
func Run(prob optim.Problem, n, maxiter int, opts ...Option) (*Result, error) {
	if maxiter <= 0 {
		return nil, fmt.Errorf("%w: iteration count must be positive, got %v", optim.ErrInvalidConfig, maxiter)
	}

	it, err := NewIterator(prob, n, opts...)
	if err != nil {
		return nil, err
	}

	it.logger.Debug("bat run starting",
		slog.String("problem", prob.Name()),
		slog.Int("bats", n),
		slog.Int("iterations", maxiter),
		slog.Float64("loudness", it.Loudness0),
		slog.Float64("pulse_rate", it.PulseRate0),
		slog.String("freq", it.Freq.String()),
	)

	r := &Result{
		Name:    prob.Name(),
		PopSize: n,
		Trace:   make([]float64, 0, maxiter+1),
	}
	r.Trace = append(r.Trace, it.Best().Val)
	for i := 0; i < maxiter; i++ {
		best, _, err := it.Iterate()
		if err != nil {
			r.Best = it.Best()
			r.Neval = it.Neval()
			it.logger.Warn("bat run aborted",
				slog.String("problem", prob.Name()),
				slog.Int("iteration", it.Count()),
				slog.String("error", err.Error()),
			)
			return r, fmt.Errorf("iteration %v: %w", i, err)
		}
		r.Trace = append(r.Trace, best.Val)
	}

	r.Best = it.Best()
	r.Neval = it.Neval()
	it.logger.Debug("bat run finished",
		slog.String("problem", prob.Name()),
		slog.Int("bats", n),
		slog.Int("iterations", it.Count()),
		slog.Int("evals", r.Neval),
		slog.Float64("best", r.Best.Val),
	)
	return r, nil
}
