// Package optim holds the vocabulary shared by the solvers and tools in this
// module: points, objectives, problems and the error kinds they report.
package optim

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

var (
	// ErrInvalidConfig is wrapped by every error caused by a bad solver or
	// problem configuration.  It is always reported before any evaluation.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrEvaluation is wrapped by errors caused by an objective that failed
	// or returned NaN or an infinite value.
	ErrEvaluation = errors.New("objective evaluation failed")
)

type Point struct {
	pos []float64
	Val float64
}

func NewPoint(pos []float64, val float64) Point {
	cpos := make([]float64, len(pos))
	copy(cpos, pos)
	return Point{pos: cpos, Val: val}
}

func (p Point) At(i int) float64 { return p.pos[i] }

func (p Point) Len() int { return len(p.pos) }

func (p Point) Pos() []float64 {
	pos := make([]float64, len(p.pos))
	copy(pos, p.pos)
	return pos
}

type Objectiver interface {
	// Objective evaluates the variables in v and returns the objective
	// function value.  The objective function must be framed so that lower
	// values are better.  Objective must not modify v.
	Objective(v []float64) (float64, error)
}

// Func adapts a plain function to the Objectiver interface.
type Func func([]float64) float64

func (fn Func) Objective(v []float64) (float64, error) { return fn(v), nil }

// Problem is a named objective over a box-bounded domain.
type Problem interface {
	Objectiver
	Name() string
	// Bounds returns the lower and upper box bounds for each dimension.
	// Callers must not modify the returned slices.
	Bounds() (low, up []float64)
}

type boxProblem struct {
	Objectiver
	name    string
	low, up []float64
}

// NewProblem builds a Problem from an objective and box bounds.  The bounds
// are copied.
func NewProblem(name string, obj Objectiver, low, up []float64) Problem {
	return &boxProblem{
		Objectiver: obj,
		name:       name,
		low:        append([]float64{}, low...),
		up:         append([]float64{}, up...),
	}
}

func (p *boxProblem) Name() string { return p.name }

func (p *boxProblem) Bounds() (low, up []float64) { return p.low, p.up }

// CheckBounds reports an ErrInvalidConfig error if low and up do not
// describe a finite, non-empty box with at least one dimension.
func CheckBounds(low, up []float64) error {
	if len(low) == 0 {
		return fmt.Errorf("%w: dimension must be positive", ErrInvalidConfig)
	}
	if len(low) != len(up) {
		return fmt.Errorf("%w: bounds have mismatched lengths %v and %v", ErrInvalidConfig, len(low), len(up))
	}
	for i := range low {
		if math.IsNaN(low[i]) || math.IsNaN(up[i]) || low[i] > up[i] {
			return fmt.Errorf("%w: dimension %v has lower bound %v above upper bound %v", ErrInvalidConfig, i, low[i], up[i])
		}
		if math.IsInf(low[i], 0) || math.IsInf(up[i], 0) {
			return fmt.Errorf("%w: dimension %v has infinite bounds [%v, %v]", ErrInvalidConfig, i, low[i], up[i])
		}
	}
	return nil
}

// CheckedObjective evaluates v with obj and converts objective errors and
// non-finite values into ErrEvaluation errors.
func CheckedObjective(obj Objectiver, v []float64) (float64, error) {
	val, err := obj.Objective(v)
	if err != nil {
		return math.Inf(1), fmt.Errorf("%w: %v at %v", ErrEvaluation, err, v)
	}
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return math.Inf(1), fmt.Errorf("%w: non-finite value %v at %v", ErrEvaluation, val, v)
	}
	return val, nil
}

// ObjectiveCounter wraps an Objectiver, counting evaluations and optionally
// logging each one at debug level.
type ObjectiveCounter struct {
	Objectiver
	Count  int
	Logger *slog.Logger
}

func NewObjectiveCounter(obj Objectiver) *ObjectiveCounter {
	return &ObjectiveCounter{Objectiver: obj}
}

func (oc *ObjectiveCounter) Objective(v []float64) (float64, error) {
	val, err := oc.Objectiver.Objective(v)

	oc.Count++
	if oc.Logger != nil {
		oc.Logger.Debug("objective evaluated",
			slog.Int("count", oc.Count),
			slog.Any("pos", v),
			slog.Float64("val", val),
		)
	}
	return val, err
}
