// Package bat implements the bat algorithm for minimizing an objective over a
// box-bounded domain:
//
//     Yang, X.-S. "A New Metaheuristic Bat-Inspired Algorithm", Nature
//     Inspired Cooperative Strategies for Optimization (NICSO 2010),
//     Studies in Computational Intelligence 284, pp. 65-74.
//
// Each bat carries a velocity pulled toward the global best by a random
// frequency, a pulse rate gating a local search around the global best and a
// loudness gating acceptance of improved positions.
package bat

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/Baaaaam/optim"
	"gonum.org/v1/gonum/floats"
)

const (
	DefaultLoudness  = 2.0
	DefaultPulseRate = 0.1
	DefaultSeed      = 1
)

const (
	FreqMin = 0.0
	FreqMax = 2.0
	// Alpha is the cooling factor applied to a bat's loudness and pulse rate
	// growth every time it accepts a new position.
	Alpha = 0.9
)

// FreqRule selects how a bat's frequency is drawn each iteration.
type FreqRule int

const (
	// FreqNegated draws from [-FreqMax, 0] as FreqMin + (FreqMin-FreqMax)*U.
	// Combined with the (pos - best)*freq velocity term this accelerates
	// bats toward the global best.
	FreqNegated FreqRule = iota
	// FreqConventional draws from [FreqMin, FreqMax] as
	// FreqMin + (FreqMax-FreqMin)*U.
	FreqConventional
)

func (r FreqRule) Draw(rng *rand.Rand) float64 {
	if r == FreqConventional {
		return FreqMin + (FreqMax-FreqMin)*rng.Float64()
	}
	return FreqMin + (FreqMin-FreqMax)*rng.Float64()
}

func (r FreqRule) String() string {
	switch r {
	case FreqNegated:
		return "negated"
	case FreqConventional:
		return "conventional"
	}
	return fmt.Sprintf("FreqRule(%d)", int(r))
}

type Bat struct {
	Id        int
	Pos       []float64
	Vel       []float64
	Freq      float64
	Val       float64
	Loudness  float64
	PulseRate float64
}

type Population []*Bat

// Best returns the bat with the lowest value.  Ties go to the bat that comes
// first.
func (pop Population) Best() *Bat {
	if len(pop) == 0 {
		return nil
	}

	best := pop[0]
	for _, b := range pop[1:] {
		if b.Val < best.Val {
			best = b
		}
	}
	return best
}

func (pop Population) Loudness() []float64 {
	loud := make([]float64, len(pop))
	for i, b := range pop {
		loud[i] = b.Loudness
	}
	return loud
}

type Option func(*Iterator)

// Loudness sets the initial loudness of every bat.
func Loudness(a float64) Option {
	return func(it *Iterator) {
		it.Loudness0 = a
	}
}

// PulseRate sets the initial pulse rate of every bat.  It also scales the
// pulse rate growth after each accepted move.
func PulseRate(r float64) Option {
	return func(it *Iterator) {
		it.PulseRate0 = r
	}
}

func Perturbation(p Perturber) Option {
	return func(it *Iterator) {
		it.Perturber = p
	}
}

func Clamping(c Clamper) Option {
	return func(it *Iterator) {
		it.Clamper = c
	}
}

func Frequency(r FreqRule) Option {
	return func(it *Iterator) {
		it.Freq = r
	}
}

// Seed seeds the private random source of the run.  It is ignored if Rand
// is also given.
func Seed(s uint64) Option {
	return func(it *Iterator) {
		it.seed = s
	}
}

// Rand sets the random source of the run.  The source must not be shared
// with concurrently running iterators.
func Rand(rng *rand.Rand) Option {
	return func(it *Iterator) {
		it.rng = rng
	}
}

func Logger(l *slog.Logger) Option {
	return func(it *Iterator) {
		it.logger = l
	}
}

type Iterator struct {
	Pop        Population
	Loudness0  float64
	PulseRate0 float64
	Perturber  Perturber
	Clamper    Clamper
	Freq       FreqRule

	prob    optim.Problem
	low, up []float64
	seed    uint64
	rng     *rand.Rand
	logger  *slog.Logger
	best    optim.Point
	count   int
	neval   int
	cand    []float64
	diff    []float64
}

// NewIterator validates the configuration, places n bats uniformly at random
// inside prob's bounds and evaluates each of them once.  Configuration
// errors wrap optim.ErrInvalidConfig and are reported before any objective
// evaluation.
func NewIterator(prob optim.Problem, n int, opts ...Option) (*Iterator, error) {
	if prob == nil {
		return nil, fmt.Errorf("%w: nil problem", optim.ErrInvalidConfig)
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: population size must be positive, got %v", optim.ErrInvalidConfig, n)
	}
	low, up := prob.Bounds()
	if err := optim.CheckBounds(low, up); err != nil {
		return nil, fmt.Errorf("problem %v: %w", prob.Name(), err)
	}

	it := &Iterator{
		Loudness0:  DefaultLoudness,
		PulseRate0: DefaultPulseRate,
		Perturber:  LoudnessJitter{},
		Clamper:    Clamp,
		Freq:       FreqNegated,
		prob:       prob,
		low:        append([]float64{}, low...),
		up:         append([]float64{}, up...),
		seed:       DefaultSeed,
		cand:       make([]float64, len(low)),
		diff:       make([]float64, len(low)),
	}
	for _, opt := range opts {
		opt(it)
	}
	if err := it.check(); err != nil {
		return nil, err
	}
	if it.rng == nil {
		it.rng = rand.New(rand.NewPCG(it.seed, it.seed))
	}
	if it.logger == nil {
		it.logger = slog.Default()
	}

	it.Pop = make(Population, n)
	for i, p := range optim.RandPop(it.rng, n, it.low, it.up) {
		b := &Bat{
			Id:        i,
			Pos:       p.Pos(),
			Vel:       make([]float64, len(it.low)),
			Loudness:  it.Loudness0,
			PulseRate: it.PulseRate0,
		}
		val, err := optim.CheckedObjective(prob, b.Pos)
		it.neval++
		if err != nil {
			return nil, fmt.Errorf("initializing bat %v: %w", i, err)
		}
		b.Val = val
		it.Pop[i] = b
	}

	best := it.Pop.Best()
	it.best = optim.NewPoint(best.Pos, best.Val)
	return it, nil
}

func (it *Iterator) check() error {
	if math.IsNaN(it.Loudness0) || it.Loudness0 <= 0 {
		return fmt.Errorf("%w: initial loudness must be positive, got %v", optim.ErrInvalidConfig, it.Loudness0)
	}
	if math.IsNaN(it.PulseRate0) || it.PulseRate0 < 0 || it.PulseRate0 > 1 {
		return fmt.Errorf("%w: initial pulse rate must be in [0, 1], got %v", optim.ErrInvalidConfig, it.PulseRate0)
	}
	if it.Perturber == nil {
		return fmt.Errorf("%w: nil perturbation policy", optim.ErrInvalidConfig)
	}
	if err := it.Perturber.Validate(); err != nil {
		return fmt.Errorf("%w: %v", optim.ErrInvalidConfig, err)
	}
	if it.Clamper == nil {
		return fmt.Errorf("%w: nil boundary policy", optim.ErrInvalidConfig)
	}
	if it.Freq != FreqNegated && it.Freq != FreqConventional {
		return fmt.Errorf("%w: unknown frequency rule %v", optim.ErrInvalidConfig, it.Freq)
	}
	return nil
}

// Iterate moves every bat once, in population order, and returns the global
// best along with the number of objective evaluations performed.  Bats read
// the global best as updated by the bats before them in the same iteration.
func (it *Iterator) Iterate() (best optim.Point, neval int, err error) {
	t := float64(it.count)
	for _, b := range it.Pop {
		gbest := it.best.Pos()

		b.Freq = it.Freq.Draw(it.rng)
		floats.SubTo(it.diff, b.Pos, gbest)
		floats.AddScaled(b.Vel, b.Freq, it.diff)
		floats.AddTo(it.cand, b.Pos, b.Vel)
		it.Clamper.Clamp(it.cand, it.low, it.up)

		// local search around the global best
		if it.rng.Float64() > b.PulseRate {
			it.Perturber.Perturb(it.cand, gbest, it.Pop, it.rng)
			it.Clamper.Clamp(it.cand, it.low, it.up)
		}

		val, err := optim.CheckedObjective(it.prob, it.cand)
		neval++
		it.neval++
		if err != nil {
			return it.best, neval, fmt.Errorf("bat %v: %w", b.Id, err)
		}

		// the draw happens whether or not the move improved
		loud := it.rng.Float64()
		if val <= b.Val && loud < b.Loudness {
			copy(b.Pos, it.cand)
			b.Val = val
			b.Loudness *= Alpha
			b.PulseRate = math.Min(1, b.PulseRate+it.PulseRate0*(1-math.Exp(-Alpha*t)))
		}

		if val <= it.best.Val {
			it.best = optim.NewPoint(it.cand, val)
		}
	}
	it.count++
	return it.best, neval, nil
}

func (it *Iterator) Best() optim.Point { return it.best }

// Count returns the number of completed iterations.
func (it *Iterator) Count() int { return it.count }

// Neval returns the total number of objective evaluations so far, including
// the initial population.
func (it *Iterator) Neval() int { return it.neval }
