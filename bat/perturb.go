package bat

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultGaussianScale is the usual GaussianJitter scale.
const DefaultGaussianScale = 0.01

// Perturber generates a local search candidate around the global best.  It
// writes the candidate into dst, which has the same length as best, and must
// draw random numbers only from rng.  Validate reports a parameter the
// policy cannot run with.
type Perturber interface {
	Perturb(dst, best []float64, pop Population, rng *rand.Rand)
	Validate() error
}

// LoudnessJitter offsets every dimension of the global best by a uniform
// random fraction in [-1, 1) of the population's mean loudness.  As bats
// grow quieter the search tightens around the best.
type LoudnessJitter struct{}

func (LoudnessJitter) Validate() error { return nil }

func (LoudnessJitter) Perturb(dst, best []float64, pop Population, rng *rand.Rand) {
	mean := stat.Mean(pop.Loudness(), nil)
	u := distuv.Uniform{Min: -1, Max: 1, Src: rng}
	for i := range dst {
		dst[i] = best[i] + u.Rand()*mean
	}
}

// GaussianJitter offsets every dimension of the global best by a normal
// deviate times Scale.  A zero Scale puts the candidate on the best itself.
type GaussianJitter struct {
	Scale float64
}

func (g GaussianJitter) Validate() error {
	if math.IsNaN(g.Scale) || g.Scale < 0 {
		return fmt.Errorf("gaussian scale must not be negative, got %v", g.Scale)
	}
	return nil
}

func (g GaussianJitter) Perturb(dst, best []float64, pop Population, rng *rand.Rand) {
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	for i := range dst {
		dst[i] = best[i] + g.Scale*norm.Rand()
	}
}
