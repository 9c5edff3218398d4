package bat

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/Baaaaam/optim"
	"github.com/Baaaaam/optim/bench"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seed = 7

func sphere(x []float64) float64 {
	tot := 0.0
	for _, v := range x {
		tot += v * v
	}
	return tot
}

func sphereProblem(ndim int, bound float64) optim.Problem {
	low := make([]float64, ndim)
	up := make([]float64, ndim)
	for i := range low {
		low[i] = -bound
		up[i] = bound
	}
	return optim.NewProblem("sphere", optim.Func(sphere), low, up)
}

type variant struct {
	name string
	opts []Option
}

var variants = []variant{
	{"default", nil},
	{"gaussian", []Option{Perturbation(GaussianJitter{Scale: DefaultGaussianScale})}},
	{"conventional", []Option{Frequency(FreqConventional)}},
	{"resetlow", []Option{Clamping(ResetLow)}},
	{"quiet", []Option{Loudness(0.5), PulseRate(0.5)}},
}

func TestRunTrace(t *testing.T) {
	const maxiter = 200
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			r, err := Run(sphereProblem(3, 10), 20, maxiter, append(v.opts, Seed(seed))...)
			require.NoError(t, err)
			require.Len(t, r.Trace, maxiter+1)

			for i := 1; i < len(r.Trace); i++ {
				if r.Trace[i] > r.Trace[i-1] {
					t.Fatalf("trace increased at iteration %v: %v -> %v", i, r.Trace[i-1], r.Trace[i])
				}
			}
			assert.Equal(t, r.Trace[maxiter], r.Best.Val)
			assert.Equal(t, sphere(r.Best.Pos()), r.Best.Val)
			assert.Equal(t, 20*(maxiter+1), r.Neval)
			assert.Equal(t, "sphere", r.Name)
			assert.Equal(t, 20, r.PopSize)
		})
	}
}

func TestFeasibility(t *testing.T) {
	low := []float64{-5, 0, 2, 3}
	up := []float64{5, 1, 2, 100}
	obj := optim.Func(func(x []float64) float64 { return sphere(x) - x[3] })

	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			prob := optim.NewProblem("tilted", obj, low, up)
			it, err := NewIterator(prob, 15, append(v.opts, Seed(seed))...)
			require.NoError(t, err)

			check := func(iter int) {
				for _, b := range it.Pop {
					for j, x := range b.Pos {
						if x < low[j] || x > up[j] {
							t.Fatalf("iter %v: bat %v dim %v = %v outside [%v, %v]", iter, b.Id, j, x, low[j], up[j])
						}
					}
				}
				best := it.Best()
				for j := 0; j < best.Len(); j++ {
					if best.At(j) < low[j] || best.At(j) > up[j] {
						t.Fatalf("iter %v: best dim %v = %v out of bounds", iter, j, best.At(j))
					}
				}
			}

			check(0)
			for i := 1; i <= 300; i++ {
				_, n, err := it.Iterate()
				require.NoError(t, err)
				require.Equal(t, 15, n)
				require.Equal(t, i, it.Count())
				check(i)
			}
		})
	}
}

func TestLoudnessPulseMonotonic(t *testing.T) {
	it, err := NewIterator(sphereProblem(2, 50), 25, Seed(seed))
	require.NoError(t, err)

	loud := it.Pop.Loudness()
	pulse := make([]float64, len(it.Pop))
	for i, b := range it.Pop {
		pulse[i] = b.PulseRate
	}

	accepted := 0
	for iter := 0; iter < 300; iter++ {
		_, _, err := it.Iterate()
		require.NoError(t, err)
		for i, b := range it.Pop {
			if b.Loudness > loud[i] {
				t.Fatalf("bat %v loudness grew from %v to %v", i, loud[i], b.Loudness)
			}
			if b.PulseRate < pulse[i] {
				t.Fatalf("bat %v pulse rate shrank from %v to %v", i, pulse[i], b.PulseRate)
			}
			if b.Loudness < loud[i] {
				accepted++
			}
			assert.Greater(t, b.Loudness, 0.0)
			assert.LessOrEqual(t, b.PulseRate, 1.0)
			loud[i] = b.Loudness
			pulse[i] = b.PulseRate
		}
	}
	assert.Greater(t, accepted, 0, "no bat ever accepted a move")
}

func TestDeterminism(t *testing.T) {
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			r1, err := Run(sphereProblem(4, 20), 10, 150, append(v.opts, Seed(42))...)
			require.NoError(t, err)
			r2, err := Run(sphereProblem(4, 20), 10, 150, append(v.opts, Seed(42))...)
			require.NoError(t, err)

			assert.Equal(t, r1.Trace, r2.Trace)
			assert.Equal(t, r1.Best.Pos(), r2.Best.Pos())

			r3, err := Run(sphereProblem(4, 20), 10, 150, append(v.opts, Rand(rand.New(rand.NewPCG(42, 42))))...)
			require.NoError(t, err)
			assert.Equal(t, r1.Trace, r3.Trace)

			r4, err := Run(sphereProblem(4, 20), 10, 150, append(v.opts, Seed(43))...)
			require.NoError(t, err)
			assert.NotEqual(t, r1.Trace[0], r4.Trace[0])
		})
	}
}

func TestNoAlias(t *testing.T) {
	it, err := NewIterator(sphereProblem(3, 10), 10, Seed(seed))
	require.NoError(t, err)

	for iter := 0; iter < 50; iter++ {
		best, _, err := it.Iterate()
		require.NoError(t, err)

		want := best.Pos()
		for _, b := range it.Pop {
			for j := range b.Pos {
				b.Pos[j] = 1e9
			}
		}
		assert.Equal(t, want, it.Best().Pos(), "iteration %v", iter)

		got := it.Best().Pos()
		got[0] = -1e9
		assert.Equal(t, want, it.Best().Pos())

		// put the bats back somewhere feasible and consistent
		for _, b := range it.Pop {
			copy(b.Pos, want)
			b.Val = best.Val
		}
	}
}

func TestSphereConverges(t *testing.T) {
	fn, ok := bench.Lookup("SPHERE")
	require.True(t, ok)

	r, err := Run(fn.Problem(2), 30, 1000, Loudness(2), PulseRate(0.1), Seed(seed))
	require.NoError(t, err)
	require.Len(t, r.Trace, 1001)

	for i := 1; i < len(r.Trace); i++ {
		require.LessOrEqual(t, r.Trace[i], r.Trace[i-1])
	}
	assert.Less(t, r.Trace[1000], r.Trace[0])
	assert.InDelta(t, 0, r.Best.Val, 0.1)
	t.Logf("[pass:%v] optimum is %v, got %v at %v", fn.Name, fn.Optimum, r.Best.Val, r.Best.Pos())
}

func TestSingleBat(t *testing.T) {
	it, err := NewIterator(sphereProblem(2, 100), 1, Seed(seed))
	require.NoError(t, err)
	require.Len(t, it.Pop, 1)

	b := it.Pop[0]
	assert.Equal(t, b.Pos, it.Best().Pos())

	for iter := 0; iter < 500; iter++ {
		prev := b.Val
		best, _, err := it.Iterate()
		require.NoError(t, err)
		require.LessOrEqual(t, best.Val, b.Val)

		if b.Val < prev && b.Val == best.Val {
			assert.Equal(t, b.Pos, best.Pos(), "iteration %v", iter)
		}
	}
}

func TestInvalidConfig(t *testing.T) {
	good := sphereProblem(2, 1)
	tests := []struct {
		name    string
		prob    optim.Problem
		n       int
		maxiter int
		opts    []Option
	}{
		{"zero bats", good, 0, 10, nil},
		{"negative bats", good, -3, 10, nil},
		{"negative iterations", good, 10, -1, nil},
		{"zero iterations", good, 10, 0, nil},
		{"inverted bounds", optim.NewProblem("bad", optim.Func(sphere), []float64{5}, []float64{-5}), 10, 10, nil},
		{"infinite bounds", optim.NewProblem("open", optim.Func(sphere), []float64{0, math.Inf(-1)}, []float64{1, 0}), 10, 10, nil},
		{"no dimensions", optim.NewProblem("empty", optim.Func(sphere), nil, nil), 10, 10, nil},
		{"nil problem", nil, 10, 10, nil},
		{"zero loudness", good, 10, 10, []Option{Loudness(0)}},
		{"pulse above one", good, 10, 10, []Option{PulseRate(1.5)}},
		{"negative pulse", good, 10, 10, []Option{PulseRate(-0.1)}},
		{"nil perturber", good, 10, 10, []Option{Perturbation(nil)}},
		{"negative scale", good, 10, 10, []Option{Perturbation(GaussianJitter{Scale: -1})}},
		{"negative scale pointer", good, 10, 10, []Option{Perturbation(&GaussianJitter{Scale: -1})}},
		{"nan scale", good, 10, 10, []Option{Perturbation(GaussianJitter{Scale: math.NaN()})}},
		{"nil clamper", good, 10, 10, []Option{Clamping(nil)}},
		{"bad freq rule", good, 10, 10, []Option{Frequency(FreqRule(9))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var obj *optim.ObjectiveCounter
			prob := tt.prob
			if prob != nil {
				obj = optim.NewObjectiveCounter(prob)
				low, up := prob.Bounds()
				prob = optim.NewProblem(prob.Name(), obj, low, up)
			}

			r, err := Run(prob, tt.n, tt.maxiter, tt.opts...)
			assert.ErrorIs(t, err, optim.ErrInvalidConfig)
			assert.Nil(t, r)
			if obj != nil {
				assert.Zero(t, obj.Count, "objective evaluated before configuration was checked")
			}
		})
	}
}

func nanAfter(n int) optim.Problem {
	count := 0
	obj := optim.Func(func(x []float64) float64 {
		count++
		if count > n {
			return math.NaN()
		}
		return sphere(x)
	})
	return optim.NewProblem("nan", obj, []float64{-1, -1}, []float64{1, 1})
}

func TestEvaluationError(t *testing.T) {
	// 10 initial evaluations, 3 full iterations, then NaN in the 4th
	r, err := Run(nanAfter(10+3*10+4), 10, 100, Seed(seed))
	require.ErrorIs(t, err, optim.ErrEvaluation)
	require.NotNil(t, r)
	assert.Len(t, r.Trace, 4)
	assert.False(t, math.IsNaN(r.Best.Val))
	assert.LessOrEqual(t, r.Best.Val, r.Trace[3])
	assert.Equal(t, 10+3*10+5, r.Neval)

	r, err = Run(nanAfter(3), 10, 100, Seed(seed))
	assert.ErrorIs(t, err, optim.ErrEvaluation)
	assert.Nil(t, r)
}

func TestFreqRule(t *testing.T) {
	rng := rand.New(rand.NewPCG(seed, seed))
	for i := 0; i < 1000; i++ {
		f := FreqNegated.Draw(rng)
		if f < -FreqMax || f > FreqMin {
			t.Fatalf("negated frequency %v outside [%v, %v]", f, -FreqMax, FreqMin)
		}
		f = FreqConventional.Draw(rng)
		if f < FreqMin || f > FreqMax {
			t.Fatalf("conventional frequency %v outside [%v, %v]", f, FreqMin, FreqMax)
		}
	}
	assert.Equal(t, "negated", FreqNegated.String())
	assert.Equal(t, "conventional", FreqConventional.String())
}

func TestPopulationBest(t *testing.T) {
	pop := Population{
		{Id: 0, Val: 3},
		{Id: 1, Val: 1},
		{Id: 2, Val: 1},
		{Id: 3, Val: 2},
	}
	assert.Equal(t, 1, pop.Best().Id)
	assert.Nil(t, Population{}.Best())
}
