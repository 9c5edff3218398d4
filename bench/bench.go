// Package bench provides the benchmark objective functions the bat optimizer
// is exercised against.  Most come from
// http://en.wikipedia.org/wiki/Test_functions_for_optimization and
// https://www.sfu.ca/~ssurjano/optimization.html.  Every function accepts any
// number of dimensions and shares the same bounds in each of them.
package bench

import (
	"math"
	"sort"
	"strings"

	"github.com/Baaaaam/optim"
)

var (
	sin  = math.Sin
	cos  = math.Cos
	abs  = math.Abs
	exp  = math.Exp
	sqrt = math.Sqrt
	pi   = math.Pi
)

type Func struct {
	Name string
	Eval func(x []float64) float64
	// Low and Up bound every dimension.
	Low, Up float64
	// Optimum is the global minimum value and Argmin the coordinate at
	// which it is reached in every dimension.
	Optimum float64
	Argmin  float64
}

// Problem returns fn as an ndim-dimensional problem.
func (fn Func) Problem(ndim int) optim.Problem {
	low := make([]float64, ndim)
	up := make([]float64, ndim)
	for i := range low {
		low[i] = fn.Low
		up[i] = fn.Up
	}
	return optim.NewProblem(fn.Name, optim.Func(fn.Eval), low, up)
}

// Solved reports whether val is within tol (relative) of fn's optimum.  The
// threshold never drops below 0.001 so that functions with a zero optimum
// can be solved.
func (fn Func) Solved(val, tol float64) bool {
	thresh := tol * abs(fn.Optimum)
	if 0.001 > thresh {
		thresh = 0.001
	}
	return abs(val-fn.Optimum) < thresh
}

var AllFuncs = []Func{
	{Name: "SPHERE", Eval: Sphere, Low: -100, Up: 100},
	{Name: "ELLIPTIC", Eval: Elliptic, Low: -100, Up: 100},
	{Name: "SUM_SQUARES", Eval: SumSquares, Low: -10, Up: 10},
	{Name: "SUM_POWER", Eval: SumPower, Low: -10, Up: 10},
	{Name: "SCHWEFEL_2_22", Eval: Schwefel222, Low: -10, Up: 10},
	{Name: "SCHWEFEL_2_21", Eval: Schwefel221, Low: -100, Up: 100},
	{Name: "STEP", Eval: Step, Low: -100, Up: 100},
	{Name: "QUARTIC", Eval: Quartic, Low: -1.28, Up: 1.28},
	{Name: "QUARTIC_WN", Eval: QuarticNoise, Low: -1.28, Up: 1.28},
	{Name: "ROSENBROCK", Eval: Rosenbrock, Low: -10, Up: 10, Argmin: 1},
	{Name: "RASTRIGIN", Eval: Rastrigin, Low: -5.12, Up: 5.12},
	{Name: "NON_CONTINUOUS_RASTRIGIN", Eval: NonContRastrigin, Low: -5.12, Up: 5.12},
	{Name: "GRIEWANK", Eval: Griewank, Low: -600, Up: 600},
	{Name: "SCHWEFEL_2_26", Eval: Schwefel226, Low: -500, Up: 500, Argmin: 420.9687},
	{Name: "ACKLEY", Eval: Ackley, Low: -32, Up: 32},
	{Name: "PENALIZED_1", Eval: Penalized1, Low: -50, Up: 50, Argmin: -1},
	{Name: "PENALIZED_2", Eval: Penalized2, Low: -50, Up: 50, Argmin: 1},
	{Name: "ALPINE", Eval: Alpine, Low: -10, Up: 10},
	{Name: "LEVY", Eval: Levy, Low: -10, Up: 10, Argmin: 1},
	{Name: "WEIERSTRASS", Eval: Weierstrass, Low: -0.5, Up: 0.5},
	{Name: "SCHAFFER", Eval: Schaffer, Low: -100, Up: 100},
}

var byName = map[string]Func{}

func init() {
	for _, fn := range AllFuncs {
		byName[fn.Name] = fn
	}
}

// Lookup finds a function by name, ignoring case.
func Lookup(name string) (Func, bool) {
	fn, ok := byName[strings.ToUpper(name)]
	return fn, ok
}

// Names returns the names of all functions in sorted order.
func Names() []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Sphere(x []float64) float64 {
	tot := 0.0
	for _, v := range x {
		tot += v * v
	}
	return tot
}

func Elliptic(x []float64) float64 {
	if len(x) == 1 {
		return x[0] * x[0]
	}
	tot := 0.0
	for i, v := range x {
		tot += math.Pow(1e6, float64(i)/float64(len(x)-1)) * v * v
	}
	return tot
}

func SumSquares(x []float64) float64 {
	tot := 0.0
	for i, v := range x {
		tot += float64(i+1) * v * v
	}
	return tot
}

func SumPower(x []float64) float64 {
	tot := 0.0
	for i, v := range x {
		tot += math.Pow(abs(v), float64(i+2))
	}
	return tot
}

func Schwefel222(x []float64) float64 {
	tot := 0.0
	prod := 1.0
	for _, v := range x {
		tot += abs(v)
		prod *= abs(v)
	}
	return tot + prod
}

func Schwefel221(x []float64) float64 {
	m := 0.0
	for _, v := range x {
		m = math.Max(m, abs(v))
	}
	return m
}

func Step(x []float64) float64 {
	tot := 0.0
	for _, v := range x {
		s := math.Floor(v + 0.5)
		tot += s * s
	}
	return tot
}

func Quartic(x []float64) float64 {
	tot := 0.0
	for i, v := range x {
		tot += float64(i+1) * math.Pow(v, 4)
	}
	return tot
}

// QuarticNoise is Quartic plus a noise term in [0, 1).  The noise is derived
// from the position bits rather than a random source so that evaluations
// stay repeatable.
func QuarticNoise(x []float64) float64 {
	return Quartic(x) + noise(x)
}

func noise(x []float64) float64 {
	h := uint64(0x9e3779b97f4a7c15)
	for _, v := range x {
		h ^= math.Float64bits(v)
		// splitmix64 finalizer
		h += 0x9e3779b97f4a7c15
		h = (h ^ (h >> 30)) * 0xbf58476d1ce4e5b9
		h = (h ^ (h >> 27)) * 0x94d049bb133111eb
		h ^= h >> 31
	}
	return float64(h>>11) / (1 << 53)
}

func Rosenbrock(x []float64) float64 {
	tot := 0.0
	for i := 0; i < len(x)-1; i++ {
		a := x[i+1] - x[i]*x[i]
		b := x[i] - 1
		tot += 100*a*a + b*b
	}
	return tot
}

func rastrigin(v float64) float64 {
	return v*v - 10*cos(2*pi*v) + 10
}

func Rastrigin(x []float64) float64 {
	tot := 0.0
	for _, v := range x {
		tot += rastrigin(v)
	}
	return tot
}

func NonContRastrigin(x []float64) float64 {
	tot := 0.0
	for _, v := range x {
		if abs(v) >= 0.5 {
			v = math.Round(2*v) / 2
		}
		tot += rastrigin(v)
	}
	return tot
}

func Griewank(x []float64) float64 {
	tot := 0.0
	prod := 1.0
	for i, v := range x {
		tot += v * v
		prod *= cos(v / sqrt(float64(i+1)))
	}
	return 1 + tot/4000 - prod
}

func Schwefel226(x []float64) float64 {
	tot := 0.0
	for _, v := range x {
		tot += v * sin(sqrt(abs(v)))
	}
	return 418.9829*float64(len(x)) - tot
}

func Ackley(x []float64) float64 {
	n := float64(len(x))
	sq := 0.0
	cs := 0.0
	for _, v := range x {
		sq += v * v
		cs += cos(2 * pi * v)
	}
	return -20*exp(-0.2*sqrt(sq/n)) - exp(cs/n) + 20 + math.E
}

// penalty is the boundary penalty u(x, a, k, m) shared by the penalized
// functions.
func penalty(v, a, k, m float64) float64 {
	switch {
	case v > a:
		return k * math.Pow(v-a, m)
	case v < -a:
		return k * math.Pow(-v-a, m)
	}
	return 0
}

func Penalized1(x []float64) float64 {
	n := len(x)
	y := make([]float64, n)
	for i, v := range x {
		y[i] = 1 + (v+1)/4
	}

	s := 10 * math.Pow(sin(pi*y[0]), 2)
	for i := 0; i < n-1; i++ {
		s += (y[i] - 1) * (y[i] - 1) * (1 + 10*math.Pow(sin(pi*y[i+1]), 2))
	}
	s += (y[n-1] - 1) * (y[n-1] - 1)

	u := 0.0
	for _, v := range x {
		u += penalty(v, 10, 100, 4)
	}
	return pi/float64(n)*s + u
}

func Penalized2(x []float64) float64 {
	n := len(x)
	s := math.Pow(sin(3*pi*x[0]), 2)
	for i := 0; i < n-1; i++ {
		s += (x[i] - 1) * (x[i] - 1) * (1 + math.Pow(sin(3*pi*x[i+1]), 2))
	}
	last := x[n-1]
	s += (last - 1) * (last - 1) * (1 + math.Pow(sin(2*pi*last), 2))

	u := 0.0
	for _, v := range x {
		u += penalty(v, 5, 100, 4)
	}
	return 0.1*s + u
}

func Alpine(x []float64) float64 {
	tot := 0.0
	for _, v := range x {
		tot += abs(v*sin(v) + 0.1*v)
	}
	return tot
}

func Levy(x []float64) float64 {
	n := len(x)
	w := make([]float64, n)
	for i, v := range x {
		w[i] = 1 + (v-1)/4
	}

	tot := math.Pow(sin(pi*w[0]), 2)
	for i := 0; i < n-1; i++ {
		tot += (w[i] - 1) * (w[i] - 1) * (1 + 10*math.Pow(sin(pi*w[i]+1), 2))
	}
	last := w[n-1]
	tot += (last - 1) * (last - 1) * (1 + math.Pow(sin(2*pi*last), 2))
	return tot
}

func Weierstrass(x []float64) float64 {
	const (
		a    = 0.5
		b    = 3.0
		kmax = 20
	)

	tot := 0.0
	for _, v := range x {
		for k := 0; k <= kmax; k++ {
			tot += math.Pow(a, float64(k)) * cos(2*pi*math.Pow(b, float64(k))*(v+0.5))
		}
	}
	offset := 0.0
	for k := 0; k <= kmax; k++ {
		offset += math.Pow(a, float64(k)) * cos(pi*math.Pow(b, float64(k)))
	}
	return tot - float64(len(x))*offset
}

func Schaffer(x []float64) float64 {
	sq := 0.0
	for _, v := range x {
		sq += v * v
	}
	s := sin(sqrt(sq))
	d := 1 + 0.001*sq
	return 0.5 + (s*s-0.5)/(d*d)
}
