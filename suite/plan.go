// Package suite runs batches of independent bat optimizer runs, one per
// (benchmark function, population size) pair, described by a Plan.
package suite

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Baaaaam/optim"
	"github.com/Baaaaam/optim/bat"
	"github.com/Baaaaam/optim/bench"
)

const (
	PerturbLoudness = "loudness"
	PerturbGaussian = "gaussian"

	ClampBounds   = "clamp"
	ClampResetLow = "resetlow"
)

var validate = validator.New()

// Plan describes a batch of runs.  Every function in Functions is run once
// with each population size in Populations.
type Plan struct {
	// Functions names the benchmark functions to run.  Empty means all of
	// them, in catalog order.
	Functions     []string `yaml:"functions"`
	Dimension     int      `yaml:"dimension" validate:"gte=1"`
	Populations   []int    `yaml:"populations" validate:"min=1,dive,gte=1"`
	Iterations    int      `yaml:"iterations" validate:"gte=1"`
	Loudness      float64  `yaml:"loudness" validate:"gt=0"`
	PulseRate     float64  `yaml:"pulse_rate" validate:"gte=0,lte=1"`
	Perturbation  string   `yaml:"perturbation" validate:"oneof=loudness gaussian"`
	GaussianScale float64  `yaml:"gaussian_scale" validate:"gte=0"`
	Frequency     string   `yaml:"frequency" validate:"oneof=negated conventional"`
	Clamp         string   `yaml:"clamp" validate:"oneof=clamp resetlow"`
	// Seed is the seed of the first case; case i is seeded with Seed+i.
	Seed uint64 `yaml:"seed"`
	// Parallel caps the number of concurrently running cases.  Zero means
	// no limit.
	Parallel int `yaml:"parallel" validate:"gte=0"`
	// Tolerance is the relative distance to a function's optimum under
	// which a run counts as solved.
	Tolerance float64 `yaml:"tolerance" validate:"gte=0"`
	// LogEvals logs every objective evaluation at debug level.
	LogEvals bool `yaml:"log_evals"`
}

// DefaultPlan mirrors the classic experiment: every function in two
// dimensions with 30, 40 and 50 bats for 1000 iterations.
func DefaultPlan() Plan {
	return Plan{
		Dimension:     2,
		Populations:   []int{30, 40, 50},
		Iterations:    1000,
		Loudness:      bat.DefaultLoudness,
		PulseRate:     bat.DefaultPulseRate,
		Perturbation:  PerturbLoudness,
		GaussianScale: bat.DefaultGaussianScale,
		Frequency:     bat.FreqNegated.String(),
		Clamp:         ClampBounds,
		Seed:          bat.DefaultSeed,
		Parallel:      runtime.GOMAXPROCS(0),
		Tolerance:     0.01,
	}
}

// ParsePlan decodes a YAML plan on top of DefaultPlan and validates it.
func ParsePlan(data []byte) (Plan, error) {
	p := DefaultPlan()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Plan{}, fmt.Errorf("%w: decoding plan: %v", optim.ErrInvalidConfig, err)
	}
	if err := p.Validate(); err != nil {
		return Plan{}, err
	}
	return p, nil
}

func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("reading plan: %w", err)
	}
	p, err := ParsePlan(data)
	if err != nil {
		return Plan{}, fmt.Errorf("plan %v: %w", path, err)
	}
	return p, nil
}

func (p Plan) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", optim.ErrInvalidConfig, err)
	}
	for _, name := range p.Functions {
		if _, ok := bench.Lookup(name); !ok {
			return fmt.Errorf("%w: unknown function %q (known: %v)", optim.ErrInvalidConfig, name, strings.Join(bench.Names(), ", "))
		}
	}
	return nil
}

// Case is a single run of a plan.
type Case struct {
	Index   int
	Func    bench.Func
	PopSize int
}

// Cases expands the plan into its runs, function-major.  Names are assumed
// to have been validated.
func (p Plan) Cases() []Case {
	funcs := bench.AllFuncs
	if len(p.Functions) > 0 {
		funcs = make([]bench.Func, 0, len(p.Functions))
		for _, name := range p.Functions {
			fn, _ := bench.Lookup(name)
			funcs = append(funcs, fn)
		}
	}

	cases := make([]Case, 0, len(funcs)*len(p.Populations))
	for _, fn := range funcs {
		for _, n := range p.Populations {
			cases = append(cases, Case{Index: len(cases), Func: fn, PopSize: n})
		}
	}
	return cases
}

// Options returns the optimizer options for c.
func (p Plan) Options(c Case) []bat.Option {
	opts := []bat.Option{
		bat.Loudness(p.Loudness),
		bat.PulseRate(p.PulseRate),
		bat.Seed(p.Seed + uint64(c.Index)),
	}

	if p.Perturbation == PerturbGaussian {
		opts = append(opts, bat.Perturbation(bat.GaussianJitter{Scale: p.GaussianScale}))
	} else {
		opts = append(opts, bat.Perturbation(bat.LoudnessJitter{}))
	}

	if p.Frequency == bat.FreqConventional.String() {
		opts = append(opts, bat.Frequency(bat.FreqConventional))
	} else {
		opts = append(opts, bat.Frequency(bat.FreqNegated))
	}

	if p.Clamp == ClampResetLow {
		opts = append(opts, bat.Clamping(bat.ResetLow))
	} else {
		opts = append(opts, bat.Clamping(bat.Clamp))
	}
	return opts
}
