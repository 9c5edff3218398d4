package bat

// Clamper forces a candidate position back into the box [low, up] in place.
type Clamper interface {
	Clamp(x, low, up []float64)
}

type ClampFunc func(x, low, up []float64)

func (f ClampFunc) Clamp(x, low, up []float64) { f(x, low, up) }

var (
	// Clamp moves each out of bounds coordinate to the bound it violated.
	Clamp Clamper = ClampFunc(clamp)
	// ResetLow moves coordinates below low to low and coordinates above up
	// to low as well.  It only exists to reproduce runs of older bat
	// implementations that clamp this way.
	ResetLow Clamper = ClampFunc(resetLow)
)

func clamp(x, low, up []float64) {
	for i := range x {
		if x[i] < low[i] {
			x[i] = low[i]
		} else if x[i] > up[i] {
			x[i] = up[i]
		}
	}
}

func resetLow(x, low, up []float64) {
	for i := range x {
		if x[i] < low[i] || x[i] > up[i] {
			x[i] = low[i]
		}
	}
}
