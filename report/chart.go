package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/Baaaaam/optim/bat"
)

const (
	ChartWidth  = 6 * vg.Inch
	ChartHeight = 4 * vg.Inch
)

// Chart draws the convergence trace of each result as one line labeled by
// its population size and saves the chart to path.  The image format is
// picked from the file extension (png, svg, pdf, ...).
func Chart(path, title string, results ...*bat.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("chart %v: no results", title)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Iterations"
	p.Y.Label.Text = "Fitness"
	p.Legend.Top = true

	for i, r := range results {
		pts := make(plotter.XYs, len(r.Trace))
		for j, v := range r.Trace {
			pts[j].X = float64(j)
			pts[j].Y = v
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("chart %v: %w", title, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("%v Bats", r.PopSize), line)
	}

	if err := p.Save(ChartWidth, ChartHeight, path); err != nil {
		return fmt.Errorf("chart %v: %w", title, err)
	}
	return nil
}
