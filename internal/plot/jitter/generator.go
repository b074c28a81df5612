package jitter

import (
	"fmt"
	"math"

	"unik-bench/internal/plot/canvas"
	"unik-bench/internal/plot/mappings"
	"unik-bench/internal/profile"
	"unik-bench/internal/stats"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

type JitterPlotGenerator struct {
	logger *logrus.Logger
}

func NewJitterPlotGenerator(logger *logrus.Logger) *JitterPlotGenerator {
	return &JitterPlotGenerator{logger: logger}
}

type PlotOptions struct {
	Title    string
	YLabel   string
	Datasets []*profile.BoxData
	Output   string
}

const barWidth = 0.6

// Values returns the jitter of every dataset, i.e. its population standard
// deviation.
func Values(datasets []*profile.BoxData) []float64 {
	out := make([]float64, len(datasets))
	for i, d := range datasets {
		out[i] = stats.StdDev(d.Data)
	}
	return out
}

// TickLabels names the bars C.1 .. C.n.
func TickLabels(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("C.%d", i+1)
	}
	return out
}

// Generate draws one bar per dataset on a logarithmic axis together with
// the reference thresholds and writes the chart to opts.Output.
func (g *JitterPlotGenerator) Generate(opts PlotOptions) error {
	if len(opts.Datasets) == 0 {
		return fmt.Errorf("no datasets to plot")
	}

	values := Values(opts.Datasets)
	floor := logFloor(values)

	g.logger.WithFields(logrus.Fields{
		"title":    opts.Title,
		"datasets": len(values),
		"output":   opts.Output,
	}).Info("Generating jitter plot")

	p := plot.New()
	p.Y.Label.Text = opts.YLabel
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Min = floor
	p.Legend.Top = true

	for i, v := range values {
		if v <= 0 {
			g.logger.WithField("dataset", i+1).Warn("Dataset has no jitter, bar omitted on log scale")
			continue
		}
		bar, err := plotter.NewPolygon(plotter.XYs{
			{X: float64(i) - barWidth/2, Y: floor},
			{X: float64(i) - barWidth/2, Y: v},
			{X: float64(i) + barWidth/2, Y: v},
			{X: float64(i) + barWidth/2, Y: floor},
		})
		if err != nil {
			return fmt.Errorf("failed to build bar %d: %w", i+1, err)
		}
		bar.Color = mappings.JitterBarColor
		bar.LineStyle.Width = 0
		p.Add(bar)
	}

	xMin, xMax := -0.5, float64(len(values))-0.5
	for _, ref := range mappings.JitterReferenceLines {
		line, err := plotter.NewLine(plotter.XYs{{X: xMin, Y: ref.Value}, {X: xMax, Y: ref.Value}})
		if err != nil {
			return fmt.Errorf("failed to build reference line %s: %w", ref.Label, err)
		}
		line.LineStyle = draw.LineStyle{
			Color:  ref.Color,
			Width:  vg.Points(1),
			Dashes: []vg.Length{vg.Points(4), vg.Points(2)},
		}
		p.Add(line)
		p.Legend.Add(ref.Label, line)
	}

	ticks := make([]plot.Tick, len(values))
	for i, label := range TickLabels(len(values)) {
		ticks[i] = plot.Tick{Value: float64(i), Label: label}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Min = xMin
	p.X.Max = xMax

	if err := canvas.Save(p, 10*vg.Inch, 6*vg.Inch, opts.Output); err != nil {
		return fmt.Errorf("failed to save jitter plot: %w", err)
	}

	g.logger.WithField("output", opts.Output).Info("Jitter plot generated successfully")
	return nil
}

// logFloor is the lower end of the log axis: one decade below the smallest
// positive value, never above the lowest reference line.
func logFloor(values []float64) float64 {
	lowest := mappings.JitterReferenceLines[0].Value
	for _, v := range values {
		if v > 0 && v < lowest {
			lowest = v
		}
	}
	return math.Pow(10, math.Floor(math.Log10(lowest))-1)
}
