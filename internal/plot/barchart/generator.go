package barchart

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"unik-bench/internal/config"
	"unik-bench/internal/plot/canvas"
	"unik-bench/internal/plot/mappings"
	"unik-bench/internal/profile"
	"unik-bench/internal/stats"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

type BarChartGenerator struct {
	toolkit *config.Toolkit
	logger  *logrus.Logger
}

func NewBarChartGenerator(toolkit *config.Toolkit, logger *logrus.Logger) *BarChartGenerator {
	return &BarChartGenerator{
		toolkit: toolkit,
		logger:  logger,
	}
}

type PlotOptions struct {
	Title    string
	YLabel   string
	Log      bool
	Datasets []*profile.BoxData
	Output   string
}

// Series is one bar per group, e.g. "Nanos (ESXi)".
type Series struct {
	Label       string
	Environment string
	Color       color.Color
}

func (s Series) Name() string {
	return fmt.Sprintf("%s (%s)", s.Label, s.Environment)
}

// Chart is the grouped layout: Values[group][series] holds the mean of the
// matching datasets, NaN where no dataset exists.
type Chart struct {
	Groups []string
	Series []Series
	Values [][]float64
}

// GroupName labels the condition a dataset was measured under.
func GroupName(d *profile.BoxData) string {
	stress := "No Stress"
	if d.Stress {
		stress = "Stress"
	}
	if d.Interval > 0 {
		return strconv.Itoa(d.Interval) + " " + stress
	}
	return stress
}

// Layout groups datasets by condition and series by (label, environment),
// both in order of first appearance. Datasets sharing a cell are pooled.
func Layout(datasets []*profile.BoxData) Chart {
	var chart Chart
	groupIdx := make(map[string]int)
	seriesIdx := make(map[string]int)
	pooled := make(map[[2]int][]float64)

	for _, d := range datasets {
		g, ok := groupIdx[GroupName(d)]
		if !ok {
			g = len(chart.Groups)
			groupIdx[GroupName(d)] = g
			chart.Groups = append(chart.Groups, GroupName(d))
		}
		s := Series{Label: d.Label, Environment: d.Environment, Color: d.Color}
		si, ok := seriesIdx[s.Name()]
		if !ok {
			si = len(chart.Series)
			seriesIdx[s.Name()] = si
			chart.Series = append(chart.Series, s)
		}
		key := [2]int{g, si}
		pooled[key] = append(pooled[key], d.Data...)
	}

	chart.Values = make([][]float64, len(chart.Groups))
	for g := range chart.Values {
		chart.Values[g] = make([]float64, len(chart.Series))
		for s := range chart.Values[g] {
			data, ok := pooled[[2]int{g, s}]
			if !ok || len(data) == 0 {
				chart.Values[g][s] = math.NaN()
				continue
			}
			chart.Values[g][s] = stats.Mean(data)
		}
	}
	return chart
}

const groupWidth = 0.8

// Generate draws grouped mean bars. Bars are polygons anchored at a
// positive floor so the chart also works on a logarithmic axis.
func (g *BarChartGenerator) Generate(opts PlotOptions) error {
	if len(opts.Datasets) == 0 {
		return fmt.Errorf("no datasets to plot")
	}

	chart := Layout(opts.Datasets)
	floor := 0.0
	if opts.Log {
		var err error
		if floor, err = logFloor(chart); err != nil {
			return err
		}
	}

	g.logger.WithFields(logrus.Fields{
		"title":  opts.Title,
		"groups": len(chart.Groups),
		"series": len(chart.Series),
		"log":    opts.Log,
		"output": opts.Output,
	}).Info("Generating bar chart")

	p := plot.New()
	p.Y.Label.Text = opts.YLabel
	if opts.Log {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
		p.Y.Min = floor
	}
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	width := groupWidth / float64(len(chart.Series))
	for si, s := range chart.Series {
		fill, line := mappings.BoxStyle(g.toolkit, s.Environment, false, s.Color)
		for gi := range chart.Groups {
			v := chart.Values[gi][si]
			if math.IsNaN(v) || (opts.Log && v <= 0) {
				continue
			}
			left := float64(gi) - groupWidth/2 + width*float64(si)
			bar, err := plotter.NewPolygon(plotter.XYs{
				{X: left, Y: floor},
				{X: left, Y: v},
				{X: left + width, Y: v},
				{X: left + width, Y: floor},
			})
			if err != nil {
				return fmt.Errorf("failed to build bar %s: %w", s.Name(), err)
			}
			bar.Color = fill
			bar.LineStyle = line
			p.Add(bar)
		}
		p.Legend.Add(s.Name(), mappings.BoxThumb{Fill: fill, Line: line})
	}

	ticks := make([]plot.Tick, len(chart.Groups))
	for i, name := range chart.Groups {
		ticks[i] = plot.Tick{Value: float64(i), Label: name}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.X.Min = -0.5
	p.X.Max = float64(len(chart.Groups)) - 0.5

	if err := canvas.Save(p, 14*vg.Inch, 8*vg.Inch, opts.Output); err != nil {
		return fmt.Errorf("failed to save bar chart: %w", err)
	}

	g.logger.WithField("output", opts.Output).Info("Bar chart generated successfully")
	return nil
}

func logFloor(chart Chart) (float64, error) {
	lowest := math.Inf(1)
	for _, row := range chart.Values {
		for _, v := range row {
			if !math.IsNaN(v) && v > 0 && v < lowest {
				lowest = v
			}
		}
	}
	if math.IsInf(lowest, 1) {
		return 0, fmt.Errorf("no positive means, cannot use a log scale")
	}
	return math.Pow(10, math.Floor(math.Log10(lowest))), nil
}
