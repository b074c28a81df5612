package boxplot

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/template"
	"time"

	"unik-bench/internal/config"
	plotTemplate "unik-bench/internal/plot/boxplot/templates/plot"
	"unik-bench/internal/plot/canvas"
	"unik-bench/internal/plot/mappings"
	"unik-bench/internal/profile"
	"unik-bench/internal/stats"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

type BoxPlotGenerator struct {
	toolkit *config.Toolkit
	logger  *logrus.Logger
}

func NewBoxPlotGenerator(toolkit *config.Toolkit, logger *logrus.Logger) *BoxPlotGenerator {
	return &BoxPlotGenerator{
		toolkit: toolkit,
		logger:  logger,
	}
}

type PlotOptions struct {
	Title      string
	YLabel     string
	Log        bool
	Confidence int
	Datasets   []*profile.BoxData
	Output     string
}

// Box is the five-number summary of one dataset plus its mean.
type Box struct {
	Dataset  *profile.BoxData
	Position float64
	Summary  stats.Summary
}

const boxWidth = 18

// Positions places boxes in pairs (1, 1.7, 3, 3.7, 5, 5.7) with an extra
// gap after every third pair (8, 8.7, 10, 10.7, ...).
func Positions(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		pair := i / 2
		out[i] = float64(1 + 2*pair + pair/3)
		if i%2 == 1 {
			out[i] += 0.7
		}
	}
	return out
}

// Name derives the output base name from a title: lower case, spaces
// removed and suffix appended for logarithmic variants.
func Name(title string, log bool, suffix string) string {
	name := strings.ToLower(strings.ReplaceAll(title, " ", ""))
	if log {
		name += suffix
	}
	return name
}

// Boxes summarises every dataset at its position.
func Boxes(datasets []*profile.BoxData) ([]Box, error) {
	positions := Positions(len(datasets))
	boxes := make([]Box, 0, len(datasets))
	for i, d := range datasets {
		s, err := stats.Summarize(d.Data)
		if err != nil {
			return nil, fmt.Errorf("dataset %d (%s): %w", i+1, d.Label, err)
		}
		boxes = append(boxes, Box{Dataset: d, Position: positions[i], Summary: s})
	}
	return boxes, nil
}

// Generate draws the box plot as an image. Whiskers span the full range of
// the data, no outliers are drawn and the mean is marked.
func (g *BoxPlotGenerator) Generate(opts PlotOptions) error {
	boxes, err := g.prepare(opts)
	if err != nil {
		return err
	}

	g.logger.WithFields(logrus.Fields{
		"title":  opts.Title,
		"boxes":  len(boxes),
		"log":    opts.Log,
		"output": opts.Output,
	}).Info("Generating box plot")

	p := plot.New()
	p.Y.Label.Text = opts.YLabel
	if opts.Log {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	p.Legend.Top = true

	ticks := make([]plot.Tick, 0, len(boxes))
	means := make(plotter.XYs, 0, len(boxes))
	environments := make([]string, 0)
	seenEnv := make(map[string]bool)
	stressed, unstressed := false, false

	for _, b := range boxes {
		d := b.Dataset
		bp, err := plotter.NewBoxPlot(vg.Points(boxWidth), b.Position, plotter.Values(d.Data))
		if err != nil {
			return fmt.Errorf("failed to build box for %s: %w", d.Label, err)
		}
		bp.Median = b.Summary.Median
		bp.Quartile1 = b.Summary.Q1
		bp.Quartile3 = b.Summary.Q3
		bp.Min = b.Summary.Min
		bp.Max = b.Summary.Max
		bp.AdjLow = b.Summary.Min
		bp.AdjHigh = b.Summary.Max
		bp.Outside = nil

		fill, line := mappings.BoxStyle(g.toolkit, d.Environment, d.Stress, d.Color)
		bp.FillColor = fill
		bp.BoxStyle = line
		// solid whiskers
		bp.WhiskerStyle.Dashes = nil
		bp.MedianStyle = mappings.MedianLine()
		p.Add(bp)

		ticks = append(ticks, plot.Tick{Value: b.Position, Label: d.Label})
		means = append(means, plotter.XY{X: b.Position, Y: b.Summary.Mean})

		if !seenEnv[d.Environment] {
			seenEnv[d.Environment] = true
			environments = append(environments, d.Environment)
		}
		if d.Stress {
			stressed = true
		} else {
			unstressed = true
		}
	}

	meanMarks, err := plotter.NewScatter(means)
	if err != nil {
		return fmt.Errorf("failed to build mean markers: %w", err)
	}
	meanMarks.GlyphStyle = mappings.MeanGlyph()
	p.Add(meanMarks)

	p.Legend.Add("Mean", mappings.MarkThumb(mappings.MeanGlyph()))
	p.Legend.Add("Median", mappings.LineThumb(mappings.MedianLine()))
	if unstressed {
		fill, line := mappings.BoxStyle(g.toolkit, "", false, mappings.LegendFill)
		p.Legend.Add("No Stress", mappings.BoxThumb{Fill: fill, Line: line})
	}
	if stressed {
		fill, line := mappings.BoxStyle(g.toolkit, "", true, mappings.OutlineColor)
		p.Legend.Add("With Stress", mappings.BoxThumb{Fill: fill, Line: line})
	}
	for _, env := range environments {
		p.Legend.Add(env, mappings.BoxThumb{
			Fill: mappings.LegendFill,
			Line: mappings.EnvironmentLine(g.toolkit, env, mappings.OutlineColor),
		})
	}

	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Min = boxes[0].Position - 0.7
	p.X.Max = boxes[len(boxes)-1].Position + 0.7

	if err := canvas.Save(p, 6*vg.Inch, 4*vg.Inch, opts.Output); err != nil {
		return fmt.Errorf("failed to save box plot: %w", err)
	}

	g.logger.WithField("output", opts.Output).Info("Box plot generated successfully")
	return nil
}

// GenerateTikz renders the same box plot as a pgfplots picture.
func (g *BoxPlotGenerator) GenerateTikz(opts PlotOptions, metricName string) (string, error) {
	boxes, err := g.prepare(opts)
	if err != nil {
		return "", err
	}

	data := &plotTemplate.PlotData{
		GeneratedDate: time.Now().Format("2006-01-02 15:04:05"),
		Title:         opts.Title,
		MetricName:    metricName,
		Confidence:    opts.Confidence,
		YLabel:        opts.YLabel,
		Log:           opts.Log,
	}

	var ticks, labels []string
	for _, b := range boxes {
		d := b.Dataset
		ticks = append(ticks, formatFloat(b.Position))
		labels = append(labels, escapeTex(d.Label))

		box := plotTemplate.Box{
			Label:       escapeTex(d.Label),
			Environment: d.Environment,
			StressName:  profile.StressName(d.Stress),
			Stress:      d.Stress,
			Position:    formatFloat(b.Position),
			Min:         formatFloat(b.Summary.Min),
			Q1:          formatFloat(b.Summary.Q1),
			Median:      formatFloat(b.Summary.Median),
			Q3:          formatFloat(b.Summary.Q3),
			Max:         formatFloat(b.Summary.Max),
			Mean:        formatFloat(b.Summary.Mean),
			FillColor:   mappings.TikzColor(d.Color),
			Pattern:     mappings.TikzPattern(g.toolkit, d.Environment),
		}
		if d.Stress {
			box.StressPattern = mappings.StressPattern
		}
		data.Boxes = append(data.Boxes, box)
	}
	data.XTicks = strings.Join(ticks, ",")
	data.XTickLabels = strings.Join(labels, ",")

	tmpl, err := template.New("boxplot").Parse(plotTemplate.PlotTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

func (g *BoxPlotGenerator) prepare(opts PlotOptions) ([]Box, error) {
	if len(opts.Datasets) == 0 {
		return nil, fmt.Errorf("no datasets to plot")
	}
	boxes, err := Boxes(opts.Datasets)
	if err != nil {
		return nil, err
	}
	if opts.Log {
		for _, b := range boxes {
			if b.Summary.Min <= 0 {
				return nil, fmt.Errorf("dataset %s has non-positive values, cannot use a log scale", b.Dataset.Label)
			}
		}
	}
	return boxes, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var texEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`,`, `{,}`,
)

func escapeTex(s string) string {
	return texEscaper.Replace(s)
}
