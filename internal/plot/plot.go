package plot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"unik-bench/internal/config"
	"unik-bench/internal/logging"
	"unik-bench/internal/metric"
	"unik-bench/internal/plot/barchart"
	"unik-bench/internal/plot/boxplot"
	"unik-bench/internal/plot/jitter"
	"unik-bench/internal/profile"

	"github.com/sirupsen/logrus"
)

type PlotType string

const (
	PlotTypeJitter   PlotType = "jitter"
	PlotTypeBoxPlot  PlotType = "boxplot"
	PlotTypeBarChart PlotType = "barchart"
)

const DefaultFormat = "png"

type PlotManager struct {
	toolkit         *config.Toolkit
	format          string
	jitterGenerator *jitter.JitterPlotGenerator
	boxGenerator    *boxplot.BoxPlotGenerator
	barGenerator    *barchart.BarChartGenerator
	logger          *logrus.Logger
}

// NewPlotManager creates a manager writing images of the given format
// (png, svg, pdf, ...) below the toolkit's data root.
func NewPlotManager(toolkit *config.Toolkit, format string) *PlotManager {
	logger := logging.GetLogger()

	if toolkit == nil {
		toolkit = config.Default()
	}
	format = strings.TrimPrefix(strings.ToLower(format), ".")
	if format == "" {
		format = DefaultFormat
	}

	return &PlotManager{
		toolkit:         toolkit,
		format:          format,
		jitterGenerator: jitter.NewJitterPlotGenerator(logger),
		boxGenerator:    boxplot.NewBoxPlotGenerator(toolkit, logger),
		barGenerator:    barchart.NewBarChartGenerator(toolkit, logger),
		logger:          logger,
	}
}

// PlotsDir is <data>/<typeDir>/<plots>.
func (pm *PlotManager) PlotsDir(m metric.Type) string {
	return filepath.Join(pm.toolkit.Paths.DataRoot, pm.toolkit.TypeDir(m), pm.toolkit.Paths.Plots)
}

// JitterPath keeps the title verbatim; jitter charts always live with the
// latency data.
func (pm *PlotManager) JitterPath(title string) string {
	return filepath.Join(pm.PlotsDir(metric.Latency), title+"jitter."+pm.format)
}

func (pm *PlotManager) BoxPlotPath(title string, m metric.Type, log bool) string {
	return filepath.Join(pm.PlotsDir(m), pm.name(title, log)+"."+pm.format)
}

func (pm *PlotManager) BarChartPath(title string, m metric.Type, log bool) string {
	return filepath.Join(pm.PlotsDir(m), pm.name(title, log)+"_bars."+pm.format)
}

func (pm *PlotManager) TikzPath(title string, m metric.Type, log bool) string {
	return filepath.Join(pm.PlotsDir(m), pm.name(title, log)+".tex")
}

func (pm *PlotManager) name(title string, log bool) string {
	return boxplot.Name(title, log, pm.toolkit.Paths.LogSuffix)
}

func (pm *PlotManager) GenerateJitterPlot(title string, datasets []*profile.BoxData) (string, error) {
	out := pm.JitterPath(title)
	err := pm.jitterGenerator.Generate(jitter.PlotOptions{
		Title:    title,
		YLabel:   pm.toolkit.Axes.Jitter,
		Datasets: datasets,
		Output:   out,
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// GenerateBoxPlots renders the logarithmic and the linear variant. With
// tikz set, a pgfplots file is written next to each image.
func (pm *PlotManager) GenerateBoxPlots(title string, m metric.Type, confidence int, datasets []*profile.BoxData, tikz bool) ([]string, error) {
	var outputs []string
	for _, log := range []bool{true, false} {
		opts := boxplot.PlotOptions{
			Title:      title,
			YLabel:     pm.toolkit.YLabel(m),
			Log:        log,
			Confidence: confidence,
			Datasets:   datasets,
			Output:     pm.BoxPlotPath(title, m, log),
		}
		if err := pm.boxGenerator.Generate(opts); err != nil {
			return outputs, err
		}
		outputs = append(outputs, opts.Output)

		if !tikz {
			continue
		}
		tex, err := pm.boxGenerator.GenerateTikz(opts, m.String())
		if err != nil {
			return outputs, fmt.Errorf("failed to generate tikz: %w", err)
		}
		path := pm.TikzPath(title, m, log)
		if err := os.WriteFile(path, []byte(tex), 0o644); err != nil {
			return outputs, fmt.Errorf("failed to write %s: %w", path, err)
		}
		outputs = append(outputs, path)
	}
	return outputs, nil
}

// GenerateBarCharts renders the logarithmic and the linear variant.
func (pm *PlotManager) GenerateBarCharts(title string, m metric.Type, datasets []*profile.BoxData) ([]string, error) {
	var outputs []string
	for _, log := range []bool{true, false} {
		out := pm.BarChartPath(title, m, log)
		err := pm.barGenerator.Generate(barchart.PlotOptions{
			Title:    title,
			YLabel:   pm.toolkit.YLabel(m),
			Log:      log,
			Datasets: datasets,
			Output:   out,
		})
		if err != nil {
			return outputs, err
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}
