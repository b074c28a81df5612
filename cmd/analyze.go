package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"unik-bench/internal/config"
	"unik-bench/internal/database"
	"unik-bench/internal/logging"
	"unik-bench/internal/plot"
	"unik-bench/internal/profile"
	"unik-bench/internal/stats"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// analysisFunction is what analyze does with every loaded profile.
type analysisFunction int

const (
	functionStats analysisFunction = iota + 1
	functionJitter
	functionBoxPlot
	functionBarChart
)

var analysisFunctions = []analysisFunction{functionStats, functionJitter, functionBoxPlot, functionBarChart}

func (f analysisFunction) String() string {
	switch f {
	case functionStats:
		return "stats"
	case functionJitter:
		return "jitter"
	case functionBoxPlot:
		return "boxplot"
	case functionBarChart:
		return "barchart"
	}
	return fmt.Sprintf("function(%d)", int(f))
}

func parseFunction(s string) (analysisFunction, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < int(functionStats) || n > int(functionBarChart) {
		return 0, fmt.Errorf("invalid function %q, valid options are 1 (stats), 2 (jitter), 3 (boxplot) or 4 (barchart)", s)
	}
	return analysisFunction(n), nil
}

const defaultConfidence = 5

type analyzeOptions struct {
	tikz        bool
	format      string
	decimals    int
	imageFormat string
	persist     persistOptions
}

func (o *analyzeOptions) validate() error {
	switch o.format {
	case "latex", "table":
		return nil
	}
	return fmt.Errorf("invalid format %q, valid options are 'latex' or 'table'", o.format)
}

func addAnalyzeFlags(cmd *cobra.Command, opts *analyzeOptions) {
	cmd.Flags().BoolVar(&opts.tikz, "tikz", false, "Also write box plots as pgfplots TikZ (.tex)")
	cmd.Flags().StringVar(&opts.format, "format", "latex", "Statistics output: latex or table")
	cmd.Flags().IntVar(&opts.decimals, "decimals", stats.DefaultDecimals, "Decimals printed for statistics")
	cmd.Flags().StringVar(&opts.imageFormat, "image-format", plot.DefaultFormat, "Image format of rendered plots (png, svg, pdf, eps)")
	addPersistFlags(cmd, &opts.persist)
}

func parseConfidence(s string) (int, error) {
	ci, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid confidence interval %q: %w", s, err)
	}
	return ci, profile.ValidateConfidence(ci)
}

func newAnalyzeCmd(global *globalOptions) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze <manifest.json> <conf_int> <function>",
		Short: "Load a manifest and print statistics or render plots",
		Long:  "Load every profile of a manifest, trim conf_int percent of the samples and run a function: 1 = stats, 2 = jitter, 3 = boxplot, 4 = barchart",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ci, err := parseConfidence(args[1])
			if err != nil {
				return err
			}
			fn, err := parseFunction(args[2])
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), global, args[0], ci, fn, opts, cmd.OutOrStdout())
		},
	}
	addAnalyzeFlags(cmd, &opts)
	return cmd
}

func newAnalysisShorthandCmd(global *globalOptions, fn analysisFunction) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   fn.String() + " <manifest.json> [conf_int]",
		Short: fmt.Sprintf("Shorthand for analyze <manifest.json> <conf_int> %d", int(fn)),
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ci := defaultConfidence
			if len(args) == 2 {
				var err error
				if ci, err = parseConfidence(args[1]); err != nil {
					return err
				}
			}
			return runAnalyze(cmd.Context(), global, args[0], ci, fn, opts, cmd.OutOrStdout())
		},
	}
	addAnalyzeFlags(cmd, &opts)
	return cmd
}

func runAnalyze(ctx context.Context, global *globalOptions, manifestPath string, ci int, fn analysisFunction, opts analyzeOptions, out io.Writer) error {
	logger := logging.GetLogger()

	if err := opts.validate(); err != nil {
		return err
	}
	toolkit, err := global.toolkit()
	if err != nil {
		return err
	}

	content, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}
	profiles, err := profile.ParseManifest(content)
	if err != nil {
		return fmt.Errorf("failed to parse manifest %s: %w", manifestPath, err)
	}

	logger.WithFields(logrus.Fields{
		"manifest":   manifestPath,
		"profiles":   len(profiles),
		"confidence": ci,
		"function":   fn.String(),
	}).Info("Starting analysis")

	start := time.Now()
	a := &analyzer{
		plots:  plot.NewPlotManager(toolkit, opts.imageFormat),
		opts:   opts,
		out:    out,
		logger: logger,
	}
	results := profile.NewLoader(toolkit).Process(profiles, ci)

	reports := make([]database.ProfileReport, 0, len(results))
	failed := 0
	for _, r := range results {
		if err := ctx.Err(); err != nil {
			return err
		}
		report := a.run(r, ci, fn)
		if report.Error != "" {
			failed++
		}
		reports = append(reports, report)
	}

	checksum, _ := config.Checksum(profiles)
	artifact := database.NewSpoolArtifact(database.KindAnalysis, manifestPath, checksum, start, time.Now())
	artifact.ConfigContent = string(content)
	artifact.Profiles = reports
	opts.persist.spoolDir = spoolDirFor(opts.persist.spoolDir, toolkit.Paths.SpoolDir)
	persist(ctx, artifact, opts.persist)

	logger.WithFields(logrus.Fields{
		"profiles": len(results),
		"failed":   failed,
	}).Info("Analysis finished")

	if len(results) > 0 && failed == len(results) {
		return fmt.Errorf("all %d profiles of %s failed", len(results), manifestPath)
	}
	return nil
}

type analyzer struct {
	plots  *plot.PlotManager
	opts   analyzeOptions
	out    io.Writer
	logger *logrus.Logger
}

// run applies fn to one loaded profile and records the outcome.
func (a *analyzer) run(r profile.Result, ci int, fn analysisFunction) database.ProfileReport {
	report := database.ProfileReport{
		Title: r.Profile.Title,
		Type:  r.Profile.Type,
	}
	if r.Err != nil {
		report.Error = r.Err.Error()
		return report
	}

	report.Rows = a.summaryRows(r)

	var outputs []string
	var err error
	switch fn {
	case functionStats:
		err = a.printStats(r.Profile.Title, report.Rows)
	case functionJitter:
		var path string
		if path, err = a.plots.GenerateJitterPlot(r.Profile.Title, r.Datasets); err == nil {
			outputs = []string{path}
		}
	case functionBoxPlot:
		outputs, err = a.plots.GenerateBoxPlots(r.Profile.Title, r.Type, ci, r.Datasets, a.opts.tikz)
	case functionBarChart:
		outputs, err = a.plots.GenerateBarCharts(r.Profile.Title, r.Type, r.Datasets)
	}
	report.Outputs = outputs

	if err != nil {
		a.logger.WithFields(logrus.Fields{
			"profile":  r.Profile.Title,
			"function": fn.String(),
		}).WithError(err).Error("Failed to process profile")
		report.Error = err.Error()
	}
	return report
}

func (a *analyzer) summaryRows(r profile.Result) []stats.Row {
	rows := make([]stats.Row, 0, len(r.Datasets))
	for _, d := range r.Datasets {
		s, err := stats.Summarize(d.Data)
		if err != nil {
			a.logger.WithFields(logrus.Fields{
				"profile": r.Profile.Title,
				"source":  d.Source,
				"label":   d.Label,
			}).WithError(err).Warn("Skipping dataset without samples")
			continue
		}
		rows = append(rows, stats.Row{
			Source:      d.Source,
			Label:       d.Label,
			Environment: d.Environment,
			Stress:      d.Stress,
			Summary:     s,
		})
	}
	return rows
}

func (a *analyzer) printStats(title string, rows []stats.Row) error {
	if a.opts.format == "table" {
		stats.WriteTable(a.out, title, rows, a.opts.decimals)
		return nil
	}
	return stats.WriteLaTeX(a.out, rows, a.opts.decimals)
}
