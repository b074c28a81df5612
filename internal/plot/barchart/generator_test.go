package barchart

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"unik-bench/internal/config"
	"unik-bench/internal/logging"
	"unik-bench/internal/profile"
)

func testDatasets() []*profile.BoxData {
	return []*profile.BoxData{
		{Data: []float64{1, 3}, Label: "Nanos", Environment: "ESXi", Interval: 10000},
		{Data: []float64{2, 4}, Label: "Nanos", Environment: "QEMU", Interval: 10000},
		{Data: []float64{5}, Label: "OSv", Environment: "ESXi", Interval: 10000, Stress: true},
		{Data: []float64{6, 8}, Label: "Nanos", Environment: "ESXi", Interval: 1000},
	}
}

func TestLayout(t *testing.T) {
	chart := Layout(testDatasets())

	wantGroups := []string{"10000 No Stress", "10000 Stress", "1000 No Stress"}
	if len(chart.Groups) != len(wantGroups) {
		t.Fatalf("expected groups %v, got %v", wantGroups, chart.Groups)
	}
	for i := range wantGroups {
		if chart.Groups[i] != wantGroups[i] {
			t.Fatalf("group %d: expected %s, got %s", i, wantGroups[i], chart.Groups[i])
		}
	}

	wantSeries := []string{"Nanos (ESXi)", "Nanos (QEMU)", "OSv (ESXi)"}
	for i := range wantSeries {
		if chart.Series[i].Name() != wantSeries[i] {
			t.Fatalf("series %d: expected %s, got %s", i, wantSeries[i], chart.Series[i].Name())
		}
	}

	if chart.Values[0][0] != 2 || chart.Values[0][1] != 3 {
		t.Fatalf("unexpected first group %v", chart.Values[0])
	}
	if !math.IsNaN(chart.Values[0][2]) {
		t.Fatalf("expected missing cell to be NaN, got %v", chart.Values[0][2])
	}
	if chart.Values[1][2] != 5 || chart.Values[2][0] != 7 {
		t.Fatalf("unexpected values %v", chart.Values)
	}
}

func TestGroupName_WithoutInterval(t *testing.T) {
	if got := GroupName(&profile.BoxData{Stress: true}); got != "Stress" {
		t.Fatalf("expected Stress, got %s", got)
	}
}

func TestGenerate_WritesLogAndLinear(t *testing.T) {
	dir := t.TempDir()
	g := NewBarChartGenerator(config.Default(), logging.GetLogger())
	for _, log := range []bool{true, false} {
		out := filepath.Join(dir, "bars", "chart.png")
		if log {
			out = filepath.Join(dir, "bars", "chart_log.png")
		}
		err := g.Generate(PlotOptions{
			Title:    "Boot",
			YLabel:   "Boot Time (s)",
			Log:      log,
			Datasets: testDatasets(),
			Output:   out,
		})
		if err != nil {
			t.Fatalf("Generate(log=%v): %v", log, err)
		}
		if info, err := os.Stat(out); err != nil || info.Size() == 0 {
			t.Fatalf("expected non-empty %s: %v", out, err)
		}
	}
}

func TestGenerate_LogWithoutPositiveMeans(t *testing.T) {
	g := NewBarChartGenerator(config.Default(), logging.GetLogger())
	err := g.Generate(PlotOptions{
		Log:      true,
		Datasets: []*profile.BoxData{{Data: []float64{0, 0}, Label: "x", Environment: "ESXi"}},
		Output:   filepath.Join(t.TempDir(), "x.png"),
	})
	if err == nil {
		t.Fatalf("expected error for log scale without positive means")
	}
}
