package jitter

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"unik-bench/internal/logging"
	"unik-bench/internal/profile"
)

func TestValues_PopulationStdDev(t *testing.T) {
	got := Values([]*profile.BoxData{
		{Data: []float64{1, 2, 3, 4}},
		{Data: []float64{5, 5, 5}},
	})
	if math.Abs(got[0]-math.Sqrt(1.25)) > 1e-12 {
		t.Fatalf("expected %v, got %v", math.Sqrt(1.25), got[0])
	}
	if got[1] != 0 {
		t.Fatalf("expected 0, got %v", got[1])
	}
}

func TestTickLabels(t *testing.T) {
	got := TickLabels(3)
	want := []string{"C.1", "C.2", "C.3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestLogFloor(t *testing.T) {
	// the floor sits one to two decades below the smallest value shown
	if got := logFloor([]float64{0.5, 2}); got > 0.0001*1.01 || got < 0.00001*0.99 {
		t.Fatalf("expected floor around 1e-4, got %v", got)
	}
	if got := logFloor([]float64{0.00005}); got >= 0.00005 || got < 0.0000001 {
		t.Fatalf("expected floor below 5e-5, got %v", got)
	}
}

func TestGenerate_WritesPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "Cyclictest", "Plots", "ESXijitter.png")
	g := NewJitterPlotGenerator(logging.GetLogger())

	err := g.Generate(PlotOptions{
		Title:  "ESXi",
		YLabel: "Jitter (ms)",
		Datasets: []*profile.BoxData{
			{Data: []float64{0.01, 0.02, 0.05}},
			{Data: []float64{0.2, 0.9, 1.5}},
			{Data: []float64{1, 1}},
		},
		Output: out,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("output file is empty")
	}
}

func TestGenerate_NoDatasets(t *testing.T) {
	g := NewJitterPlotGenerator(logging.GetLogger())
	if err := g.Generate(PlotOptions{Output: filepath.Join(t.TempDir(), "x.png")}); err == nil {
		t.Fatalf("expected error without datasets")
	}
}
