package boxplot

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"unik-bench/internal/config"
	"unik-bench/internal/logging"
	"unik-bench/internal/profile"
)

func TestPositions(t *testing.T) {
	want := []float64{1, 1.7, 3, 3.7, 5, 5.7, 8, 8.7, 10, 10.7, 12, 12.7}
	got := Positions(len(want))
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestName(t *testing.T) {
	if got := Name("ESXi Latency 1000", false, "_log"); got != "esxilatency1000" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := Name("Boot Time", true, "_log"); got != "boottime_log" {
		t.Fatalf("unexpected name %q", got)
	}
}

func testDatasets() []*profile.BoxData {
	purple := color.NRGBA{R: 0x93, G: 0x70, B: 0xDB, A: 255}
	salmon := color.NRGBA{R: 0xFF, G: 0xA0, B: 0x7A, A: 255}
	return []*profile.BoxData{
		{Data: []float64{0.25, 0.5, 0.75, 1}, Label: "Nanos", Source: "Nanos", Environment: "ESXi", Color: purple},
		{Data: []float64{0.011, 0.015, 0.019, 0.030}, Label: "Nanos", Source: "Nanos", Environment: "ESXi", Stress: true, Color: purple},
		{Data: []float64{0.020, 0.021, 0.025, 0.090}, Label: "OSv_v2", Source: "OSv", Environment: "QEMU", Color: salmon},
	}
}

func TestGenerate_WritesLogAndLinear(t *testing.T) {
	dir := t.TempDir()
	g := NewBoxPlotGenerator(config.Default(), logging.GetLogger())

	for _, log := range []bool{true, false} {
		out := filepath.Join(dir, Name("ESXi Latency", log, "_log")+".png")
		err := g.Generate(PlotOptions{
			Title:    "ESXi Latency",
			YLabel:   "Latency (ms)",
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

func TestGenerate_LogRejectsNonPositive(t *testing.T) {
	g := NewBoxPlotGenerator(config.Default(), logging.GetLogger())
	err := g.Generate(PlotOptions{
		Log:      true,
		Datasets: []*profile.BoxData{{Data: []float64{0, 1, 2}, Label: "x"}},
		Output:   filepath.Join(t.TempDir(), "x.png"),
	})
	if err == nil {
		t.Fatalf("expected error for zero on log scale")
	}
}

func TestGenerate_EmptyDataset(t *testing.T) {
	g := NewBoxPlotGenerator(config.Default(), logging.GetLogger())
	err := g.Generate(PlotOptions{
		Datasets: []*profile.BoxData{{Label: "empty"}},
		Output:   filepath.Join(t.TempDir(), "x.png"),
	})
	if err == nil {
		t.Fatalf("expected error for empty dataset")
	}
}

func TestGenerateTikz(t *testing.T) {
	g := NewBoxPlotGenerator(config.Default(), logging.GetLogger())
	out, err := g.GenerateTikz(PlotOptions{
		Title:      "ESXi Latency",
		YLabel:     "Latency (ms)",
		Log:        true,
		Confidence: 5,
		Datasets:   testDatasets(),
	}, "latency")
	if err != nil {
		t.Fatalf("GenerateTikz: %v", err)
	}

	for _, want := range []string{
		`ymode=log`,
		`draw position=1.7`,
		`median=0.625`,
		`pattern=dots`,
		`pattern=north east lines`,
		`pattern=north west lines`,
		`fill={rgb,255:red,147;green,112;blue,219}`,
		`xticklabels={Nanos,Nanos,OSv\_v2}`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestGenerateTikz_MissingColor(t *testing.T) {
	g := NewBoxPlotGenerator(config.Default(), logging.GetLogger())
	datasets := testDatasets()
	datasets[0].Color = nil

	out, err := g.GenerateTikz(PlotOptions{
		Title:    "ESXi Latency",
		YLabel:   "Latency (ms)",
		Datasets: datasets,
	}, "latency")
	if err != nil {
		t.Fatalf("GenerateTikz: %v", err)
	}
	if !strings.Contains(out, "fill=black") {
		t.Fatalf("expected black fill for a dataset without color:\n%s", out)
	}
}
