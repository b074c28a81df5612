package plot

import (
	"os"
	"path/filepath"
	"testing"

	"unik-bench/internal/config"
	"unik-bench/internal/metric"
	"unik-bench/internal/profile"
)

func TestPaths(t *testing.T) {
	pm := NewPlotManager(config.Default(), "")

	cases := []struct{ got, want string }{
		{pm.JitterPath("ESXi 1000"), filepath.Join("DATA", "Cyclictest", "Plots", "ESXi 1000jitter.png")},
		{pm.BoxPlotPath("ESXi Latency", metric.Latency, true), filepath.Join("DATA", "Cyclictest", "Plots", "esxilatency_log.png")},
		{pm.BoxPlotPath("Boot Time", metric.Boot, false), filepath.Join("DATA", "BootTime", "Plots", "boottime.png")},
		{pm.BarChartPath("Boot Time", metric.Boot, true), filepath.Join("DATA", "BootTime", "Plots", "boottime_log_bars.png")},
		{pm.TikzPath("CPU Usage", metric.CPU, false), filepath.Join("DATA", "CPU", "Plots", "cpuusage.tex")},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("expected %s, got %s", tc.want, tc.got)
		}
	}

	svg := NewPlotManager(config.Default(), ".SVG")
	if got := svg.BoxPlotPath("x", metric.Memory, false); got != filepath.Join("DATA", "Memory", "Plots", "x.svg") {
		t.Fatalf("unexpected svg path %s", got)
	}
}

func TestGenerateBoxPlots_WritesBothVariantsAndTikz(t *testing.T) {
	tk := config.Default()
	tk.Paths.DataRoot = t.TempDir()
	pm := NewPlotManager(tk, "png")

	datasets := []*profile.BoxData{
		{Data: []float64{1, 2, 3}, Label: "Nanos", Environment: "ESXi"},
		{Data: []float64{2, 3, 4}, Label: "OSv", Environment: "QEMU", Stress: true},
	}
	outputs, err := pm.GenerateBoxPlots("Boot Time", metric.Boot, 5, datasets, true)
	if err != nil {
		t.Fatalf("GenerateBoxPlots: %v", err)
	}
	if len(outputs) != 4 {
		t.Fatalf("expected 4 outputs, got %v", outputs)
	}
	for _, out := range outputs {
		if _, err := os.Stat(out); err != nil {
			t.Fatalf("missing %s: %v", out, err)
		}
	}
}

func TestGenerateJitterPlot(t *testing.T) {
	tk := config.Default()
	tk.Paths.DataRoot = t.TempDir()
	pm := NewPlotManager(tk, "png")

	out, err := pm.GenerateJitterPlot("ESXi", []*profile.BoxData{{Data: []float64{0.01, 0.03}}})
	if err != nil {
		t.Fatalf("GenerateJitterPlot: %v", err)
	}
	if out != filepath.Join(tk.Paths.DataRoot, "Cyclictest", "Plots", "ESXijitter.png") {
		t.Fatalf("unexpected output %s", out)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("missing output: %v", err)
	}
}
