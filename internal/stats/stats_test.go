package stats

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSummarize(t *testing.T) {
	s, err := Summarize([]float64{4, 1, 3, 2})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	want := Summary{Count: 4, Mean: 2.5, Median: 2.5, StdDev: math.Sqrt(1.25), Q1: 1.75, Q3: 3.25, Min: 1, Max: 4}
	got := []float64{s.Mean, s.Median, s.StdDev, s.Q1, s.Q3, s.Min, s.Max}
	exp := []float64{want.Mean, want.Median, want.StdDev, want.Q1, want.Q3, want.Min, want.Max}
	for i := range exp {
		if !almostEqual(got[i], exp[i]) {
			t.Fatalf("field %d: expected %v, got %v", i, exp[i], got[i])
		}
	}
	if s.Count != 4 {
		t.Fatalf("expected count 4, got %d", s.Count)
	}
}

func TestSummarize_Empty(t *testing.T) {
	if _, err := Summarize(nil); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestLinearPercentile(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	cases := map[float64]float64{0: 1, 25: 2, 50: 3, 75: 4, 100: 5, 10: 1.4}
	for p, want := range cases {
		if got := LinearPercentile(data, p); !almostEqual(got, want) {
			t.Fatalf("p=%v: expected %v, got %v", p, want, got)
		}
	}
	if got := LinearPercentile([]float64{7}, 25); got != 7 {
		t.Fatalf("single value: expected 7, got %v", got)
	}
}

func TestLaTeXRow(t *testing.T) {
	s := Summary{Mean: 1, Median: 2, StdDev: 0.5, Q1: 1.25, Q3: 2.75, Min: 0.1, Max: 3}
	got := LaTeXRow("Nanos", s, DefaultDecimals)
	want := `& \textbf{Nanos} & 1.0000 & 2.0000 & 0.5000 & 1.2500 & 2.7500 & 0.1000 & 3.0000 \\ \cline{2-9}`
	if got != want {
		t.Fatalf("expected\n%s\ngot\n%s", want, got)
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(&buf, "Latency", []Row{{Source: "OSv", Label: "OSv", Environment: "ESXi", Summary: Summary{Mean: 1}}}, 2)
	out := buf.String()
	if !strings.Contains(out, "Latency") || !strings.Contains(out, "OSv") {
		t.Fatalf("unexpected table output:\n%s", out)
	}
	if !strings.Contains(out, "1.00") {
		t.Fatalf("expected formatted mean in output:\n%s", out)
	}
}
