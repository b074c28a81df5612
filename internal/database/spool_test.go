package database

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"unik-bench/internal/datahandeling"
	"unik-bench/internal/orchestrator"
	"unik-bench/internal/stats"
)

func sampleArtifact() *SpoolArtifact {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	a := NewSpoolArtifact(KindAnalysis, "manifest.json", "abc123", start, start.Add(time.Minute))
	a.Profiles = []ProfileReport{
		{
			Title: "Latency",
			Type:  "cyclictest",
			Rows: []stats.Row{
				{Source: "unikraft", Label: "100", Environment: "esxi", Stress: true,
					Summary: stats.Summary{Count: 3, Mean: 2, Median: 2, Min: 1, Max: 3}},
			},
			Outputs: []string{"plots/latency.png"},
		},
		{Title: "Broken", Type: "Foo", Error: "unknown type"},
	}
	a.CleanResults = []datahandeling.FileResult{
		{Source: "RAW/a.txt", Dest: "100.npy", Samples: 12},
		{Source: "RAW/b.txt", Error: "boom", Err: errors.New("boom")},
	}
	a.Commands = []orchestrator.CommandResult{
		{Phase: orchestrator.PhaseStress, Step: orchestrator.StepPowerOn, VM: 4, Host: "esxi", Command: "vim-cmd vmsvc/power.on 4"},
	}
	return a
}

func TestWriteAndReadSpoolArtifact(t *testing.T) {
	dir := t.TempDir()
	a := sampleArtifact()

	path, err := WriteSpoolArtifact(dir, a)
	if err != nil {
		t.Fatalf("WriteSpoolArtifact: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "analysis_") || !strings.HasSuffix(path, "_abc123.json.gz") {
		t.Fatalf("unexpected spool name %s", path)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the final artifact, got %d entries", len(entries))
	}

	got, err := ReadSpoolArtifact(path)
	if err != nil {
		t.Fatalf("ReadSpoolArtifact: %v", err)
	}
	if got.Kind != KindAnalysis || got.Name != "manifest.json" {
		t.Fatalf("unexpected header %+v", got)
	}
	if len(got.Profiles) != 2 || got.Profiles[0].Rows[0].Summary.Mean != 2 {
		t.Fatalf("profiles not preserved: %+v", got.Profiles)
	}
	if got.Profiles[1].Error != "unknown type" {
		t.Fatalf("profile error not preserved: %+v", got.Profiles[1])
	}
	if got.CleanResults[1].Error != "boom" {
		t.Fatalf("clean error not preserved: %+v", got.CleanResults[1])
	}
	if got.Commands[0].VM != 4 {
		t.Fatalf("commands not preserved: %+v", got.Commands)
	}
}

func TestWriteSpoolArtifact_Nil(t *testing.T) {
	if _, err := WriteSpoolArtifact(t.TempDir(), nil); err == nil {
		t.Fatalf("expected error for nil artifact")
	}
}

func TestReadSpoolArtifact_NotGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.json.gz")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadSpoolArtifact(path); err == nil {
		t.Fatalf("expected error for non-gzip file")
	}
}

func TestDefaultSpoolDir(t *testing.T) {
	t.Setenv("UNIK_BENCH_SPOOL_DIR", "")
	if got := DefaultSpoolDir(); got != "spool" {
		t.Fatalf("expected spool, got %s", got)
	}
	t.Setenv("UNIK_BENCH_SPOOL_DIR", "/tmp/results")
	if got := DefaultSpoolDir(); got != "/tmp/results" {
		t.Fatalf("expected override, got %s", got)
	}
}
