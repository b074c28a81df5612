package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"unik-bench/internal/config"
	"unik-bench/internal/datahandeling"
	"unik-bench/internal/metric"
	"unik-bench/internal/profile"
	"unik-bench/internal/storage"
)

func TestParseFunction(t *testing.T) {
	for in, want := range map[string]analysisFunction{
		"1": functionStats,
		"2": functionJitter,
		"3": functionBoxPlot,
		"4": functionBarChart,
	} {
		got, err := parseFunction(in)
		if err != nil || got != want {
			t.Fatalf("parseFunction(%q) = %v, %v", in, got, err)
		}
	}
	for _, in := range []string{"0", "5", "stats", ""} {
		if _, err := parseFunction(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestParseConfidence(t *testing.T) {
	if ci, err := parseConfidence("10"); err != nil || ci != 10 {
		t.Fatalf("parseConfidence(10) = %d, %v", ci, err)
	}
	for _, in := range []string{"-1", "100", "x"} {
		if _, err := parseConfidence(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestSpoolDirFor(t *testing.T) {
	t.Setenv("UNIK_BENCH_SPOOL_DIR", "")
	if got := spoolDirFor("flag", "configured"); got != "flag" {
		t.Fatalf("flag must win, got %s", got)
	}
	if got := spoolDirFor("", "configured"); got != "configured" {
		t.Fatalf("expected configured dir, got %s", got)
	}
	t.Setenv("UNIK_BENCH_SPOOL_DIR", "from-env")
	if got := spoolDirFor("", "configured"); got != "from-env" {
		t.Fatalf("environment must override configuration, got %s", got)
	}
}

func TestCleanRoot(t *testing.T) {
	tk := config.Default()
	if got := cleanRoot(tk, datahandeling.Cyclictest); got != filepath.Join("DATA", "Cyclictest") {
		t.Fatalf("unexpected cyclictest root %s", got)
	}
	if got := cleanRoot(tk, datahandeling.BootTimes); got != filepath.Join("DATA", "BootTime") {
		t.Fatalf("unexpected boot time root %s", got)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestStatsCommand(t *testing.T) {
	dir := t.TempDir()
	dataRoot := filepath.Join(dir, "DATA")

	configPath := filepath.Join(dir, "toolkit.yml")
	writeFile(t, configPath, "paths:\n  data_root: "+dataRoot+"\n")

	tk := config.Default()
	tk.Paths.DataRoot = dataRoot
	c := profile.Configuration{Environment: "ESXi", Source: "Nanos"}
	path, err := profile.NewLoader(tk).ResolvePath(metric.Boot, c)
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if err := storage.WriteArray(path, []float64{1000, 2000, 3000}); err != nil {
		t.Fatalf("WriteArray: %v", err)
	}

	manifest := filepath.Join(dir, "manifest.json")
	writeFile(t, manifest, `[
		{"title": "Boot", "type": "boot", "configurations": [
			{"environment": "ESXi", "stress": false, "source": "Nanos"}
		]},
		{"title": "Broken", "type": "nope", "configurations": []}
	]`)

	var out bytes.Buffer
	root := newRootCmd(&globalOptions{})
	root.SetOut(&out)
	root.SetArgs([]string{"--config", configPath, "stats", manifest, "0", "--no-spool"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("stats: %v", err)
	}

	got := out.String()
	if !strings.HasPrefix(got, `& \textbf{Nanos} & 2.0000 & 2.0000`) {
		t.Fatalf("expected only LaTeX rows, got %q", got)
	}
	if strings.Contains(got, "Boot") {
		t.Fatalf("LaTeX output must not carry the profile title, got %q", got)
	}

	out.Reset()
	root = newRootCmd(&globalOptions{})
	root.SetOut(&out)
	root.SetArgs([]string{"--config", configPath, "stats", manifest, "0", "--no-spool", "--format", "table"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("stats table: %v", err)
	}
	if !strings.HasPrefix(out.String(), "Boot\n") {
		t.Fatalf("expected profile title above the table, got %q", out.String())
	}
}

func TestAnalyzeCommand_RejectsBadArguments(t *testing.T) {
	cases := [][]string{
		{"analyze", "m.json", "5", "9"},
		{"analyze", "m.json", "100", "1"},
		{"analyze", "m.json", "5"},
		{"stats", "m.json", "5", "--format", "csv"},
	}
	for _, args := range cases {
		root := newRootCmd(&globalOptions{})
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		root.SetArgs(args)
		if err := root.ExecuteContext(context.Background()); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestObjdumpCommand_RequiresTwoArguments(t *testing.T) {
	root := newRootCmd(&globalOptions{})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"syscalls", "objdump", "/bin/true"})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Fatalf("expected argument error")
	}
}
