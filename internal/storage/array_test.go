package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sbinet/npyio"
)

func TestWriteReadArray_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "QEMU", "Nanos", "NoStress", "10000"+Extension)
	want := []float64{1, 2, 2, 3.5, 7, 1e6, 123456789}

	if err := WriteArray(path, want); err != nil {
		t.Fatalf("WriteArray: %v", err)
	}

	got, err := ReadArray(path)
	if err != nil {
		t.Fatalf("ReadArray: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestWriteArray_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	if err := WriteArray(filepath.Join(dir, "a"+Extension), []float64{1}); err != nil {
		t.Fatalf("WriteArray: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "a"+Extension {
		t.Fatalf("expected only a.npy, got %v", entries)
	}
}

func TestReadArray_WidensIntegers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy"+Extension)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := npyio.Write(f, []int64{3, 8, 250}); err != nil {
		t.Fatalf("npyio.Write: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := ReadArray(path)
	if err != nil {
		t.Fatalf("ReadArray: %v", err)
	}
	if len(got) != 3 || got[0] != 3 || got[1] != 8 || got[2] != 250 {
		t.Fatalf("expected [3 8 250], got %v", got)
	}
}

func TestReadArray_Missing(t *testing.T) {
	if _, err := ReadArray(filepath.Join(t.TempDir(), "missing"+Extension)); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
