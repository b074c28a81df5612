package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sbinet/npyio"
)

// Extension is appended to every cached array file.
const Extension = ".npy"

// WriteArray persists a cached array as a 1-D little-endian float64 NumPy
// file. The file is written to a temporary name in the same directory and
// renamed into place, so readers never observe a partial array.
func WriteArray(path string, data []float64) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	ok := false
	defer func() {
		_ = tmp.Close()
		if !ok {
			_ = os.Remove(tmpPath)
		}
	}()

	if data == nil {
		data = []float64{}
	}
	if err := npyio.Write(tmp, data); err != nil {
		return fmt.Errorf("failed to encode array %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}
	ok = true
	return nil
}

// ReadArray loads a 1-D cached array. Integer and float32 arrays, as written
// by older NumPy based tooling, are widened to float64.
func ReadArray(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read array header %s: %w", path, err)
	}

	if shape := r.Header.Descr.Shape; len(shape) > 1 {
		return nil, fmt.Errorf("array %s: expected 1-D data, got shape %v", path, shape)
	}

	switch r.Header.Descr.Type {
	case "<f8":
		var v []float64
		if err := r.Read(&v); err != nil {
			return nil, fmt.Errorf("failed to read array %s: %w", path, err)
		}
		return v, nil
	case "<f4":
		var v []float32
		if err := r.Read(&v); err != nil {
			return nil, fmt.Errorf("failed to read array %s: %w", path, err)
		}
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	case "<i8":
		var v []int64
		if err := r.Read(&v); err != nil {
			return nil, fmt.Errorf("failed to read array %s: %w", path, err)
		}
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	case "<i4":
		var v []int32
		if err := r.Read(&v); err != nil {
			return nil, fmt.Errorf("failed to read array %s: %w", path, err)
		}
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	}

	return nil, fmt.Errorf("array %s: unsupported dtype %q", path, r.Header.Descr.Type)
}
