package datahandeling

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"unik-bench/internal/logging"
	"unik-bench/internal/storage"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Kind selects which raw logs a walk processes and how their cached arrays
// are named.
type Kind int

const (
	Cyclictest Kind = iota
	BootTimes
)

func (k Kind) String() string {
	switch k {
	case Cyclictest:
		return "cyclictest"
	case BootTimes:
		return "boottime"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cyclictest":
		return Cyclictest, nil
	case "boottime":
		return BootTimes, nil
	}
	return 0, fmt.Errorf("invalid option %q, valid options are 'cyclictest' or 'boottime'", s)
}

func (k Kind) Handler() DataHandler {
	if k == BootTimes {
		return BootTimeHandler{}
	}
	return LatencyHandler{}
}

const (
	DefaultRawDir    = "RAW"
	DefaultExtension = ".txt"
)

type WalkOptions struct {
	Encoding  string
	Jobs      int
	RawDir    string
	Extension string
}

// FileResult is the outcome of cleaning one raw log.
type FileResult struct {
	Source  string `json:"source"`
	Dest    string `json:"dest"`
	Samples int    `json:"samples"`
	Error   string `json:"error,omitempty"`
	Err     error  `json:"-"`
}

func (r *FileResult) fail(err error) {
	r.Err = err
	r.Error = err.Error()
}

// Failed returns the results that carry an error.
func Failed(results []FileResult) []FileResult {
	var failed []FileResult
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// Walk cleans every raw log below root. Each file is handled by its own
// goroutine (bounded by opts.Jobs when positive) and Walk returns once all of
// them finished. A failing file never affects the others; its error is
// reported in its FileResult. The returned error is only set when root itself
// cannot be walked.
func Walk(ctx context.Context, root string, kind Kind, opts WalkOptions) ([]FileResult, error) {
	logger := logging.GetLogger()

	if opts.RawDir == "" {
		opts.RawDir = DefaultRawDir
	}
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}

	files, err := discover(root, opts.Extension)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	logger.WithFields(logrus.Fields{
		"root":  root,
		"kind":  kind.String(),
		"files": len(files),
	}).Info("Discovered raw logs")

	cleaner := NewCleaner(kind.Handler(), opts.Encoding)
	results := make([]FileResult, len(files))
	claimed := make(map[string]string)

	var g errgroup.Group
	if opts.Jobs > 0 {
		g.SetLimit(opts.Jobs)
	}

	for i, file := range files {
		results[i].Source = file

		dest, err := DestinationPath(root, file, kind, opts.RawDir)
		if err != nil {
			results[i].fail(err)
			continue
		}
		results[i].Dest = dest

		// two logs mapping onto one cached array would race on the same file
		if owner, taken := claimed[dest]; taken {
			results[i].fail(fmt.Errorf("destination %s already produced by %s", dest, owner))
			continue
		}
		claimed[dest] = file

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].fail(err)
				return nil
			}
			n, err := cleaner.CleanFile(file, dest)
			if err != nil {
				logger.WithField("source", file).WithError(err).Error("Failed to clean raw log")
				results[i].fail(err)
				return nil
			}
			results[i].Samples = n
			return nil
		})
	}

	_ = g.Wait()

	failed := len(Failed(results))
	logger.WithFields(logrus.Fields{
		"root":      root,
		"processed": len(results) - failed,
		"failed":    failed,
	}).Info("Raw log cleaning finished")

	return results, nil
}

func discover(root, ext string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ext) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// DestinationPath maps a raw log onto its cached array. The raw directory
// segment is dropped from the path and the file name is replaced by the
// interval bucket (cyclictest) or "<env>_<stress>_<source>" (boot time).
func DestinationPath(root, file string, kind Kind, rawDir string) (string, error) {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside of %s", file, root)
	}

	var segments []string
	for _, seg := range strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/") {
		if seg == "." || seg == "" || seg == rawDir {
			continue
		}
		segments = append(segments, seg)
	}

	var name string
	switch kind {
	case Cyclictest:
		name = IntervalBucket(filepath.ToSlash(rel))
	case BootTimes:
		name = bootTimeName(segments)
	default:
		return "", fmt.Errorf("unsupported kind %s", kind)
	}

	dir := filepath.Join(append([]string{root}, segments...)...)
	return filepath.Join(dir, name) + storage.Extension, nil
}

// IntervalBucket infers the cyclictest interval from a path. The longest
// interval is checked first because "100" is a substring of the others.
func IntervalBucket(path string) string {
	for _, bucket := range []string{"10000", "1000", "100"} {
		if strings.Contains(path, bucket) {
			return bucket
		}
	}
	return "unknown"
}

func bootTimeName(segments []string) string {
	switch {
	case len(segments) >= 3:
		return strings.Join(segments[:3], "_")
	case len(segments) > 0:
		return segments[len(segments)-1]
	}
	return "boottime"
}
