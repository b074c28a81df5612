package profile

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"unik-bench/internal/config"
	"unik-bench/internal/logging"
	"unik-bench/internal/metric"
	"unik-bench/internal/storage"

	"github.com/sirupsen/logrus"
)

// DefaultInterval names the legacy array of non-latency configurations.
const DefaultInterval = 10000

// legacyMarker in a label routes the configuration to the legacy data root.
const legacyMarker = "Old"

type Loader struct {
	toolkit *config.Toolkit
	logger  *logrus.Logger
}

func NewLoader(toolkit *config.Toolkit) *Loader {
	if toolkit == nil {
		toolkit = config.Default()
	}
	return &Loader{
		toolkit: toolkit,
		logger:  logging.GetLogger(),
	}
}

// Result is the outcome of one manifest profile.
type Result struct {
	Profile  Profile
	Type     metric.Type
	Datasets []*BoxData
	Err      error
}

// Legacy reports whether c reads from the legacy data root.
func (c Configuration) Legacy() bool {
	return strings.Contains(c.DisplayLabel(), legacyMarker)
}

// ResolvePath returns the cached array a configuration points at.
func (l *Loader) ResolvePath(m metric.Type, c Configuration) (string, error) {
	typeDir := l.toolkit.TypeDir(m)
	if typeDir == "" {
		return "", fmt.Errorf("no data directory configured for %s", m)
	}

	env := l.toolkit.NormalizeEnvironment(c.Environment)
	stress := StressName(c.Stress)
	paths := l.toolkit.Paths

	if c.Legacy() {
		interval := c.IntervalRange
		if interval <= 0 {
			interval = DefaultInterval
		}
		return filepath.Join(paths.LegacyRoot, typeDir, env, stress, c.Source, strconv.Itoa(interval)+storage.Extension), nil
	}

	switch m {
	case metric.Latency:
		if c.IntervalRange <= 0 {
			return "", fmt.Errorf("interval_range is required for %s", m)
		}
		return filepath.Join(paths.DataRoot, typeDir, env, c.Source, stress, strconv.Itoa(c.IntervalRange)+storage.Extension), nil
	case metric.Boot:
		name := strings.Join([]string{env, stress, c.Source}, "_")
		return filepath.Join(paths.DataRoot, typeDir, env, stress, c.Source, name+storage.Extension), nil
	case metric.CPU, metric.Memory:
		return filepath.Join(paths.DataRoot, typeDir, env, stress, c.Source, c.Source+storage.Extension), nil
	}
	return "", fmt.Errorf("unsupported metric type %s", m)
}

// PercentileTrim removes floor(n * ci/2 / 100) elements from each end of
// sorted data. It returns a sub-slice of data.
func PercentileTrim(data []float64, ci int) []float64 {
	n := len(data)
	// ci/2 may be fractional, e.g. 5 drops 2.5 percent on each side
	cut := int(float64(n) * (float64(ci) / 2) / 100)
	if 2*cut >= n {
		return data[:0]
	}
	return data[cut : n-cut]
}

// LoadTrimmed reads a cached array, scales it into plot units and trims it.
func (l *Loader) LoadTrimmed(path string, ci int, m metric.Type) ([]float64, error) {
	raw, err := storage.ReadArray(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	trimmed := PercentileTrim(raw, ci)
	out := make([]float64, len(trimmed))
	for i, v := range trimmed {
		out[i] = m.Scale(v)
	}
	return out, nil
}

// Load resolves and loads one configuration.
func (l *Loader) Load(m metric.Type, c Configuration, ci int) (*BoxData, error) {
	path, err := l.ResolvePath(m, c)
	if err != nil {
		return nil, err
	}
	data, err := l.LoadTrimmed(path, ci, m)
	if err != nil {
		return nil, err
	}

	// legacy cpu and memory arrays keep the stress flag of the manifest
	stress := c.Stress
	if (m == metric.CPU || m == metric.Memory) && !c.Legacy() {
		stress = false
	}

	l.logger.WithFields(logrus.Fields{
		"path":    path,
		"samples": len(data),
		"type":    m.String(),
	}).Debug("Loaded dataset")

	return &BoxData{
		Data:        data,
		Type:        m,
		Source:      c.Source,
		Label:       l.toolkit.DisplayLabel(c.DisplayLabel()),
		Color:       SourceColor(l.toolkit.Sources, c.Source),
		Environment: l.toolkit.NormalizeEnvironment(c.Environment),
		Stress:      stress,
		Interval:    c.IntervalRange,
	}, nil
}

// LoadProfile loads every configuration of p. The first failing
// configuration fails the profile.
func (l *Loader) LoadProfile(p Profile, ci int) (metric.Type, []*BoxData, error) {
	m, err := p.Metric()
	if err != nil {
		return 0, nil, err
	}
	if err := p.validate(m); err != nil {
		return m, nil, err
	}

	datasets := make([]*BoxData, 0, len(p.Configurations))
	for i, c := range p.Configurations {
		d, err := l.Load(m, c, ci)
		if err != nil {
			return m, nil, fmt.Errorf("profile %q configuration %d (%s): %w", p.Title, i, c.Source, err)
		}
		datasets = append(datasets, d)
	}
	return m, datasets, nil
}

// Process loads every profile of a manifest. Failures are logged and
// recorded in the profile's Result; the next profile is processed anyway.
func (l *Loader) Process(profiles []Profile, ci int) []Result {
	results := make([]Result, 0, len(profiles))
	for _, p := range profiles {
		m, datasets, err := l.LoadProfile(p, ci)
		if err != nil {
			l.logger.WithField("profile", p.Title).WithError(err).Error("Failed to load profile")
		}
		results = append(results, Result{
			Profile:  p,
			Type:     m,
			Datasets: datasets,
			Err:      err,
		})
	}
	return results
}

// ValidateConfidence checks the percentile trim argument.
func ValidateConfidence(ci int) error {
	if ci < 0 || ci >= 100 {
		return fmt.Errorf("confidence interval must be in [0, 100), got %d", ci)
	}
	return nil
}
