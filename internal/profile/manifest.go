// Package profile turns JSON experiment manifests into loaded datasets.
package profile

import (
	"encoding/json"
	"fmt"
	"os"

	"unik-bench/internal/metric"
)

// Configuration selects one cached array of an experiment.
type Configuration struct {
	Environment   string `json:"environment"`
	Stress        bool   `json:"stress"`
	Source        string `json:"source"`
	Label         string `json:"label,omitempty"`
	IntervalRange int    `json:"interval_range,omitempty"`
}

// DisplayLabel returns the label, defaulting to the source.
func (c Configuration) DisplayLabel() string {
	if c.Label == "" {
		return c.Source
	}
	return c.Label
}

// Profile is one plot or table: a title, a metric type and the
// configurations drawn together.
type Profile struct {
	Title          string          `json:"title"`
	Type           string          `json:"type"`
	Configurations []Configuration `json:"configurations"`
}

// Metric parses the profile's type. Profiles with an unknown type are
// rejected individually so the rest of the manifest still runs.
func (p Profile) Metric() (metric.Type, error) {
	m, err := metric.Parse(p.Type)
	if err != nil {
		return 0, fmt.Errorf("profile %q: %w", p.Title, err)
	}
	return m, nil
}

func (p Profile) validate(m metric.Type) error {
	if p.Title == "" {
		return fmt.Errorf("profile without title")
	}
	if len(p.Configurations) == 0 {
		return fmt.Errorf("profile %q has no configurations", p.Title)
	}
	for i, c := range p.Configurations {
		if c.Environment == "" || c.Source == "" {
			return fmt.Errorf("profile %q configuration %d: environment and source are required", p.Title, i)
		}
		if m.HasInterval() && c.IntervalRange <= 0 {
			return fmt.Errorf("profile %q configuration %d: interval_range is required for %s", p.Title, i, m)
		}
	}
	return nil
}

// LoadManifest reads a JSON array of profiles.
func LoadManifest(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseManifest(data)
}

func ParseManifest(data []byte) ([]Profile, error) {
	var profiles []Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return profiles, nil
}
