package config

import (
	"strings"

	"unik-bench/internal/metric"
)

// Toolkit is the immutable configuration shared by the cleaning, loading and
// rendering stages. It is built once at startup and passed down explicitly.
type Toolkit struct {
	Paths              PathConfig                  `yaml:"paths"`
	Sources            map[string]string           `yaml:"sources"`
	Environments       map[string]EnvironmentStyle `yaml:"environments"`
	EnvironmentAliases map[string]string           `yaml:"environment_aliases"`
	LabelAliases       map[string]string           `yaml:"label_aliases"`
	Axes               AxisLabels                  `yaml:"axes"`
	LogLevel           string                      `yaml:"log_level"`
}

type PathConfig struct {
	DataRoot   string   `yaml:"data_root"`
	LegacyRoot string   `yaml:"legacy_root"`
	TypeDirs   TypeDirs `yaml:"types"`
	Plots      string   `yaml:"plots"`
	LogSuffix  string   `yaml:"log_suffix"`
	SpoolDir   string   `yaml:"spool_dir"`
}

type TypeDirs struct {
	Latency string `yaml:"latency"`
	Boot    string `yaml:"boot"`
	CPU     string `yaml:"cpu"`
	Memory  string `yaml:"memory"`
}

// EnvironmentStyle describes how a virtualization environment is drawn.
// Hatch is a TikZ pattern name, Dashes the outline dash pattern in points
// used for raster output (empty means solid).
type EnvironmentStyle struct {
	Hatch  string    `yaml:"hatch"`
	Dashes []float64 `yaml:"dashes"`
}

type AxisLabels struct {
	X       string `yaml:"x"`
	Latency string `yaml:"latency"`
	Boot    string `yaml:"boot"`
	CPU     string `yaml:"cpu"`
	Memory  string `yaml:"memory"`
	Jitter  string `yaml:"jitter"`
}

func (t *Toolkit) TypeDir(m metric.Type) string {
	switch m {
	case metric.Latency:
		return t.Paths.TypeDirs.Latency
	case metric.Boot:
		return t.Paths.TypeDirs.Boot
	case metric.CPU:
		return t.Paths.TypeDirs.CPU
	case metric.Memory:
		return t.Paths.TypeDirs.Memory
	}
	return ""
}

func (t *Toolkit) YLabel(m metric.Type) string {
	switch m {
	case metric.Latency:
		return t.Axes.Latency
	case metric.Boot:
		return t.Axes.Boot
	case metric.CPU:
		return t.Axes.CPU
	case metric.Memory:
		return t.Axes.Memory
	}
	return ""
}

// NormalizeEnvironment maps manifest environment names such as "QEMU + KVM"
// onto the short name used in directory layouts and legends. An exact alias
// wins; otherwise the first alias key contained in env is used.
func (t *Toolkit) NormalizeEnvironment(env string) string {
	if alias, ok := t.EnvironmentAliases[env]; ok {
		return alias
	}
	for _, key := range sortedKeys(t.EnvironmentAliases) {
		if strings.Contains(env, key) {
			return t.EnvironmentAliases[key]
		}
	}
	return env
}

// DisplayLabel rewrites a dataset label for legends, e.g. any label
// mentioning "Ubuntu" is shown as "Ubuntu RT".
func (t *Toolkit) DisplayLabel(label string) string {
	for _, key := range sortedKeys(t.LabelAliases) {
		if strings.Contains(label, key) {
			return t.LabelAliases[key]
		}
	}
	return label
}

func (t *Toolkit) EnvironmentStyle(env string) (EnvironmentStyle, bool) {
	style, ok := t.Environments[env]
	return style, ok
}
