package config

import "sort"

const (
	DefaultDataRoot   = "DATA"
	DefaultLegacyRoot = "OldData"
	DefaultPlotsDir   = "Plots"
	DefaultLogSuffix  = "_log"
	DefaultSpoolDir   = "spool"
)

// Default returns the toolkit configuration used when no file is given.
func Default() *Toolkit {
	return &Toolkit{
		Paths: PathConfig{
			DataRoot:   DefaultDataRoot,
			LegacyRoot: DefaultLegacyRoot,
			TypeDirs: TypeDirs{
				Latency: "Cyclictest",
				Boot:    "BootTime",
				CPU:     "CPU",
				Memory:  "Memory",
			},
			Plots:     DefaultPlotsDir,
			LogSuffix: DefaultLogSuffix,
			SpoolDir:  DefaultSpoolDir,
		},
		Sources: map[string]string{
			"BareMetal/Ubuntu": "#ADD8E6",
			"Ubuntu":           "#90EE90",
			"OSv":              "#FFA07A",
			"Nanos":            "#9370DB",
			"AppBox":           "#D3D3D3",
		},
		Environments: map[string]EnvironmentStyle{
			"ESXi":  {Hatch: "dots", Dashes: []float64{1, 2}},
			"QEMU":  {Hatch: "north west lines", Dashes: []float64{6, 3}},
			"Linux": {Hatch: "crosshatch dots"},
		},
		EnvironmentAliases: map[string]string{
			"QEMU + KVM": "QEMU",
		},
		LabelAliases: map[string]string{
			"Ubuntu": "Ubuntu RT",
		},
		Axes: AxisLabels{
			X:       "Source",
			Latency: "Latency (ms)",
			Boot:    "Boot Time (s)",
			CPU:     "CPU (%)",
			Memory:  "Memory (MB)",
			Jitter:  "Jitter (ms)",
		},
		LogLevel: "info",
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
