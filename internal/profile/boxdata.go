package profile

import (
	"image/color"

	"unik-bench/internal/metric"
)

// BoxData is a trimmed dataset together with everything the renderers need
// to draw it.
type BoxData struct {
	Data        []float64
	Type        metric.Type
	Source      string
	Label       string
	Color       color.Color
	Environment string
	Stress      bool
	Interval    int
}

// StressName is the directory and legend name of the stress condition.
func StressName(stress bool) string {
	if stress {
		return "Stress"
	}
	return "NoStress"
}
