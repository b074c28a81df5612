package mappings

import (
	"fmt"
	"image/color"

	"unik-bench/internal/config"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ReferenceLine is a horizontal threshold drawn across a jitter chart.
type ReferenceLine struct {
	Label string
	Value float64 // ms
	Color color.Color
}

var JitterReferenceLines = []ReferenceLine{
	{Label: "1 µs", Value: 0.001, Color: colornames.Red},
	{Label: "20 µs", Value: 0.02, Color: colornames.Blue},
	{Label: "100 µs", Value: 0.1, Color: colornames.Green},
	{Label: "1 ms", Value: 1, Color: colornames.Orange},
	{Label: "2 ms", Value: 2, Color: colornames.Purple},
	{Label: "10 ms", Value: 10, Color: colornames.Brown},
	{Label: "20 ms", Value: 20, Color: colornames.Pink},
}

var (
	JitterBarColor = colornames.Tan
	LegendFill     = colornames.Silver
	MeanColor      = colornames.Red
	MedianColor    = colornames.Orange
	OutlineColor   = color.Black
)

const (
	OutlineWidth = 1
	StressWidth  = 2
)

// EnvironmentLine returns the outline style of boxes and bars drawn for env.
// Environments without a configured dash pattern are drawn solid.
func EnvironmentLine(tk *config.Toolkit, env string, c color.Color) draw.LineStyle {
	style := draw.LineStyle{
		Color: c,
		Width: vg.Points(OutlineWidth),
	}
	if s, ok := tk.EnvironmentStyle(env); ok {
		for _, d := range s.Dashes {
			style.Dashes = append(style.Dashes, vg.Points(d))
		}
	}
	return style
}

// BoxStyle returns the fill and outline of a dataset. Unstressed datasets
// are filled with the source color and outlined in black; stressed ones are
// left unfilled with a thicker outline in the source color.
func BoxStyle(tk *config.Toolkit, env string, stress bool, c color.Color) (color.Color, draw.LineStyle) {
	if stress {
		line := EnvironmentLine(tk, env, c)
		line.Width = vg.Points(StressWidth)
		return nil, line
	}
	return c, EnvironmentLine(tk, env, OutlineColor)
}

// TikzColor renders c as an xcolor rgb color expression.
func TikzColor(c color.Color) string {
	if c == nil {
		return "black"
	}
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return "black"
	}
	r, g, b := cf.RGB255()
	return fmt.Sprintf("{rgb,255:red,%d;green,%d;blue,%d}", r, g, b)
}

// TikzPattern returns the pgf pattern used for env, empty if none is set.
func TikzPattern(tk *config.Toolkit, env string) string {
	if s, ok := tk.EnvironmentStyle(env); ok {
		return s.Hatch
	}
	return ""
}

// StressPattern overlays stressed datasets in TikZ output.
const StressPattern = "north east lines"
