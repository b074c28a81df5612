package profile

import (
	"hash/fnv"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot/palette/brewer"
)

// fallbackPalette colors sources that have no configured color.
var fallbackPalette = func() []color.Color {
	p, err := brewer.GetPalette(brewer.TypeQualitative, "Set2", 8)
	if err != nil {
		return []color.Color{color.Gray{Y: 128}}
	}
	return p.Colors()
}()

// SourceColor resolves the configured hex color of a source. Unknown sources
// get a palette color picked by a hash of the name, so a source keeps its
// color across runs.
func SourceColor(colors map[string]string, source string) color.Color {
	if hex, ok := colors[source]; ok {
		if c, err := colorful.Hex(hex); err == nil {
			r, g, b := c.RGB255()
			return color.NRGBA{R: r, G: g, B: b, A: 255}
		}
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(source))
	return fallbackPalette[int(h.Sum32()%uint32(len(fallbackPalette)))]
}
