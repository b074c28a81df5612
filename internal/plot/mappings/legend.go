package mappings

import (
	"image/color"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// LineThumb draws a horizontal line as a legend thumbnail.
type LineThumb draw.LineStyle

func (l LineThumb) Thumbnail(c *draw.Canvas) {
	y := c.Center().Y
	c.StrokeLine2(draw.LineStyle(l), c.Min.X, y, c.Max.X, y)
}

// BoxThumb draws a filled and outlined rectangle as a legend thumbnail. A
// nil Fill leaves the rectangle empty.
type BoxThumb struct {
	Fill color.Color
	Line draw.LineStyle
}

func (b BoxThumb) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	if b.Fill != nil {
		c.FillPolygon(b.Fill, c.ClipPolygonY(pts))
	}
	if b.Line.Width > 0 {
		pts = append(pts, pts[0])
		c.StrokeLines(b.Line, c.ClipLinesY(pts)...)
	}
}

// MarkThumb draws a single glyph as a legend thumbnail.
type MarkThumb draw.GlyphStyle

func (m MarkThumb) Thumbnail(c *draw.Canvas) {
	c.DrawGlyph(draw.GlyphStyle(m), c.Center())
}

// MeanGlyph marks the mean of a box.
func MeanGlyph() draw.GlyphStyle {
	return draw.GlyphStyle{
		Color:  MeanColor,
		Radius: vg.Points(3),
		Shape:  draw.CircleGlyph{},
	}
}

func MedianLine() draw.LineStyle {
	return draw.LineStyle{
		Color: MedianColor,
		Width: vg.Points(2),
	}
}
