package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultOutlineColor is the hex color of cluster outlines.
const DefaultOutlineColor = "#FF0000"

// DefaultOutlineWidth is the outline stroke width in pixels.
const DefaultOutlineWidth = 3

// OutlineStyle describes how rectangle outlines are stroked.
type OutlineStyle struct {
	Color color.Color
	Width int
}

// DefaultOutlineStyle returns pure red, 3 pixels wide.
func DefaultOutlineStyle() OutlineStyle {
	return OutlineStyle{
		Color: color.RGBA{R: 255, A: 255},
		Width: DefaultOutlineWidth,
	}
}

// NewOutlineStyle builds an OutlineStyle from a hex color and stroke width.
func NewOutlineStyle(hex string, width int) (OutlineStyle, error) {
	c, err := ParseColor(hex)
	if err != nil {
		return OutlineStyle{}, err
	}
	if width < 1 {
		return OutlineStyle{}, fmt.Errorf("outline width must be at least 1, got %d", width)
	}
	return OutlineStyle{Color: c, Width: width}, nil
}

// ParseColor parses a "#RRGGBB" or "#RGB" hex string into an opaque color.
func ParseColor(hex string) (color.RGBA, error) {
	if hex == "" {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] != '#' {
		hex = "#" + hex
	}
	if len(hex) != 4 && len(hex) != 7 {
		return color.RGBA{}, fmt.Errorf("invalid hex color length: %q", hex)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// DrawOutlines returns a copy of img with every rectangle outlined.
//
// Parameters:
//   - img: Source image. Not modified.
//   - rects: Rectangles to outline, typically cluster bounds.
//   - style: Stroke color and width. A zero Width falls back to
//     DefaultOutlineWidth and a nil Color to pure red.
//
// Returns:
//   - *image.RGBA: The copy with outlines, same bounds as img.
//
// # Geometry
//
// The stroke is centered on the rectangle edge, with corners at Min and Max,
// so a 3 pixel stroke extends one pixel on each side of the edge line.
// Parts of a stroke outside the image are clipped. With no rectangles the
// result is pixel-identical to img.
func DrawOutlines(img image.Image, rects []image.Rectangle, style OutlineStyle) *image.RGBA {
	bounds := img.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	if style.Width <= 0 {
		style.Width = DefaultOutlineWidth
	}
	if style.Color == nil {
		style.Color = DefaultOutlineStyle().Color
	}
	src := &image.Uniform{C: style.Color}

	for _, r := range rects {
		for _, edge := range strokeEdges(r, style.Width) {
			draw.Draw(result, edge.Intersect(bounds), src, image.Point{}, draw.Src)
		}
	}
	return result
}

// strokeEdges returns the four filled bands that make up a rectangle outline
// of the given width centered on r's edges.
func strokeEdges(r image.Rectangle, width int) [4]image.Rectangle {
	lo := (width - 1) / 2
	hi := width - lo

	x0, y0 := r.Min.X-lo, r.Min.Y-lo
	x1, y1 := r.Max.X+hi, r.Max.Y+hi

	// top, bottom, left, right
	return [4]image.Rectangle{
		image.Rect(x0, y0, x1, r.Min.Y+hi),
		image.Rect(x0, r.Max.Y-lo, x1, y1),
		image.Rect(x0, y0, r.Min.X+hi, y1),
		image.Rect(r.Max.X-lo, y0, x1, y1),
	}
}
