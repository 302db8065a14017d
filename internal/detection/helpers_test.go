package detection

import (
	"image"
	"image/color"
	"image/draw"
	"sort"
	"strconv"
	"strings"
)

// createPageImage creates a solid color test image
func createPageImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// fillRect paints a filled rectangle onto img
func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// cloneRGBA returns a deep copy of img
func cloneRGBA(img *image.RGBA) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	copy(out.Pix, img.Pix)
	return out
}

// maskFromPoints builds a binary mask with the given foreground pixels
func maskFromPoints(width, height int, points ...image.Point) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, width, height))
	for _, p := range points {
		m.SetGray(p.X, p.Y, color.Gray{Y: 255})
	}
	return m
}

// fillMask sets every pixel of r in m to foreground
func fillMask(m *image.Gray, r image.Rectangle) {
	draw.Draw(m, r, &image.Uniform{C: color.Gray{Y: 255}}, image.Point{}, draw.Src)
}

// rectKey renders a rectangle as a stable string
func rectKey(r Rect) string {
	return strconv.Itoa(r.X) + "," + strconv.Itoa(r.Y) + "," +
		strconv.Itoa(r.Width) + "," + strconv.Itoa(r.Height)
}

// partitionKey renders a clustering as a canonical string independent of
// cluster and member order
func partitionKey(clusters []Cluster) string {
	groups := make([]string, 0, len(clusters))
	for _, c := range clusters {
		keys := make([]string, 0, len(c.Members))
		for _, m := range c.Members {
			keys = append(keys, rectKey(m))
		}
		sort.Strings(keys)
		groups = append(groups, strings.Join(keys, " "))
	}
	sort.Strings(groups)
	return strings.Join(groups, " | ")
}
