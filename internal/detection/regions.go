package detection

import (
	"fmt"
	"image"
)

// DefaultPadding is the margin in pixels added around every detected region.
const DefaultPadding = 10

// FindRegions returns one padded bounding rectangle per connected blob of
// changed pixels in mask.
//
// Parameters:
//   - mask: Binary mask where any non-zero pixel is foreground.
//   - padding: Non-negative margin added on all four sides of each bounding box.
//
// Returns:
//   - []Rect: One rectangle per external component, in raster order of the
//     component's first pixel. Empty (not nil) when the mask has no foreground.
//   - error: ErrNegativePadding if padding < 0.
//
// # Connectivity
//
// Foreground pixels are grouped with 8-connectivity (diagonals included).
// Only external blobs are reported: a blob lying inside a hole of another blob
// (for example a dot inside a ring) produces no rectangle of its own, since the
// enclosing blob's rectangle already covers it.
//
// Rectangles are expressed in the mask's coordinate space and are not clamped
// to the mask bounds after padding.
func FindRegions(mask *image.Gray, padding int) ([]Rect, error) {
	if padding < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativePadding, padding)
	}

	bounds := mask.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	regions := make([]Rect, 0)
	if width == 0 || height == 0 {
		return regions, nil
	}

	fg := make([]bool, width*height)
	for y := 0; y < height; y++ {
		off := mask.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		row := mask.Pix[off : off+width]
		for x, v := range row {
			fg[y*width+x] = v != 0
		}
	}

	outer := outerBackground(fg, width, height)
	visited := make([]bool, width*height)
	stack := make([]image.Point, 0, 64)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if !fg[i] || visited[i] {
				continue
			}

			minX, minY, maxX, maxY := x, y, x, y
			external := false

			visited[i] = true
			stack = append(stack[:0], image.Point{X: x, Y: y})
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				minX = min(minX, p.X)
				minY = min(minY, p.Y)
				maxX = max(maxX, p.X)
				maxY = max(maxY, p.Y)

				if !external && touchesOuter(outer, p, width, height) {
					external = true
				}

				// 8-connected neighbors
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := p.X+dx, p.Y+dy
						if nx < 0 || nx >= width || ny < 0 || ny >= height {
							continue
						}
						j := ny*width + nx
						if fg[j] && !visited[j] {
							visited[j] = true
							stack = append(stack, image.Point{X: nx, Y: ny})
						}
					}
				}
			}

			if !external {
				continue
			}

			box := Rect{
				X:      minX + bounds.Min.X,
				Y:      minY + bounds.Min.Y,
				Width:  maxX - minX + 1,
				Height: maxY - minY + 1,
			}
			regions = append(regions, box.Pad(padding))
		}
	}

	return regions, nil
}

// outerBackground marks the background pixels reachable from the image border.
//
// Background is traversed with 4-connectivity, the dual of the 8-connected
// foreground, so a closed 8-connected ring seals its interior off.
func outerBackground(fg []bool, width, height int) []bool {
	outer := make([]bool, width*height)
	queue := make([]int, 0, 2*(width+height))

	seed := func(x, y int) {
		i := y*width + x
		if !fg[i] && !outer[i] {
			outer[i] = true
			queue = append(queue, i)
		}
	}
	for x := 0; x < width; x++ {
		seed(x, 0)
		seed(x, height-1)
	}
	for y := 0; y < height; y++ {
		seed(0, y)
		seed(width-1, y)
	}

	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		x, y := i%width, i/width

		if x > 0 {
			seed(x-1, y)
		}
		if x < width-1 {
			seed(x+1, y)
		}
		if y > 0 {
			seed(x, y-1)
		}
		if y < height-1 {
			seed(x, y+1)
		}
	}

	return outer
}

// touchesOuter reports whether a foreground pixel borders the outer background
// or the image frame, which counts as background.
func touchesOuter(outer []bool, p image.Point, width, height int) bool {
	if p.X == 0 || p.Y == 0 || p.X == width-1 || p.Y == height-1 {
		return true
	}
	i := p.Y*width + p.X
	return outer[i-1] || outer[i+1] || outer[i-width] || outer[i+width]
}
