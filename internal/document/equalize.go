package document

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// BlankPage returns an opaque white page of the given size.
func BlankPage(width, height int) *image.NRGBA {
	return imaging.New(width, height, color.White)
}

// Equalize pads the shorter page sequence with blank pages so both have the
// same length.
//
// A padding page takes the size of the first page of its own sequence, or of
// the other sequence when its own is empty. The inputs are not modified.
func Equalize(a, b []image.Image) ([]image.Image, []image.Image) {
	n := max(len(a), len(b))
	return padPages(a, b, n), padPages(b, a, n)
}

func padPages(pages, other []image.Image, n int) []image.Image {
	out := make([]image.Image, len(pages), n)
	copy(out, pages)
	if len(pages) == n {
		return out
	}

	ref := other
	if len(pages) > 0 {
		ref = pages
	}
	size := ref[0].Bounds()
	for len(out) < n {
		out = append(out, BlankPage(size.Dx(), size.Dy()))
	}
	return out
}
