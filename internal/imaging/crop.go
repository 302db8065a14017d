package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Crop extracts a rectangular region from an image, optionally rescaled.
//
// Parameters:
//   - img: Source image.
//   - r: Region to extract. Parts outside the image are clipped, so padded
//     cluster bounds can be passed directly.
//   - scale: Resize factor applied after cropping. Values <= 0 or 1.0 keep the
//     original size. OCR uses an upscale to help with small glyphs.
//
// Returns:
//   - *image.NRGBA: The cropped image with origin (0,0).
//   - error: Non-nil if r does not intersect the image.
func Crop(img image.Image, r image.Rectangle, scale float64) (*image.NRGBA, error) {
	bounds := img.Bounds()
	clipped := r.Intersect(bounds)
	if clipped.Empty() {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", r, bounds)
	}

	cropped := imaging.Crop(img, clipped)

	if scale != 1.0 && scale > 0 {
		newWidth := max(1, int(float64(cropped.Bounds().Dx())*scale))
		newHeight := max(1, int(float64(cropped.Bounds().Dy())*scale))
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	return cropped, nil
}
