package detection

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/histogram"
	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"
)

// MaskOptions tunes how the difference mask is computed.
type MaskOptions struct {
	// Threshold overrides the automatic Otsu threshold when non-nil. A pixel is
	// marked changed when its grayscale difference is strictly greater than the
	// threshold. Valid range is 0-255.
	Threshold *int

	// BlurSigma applies a Gaussian blur of this sigma to both images before
	// differencing. Zero or negative disables blurring.
	BlurSigma float64
}

// DiffMask computes the binary change mask between two images.
//
// Parameters:
//   - a: The first (original) image.
//   - b: The second (changed) image. Must have the same width and height as a.
//   - opts: Threshold override and optional pre-blur.
//
// Returns:
//   - *image.Gray: Mask with the bounds of b, so mask coordinates are b's own
//     pixel coordinates. Changed pixels are 255, unchanged pixels are 0.
//   - error: ErrEmptyInput, ErrDimensionMismatch or ErrInvalidThreshold.
//
// # Algorithm
//
//  1. Grayscale conversion with ITU-R BT.601 weights
//     (0.299*R + 0.587*G + 0.114*B)
//  2. Absolute difference |a - b| per pixel, values 0-255
//  3. Threshold selection by Otsu's method over the difference histogram,
//     unless opts.Threshold is set
//  4. Binarization: diff > threshold -> 255
//
// Identical images produce an all-zero difference map; the degenerate
// histogram resolves to an empty mask rather than an error.
func DiffMask(a, b image.Image, opts MaskOptions) (*image.Gray, error) {
	if err := checkPair(a, b); err != nil {
		return nil, err
	}
	if opts.Threshold != nil && (*opts.Threshold < 0 || *opts.Threshold > 255) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidThreshold, *opts.Threshold)
	}

	origin := b.Bounds().Min
	if opts.BlurSigma > 0 {
		a = gaussianBlur(a, opts.BlurSigma)
		b = gaussianBlur(b, opts.BlurSigma)
	}

	diff := absDiff(imaging.Grayscale(a), imaging.Grayscale(b), origin)

	var threshold uint8
	if opts.Threshold != nil {
		threshold = uint8(*opts.Threshold)
	} else {
		hist := histogram.NewRGBAHistogram(diff)
		threshold = OtsuThreshold(hist.R.Bins)
	}

	return binarize(diff, threshold), nil
}

// OtsuThreshold selects the threshold that maximizes the between-class variance
// of a 256-bin intensity histogram.
//
// The classes are values <= t and values > t. When several thresholds share the
// maximum variance, the lowest wins, matching OpenCV's THRESH_OTSU.
//
// A histogram with a single populated bin has no variance to maximize; the
// value of that bin is returned so that no sample lies above the threshold.
// An empty histogram returns 0.
func OtsuThreshold(bins []int) uint8 {
	if len(bins) > 256 {
		bins = bins[:256]
	}

	total := 0
	populated := 0
	last := 0
	var sum float64
	for v, n := range bins {
		if n == 0 {
			continue
		}
		total += n
		populated++
		last = v
		sum += float64(v) * float64(n)
	}
	if total == 0 {
		return 0
	}
	if populated == 1 {
		return uint8(last)
	}

	var sumB float64
	wB := 0
	best := -1.0
	level := 0

	for t, n := range bins {
		wB += n
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}

		sumB += float64(t) * float64(n)
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)

		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			level = t
		}
	}

	return uint8(level)
}

// absDiff returns |a - b| of two grayscale images of equal size, placed at origin.
// Both inputs come from imaging.Grayscale, so R=G=B and their origin is (0,0).
func absDiff(a, b *image.NRGBA, origin image.Point) *image.Gray {
	w, h := a.Bounds().Dx(), a.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h).Add(origin))

	for y := 0; y < h; y++ {
		ia := y * a.Stride
		ib := y * b.Stride
		io := y * out.Stride
		for x := 0; x < w; x++ {
			va, vb := a.Pix[ia+x*4], b.Pix[ib+x*4]
			if va > vb {
				out.Pix[io+x] = va - vb
			} else {
				out.Pix[io+x] = vb - va
			}
		}
	}
	return out
}

// binarize maps every value above threshold to 255 and the rest to 0.
func binarize(diff *image.Gray, threshold uint8) *image.Gray {
	out := image.NewGray(diff.Bounds())
	for i, v := range diff.Pix {
		if v > threshold {
			out.Pix[i] = 255
		}
	}
	return out
}

// gaussianBlur smooths img to suppress anti-aliasing noise before differencing.
func gaussianBlur(img image.Image, sigma float64) image.Image {
	g := gift.New(gift.GaussianBlur(float32(sigma)))
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}
