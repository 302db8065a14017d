package detection

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrDimensionMismatch is returned when the two images of a pair differ in
	// width or height. Callers are expected to equalize pages beforehand.
	ErrDimensionMismatch = errors.New("image dimensions do not match")

	// ErrEmptyInput is returned for an image with zero width or height.
	ErrEmptyInput = errors.New("image has zero size")

	// ErrNegativePadding is returned when a negative padding margin is requested.
	ErrNegativePadding = errors.New("padding must not be negative")

	// ErrInvalidThreshold is returned for a threshold override outside 0-255.
	ErrInvalidThreshold = errors.New("threshold must be within 0-255")

	// ErrBackendUnavailable is returned when a detection backend was not
	// compiled into the binary.
	ErrBackendUnavailable = errors.New("detection backend not available in this build")
)

// checkPair validates that two images can be compared pixel by pixel.
func checkPair(a, b image.Image) error {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Empty() || bb.Empty() {
		return ErrEmptyInput
	}
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return fmt.Errorf("%w: %dx%d vs %dx%d",
			ErrDimensionMismatch, ab.Dx(), ab.Dy(), bb.Dx(), bb.Dy())
	}
	return nil
}
