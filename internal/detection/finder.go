package detection

import (
	"fmt"
	"image"
)

// Changes is the output of a RegionFinder for one image pair.
type Changes struct {
	// Mask is the binary change mask, 255 where pixels differ. It has the
	// bounds of the second image.
	Mask *image.Gray

	// Regions holds one padded rectangle per external blob of change, in the
	// coordinates of the second image.
	Regions []Rect
}

// RegionFinder detects changed regions between two images of the same size.
type RegionFinder interface {
	FindChanges(a, b image.Image, padding int) (*Changes, error)
}

// GoFinder is the pure Go RegionFinder built on DiffMask and FindRegions.
type GoFinder struct {
	Options MaskOptions
}

// NewGoFinder creates a GoFinder with the given mask options.
func NewGoFinder(opts MaskOptions) *GoFinder {
	return &GoFinder{Options: opts}
}

// FindChanges computes the difference mask of a and b and extracts padded regions.
func (f *GoFinder) FindChanges(a, b image.Image, padding int) (*Changes, error) {
	if padding < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativePadding, padding)
	}
	mask, err := DiffMask(a, b, f.Options)
	if err != nil {
		return nil, err
	}
	regions, err := FindRegions(mask, padding)
	if err != nil {
		return nil, err
	}
	return &Changes{Mask: mask, Regions: regions}, nil
}

// Backend names accepted by NewFinder.
const (
	BackendGo     = "go"
	BackendOpenCV = "opencv"
)

// NewFinder returns the RegionFinder for a backend name. An empty name selects
// the Go backend.
func NewFinder(backend string, opts MaskOptions) (RegionFinder, error) {
	switch backend {
	case "", BackendGo:
		return NewGoFinder(opts), nil
	case BackendOpenCV:
		return NewCVFinder(opts)
	default:
		return nil, &UnknownBackendError{Name: backend}
	}
}

// UnknownBackendError reports an unsupported backend name.
type UnknownBackendError struct {
	Name string
}

func (e *UnknownBackendError) Error() string {
	return "unknown detection backend: " + e.Name
}
