//go:build !withcv

package detection

// NewCVFinder reports ErrBackendUnavailable; build with -tags withcv to
// enable the OpenCV backend.
func NewCVFinder(opts MaskOptions) (RegionFinder, error) {
	return nil, ErrBackendUnavailable
}
