//go:build withcv

package detection

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// CVFinder runs change detection through OpenCV.
//
// It mirrors GoFinder step for step: BGR to gray, absolute difference, binary
// threshold (Otsu unless overridden), external contours, bounding rectangles.
// Mats are released before returning since gocv memory lives outside the Go heap.
type CVFinder struct {
	Options MaskOptions
}

// NewCVFinder creates an OpenCV backed RegionFinder.
func NewCVFinder(opts MaskOptions) (RegionFinder, error) {
	return &CVFinder{Options: opts}, nil
}

// FindChanges implements RegionFinder.
func (f *CVFinder) FindChanges(a, b image.Image, padding int) (*Changes, error) {
	if err := checkPair(a, b); err != nil {
		return nil, err
	}
	if padding < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativePadding, padding)
	}

	matA, err := gocv.ImageToMatRGB(a)
	if err != nil {
		return nil, fmt.Errorf("failed to convert first image: %w", err)
	}
	defer matA.Close()

	matB, err := gocv.ImageToMatRGB(b)
	if err != nil {
		return nil, fmt.Errorf("failed to convert second image: %w", err)
	}
	defer matB.Close()

	if f.Options.BlurSigma > 0 {
		sigma := f.Options.BlurSigma
		gocv.GaussianBlur(matA, &matA, image.Point{}, sigma, sigma, gocv.BorderReplicate)
		gocv.GaussianBlur(matB, &matB, image.Point{}, sigma, sigma, gocv.BorderReplicate)
	}

	grayA := gocv.NewMat()
	defer grayA.Close()
	grayB := gocv.NewMat()
	defer grayB.Close()
	gocv.CvtColor(matA, &grayA, gocv.ColorBGRToGray)
	gocv.CvtColor(matB, &grayB, gocv.ColorBGRToGray)

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(grayA, grayB, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	if t := f.Options.Threshold; t != nil {
		if *t < 0 || *t > 255 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidThreshold, *t)
		}
		gocv.Threshold(diff, &thresh, float32(*t), 255, gocv.ThresholdBinary)
	} else {
		gocv.Threshold(diff, &thresh, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	}

	contours := gocv.FindContours(thresh, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	// Mats are indexed from (0,0); results are moved to b's coordinates.
	origin := b.Bounds().Min
	regions := make([]Rect, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		box := gocv.BoundingRect(contours.At(i)).Add(origin)
		regions = append(regions, FromRectangle(box).Pad(padding))
	}

	img, err := thresh.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert mask: %w", err)
	}
	mask, ok := img.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("unexpected mask type %T", img)
	}
	mask.Rect = mask.Rect.Add(origin)

	return &Changes{Mask: mask, Regions: regions}, nil
}
