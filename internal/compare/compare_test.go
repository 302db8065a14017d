package compare

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ironsheep/pdf-visual-diff/internal/detection"
)

// createTestImage creates a solid color image
func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// withSquares returns a copy of img with black squares painted on it
func withSquares(img *image.RGBA, squares ...image.Rectangle) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	copy(out.Pix, img.Pix)
	for _, sq := range squares {
		draw.Draw(out, sq, &image.Uniform{C: color.Black}, image.Point{}, draw.Src)
	}
	return out
}

func TestComparePages_Identical(t *testing.T) {
	img := createTestImage(200, 150, color.White)

	res, err := ComparePages(img, img, DefaultOptions())
	if err != nil {
		t.Fatalf("ComparePages failed: %v", err)
	}

	if res.HasChanges() || res.Regions != 0 {
		t.Errorf("identical pages: got %d regions, %d clusters", res.Regions, len(res.Clusters))
	}
	for i := range img.Pix {
		if res.Overlay.Pix[i] != img.Pix[i] {
			t.Fatal("overlay must be pixel-identical to the input when nothing changed")
		}
	}
}

func TestComparePages_SingleSquare(t *testing.T) {
	a := createTestImage(300, 300, color.White)
	b := withSquares(a, image.Rect(100, 100, 120, 120))

	res, err := ComparePages(a, b, DefaultOptions())
	if err != nil {
		t.Fatalf("ComparePages failed: %v", err)
	}

	if len(res.Clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(res.Clusters))
	}
	c := res.Clusters[0]
	want := detection.Rect{X: 90, Y: 90, Width: 40, Height: 40}
	if c.Bounds != want {
		t.Errorf("bounds: got %+v, want %+v", c.Bounds, want)
	}
	if c.ChangedPixels != 400 {
		t.Errorf("ChangedPixels: got %d, want 400", c.ChangedPixels)
	}

	red := color.RGBA{255, 0, 0, 255}
	if got := res.Overlay.RGBAAt(110, 90); got != red {
		t.Errorf("overlay top edge: got %v, want red", got)
	}
	if got := res.Overlay.RGBAAt(110, 110); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("overlay inside: got %v, want the changed content", got)
	}
	if got := b.RGBAAt(110, 90); got == red {
		t.Error("input image was modified")
	}
}

func TestComparePages_OffsetBounds(t *testing.T) {
	a := createTestImage(400, 400, color.White)
	b := withSquares(a, image.Rect(200, 200, 220, 220))

	view := image.Rect(100, 100, 400, 400)
	res, err := ComparePages(a.SubImage(view), b.SubImage(view), DefaultOptions())
	if err != nil {
		t.Fatalf("ComparePages failed: %v", err)
	}
	if len(res.Clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(res.Clusters))
	}
	want := detection.Rect{X: 190, Y: 190, Width: 40, Height: 40}
	if res.Clusters[0].Bounds != want {
		t.Errorf("bounds: got %+v, want %+v", res.Clusters[0].Bounds, want)
	}
	if res.Clusters[0].ChangedPixels != 400 || res.ChangedPixels != 400 {
		t.Errorf("changed pixels: cluster %d, page %d; want 400", res.Clusters[0].ChangedPixels, res.ChangedPixels)
	}
	if res.Overlay.Bounds() != view {
		t.Errorf("overlay bounds: got %v, want %v", res.Overlay.Bounds(), view)
	}

	red := color.RGBA{255, 0, 0, 255}
	for _, p := range []image.Point{{190, 190}, {210, 190}, {190, 210}, {230, 210}, {210, 230}} {
		if got := res.Overlay.RGBAAt(p.X, p.Y); got != red {
			t.Errorf("outline at %v: got %v, want red", p, got)
		}
	}
	if got := res.Overlay.RGBAAt(210, 210); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("overlay inside: got %v, want the changed content", got)
	}
	if got := res.Overlay.RGBAAt(110, 110); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("overlay away from the change: got %v, want white", got)
	}
}

func TestComparePages_ChangedPixelsCountedOnce(t *testing.T) {
	a := createTestImage(200, 200, color.White)
	// Two bars that merge through padding form one L-shaped cluster whose
	// bounds enclose a separate dot.
	b := withSquares(a,
		image.Rect(40, 20, 140, 25),
		image.Rect(20, 40, 25, 140),
		image.Rect(100, 100, 105, 105),
	)

	res, err := ComparePages(a, b, DefaultOptions())
	if err != nil {
		t.Fatalf("ComparePages failed: %v", err)
	}
	if res.Regions != 3 || len(res.Clusters) != 2 {
		t.Fatalf("got %d regions, %d clusters; want 3, 2", res.Regions, len(res.Clusters))
	}
	if res.ChangedPixels != 1025 {
		t.Errorf("page changed pixels: got %d, want 1025", res.ChangedPixels)
	}

	sum := 0
	for _, c := range res.Clusters {
		sum += c.ChangedPixels
	}
	if sum != 1050 {
		t.Errorf("cluster changed pixels: got %d, want 1050 with the dot in both", sum)
	}
}

func TestComparePages_PaddingDrivesMerge(t *testing.T) {
	a := createTestImage(300, 300, color.White)
	b := withSquares(a, image.Rect(50, 50, 60, 60), image.Rect(75, 50, 85, 60))

	tests := []struct {
		name    string
		padding int
		want    int
	}{
		{"default padding merges", 10, 1},
		{"no padding keeps apart", 0, 2},
		{"small padding keeps apart", 7, 2},
		{"padding 8 merges", 8, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Padding = tt.padding
			res, err := ComparePages(a, b, opts)
			if err != nil {
				t.Fatalf("ComparePages failed: %v", err)
			}
			if len(res.Clusters) != tt.want {
				t.Errorf("clusters: got %d, want %d", len(res.Clusters), tt.want)
			}
			if res.Regions != 2 {
				t.Errorf("regions: got %d, want 2", res.Regions)
			}
		})
	}
}

func TestComparePages_Errors(t *testing.T) {
	a := createTestImage(10, 10, color.White)

	_, err := ComparePages(a, createTestImage(12, 10, color.White), DefaultOptions())
	if !errors.Is(err, detection.ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}

	opts := DefaultOptions()
	opts.Padding = -1
	_, err = ComparePages(a, a, opts)
	if !errors.Is(err, detection.ErrNegativePadding) {
		t.Errorf("got %v, want ErrNegativePadding", err)
	}
}

type stubFinder struct {
	regions []detection.Rect
}

func (f stubFinder) FindChanges(a, b image.Image, padding int) (*detection.Changes, error) {
	return &detection.Changes{Mask: image.NewGray(a.Bounds()), Regions: f.regions}, nil
}

func TestComparePages_CustomFinder(t *testing.T) {
	img := createTestImage(100, 100, color.White)
	opts := DefaultOptions()
	opts.Finder = stubFinder{regions: []detection.Rect{
		{X: 0, Y: 0, Width: 10, Height: 10},
		{X: 5, Y: 5, Width: 10, Height: 10},
		{X: 50, Y: 50, Width: 5, Height: 5},
	}}

	res, err := ComparePages(img, img, opts)
	if err != nil {
		t.Fatalf("ComparePages failed: %v", err)
	}
	if res.Regions != 3 || len(res.Clusters) != 2 {
		t.Errorf("got %d regions, %d clusters; want 3, 2", res.Regions, len(res.Clusters))
	}
}

type recordingAnnotator struct {
	calls atomic.Int32
	err   error
}

func (a *recordingAnnotator) Annotate(ctx context.Context, img image.Image, clusters []detection.Cluster) ([]string, error) {
	a.calls.Add(1)
	if a.err != nil {
		return nil, a.err
	}
	out := make([]string, len(clusters))
	for i := range clusters {
		out[i] = "text"
	}
	return out, nil
}

func TestCompareDocuments(t *testing.T) {
	white := createTestImage(120, 120, color.White)
	changed := withSquares(white, image.Rect(40, 40, 60, 60))

	pagesA := []image.Image{white, white, white}
	pagesB := []image.Image{white, changed}

	var mu sync.Mutex
	seen := make(map[int]bool)
	sink := func(ctx context.Context, r *PageResult) error {
		mu.Lock()
		defer mu.Unlock()
		seen[r.Page] = true
		if r.Err == nil && r.Overlay == nil {
			t.Errorf("page %d: sink should receive the overlay", r.Page)
		}
		return nil
	}

	opts := DefaultOptions()
	opts.Workers = 2
	results, err := CompareDocuments(context.Background(), pagesA, pagesB, opts, sink)
	if err != nil {
		t.Fatalf("CompareDocuments failed: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("results: got %d, want 3", len(results))
	}
	wantClusters := []int{0, 1, 0}
	for i, r := range results {
		if r.Page != i+1 {
			t.Errorf("result %d: Page %d", i, r.Page)
		}
		if r.Err != nil {
			t.Errorf("page %d: unexpected error %v", r.Page, r.Err)
		}
		if len(r.Clusters) != wantClusters[i] {
			t.Errorf("page %d: got %d clusters, want %d", r.Page, len(r.Clusters), wantClusters[i])
		}
		if r.Overlay != nil || r.Original != nil {
			t.Errorf("page %d: images should be released after the sink", r.Page)
		}
	}
	if len(seen) != 3 {
		t.Errorf("sink saw %d pages, want 3", len(seen))
	}
}

func TestCompareDocuments_PageFailureRecorded(t *testing.T) {
	small := createTestImage(50, 50, color.White)
	large := createTestImage(60, 50, color.White)

	results, err := CompareDocuments(context.Background(),
		[]image.Image{small, small}, []image.Image{small, large}, DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("CompareDocuments failed: %v", err)
	}

	if results[0].Err != nil {
		t.Errorf("page 1: unexpected error %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, detection.ErrDimensionMismatch) {
		t.Errorf("page 2: got %v, want ErrDimensionMismatch", results[1].Err)
	}
	if results[1].Overlay != nil {
		t.Error("failed page must not carry an overlay")
	}
	if results[1].Original == nil {
		t.Error("without a sink, page images are kept")
	}
}

func TestCompareDocuments_SinkError(t *testing.T) {
	img := createTestImage(20, 20, color.White)
	boom := errors.New("disk full")

	_, err := CompareDocuments(context.Background(),
		[]image.Image{img, img}, []image.Image{img, img}, DefaultOptions(),
		func(ctx context.Context, r *PageResult) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want sink error", err)
	}
}

func TestCompareDocuments_Cancelled(t *testing.T) {
	img := createTestImage(20, 20, color.White)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CompareDocuments(ctx, []image.Image{img}, []image.Image{img}, DefaultOptions(), nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestCompareDocuments_Annotator(t *testing.T) {
	white := createTestImage(100, 100, color.White)
	changed := withSquares(white, image.Rect(10, 10, 20, 20), image.Rect(70, 70, 80, 80))

	ann := &recordingAnnotator{}
	opts := DefaultOptions()
	opts.Annotator = ann

	results, err := CompareDocuments(context.Background(),
		[]image.Image{white, white}, []image.Image{white, changed}, opts, nil)
	if err != nil {
		t.Fatalf("CompareDocuments failed: %v", err)
	}

	if got := ann.calls.Load(); got != 1 {
		t.Errorf("annotator calls: got %d, want 1 (unchanged pages are skipped)", got)
	}
	if len(results[1].ClusterText) != 2 {
		t.Errorf("cluster text: got %v", results[1].ClusterText)
	}
}

func TestCompareDocuments_AnnotatorErrorNotFatal(t *testing.T) {
	white := createTestImage(60, 60, color.White)
	changed := withSquares(white, image.Rect(10, 10, 20, 20))

	opts := DefaultOptions()
	opts.Annotator = &recordingAnnotator{err: errors.New("tesseract missing")}

	results, err := CompareDocuments(context.Background(),
		[]image.Image{white}, []image.Image{changed}, opts, nil)
	if err != nil {
		t.Fatalf("CompareDocuments failed: %v", err)
	}
	if results[0].Err != nil {
		t.Errorf("annotation failure should not fail the page: %v", results[0].Err)
	}
	if len(results[0].Clusters) != 1 || results[0].ClusterText != nil {
		t.Errorf("got clusters %d, text %v", len(results[0].Clusters), results[0].ClusterText)
	}
}
