package detection

import (
	"errors"
	"image"
	"image/color"
	"math/rand"
	"testing"
)

func TestDiffMask_IdenticalImages(t *testing.T) {
	img := createPageImage(120, 80, color.White)

	mask, err := DiffMask(img, cloneRGBA(img), MaskOptions{})
	if err != nil {
		t.Fatalf("DiffMask failed: %v", err)
	}

	if got := mask.Bounds(); got != image.Rect(0, 0, 120, 80) {
		t.Errorf("mask bounds: got %v, want (0,0)-(120,80)", got)
	}
	for i, v := range mask.Pix {
		if v != 0 {
			t.Fatalf("pixel %d: got %d, want 0 for identical images", i, v)
		}
	}
}

func TestDiffMask_NoisyImageAgainstItself(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	img := createPageImage(64, 64, color.White)
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}

	mask, err := DiffMask(img, img, MaskOptions{})
	if err != nil {
		t.Fatalf("DiffMask failed: %v", err)
	}
	for _, v := range mask.Pix {
		if v != 0 {
			t.Fatal("comparing an image to itself must yield an empty mask")
		}
	}
}

func TestDiffMask_BlackSquare(t *testing.T) {
	a := createPageImage(300, 300, color.White)
	b := cloneRGBA(a)
	fillRect(b, image.Rect(100, 100, 120, 120), color.Black)

	mask, err := DiffMask(a, b, MaskOptions{})
	if err != nil {
		t.Fatalf("DiffMask failed: %v", err)
	}

	changed := 0
	for y := 0; y < 300; y++ {
		for x := 0; x < 300; x++ {
			v := mask.GrayAt(x, y).Y
			inside := x >= 100 && x < 120 && y >= 100 && y < 120
			if inside && v != 255 {
				t.Fatalf("pixel (%d,%d) inside square should be changed", x, y)
			}
			if !inside && v != 0 {
				t.Fatalf("pixel (%d,%d) outside square should be unchanged", x, y)
			}
			if v == 255 {
				changed++
			}
		}
	}
	if changed != 400 {
		t.Errorf("changed pixels: got %d, want 400", changed)
	}
}

func TestDiffMask_OffsetBounds(t *testing.T) {
	a := createPageImage(50, 50, color.White)
	b := cloneRGBA(a)
	fillRect(b, image.Rect(20, 20, 25, 25), color.Black)

	// Same size, different origin: comparison is positional, not absolute.
	sub := b.SubImage(image.Rect(10, 10, 40, 40))
	base := a.SubImage(image.Rect(0, 0, 30, 30))

	mask, err := DiffMask(base, sub, MaskOptions{})
	if err != nil {
		t.Fatalf("DiffMask failed: %v", err)
	}
	if got := mask.Bounds(); got != sub.Bounds() {
		t.Errorf("mask bounds: got %v, want %v", got, sub.Bounds())
	}
	if mask.GrayAt(22, 22).Y != 255 {
		t.Error("pixel (22,22) of the second image should be changed")
	}
	if mask.GrayAt(10, 10).Y != 0 {
		t.Error("pixel (10,10) should be unchanged")
	}

	blurred, err := DiffMask(base, sub, MaskOptions{BlurSigma: 1})
	if err != nil {
		t.Fatalf("DiffMask with blur failed: %v", err)
	}
	if got := blurred.Bounds(); got != sub.Bounds() {
		t.Errorf("blurred mask bounds: got %v, want %v", got, sub.Bounds())
	}
	if blurred.GrayAt(22, 22).Y != 255 {
		t.Error("blurred mask should keep the change at (22,22)")
	}
}

func TestDiffMask_Errors(t *testing.T) {
	tests := []struct {
		name    string
		a, b    image.Image
		opts    MaskOptions
		wantErr error
	}{
		{
			"width mismatch",
			createPageImage(100, 100, color.White),
			createPageImage(101, 100, color.White),
			MaskOptions{},
			ErrDimensionMismatch,
		},
		{
			"height mismatch",
			createPageImage(100, 100, color.White),
			createPageImage(100, 99, color.White),
			MaskOptions{},
			ErrDimensionMismatch,
		},
		{
			"empty first",
			image.NewRGBA(image.Rect(0, 0, 0, 0)),
			createPageImage(10, 10, color.White),
			MaskOptions{},
			ErrEmptyInput,
		},
		{
			"empty both",
			image.NewRGBA(image.Rect(0, 0, 0, 10)),
			image.NewRGBA(image.Rect(0, 0, 0, 10)),
			MaskOptions{},
			ErrEmptyInput,
		},
		{
			"threshold too high",
			createPageImage(10, 10, color.White),
			createPageImage(10, 10, color.White),
			MaskOptions{Threshold: intPtr(256)},
			ErrInvalidThreshold,
		},
		{
			"threshold negative",
			createPageImage(10, 10, color.White),
			createPageImage(10, 10, color.White),
			MaskOptions{Threshold: intPtr(-1)},
			ErrInvalidThreshold,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DiffMask(tt.a, tt.b, tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDiffMask_ThresholdOverride(t *testing.T) {
	a := createPageImage(40, 40, color.White)
	b := cloneRGBA(a)
	// Light gray: difference of 255-200 = 55
	fillRect(b, image.Rect(5, 5, 10, 10), color.Gray{Y: 200})
	// Black: difference of 255
	fillRect(b, image.Rect(25, 25, 30, 30), color.Black)

	tests := []struct {
		name      string
		threshold int
		wantLight bool
		wantDark  bool
	}{
		{"low threshold keeps both", 10, true, true},
		{"threshold at difference excludes it", 55, false, true},
		{"high threshold drops light change", 100, false, true},
		{"max threshold drops everything", 255, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask, err := DiffMask(a, b, MaskOptions{Threshold: intPtr(tt.threshold)})
			if err != nil {
				t.Fatalf("DiffMask failed: %v", err)
			}
			if got := mask.GrayAt(7, 7).Y == 255; got != tt.wantLight {
				t.Errorf("light change: got %v, want %v", got, tt.wantLight)
			}
			if got := mask.GrayAt(27, 27).Y == 255; got != tt.wantDark {
				t.Errorf("dark change: got %v, want %v", got, tt.wantDark)
			}
		})
	}
}

func TestDiffMask_BlurKeepsIdenticalEmpty(t *testing.T) {
	a := createPageImage(60, 60, color.White)
	fillRect(a, image.Rect(10, 10, 30, 12), color.Black)

	mask, err := DiffMask(a, cloneRGBA(a), MaskOptions{BlurSigma: 1.5})
	if err != nil {
		t.Fatalf("DiffMask failed: %v", err)
	}
	for _, v := range mask.Pix {
		if v != 0 {
			t.Fatal("blurred identical images must yield an empty mask")
		}
	}
}

func TestDiffMask_BlurStillDetectsChange(t *testing.T) {
	a := createPageImage(80, 80, color.White)
	b := cloneRGBA(a)
	fillRect(b, image.Rect(30, 30, 50, 50), color.Black)

	mask, err := DiffMask(a, b, MaskOptions{BlurSigma: 1})
	if err != nil {
		t.Fatalf("DiffMask failed: %v", err)
	}
	if mask.GrayAt(40, 40).Y != 255 {
		t.Error("center of the changed square should remain changed after blur")
	}
	if mask.GrayAt(2, 2).Y != 0 {
		t.Error("far corner should remain unchanged after blur")
	}
}

func TestOtsuThreshold(t *testing.T) {
	tests := []struct {
		name string
		bins map[int]int
		want uint8
	}{
		{"empty histogram", map[int]int{}, 0},
		{"all zero difference", map[int]int{0: 1000}, 0},
		{"single non-zero level", map[int]int{50: 300}, 50},
		{"two levels 0 and 255", map[int]int{0: 900, 255: 100}, 0},
		{"two levels picks lowest maximum", map[int]int{10: 100, 200: 100}, 10},
		{"three clusters", map[int]int{0: 500, 5: 500, 250: 100}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bins := make([]int, 256)
			for v, n := range tt.bins {
				bins[v] = n
			}
			if got := OtsuThreshold(bins); got != tt.want {
				t.Errorf("OtsuThreshold: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOtsuThreshold_SeparatesClasses(t *testing.T) {
	bins := make([]int, 256)
	for v := 0; v < 20; v++ {
		bins[v] = 100
	}
	for v := 180; v < 220; v++ {
		bins[v] = 50
	}

	got := OtsuThreshold(bins)
	if got < 19 || got >= 180 {
		t.Errorf("threshold %d does not separate the two populations", got)
	}
}

func TestOtsuThreshold_ShortHistogram(t *testing.T) {
	if got := OtsuThreshold([]int{5, 0, 5}); got != 0 {
		t.Errorf("OtsuThreshold: got %d, want 0", got)
	}
	if got := OtsuThreshold(nil); got != 0 {
		t.Errorf("OtsuThreshold(nil): got %d, want 0", got)
	}
}

func intPtr(v int) *int { return &v }
