package detection

import (
	"encoding/json"
	"image"
	"testing"
)

func TestOverlaps(t *testing.T) {
	base := Rect{X: 0, Y: 0, Width: 10, Height: 10}

	tests := []struct {
		name  string
		other Rect
		want  bool
	}{
		{"identical", base, true},
		{"partial overlap", Rect{X: 5, Y: 5, Width: 10, Height: 10}, true},
		{"contained", Rect{X: 2, Y: 2, Width: 2, Height: 2}, true},
		{"containing", Rect{X: -5, Y: -5, Width: 30, Height: 30}, true},
		{"touching right edge", Rect{X: 10, Y: 0, Width: 5, Height: 10}, false},
		{"touching bottom edge", Rect{X: 0, Y: 10, Width: 10, Height: 5}, false},
		{"touching left edge", Rect{X: -5, Y: 0, Width: 5, Height: 10}, false},
		{"touching corner", Rect{X: 10, Y: 10, Width: 5, Height: 5}, false},
		{"one pixel overlap", Rect{X: 9, Y: 9, Width: 5, Height: 5}, true},
		{"disjoint", Rect{X: 50, Y: 50, Width: 5, Height: 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(base, tt.other); got != tt.want {
				t.Errorf("Overlaps(base, %+v): got %v, want %v", tt.other, got, tt.want)
			}
			if got := Overlaps(tt.other, base); got != tt.want {
				t.Errorf("Overlaps(%+v, base): got %v, want %v", tt.other, got, tt.want)
			}
		})
	}
}

func TestRect_Pad(t *testing.T) {
	r := Rect{X: 5, Y: 5, Width: 10, Height: 20}

	if got := r.Pad(0); got != r {
		t.Errorf("Pad(0): got %+v, want %+v", got, r)
	}
	want := Rect{X: -5, Y: -5, Width: 30, Height: 40}
	if got := r.Pad(10); got != want {
		t.Errorf("Pad(10): got %+v, want %+v", got, want)
	}
}

func TestRect_Conversions(t *testing.T) {
	ir := image.Rect(-3, 4, 7, 20)
	r := FromRectangle(ir)

	if r != (Rect{X: -3, Y: 4, Width: 10, Height: 16}) {
		t.Errorf("FromRectangle: got %+v", r)
	}
	if r.Right() != 7 || r.Bottom() != 20 {
		t.Errorf("edges: got right=%d bottom=%d", r.Right(), r.Bottom())
	}
	if got := r.Rectangle(); got != ir {
		t.Errorf("Rectangle: got %v, want %v", got, ir)
	}
}

func TestEnclose(t *testing.T) {
	tests := []struct {
		name  string
		rects []Rect
		want  Rect
	}{
		{"empty", nil, Rect{}},
		{"single", []Rect{{X: 1, Y: 2, Width: 3, Height: 4}}, Rect{X: 1, Y: 2, Width: 3, Height: 4}},
		{
			"two apart",
			[]Rect{{X: 0, Y: 0, Width: 5, Height: 5}, {X: 20, Y: 30, Width: 5, Height: 5}},
			Rect{X: 0, Y: 0, Width: 25, Height: 35},
		},
		{
			"negative origin",
			[]Rect{{X: -10, Y: 5, Width: 5, Height: 5}, {X: 0, Y: -2, Width: 1, Height: 1}},
			Rect{X: -10, Y: -2, Width: 11, Height: 12},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Enclose(tt.rects); got != tt.want {
				t.Errorf("Enclose: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRect_JSON(t *testing.T) {
	data, err := json.Marshal(Rect{X: 1, Y: 2, Width: 3, Height: 4})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"x":1,"y":2,"width":3,"height":4}`
	if string(data) != want {
		t.Errorf("JSON: got %s, want %s", data, want)
	}
}
