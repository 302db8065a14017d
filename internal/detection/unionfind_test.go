package detection

import "testing"

func TestDisjointSet_LazyKeys(t *testing.T) {
	ds := NewDisjointSet()

	for _, k := range []int{0, 7, -3, 1000} {
		if got := ds.Find(k); got != k {
			t.Errorf("Find(%d) on fresh set: got %d, want %d", k, got, k)
		}
	}
	if ds.Connected(1, 2) {
		t.Error("unseen keys must not be connected")
	}
}

func TestDisjointSet_Union(t *testing.T) {
	tests := []struct {
		name      string
		unions    [][2]int
		connected [][2]int
		separate  [][2]int
	}{
		{
			"single union",
			[][2]int{{1, 2}},
			[][2]int{{1, 2}, {2, 1}},
			[][2]int{{1, 3}},
		},
		{
			"transitive",
			[][2]int{{1, 2}, {2, 3}},
			[][2]int{{1, 3}},
			nil,
		},
		{
			"two groups joined",
			[][2]int{{1, 2}, {3, 4}, {2, 4}},
			[][2]int{{1, 3}, {1, 4}, {2, 3}},
			[][2]int{{1, 5}},
		},
		{
			"self union is noop",
			[][2]int{{5, 5}},
			[][2]int{{5, 5}},
			[][2]int{{5, 6}},
		},
		{
			"repeated union",
			[][2]int{{1, 2}, {1, 2}, {2, 1}},
			[][2]int{{1, 2}},
			[][2]int{{2, 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := NewDisjointSet()
			for _, u := range tt.unions {
				ds.Union(u[0], u[1])
			}
			for _, c := range tt.connected {
				if !ds.Connected(c[0], c[1]) {
					t.Errorf("expected %d and %d connected", c[0], c[1])
				}
			}
			for _, s := range tt.separate {
				if ds.Connected(s[0], s[1]) {
					t.Errorf("expected %d and %d separate", s[0], s[1])
				}
			}
		})
	}
}

func TestDisjointSet_UnionAttachesUnderSecond(t *testing.T) {
	ds := NewDisjointSet()
	ds.Union(1, 2)
	if got := ds.Find(1); got != 2 {
		t.Errorf("Find(1) after Union(1, 2): got %d, want 2", got)
	}
}

func TestDisjointSet_PathCompression(t *testing.T) {
	ds := NewDisjointSet()
	// Builds the chain 0 -> 1 -> 2 -> ... -> 9
	for i := 0; i < 9; i++ {
		ds.Union(i, i+1)
	}

	root := ds.Find(0)
	if root != 9 {
		t.Fatalf("root: got %d, want 9", root)
	}
	for i := 0; i < 9; i++ {
		if p := ds.parent[i]; p != root {
			t.Errorf("parent of %d after Find: got %d, want %d", i, p, root)
		}
	}
}

func TestDisjointSet_LongChain(t *testing.T) {
	ds := NewDisjointSet()
	const n = 100000
	for i := 0; i < n-1; i++ {
		ds.Union(i, i+1)
	}
	if !ds.Connected(0, n-1) {
		t.Error("ends of a long chain should be connected")
	}
}
