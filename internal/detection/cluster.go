package detection

import (
	"image"
	"sort"
)

// SweepThreshold is the rectangle count above which candidate pairs are
// generated by a sweep over X instead of enumerating every pair. Both paths
// yield the same clusters.
const SweepThreshold = 64

// Cluster is a group of rectangles connected by a chain of pairwise overlaps.
type Cluster struct {
	// Bounds is the smallest rectangle enclosing every member. It uses the
	// coordinates of the rectangles it was built from; for FindRegions and
	// RegionFinder output those are the changed image's own pixel coordinates,
	// the same space DrawOutlines and Crop work in.
	Bounds Rect `json:"bounds"`

	// Members are the input rectangles of this cluster, in input order.
	Members []Rect `json:"members"`

	// ChangedPixels is the number of changed mask pixels inside Bounds.
	// Only set by CountChanged. Mask pixels inside the bounds of two clusters
	// count toward both.
	ChangedPixels int `json:"changed_pixels,omitempty"`
}

// ClusterRects partitions rects into clusters of (transitively) overlapping
// rectangles and computes one enclosing rectangle per cluster.
//
// Parameters:
//   - rects: Rectangles to group, typically padded regions from FindRegions.
//
// Returns:
//   - []Cluster: Every input rectangle belongs to exactly one cluster. Clusters
//     are ordered by the lowest input index they contain.
//
// # Algorithm
//
//  1. One DisjointSet entry per rectangle index
//  2. For every pair i < j where Overlaps(rects[i], rects[j]), union i and j
//  3. Group indices by final representative
//  4. Enclose each group: min X/Y, max right/bottom
//
// Overlap is strict: rectangles that merely share an edge stay apart.
// Membership is independent of input order.
//
// # Performance
//
// Pair enumeration is quadratic. Above SweepThreshold rectangles, candidates
// are produced by sorting on X and sweeping, which skips pairs that are
// horizontally disjoint.
func ClusterRects(rects []Rect) []Cluster {
	ds := NewDisjointSet()
	forEachOverlap(rects, ds.Union)

	order := make([]int, 0)
	groups := make(map[int][]Rect)
	for i, r := range rects {
		root := ds.Find(i)
		if _, ok := groups[root]; !ok {
			order = append(order, root)
		}
		groups[root] = append(groups[root], r)
	}

	clusters := make([]Cluster, 0, len(order))
	for _, root := range order {
		members := groups[root]
		clusters = append(clusters, Cluster{
			Bounds:  Enclose(members),
			Members: members,
		})
	}
	return clusters
}

// forEachOverlap calls fn(i, j) with i < j for every overlapping pair.
func forEachOverlap(rects []Rect, fn func(i, j int)) {
	if len(rects) <= SweepThreshold {
		for i := 0; i < len(rects); i++ {
			for j := i + 1; j < len(rects); j++ {
				if Overlaps(rects[i], rects[j]) {
					fn(i, j)
				}
			}
		}
		return
	}

	idx := make([]int, len(rects))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return rects[idx[a]].X < rects[idx[b]].X
	})

	for a, i := range idx {
		for _, j := range idx[a+1:] {
			// Sorted by X: once j starts at or past i's right edge, so do the rest.
			if rects[j].X >= rects[i].Right() {
				break
			}
			if Overlaps(rects[i], rects[j]) {
				fn(min(i, j), max(i, j))
			}
		}
	}
}

// ClusterBounds returns the enclosing rectangle of every cluster as image.Rectangle,
// ready for drawing.
func ClusterBounds(clusters []Cluster) []image.Rectangle {
	out := make([]image.Rectangle, len(clusters))
	for i, c := range clusters {
		out[i] = c.Bounds.Rectangle()
	}
	return out
}

// CountChanged sets ChangedPixels on each cluster from mask. Cluster bounds
// and mask share one coordinate space, as produced by a RegionFinder.
func CountChanged(mask *image.Gray, clusters []Cluster) {
	mb := mask.Bounds()
	for i := range clusters {
		area := clusters[i].Bounds.Rectangle().Intersect(mb)
		n := 0
		for y := area.Min.Y; y < area.Max.Y; y++ {
			off := mask.PixOffset(area.Min.X, y)
			for _, v := range mask.Pix[off : off+area.Dx()] {
				if v != 0 {
					n++
				}
			}
		}
		clusters[i].ChangedPixels = n
	}
}

// CountMask returns the number of changed pixels in mask.
func CountMask(mask *image.Gray) int {
	n := 0
	for y := mask.Rect.Min.Y; y < mask.Rect.Max.Y; y++ {
		off := mask.PixOffset(mask.Rect.Min.X, y)
		for _, v := range mask.Pix[off : off+mask.Rect.Dx()] {
			if v != 0 {
				n++
			}
		}
	}
	return n
}
