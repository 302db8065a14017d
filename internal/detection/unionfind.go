package detection

// DisjointSet is a union-find forest over integer keys.
//
// Keys are materialized lazily: a key that has never been seen is its own
// representative. Find compresses paths; Union attaches the root of x under
// the root of y without rank tracking, which is sufficient for the small
// number of regions found on a page.
//
// A DisjointSet is not safe for concurrent use.
type DisjointSet struct {
	parent map[int]int
}

// NewDisjointSet creates an empty forest.
func NewDisjointSet() *DisjointSet {
	return &DisjointSet{parent: make(map[int]int)}
}

// Find returns the representative of x.
func (d *DisjointSet) Find(x int) int {
	root, ok := d.parent[x]
	if !ok {
		d.parent[x] = x
		return x
	}
	for {
		next := d.parent[root]
		if next == root {
			break
		}
		root = next
	}

	for x != root {
		next := d.parent[x]
		d.parent[x] = root
		x = next
	}
	return root
}

// Union merges the sets containing x and y.
func (d *DisjointSet) Union(x, y int) {
	rx, ry := d.Find(x), d.Find(y)
	if rx != ry {
		d.parent[rx] = ry
	}
}

// Connected reports whether x and y share a representative.
func (d *DisjointSet) Connected(x, y int) bool {
	return d.Find(x) == d.Find(y)
}
