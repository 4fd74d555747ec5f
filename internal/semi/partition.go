package semi

// Cluster is a contiguous run of statements, Start and End inclusive.
type Cluster struct {
	Start int
	End   int
}

// Len returns the number of statements in the cluster.
func (c Cluster) Len() int { return c.End - c.Start + 1 }

// Partition splits a statement sequence into adjacent clusters, left to right.
type Partition []Cluster

// Equal reports whether both partitions cut the sequence at the same places.
func (p Partition) Equal(o Partition) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// disjointSet is a union-find over statement indices. Merges are always
// applied to whole index ranges, so every set stays contiguous.
type disjointSet struct {
	parent []int
}

func newDisjointSet(n int) *disjointSet {
	ds := &disjointSet{parent: make([]int, n)}
	for i := range ds.parent {
		ds.parent[i] = i
	}
	return ds
}

func (ds *disjointSet) find(x int) int {
	for ds.parent[x] != x {
		ds.parent[x] = ds.parent[ds.parent[x]]
		x = ds.parent[x]
	}
	return x
}

func (ds *disjointSet) union(a, b int) {
	ra, rb := ds.find(a), ds.find(b)
	if ra == rb {
		return
	}
	// Keep the leftmost index as root.
	if rb < ra {
		ra, rb = rb, ra
	}
	ds.parent[rb] = ra
}

// unionRange merges every index in [from, to].
func (ds *disjointSet) unionRange(from, to int) {
	if ds.find(from) == ds.find(to) {
		return
	}
	for k := from; k < to; k++ {
		ds.union(k, k+1)
	}
}

// partition reads the current sets as a left-to-right partition.
func (ds *disjointSet) partition() Partition {
	var p Partition
	for i := range ds.parent {
		if i == 0 || ds.find(i) != ds.find(i-1) {
			p = append(p, Cluster{Start: i, End: i})
			continue
		}
		p[len(p)-1].End = i
	}
	return p
}
