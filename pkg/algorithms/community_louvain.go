package algorithms

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/graph/community"
)

// Louvain partitions with gonum's multi-level Louvain modularization. The
// node visiting order is randomized from Seed, so equal seeds give equal
// partitions.
type Louvain struct {
	Resolution float64
	Seed       uint64
}

// Name returns the partitioner name.
func (l *Louvain) Name() string {
	return PartitionerLouvain
}

// Partition runs Louvain on g and returns the communities of the coarsest
// level expanded back to the nodes of g.
func (l *Louvain) Partition(g Graph) (Partition, error) {
	n := g.Order()
	if n == 0 {
		return Partition{labels: []int{}}, nil
	}
	if g.Size() == 0 {
		return singletons(n), nil
	}

	src := rand.NewPCG(l.Seed, l.Seed)
	reduced := community.Modularize(g.Undirected(), resolutionOrDefault(l.Resolution), src)

	comms := reduced.Communities()
	cells := make([][]int, 0, len(comms))
	for _, c := range comms {
		cell := make([]int, len(c))
		for i, node := range c {
			cell[i] = int(node.ID())
		}
		cells = append(cells, cell)
	}

	return PartitionFromCells(n, canonicalCells(cells))
}
