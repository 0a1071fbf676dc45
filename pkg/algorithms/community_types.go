package algorithms

import (
	"cmp"
	"fmt"
	"slices"
)

// Community represents one cell of a partition
type Community struct {
	Label   int
	Nodes   []int
	Size    int
	Density float64 // Edge density within community
}

// Partition assigns every node of a graph to exactly one community label.
// Labels are snapshot-local: the same integer in two partitions carries no
// identity.
type Partition struct {
	labels []int
}

// NewPartition wraps a label per internal node ID. Labels must be
// non-negative.
func NewPartition(labels []int) Partition {
	return Partition{labels: slices.Clone(labels)}
}

// PartitionFromCells labels cells 0..k-1 in the order given. Every node in
// [0, n) must appear in exactly one cell.
func PartitionFromCells(n int, cells [][]int) (Partition, error) {
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	for label, cell := range cells {
		for _, id := range cell {
			if id < 0 || id >= n {
				return Partition{}, fmt.Errorf("%w: node %d out of range [0, %d)", ErrInvalidPartition, id, n)
			}
			if labels[id] != -1 {
				return Partition{}, fmt.Errorf("%w: node %d in cells %d and %d", ErrInvalidPartition, id, labels[id], label)
			}
			labels[id] = label
		}
	}

	for id, label := range labels {
		if label == -1 {
			return Partition{}, fmt.Errorf("%w: node %d not covered", ErrInvalidPartition, id)
		}
	}

	return Partition{labels: labels}, nil
}

// Len returns the number of labelled nodes.
func (p Partition) Len() int {
	return len(p.labels)
}

// Label returns the label of internal node ID id.
func (p Partition) Label(id int) int {
	return p.labels[id]
}

// Labels returns a copy of the per-node labels.
func (p Partition) Labels() []int {
	return slices.Clone(p.labels)
}

// Cells groups node IDs by label. Cells are ordered by ascending label and
// contain node IDs in ascending order; labels with no members produce no cell.
func (p Partition) Cells() [][]int {
	byLabel := make(map[int][]int)
	for id, label := range p.labels {
		byLabel[label] = append(byLabel[label], id)
	}

	keys := make([]int, 0, len(byLabel))
	for label := range byLabel {
		keys = append(keys, label)
	}
	slices.Sort(keys)

	cells := make([][]int, len(keys))
	for i, label := range keys {
		cells[i] = byLabel[label]
	}
	return cells
}

// NumCells returns the number of distinct labels in use.
func (p Partition) NumCells() int {
	seen := make(map[int]struct{})
	for _, label := range p.labels {
		seen[label] = struct{}{}
	}
	return len(seen)
}

// Communities describes each cell of p on g, ordered by ascending label.
func Communities(g Graph, p Partition) []*Community {
	byLabel := make(map[int][]int)
	for id, label := range p.labels {
		byLabel[label] = append(byLabel[label], id)
	}

	communities := make([]*Community, 0, len(byLabel))
	for label, nodes := range byLabel {
		communities = append(communities, &Community{
			Label:   label,
			Nodes:   nodes,
			Size:    len(nodes),
			Density: density(g, p, label, nodes),
		})
	}
	slices.SortFunc(communities, func(a, b *Community) int {
		return cmp.Compare(a.Label, b.Label)
	})

	return communities
}

// density is internal edges over possible internal edges.
func density(g Graph, p Partition, label int, nodes []int) float64 {
	k := len(nodes)
	if k < 2 {
		return 0.0
	}

	internal := 0
	for _, u := range nodes {
		for _, v := range g.Neighbors(u) {
			if v > u && p.labels[v] == label {
				internal++
			}
		}
	}

	return float64(internal) / float64(k*(k-1)/2)
}

// canonicalCells sorts node IDs inside each cell, then orders cells by size
// descending with ties broken by smallest member. Partitioners use it so the
// label assignment does not depend on map iteration order.
func canonicalCells(cells [][]int) [][]int {
	cells = slices.DeleteFunc(cells, func(c []int) bool { return len(c) == 0 })
	for _, c := range cells {
		slices.Sort(c)
	}
	slices.SortStableFunc(cells, func(a, b []int) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return cmp.Compare(a[0], b[0])
	})
	return cells
}
