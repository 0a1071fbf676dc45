// Package snapshot provides the immutable graph type consumed by the
// community tracking pipeline.
//
// A Snapshot is an undirected, unweighted simple graph over opaque node
// identifiers. Nodes are assigned dense internal IDs in insertion order, so
// every algorithm downstream can work on slices indexed by ID and iterate
// deterministically.
package snapshot

import (
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Edge is an unordered pair of node identifiers.
type Edge[K comparable] struct {
	Source K
	Target K
}

// Snapshot is one point of a temporal graph sequence. It is safe for
// concurrent reads and is never mutated after Build.
type Snapshot[K comparable] struct {
	ids       []K
	index     map[K]int
	neighbors [][]int
	edges     int
	g         *simple.UndirectedGraph
}

// Order returns the number of nodes. Internal IDs are 0..Order()-1.
func (s *Snapshot[K]) Order() int {
	return len(s.ids)
}

// Size returns the number of undirected edges.
func (s *Snapshot[K]) Size() int {
	return s.edges
}

// Nodes returns the node identifiers in insertion order.
func (s *Snapshot[K]) Nodes() []K {
	return slices.Clone(s.ids)
}

// Node returns the identifier of internal ID id.
func (s *Snapshot[K]) Node(id int) K {
	return s.ids[id]
}

// Index returns the internal ID of node k and whether k is present.
func (s *Snapshot[K]) Index(k K) (int, bool) {
	id, ok := s.index[k]
	return id, ok
}

// Has reports whether node k is present.
func (s *Snapshot[K]) Has(k K) bool {
	_, ok := s.index[k]
	return ok
}

// Degree returns the number of edges incident to internal ID id.
func (s *Snapshot[K]) Degree(id int) int {
	return len(s.neighbors[id])
}

// Neighbors returns the internal IDs adjacent to id in ascending order.
// The returned slice must not be modified.
func (s *Snapshot[K]) Neighbors(id int) []int {
	return s.neighbors[id]
}

// Adjacent reports whether internal IDs u and v share an edge.
func (s *Snapshot[K]) Adjacent(u, v int) bool {
	nbrs := s.neighbors[u]
	if len(s.neighbors[v]) < len(nbrs) {
		nbrs, v = s.neighbors[v], u
	}
	_, found := slices.BinarySearch(nbrs, v)
	return found
}

// Undirected exposes the snapshot as a gonum graph whose node IDs are the
// internal IDs.
func (s *Snapshot[K]) Undirected() graph.Undirected {
	return s.g
}

// Empty returns a snapshot with no nodes.
func Empty[K comparable]() *Snapshot[K] {
	return NewBuilder[K]().Build()
}

// New builds a snapshot from a node list and an edge list. Endpoints of
// edges that are missing from nodes are added after the listed nodes.
func New[K comparable](nodes []K, edges []Edge[K]) *Snapshot[K] {
	b := NewBuilder[K]()
	for _, n := range nodes {
		b.AddNode(n)
	}
	for _, e := range edges {
		b.AddEdge(e.Source, e.Target)
	}
	return b.Build()
}
