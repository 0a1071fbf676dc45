package snapshot

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
)

// Builder accumulates nodes and edges for a Snapshot. A Builder is not safe
// for concurrent use.
type Builder[K comparable] struct {
	ids   []K
	index map[K]int
	adj   []map[int]struct{}
	edges int
	loops int
}

// NewBuilder creates an empty builder.
func NewBuilder[K comparable]() *Builder[K] {
	return &Builder[K]{
		index: make(map[K]int),
	}
}

// AddNode inserts k if absent and returns its internal ID.
func (b *Builder[K]) AddNode(k K) int {
	if id, ok := b.index[k]; ok {
		return id
	}
	id := len(b.ids)
	b.ids = append(b.ids, k)
	b.index[k] = id
	b.adj = append(b.adj, make(map[int]struct{}))
	return id
}

// AddEdge inserts the undirected edge u-v, adding missing endpoints.
// Duplicate edges collapse into one. A self-loop adds the node but no edge;
// it returns false in that case.
func (b *Builder[K]) AddEdge(u, v K) bool {
	uid := b.AddNode(u)
	vid := b.AddNode(v)
	if uid == vid {
		b.loops++
		return false
	}
	if _, dup := b.adj[uid][vid]; dup {
		return true
	}
	b.adj[uid][vid] = struct{}{}
	b.adj[vid][uid] = struct{}{}
	b.edges++
	return true
}

// DroppedSelfLoops returns how many self-loop edges were discarded.
func (b *Builder[K]) DroppedSelfLoops() int {
	return b.loops
}

// Build freezes the accumulated graph. The builder may keep being used; later
// additions do not affect snapshots already built.
func (b *Builder[K]) Build() *Snapshot[K] {
	s := &Snapshot[K]{
		ids:       slices.Clone(b.ids),
		index:     make(map[K]int, len(b.ids)),
		neighbors: make([][]int, len(b.ids)),
		edges:     b.edges,
		g:         simple.NewUndirectedGraph(),
	}

	for id, k := range s.ids {
		s.index[k] = id
		s.g.AddNode(simple.Node(int64(id)))
	}

	for id, set := range b.adj {
		nbrs := make([]int, 0, len(set))
		for n := range set {
			nbrs = append(nbrs, n)
		}
		slices.Sort(nbrs)
		s.neighbors[id] = nbrs

		for _, n := range nbrs {
			if n > id {
				s.g.SetEdge(simple.Edge{F: simple.Node(int64(id)), T: simple.Node(int64(n))})
			}
		}
	}

	return s
}
