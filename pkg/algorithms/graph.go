package algorithms

import "gonum.org/v1/gonum/graph"

// Graph is the read-only view the algorithms in this package operate on.
// Node IDs are dense in [0, Order()) and Neighbors returns them sorted
// ascending. snapshot.Snapshot satisfies it for every node key type.
type Graph interface {
	Order() int
	Size() int
	Degree(id int) int
	Neighbors(id int) []int
	Adjacent(u, v int) bool
	Undirected() graph.Undirected
}
