package algorithms

import (
	"math"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
)

// Modularity scores partition p on g (resolution 1). The score depends only
// on cell membership, not on the label values. A graph without nodes or
// without edges scores 0.
func Modularity(g Graph, p Partition) float64 {
	return ModularityResolution(g, p, 1.0)
}

// ModularityResolution is Modularity with an explicit resolution parameter.
func ModularityResolution(g Graph, p Partition, resolution float64) float64 {
	if g.Order() == 0 || g.Size() == 0 || p.Len() == 0 {
		return 0.0
	}

	ug := g.Undirected()
	cells := p.Cells()
	comms := make([][]graph.Node, len(cells))
	for i, cell := range cells {
		nodes := make([]graph.Node, len(cell))
		for j, id := range cell {
			nodes[j] = ug.Node(int64(id))
		}
		comms[i] = nodes
	}

	return community.Q(ug, comms, resolutionOrDefault(resolution))
}

// Round4 rounds q to four decimal places.
func Round4(q float64) float64 {
	return math.Round(q*1e4) / 1e4
}
