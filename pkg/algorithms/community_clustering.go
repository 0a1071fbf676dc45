package algorithms

// ClusteringCoefficient computes the local clustering coefficient of every
// node, indexed by internal node ID.
// Measures how close a node's neighbors are to being a complete graph;
// nodes with fewer than two neighbors have coefficient 0.
func ClusteringCoefficient(g Graph) []float64 {
	return CountTriangles(g).ClusteringCoefficients
}

// LocalClustering computes the clustering coefficient of a single node.
func LocalClustering(g Graph, id int) float64 {
	k := g.Degree(id)
	if k < 2 {
		return 0.0
	}
	return float64(trianglesAt(g, id)) / float64(k*(k-1)/2)
}

// AverageClusteringCoefficient computes the average clustering coefficient
func AverageClusteringCoefficient(g Graph) float64 {
	coefficients := ClusteringCoefficient(g)
	if len(coefficients) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, coef := range coefficients {
		sum += coef
	}

	return sum / float64(len(coefficients))
}
