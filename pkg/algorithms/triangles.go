package algorithms

// TriangleCountResult holds triangle counting results including per-node counts,
// global count and clustering coefficients. Slices are indexed by internal node ID.
type TriangleCountResult struct {
	PerNode                []int
	GlobalCount            int
	ClusteringCoefficients []float64
}

// CountTriangles counts triangles in the graph.
// For each node u it intersects u's sorted neighbor list with the list of every
// neighbor v; each common neighbor w closes the triangle (u, v, w). Each
// triangle at u is seen twice (via v and via w). GlobalCount = sum(PerNode) / 3.
// Clustering coefficients are computed in the same pass.
func CountTriangles(g Graph) *TriangleCountResult {
	n := g.Order()

	perNode := make([]int, n)
	for u := 0; u < n; u++ {
		perNode[u] = trianglesAt(g, u)
	}

	total := 0
	for _, c := range perNode {
		total += c
	}

	coefficients := make([]float64, n)
	for u := 0; u < n; u++ {
		k := g.Degree(u)
		if k < 2 {
			coefficients[u] = 0.0
			continue
		}
		coefficients[u] = float64(perNode[u]) / float64(k*(k-1)/2)
	}

	return &TriangleCountResult{
		PerNode:                perNode,
		GlobalCount:            total / 3,
		ClusteringCoefficients: coefficients,
	}
}

// trianglesAt counts the triangles through u: for every neighbor v, the
// common neighbors of u and v, counted once per unordered pair {v, w}.
func trianglesAt(g Graph, u int) int {
	nu := g.Neighbors(u)
	if len(nu) < 2 {
		return 0
	}

	count := 0
	for _, v := range nu {
		count += intersectCount(nu, g.Neighbors(v))
	}
	return count / 2
}

// intersectCount returns |a ∩ b| for ascending slices.
func intersectCount(a, b []int) int {
	count := 0
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			count++
			i++
			j++
		}
	}
	return count
}
