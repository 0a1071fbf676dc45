package classifier

import (
	"cmp"
	"math/rand/v2"
	"slices"
)

// node is either a split (left >= 0) or a leaf holding class probabilities.
type node struct {
	feature   int
	threshold float64
	left      int
	right     int
	proba     []float64
}

// tree is a binary decision tree stored as a flat node slice; node 0 is the root.
type tree struct {
	nodes []node
}

// leaf walks x down to its leaf and returns the class distribution there.
func (t *tree) leaf(x []float64) []float64 {
	i := 0
	for t.nodes[i].left >= 0 {
		n := &t.nodes[i]
		if x[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
	return t.nodes[i].proba
}

// split is a candidate partition of a node's samples.
type split struct {
	feature   int
	threshold float64
	impurity  float64
}

// grower builds one CART tree with Gini impurity.
type grower struct {
	rows        [][]float64
	labels      []int
	nClasses    int
	nFeatures   int
	maxFeatures int
	cfg         Config
	rng         *rand.Rand
	nodes       []node
}

func (g *grower) build() *tree {
	n := len(g.rows)
	samples := make([]int, n)
	if g.cfg.NoBootstrap {
		for i := range samples {
			samples[i] = i
		}
	} else {
		for i := range samples {
			samples[i] = g.rng.IntN(n)
		}
	}

	g.grow(samples, 0)
	return &tree{nodes: g.nodes}
}

func (g *grower) grow(samples []int, depth int) int {
	idx := len(g.nodes)
	g.nodes = append(g.nodes, node{left: -1, right: -1})

	counts := g.counts(samples)
	if g.isLeaf(samples, counts, depth) {
		g.nodes[idx].proba = normalize(counts, len(samples))
		return idx
	}

	best, ok := g.bestSplit(samples, counts)
	if !ok {
		g.nodes[idx].proba = normalize(counts, len(samples))
		return idx
	}

	left := make([]int, 0, len(samples))
	right := make([]int, 0, len(samples))
	for _, s := range samples {
		if g.rows[s][best.feature] <= best.threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}

	l := g.grow(left, depth+1)
	r := g.grow(right, depth+1)
	g.nodes[idx] = node{
		feature:   best.feature,
		threshold: best.threshold,
		left:      l,
		right:     r,
	}
	return idx
}

func (g *grower) isLeaf(samples []int, counts []int, depth int) bool {
	if len(samples) < g.cfg.MinSamplesSplit || len(samples) < 2*g.cfg.MinSamplesLeaf {
		return true
	}
	if g.cfg.MaxDepth > 0 && depth >= g.cfg.MaxDepth {
		return true
	}
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

// bestSplit draws features in random order and evaluates maxFeatures of
// them, continuing past that budget only while no valid split was found.
func (g *grower) bestSplit(samples []int, counts []int) (split, bool) {
	best := split{impurity: gini(counts, len(samples))}
	found := false

	sorted := make([]int, len(samples))
	leftCounts := make([]int, g.nClasses)
	rightCounts := make([]int, g.nClasses)

	for tried, f := range g.rng.Perm(g.nFeatures) {
		if tried >= g.maxFeatures && found {
			break
		}

		copy(sorted, samples)
		slices.SortStableFunc(sorted, func(a, b int) int {
			return cmp.Compare(g.rows[a][f], g.rows[b][f])
		})

		clear(leftCounts)
		copy(rightCounts, counts)

		n := len(sorted)
		for i := 0; i < n-1; i++ {
			c := g.labels[sorted[i]]
			leftCounts[c]++
			rightCounts[c]--

			v, next := g.rows[sorted[i]][f], g.rows[sorted[i+1]][f]
			if v == next {
				continue
			}
			nl, nr := i+1, n-i-1
			if nl < g.cfg.MinSamplesLeaf || nr < g.cfg.MinSamplesLeaf {
				continue
			}

			impurity := (float64(nl)*gini(leftCounts, nl) + float64(nr)*gini(rightCounts, nr)) / float64(n)
			if impurity < best.impurity || !found {
				threshold := v + (next-v)/2
				if threshold >= next {
					threshold = v
				}
				best = split{feature: f, threshold: threshold, impurity: impurity}
				found = true
			}
		}
	}

	return best, found
}

func (g *grower) counts(samples []int) []int {
	counts := make([]int, g.nClasses)
	for _, s := range samples {
		counts[g.labels[s]]++
	}
	return counts
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0.0
	}
	sum := 0.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		sum += p * p
	}
	return 1.0 - sum
}

func normalize(counts []int, n int) []float64 {
	proba := make([]float64, len(counts))
	for i, c := range counts {
		proba[i] = float64(c) / float64(n)
	}
	return proba
}
