package algorithms

import "container/heap"

// GreedyModularity is the Clauset-Newman-Moore agglomerative partitioner.
// Starting from singletons it repeatedly merges the pair of adjacent
// communities with the largest modularity gain, stopping once every
// remaining merge would lower modularity. Ties go to the pair with the
// smallest community IDs.
type GreedyModularity struct {
	Resolution float64
}

// Name returns the partitioner name.
func (gm *GreedyModularity) Name() string {
	return PartitionerGreedy
}

// mergeCandidate is a pending merge of communities i < j. It is stale once
// either community has changed since it was pushed.
type mergeCandidate struct {
	dq         float64
	i, j       int
	verI, verJ int
}

// mergeHeap orders candidates by gain descending, then by (i, j) ascending.
type mergeHeap []mergeCandidate

func (h mergeHeap) Len() int { return len(h) }

func (h mergeHeap) Less(x, y int) bool {
	a, b := h[x], h[y]
	if a.dq != b.dq {
		return a.dq > b.dq
	}
	if a.i != b.i {
		return a.i < b.i
	}
	return a.j < b.j
}

func (h mergeHeap) Swap(x, y int) { h[x], h[y] = h[y], h[x] }

func (h *mergeHeap) Push(v any) { *h = append(*h, v.(mergeCandidate)) }

func (h *mergeHeap) Pop() any {
	old := *h
	v := old[len(old)-1]
	*h = old[:len(old)-1]
	return v
}

// Partition runs greedy modularity maximization on g.
func (gm *GreedyModularity) Partition(g Graph) (Partition, error) {
	n := g.Order()
	m := g.Size()
	if n == 0 {
		return Partition{labels: []int{}}, nil
	}
	if m == 0 {
		return singletons(n), nil
	}

	gamma := resolutionOrDefault(gm.Resolution)
	twoM := float64(2 * m)

	// a[i]: fraction of edge ends in community i.
	// e[i][j]: fraction of edge ends joining communities i and j (symmetric).
	a := make([]float64, n)
	e := make([]map[int]float64, n)
	members := make([][]int, n)
	alive := make([]bool, n)
	version := make([]int, n)

	for u := 0; u < n; u++ {
		a[u] = float64(g.Degree(u)) / twoM
		e[u] = make(map[int]float64, g.Degree(u))
		for _, v := range g.Neighbors(u) {
			e[u][v] = 1.0 / twoM
		}
		members[u] = []int{u}
		alive[u] = true
	}

	candidate := func(i, j int) mergeCandidate {
		if j < i {
			i, j = j, i
		}
		return mergeCandidate{
			dq:   2 * (e[i][j] - gamma*a[i]*a[j]),
			i:    i,
			j:    j,
			verI: version[i],
			verJ: version[j],
		}
	}

	h := make(mergeHeap, 0, m)
	for u := 0; u < n; u++ {
		for _, v := range g.Neighbors(u) {
			if v > u {
				h = append(h, candidate(u, v))
			}
		}
	}
	heap.Init(&h)

	for h.Len() > 0 {
		best := heap.Pop(&h).(mergeCandidate)
		if version[best.i] != best.verI || version[best.j] != best.verJ {
			continue
		}
		if best.dq < 0 {
			break
		}
		bi, bj := best.i, best.j

		// Merge bj into bi.
		for k, ejk := range e[bj] {
			if k == bi {
				continue
			}
			e[bi][k] += ejk
			e[k][bi] += ejk
			delete(e[k], bj)
		}
		delete(e[bi], bj)
		e[bj] = nil

		a[bi] += a[bj]
		members[bi] = append(members[bi], members[bj]...)
		members[bj] = nil
		alive[bj] = false
		version[bi]++
		version[bj]++

		// Only pairs touching bi changed gain.
		for k := range e[bi] {
			heap.Push(&h, candidate(bi, k))
		}
	}

	cells := make([][]int, 0)
	for i := 0; i < n; i++ {
		if alive[i] {
			cells = append(cells, members[i])
		}
	}

	return PartitionFromCells(n, canonicalCells(cells))
}
