package features

import (
	"github.com/dd0wney/cluso-dyncomm/pkg/algorithms"
	"github.com/dd0wney/cluso-dyncomm/pkg/parallel"
	"github.com/dd0wney/cluso-dyncomm/pkg/snapshot"
)

// minParallelNodes is the snapshot size below which extraction stays on the
// calling goroutine.
const minParallelNodes = 512

// Extractor computes feature vectors. It holds no per-snapshot state and
// may be shared.
type Extractor[K comparable] struct {
	workers int
}

// NewExtractor creates an extractor that spreads per-node work over workers
// goroutines (<= 0 means GOMAXPROCS, 1 means sequential).
func NewExtractor[K comparable](workers int) *Extractor[K] {
	return &Extractor[K]{workers: workers}
}

// Profile computes degree and local clustering for every node of s.
func (e *Extractor[K]) Profile(s *snapshot.Snapshot[K]) (*Profile[K], error) {
	stats := make([]Stats, s.Order())

	err := parallel.ForEach(e.workers, s.Order(), minParallelNodes, func(id int) {
		stats[id] = Stats{
			Degree:     s.Degree(id),
			Clustering: algorithms.LocalClustering(s, id),
		}
	})
	if err != nil {
		return nil, err
	}

	return &Profile[K]{snap: s, stats: stats}, nil
}

// Extract builds the feature vector of every node of cur against the
// profile of the previous snapshot (nil for none). Nodes that exist only in
// the previous snapshot are ignored. It also returns cur's profile so the
// caller can pass it as prev for the next snapshot.
func (e *Extractor[K]) Extract(cur *snapshot.Snapshot[K], prev *Profile[K]) (*Set[K], *Profile[K], error) {
	profile, err := e.Profile(cur)
	if err != nil {
		return nil, nil, err
	}

	set := &Set[K]{
		Nodes:   cur.Nodes(),
		Vectors: make([]Vector, cur.Order()),
	}

	for id, node := range set.Nodes {
		st := profile.At(id)
		dd, dc := delta(st, prev.Lookup(node))
		set.Vectors[id] = Vector{
			Degree:          st.Degree,
			Clustering:      st.Clustering,
			DeltaDegree:     dd,
			DeltaClustering: dc,
		}
	}

	return set, profile, nil
}
