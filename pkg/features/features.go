// Package features computes the per-node structural feature vectors that
// the membership classifier is trained and evaluated on.
package features

import (
	"gonum.org/v1/gonum/mat"

	"github.com/dd0wney/cluso-dyncomm/pkg/snapshot"
)

// Dim is the length of a feature vector.
const Dim = 4

// Stats are the structural quantities of one node in one snapshot.
type Stats struct {
	Degree     int
	Clustering float64
}

// Vector is (degree, clustering, delta_degree, delta_clustering). Deltas are
// exactly zero for nodes absent from the previous snapshot.
type Vector struct {
	Degree          int
	Clustering      float64
	DeltaDegree     int
	DeltaClustering float64
}

// Row returns the vector as classifier input.
func (v Vector) Row() []float64 {
	return []float64{
		float64(v.Degree),
		v.Clustering,
		float64(v.DeltaDegree),
		v.DeltaClustering,
	}
}

// Profile holds the Stats of every node of one snapshot. A nil *Profile is
// valid and contains no nodes.
type Profile[K comparable] struct {
	snap  *snapshot.Snapshot[K]
	stats []Stats
}

// Snapshot returns the profiled snapshot.
func (p *Profile[K]) Snapshot() *snapshot.Snapshot[K] {
	if p == nil {
		return nil
	}
	return p.snap
}

// At returns the Stats of internal node ID id.
func (p *Profile[K]) At(id int) Stats {
	return p.stats[id]
}

// Lookup returns the Stats of node k, or None if k is not in the snapshot.
func (p *Profile[K]) Lookup(k K) Optional[Stats] {
	if p == nil {
		return None[Stats]()
	}
	id, ok := p.snap.Index(k)
	if !ok {
		return None[Stats]()
	}
	return Some(p.stats[id])
}

// Set is the extracted feature vectors of one snapshot, aligned with the
// snapshot's node order.
type Set[K comparable] struct {
	Nodes   []K
	Vectors []Vector
}

// Len returns the number of vectors.
func (s *Set[K]) Len() int {
	return len(s.Vectors)
}

// Get returns the vector of node k.
func (s *Set[K]) Get(k K) (Vector, bool) {
	for i, n := range s.Nodes {
		if n == k {
			return s.Vectors[i], true
		}
	}
	return Vector{}, false
}

// Matrix returns the vectors as a Len()×Dim matrix. An empty set yields an
// empty (0×0) matrix.
func (s *Set[K]) Matrix() *mat.Dense {
	if len(s.Vectors) == 0 {
		return &mat.Dense{}
	}
	data := make([]float64, 0, len(s.Vectors)*Dim)
	for _, v := range s.Vectors {
		data = append(data, v.Row()...)
	}
	return mat.NewDense(len(s.Vectors), Dim, data)
}

// delta compares cur to the previous stats of the same node. An absent
// previous value yields zero deltas.
func delta(cur Stats, prev Optional[Stats]) (int, float64) {
	p, ok := prev.Get()
	if !ok {
		return 0, 0.0
	}
	return cur.Degree - p.Degree, cur.Clustering - p.Clustering
}
