package features

import (
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-dyncomm/pkg/snapshot"
)

func pathGraph() *snapshot.Snapshot[string] {
	return snapshot.New([]string{"a", "b", "c"}, []snapshot.Edge[string]{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "c"},
	})
}

func extract(t *testing.T, cur *snapshot.Snapshot[string], prev *Profile[string]) (*Set[string], *Profile[string]) {
	t.Helper()
	set, profile, err := NewExtractor[string](1).Extract(cur, prev)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	return set, profile
}

func mustVector(t *testing.T, set *Set[string], node string) Vector {
	t.Helper()
	v, ok := set.Get(node)
	if !ok {
		t.Fatalf("no feature vector for %q", node)
	}
	return v
}

func TestExtract_PathGraphNoHistory(t *testing.T) {
	set, _ := extract(t, pathGraph(), nil)

	want := map[string]Vector{
		"a": {Degree: 1},
		"b": {Degree: 2},
		"c": {Degree: 1},
	}
	if set.Len() != len(want) {
		t.Fatalf("Expected %d vectors, got %d", len(want), set.Len())
	}
	for node, w := range want {
		if got := mustVector(t, set, node); got != w {
			t.Errorf("features(%s) = %+v, want %+v", node, got, w)
		}
	}
}

func TestExtract_NewIsolatedNodeHasZeroVector(t *testing.T) {
	snap0 := pathGraph()
	_, prev := extract(t, snap0, nil)

	snap1 := snapshot.New([]string{"a", "b", "c", "d"}, []snapshot.Edge[string]{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "c"},
	})
	set, _ := extract(t, snap1, prev)

	if got := mustVector(t, set, "d"); got != (Vector{}) {
		t.Errorf("features(d) = %+v, want all zero", got)
	}
}

func TestExtract_SameGraphTwiceHasZeroDeltas(t *testing.T) {
	g := snapshot.New(nil, []snapshot.Edge[string]{
		{Source: "a", Target: "b"}, {Source: "b", Target: "c"}, {Source: "c", Target: "a"},
		{Source: "c", Target: "d"},
	})

	_, prev := extract(t, g, nil)
	set, _ := extract(t, g, prev)

	for i, v := range set.Vectors {
		if v.DeltaDegree != 0 || v.DeltaClustering != 0 {
			t.Errorf("node %s: deltas (%d, %f), want 0", set.Nodes[i], v.DeltaDegree, v.DeltaClustering)
		}
	}
}

func TestExtract_DeltasTrackDrift(t *testing.T) {
	snap0 := pathGraph()
	_, prev := extract(t, snap0, nil)

	// Closing the triangle gives every node degree 2 and clustering 1
	snap1 := snapshot.New(nil, []snapshot.Edge[string]{
		{Source: "a", Target: "b"}, {Source: "b", Target: "c"}, {Source: "c", Target: "a"},
	})
	set, _ := extract(t, snap1, prev)

	a := mustVector(t, set, "a")
	if a.DeltaDegree != 1 || a.DeltaClustering != 1.0 {
		t.Errorf("features(a) = %+v, want delta_degree 1, delta_clustering 1", a)
	}
	b := mustVector(t, set, "b")
	if b.DeltaDegree != 0 || b.DeltaClustering != 1.0 {
		t.Errorf("features(b) = %+v, want delta_degree 0, delta_clustering 1", b)
	}
}

func TestExtract_NodesOnlyInPreviousAreIgnored(t *testing.T) {
	_, prev := extract(t, pathGraph(), nil)

	snap1 := snapshot.New([]string{"a", "b"}, []snapshot.Edge[string]{{Source: "a", Target: "b"}})
	set, _ := extract(t, snap1, prev)

	if set.Len() != 2 {
		t.Errorf("Expected 2 vectors, got %d", set.Len())
	}
	if _, ok := set.Get("c"); ok {
		t.Error("node c exists only in the previous snapshot and must not be featurized")
	}
}

func TestExtract_EmptySnapshot(t *testing.T) {
	set, profile := extract(t, snapshot.Empty[string](), nil)

	if set.Len() != 0 {
		t.Errorf("Expected no vectors, got %d", set.Len())
	}
	if !set.Matrix().IsEmpty() {
		t.Error("Matrix() of an empty set should be empty")
	}
	if profile.Lookup("a").Present() {
		t.Error("empty profile should not contain nodes")
	}
}

func TestExtract_ParallelMatchesSequential(t *testing.T) {
	b := snapshot.NewBuilder[int]()
	for i := 0; i < 2000; i++ {
		b.AddEdge(i, (i*7+3)%2000)
		b.AddEdge(i, (i+1)%2000)
	}
	g := b.Build()

	seq, _, err := NewExtractor[int](1).Extract(g, nil)
	if err != nil {
		t.Fatalf("sequential Extract failed: %v", err)
	}
	par, _, err := NewExtractor[int](8).Extract(g, nil)
	if err != nil {
		t.Fatalf("parallel Extract failed: %v", err)
	}

	for i := range seq.Vectors {
		if seq.Vectors[i] != par.Vectors[i] {
			t.Fatalf("vector %d differs: %+v vs %+v", i, seq.Vectors[i], par.Vectors[i])
		}
	}
}

func TestSet_Matrix(t *testing.T) {
	set := &Set[string]{
		Nodes:   []string{"x", "y"},
		Vectors: []Vector{{Degree: 3, Clustering: 0.5, DeltaDegree: -1, DeltaClustering: 0.25}, {}},
	}

	m := set.Matrix()
	r, c := m.Dims()
	if r != 2 || c != Dim {
		t.Fatalf("Dims() = (%d, %d), want (2, %d)", r, c, Dim)
	}
	if m.At(0, 0) != 3 || m.At(0, 1) != 0.5 || m.At(0, 2) != -1 || m.At(0, 3) != 0.25 {
		t.Errorf("row 0 = %v", m.RawRowView(0))
	}
}

func TestOptional(t *testing.T) {
	if v, ok := Some(5).Get(); !ok || v != 5 {
		t.Errorf("Some(5).Get() = %d, %v", v, ok)
	}
	if None[int]().Present() {
		t.Error("None should not be present")
	}
	if got := None[int]().OrElse(9); got != 9 {
		t.Errorf("None.OrElse(9) = %d", got)
	}
	var nilProfile *Profile[string]
	if nilProfile.Lookup("a").Present() {
		t.Error("nil profile lookup should be None")
	}
}

// TestDeltaProperties checks the no-history default on random snapshot pairs
func TestDeltaProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	build := func(offset int, endpoints []int) *snapshot.Snapshot[string] {
		b := snapshot.NewBuilder[string]()
		for i := 0; i+1 < len(endpoints); i += 2 {
			b.AddEdge(strconv.Itoa(endpoints[i]+offset), strconv.Itoa(endpoints[i+1]+offset))
		}
		return b.Build()
	}

	properties.Property("nodes absent from previous snapshot have zero deltas", prop.ForAll(
		func(prevEdges, curEdges []int) bool {
			prevSnap := build(0, prevEdges)
			curSnap := build(5, curEdges)

			_, prev, err := NewExtractor[string](1).Extract(prevSnap, nil)
			if err != nil {
				return false
			}
			set, _, err := NewExtractor[string](1).Extract(curSnap, prev)
			if err != nil {
				return false
			}

			for i, node := range set.Nodes {
				if prevSnap.Has(node) {
					continue
				}
				v := set.Vectors[i]
				if v.DeltaDegree != 0 || v.DeltaClustering != 0 {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(20, gen.IntRange(0, 9)),
		gen.SliceOfN(20, gen.IntRange(0, 9)),
	))

	properties.Property("clustering coefficient stays in [0, 1]", prop.ForAll(
		func(edges []int) bool {
			set, _, err := NewExtractor[string](1).Extract(build(0, edges), nil)
			if err != nil {
				return false
			}
			for _, v := range set.Vectors {
				if v.Clustering < 0 || v.Clustering > 1 {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(40, gen.IntRange(0, 9)),
	))

	properties.TestingRun(t)
}
