package algorithms

import (
	"testing"

	"github.com/dd0wney/cluso-dyncomm/pkg/snapshot"
)

// buildGraph creates a snapshot from string edges; nodes lists extra nodes
// (and fixes insertion order) before the edges are added.
func buildGraph(t *testing.T, nodes []string, edges [][2]string) *snapshot.Snapshot[string] {
	t.Helper()

	b := snapshot.NewBuilder[string]()
	for _, n := range nodes {
		b.AddNode(n)
	}
	for _, e := range edges {
		b.AddEdge(e[0], e[1])
	}
	return b.Build()
}

// twoTriangles is {a,b,c} and {d,e,f} joined by the bridge c-d.
func twoTriangles(t *testing.T) *snapshot.Snapshot[string] {
	t.Helper()
	return buildGraph(t, nil, [][2]string{
		{"a", "b"}, {"b", "c"}, {"c", "a"},
		{"d", "e"}, {"e", "f"}, {"f", "d"},
		{"c", "d"},
	})
}

func idOf(t *testing.T, s *snapshot.Snapshot[string], k string) int {
	t.Helper()
	id, ok := s.Index(k)
	if !ok {
		t.Fatalf("node %q not in snapshot", k)
	}
	return id
}

// assertCover checks that p labels every node of g exactly once.
func assertCover(t *testing.T, g Graph, p Partition) {
	t.Helper()

	if p.Len() != g.Order() {
		t.Fatalf("partition labels %d nodes, graph has %d", p.Len(), g.Order())
	}

	seen := make(map[int]bool)
	for _, cell := range p.Cells() {
		for _, id := range cell {
			if seen[id] {
				t.Errorf("node %d appears in more than one cell", id)
			}
			seen[id] = true
		}
	}
	if len(seen) != g.Order() {
		t.Errorf("cells cover %d nodes, want %d", len(seen), g.Order())
	}
}
