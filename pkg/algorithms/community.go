package algorithms

import "fmt"

// Partitioner names accepted by NewPartitioner.
const (
	PartitionerGreedy  = "greedy"
	PartitionerLouvain = "louvain"
)

// Partitioner detects communities on a single graph. Implementations must
// cover every node exactly once and label cells 0..k-1.
type Partitioner interface {
	Partition(g Graph) (Partition, error)
	Name() string
}

// NewPartitioner returns the modularity-maximizing partitioner called name.
// resolution <= 0 means the standard modularity (1.0). seed only affects
// randomized partitioners.
func NewPartitioner(name string, resolution float64, seed uint64) (Partitioner, error) {
	switch name {
	case PartitionerGreedy, "":
		return &GreedyModularity{Resolution: resolution}, nil
	case PartitionerLouvain:
		return &Louvain{Resolution: resolution, Seed: seed}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPartitioner, name)
	}
}

// singletons puts every node in its own cell, in ID order.
func singletons(n int) Partition {
	labels := make([]int, n)
	for i := range labels {
		labels[i] = i
	}
	return Partition{labels: labels}
}

func resolutionOrDefault(r float64) float64 {
	if r <= 0 {
		return 1.0
	}
	return r
}
