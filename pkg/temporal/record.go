package temporal

// Record is the result of processing one snapshot.
type Record[K comparable] struct {
	Snapshot       int       `json:"snapshot"`
	Modularity     float64   `json:"modularity"`
	Communities    map[K]int `json:"communities"`
	Phase          Phase     `json:"phase"`
	Nodes          int       `json:"nodes"`
	Edges          int       `json:"edges"`
	NumCommunities int       `json:"num_communities"`

	// LargestCommunity is the member count of the biggest community.
	LargestCommunity int `json:"largest_community"`
	// MeanDensity averages each community's internal edge density.
	MeanDensity float64 `json:"mean_density"`
	// AvgClustering is the mean local clustering coefficient of the snapshot.
	AvgClustering float64 `json:"avg_clustering"`
}

// Cells groups the nodes of r by community label.
func (r Record[K]) Cells() map[int][]K {
	cells := make(map[int][]K)
	for node, label := range r.Communities {
		cells[label] = append(cells[label], node)
	}
	return cells
}
