// Package network builds the admissible gene interaction graph used to
// guide cluster expansion.
package network

import (
	"gonum.org/v1/gonum/graph/simple"

	"github.com/gilchrisn/nhc-service/pkg/models"
)

// FilterConfig holds the edge admission thresholds
type FilterConfig struct {
	EdgeWeightCutoff float64 // minimum edge weight, inclusive
	HubCutoff        int     // connectivity at which a gene counts as a hub; 0 disables
}

// Filtered is the weighted undirected graph restricted to case genes.
// Lookups of absent pairs return weight 0.
type Filtered struct {
	graph *simple.WeightedUndirectedGraph
	ids   map[string]int64 // gene -> node ID
}

// Stats summarises a filtered network
type Stats struct {
	Genes     int `json:"genes"`
	Edges     int `json:"edges"`
	MaxDegree int `json:"max_degree"`
}

// Filter keeps exactly the edges whose endpoints are distinct case genes,
// whose weight meets the cutoff, and, when hub filtering is enabled, whose
// endpoints are both non-hub genes. Later rows for the same unordered pair
// overwrite earlier ones.
func Filter(universe *models.Set, hubs *models.Set, edges []models.Edge, config FilterConfig) *Filtered {
	f := &Filtered{
		graph: simple.NewWeightedUndirectedGraph(0, 0),
		ids:   make(map[string]int64),
	}

	for _, e := range edges {
		if e.A == e.B {
			continue
		}
		if !universe.Has(e.A) || !universe.Has(e.B) {
			continue
		}
		if e.Weight < config.EdgeWeightCutoff {
			continue
		}
		if config.HubCutoff != 0 && (hubs.Has(e.A) || hubs.Has(e.B)) {
			continue
		}

		f.graph.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(f.nodeID(e.A)),
			T: simple.Node(f.nodeID(e.B)),
			W: e.Weight,
		})
	}

	return f
}

func (f *Filtered) nodeID(gene string) int64 {
	if id, exists := f.ids[gene]; exists {
		return id
	}
	id := int64(len(f.ids))
	f.ids[gene] = id
	f.graph.AddNode(simple.Node(id))
	return id
}

// Weight returns the weight of the unordered pair (a, b), or 0 when the pair
// is not in the network
func (f *Filtered) Weight(a, b string) float64 {
	if a == b {
		return 0
	}
	x, ok := f.ids[a]
	if !ok {
		return 0
	}
	y, ok := f.ids[b]
	if !ok {
		return 0
	}
	w, _ := f.graph.Weight(x, y)
	return w
}

// HasEdge reports whether the unordered pair survived filtering
func (f *Filtered) HasEdge(a, b string) bool {
	x, ok := f.ids[a]
	if !ok {
		return false
	}
	y, ok := f.ids[b]
	if !ok {
		return false
	}
	return f.graph.HasEdgeBetween(x, y)
}

// NumEdges returns the number of retained edges
func (f *Filtered) NumEdges() int {
	return f.graph.Edges().Len()
}

// Stats computes node, edge and degree counts of the network
func (f *Filtered) Stats() Stats {
	stats := Stats{Genes: len(f.ids), Edges: f.NumEdges()}
	for _, id := range f.ids {
		if degree := f.graph.From(id).Len(); degree > stats.MaxDegree {
			stats.MaxDegree = degree
		}
	}
	return stats
}
