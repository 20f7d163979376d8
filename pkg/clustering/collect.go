package clustering

import "github.com/gilchrisn/nhc-service/pkg/models"

// Collector keeps the first cluster seen for every canonical gene set
type Collector struct {
	seen     map[string]struct{}
	clusters []*models.Cluster
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{
		seen:     make(map[string]struct{}),
		clusters: make([]*models.Cluster, 0),
	}
}

// Add offers a candidate and reports whether it was kept. Candidates with
// fewer than MinClusterGenes genes, or whose gene set was already collected,
// are dropped together with their case set.
func (c *Collector) Add(cluster *models.Cluster) bool {
	if cluster.Genes.Len() < MinClusterGenes {
		return false
	}
	key := cluster.Key()
	if _, exists := c.seen[key]; exists {
		return false
	}
	c.seen[key] = struct{}{}
	c.clusters = append(c.clusters, cluster)
	return true
}

// Clusters returns the unique clusters in first-seen order
func (c *Collector) Clusters() []*models.Cluster {
	return c.clusters
}

// Collect deduplicates a candidate stream in order
func Collect(candidates []*models.Cluster) []*models.Cluster {
	collector := NewCollector()
	for _, cluster := range candidates {
		collector.Add(cluster)
	}
	return collector.Clusters()
}
