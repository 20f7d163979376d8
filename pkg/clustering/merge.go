package clustering

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/nhc-service/pkg/models"
)

// MergeLogger receives every merge performed by a Merger
type MergeLogger interface {
	LogMerge(step, left, right int, similarity float64, genes, cases int)
}

// Merger iteratively merges the most similar pair of clusters until no pair
// reaches the cutoff
type Merger struct {
	cutoff  float64
	logger  zerolog.Logger
	tracker MergeLogger
}

// MergeStats describes a merge run
type MergeStats struct {
	InitialClusters int `json:"initial_clusters"`
	FinalClusters   int `json:"final_clusters"`
	Merges          int `json:"merges"`
}

// NewMerger creates a merger with the given similarity cutoff
func NewMerger(cutoff float64, logger zerolog.Logger) *Merger {
	return &Merger{cutoff: cutoff, logger: logger}
}

// WithTracker records each merge to the given logger
func (m *Merger) WithTracker(tracker MergeLogger) *Merger {
	m.tracker = tracker
	return m
}

// Similarity scores two gene sets: 1 when one contains the other, otherwise
// the Jaccard ratio rounded half-to-even to three decimals
func Similarity(a, b *models.Set) float64 {
	if a.IsSubsetOf(b) || b.IsSubsetOf(a) {
		return 1.0
	}
	intersect := a.IntersectionSize(b)
	union := a.Len() + b.Len() - intersect
	if union == 0 {
		return 0
	}
	return math.RoundToEven(float64(intersect)/float64(union)*1000) / 1000
}

// Merge runs the merge loop over the initial clusters. Each pass scans every
// pair (i ascending, then j ascending) and keeps the first pair with the
// strictly highest similarity. When that similarity reaches the cutoff the
// pair is replaced by its union, appended after the surviving clusters.
func (m *Merger) Merge(initial []*models.Cluster) ([]*models.Cluster, MergeStats) {
	live := make([]*models.Cluster, len(initial))
	copy(live, initial)
	stats := MergeStats{InitialClusters: len(initial)}

	for {
		bestI, bestJ := -1, -1
		best := 0.0

		for i := 0; i < len(live); i++ {
			for j := i + 1; j < len(live); j++ {
				if s := Similarity(live[i].Genes, live[j].Genes); s > best {
					best = s
					bestI, bestJ = i, j
				}
			}
		}

		if bestI < 0 || best < m.cutoff {
			break
		}

		merged := live[bestI].Merge(live[bestJ])
		next := make([]*models.Cluster, 0, len(live)-1)
		for k, cluster := range live {
			if k != bestI && k != bestJ {
				next = append(next, cluster)
			}
		}
		live = append(next, merged)
		stats.Merges++

		m.logger.Debug().
			Int("step", stats.Merges).
			Int("left", bestI).
			Int("right", bestJ).
			Float64("similarity", best).
			Int("genes", merged.Genes.Len()).
			Int("live", len(live)).
			Msg("Merged clusters")

		if m.tracker != nil {
			m.tracker.LogMerge(stats.Merges, bestI, bestJ, best, merged.Genes.Len(), merged.Cases.Len())
		}
	}

	stats.FinalClusters = len(live)
	return live, stats
}
