// Package enrichment scores gene clusters against a pathway reference with
// Fisher's exact test and a Bonferroni-style correction.
package enrichment

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gilchrisn/nhc-service/pkg/models"
)

// Placeholder is reported in place of pathway fields when nothing is enriched
const Placeholder = "."

// Config contains the enrichment thresholds
type Config struct {
	PValueCutoff float64 `json:"pvalue_cutoff"` // adjusted p-values strictly below are retained
	Digits       int     `json:"digits"`        // mantissa decimals of reported p-values
}

// DefaultConfig returns the standard cutoff and precision
func DefaultConfig() Config {
	return Config{PValueCutoff: 1e-5, Digits: 3}
}

// Hit is a pathway retained for a cluster
type Hit struct {
	Pathway string  `json:"pathway"`
	PValue  float64 `json:"p_value"` // adjusted and rounded
}

// Result is the enrichment of one cluster, hits sorted by ascending p-value
type Result struct {
	Hits []Hit `json:"hits"`
}

// Count returns the number of retained pathways
func (r Result) Count() int {
	return len(r.Hits)
}

// Top returns the most significant pathway
func (r Result) Top() (Hit, bool) {
	if len(r.Hits) == 0 {
		return Hit{}, false
	}
	return r.Hits[0], true
}

// PathwayList renders the hits as name(p) pairs joined by commas
func (r Result) PathwayList() string {
	if len(r.Hits) == 0 {
		return Placeholder
	}
	parts := make([]string, len(r.Hits))
	for i, hit := range r.Hits {
		parts[i] = hit.Pathway + "(" + FormatPValue(hit.PValue) + ")"
	}
	return strings.Join(parts, ",")
}

// Scorer tests clusters against every pathway of a reference
type Scorer struct {
	reference *models.PathwayReference
	config    Config
}

// NewScorer creates a scorer over a pathway reference
func NewScorer(reference *models.PathwayReference, config Config) *Scorer {
	return &Scorer{reference: reference, config: config}
}

// AdjustedPValue multiplies a raw p-value by the number of pathways tested.
// The product is not capped at 1.
func AdjustedPValue(raw float64, pathways int) float64 {
	return raw * float64(pathways)
}

// RoundPValue rounds p to the given number of mantissa decimals in scientific notation
func RoundPValue(p float64, digits int) float64 {
	rounded, err := strconv.ParseFloat(fmt.Sprintf("%.*E", digits, p), 64)
	if err != nil {
		return p
	}
	return rounded
}

// FormatPValue renders p in its shortest scientific form, e.g. 1.234e-07.
// A p-value that underflowed to zero is written as 0.0.
func FormatPValue(p float64) string {
	if p == 0 {
		return "0.0"
	}
	return strconv.FormatFloat(p, 'e', -1, 64)
}

// Score runs the exact test of the cluster genes against each pathway,
// skipping pathways that share no gene with the cluster
func (s *Scorer) Score(genes *models.Set) Result {
	background := s.reference.Background.Len()
	pathways := s.reference.Size()
	hits := make([]Hit, 0)

	for _, pathway := range s.reference.Pathways {
		in := genes.IntersectionSize(pathway.Genes)
		if in == 0 {
			continue
		}
		out := genes.Len() - in
		pathwayIn := pathway.Genes.Len()
		pathwayOut := background - pathwayIn

		raw := FisherExact(in, out, pathwayIn, pathwayOut)
		adjusted := AdjustedPValue(raw, pathways)
		if adjusted < s.config.PValueCutoff {
			hits = append(hits, Hit{Pathway: pathway.ID, PValue: RoundPValue(adjusted, s.config.Digits)})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].PValue < hits[j].PValue
	})

	return Result{Hits: hits}
}

// ScoreAll scores each cluster in order and reports how many were enriched
func (s *Scorer) ScoreAll(clusters []*models.Cluster) ([]Result, int) {
	results := make([]Result, len(clusters))
	enriched := 0
	for i, cluster := range clusters {
		results[i] = s.Score(cluster.Genes)
		if results[i].Count() > 0 {
			enriched++
		}
	}
	return results, enriched
}
