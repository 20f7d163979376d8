package clustering

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gilchrisn/nhc-service/pkg/models"
)

// Network returns the interaction weight of an unordered gene pair, 0 when absent
type Network interface {
	Weight(a, b string) float64
}

// Expander grows candidate clusters from every (case, gene) seed of a cohort.
// It only reads the cohort and the network, so seeds expand independently.
type Expander struct {
	cohort  *models.Cohort
	network Network
	options Options
}

// expansionState is the working cluster of a single seed
type expansionState struct {
	genes     *models.Set
	cases     *models.Set
	remaining []int // case indices not yet absorbed, in cohort order
}

// NewExpander creates an expander over a cohort and its filtered network
func NewExpander(cohort *models.Cohort, network Network, options Options) *Expander {
	if options.NumWorkers < 1 {
		options.NumWorkers = 1
	}
	return &Expander{cohort: cohort, network: network, options: options}
}

// ExpandSeed grows the cluster seeded by one gene of one case. The result is
// returned whatever its size; callers decide whether it is kept.
func (e *Expander) ExpandSeed(caseIndex int, seedGene string) *models.Cluster {
	seed := e.cohort.Cases[caseIndex]
	state := &expansionState{
		genes:     models.NewSet(seedGene),
		cases:     models.NewSet(seed.ID),
		remaining: make([]int, 0, e.cohort.Size()-1),
	}
	for i := range e.cohort.Cases {
		if i != caseIndex {
			state.remaining = append(state.remaining, i)
		}
	}

	for len(state.remaining) > 0 {
		// A case already sharing a cluster gene wins over any weighted link
		if pos := e.firstOverlap(state); pos >= 0 {
			state.absorb(e.cohort, pos)
			continue
		}

		pos, gene := e.strongestLink(state)
		if pos < 0 {
			break
		}
		state.absorb(e.cohort, pos)
		state.genes.Add(gene)
	}

	return &models.Cluster{Genes: state.genes, Cases: state.cases}
}

// firstOverlap returns the position in remaining of the first case whose genes
// intersect the accumulated gene set, or -1
func (e *Expander) firstOverlap(state *expansionState) int {
	for pos, idx := range state.remaining {
		if e.cohort.Cases[idx].Genes.Intersects(state.genes) {
			return pos
		}
	}
	return -1
}

// strongestLink finds the remaining case holding the gene with the strictly
// heaviest edge to the cluster. Ties keep the first pair found.
func (e *Expander) strongestLink(state *expansionState) (int, string) {
	best := 0.0
	bestPos := -1
	bestGene := ""

	for pos, idx := range state.remaining {
		candidate := e.cohort.Cases[idx].Genes.Members()
		for _, existing := range state.genes.Members() {
			for _, gene := range candidate {
				if w := e.network.Weight(existing, gene); w > best {
					best = w
					bestPos = pos
					bestGene = gene
				}
			}
		}
	}

	return bestPos, bestGene
}

func (s *expansionState) absorb(cohort *models.Cohort, pos int) {
	s.cases.Add(cohort.Cases[s.remaining[pos]].ID)
	s.remaining = append(s.remaining[:pos], s.remaining[pos+1:]...)
}

// ExpandCase expands every gene of one case, in the case's gene order, and
// returns the candidates with more than two genes
func (e *Expander) ExpandCase(caseIndex int) []*models.Cluster {
	candidates := make([]*models.Cluster, 0)
	for _, gene := range e.cohort.Cases[caseIndex].Genes.Members() {
		cluster := e.ExpandSeed(caseIndex, gene)
		if cluster.Genes.Len() >= MinClusterGenes {
			candidates = append(candidates, cluster)
		}
	}
	return candidates
}

// ExpandAll expands every seed of the cohort on a pool of workers and returns
// the candidates in seed order, exactly as a sequential run would emit them
func (e *Expander) ExpandAll(ctx context.Context) ([]*models.Cluster, error) {
	total := e.cohort.Size()
	perCase := make([][]*models.Cluster, total)
	logger := e.options.Logger

	jobs := make(chan int)
	var wg sync.WaitGroup
	var finished int64

	workers := e.options.NumWorkers
	if workers > total {
		workers = total
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				start := time.Now()
				perCase[idx] = e.ExpandCase(idx)
				done := atomic.AddInt64(&finished, 1)

				if e.options.EnableProgress {
					logger.Info().
						Int64("done", done).
						Int("total", total).
						Str("case", e.cohort.Cases[idx].ID).
						Int("candidates", len(perCase[idx])).
						Dur("elapsed", time.Since(start)).
						Msg("Clustering")
				}
			}
		}()
	}

feed:
	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := make([]*models.Cluster, 0)
	for _, clusters := range perCase {
		candidates = append(candidates, clusters...)
	}
	return candidates, nil
}
