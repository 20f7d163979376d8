// Package pipeline runs network-based heterogeneity clustering end to end:
// input loading, network filtering, seed expansion, de-duplication,
// merging, pathway enrichment and report writing.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/nhc-service/pkg/clustering"
	"github.com/gilchrisn/nhc-service/pkg/config"
	"github.com/gilchrisn/nhc-service/pkg/enrichment"
	"github.com/gilchrisn/nhc-service/pkg/models"
	"github.com/gilchrisn/nhc-service/pkg/network"
	"github.com/gilchrisn/nhc-service/pkg/output"
	"github.com/gilchrisn/nhc-service/pkg/parser"
	"github.com/gilchrisn/nhc-service/pkg/utils"
	"github.com/gilchrisn/nhc-service/pkg/validation"
)

// Inputs are the four loaded input files
type Inputs struct {
	Cohort       *models.Cohort
	Edges        []models.Edge
	Connectivity models.Connectivity
	Pathways     *models.PathwayReference
}

// Clusters is the in-memory outcome of one clustering run
type Clusters struct {
	Initial    []*models.Cluster
	Merged     []*models.Cluster
	Enrichment []enrichment.Result // parallel to Merged
	Enriched   int
	Network    network.Stats
	Merge      clustering.MergeStats
}

// Timings records the duration of each stage
type Timings struct {
	Load   time.Duration `json:"load"`
	Filter time.Duration `json:"filter"`
	Expand time.Duration `json:"expand"`
	Merge  time.Duration `json:"merge"`
	Enrich time.Duration `json:"enrich"`
	Write  time.Duration `json:"write"`
	Total  time.Duration `json:"total"`
}

// Result summarizes a completed run
type Result struct {
	Paths            output.Paths  `json:"paths"`
	Network          network.Stats `json:"network"`
	Cases            int           `json:"cases"`
	InitialClusters  int           `json:"initial_clusters"`
	MergedClusters   int           `json:"merged_clusters"`
	EnrichedClusters int           `json:"enriched_clusters"`
	Merges           int           `json:"merges"`
	Timings          Timings       `json:"timings"`
}

// Pipeline wires the stages together from a configuration
type Pipeline struct {
	config  *config.Config
	logger  zerolog.Logger
	timings Timings
}

// NewPipeline creates a pipeline; the configuration should already be validated
func NewPipeline(cfg *config.Config, logger zerolog.Logger) *Pipeline {
	return &Pipeline{config: cfg, logger: logger}
}

// Load reads and validates the four input files
func (p *Pipeline) Load() (*Inputs, error) {
	start := time.Now()

	cohort, err := validation.LoadAndValidateCohort(p.config.PatientFile())
	if err != nil {
		return nil, err
	}

	edges, err := parser.LoadEdges(p.config.NetworkFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load network: %w", err)
	}

	connectivity, err := parser.LoadConnectivity(p.config.ConnectivityFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load connectivity: %w", err)
	}
	if err := validation.ValidateConnectivity(connectivity); err != nil {
		return nil, fmt.Errorf("connectivity validation failed: %w", err)
	}

	pathways, err := validation.LoadAndValidatePathways(p.config.PathwayFile())
	if err != nil {
		return nil, err
	}

	p.timings.Load = time.Since(start)
	p.logger.Info().
		Int("cases", cohort.Size()).
		Int("genes", cohort.Universe.Len()).
		Int("edges", len(edges)).
		Int("pathways", pathways.Size()).
		Dur("elapsed", p.timings.Load).
		Msg("Inputs loaded")

	return &Inputs{
		Cohort:       cohort,
		Edges:        edges,
		Connectivity: connectivity,
		Pathways:     pathways,
	}, nil
}

// Cluster runs filtering, expansion, de-duplication, merging and enrichment
// on loaded inputs without touching the output files
func (p *Pipeline) Cluster(ctx context.Context, inputs *Inputs) (*Clusters, error) {
	start := time.Now()
	hubs := inputs.Connectivity.HubGenes(p.config.HubCutoff())
	filtered := network.Filter(inputs.Cohort.Universe, hubs, inputs.Edges, network.FilterConfig{
		EdgeWeightCutoff: p.config.EdgeWeightCutoff(),
		HubCutoff:        p.config.HubCutoff(),
	})
	stats := filtered.Stats()
	p.timings.Filter = time.Since(start)
	p.logger.Info().
		Int("hubs", hubs.Len()).
		Int("genes", stats.Genes).
		Int("edges", stats.Edges).
		Int("max_degree", stats.MaxDegree).
		Msg("Network filtered")

	start = time.Now()
	options := clustering.DefaultOptions()
	options.MergeCutoff = p.config.MergeCutoff()
	options.NumWorkers = p.config.NumWorkers()
	options.EnableProgress = p.config.EnableProgress()
	options.Logger = p.logger

	candidates, err := clustering.NewExpander(inputs.Cohort, filtered, options).ExpandAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("expansion failed: %w", err)
	}
	initial := clustering.Collect(candidates)
	p.timings.Expand = time.Since(start)
	p.logger.Info().
		Int("candidates", len(candidates)).
		Int("clusters", len(initial)).
		Msg("# Gene Clusters (initial)")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	merger := clustering.NewMerger(options.MergeCutoff, p.logger)
	if p.config.TrackMerges() {
		tracker, err := utils.NewMergeTracker(p.config.TrackingOutputFile())
		if err != nil {
			return nil, fmt.Errorf("failed to open merge trace: %w", err)
		}
		defer func() {
			if err := tracker.Close(); err != nil {
				p.logger.Warn().Err(err).Msg("Failed to close merge trace")
			}
		}()
		merger.WithTracker(tracker)
	}
	merged, mergeStats := merger.Merge(initial)
	p.timings.Merge = time.Since(start)
	p.logger.Info().
		Int("clusters", len(merged)).
		Int("merges", mergeStats.Merges).
		Msg("# Gene Clusters (merged)")

	start = time.Now()
	scorer := enrichment.NewScorer(inputs.Pathways, enrichment.Config{
		PValueCutoff: p.config.PValueCutoff(),
		Digits:       p.config.PValueDigits(),
	})
	results, enriched := scorer.ScoreAll(merged)
	p.timings.Enrich = time.Since(start)
	p.logger.Info().
		Int("clusters", enriched).
		Msg("# Gene Clusters (pathway enriched)")

	return &Clusters{
		Initial:    initial,
		Merged:     merged,
		Enrichment: results,
		Enriched:   enriched,
		Network:    stats,
		Merge:      mergeStats,
	}, nil
}

// Write stores the intermediate files and the report, then removes the
// intermediate files unless they are to be kept
func (p *Pipeline) Write(paths output.Paths, clusters *Clusters) error {
	start := time.Now()

	if err := output.WriteFile(paths.Initial, func(w io.Writer) error {
		return output.WriteClusters(w, clusters.Initial)
	}); err != nil {
		return err
	}
	if err := output.WriteFile(paths.Merged, func(w io.Writer) error {
		return output.WriteClusters(w, clusters.Merged)
	}); err != nil {
		return err
	}
	if err := output.WriteFile(paths.Report, func(w io.Writer) error {
		return output.WriteReport(w, clusters.Merged, clusters.Enrichment)
	}); err != nil {
		return err
	}

	if !p.config.KeepTemp() {
		if err := output.RemoveFiles(paths.Temporary()...); err != nil {
			return fmt.Errorf("failed to remove intermediate files: %w", err)
		}
	}

	p.timings.Write = time.Since(start)
	p.logger.Info().Str("report", paths.Report).Msg("Report written")
	return nil
}

// Run executes the whole pipeline
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	p.timings = Timings{}

	inputs, err := p.Load()
	if err != nil {
		return nil, err
	}

	clusters, err := p.Cluster(ctx, inputs)
	if err != nil {
		return nil, err
	}

	paths := output.NewPaths(p.config.PatientFile(), p.config.OutputDir())
	if err := p.Write(paths, clusters); err != nil {
		return nil, err
	}

	p.timings.Total = time.Since(start)
	p.logger.Info().
		Int("initial", len(clusters.Initial)).
		Int("merged", len(clusters.Merged)).
		Int("enriched", clusters.Enriched).
		Dur("total", p.timings.Total).
		Msg("Pipeline complete")

	return &Result{
		Paths:            paths,
		Network:          clusters.Network,
		Cases:            inputs.Cohort.Size(),
		InitialClusters:  len(clusters.Initial),
		MergedClusters:   len(clusters.Merged),
		EnrichedClusters: clusters.Enriched,
		Merges:           clusters.Merge.Merges,
		Timings:          p.timings,
	}, nil
}
