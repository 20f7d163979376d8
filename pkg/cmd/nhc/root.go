package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gilchrisn/nhc-service/pkg/config"
	"github.com/gilchrisn/nhc-service/pkg/pipeline"
)

// flagKeys maps command line flags to configuration keys
var flagKeys = map[string]string{
	"patient":      "input.patient",
	"network":      "input.network",
	"connectivity": "input.connectivity",
	"pathway":      "input.pathway",
	"edgeweight":   "algorithm.edge_weight_cutoff",
	"hub":          "algorithm.hub_cutoff",
	"merge":        "algorithm.merge_cutoff",
	"output-dir":   "output.dir",
	"keep-temp":    "output.keep_temp",
	"workers":      "performance.num_workers",
	"log-level":    "logging.level",
	"track-merges": "analysis.track_merges",
}

func newRootCommand() *cobra.Command {
	cfg := config.NewConfig()
	var configFile string

	cmd := &cobra.Command{
		Use:   "nhc",
		Short: "Network-based heterogeneity clustering of case gene lists",
		Long: "nhc groups cases whose altered genes are linked through a functional gene\n" +
			"network into gene clusters, merges overlapping clusters and reports the\n" +
			"pathways each cluster is enriched for.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cfg, configFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := cfg.CreateLogger()
			result, err := pipeline.NewPipeline(cfg, logger).Run(cmd.Context())
			if err != nil {
				logger.Error().Err(err).Msg("Pipeline failed")
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Paths.Report)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	flags.StringP("patient", "p", cfg.PatientFile(), "case gene list file (required)")
	flags.String("network", cfg.NetworkFile(), "weighted gene network file")
	flags.String("connectivity", cfg.ConnectivityFile(), "gene connectivity file")
	flags.String("pathway", cfg.PathwayFile(), "pathway gene set file")
	flags.Float64P("edgeweight", "w", cfg.EdgeWeightCutoff(), "minimum edge weight kept in the network")
	flags.IntP("hub", "b", cfg.HubCutoff(), "connectivity at which a gene is a hub, 0 disables")
	flags.Float64P("merge", "m", cfg.MergeCutoff(), "similarity at which clusters are merged")
	flags.String("output-dir", cfg.OutputDir(), "directory for output files (default: next to the case gene list)")
	flags.Bool("keep-temp", cfg.KeepTemp(), "keep the intermediate cluster files")
	flags.Int("workers", cfg.NumWorkers(), "number of expansion workers")
	flags.String("log-level", cfg.LogLevel(), "log level (debug, info, warn, error)")
	flags.Bool("track-merges", cfg.TrackMerges(), "write every merge to a JSONL trace")

	for name, key := range flagKeys {
		if err := cfg.BindFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}

	return cmd
}

// loadConfig reads the optional config file and validates the merged settings
func loadConfig(cfg *config.Config, configFile string) error {
	if configFile != "" {
		if err := cfg.LoadFromFile(configFile); err != nil {
			return fmt.Errorf("failed to load config %s: %w", configFile, err)
		}
	}
	return cfg.Validate()
}
