package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/nhc-service/pkg/config"
	"github.com/gilchrisn/nhc-service/pkg/output"
)

type fixture struct {
	dir string
	cfg *config.Config
}

func writeFile(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
}

// newFixture builds a cohort of three cases linked by strong edges, a hub
// gene, and a reference where one pathway matches the cluster exactly
func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "cohort.txt"),
		"case\tgenes",
		"C1\tg1,hub",
		"C2\tg2",
		"C3\tg3",
		"C4\tlonely",
	)
	writeFile(t, filepath.Join(dir, "network.txt"),
		"gene_a\tgene_b\tweight",
		"g1\tg2\t0.995",
		"g2\tg3\t0.995",
		"g1\tg3\t0.995",
		"hub\tlonely\t1.0",
		"g3\tlonely\t0.5",
	)
	writeFile(t, filepath.Join(dir, "connectivity.txt"),
		"gene\tconnectivity",
		"g1\t3",
		"g2\t3",
		"g3\t4",
		"hub\t500",
	)

	filler := make([]string, 997)
	for i := range filler {
		filler[i] = fmt.Sprintf("f%d", i)
	}
	writeFile(t, filepath.Join(dir, "pathways.txt"),
		"pathway\tgenes",
		"P1\tg1,g2,g3",
		"P2\t"+strings.Join(filler, ","),
	)

	cfg := config.NewConfig()
	cfg.Set("input.patient", filepath.Join(dir, "cohort.txt"))
	cfg.Set("input.network", filepath.Join(dir, "network.txt"))
	cfg.Set("input.connectivity", filepath.Join(dir, "connectivity.txt"))
	cfg.Set("input.pathway", filepath.Join(dir, "pathways.txt"))
	cfg.Set("performance.num_workers", 2)
	cfg.Set("logging.enable_progress", false)
	require.NoError(t, cfg.Validate())

	return fixture{dir: dir, cfg: cfg}
}

func TestRun(t *testing.T) {
	f := newFixture(t)

	result, err := NewPipeline(f.cfg, zerolog.Nop()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, result.Cases)
	assert.Equal(t, 1, result.InitialClusters)
	assert.Equal(t, 1, result.MergedClusters)
	assert.Equal(t, 1, result.EnrichedClusters)
	assert.Equal(t, 3, result.Network.Edges)
	assert.Equal(t, filepath.Join(f.dir, "cohort_NHC_output.patient_only.txt"), result.Paths.Report)

	data, err := os.ReadFile(result.Paths.Report)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Cluster_1\t3\t3\tg1,g2,g3\tC1,C2,C3\t1\tP1(2.386e-07)\tP1\t2.386e-07", lines[1])

	for _, path := range result.Paths.Temporary() {
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err), path)
	}
}

func TestRunKeepsTemporaryFiles(t *testing.T) {
	f := newFixture(t)
	out := filepath.Join(f.dir, "out")
	f.cfg.Set("output.keep_temp", true)
	f.cfg.Set("output.dir", out)

	result, err := NewPipeline(f.cfg, zerolog.Nop()).Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "cohort_temp_clusters_initial.patient_only.txt"))
	require.NoError(t, err)
	assert.Equal(t, "3\t3\tg1,g2,g3\tC1,C2,C3\n", string(data))

	_, err = os.Stat(result.Paths.Merged)
	assert.NoError(t, err)
}

func TestHubCutoffZeroKeepsHubEdges(t *testing.T) {
	f := newFixture(t)
	f.cfg.Set("algorithm.hub_cutoff", 0)

	p := NewPipeline(f.cfg, zerolog.Nop())
	inputs, err := p.Load()
	require.NoError(t, err)

	clusters, err := p.Cluster(context.Background(), inputs)
	require.NoError(t, err)
	assert.Equal(t, 4, clusters.Network.Edges)
	assert.Len(t, clusters.Merged, len(clusters.Enrichment))
}

func TestRunTracksMerges(t *testing.T) {
	f := newFixture(t)
	trace := filepath.Join(f.dir, "merges.jsonl")
	f.cfg.Set("analysis.track_merges", true)
	f.cfg.Set("analysis.output_file", trace)

	_, err := NewPipeline(f.cfg, zerolog.Nop()).Run(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(trace)
	assert.NoError(t, err)
}

func TestRunMissingInput(t *testing.T) {
	f := newFixture(t)
	f.cfg.Set("input.pathway", filepath.Join(f.dir, "missing.txt"))

	_, err := NewPipeline(f.cfg, zerolog.Nop()).Run(context.Background())
	assert.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPipeline(f.cfg, zerolog.Nop()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunEmptyInputs(t *testing.T) {
	t.Run("cohort", func(t *testing.T) {
		f := newFixture(t)
		writeFile(t, filepath.Join(f.dir, "cohort.txt"), "case\tgenes")

		result, err := NewPipeline(f.cfg, zerolog.Nop()).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, result.Cases)
		assert.Equal(t, 0, result.MergedClusters)

		data, err := os.ReadFile(result.Paths.Report)
		require.NoError(t, err)
		assert.Equal(t, strings.Join(output.ReportHeader, "\t")+"\n", string(data))
	})

	t.Run("pathways", func(t *testing.T) {
		f := newFixture(t)
		writeFile(t, filepath.Join(f.dir, "pathways.txt"), "pathway\tgenes")

		result, err := NewPipeline(f.cfg, zerolog.Nop()).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, result.EnrichedClusters)

		data, err := os.ReadFile(result.Paths.Report)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
		require.Len(t, lines, 2)
		for _, row := range lines[1:] {
			assert.True(t, strings.HasSuffix(row, "\t0\t.\t.\t."), row)
		}
		assert.Equal(t, "Cluster_1\t3\t3\tg1,g2,g3\tC1,C2,C3\t0\t.\t.\t.", lines[1])
	})
}
