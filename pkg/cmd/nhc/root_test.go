package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/nhc-service/pkg/config"
)

func writeInputs(t *testing.T, dir string) []string {
	t.Helper()
	files := map[string]string{
		"cases.txt":        "case\tgenes\nC1\tg1\nC2\tg2\nC3\tg3\n",
		"network.txt":      "a\tb\tw\ng1\tg2\t0.995\ng2\tg3\t0.995\n",
		"connectivity.txt": "gene\tcount\ng1\t1\n",
		"pathways.txt":     "pathway\tgenes\nP1\tg1,g2,g3\nP2\tx1,x2\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return []string{
		"-p", filepath.Join(dir, "cases.txt"),
		"--network", filepath.Join(dir, "network.txt"),
		"--connectivity", filepath.Join(dir, "connectivity.txt"),
		"--pathway", filepath.Join(dir, "pathways.txt"),
		"--log-level", "error",
	}
}

func TestRootCommandWritesReport(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "results")

	cmd := newRootCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs(append(writeInputs(t, dir), "-w", "0.99", "-b", "0", "-m", "0.5", "--output-dir", out, "--workers", "1"))

	require.NoError(t, cmd.ExecuteContext(context.Background()))

	report := filepath.Join(out, "cases_NHC_output.patient_only.txt")
	assert.Equal(t, report, strings.TrimSpace(stdout.String()))

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Cluster_1\t3\t3\tg1,g2,g3\tC1,C2,C3\t")
}

func TestRootCommandRequiresPatient(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	assert.ErrorIs(t, cmd.Execute(), config.ErrInvalidConfig)
}

func TestRootCommandConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nhc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("algorithm:\n  merge_cutoff: 1.5\n"), 0644))

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs(append(writeInputs(t, dir), "--config", path))

	assert.ErrorIs(t, cmd.Execute(), config.ErrInvalidConfig)
}

func TestRootCommandRejectsArgs(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"extra"})

	assert.Error(t, cmd.Execute())
}
