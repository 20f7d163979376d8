// Package output writes the intermediate cluster files and the final
// enrichment report as tab-delimited text.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gilchrisn/nhc-service/pkg/enrichment"
	"github.com/gilchrisn/nhc-service/pkg/models"
)

// ReportHeader is the first row of the final report
var ReportHeader = []string{
	"Cluster_ID", "#Genes", "#Patients", "Gene_Cluster", "Patient_Cluster",
	"#Pathway", "Pathway_List", "Top_Pathway", "Top_Pathway_pValue",
}

// Paths holds the files produced by one run
type Paths struct {
	Initial string // unique initial clusters, removed after the run
	Merged  string // merged clusters, removed after the run
	Report  string
}

// NewPaths derives output paths from the case gene list path: its final
// extension is dropped and the files are placed in outputDir when given
func NewPaths(patientFile, outputDir string) Paths {
	prefix := strings.TrimSuffix(patientFile, filepath.Ext(patientFile))
	if outputDir != "" {
		prefix = filepath.Join(outputDir, filepath.Base(prefix))
	}
	return Paths{
		Initial: prefix + "_temp_clusters_initial.patient_only.txt",
		Merged:  prefix + "_temp_clusters_merged.patient_only.txt",
		Report:  prefix + "_NHC_output.patient_only.txt",
	}
}

// Temporary lists the intermediate files
func (p Paths) Temporary() []string {
	return []string{p.Initial, p.Merged}
}

func clusterColumns(c *models.Cluster) []string {
	return []string{
		strconv.Itoa(c.Genes.Len()),
		strconv.Itoa(c.Cases.Len()),
		strings.Join(c.Genes.Sorted(), ","),
		strings.Join(c.Cases.Sorted(), ","),
	}
}

// WriteClusters writes `#genes<TAB>#cases<TAB>genes<TAB>cases` rows with
// sorted, comma-joined members
func WriteClusters(w io.Writer, clusters []*models.Cluster) error {
	bw := bufio.NewWriter(w)
	for _, c := range clusters {
		if _, err := bw.WriteString(strings.Join(clusterColumns(c), "\t") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteReport writes the header and one row per cluster, numbered from 1
func WriteReport(w io.Writer, clusters []*models.Cluster, results []enrichment.Result) error {
	if len(clusters) != len(results) {
		return fmt.Errorf("got %d clusters but %d enrichment results", len(clusters), len(results))
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(ReportHeader, "\t") + "\n"); err != nil {
		return err
	}

	for i, c := range clusters {
		result := results[i]
		topName, topPValue := enrichment.Placeholder, enrichment.Placeholder
		if top, ok := result.Top(); ok {
			topName = top.Pathway
			topPValue = enrichment.FormatPValue(top.PValue)
		}

		row := append([]string{fmt.Sprintf("Cluster_%d", i+1)}, clusterColumns(c)...)
		row = append(row, strconv.Itoa(result.Count()), result.PathwayList(), topName, topPValue)
		if _, err := bw.WriteString(strings.Join(row, "\t") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile creates path, creating parent directories, and fills it with write
func WriteFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

// RemoveFiles deletes the given files, ignoring ones that do not exist
func RemoveFiles(paths ...string) error {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
