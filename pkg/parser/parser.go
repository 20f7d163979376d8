// Package parser reads the tab-delimited reference inputs: case gene lists,
// network edges, gene connectivity and pathway gene sets. Every file starts
// with a header line, which is skipped.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gilchrisn/nhc-service/pkg/models"
)

const maxLineBytes = 64 * 1024 * 1024

// ParseError reports a malformed input row
type ParseError struct {
	File string
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s:%d: %s: %v", e.File, e.Line, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// readRows calls fn for every non-blank data row with exactly the expected
// number of tab-separated columns
func readRows(r io.Reader, name string, columns int, fn func(line int, fields []string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		if line == 1 {
			continue
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) != columns {
			return &ParseError{File: name, Line: line,
				Msg: fmt.Sprintf("expected %d tab-separated columns, found %d", columns, len(fields))}
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if err := fn(line, fields); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	return nil
}

// splitGenes splits a comma-separated gene list, dropping empty entries
func splitGenes(list string) []string {
	parts := strings.Split(list, ",")
	genes := make([]string, 0, len(parts))
	for _, p := range parts {
		if g := strings.TrimSpace(p); g != "" {
			genes = append(genes, g)
		}
	}
	return genes
}

// ReadCases parses `case_id<TAB>comma_separated_genes` rows in file order
func ReadCases(r io.Reader, name string) (*models.Cohort, error) {
	cohort := models.NewCohort()
	err := readRows(r, name, 2, func(line int, fields []string) error {
		if fields[0] == "" {
			return &ParseError{File: name, Line: line, Msg: "empty case id"}
		}
		cohort.AddCase(fields[0], splitGenes(fields[1]))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cohort, nil
}

// ReadEdges parses `geneA<TAB>geneB<TAB>weight` rows; weights must lie in [0, 1]
func ReadEdges(r io.Reader, name string) ([]models.Edge, error) {
	edges := make([]models.Edge, 0)
	err := readRows(r, name, 3, func(line int, fields []string) error {
		weight, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return &ParseError{File: name, Line: line, Msg: "invalid edge weight", Err: err}
		}
		if !(weight >= 0 && weight <= 1) {
			return &ParseError{File: name, Line: line, Msg: fmt.Sprintf("edge weight %v outside [0,1]", weight)}
		}
		edges = append(edges, models.Edge{A: fields[0], B: fields[1], Weight: weight})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return edges, nil
}

// ReadConnectivity parses `gene<TAB>integer_connectivity` rows. A gene listed
// more than once keeps its highest count.
func ReadConnectivity(r io.Reader, name string) (models.Connectivity, error) {
	connectivity := make(models.Connectivity)
	err := readRows(r, name, 2, func(line int, fields []string) error {
		count, err := strconv.Atoi(fields[1])
		if err != nil {
			return &ParseError{File: name, Line: line, Msg: "invalid connectivity", Err: err}
		}
		if previous, exists := connectivity[fields[0]]; !exists || count > previous {
			connectivity[fields[0]] = count
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return connectivity, nil
}

// ReadPathways parses `pathway_id<TAB>comma_separated_genes` rows in file order
func ReadPathways(r io.Reader, name string) (*models.PathwayReference, error) {
	reference := models.NewPathwayReference()
	err := readRows(r, name, 2, func(line int, fields []string) error {
		if fields[0] == "" {
			return &ParseError{File: name, Line: line, Msg: "empty pathway id"}
		}
		reference.AddPathway(fields[0], splitGenes(fields[1]))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reference, nil
}

func loadFile[T any](path string, read func(io.Reader, string) (T, error)) (T, error) {
	var zero T
	file, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer file.Close()
	return read(file, path)
}

// LoadCases reads a case gene list file
func LoadCases(path string) (*models.Cohort, error) {
	return loadFile(path, ReadCases)
}

// LoadEdges reads a network edge file
func LoadEdges(path string) ([]models.Edge, error) {
	return loadFile(path, ReadEdges)
}

// LoadConnectivity reads a gene connectivity file
func LoadConnectivity(path string) (models.Connectivity, error) {
	return loadFile(path, ReadConnectivity)
}

// LoadPathways reads a pathway gene set file
func LoadPathways(path string) (*models.PathwayReference, error) {
	return loadFile(path, ReadPathways)
}
