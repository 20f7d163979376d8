// Package clustering provides the three gene clustering stages:
// 1. Greedy network-guided expansion of one cluster per (case, gene) seed
// 2. Collection of the unique initial clusters
// 3. Iterative merging of overlapping clusters
package clustering

import (
	"runtime"

	"github.com/rs/zerolog"
)

// ===== CONFIGURATION STRUCTS =====

// Options contains the configuration of the clustering stages
type Options struct {
	MergeCutoff    float64 `json:"merge_cutoff"`    // Minimum similarity for a merge, inclusive
	NumWorkers     int     `json:"num_workers"`     // Goroutines expanding seed cases
	EnableProgress bool    `json:"enable_progress"` // Log one line per expanded case

	Logger zerolog.Logger `json:"-"`
}

// MinClusterGenes is the smallest gene count of an accepted initial cluster
const MinClusterGenes = 3

// ===== DEFAULT CONFIGURATIONS =====

// DefaultOptions returns the standard merge cutoff with one worker per CPU
func DefaultOptions() Options {
	return Options{
		MergeCutoff:    0.5,
		NumWorkers:     runtime.NumCPU(),
		EnableProgress: true,
		Logger:         zerolog.Nop(),
	}
}
