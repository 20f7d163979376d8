package utils

import (
	"encoding/json"
	"os"
	"time"
)

// MergeEvent is one line of the merge trace
type MergeEvent struct {
	Step       int     `json:"merge"`
	Left       int     `json:"left"`
	Right      int     `json:"right"`
	Similarity float64 `json:"similarity"`
	Genes      int     `json:"genes"`
	Cases      int     `json:"cases"`
	Timestamp  int64   `json:"timestamp"`
}

// MergeTracker appends merge events to a JSON lines file. A nil tracker
// ignores every call.
type MergeTracker struct {
	file    *os.File
	encoder *json.Encoder
	err     error
}

// NewMergeTracker creates the trace file
func NewMergeTracker(filename string) (*MergeTracker, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	return &MergeTracker{
		file:    file,
		encoder: json.NewEncoder(file),
	}, nil
}

// LogMerge records one merge. The first write error is kept and returned by Close.
func (mt *MergeTracker) LogMerge(step, left, right int, similarity float64, genes, cases int) {
	if mt == nil || mt.err != nil {
		return
	}

	event := MergeEvent{
		Step:       step,
		Left:       left,
		Right:      right,
		Similarity: similarity,
		Genes:      genes,
		Cases:      cases,
		Timestamp:  time.Now().Unix(),
	}

	mt.err = mt.encoder.Encode(event)
}

// Close flushes the trace file
func (mt *MergeTracker) Close() error {
	if mt == nil || mt.file == nil {
		return nil
	}
	closeErr := mt.file.Close()
	if mt.err != nil {
		return mt.err
	}
	return closeErr
}
