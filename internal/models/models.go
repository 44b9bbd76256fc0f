package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument reports a caller-supplied value that violates an
// operation's preconditions, such as a malformed quarter or chunking
// parameters out of range.
var ErrInvalidArgument = errors.New("invalid argument")

// Quarter identifies one calendar quarter of a filing year.
type Quarter string

const (
	Q1 Quarter = "Q1"
	Q2 Quarter = "Q2"
	Q3 Quarter = "Q3"
	Q4 Quarter = "Q4"
)

// ParseQuarter normalizes and validates a quarter value.
func ParseQuarter(s string) (Quarter, error) {
	q := Quarter(strings.ToUpper(strings.TrimSpace(s)))
	switch q {
	case Q1, Q2, Q3, Q4:
		return q, nil
	}
	return "", fmt.Errorf("%w: quarter must be one of Q1, Q2, Q3, Q4, got %q", ErrInvalidArgument, s)
}

// Months returns the first and last calendar month covered by the quarter.
func (q Quarter) Months() (first, last int) {
	switch q {
	case Q1:
		return 1, 3
	case Q2:
		return 4, 6
	case Q3:
		return 7, 9
	case Q4:
		return 10, 12
	}
	return 0, 0
}

// Key builds the canonical registry key for one ingested filing,
// e.g. "AAPL_2024_Q1". At most one filing is ever ingested per key.
func Key(ticker string, year int, quarter Quarter) string {
	return fmt.Sprintf("%s_%d_%s", strings.ToUpper(ticker), year, quarter)
}

// RegistryEntry records one completed ingestion. Entries are written once
// and never mutated or deleted.
type RegistryEntry struct {
	Ticker    string  `json:"ticker"`
	Year      int     `json:"year"`
	Quarter   Quarter `json:"quarter"`
	Chunks    int     `json:"chunks"`
	SourceURL string  `json:"source_url"`
}

// ChunkMetadata describes one stored chunk. GlobalID equals the chunk's
// position in the text store and is never reused.
type ChunkMetadata struct {
	Key       string  `json:"key"`
	Ticker    string  `json:"ticker"`
	Year      int     `json:"year"`
	Quarter   Quarter `json:"quarter"`
	ChunkID   int     `json:"chunk_id"`
	GlobalID  int     `json:"global_id"`
	SourceURL string  `json:"source_url"`
}

// RetrievedChunk pairs a stored chunk with its metadata and the distance
// from the query embedding. Lower distance means a closer match.
type RetrievedChunk struct {
	Text     string
	Meta     ChunkMetadata
	Distance float32
}
