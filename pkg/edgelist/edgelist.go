// Package edgelist reads graph snapshots from CSV edge lists.
//
// The first row is a header naming the columns. The source and target
// columns (matched case-insensitively, in any position) hold one undirected
// edge per row; other columns are ignored.
package edgelist

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dd0wney/cluso-dyncomm/pkg/snapshot"
)

// Column names of an edge list.
const (
	SourceColumn = "source"
	TargetColumn = "target"
)

var (
	// ErrMissingColumn is returned when the header lacks source or target.
	ErrMissingColumn = errors.New("missing edge list column")

	// ErrEmptyNodeID is returned for a row with a blank source or target.
	ErrEmptyNodeID = errors.New("empty node id")
)

// Stats describes what Read consumed.
type Stats struct {
	Rows             int
	DroppedSelfLoops int
}

// Read parses a CSV edge list into a snapshot. Node insertion order is the
// order in which ids first appear, source before target.
func Read(r io.Reader) (*snapshot.Snapshot[string], error) {
	s, _, err := ReadStats(r)
	return s, err
}

// ReadStats is Read that also reports row counts.
func ReadStats(r io.Reader) (*snapshot.Snapshot[string], Stats, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, Stats{}, fmt.Errorf("%w: empty input, need %q and %q", ErrMissingColumn, SourceColumn, TargetColumn)
	}
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read header: %w", err)
	}

	src, dst, err := columns(header)
	if err != nil {
		return nil, Stats{}, err
	}

	b := snapshot.NewBuilder[string]()
	var stats Stats

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read rows: %w", err)
		}
		if isBlank(record) {
			continue
		}
		stats.Rows++

		u := field(record, src)
		v := field(record, dst)
		if u == "" || v == "" {
			line, _ := reader.FieldPos(0)
			return nil, stats, fmt.Errorf("%w: line %d", ErrEmptyNodeID, line)
		}
		b.AddEdge(u, v)
	}

	stats.DroppedSelfLoops = b.DroppedSelfLoops()
	return b.Build(), stats, nil
}

// ReadFile reads the edge list at path.
func ReadFile(path string) (*snapshot.Snapshot[string], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func columns(header []string) (src, dst int, err error) {
	src, dst = -1, -1
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		switch {
		case name == SourceColumn && src < 0:
			src = i
		case name == TargetColumn && dst < 0:
			dst = i
		}
	}

	var missing []string
	if src < 0 {
		missing = append(missing, SourceColumn)
	}
	if dst < 0 {
		missing = append(missing, TargetColumn)
	}
	if len(missing) > 0 {
		return 0, 0, fmt.Errorf("%w: %s (header %v)", ErrMissingColumn, strings.Join(missing, ", "), header)
	}
	return src, dst, nil
}

func field(record []string, idx int) string {
	if idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
