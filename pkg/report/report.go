// Package report renders detection results for humans and writes them as
// JSON, optionally snappy-compressed.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-dyncomm/pkg/temporal"
)

// Envelope is the JSON document produced by a run: the HTTP response body
// and the CLI's -json output share it.
type Envelope struct {
	RunID   string                    `json:"run_id"`
	Results []temporal.Record[string] `json:"results"`
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	bootstrapStyle = cellStyle.
			Foreground(lipgloss.Color("#FF00FF"))

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// Table renders one row per record.
func Table(records []temporal.Record[string]) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(r.Snapshot),
			string(r.Phase),
			strconv.Itoa(r.Nodes),
			strconv.Itoa(r.Edges),
			strconv.Itoa(r.NumCommunities),
			strconv.FormatFloat(r.Modularity, 'f', 4, 64),
			strconv.Itoa(r.LargestCommunity),
			strconv.FormatFloat(r.AvgClustering, 'f', 4, 64),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("SNAPSHOT", "PHASE", "NODES", "EDGES", "COMMUNITIES", "MODULARITY", "LARGEST", "CLUSTERING").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(records) && records[row].Phase == temporal.PhaseBootstrap:
				return bootstrapStyle
			default:
				return cellStyle
			}
		})

	return t.String()
}

// Summary is a one-line digest of a run.
func Summary(env Envelope) string {
	if len(env.Results) == 0 {
		return fmt.Sprintf("run %s: no snapshots", env.RunID)
	}

	var total float64
	for _, r := range env.Results {
		total += r.Modularity
	}
	last := env.Results[len(env.Results)-1]
	return fmt.Sprintf("run %s: %d snapshots, mean modularity %.4f, %d communities in snapshot %d",
		env.RunID, len(env.Results), total/float64(len(env.Results)), last.NumCommunities, last.Snapshot)
}

// WriteJSON encodes env to w. With compress set the document is wrapped in
// a snappy framed stream.
func WriteJSON(w io.Writer, env Envelope, compress bool) error {
	if !compress {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(env)
	}

	sw := snappy.NewBufferedWriter(w)
	if err := json.NewEncoder(sw).Encode(env); err != nil {
		sw.Close()
		return err
	}
	return sw.Close()
}

// ReadJSON decodes a document written by WriteJSON.
func ReadJSON(r io.Reader, compressed bool) (Envelope, error) {
	if compressed {
		r = snappy.NewReader(r)
	}
	var env Envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return Envelope{}, fmt.Errorf("decode results: %w", err)
	}
	return env, nil
}
