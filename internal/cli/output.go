package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pfrederiksen/kcycle-crawler/internal/logger"
)

// OutputFormat specifies the summary format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// RunSummary describes the outcome of one command
type RunSummary struct {
	Command    string           `json:"command"`
	Years      []int            `json:"years,omitempty"`
	Records    int              `json:"records"`
	Output     string           `json:"output,omitempty"`
	FinishedAt time.Time        `json:"finished_at"`
	Elapsed    time.Duration    `json:"elapsed_ns"`
	Requests   int              `json:"requests"`
	AvgFetch   string           `json:"avg_fetch,omitempty"`
	Counters   map[string]int64 `json:"counters,omitempty"`
}

// newRunSummary fills in timing and counters from the metrics snapshot
func newRunSummary(command string, years []int, records int, started time.Time) *RunSummary {
	snapshot := logger.GetMetricsSnapshot()
	summary := &RunSummary{
		Command:    command,
		Years:      years,
		Records:    records,
		FinishedAt: time.Now().UTC(),
		Elapsed:    time.Since(started),
		Counters:   snapshot.Counters,
	}
	if fetches, ok := snapshot.Timings["fetch"]; ok {
		summary.Requests = fetches.Count
		summary.AvgFetch = fetches.Average
	}
	return summary
}

// WriteSummary writes the summary in the specified format
func WriteSummary(w io.Writer, summary *RunSummary, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, summary)
	case FormatText:
		return writeText(w, summary)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the summary as JSON
func writeJSON(w io.Writer, summary *RunSummary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(summary)
}

// writeText outputs the summary as a table
func writeText(w io.Writer, summary *RunSummary) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("kcycle %s", summary.Command))

	if len(summary.Years) > 0 {
		t.AppendRow(table.Row{"years", formatYears(summary.Years)})
	}
	t.AppendRow(table.Row{"records", summary.Records})
	if summary.Output != "" {
		t.AppendRow(table.Row{"output", summary.Output})
	} else {
		t.AppendRow(table.Row{"output", "(nothing written)"})
	}
	t.AppendRow(table.Row{"elapsed", summary.Elapsed.Round(time.Millisecond)})
	if summary.Requests > 0 {
		t.AppendRow(table.Row{"requests", summary.Requests})
		t.AppendRow(table.Row{"avg fetch", summary.AvgFetch})
	}

	if len(summary.Counters) > 0 {
		t.AppendSeparator()
		for _, name := range sortCounterNames(summary.Counters) {
			t.AppendRow(table.Row{name, summary.Counters[name]})
		}
	}

	t.Render()
	return nil
}
