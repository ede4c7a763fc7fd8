package restore

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/capture"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/logger"
)

// Report is the outcome of a whole restore run. Events are appended in
// processing order; KindErrors records kinds whose capture file could not
// be loaded at all (the run continues past them).
type Report struct {
	Mode       string                  `json:"mode"`
	Instance   string                  `json:"instance"`
	DryRun     bool                    `json:"dryRun,omitempty"`
	StartedAt  time.Time               `json:"startedAt"`
	Duration   time.Duration           `json:"duration"`
	Events     []Event                 `json:"events"`
	KindErrors map[capture.Kind]string `json:"kindErrors,omitempty"`
	Notes      []string                `json:"notes,omitempty"`
}

func NewReport(mode, instance string, dryRun bool) *Report {
	return &Report{
		Mode:       mode,
		Instance:   instance,
		DryRun:     dryRun,
		StartedAt:  time.Now(),
		KindErrors: make(map[capture.Kind]string),
	}
}

func (r *Report) Add(e Event) {
	r.Events = append(r.Events, e)
}

func (r *Report) AddKindError(kind capture.Kind, err error) {
	r.KindErrors[kind] = reasonOf(err)
}

func (r *Report) AddNote(format string, args ...any) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

func (r *Report) Finish() {
	r.Duration = time.Since(r.StartedAt)
}

// Count returns the number of events with the given status.
func (r *Report) Count(s Status) int {
	n := 0
	for _, e := range r.Events {
		if e.Status == s {
			n++
		}
	}
	return n
}

// Failures returns the failed events, in processing order.
func (r *Report) Failures() []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Status == StatusFailed {
			out = append(out, e)
		}
	}
	return out
}

// TotalFailed counts failed records plus kinds that never loaded.
func (r *Report) TotalFailed() int {
	return r.Count(StatusFailed) + len(r.KindErrors)
}

// kindOrder fixes the rendering order to match processing order.
var kindOrder = []capture.Kind{
	capture.KindSite,
	capture.KindUser,
	capture.KindDevice,
	capture.KindTimeframe,
	capture.KindGroup,
	capture.KindShift,
}

type kindTally struct {
	created, updated, skipped, failed int
}

func (r *Report) tally() map[capture.Kind]*kindTally {
	out := make(map[capture.Kind]*kindTally)
	for _, e := range r.Events {
		t := out[e.Kind]
		if t == nil {
			t = &kindTally{}
			out[e.Kind] = t
		}
		switch e.Status {
		case StatusCreated:
			t.created++
		case StatusUpdated:
			t.updated++
		case StatusSkipped:
			t.skipped++
		case StatusFailed:
			t.failed++
		}
	}
	return out
}

// Render writes the human-readable run summary.
func (r *Report) Render(w io.Writer) {
	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 70))
	title := "RESTORE SUMMARY"
	if r.DryRun {
		title = "RESTORE SUMMARY (DRY-RUN)"
	}
	fmt.Fprintf(w, "%s\n", logger.Bold(title))
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("=", 70))

	fmt.Fprintf(w, "  Mode:         %s\n", r.Mode)
	fmt.Fprintf(w, "  Instance:     %s\n", r.Instance)
	fmt.Fprintf(w, "  Started:      %s\n", r.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  Duration:     %s\n", r.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  Records:      %s\n\n", humanize.Comma(int64(len(r.Events))))

	tallies := r.tally()
	fmt.Fprintf(w, "  %-12s %8s %8s %8s %8s\n", "Kind", "Created", "Updated", "Skipped", "Failed")
	for _, k := range kindOrder {
		t := tallies[k]
		if t == nil {
			continue
		}
		failedCol := fmt.Sprintf("%8d", t.failed)
		if t.failed > 0 {
			failedCol = logger.Red(failedCol)
		}
		fmt.Fprintf(w, "  %-12s %8d %8d %8d %s\n", k, t.created, t.updated, t.skipped, failedCol)
	}
	fmt.Fprintln(w)

	for _, k := range kindOrder {
		if msg, ok := r.KindErrors[k]; ok {
			fmt.Fprintf(w, "  %s could not load %s data: %s\n", logger.Red("ERROR"), k, msg)
		}
	}
	for _, e := range r.Failures() {
		fmt.Fprintf(w, "  %s %s %q: %s\n", logger.Red("FAILED"), e.Kind, e.Key, e.Reason)
	}
	for _, n := range r.Notes {
		fmt.Fprintf(w, "  %s %s\n", logger.Yellow("NOTE"), n)
	}

	if r.TotalFailed() == 0 {
		fmt.Fprintf(w, "\n%s\n", logger.Green("Restore completed without failures"))
	} else {
		fmt.Fprintf(w, "\n%s\n", logger.Red(fmt.Sprintf("Restore completed with %d failure(s)", r.TotalFailed())))
	}
}

// RenderJSON writes the machine-readable report.
func (r *Report) RenderJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
