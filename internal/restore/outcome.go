// Package restore implements the reconciliation engine: per-kind upserters,
// the run orchestrator, and the run report.
package restore

import (
	"errors"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/capture"
	xmerrors "github.com/xmatters/xm-labs-restore-instance-data/internal/errors"
)

// Status is the per-record restore outcome.
type Status string

const (
	StatusCreated Status = "created"
	StatusUpdated Status = "updated"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Event is one record's outcome, carrying enough context to diagnose a
// failure without re-running: kind, business key, and the remote's detail.
type Event struct {
	Kind   capture.Kind `json:"kind"`
	Key    string       `json:"key"`
	Status Status       `json:"status"`
	Reason string       `json:"reason,omitempty"`
	Notes  []string     `json:"notes,omitempty"`
}

func created(kind capture.Kind, key string) Event {
	return Event{Kind: kind, Key: key, Status: StatusCreated}
}

func updated(kind capture.Kind, key string) Event {
	return Event{Kind: kind, Key: key, Status: StatusUpdated}
}

func skipped(kind capture.Kind, key, reason string) Event {
	return Event{Kind: kind, Key: key, Status: StatusSkipped, Reason: reason}
}

func failed(kind capture.Kind, key string, err error) Event {
	return Event{Kind: kind, Key: key, Status: StatusFailed, Reason: reasonOf(err)}
}

// withNote appends an informational, non-failing note to an event.
func (e Event) withNote(note string) Event {
	e.Notes = append(e.Notes, note)
	return e
}

// reasonOf keeps the structured error text, which preserves the remote's
// code/reason/message envelope verbatim.
func reasonOf(err error) string {
	if err == nil {
		return ""
	}
	var restoreErr *xmerrors.RestoreError
	if errors.As(err, &restoreErr) {
		return restoreErr.Error()
	}
	return err.Error()
}
