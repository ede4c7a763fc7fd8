// Package progress renders a per-kind record counter on interactive runs.
package progress

import (
	"os"

	"github.com/schollz/progressbar/v3"
)

// Bar counts restored records for one kind. A disabled bar is a no-op, used
// for quiet, json, and non-interactive runs.
type Bar struct {
	bar *progressbar.ProgressBar
}

// NewBar creates an item-count bar over total records.
func NewBar(total int, description string, enabled bool) *Bar {
	if !enabled || total <= 0 {
		return &Bar{}
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
	)
	return &Bar{bar: bar}
}

// Add advances the bar by one record.
func (b *Bar) Add(n int) {
	if b.bar != nil {
		_ = b.bar.Add(n)
	}
}

// Finish clears the bar.
func (b *Bar) Finish() {
	if b.bar != nil {
		_ = b.bar.Finish()
	}
}
