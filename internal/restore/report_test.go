package restore

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/capture"
	xmerrors "github.com/xmatters/xm-labs-restore-instance-data/internal/errors"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/logger"
)

func sampleReport() *Report {
	r := NewReport("all", "np", false)
	r.Add(created(capture.KindSite, "HQ"))
	r.Add(updated(capture.KindSite, "Lab"))
	r.Add(created(capture.KindUser, "asmith"))
	r.Add(skipped(capture.KindUser, "xmadmin", "internal user holding the Company Admin role"))
	r.Add(failed(capture.KindGroup, "Ops",
		xmerrors.NewRemoteError(xmerrors.ErrCodeRemoteRejected,
			"target rejected request (HTTP 409)", "code: 409, reason: Conflict, message: duplicate")))
	r.AddNote("observers not restored for %q", "Ops")
	r.Finish()
	return r
}

func TestReportCounts(t *testing.T) {
	r := sampleReport()

	tests := []struct {
		status Status
		want   int
	}{
		{StatusCreated, 2},
		{StatusUpdated, 1},
		{StatusSkipped, 1},
		{StatusFailed, 1},
	}
	for _, tt := range tests {
		if got := r.Count(tt.status); got != tt.want {
			t.Errorf("Count(%s) = %d, want %d", tt.status, got, tt.want)
		}
	}
	if got := r.TotalFailed(); got != 1 {
		t.Errorf("TotalFailed = %d, want 1", got)
	}
}

func TestTotalFailedIncludesKindErrors(t *testing.T) {
	r := NewReport("all", "np", false)
	r.AddKindError(capture.KindSite, xmerrors.NewInputError(xmerrors.ErrCodeFileMissing, "no sites file"))
	if got := r.TotalFailed(); got != 1 {
		t.Errorf("TotalFailed = %d, want 1 for a kind load error", got)
	}
}

func TestReportRender(t *testing.T) {
	logger.DisableColors()
	defer logger.EnableColors()

	var buf bytes.Buffer
	sampleReport().Render(&buf)
	out := buf.String()

	for _, want := range []string{
		"RESTORE SUMMARY",
		"Mode:         all",
		"Instance:     np",
		"Site",
		"FAILED Group \"Ops\"",
		"Conflict",
		"NOTE observers not restored",
		"1 failure(s)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered report missing %q:\n%s", want, out)
		}
	}
}

func TestReportRenderCleanRun(t *testing.T) {
	logger.DisableColors()
	defer logger.EnableColors()

	r := NewReport("sites", "prod", true)
	r.Add(created(capture.KindSite, "HQ"))
	r.Finish()

	var buf bytes.Buffer
	r.Render(&buf)
	out := buf.String()

	if !strings.Contains(out, "DRY-RUN") {
		t.Error("dry-run banner missing")
	}
	if !strings.Contains(out, "without failures") {
		t.Error("clean-run line missing")
	}
}

func TestReportJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleReport().RenderJSON(&buf); err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal rendered report: %v", err)
	}
	if decoded.Mode != "all" || decoded.Instance != "np" {
		t.Errorf("round-trip lost run metadata: %+v", decoded)
	}
	if len(decoded.Events) != 5 {
		t.Errorf("round-trip events = %d, want 5", len(decoded.Events))
	}
	if decoded.Events[4].Reason == "" {
		t.Error("round-trip lost the failure reason")
	}
}
