package exitcode

import (
	"context"
	"fmt"
	"testing"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/errors"
)

func TestExitCodeConstants(t *testing.T) {
	// Verify exit code constants match BSD sysexits.h values
	tests := []struct {
		name     string
		code     int
		expected int
	}{
		{"Success", Success, 0},
		{"General", General, 1},
		{"UsageError", UsageError, 2},
		{"DataError", DataError, 65},
		{"NoInput", NoInput, 66},
		{"NoHost", NoHost, 68},
		{"Unavailable", Unavailable, 69},
		{"Software", Software, 70},
		{"IOError", IOError, 74},
		{"Protocol", Protocol, 76},
		{"NoPerm", NoPerm, 77},
		{"Config", Config, 78},
		{"Timeout", Timeout, 124},
		{"Cancelled", Cancelled, 130},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.expected {
				t.Errorf("%s = %d, want %d", tt.name, tt.code, tt.expected)
			}
		})
	}
}

func TestForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, Success},
		{"cancelled", context.Canceled, Cancelled},
		{"wrapped cancelled", fmt.Errorf("run aborted: %w", context.Canceled), Cancelled},
		{"config", errors.NewConfigError(errors.ErrCodeMissingConfig, "no url", ""), Config},
		{"auth", errors.NewAuthError(errors.ErrCodeAuthFailed, "bad credentials", ""), NoPerm},
		{"file missing", errors.NewInputError(errors.ErrCodeFileMissing, "no sites file"), NoInput},
		{"parse error", errors.NewInputError(errors.ErrCodeParseError, "bad json"), DataError},
		{"transport", errors.NewTransportError("dial failed", nil), Unavailable},
		{"remote reject", errors.NewRemoteError(errors.ErrCodeRemoteRejected, "rejected", ""), Protocol},
		{"plain", fmt.Errorf("something else"), General},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ForError(tt.err); got != tt.want {
				t.Errorf("ForError() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestForReport(t *testing.T) {
	if got := ForReport(0); got != Success {
		t.Errorf("ForReport(0) = %d, want %d", got, Success)
	}
	if got := ForReport(3); got != DataError {
		t.Errorf("ForReport(3) = %d, want %d", got, DataError)
	}
}
