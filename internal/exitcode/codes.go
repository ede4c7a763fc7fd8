// Package exitcode maps restore run results onto process exit codes.
package exitcode

import (
	"context"
	stderrors "errors"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/errors"
)

// Standard exit codes following BSD sysexits.h conventions
// See: https://man.freebsd.org/cgi/man.cgi?query=sysexits
const (
	// Success - operation completed successfully
	Success = 0

	// General - general error (fallback)
	General = 1

	// UsageError - command line usage error
	UsageError = 2

	// DataError - input data was incorrect
	DataError = 65

	// NoInput - input file did not exist or was not readable
	NoInput = 66

	// NoHost - host name unknown (for network operations)
	NoHost = 68

	// Unavailable - service unavailable (target instance unreachable)
	Unavailable = 69

	// Software - internal software error
	Software = 70

	// IOError - error during I/O operation
	IOError = 74

	// Protocol - remote error in protocol
	Protocol = 76

	// NoPerm - permission denied
	NoPerm = 77

	// Config - configuration error
	Config = 78

	// Timeout - operation timeout
	Timeout = 124

	// Cancelled - operation cancelled by user (Ctrl+C)
	Cancelled = 130
)

// ForError returns the exit code for a fatal pre-processing error.
// Per-record failures never reach here; they surface through the run report.
func ForError(err error) int {
	if err == nil {
		return Success
	}
	if stderrors.Is(err, context.Canceled) {
		return Cancelled
	}

	switch errors.GetCategory(err) {
	case errors.CategoryConfig:
		return Config
	case errors.CategoryAuth:
		return NoPerm
	case errors.CategoryInput:
		if errors.GetCode(err) == errors.ErrCodeFileMissing {
			return NoInput
		}
		return DataError
	case errors.CategoryNetwork:
		if errors.GetCode(err) == errors.ErrCodeTimeout {
			return Timeout
		}
		return Unavailable
	case errors.CategoryRemote:
		return Protocol
	}

	return General
}

// ForReport returns the exit code for a completed run: zero only when every
// selected kind finished with zero failed outcomes.
func ForReport(failed int) int {
	if failed == 0 {
		return Success
	}
	return DataError
}
