package config

import "taupgo/internal/taperror"

// Documented process exit codes.
const (
	ExitSuccess            = 0
	ExitModelReadFailed    = 202
	ExitModelFileMalformed = 203
	ExitTauIntegralFailure = 204
	ExitPhaseListMalformed = 205
)

// ExitCodeFor maps an engine error to its documented CLI exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch {
	case taperror.Is(err, taperror.ModelReadFailure):
		return ExitModelReadFailed
	case taperror.Is(err, taperror.SerializationMismatch):
		return ExitModelFileMalformed
	case taperror.Is(err, taperror.TauIntegralFailure):
		return ExitTauIntegralFailure
	case taperror.Is(err, taperror.PhaseListInvalid):
		return ExitPhaseListMalformed
	case taperror.Is(err, taperror.DepthOutOfRange):
		return ExitModelFileMalformed
	case taperror.Is(err, taperror.InterpolationDegenerate):
		return ExitTauIntegralFailure
	default:
		return ExitModelReadFailed
	}
}
