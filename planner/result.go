package planner

// Result mirrors spec §7's stable integer result codes, kept numerically
// identical to the values a process exit code or C-ABI caller would see.
type Result int

const (
	// Working means the trajectory has not yet finished; call Update again
	// next control cycle.
	Working Result = 0
	// Finished means the trajectory reached its target state.
	Finished Result = 1
	// Error is a generic, otherwise-unclassified failure.
	Error Result = -1
	// ErrorInvalidInput means ValidateInput rejected the InputParameter.
	ErrorInvalidInput Result = -100
	// ErrorTrajectoryDuration means the synchronized duration exceeds a
	// configured maximum.
	ErrorTrajectoryDuration Result = -101
	// ErrorPositionalLimits means a computed profile would exceed
	// configured positional section limits.
	ErrorPositionalLimits Result = -102
	// ErrorExecutionTimeCalculation means Step-1 found no feasible profile
	// for some DoF.
	ErrorExecutionTimeCalculation Result = -110
	// ErrorSynchronizationCalculation means Step-2 could not stretch some
	// DoF to the synchronized duration.
	ErrorSynchronizationCalculation Result = -111
)

// String gives a short, stable name for logging; it intentionally mirrors
// the Go identifier names above rather than prose.
func (r Result) String() string {
	switch r {
	case Working:
		return "Working"
	case Finished:
		return "Finished"
	case Error:
		return "Error"
	case ErrorInvalidInput:
		return "ErrorInvalidInput"
	case ErrorTrajectoryDuration:
		return "ErrorTrajectoryDuration"
	case ErrorPositionalLimits:
		return "ErrorPositionalLimits"
	case ErrorExecutionTimeCalculation:
		return "ErrorExecutionTimeCalculation"
	case ErrorSynchronizationCalculation:
		return "ErrorSynchronizationCalculation"
	default:
		return "Result(unknown)"
	}
}

// IsError reports whether r represents any failure result.
func (r Result) IsError() bool { return r < 0 }
