package planner

import "github.com/pkg/errors"

// ErrorPolicy controls how Calculate/Update surface a failing Result (spec
// §4.8's configurable error-handling capability).
type ErrorPolicy int

const (
	// ReturnError surfaces failures as an (error-valued Result, error)
	// pair, the default for library use.
	ReturnError ErrorPolicy = iota
	// PanicOnError panics on any failing Result instead of returning one,
	// for callers that have already validated their own inputs and want
	// failures to be loud.
	PanicOnError
)

// Config configures a Planner (spec §6 new(dof, delta_t, error_policy)).
type Config struct {
	// DoF is the number of degrees of freedom this Planner plans for.
	DoF int
	// DeltaTime is the control cycle duration Update advances by.
	DeltaTime float64
	// ErrorPolicy selects how failures are surfaced.
	ErrorPolicy ErrorPolicy
	// MaxDuration, if positive, makes Calculate fail with
	// ErrorTrajectoryDuration when any DoF's synchronized profile within a
	// single leg is longer than this duration (spec §7). Brake sections and
	// the total across legs are not checked against it.
	MaxDuration float64
	// CheckCurrentStateWithinLimits enables the spec §4.8
	// check_current_state_within_limits future-feasibility gate: a current
	// state whose acceleration cannot be braked to zero before exceeding
	// v_max fails ValidateInput instead of being silently handed to brake.
	CheckCurrentStateWithinLimits bool
	// CheckTargetStateWithinLimits enables the equivalent future-feasibility
	// gate on the requested target state(s).
	CheckTargetStateWithinLimits bool
}

// Validate checks the structural preconditions a Planner needs to operate.
func (c Config) Validate() error {
	if c.DoF <= 0 {
		return errors.New("planner: dof must be positive")
	}
	if c.DeltaTime <= 0 {
		return errors.New("planner: delta_t must be positive")
	}
	if c.MaxDuration < 0 {
		return errors.New("planner: max_duration must be non-negative")
	}
	return nil
}
