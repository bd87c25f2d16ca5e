package planner

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/trajgen/profile"
	"go.viam.com/trajgen/step1"
	"go.viam.com/trajgen/sync"
)

// InputParameter is the per-Calculate call input, one entry per DoF in
// CurrentState/TargetState/Limits/Interface (spec §6/§3 InputParameter).
type InputParameter struct {
	CurrentState []profile.State
	TargetState  []profile.State
	Limits       []profile.Limits
	Interface    []step1.Interface
	SyncStrategy sync.Strategy
	// MinDuration optionally forces a longer-than-time-optimal
	// synchronized duration (spec §4.5's externally requested minimum).
	MinDuration float64
	// Discretization selects whether the synchronized duration is rounded
	// up to the nearest multiple of the control cycle (spec §4.5
	// "Duration discretization").
	Discretization sync.Discretization
	// Waypoints optionally splits the trajectory into multiple
	// independently-synchronized stop-and-go sections before the final
	// section to TargetState (spec §9 Open Question, §3 data model).
	Waypoints []Waypoint
	// PositionBounds optionally restricts the positions any DoF may reach
	// in the final section to TargetState (spec §7 PositionalLimits). A
	// slice whose length does not equal the DoF count imposes no
	// restriction.
	PositionBounds []profile.PositionBound
}

// ValidateInput implements spec §4.8/§6 validate_input: structural checks
// that must hold before Step-1/Step-2/sync are attempted at all — vector
// lengths, positive limits, and NaN/Inf rejection, always enforced — plus
// the future-feasibility checks on the current and/or target state the
// caller opts into via checkCurrent/checkTarget (spec §4.8
// check_current_state_within_limits / check_target_state_within_limits).
// Every violation found is aggregated via multierr rather than stopping at
// the first, so callers see everything wrong with the input in one pass.
func ValidateInput(in InputParameter, dof int, checkCurrent, checkTarget bool) error {
	var errs error
	check := func(cond bool, format string, args ...interface{}) {
		if !cond {
			errs = multierr.Append(errs, errors.Errorf(format, args...))
		}
	}
	check(len(in.CurrentState) == dof, "current_state has %d entries, want %d", len(in.CurrentState), dof)
	check(len(in.TargetState) == dof, "target_state has %d entries, want %d", len(in.TargetState), dof)
	check(len(in.Limits) == dof, "limits has %d entries, want %d", len(in.Limits), dof)
	if len(in.Interface) != 0 {
		check(len(in.Interface) == dof, "interface has %d entries, want %d or 0", len(in.Interface), dof)
	}

	for i, s := range in.CurrentState {
		check(!stateHasNaNOrInf(s), "dof %d: current_state has NaN or Inf", i)
	}
	for i, s := range in.TargetState {
		check(!stateHasNaNOrInf(s), "dof %d: target_state has NaN or Inf", i)
	}
	for wi, w := range in.Waypoints {
		check(len(w.TargetState) == dof, "waypoint %d: target_state has %d entries, want %d", wi, len(w.TargetState), dof)
		for i, s := range w.TargetState {
			check(!stateHasNaNOrInf(s), "waypoint %d dof %d: target_state has NaN or Inf", wi, i)
		}
	}

	limN := len(in.Limits)
	if limN > dof {
		limN = dof
	}
	for i := 0; i < limN; i++ {
		l := in.Limits[i].Normalized()
		check(l.VMax > 0, "dof %d: v_max must be positive", i)
		check(l.AMax > 0, "dof %d: a_max must be positive", i)
		check(l.JMax > 0, "dof %d: j_max must be positive", i)
		check(l.VMin < l.VMax, "dof %d: v_min must be less than v_max", i)
		check(l.AMin < l.AMax, "dof %d: a_min must be less than a_max", i)

		if checkCurrent && i < len(in.CurrentState) {
			s := in.CurrentState[i]
			check(math.Abs(s.V) <= l.VMax+profile.EpsLimit, "dof %d: current velocity exceeds v_max", i)
			check(s.A <= l.AMax+profile.EpsLimit && s.A >= l.AMin-profile.EpsLimit, "dof %d: current acceleration outside [a_min, a_max]", i)
			check(!profile.WillExceedVelocity(s.V, s.A, l.VMax, l.JMax), "dof %d: current acceleration cannot be braked before exceeding v_max", i)
		}
		// Velocity control interface ignores position fields but still
		// validates velocity/acceleration the same as Position (spec §4.8
		// "position fields are ignored, not validated as targets").
		if checkTarget && i < len(in.TargetState) {
			s := in.TargetState[i]
			check(math.Abs(s.V) <= l.VMax+profile.EpsLimit, "dof %d: target velocity exceeds v_max", i)
			check(s.A <= l.AMax+profile.EpsLimit && s.A >= l.AMin-profile.EpsLimit, "dof %d: target acceleration outside [a_min, a_max]", i)
			check(!profile.WillExceedVelocity(s.V, s.A, l.VMax, l.JMax), "dof %d: target acceleration cannot be braked before exceeding v_max", i)
		}
	}

	check(in.MinDuration >= 0, "min_duration must be non-negative")
	return errs
}

func stateHasNaNOrInf(s profile.State) bool {
	return math.IsNaN(s.P) || math.IsNaN(s.V) || math.IsNaN(s.A) ||
		math.IsInf(s.P, 0) || math.IsInf(s.V, 0) || math.IsInf(s.A, 0)
}
