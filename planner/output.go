package planner

import (
	"time"

	"go.viam.com/trajgen/profile"
	"go.viam.com/trajgen/trajectory"
)

// OutputParameter is what Update produces each control cycle (spec §6
// OutputParameter).
type OutputParameter struct {
	// NewCurrentState is this cycle's (p, v, a) per DoF, suitable for
	// feeding back as the next cycle's InputParameter.CurrentState via
	// PassToInput.
	NewCurrentState []profile.State
	// Trajectory is the trajectory currently being executed. It is only
	// replaced when Update triggers a recalculation.
	Trajectory *trajectory.Trajectory
	// TimeElapsed is the absolute time into Trajectory this cycle's state
	// was sampled at.
	TimeElapsed float64
	// NewCalculation reports whether this cycle triggered a Calculate call
	// (spec §4.8 re-planning policy: the trajectory was rebuilt this cycle).
	NewCalculation bool
	// CurrentSection is the index of the Trajectory section TimeElapsed
	// falls into (spec §3 OutputParameter "current section index").
	CurrentSection int
	// DidSectionChange reports whether CurrentSection differs from the
	// section reported on the immediately preceding Update call.
	DidSectionChange bool
	// WasCalculationInterrupted always reports false: this implementation's
	// Calculate runs to completion synchronously within one Update call and
	// has no preemption point to interrupt at (spec §9's acknowledgment
	// that the field still belongs on OutputParameter for callers that poll
	// it unconditionally).
	WasCalculationInterrupted bool
	// CalculationDuration is the wall-clock time the recalculation inside
	// this Update call took, or zero when NewCalculation is false.
	CalculationDuration time.Duration
}

// PassToInput copies out's resulting state into in's CurrentState, the
// spec §6 pass_to_input pattern for chaining consecutive control cycles
// without the caller re-deriving current state itself.
func PassToInput(out OutputParameter, in *InputParameter) {
	in.CurrentState = append(in.CurrentState[:0], out.NewCurrentState...)
}
