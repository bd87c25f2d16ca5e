package planner

import (
	"math"
	"testing"

	"go.viam.com/test"

	"go.viam.com/trajgen/profile"
	"go.viam.com/trajgen/sync"
)

func unitLimits() profile.Limits {
	return profile.Limits{VMax: 1, AMax: 1, JMax: 1}
}

func TestCalculateRestToRestUnitDistance(t *testing.T) {
	p, err := New(Config{DoF: 1, DeltaTime: 0.01}, nil)
	test.That(t, err, test.ShouldBeNil)

	in := InputParameter{
		CurrentState: []profile.State{{}},
		TargetState:  []profile.State{{P: 1}},
		Limits:       []profile.Limits{unitLimits()},
	}
	res, err := p.Calculate(in)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res, test.ShouldEqual, Working)
	test.That(t, p.traj.Duration(), test.ShouldAlmostEqual, 3.0, 1e-6)
}

func TestUpdateRunsToFinished(t *testing.T) {
	p, err := New(Config{DoF: 1, DeltaTime: 0.25}, nil)
	test.That(t, err, test.ShouldBeNil)

	in := InputParameter{
		CurrentState: []profile.State{{}},
		TargetState:  []profile.State{{P: 1}},
		Limits:       []profile.Limits{unitLimits()},
	}

	var out OutputParameter
	var res Result
	for i := 0; i < 100; i++ {
		res, err = p.Update(in, &out)
		test.That(t, err, test.ShouldBeNil)
		if res == Finished {
			break
		}
		PassToInput(out, &in)
	}
	test.That(t, res, test.ShouldEqual, Finished)
	test.That(t, out.NewCurrentState[0].P, test.ShouldAlmostEqual, 1.0, 1e-6)
}

func TestCalculateRejectsMismatchedDoFCounts(t *testing.T) {
	p, err := New(Config{DoF: 2, DeltaTime: 0.01}, nil)
	test.That(t, err, test.ShouldBeNil)

	in := InputParameter{
		CurrentState: []profile.State{{}},
		TargetState:  []profile.State{{P: 1}, {P: 2}},
		Limits:       []profile.Limits{unitLimits(), unitLimits()},
	}
	res, err := p.Calculate(in)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, res, test.ShouldEqual, ErrorInvalidInput)
}

func TestCalculateSynchronizesMultiDoF(t *testing.T) {
	p, err := New(Config{DoF: 2, DeltaTime: 0.01}, nil)
	test.That(t, err, test.ShouldBeNil)

	in := InputParameter{
		CurrentState: []profile.State{{}, {}},
		TargetState:  []profile.State{{P: 1}, {P: 0.05}},
		Limits:       []profile.Limits{unitLimits(), unitLimits()},
		SyncStrategy: sync.Time,
	}
	res, err := p.Calculate(in)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res, test.ShouldEqual, Working)
	mins := p.traj.IndependentMinDurations()
	test.That(t, len(mins), test.ShouldEqual, 2)
	test.That(t, mins[1], test.ShouldBeLessThan, mins[0])
}

func TestPanicOnErrorPolicyPanics(t *testing.T) {
	p, err := New(Config{DoF: 1, DeltaTime: 0.01, ErrorPolicy: PanicOnError}, nil)
	test.That(t, err, test.ShouldBeNil)

	in := InputParameter{
		CurrentState: []profile.State{{}},
		TargetState:  []profile.State{}, // wrong length -> ErrorInvalidInput
		Limits:       []profile.Limits{unitLimits()},
	}
	test.That(t, func() { p.Calculate(in) }, test.ShouldPanic)
}

// TestCheckCurrentStateWithinLimitsRejectsUnbrakableState is spec §8
// scenario S4: a current acceleration too large to brake before exceeding
// v_max must fail validation when the caller opts into the check, instead
// of being silently handed to brake.Compute.
func TestCheckCurrentStateWithinLimitsRejectsUnbrakableState(t *testing.T) {
	p, err := New(Config{DoF: 1, DeltaTime: 0.01, CheckCurrentStateWithinLimits: true}, nil)
	test.That(t, err, test.ShouldBeNil)

	in := InputParameter{
		CurrentState: []profile.State{{V: 0.99, A: 1}}, // a_max=1, j_max=1: cannot brake before v_max=1
		TargetState:  []profile.State{{P: 1}},
		Limits:       []profile.Limits{unitLimits()},
	}
	res, err := p.Calculate(in)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, res, test.ShouldEqual, ErrorInvalidInput)
}

// TestCheckCurrentStateWithinLimitsDisabledByDefault keeps the same state
// as above passing when the opt-in is left off, the pre-existing permissive
// behavior brake.Compute already handles.
func TestCheckCurrentStateWithinLimitsDisabledByDefault(t *testing.T) {
	p, err := New(Config{DoF: 1, DeltaTime: 0.01}, nil)
	test.That(t, err, test.ShouldBeNil)

	in := InputParameter{
		CurrentState: []profile.State{{V: 0.99, A: 1}},
		TargetState:  []profile.State{{P: 1}},
		Limits:       []profile.Limits{unitLimits()},
	}
	res, err := p.Calculate(in)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res, test.ShouldEqual, Working)
}

func TestValidateInputRejectsNaNAndInf(t *testing.T) {
	in := InputParameter{
		CurrentState: []profile.State{{P: math.NaN()}},
		TargetState:  []profile.State{{P: math.Inf(1)}},
		Limits:       []profile.Limits{unitLimits()},
	}
	err := ValidateInput(in, 1, false, false)
	test.That(t, err, test.ShouldNotBeNil)
}

// TestWaypointsProduceMultipleStopAndGoSections exercises spec §9's
// waypoint-following extension point: each waypoint is its own
// independently-solved section, and the trajectory passes through the
// waypoint's position at rest before continuing to the final target.
func TestWaypointsProduceMultipleStopAndGoSections(t *testing.T) {
	p, err := New(Config{DoF: 1, DeltaTime: 0.01}, nil)
	test.That(t, err, test.ShouldBeNil)

	in := InputParameter{
		CurrentState: []profile.State{{}},
		TargetState:  []profile.State{{P: 2}},
		Limits:       []profile.Limits{unitLimits()},
		Waypoints: []Waypoint{
			{TargetState: []profile.State{{P: 1}}},
		},
	}
	res, err := p.Calculate(in)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res, test.ShouldEqual, Working)
	test.That(t, p.traj.NumSections(), test.ShouldEqual, 2)

	firstSectionEnd := p.traj.SectionIndex(p.traj.Duration()) // last section covers the final target
	test.That(t, firstSectionEnd, test.ShouldEqual, 1)

	st, _ := p.traj.AtTime(0, p.traj.Duration())
	test.That(t, st.P, test.ShouldAlmostEqual, 2.0, 1e-6)
}

func TestDiscretizationRoundsSynchronizedDurationUp(t *testing.T) {
	p, err := New(Config{DoF: 1, DeltaTime: 0.01}, nil)
	test.That(t, err, test.ShouldBeNil)

	in := InputParameter{
		CurrentState:   []profile.State{{}},
		TargetState:    []profile.State{{P: 1}},
		Limits:         []profile.Limits{unitLimits()},
		Discretization: sync.Discrete,
	}
	res, err := p.Calculate(in)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res, test.ShouldEqual, Working)

	ratio := p.traj.Duration() / 0.01
	test.That(t, ratio, test.ShouldAlmostEqual, math.Round(ratio), 1e-6)
}

func TestPositionBoundsRejectExceedingTrajectory(t *testing.T) {
	p, err := New(Config{DoF: 1, DeltaTime: 0.01}, nil)
	test.That(t, err, test.ShouldBeNil)

	in := InputParameter{
		CurrentState: []profile.State{{}},
		TargetState:  []profile.State{{P: 1}},
		Limits:       []profile.Limits{unitLimits()},
		PositionBounds: []profile.PositionBound{
			{HasMax: true, Max: 0.5},
		},
	}
	res, err := p.Calculate(in)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, res, test.ShouldEqual, ErrorPositionalLimits)
}

func TestUpdateReportsSectionChangeAcrossWaypoint(t *testing.T) {
	p, err := New(Config{DoF: 1, DeltaTime: 0.05}, nil)
	test.That(t, err, test.ShouldBeNil)

	in := InputParameter{
		CurrentState: []profile.State{{}},
		TargetState:  []profile.State{{P: 2}},
		Limits:       []profile.Limits{unitLimits()},
		Waypoints: []Waypoint{
			{TargetState: []profile.State{{P: 1}}},
		},
	}

	var out OutputParameter
	var res Result
	sawSectionOne := false
	for i := 0; i < 1000; i++ {
		res, err = p.Update(in, &out)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out.WasCalculationInterrupted, test.ShouldBeFalse)
		if out.CurrentSection == 1 {
			sawSectionOne = true
		}
		if res == Finished {
			break
		}
		PassToInput(out, &in)
	}
	test.That(t, res, test.ShouldEqual, Finished)
	test.That(t, sawSectionOne, test.ShouldBeTrue)
}
