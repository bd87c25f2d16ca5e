package profile

import (
	"testing"

	"go.viam.com/test"
)

// trapezoid builds the S1 scenario from spec §8: rest-to-rest over unit
// distance with unit v/a/j bounds, which is known to take exactly 3
// seconds (1s ramp up to v=1 with a up to 1, 1s cruise, 1s ramp down).
func trapezoid() *Profile {
	segs := [NumSegments]Segment{
		{Duration: 1, Jerk: 1},  // a: 0->1, v: 0->0.5
		{Duration: 0, Jerk: 0},
		{Duration: 1, Jerk: -1}, // a: 1->0, v: 0.5->1
		{Duration: 1, Jerk: 0},  // cruise at v=1
		{Duration: 1, Jerk: -1}, // a: 0->-1, v: 1->0.5
		{Duration: 0, Jerk: 0},
		{Duration: 1, Jerk: 1}, // a: -1->0, v: 0.5->0
	}
	return New(State{}, segs, Shape{Up: true, Acc0: true, Vel: true, Acc1: true})
}

func TestTrapezoidDurationAndTerminal(t *testing.T) {
	p := trapezoid()
	test.That(t, p.Duration(), test.ShouldAlmostEqual, 3.0, 1e-12)

	final := p.Final()
	test.That(t, final.P, test.ShouldAlmostEqual, 1.0, 1e-9)
	test.That(t, final.V, test.ShouldAlmostEqual, 0.0, 1e-9)
	test.That(t, final.A, test.ShouldAlmostEqual, 0.0, 1e-9)
	test.That(t, p.MatchesTarget(State{P: 1, V: 0, A: 0}), test.ShouldBeTrue)
}

func TestTrapezoidClampsOutsideDuration(t *testing.T) {
	p := trapezoid()
	st, j := p.AtTime(-1)
	test.That(t, st, test.ShouldResemble, State{})
	test.That(t, j, test.ShouldEqual, 0.0)

	st, j = p.AtTime(100)
	test.That(t, st.P, test.ShouldAlmostEqual, 1.0, 1e-9)
	test.That(t, j, test.ShouldEqual, 0.0)
}

func TestTrapezoidStaysWithinLimits(t *testing.T) {
	p := trapezoid()
	l := Limits{VMax: 1, AMax: 1, JMax: 1}
	test.That(t, p.SatisfiesLimits(l), test.ShouldBeTrue)
	test.That(t, p.CheckVelocityError(l), test.ShouldBeLessThanOrEqualTo, EpsLimit)
	test.That(t, p.CheckAccelerationError(l), test.ShouldBeLessThanOrEqualTo, EpsLimit)
}

func TestTrapezoidViolatesTighterLimits(t *testing.T) {
	p := trapezoid()
	l := Limits{VMax: 0.5, AMax: 1, JMax: 1}
	test.That(t, p.CheckVelocityError(l), test.ShouldBeGreaterThan, EpsLimit)
}

func TestPositionExtremaMonotonic(t *testing.T) {
	p := trapezoid()
	pMin, tMin, pMax, tMax := p.PositionExtrema()
	test.That(t, pMin, test.ShouldAlmostEqual, 0.0, 1e-9)
	test.That(t, tMin, test.ShouldAlmostEqual, 0.0, 1e-9)
	test.That(t, pMax, test.ShouldAlmostEqual, 1.0, 1e-9)
	test.That(t, tMax, test.ShouldAlmostEqual, 3.0, 1e-9)
}

func TestWillExceedVelocity(t *testing.T) {
	// S4 from spec §8: v0=0.9, a0=0.5, vMax=1, jMax=1 -> should fail (future-infeasible).
	test.That(t, WillExceedVelocity(0.9, 0.5, 1, 1), test.ShouldBeTrue)
	// Comfortably within bounds.
	test.That(t, WillExceedVelocity(0, 0, 1, 1), test.ShouldBeFalse)
}
