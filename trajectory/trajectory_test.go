package trajectory

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/trajgen/profile"
	"go.viam.com/trajgen/step1"
)

func unitLimits() profile.Limits {
	return profile.Limits{VMax: 1, AMax: 1, JMax: 1}
}

func mustSolve(t *testing.T, target profile.State) *profile.Profile {
	t.Helper()
	res, err := step1.Solve(step1.Task{Target: target, Limits: unitLimits()})
	test.That(t, err, test.ShouldBeNil)
	return res.Profile
}

func TestSingleSectionAtTimeMatchesProfile(t *testing.T) {
	p := mustSolve(t, profile.State{P: 1})
	traj, err := New([]Section{{Profiles: []*profile.Profile{p}}}, []float64{p.Duration()})
	test.That(t, err, test.ShouldBeNil)

	st, j := traj.AtTime(0, 1.5)
	wantSt, wantJ := p.AtTime(1.5)
	test.That(t, st, test.ShouldResemble, wantSt)
	test.That(t, j, test.ShouldEqual, wantJ)
}

func TestTwoSectionsConcatenateWithoutGap(t *testing.T) {
	p1 := mustSolve(t, profile.State{P: 1})
	p2res, err := step1.Solve(step1.Task{Initial: p1.Final(), Target: profile.State{P: 2}, Limits: unitLimits()})
	test.That(t, err, test.ShouldBeNil)
	p2 := p2res.Profile

	traj, err := New([]Section{
		{Profiles: []*profile.Profile{p1}},
		{Profiles: []*profile.Profile{p2}},
	}, []float64{p1.Duration(), p2.Duration()})
	test.That(t, err, test.ShouldBeNil)

	test.That(t, traj.Duration(), test.ShouldAlmostEqual, p1.Duration()+p2.Duration(), 1e-9)

	// At the boundary itself, the trajectory is in section two, continuous
	// with section one's terminal state.
	st, _ := traj.AtTime(0, p1.Duration())
	test.That(t, st.P, test.ShouldAlmostEqual, p1.Final().P, 1e-8)
}

func TestPositionExtremaSingleSection(t *testing.T) {
	p := mustSolve(t, profile.State{P: 1})
	traj, err := New([]Section{{Profiles: []*profile.Profile{p}}}, []float64{p.Duration()})
	test.That(t, err, test.ShouldBeNil)

	pMin, tMin, pMax, tMax := traj.PositionExtrema(0)
	test.That(t, pMin, test.ShouldAlmostEqual, 0.0, 1e-8)
	test.That(t, tMin, test.ShouldAlmostEqual, 0.0, 1e-8)
	test.That(t, pMax, test.ShouldAlmostEqual, 1.0, 1e-8)
	test.That(t, tMax, test.ShouldAlmostEqual, p.Duration(), 1e-8)
}

func TestRejectsMismatchedDoFCounts(t *testing.T) {
	p := mustSolve(t, profile.State{P: 1})
	_, err := New([]Section{
		{Profiles: []*profile.Profile{p, p}},
		{Profiles: []*profile.Profile{p}},
	}, []float64{p.Duration(), p.Duration()})
	test.That(t, err, test.ShouldNotBeNil)
}
