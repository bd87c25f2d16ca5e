// Package step1 implements the per-DoF time-optimal profile solver of spec
// §4.2. Rather than hand-deriving closed-form formulas for all 32
// direction x ACC0 x VEL x ACC1 case templates, the 7-segment profile is
// built from two calls to a single shared "ramp" primitive — one bringing
// (v0,a0) up to a candidate cruise velocity with terminal acceleration
// zero, one bringing that cruise velocity down to (vT,aT) — plus a linear
// cruise-duration solve. The ramp primitive already degrades correctly
// between the ACC-plateau-hit and ACC-plateau-not-hit sub-cases (a clamp,
// not a separate formula), and Step-1's outer direction x velocity-plateau
// selection brackets the remaining two axes of the taxonomy. See
// DESIGN.md for the grounding of this simplification against spec §4.2's
// 32-template description.
package step1

import (
	"math"

	"go.viam.com/trajgen/polyroot"
	"go.viam.com/trajgen/profile"
)

// ramp computes the (up to) three jerk segments that take a DoF from
// (v0, a0) to (vTarget, aTarget), using jerk magnitude jMax with sign
// jerkSign on the outer two segments (and its negation on the way back),
// clamping the intermediate peak/trough acceleration to accLimit when the
// unconstrained solution would exceed it (inserting the zero-jerk
// "ACC-plateau" middle segment in that case).
//
// jerkSign must be +1 when the peak acceleration value is expected to be
// the larger of the two endpoints (a "ramp up" shape, accLimit should be
// the positive bound) and -1 when it is expected to be the smaller (a
// "ramp down" shape, accLimit should be the negative bound).
//
// Returns the three segments (zero-duration ones included explicitly) and
// the net displacement and final state reached (P accumulates from
// start.P, so passing start.P=0 yields the ramp's own displacement).
func ramp(start profile.State, vTarget, aTarget, jerkSign, accLimit, jMax float64) ([3]profile.Segment, profile.State, bool) {
	a0, v0 := start.A, start.V

	// Unconstrained peak/trough acceleration x solves
	// x^2 = jerkSign*jMax*(vTarget-v0) + (a0^2+aTarget^2)/2, derived from
	// integrating the two symmetric-jerk segments a0->x->aTarget and
	// requiring the velocity delta to equal vTarget-v0.
	j1 := jerkSign * jMax
	rhs := j1*(vTarget-v0) + 0.5*(a0*a0+aTarget*aTarget)
	if rhs < -1e-9 {
		return [3]profile.Segment{}, start, false
	}
	if rhs < 0 {
		rhs = 0
	}
	mag := math.Sqrt(rhs)
	x := mag
	if jerkSign < 0 {
		x = -mag
	}

	clamped := false
	if jerkSign > 0 && x > accLimit {
		x = accLimit
		clamped = true
	} else if jerkSign < 0 && x < accLimit {
		x = accLimit
		clamped = true
	}

	ta := (x - a0) / j1
	tc := (x - aTarget) / j1
	if ta < 0 {
		ta = 0
	}
	if tc < 0 {
		tc = 0
	}

	segs := [3]profile.Segment{
		{Duration: ta, Jerk: j1},
		{Duration: 0, Jerk: 0},
		{Duration: tc, Jerk: -j1},
	}

	st := profile.Integrate(start, j1, ta)
	if clamped {
		// Solve the cruise-at-x duration linearly so the final velocity
		// still lands exactly on vTarget.
		stAfterDown := profile.Integrate(profile.State{V: 0, A: x}, -j1, tc)
		// displacement/velocity contributed by stAfterDown relative to its
		// own start; we only need its velocity delta here.
		vAfterRampDown := stAfterDown.V
		tMid := (vTarget - st.V - vAfterRampDown) / x
		if tMid < 0 {
			tMid = 0
		}
		segs[1].Duration = tMid
		st = profile.Integrate(st, 0, tMid)
	}
	st = profile.Integrate(st, -j1, tc)

	return segs, st, true
}

// solveRampPair composes two ramp() calls — rise to a candidate cruise
// velocity Vp with zero acceleration, then fall from (Vp,0) to the actual
// target — and reports the net displacement of the pair (excluding any
// cruise-at-Vp segment, which the caller adds separately).
func solveRampPair(initial, target profile.State, vp, accUp, accDown, jMax float64) ([3]profile.Segment, [3]profile.Segment, float64, bool) {
	upSegs, afterUp, ok := ramp(profile.State{V: initial.V, A: initial.A}, vp, 0, +1, accUp, jMax)
	if !ok {
		return upSegs, [3]profile.Segment{}, 0, false
	}
	downSegs, afterDown, ok := ramp(profile.State{V: vp, A: 0}, target.V, target.A, -1, accDown, jMax)
	if !ok {
		return upSegs, downSegs, 0, false
	}
	return upSegs, downSegs, afterUp.P + afterDown.P, true
}

// displacementAt returns the net signed displacement of the rise+fall ramp
// pair for a candidate cruise velocity vp, used as the monotone residual
// function bisection solves against when the velocity plateau is not
// reached (spec §4.2 "polynomial root problem in a single free duration").
// Monotonicity in vp is what makes bisection well-posed here: a higher
// cruise velocity always covers at least as much ground as a lower one for
// a fixed pair of endpoints, within the regime this solver is restricted
// to (see DESIGN.md).
func displacementAt(initial, target profile.State, vp, accUp, accDown, jMax float64) (float64, bool) {
	_, _, d, ok := solveRampPair(initial, target, vp, accUp, accDown, jMax)
	return d, ok
}

// Ramp exposes the shared ramp primitive for packages outside step1 (the
// brake pre-trajectory of spec §4.4 reuses it directly rather than
// re-deriving the same closed-form solve).
func Ramp(start profile.State, vTarget, aTarget, jerkSign, accLimit, jMax float64) ([3]profile.Segment, profile.State, bool) {
	return ramp(start, vTarget, aTarget, jerkSign, accLimit, jMax)
}

// RampPairSegments exposes solveRampPair directly so step2 can reassemble a
// duration-constrained profile from the same two ramp calls.
func RampPairSegments(initial, target profile.State, vp, accUp, accDown, jMax float64) ([3]profile.Segment, [3]profile.Segment, float64, bool) {
	return solveRampPair(initial, target, vp, accUp, accDown, jMax)
}

// RampPair exposes solveRampPair's ramp-only duration and net displacement
// (excluding any cruise segment) for a candidate cruise velocity vp, so
// step2's duration-constrained solve can reuse the same closed-form ramp
// primitive instead of re-deriving it.
func RampPair(initial, target profile.State, vp, accUp, accDown, jMax float64) (rampDuration, displacement float64, ok bool) {
	upSegs, downSegs, d, ok := solveRampPair(initial, target, vp, accUp, accDown, jMax)
	if !ok {
		return 0, 0, false
	}
	dur := upSegs[0].Duration + upSegs[1].Duration + upSegs[2].Duration +
		downSegs[0].Duration + downSegs[1].Duration + downSegs[2].Duration
	return dur, d, true
}

// bisectVelocity finds vp in [lo, hi] such that displacementAt(vp) ==
// wantDisplacement, assuming displacementAt is monotonic in vp over [lo, hi]
// (either increasing or decreasing; the bracket test handles both).
func bisectVelocity(initial, target profile.State, lo, hi, accUp, accDown, jMax, wantDisplacement float64) (float64, bool) {
	const iterations = 100
	flo, ok := displacementAt(initial, target, lo, accUp, accDown, jMax)
	if !ok {
		return 0, false
	}
	fhi, ok := displacementAt(initial, target, hi, accUp, accDown, jMax)
	if !ok {
		return 0, false
	}
	if (wantDisplacement-flo)*(wantDisplacement-fhi) > 1e-9 {
		// Not bracketed; residual isn't monotone-bracketing wantDisplacement
		// within [lo, hi].
		return 0, false
	}
	for i := 0; i < iterations; i++ {
		mid := 0.5 * (lo + hi)
		fmid, ok := displacementAt(initial, target, mid, accUp, accDown, jMax)
		if !ok {
			return 0, false
		}
		if (fmid-wantDisplacement)*(flo-wantDisplacement) <= 0 {
			hi = mid
			fhi = fmid
		} else {
			lo = mid
			flo = fmid
		}
		if hi-lo < polyroot.EpsTime {
			break
		}
	}
	return 0.5 * (lo + hi), true
}
