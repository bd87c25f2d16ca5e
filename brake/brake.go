// Package brake implements the brake pre-trajectory of spec §4.4: when a
// DoF's actual starting state is outside its own limits (already
// over-speed, over-accelerating, or cruising at an acceleration that will
// overshoot VMax before it can be brought back to zero), a short
// jerk-limited segment sequence is prepended that returns the DoF to a
// feasible state before Step-1 takes over. It reuses step1's ramp
// primitive directly rather than re-deriving the same closed-form solve.
package brake

import (
	"go.viam.com/trajgen/numeric"
	"go.viam.com/trajgen/profile"
	"go.viam.com/trajgen/step1"
)

// Needed reports whether state requires a brake pre-trajectory under lim
// (spec §4.4/§4.8): either bound is already violated outright, or the
// acceleration is large enough that holding it would overshoot VMax.
func Needed(state profile.State, lim profile.Limits) bool {
	lim = lim.Normalized()
	if state.V > lim.VMax+profile.EpsLimit || state.V < lim.VMin-profile.EpsLimit {
		return true
	}
	if state.A > lim.AMax+profile.EpsLimit || state.A < lim.AMin-profile.EpsLimit {
		return true
	}
	return profile.WillExceedVelocity(state.V, state.A, lim.VMax, lim.JMax)
}

// Compute builds the brake profile bringing state within lim, returning the
// profile (always NumSegments long, trailing segments zero-duration once
// the state is feasible) and the resulting state Step-1 should start from.
// ok is false only when no jerk-limited path back within bounds exists,
// which given unlimited jerk sign choice and no target to hit should not
// occur in practice; callers should treat a false return the same as spec
// §7's ErrorExecutionTimeCalculation.
func Compute(state profile.State, lim profile.Limits) (*profile.Profile, profile.State, bool) {
	if !Needed(state, lim) {
		return profile.New(state, [profile.NumSegments]profile.Segment{}, profile.Shape{}), state, true
	}
	lim = lim.Normalized()

	vTarget := numeric.Clamp(state.V, lim.VMin, lim.VMax)
	jerkSign := -1.0
	if state.A < 0 {
		jerkSign = 1.0
	} else if state.A == 0 {
		if state.V > vTarget {
			jerkSign = -1.0
		} else if state.V < vTarget {
			jerkSign = 1.0
		}
	}
	accLimit := lim.AMax
	if jerkSign < 0 {
		accLimit = lim.AMin
	}

	segs3, final, ok := step1.Ramp(state, vTarget, 0, jerkSign, accLimit, lim.JMax)
	if !ok {
		// The current acceleration already carries the velocity past vTarget
		// under this jerk sign; ramp the other way instead.
		jerkSign = -jerkSign
		accLimit = lim.AMax
		if jerkSign < 0 {
			accLimit = lim.AMin
		}
		segs3, final, ok = step1.Ramp(state, vTarget, 0, jerkSign, accLimit, lim.JMax)
	}
	if !ok {
		return nil, state, false
	}

	var segs [profile.NumSegments]profile.Segment
	copy(segs[:3], segs3[:])
	p := profile.New(state, segs, profile.Shape{})
	return p, final, true
}

