// Package step2 implements the duration-constrained re-solve of spec §4.3:
// given a required total duration T_sync (typically the slowest DoF's
// independent minimum from Step-1), find a seven-segment profile for this
// DoF that takes exactly T_sync and still reaches the target state, by
// trading cruise velocity against cruise duration. It is grounded on the
// same ramp() primitive step1 uses (spec's note that Step-2 "reuses Step-1's
// building blocks under an additional duration constraint").
package step2

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/trajgen/profile"
	"go.viam.com/trajgen/step1"
)

// ErrSynchronizationCalculation is returned when T is shorter than this
// DoF's own time-optimal duration, i.e. synchronization is impossible for
// this DoF (spec §7).
var ErrSynchronizationCalculation = errors.New("synchronization calculation: requested duration is shorter than this DoF's minimum")

// Solve finds a profile for task that takes exactly duration seconds.
func Solve(task step1.Task, duration float64) (step1.Result, error) {
	fast, err := step1.Solve(task)
	if err != nil {
		return step1.Result{}, err
	}
	if duration < fast.Duration-1e-9 {
		return step1.Result{}, ErrSynchronizationCalculation
	}
	if duration <= fast.Duration+1e-9 {
		return fast, nil
	}
	if task.Interface == step1.Velocity {
		// Velocity interface has no cruise segment to stretch; padding a
		// trailing zero-jerk, zero-acceleration hold reaches the requested
		// duration without perturbing the reached target velocity.
		return stretchWithTrailingHold(fast, duration), nil
	}

	lim := task.Limits.Normalized()
	up, ok := solveDirectionForDuration(task, lim, +1, duration)
	if ok {
		return up, nil
	}
	down, ok := solveDirectionForDuration(task, lim, -1, duration)
	if ok {
		return down, nil
	}
	return step1.Result{}, ErrSynchronizationCalculation
}

func stretchWithTrailingHold(fast step1.Result, duration float64) step1.Result {
	extra := duration - fast.Duration
	segs := fast.Profile.Segments
	// The velocity-interface profile only ever populates the first three
	// segments (step1.solveVelocityInterface); the cruise slot at index 3
	// is always free to absorb a hold.
	segs[3] = profile.Segment{Duration: extra, Jerk: 0}
	p := profile.New(fast.Profile.Initial(), segs, fast.Profile.Shape)
	return step1.Result{Profile: p, Duration: p.Duration()}
}

// solveDirectionForDuration mirrors step1.solveDirection: it negates the
// problem for the DOWN direction, solves the UP case against the duration
// constraint, and negates the winning profile back.
func solveDirectionForDuration(t step1.Task, lim profile.Limits, direction, duration float64) (step1.Result, bool) {
	task := t
	accUp, accDown := lim.AMax, lim.AMin
	vUp := lim.VMax
	if direction < 0 {
		task.Initial = negate(t.Initial)
		task.Target = negate(t.Target)
		accUp, accDown = -lim.AMin, -lim.AMax
		vUp = -lim.VMin
	}

	res, ok := solveUpForDuration(task, lim.JMax, accUp, accDown, vUp, duration)
	if !ok {
		return step1.Result{}, false
	}
	if direction < 0 {
		res.Profile = negateProfile(res.Profile, task.Initial)
	}
	return res, true
}

// solveUpForDuration finds a cruise velocity vp such that the total
// duration (ramp time at vp, plus a cruise segment solved to land exactly
// on the target displacement) equals the requested duration. Lower vp
// means both a longer ramp and a longer required cruise to cover the same
// ground, so total duration is monotonically non-increasing in vp across
// the admissible range; this is what makes the bisection below well-posed.
func solveUpForDuration(t step1.Task, jMax, accUp, accDown, vUp, duration float64) (step1.Result, bool) {
	initial, target := t.Initial, t.Target
	want := target.P - initial.P

	durAt := func(vp float64) (float64, float64, bool) {
		rampDur, disp, ok := step1.RampPair(initial, target, vp, accUp, accDown, jMax)
		if !ok {
			return 0, 0, false
		}
		if math.Abs(vp) < 1e-15 {
			return 0, 0, false
		}
		cruise := (want - disp) / vp
		if cruise < -1e-9 {
			return 0, 0, false
		}
		if cruise < 0 {
			cruise = 0
		}
		return rampDur + cruise, cruise, true
	}

	lo := math.Max(math.Max(initial.V, target.V), 1e-9)
	hi := vUp
	if lo > hi {
		lo, hi = hi, lo
	}

	flo, _, ok := durAt(lo)
	if !ok {
		return step1.Result{}, false
	}
	fhi, _, ok := durAt(hi)
	if !ok {
		// vUp overshoots the target even with no cruise: pull hi down to the
		// largest vp that still admits a non-negative cruise.
		feasible := lo
		for i := 0; i < 100 && hi-feasible > 1e-13; i++ {
			mid := 0.5 * (feasible + hi)
			if _, _, midOK := durAt(mid); midOK {
				feasible = mid
			} else {
				hi = mid
			}
		}
		hi = feasible
		if fhi, _, ok = durAt(hi); !ok {
			return step1.Result{}, false
		}
	}
	if (duration-flo)*(duration-fhi) > 1e-9 {
		return step1.Result{}, false
	}

	var vp, cruise float64
	for i := 0; i < 100; i++ {
		mid := 0.5 * (lo + hi)
		fmid, c, ok := durAt(mid)
		if !ok {
			return step1.Result{}, false
		}
		vp, cruise = mid, c
		if (fmid-duration)*(flo-duration) <= 0 {
			hi = mid
			fhi = fmid
		} else {
			lo = mid
			flo = fmid
		}
		if hi-lo < 1e-13 {
			break
		}
	}

	return assemble(initial, target, vp, cruise, accUp, accDown, jMax)
}

func assemble(initial, target profile.State, vp, cruise, accUp, accDown, jMax float64) (step1.Result, bool) {
	upSegs, downSegs, _, ok := step1.RampPairSegments(initial, target, vp, accUp, accDown, jMax)
	if !ok {
		return step1.Result{}, false
	}
	segs := [profile.NumSegments]profile.Segment{
		upSegs[0], upSegs[1], upSegs[2],
		{Duration: cruise, Jerk: 0},
		downSegs[0], downSegs[1], downSegs[2],
	}
	shape := profile.Shape{
		Up:   true,
		Acc0: upSegs[1].Duration > profile.EpsLimit,
		Vel:  cruise > profile.EpsLimit,
		Acc1: downSegs[1].Duration > profile.EpsLimit,
	}
	p := profile.New(initial, segs, shape)
	if !p.MatchesTarget(target) {
		return step1.Result{}, false
	}
	return step1.Result{Profile: p, Duration: p.Duration()}, true
}

func negate(s profile.State) profile.State {
	return profile.State{P: -s.P, V: -s.V, A: -s.A}
}

func negateProfile(p *profile.Profile, negatedInitial profile.State) *profile.Profile {
	var segs [profile.NumSegments]profile.Segment
	for i := 0; i < profile.NumSegments; i++ {
		segs[i] = profile.Segment{Duration: p.Segments[i].Duration, Jerk: -p.Segments[i].Jerk}
	}
	realInitial := negate(negatedInitial)
	shape := p.Shape
	shape.Up = !shape.Up
	return profile.New(realInitial, segs, shape)
}
