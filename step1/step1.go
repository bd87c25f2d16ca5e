package step1

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/trajgen/profile"
)

// ErrExecutionTimeCalculation is returned when no feasible seven-segment
// profile could be found for a DoF (spec §4.2, §7).
var ErrExecutionTimeCalculation = errors.New("execution time calculation: no feasible profile template found")

// Interface selects whether Step-1 solves for a target position or only a
// target velocity (spec §3 InputParameter control-interface selector).
type Interface int

const (
	// Position requires the full (p,v,a) target to be met.
	Position Interface = iota
	// Velocity omits the position equation entirely (spec §4.2
	// "Velocity interface ... omits the position equation").
	Velocity
)

// Task is a single DoF's Step-1 input.
type Task struct {
	Initial, Target profile.State
	Limits          profile.Limits
	Interface       Interface
}

// Result is the winning profile plus its duration.
type Result struct {
	Profile  *profile.Profile
	Duration float64
}

// Solve finds the minimum-duration feasible seven-segment profile for one
// DoF (spec §4.2). It evaluates the UP and DOWN direction candidates (spec
// §3 profile taxonomy) and keeps the faster feasible one; within each
// direction, whether the velocity plateau and the two acceleration
// plateaus are actually reached falls out of the ramp() clamping and the
// cruise-duration sign rather than being enumerated as separate branches.
func Solve(t Task) (Result, error) {
	lim := t.Limits.Normalized()

	if t.Interface == Velocity {
		return solveVelocityInterface(t, lim)
	}

	up, upOK := solveDirection(t, lim, +1)
	down, downOK := solveDirection(t, lim, -1)

	switch {
	case upOK && downOK:
		if up.Duration <= down.Duration {
			return up, nil
		}
		return down, nil
	case upOK:
		return up, nil
	case downOK:
		return down, nil
	default:
		return Result{}, ErrExecutionTimeCalculation
	}
}

// solveDirection solves the position-interface problem assuming the
// governing velocity plateau is the positive bound (direction=+1, "UP") or
// the negative bound (direction=-1, "DOWN"). DOWN is solved by negating
// the whole problem, solving it as UP, and negating the result back
// (spec's Direction taxonomy is exactly this symmetry).
func solveDirection(t Task, lim profile.Limits, direction float64) (Result, bool) {
	task := t
	accUp, accDown := lim.AMax, lim.AMin
	vUp := lim.VMax
	if direction < 0 {
		task.Initial = negate(t.Initial)
		task.Target = negate(t.Target)
		accUp, accDown = -lim.AMin, -lim.AMax
		vUp = -lim.VMin
	}

	res, ok := solveUp(task, lim.JMax, accUp, accDown, vUp)
	if !ok {
		return Result{}, false
	}
	if direction < 0 {
		res.Profile = negateProfile(res.Profile, task.Initial)
	}
	return res, true
}

// solveUp handles the "direction UP" canonical case: cruise velocity
// plateau (if reached) sits at +vUp, acceleration plateaus at +accUp
// (ramp up) and accDown (ramp down, typically -aMax).
func solveUp(t Task, jMax, accUp, accDown, vUp float64) (Result, bool) {
	initial, target := t.Initial, t.Target

	// Displacement achievable without a cruise segment, ramping straight
	// from initial up to vUp and back down to target.
	dMax, ok := displacementAt(initial, target, vUp, accUp, accDown, jMax)
	if !ok {
		return Result{}, false
	}
	want := target.P - initial.P

	var vp float64
	var cruiseDuration float64
	if want >= dMax-1e-9 {
		vp = vUp
		cruiseDuration = (want - dMax) / vUp
		if cruiseDuration < 0 {
			cruiseDuration = 0
		}
	} else {
		lo := math.Max(math.Max(initial.V, target.V), -vUp)
		found, ok := bisectVelocity(initial, target, lo, vUp, accUp, accDown, jMax, want)
		if !ok {
			return Result{}, false
		}
		vp = found
		cruiseDuration = 0
	}

	upSegs, downSegs, _, ok := solveRampPair(initial, target, vp, accUp, accDown, jMax)
	if !ok {
		return Result{}, false
	}

	segs := [profile.NumSegments]profile.Segment{
		upSegs[0], upSegs[1], upSegs[2],
		{Duration: cruiseDuration, Jerk: 0},
		downSegs[0], downSegs[1], downSegs[2],
	}
	shape := profile.Shape{
		Up:   true,
		Acc0: upSegs[1].Duration > profile.EpsLimit,
		Vel:  cruiseDuration > profile.EpsLimit,
		Acc1: downSegs[1].Duration > profile.EpsLimit,
	}
	p := profile.New(initial, segs, shape)
	if !p.MatchesTarget(target) {
		return Result{}, false
	}
	lim := profile.Limits{VMax: vUp, VMin: -math.Inf(1), AMax: accUp, AMin: accDown, JMax: jMax}
	// Use a permissive VMin/AMin since this helper only ever bounds the
	// "up" side; asymmetric lower bounds were already folded into accDown.
	if !p.SatisfiesLimits(lim) {
		return Result{}, false
	}
	return Result{Profile: p, Duration: p.Duration()}, true
}

func solveVelocityInterface(t Task, lim profile.Limits) (Result, error) {
	jerkSign := 1.0
	accLimit := lim.AMax
	if t.Target.V < t.Initial.V {
		jerkSign = -1.0
		accLimit = lim.AMin
	}
	segs3, _, ok := ramp(t.Initial, t.Target.V, t.Target.A, jerkSign, accLimit, lim.JMax)
	if !ok {
		return Result{}, ErrExecutionTimeCalculation
	}
	segs := [profile.NumSegments]profile.Segment{
		segs3[0], segs3[1], segs3[2],
		{}, {}, {}, {},
	}
	shape := profile.Shape{Up: jerkSign > 0, Acc0: segs3[1].Duration > profile.EpsLimit}
	p := profile.New(t.Initial, segs, shape)
	if math.Abs(p.Final().V-t.Target.V) > 1e-8 || math.Abs(p.Final().A-t.Target.A) > 1e-10 {
		return Result{}, ErrExecutionTimeCalculation
	}
	return Result{Profile: p, Duration: p.Duration()}, nil
}

func negate(s profile.State) profile.State {
	return profile.State{P: -s.P, V: -s.V, A: -s.A}
}

// negateProfile rebuilds a profile solved in negated coordinates back into
// the real coordinate frame, re-keying from the true (non-negated) initial
// state so cached boundary states are correct.
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
