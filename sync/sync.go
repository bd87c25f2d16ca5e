// Package sync implements the multi-DoF synchronization strategies of spec
// §4.5: bringing the independent per-DoF Step-1 solutions into one of the
// None/Time/Phase/PhaseOrTime relationships before trajectory assembly.
package sync

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/floats/scalar"

	"go.viam.com/trajgen/profile"
	"go.viam.com/trajgen/step1"
	"go.viam.com/trajgen/step2"
)

// Strategy selects how independent per-DoF time-optimal solutions are
// reconciled into a common trajectory duration (spec §4.5, Glossary).
type Strategy int

const (
	// None leaves every DoF at its own time-optimal duration.
	None Strategy = iota
	// Time stretches every DoF to the slowest DoF's duration via Step-2.
	Time
	// Phase additionally requires every DoF's full (p,v,a) delta to be a
	// scalar multiple of one governing DoF's, so every DoF's profile is
	// the same unit-time scaling of one canonical profile (straight-line
	// motion in joint space).
	Phase
	// PhaseOrTime attempts Phase and falls back to Time when the motion
	// is not collinear (spec §4.5 "falls back to ... when Phase synchronization
	// is not applicable").
	PhaseOrTime
)

// Discretization selects whether the governing synchronized duration is
// left exactly as computed (Off) or rounded up to the nearest multiple of
// the control cycle (Discrete), per spec §4.5 "Duration discretization".
type Discretization int

const (
	// Off leaves T_sync exactly as computed.
	Off Discretization = iota
	// Discrete rounds T_sync up to the nearest multiple of deltaT.
	Discrete
)

// ErrNotCollinear is returned by Phase when the requested motion is not
// collinear across DoFs, or when the per-DoF limits do not admit a common
// scaling of the governing profile, and therefore cannot be phase-
// synchronized (spec §7 NoPhaseSynchronization).
var ErrNotCollinear = errors.New("phase synchronization: requested motion has no common scaling across dofs")

// collinearTol is the relative tolerance used when comparing displacement
// ratios across DoFs for the Phase collinearity check.
const collinearTol = 1e-8

// scaleTol is the absolute-or-relative tolerance used when checking that a
// DoF's boundary (v,a) state is consistent with being the governing DoF's
// own boundary state scaled by a constant.
const scaleTol = 1e-6

// Result is the synchronized outcome for one DoF.
type Result struct {
	step1.Result
}

// Synchronize solves tasks independently and then reconciles them per
// strategy, returning one Result per input DoF in the same order. Any
// per-DoF Step-1 failure and any synchronization failure are aggregated
// with multierr so the caller sees every failing DoF, not just the first
// (spec §7 error policy: report what failed, not merely that something did).
func Synchronize(tasks []step1.Task, strategy Strategy) ([]Result, error) {
	return SynchronizeWithMinDuration(tasks, strategy, 0, Off, 0)
}

// SynchronizeWithMinDuration is Synchronize extended with an externally
// requested minimum trajectory duration (spec §4.5) and the duration-
// discretization selector: when discretization is Discrete, the governing
// T_sync is rounded up to the nearest multiple of deltaT before Step-2 is
// invoked. minDuration <= 0 and discretization == Off behave exactly like
// Synchronize.
func SynchronizeWithMinDuration(tasks []step1.Task, strategy Strategy, minDuration float64, discretization Discretization, deltaT float64) ([]Result, error) {
	independent := make([]step1.Result, len(tasks))
	var errs error
	for i, task := range tasks {
		res, err := step1.Solve(task)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "dof %d", i))
			continue
		}
		independent[i] = res
	}
	if errs != nil {
		return nil, errs
	}

	switch strategy {
	case None:
		if minDuration <= 0 && discretization != Discrete {
			return wrap(independent), nil
		}
		return synchronizeEachIndependently(tasks, independent, minDuration, discretization, deltaT)
	case Time:
		tSync := roundUp(math.Max(MaxDuration(independent), minDuration), discretization, deltaT)
		return synchronizeToDuration(tasks, independent, tSync)
	case Phase:
		return synchronizePhase(tasks, independent, minDuration, discretization, deltaT)
	case PhaseOrTime:
		res, err := synchronizePhase(tasks, independent, minDuration, discretization, deltaT)
		if err == nil {
			return res, nil
		}
		tSync := roundUp(math.Max(MaxDuration(independent), minDuration), discretization, deltaT)
		return synchronizeToDuration(tasks, independent, tSync)
	default:
		return nil, errors.Errorf("sync: unknown strategy %d", strategy)
	}
}

// roundUp applies spec §4.5's duration-discretization selector to t.
func roundUp(t float64, d Discretization, deltaT float64) float64 {
	if d != Discrete || deltaT <= 0 {
		return t
	}
	n := math.Ceil(t/deltaT - 1e-9)
	return n * deltaT
}

// synchronizeEachIndependently stretches each DoF to at least minDuration,
// each DoF further rounded up independently under Discrete, without
// otherwise coupling their durations to one another (used by Strategy None
// when either a non-zero minDuration or duration discretization applies).
func synchronizeEachIndependently(tasks []step1.Task, independent []step1.Result, minDuration float64, discretization Discretization, deltaT float64) ([]Result, error) {
	out := make([]Result, len(tasks))
	var errs error
	for i, task := range tasks {
		target := roundUp(math.Max(independent[i].Duration, minDuration), discretization, deltaT)
		if independent[i].Duration >= target-1e-9 {
			out[i] = Result{independent[i]}
			continue
		}
		res, err := step2.Solve(task, target)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "dof %d", i))
			continue
		}
		out[i] = Result{res}
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

// MaxDuration returns the slowest DoF's independent duration, the T_sync
// every DoF is stretched to under Time/Phase/PhaseOrTime.
func MaxDuration(independent []step1.Result) float64 {
	t := 0.0
	for _, r := range independent {
		if r.Duration > t {
			t = r.Duration
		}
	}
	return t
}

func synchronizeToDuration(tasks []step1.Task, independent []step1.Result, tSync float64) ([]Result, error) {
	out := make([]Result, len(tasks))
	var errs error
	for i, task := range tasks {
		if independent[i].Duration >= tSync-1e-9 {
			out[i] = Result{independent[i]}
			continue
		}
		res, err := step2.Solve(task, tSync)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "dof %d", i))
			continue
		}
		out[i] = Result{res}
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

func wrap(rs []step1.Result) []Result {
	out := make([]Result, len(rs))
	for i, r := range rs {
		out[i] = Result{r}
	}
	return out
}

// synchronizePhase implements true amplitude-scaled Phase synchronization
// (spec §4.5, §8 property 6): the governing DoF (the slowest one
// independently) keeps its own time-optimal-or-stretched profile, and every
// other DoF's profile is that same profile with every segment's jerk
// scaled by a constant k_d, re-integrated from that DoF's own initial
// state. Since jerk-integrated kinematics are linear in jerk for fixed
// segment durations, this reproduces exactly the unit-time scaling spec
// §8 property 6 requires: (p(τ)-p0)/(pT-p0) coincides across DoFs for all
// τ. It is feasible only when every DoF's full (p,v,a) delta is collinear
// with the governing DoF's (IsCollinear) and the scaled profile still
// satisfies that DoF's own velocity/acceleration/jerk limits.
func synchronizePhase(tasks []step1.Task, independent []step1.Result, minDuration float64, discretization Discretization, deltaT float64) ([]Result, error) {
	if !IsCollinear(tasks) {
		return nil, ErrNotCollinear
	}

	refIdx := governingIndex(independent)
	refTask := tasks[refIdx]
	refDelta := delta(refTask)

	tSync := roundUp(math.Max(independent[refIdx].Duration, minDuration), discretization, deltaT)
	refResult := independent[refIdx]
	if tSync > refResult.Duration+1e-9 {
		var err error
		refResult, err = step2.Solve(refTask, tSync)
		if err != nil {
			return nil, errors.Wrapf(err, "dof %d: stretching governing profile to %.6fs", refIdx, tSync)
		}
	}

	out := make([]Result, len(tasks))
	var errs error
	for i, t := range tasks {
		if i == refIdx {
			out[i] = Result{refResult}
			continue
		}
		if math.Abs(refDelta) <= collinearTol {
			// The governing DoF doesn't move; IsCollinear already requires
			// every other DoF be at rest too, so there is nothing to scale.
			out[i] = Result{independent[i]}
			continue
		}

		k := delta(t) / refDelta
		if !scalingConsistent(refTask, t, k) {
			errs = multierr.Append(errs, errors.Wrapf(ErrNotCollinear, "dof %d: boundary state is not a scaled copy of the governing dof", i))
			continue
		}

		scaled := scaleProfile(refResult.Profile, k, t.Initial)
		lim := t.Limits.Normalized()
		if !scaled.MatchesTarget(t.Target) || !scaled.SatisfiesLimits(lim) || !respectsJerk(scaled, lim.JMax) {
			errs = multierr.Append(errs, errors.Wrapf(ErrNotCollinear, "dof %d: limits do not admit a common scaling", i))
			continue
		}
		out[i] = Result{step1.Result{Profile: scaled, Duration: scaled.Duration()}}
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

// scalingConsistent reports whether t's own boundary (v,a) state is
// consistent with being the reference task's boundary state scaled by k —
// the necessary condition for a single per-segment jerk scaling to
// reproduce t's own endpoints exactly, not just its position (or velocity,
// for the velocity interface) delta.
func scalingConsistent(ref, t step1.Task, k float64) bool {
	eq := func(a, b float64) bool {
		return scalar.EqualWithinAbsOrRel(a, k*b, scaleTol, scaleTol)
	}
	return eq(t.Initial.V, ref.Initial.V) && eq(t.Initial.A, ref.Initial.A) &&
		eq(t.Target.V, ref.Target.V) && eq(t.Target.A, ref.Target.A)
}

// scaleProfile rebuilds ref's seven segments with jerk scaled by k
// (durations unchanged) and re-integrates from initial. Jerk-integrated
// kinematics are linear in jerk for a fixed sequence of durations starting
// from a fixed initial state, so this produces exactly a k-scaled copy of
// ref's own (p,v,a) trajectory when initial is itself k*ref's initial state.
func scaleProfile(ref *profile.Profile, k float64, initial profile.State) *profile.Profile {
	var segs [profile.NumSegments]profile.Segment
	for i := 0; i < profile.NumSegments; i++ {
		segs[i] = profile.Segment{Duration: ref.Segments[i].Duration, Jerk: ref.Segments[i].Jerk * k}
	}
	return profile.New(initial, segs, ref.Shape)
}

// respectsJerk reports whether every segment of p stays within +-jMax; the
// Profile invariant checks (SatisfiesLimits) only cover velocity and
// acceleration, so Phase's own scaling (which can push jerk out of a
// DoF's bounds even when v/a stay in bounds) needs this extra check.
func respectsJerk(p *profile.Profile, jMax float64) bool {
	for _, s := range p.Segments {
		if math.Abs(s.Jerk) > jMax+profile.EpsLimit {
			return false
		}
	}
	return true
}

// governingIndex returns the index of the DoF with the largest independent
// (Step-1) duration, the canonical profile Phase synchronization scales
// every other DoF's motion from.
func governingIndex(independent []step1.Result) int {
	idx := 0
	for i, r := range independent {
		if r.Duration > independent[idx].Duration {
			idx = i
		}
	}
	return idx
}

// IsCollinear reports whether every task's displacement vector (for
// position-interface DoFs) or velocity-delta vector (for velocity-interface
// DoFs) lies along one common direction, which is Phase synchronization's
// precondition (spec §4.5). A DoF with (numerically) zero delta breaks
// collinearity as soon as any other DoF actually moves — it cannot follow a
// shared nonzero unit-time scaling of another DoF's motion (spec §8
// scenario S6) — but if every DoF's delta is zero, the motion is trivially
// collinear (there is nothing to synchronize).
func IsCollinear(tasks []step1.Task) bool {
	var ref float64
	haveRef := false
	allZero := true
	deltas := make([]float64, len(tasks))
	for i, t := range tasks {
		d := delta(t)
		deltas[i] = d
		if math.Abs(d) > collinearTol {
			allZero = false
			if !haveRef {
				ref = d
				haveRef = true
			}
		}
	}
	if allZero {
		return true
	}
	for _, d := range deltas {
		if math.Abs(d) <= collinearTol {
			return false
		}
		if d/ref < collinearTol {
			return false
		}
	}
	return true
}

func delta(t step1.Task) float64 {
	if t.Interface == step1.Velocity {
		return t.Target.V - t.Initial.V
	}
	return t.Target.P - t.Initial.P
}
