package profile

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// NumSegments is the seven-segment shape every profile is expressed in
// (spec §3, Glossary: "seven-segment profile").
const NumSegments = 7

// Segment is one constant-jerk interval.
type Segment struct {
	Duration float64
	Jerk     float64
}

// Shape records the taxonomy spec §3 assigns to a profile: direction and
// which of the three plateaus (ramp-up acceleration, cruise velocity,
// ramp-down acceleration) were actually reached. Step-1's template
// enumeration is indexed by this taxonomy.
type Shape struct {
	Up    bool // true for UP, false for DOWN
	Acc0  bool // ramp-up reaches +-AMax
	Vel   bool // segment 4 reaches +-VMax with zero acceleration
	Acc1  bool // ramp-down reaches +-AMax
}

// Profile is an ordered sequence of seven constant-jerk segments together
// with the cached state at the start of each segment (index 0) through the
// terminal state (index 7), computed once at construction for O(1) AtTime
// (spec §4.1: "Profile assembly computes the seven intermediate states
// once and caches them").
type Profile struct {
	Segments [NumSegments]Segment
	Shape    Shape

	boundary [NumSegments + 1]State
	cumTime  [NumSegments + 1]float64
}

// New builds a Profile from an initial state and seven (jerk, duration)
// segments, caching segment-boundary states and cumulative times.
func New(initial State, segs [NumSegments]Segment, shape Shape) *Profile {
	p := &Profile{Segments: segs, Shape: shape}
	p.boundary[0] = initial
	p.cumTime[0] = 0
	for i, s := range segs {
		p.boundary[i+1] = Integrate(p.boundary[i], s.Jerk, s.Duration)
		p.cumTime[i+1] = p.cumTime[i] + s.Duration
	}
	return p
}

// Duration returns the total profile duration, sum of all segment durations.
func (p *Profile) Duration() float64 { return p.cumTime[NumSegments] }

// Initial returns the state at tau=0.
func (p *Profile) Initial() State { return p.boundary[0] }

// Final returns the state at tau=Duration().
func (p *Profile) Final() State { return p.boundary[NumSegments] }

// BoundaryTime returns the cumulative time at the start of segment i
// (i in [0, NumSegments]); BoundaryTime(NumSegments) == Duration().
func (p *Profile) BoundaryTime(i int) float64 { return p.cumTime[i] }

// BoundaryState returns the cached state at the start of segment i.
func (p *Profile) BoundaryState(i int) State { return p.boundary[i] }

// AtTime evaluates (p, v, a, j) at tau, clamped per spec §4.6: tau<0 returns
// the initial state with zero jerk, tau>Duration() returns the terminal
// state with zero jerk.
func (p *Profile) AtTime(tau float64) (State, float64) {
	if tau <= 0 {
		return p.boundary[0], 0
	}
	total := p.Duration()
	if tau >= total {
		return p.boundary[NumSegments], 0
	}
	for i := 0; i < NumSegments; i++ {
		if tau < p.cumTime[i+1] || i == NumSegments-1 {
			dt := tau - p.cumTime[i]
			return Integrate(p.boundary[i], p.Segments[i].Jerk, dt), p.Segments[i].Jerk
		}
	}
	return p.boundary[NumSegments], 0
}

// stationaryPointsInSegment returns the local extrema times (absolute,
// within [cumTime[i], cumTime[i+1]]) of v(tau) inside segment i, i.e. the
// roots of a(tau) = a_i + j_i*(tau-t_i) = 0, per spec §4.1 "stationary
// points of the quadratic v(tau)".
func (p *Profile) stationaryPointsInSegment(i int) []float64 {
	j := p.Segments[i].Jerk
	if math.Abs(j) < 1e-15 {
		return nil
	}
	a0 := p.boundary[i].A
	dt := -a0 / j
	if dt <= 0 || dt >= p.Segments[i].Duration {
		return nil
	}
	return []float64{p.cumTime[i] + dt}
}

// CheckVelocityError returns the largest violation (positive means
// exceeded) of [VMin, VMax] across all segment boundaries and internal
// stationary points, per spec §4.2 invariant-checking step and §8
// property 1. A non-positive return means no violation.
func (p *Profile) CheckVelocityError(l Limits) float64 {
	l = l.Normalized()
	worst := math.Inf(-1)
	check := func(v float64) {
		if d := v - l.VMax; d > worst {
			worst = d
		}
		if d := l.VMin - v; d > worst {
			worst = d
		}
	}
	for i := 0; i <= NumSegments; i++ {
		check(p.boundary[i].V)
	}
	for i := 0; i < NumSegments; i++ {
		for _, tau := range p.stationaryPointsInSegment(i) {
			st, _ := p.AtTime(tau)
			check(st.V)
		}
	}
	return worst
}

// CheckAccelerationError is the analogous check for [AMin, AMax]; since
// acceleration is piecewise-linear its extrema are always at segment
// boundaries.
func (p *Profile) CheckAccelerationError(l Limits) float64 {
	l = l.Normalized()
	worst := math.Inf(-1)
	for i := 0; i <= NumSegments; i++ {
		a := p.boundary[i].A
		if d := a - l.AMax; d > worst {
			worst = d
		}
		if d := l.AMin - a; d > worst {
			worst = d
		}
	}
	return worst
}

// CheckPositionError returns |p(Duration()) - target|.
func (p *Profile) CheckPositionError(target float64) float64 {
	return math.Abs(p.Final().P - target)
}

// MatchesTarget reports whether the profile's terminal state equals target
// within the tolerances of spec §3/§8: 1e-8 for p,v and 1e-10 for a.
func (p *Profile) MatchesTarget(target State) bool {
	f := p.Final()
	return scalar.EqualWithinAbsOrRel(f.P, target.P, 1e-8, 1e-8) &&
		scalar.EqualWithinAbsOrRel(f.V, target.V, 1e-8, 1e-8) &&
		scalar.EqualWithinAbsOrRel(f.A, target.A, 1e-10, 1e-10)
}

// SatisfiesLimits reports whether the profile stays within l across its
// full duration, to within EpsLimit.
func (p *Profile) SatisfiesLimits(l Limits) bool {
	return p.CheckVelocityError(l) <= EpsLimit && p.CheckAccelerationError(l) <= EpsLimit
}

// PositionExtrema implements spec §4.6 get_position_extrema for a single
// profile: the minimum and maximum position reached, and the times they
// occur at, found by evaluating p(tau) at segment boundaries and at the
// roots of v(tau)=0 inside each segment.
func (p *Profile) PositionExtrema() (pMin, tMin, pMax, tMax float64) {
	pMin, pMax = math.Inf(1), math.Inf(-1)
	consider := func(tau float64) {
		st, _ := p.AtTime(tau)
		if st.P < pMin {
			pMin, tMin = st.P, tau
		}
		if st.P > pMax {
			pMax, tMax = st.P, tau
		}
	}
	for i := 0; i <= NumSegments; i++ {
		consider(p.cumTime[i])
	}
	for i := 0; i < NumSegments; i++ {
		for _, tau := range velocityZeroCrossings(p, i) {
			consider(tau)
		}
	}
	return
}

// velocityZeroCrossings solves v(tau) = 0 within segment i, a quadratic in
// the segment-local time, returning absolute times of any roots inside the
// segment's span.
func velocityZeroCrossings(p *Profile, i int) []float64 {
	s := p.boundary[i]
	j := p.Segments[i].Jerk
	dur := p.Segments[i].Duration
	var roots []float64
	quad := func(a, b, c float64) {
		if math.Abs(a) < 1e-15 {
			if math.Abs(b) < 1e-15 {
				return
			}
			roots = append(roots, -c/b)
			return
		}
		disc := b*b - 4*a*c
		if disc < 0 {
			return
		}
		sq := math.Sqrt(disc)
		roots = append(roots, (-b+sq)/(2*a), (-b-sq)/(2*a))
	}
	quad(0.5*j, s.A, s.V)
	out := make([]float64, 0, 2)
	for _, r := range roots {
		if r > 0 && r < dur {
			out = append(out, p.cumTime[i]+r)
		}
	}
	return out
}
