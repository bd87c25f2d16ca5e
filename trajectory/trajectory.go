// Package trajectory implements spec §4.6: assembling one or more
// synchronized per-DoF profile sets ("sections") into a single sampleable
// trajectory, with the at_time and get_position_extrema query surface the
// planner exposes to callers.
package trajectory

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"go.viam.com/trajgen/profile"
)

// Section is one synchronized leg: one profile.Profile per DoF, all
// sharing the same duration (the output of a single sync.Synchronize call).
type Section struct {
	Profiles []*profile.Profile
}

// Duration returns the section's duration, the longest of its per-DoF
// profile durations. DoFs synchronized to a common duration (spec §4.5)
// all agree here; a DoF whose own profile is shorter (e.g. a brake section
// where one DoF needed no braking) simply holds its terminal state for the
// remainder via Profile.AtTime's clamping.
func (s Section) Duration() float64 {
	d := 0.0
	for _, p := range s.Profiles {
		if p.Duration() > d {
			d = p.Duration()
		}
	}
	return d
}

// Trajectory is an ordered sequence of sections, each immediately following
// the previous in time (spec §4.6 "sections concatenate with no gap").
type Trajectory struct {
	sections     []Section
	sectionStart []float64
	dof          int

	independentMin []float64
}

// New assembles sections into a Trajectory. independentMin records each
// DoF's own time-optimal duration (disregarding synchronization), which
// IndependentMinDurations reports back to the caller (spec §4.6).
func New(sections []Section, independentMin []float64) (*Trajectory, error) {
	if len(sections) == 0 {
		return nil, errors.New("trajectory: at least one section is required")
	}
	dof := len(sections[0].Profiles)
	if dof == 0 {
		return nil, errors.New("trajectory: section has zero DoFs")
	}
	starts := make([]float64, len(sections)+1)
	for i, sec := range sections {
		if len(sec.Profiles) != dof {
			return nil, errors.Errorf("trajectory: section %d has %d DoFs, want %d", i, len(sec.Profiles), dof)
		}
		starts[i+1] = starts[i] + sec.Duration()
	}
	return &Trajectory{
		sections:       sections,
		sectionStart:   starts,
		dof:            dof,
		independentMin: independentMin,
	}, nil
}

// DoF returns the number of degrees of freedom this trajectory covers.
func (t *Trajectory) DoF() int { return t.dof }

// Duration returns the total trajectory duration across all sections.
func (t *Trajectory) Duration() float64 { return t.sectionStart[len(t.sectionStart)-1] }

// IndependentMinDurations returns each DoF's own time-optimal duration had
// it not been synchronized with the others (spec §4.6
// independent_min_durations).
func (t *Trajectory) IndependentMinDurations() []float64 { return t.independentMin }

// sectionAt returns the index of the section covering absolute time tau and
// the time local to that section's start.
func (t *Trajectory) sectionAt(tau float64) (int, float64) {
	if tau <= 0 {
		return 0, 0
	}
	total := t.Duration()
	if tau >= total {
		last := len(t.sections) - 1
		return last, tau - t.sectionStart[last]
	}
	// sectionStart is sorted ascending; find the last start <= tau.
	i := sort.Search(len(t.sectionStart), func(i int) bool { return t.sectionStart[i] > tau }) - 1
	if i < 0 {
		i = 0
	}
	if i > len(t.sections)-1 {
		i = len(t.sections) - 1
	}
	return i, tau - t.sectionStart[i]
}

// SectionIndex returns which section absolute time tau falls into, clamped
// to [0, len(sections)-1] the same way AtTime clamps tau itself (spec §3
// OutputParameter "current section index").
func (t *Trajectory) SectionIndex(tau float64) int {
	idx, _ := t.sectionAt(tau)
	return idx
}

// NumSections returns the number of sections this trajectory was assembled
// from.
func (t *Trajectory) NumSections() int { return len(t.sections) }

// AtTime evaluates DoF dof's (p, v, a) and jerk at absolute time tau,
// clamped to [0, Duration()] the same way a single profile.Profile clamps
// (spec §4.6).
func (t *Trajectory) AtTime(dof int, tau float64) (profile.State, float64) {
	secIdx, local := t.sectionAt(tau)
	return t.sections[secIdx].Profiles[dof].AtTime(local)
}

// PositionExtrema returns the minimum and maximum position dof reaches
// across the whole trajectory and the absolute times they occur at (spec
// §4.6 get_position_extrema).
func (t *Trajectory) PositionExtrema(dof int) (pMin, tMin, pMax, tMax float64) {
	pMin, pMax = math.Inf(1), math.Inf(-1)
	for i, sec := range t.sections {
		lpMin, ltMin, lpMax, ltMax := sec.Profiles[dof].PositionExtrema()
		if lpMin < pMin {
			pMin, tMin = lpMin, t.sectionStart[i]+ltMin
		}
		if lpMax > pMax {
			pMax, tMax = lpMax, t.sectionStart[i]+ltMax
		}
	}
	return
}
