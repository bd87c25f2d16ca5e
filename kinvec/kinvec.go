// Package kinvec provides a fixed-or-dynamic-length floating point vector
// abstraction (spec §3, §9): the Vector interface below, which both a
// compile-time-sized and a runtime-sized realization satisfy with identical
// semantics. No other package in this module uses it; the planner and
// solvers work on slices of profile.State per DoF.
package kinvec

import "gonum.org/v1/gonum/floats"

// Vector is a fixed-or-dynamic length vector of one float64 per DoF. Both
// realizations in this package are allocation-free after construction apart
// from Slice, which returns a fresh copy: Fixed is backed by an array,
// Dynamic's backing slice is sized once.
type Vector interface {
	Len() int
	At(i int) float64
	Set(i int, v float64)
	Fill(v float64)
	// Each calls fn once per element in order; implementations must not
	// allocate to support iteration.
	Each(fn func(i int, v float64))
	// Slice returns the elements as a freshly allocated []float64, for
	// callers (validation, logging) that need to range over values without
	// touching the Vector's internal representation.
	Slice() []float64
}

// Dynamic is the runtime-sized realization: DoF count is chosen at
// construction and the backing slice is allocated once and reused.
type Dynamic struct {
	v []float64
}

// NewDynamic allocates a Dynamic vector of the given width, all zero.
func NewDynamic(dof int) *Dynamic {
	return &Dynamic{v: make([]float64, dof)}
}

// DynamicFromSlice wraps an existing slice without copying; the caller
// retains ownership and must not resize it.
func DynamicFromSlice(v []float64) *Dynamic { return &Dynamic{v: v} }

func (d *Dynamic) Len() int             { return len(d.v) }
func (d *Dynamic) At(i int) float64     { return d.v[i] }
func (d *Dynamic) Set(i int, v float64) { d.v[i] = v }
func (d *Dynamic) Fill(v float64) {
	for i := range d.v {
		d.v[i] = v
	}
}
func (d *Dynamic) Each(fn func(i int, v float64)) {
	for i, v := range d.v {
		fn(i, v)
	}
}
func (d *Dynamic) Slice() []float64 {
	out := make([]float64, len(d.v))
	copy(out, d.v)
	return out
}

// MaxDoF bounds the compile-time-sized Fixed realization. Chosen generously
// for arm/gantry DoF counts (spec targets robot arms, CNC machines, gantries
// — none exceed this) while keeping Fixed entirely stack-resident.
const MaxDoF = 12

// Fixed is the compile-time-sized realization: an array-backed vector with a
// runtime-tracked logical length n <= MaxDoF. It never heap-allocates.
type Fixed struct {
	v [MaxDoF]float64
	n int
}

// NewFixed returns a Fixed vector of the given width. Panics if dof exceeds
// MaxDoF, mirroring the out-of-bounds panic a fixed-size array would give
// the caller anyway.
func NewFixed(dof int) *Fixed {
	if dof > MaxDoF {
		panic("kinvec: dof exceeds MaxDoF for Fixed vector")
	}
	return &Fixed{n: dof}
}

func (f *Fixed) Len() int             { return f.n }
func (f *Fixed) At(i int) float64     { return f.v[i] }
func (f *Fixed) Set(i int, v float64) { f.v[i] = v }
func (f *Fixed) Fill(v float64) {
	for i := 0; i < f.n; i++ {
		f.v[i] = v
	}
}
func (f *Fixed) Each(fn func(i int, v float64)) {
	for i := 0; i < f.n; i++ {
		fn(i, f.v[i])
	}
}
func (f *Fixed) Slice() []float64 {
	out := make([]float64, f.n)
	copy(out, f.v[:f.n])
	return out
}

// New picks Fixed for dof <= MaxDoF and Dynamic otherwise, for callers that
// don't care which realization they get, just that it doesn't heap-allocate
// when it doesn't have to.
func New(dof int) Vector {
	if dof <= MaxDoF {
		return NewFixed(dof)
	}
	return NewDynamic(dof)
}

// EqualWithinTol reports whether two same-length Vectors are element-wise
// equal to within absolute tolerance tol, using gonum/floats for the
// underlying slice comparison.
func EqualWithinTol(a, b Vector, tol float64) bool {
	if a.Len() != b.Len() {
		return false
	}
	return floats.EqualApprox(a.Slice(), b.Slice(), tol)
}
