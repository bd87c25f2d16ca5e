// Package polyroot is the shared, well-tested numerical primitives module
// the design notes call for (spec §9: "a shared well-tested module is
// recommended"). The Step-1 and Step-2 solvers do not call Quadratic, Cubic
// or Quartic (their shared ramp primitive needs only a square root); step1
// uses EpsTime from this package as its bisection tolerance.
//
// Quadratic and cubic roots use stable, textbook branch selection
// (discriminant-sign-aware quadratic formula, depressed-cubic Cardano with
// trigonometric vs. hyperbolic branches). Quartics are solved with a
// safeguarded Durand-Kerner iteration rather than a hand-derived Ferrari
// case split:
// spec §9 explicitly frames this module as "closed-form + root-finding",
// and Durand-Kerner converges reliably on the small, well-scaled
// coefficient ranges this domain produces (durations/jerks documented in
// spec §6's numerical domain) without the combinatorial branch explosion
// Ferrari's method needs for numerical stability.
package polyroot

import (
	"math"

	"go.viam.com/trajgen/numeric"
)

// EpsTime is the root/degenerate-segment tolerance used throughout the
// solvers (spec §4.2 "Numerical policy", ε_time = 1e-12).
const EpsTime = 1e-12

// Quadratic returns the real roots of a*x^2 + b*x + c = 0, smallest first.
// Uses the sign-aware form of the quadratic formula to avoid catastrophic
// cancellation when b is large relative to a*c.
func Quadratic(a, b, c float64) []float64 {
	if math.Abs(a) < EpsTime {
		if math.Abs(b) < EpsTime {
			return nil
		}
		return []float64{-c / b}
	}
	disc := b*b - 4*a*c
	if disc < -EpsTime {
		return nil
	}
	if disc < 0 {
		disc = 0
	}
	sq := math.Sqrt(disc)
	var q float64
	if b >= 0 {
		q = -0.5 * (b + sq)
	} else {
		q = -0.5 * (b - sq)
	}
	if math.Abs(q) < EpsTime {
		return []float64{0}
	}
	r1 := q / a
	r2 := c / q
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	return []float64{r1, r2}
}

// Cubic returns the real roots of a*x^3 + b*x^2 + c*x + d = 0.
func Cubic(a, b, c, d float64) []float64 {
	if math.Abs(a) < EpsTime {
		return Quadratic(b, c, d)
	}
	// Normalize to x^3 + A x^2 + B x + C = 0.
	A := b / a
	B := c / a
	C := d / a

	// Depress: x = t - A/3  =>  t^3 + p t + q = 0.
	p := B - A*A/3
	q := 2*A*A*A/27 - A*B/3 + C
	shift := A / 3

	const third = 1.0 / 3.0
	if math.Abs(p) < EpsTime && math.Abs(q) < EpsTime {
		return []float64{-shift}
	}

	disc := (q*q)/4 + (p*p*p)/27

	switch {
	case disc > EpsTime:
		// One real root: hyperbolic (Cardano) branch.
		sqrtDisc := math.Sqrt(disc)
		u := cbrt(-q/2 + sqrtDisc)
		v := cbrt(-q/2 - sqrtDisc)
		return []float64{u + v - shift}
	case disc < -EpsTime:
		// Three real roots: trigonometric branch.
		r := math.Sqrt(-p * p * p / 27)
		phi := math.Acos(numeric.Clamp(-q/(2*r), -1, 1))
		m := 2 * math.Sqrt(-p/3)
		roots := []float64{
			m*math.Cos(phi*third) - shift,
			m*math.Cos((phi+2*math.Pi)*third) - shift,
			m*math.Cos((phi+4*math.Pi)*third) - shift,
		}
		sortFloats(roots)
		return roots
	default:
		// disc ~ 0: a double root and a simple root.
		u := cbrt(-q / 2)
		roots := []float64{2*u - shift, -u - shift}
		sortFloats(roots)
		return roots
	}
}

// Quartic returns the real roots of a*x^4 + b*x^3 + c*x^2 + d*x + e = 0,
// found via a safeguarded Durand-Kerner (Weierstrass) iteration over the
// complex plane, keeping only roots whose imaginary part is below
// 1e-7*(1+|real part|).
func Quartic(a, b, c, d, e float64) []float64 {
	if math.Abs(a) < EpsTime {
		return Cubic(b, c, d, e)
	}
	// Monic coefficients.
	coef := [5]float64{1, b / a, c / a, d / a, e / a}

	// Initial guesses spread around a circle scaled to the root magnitude
	// bound (Cauchy's bound), which keeps the iteration well-conditioned
	// for the small coefficient ranges this domain produces.
	bound := 1.0
	for i := 1; i < 5; i++ {
		if m := math.Abs(coef[i]); m > bound {
			bound = m
		}
	}
	bound += 1

	type cplx struct{ re, im float64 }
	roots := make([]cplx, 4)
	for i := range roots {
		theta := 2 * math.Pi * float64(i) / 4
		roots[i] = cplx{bound * math.Cos(theta+0.4), bound * math.Sin(theta+0.4)}
	}

	eval := func(z cplx) cplx {
		// Horner's method in complex arithmetic.
		r := cplx{coef[0], 0}
		for i := 1; i < 5; i++ {
			r = cplx{r.re*z.re - r.im*z.im + coef[i], r.re*z.im + r.im*z.re}
		}
		return r
	}

	const maxIter = 100
	for iter := 0; iter < maxIter; iter++ {
		maxDelta := 0.0
		for i := range roots {
			num := eval(roots[i])
			den := cplx{1, 0}
			for j := range roots {
				if j == i {
					continue
				}
				diff := cplx{roots[i].re - roots[j].re, roots[i].im - roots[j].im}
				den = cplx{den.re*diff.re - den.im*diff.im, den.re*diff.im + den.im*diff.re}
			}
			denMag2 := den.re*den.re + den.im*den.im
			if denMag2 < 1e-30 {
				continue
			}
			// delta = num/den
			deltaRe := (num.re*den.re + num.im*den.im) / denMag2
			deltaIm := (num.im*den.re - num.re*den.im) / denMag2
			roots[i].re -= deltaRe
			roots[i].im -= deltaIm
			d := math.Hypot(deltaRe, deltaIm)
			if d > maxDelta {
				maxDelta = d
			}
		}
		if maxDelta < 1e-14 {
			break
		}
	}

	out := make([]float64, 0, 4)
	for _, z := range roots {
		if math.Abs(z.im) < 1e-7*(1+math.Abs(z.re)) {
			out = append(out, z.re)
		}
	}
	sortFloats(out)
	return out
}

func cbrt(x float64) float64 {
	if x < 0 {
		return -math.Cbrt(-x)
	}
	return math.Cbrt(x)
}

func sortFloats(s []float64) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// PositiveRoots filters roots to those >= -tol, clamping small negative
// artifacts to zero (spec §4.2: "clamp negative root artifacts to zero
// before invariant check").
func PositiveRoots(roots []float64, tol float64) []float64 {
	out := make([]float64, 0, len(roots))
	for _, r := range roots {
		if r >= -tol {
			if r < 0 {
				r = 0
			}
			out = append(out, r)
		}
	}
	return out
}
