// Package numeric holds the tiny generic numeric helpers shared across the
// solver packages, so each one doesn't carry its own copy of the same
// clamp function.
package numeric

import "golang.org/x/exp/constraints"

// Clamp restricts v to [lo, hi].
func Clamp[T constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
