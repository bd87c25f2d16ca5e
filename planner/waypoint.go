package planner

import "go.viam.com/trajgen/profile"

// Waypoint is one intermediate stop-and-go leg of a multi-section
// trajectory (spec §9 Open Question: "waypoint-following ... documented
// extension point"). Each waypoint's TargetState is solved as its own
// Step-1/Step-2/sync section and brought to rest there before the next
// section begins; the joint time-parameterization across waypoints
// (blending/look-ahead across a waypoint) is intentionally not
// implemented, per the Open Question's instruction not to fabricate it.
// The leg to InputParameter.TargetState always follows the last waypoint.
type Waypoint struct {
	// TargetState is this waypoint's per-DoF target, one entry per DoF.
	TargetState []profile.State
	// Limits optionally overrides InputParameter.Limits for this section
	// only; a slice whose length does not equal the DoF count uses the
	// global per-DoF limits unchanged (spec §9 "per-section limits ...
	// reducing to the global limits when unset").
	Limits []profile.Limits
	// PositionBounds optionally restricts the positions any DoF may reach
	// while executing this section (spec §7 PositionalLimits error kind).
	// A slice whose length does not equal the DoF count imposes no
	// restriction.
	PositionBounds []profile.PositionBound
}
