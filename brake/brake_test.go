package brake

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/trajgen/profile"
)

func unitLimits() profile.Limits {
	return profile.Limits{VMax: 1, AMax: 1, JMax: 1}
}

func TestNotNeededWhenWithinBounds(t *testing.T) {
	test.That(t, Needed(profile.State{V: 0.2, A: 0.1}, unitLimits()), test.ShouldBeFalse)
}

func TestNeededWhenOverSpeed(t *testing.T) {
	test.That(t, Needed(profile.State{V: 1.5}, unitLimits()), test.ShouldBeTrue)
}

func TestNeededWhenWillOvershootVelocity(t *testing.T) {
	// S4 from spec §8.
	test.That(t, Needed(profile.State{V: 0.9, A: 0.5}, unitLimits()), test.ShouldBeTrue)
}

func TestComputeNoOpWhenFeasible(t *testing.T) {
	p, final, ok := Compute(profile.State{V: 0.2}, unitLimits())
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, p.Duration(), test.ShouldEqual, 0.0)
	test.That(t, final, test.ShouldResemble, profile.State{V: 0.2})
}

func TestComputeBringsOverSpeedWithinBounds(t *testing.T) {
	p, final, ok := Compute(profile.State{V: 1.5}, unitLimits())
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, p.Duration(), test.ShouldBeGreaterThan, 0.0)
	test.That(t, final.V, test.ShouldBeLessThanOrEqualTo, 1.0+1e-8)
	test.That(t, final.A, test.ShouldAlmostEqual, 0.0, 1e-8)
}

func TestComputeBringsOvershootingAccelerationDown(t *testing.T) {
	p, final, ok := Compute(profile.State{V: 0.9, A: 0.5}, unitLimits())
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, p.Duration(), test.ShouldBeGreaterThan, 0.0)
	test.That(t, profile.WillExceedVelocity(final.V, final.A, 1, 1), test.ShouldBeFalse)
}
