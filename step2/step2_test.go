package step2

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/trajgen/profile"
	"go.viam.com/trajgen/step1"
)

func unitLimits() profile.Limits {
	return profile.Limits{VMax: 1, AMax: 1, JMax: 1}
}

func TestStretchToExactDuration(t *testing.T) {
	task := step1.Task{
		Initial: profile.State{},
		Target:  profile.State{P: 1},
		Limits:  unitLimits(),
	}
	fast, err := step1.Solve(task)
	test.That(t, err, test.ShouldBeNil)

	res, err := Solve(task, fast.Duration+2.0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Duration, test.ShouldAlmostEqual, fast.Duration+2.0, 1e-6)
	test.That(t, res.Profile.MatchesTarget(profile.State{P: 1}), test.ShouldBeTrue)
	test.That(t, res.Profile.SatisfiesLimits(unitLimits()), test.ShouldBeTrue)
}

func TestDurationAtMinimumReturnsFastProfile(t *testing.T) {
	task := step1.Task{
		Initial: profile.State{},
		Target:  profile.State{P: 1},
		Limits:  unitLimits(),
	}
	fast, err := step1.Solve(task)
	test.That(t, err, test.ShouldBeNil)

	res, err := Solve(task, fast.Duration)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Duration, test.ShouldAlmostEqual, fast.Duration, 1e-6)
}

func TestDurationShorterThanMinimumFails(t *testing.T) {
	task := step1.Task{
		Initial: profile.State{},
		Target:  profile.State{P: 1},
		Limits:  unitLimits(),
	}
	fast, err := step1.Solve(task)
	test.That(t, err, test.ShouldBeNil)

	_, err = Solve(task, fast.Duration*0.5)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestVelocityInterfaceStretchHolds(t *testing.T) {
	task := step1.Task{
		Initial:   profile.State{},
		Target:    profile.State{V: 0.5},
		Limits:    unitLimits(),
		Interface: step1.Velocity,
	}
	fast, err := step1.Solve(task)
	test.That(t, err, test.ShouldBeNil)

	res, err := Solve(task, fast.Duration+1.0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Duration, test.ShouldAlmostEqual, fast.Duration+1.0, 1e-9)
	test.That(t, res.Profile.Final().V, test.ShouldAlmostEqual, 0.5, 1e-8)
}
