package numeric

import (
	"testing"

	"go.viam.com/test"
)

func TestClampRestrictsToRange(t *testing.T) {
	test.That(t, Clamp(5.0, 0.0, 10.0), test.ShouldEqual, 5.0)
	test.That(t, Clamp(-5.0, 0.0, 10.0), test.ShouldEqual, 0.0)
	test.That(t, Clamp(15.0, 0.0, 10.0), test.ShouldEqual, 10.0)
}
