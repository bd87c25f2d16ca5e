package kinvec

import (
	"testing"

	"go.viam.com/test"
)

func TestFixedAndDynamicSameSemantics(t *testing.T) {
	for _, v := range []Vector{NewFixed(3), NewDynamic(3)} {
		test.That(t, v.Len(), test.ShouldEqual, 3)
		v.Fill(2.5)
		for i := 0; i < v.Len(); i++ {
			test.That(t, v.At(i), test.ShouldEqual, 2.5)
		}
		v.Set(1, 9.0)
		test.That(t, v.At(1), test.ShouldEqual, 9.0)
		test.That(t, v.Slice(), test.ShouldResemble, []float64{2.5, 9.0, 2.5})

		seen := map[int]float64{}
		v.Each(func(i int, val float64) { seen[i] = val })
		test.That(t, len(seen), test.ShouldEqual, 3)
	}
}

func TestNewPicksFixedUnderMaxDoF(t *testing.T) {
	v := New(4)
	_, ok := v.(*Fixed)
	test.That(t, ok, test.ShouldBeTrue)

	v = New(MaxDoF + 1)
	_, ok = v.(*Dynamic)
	test.That(t, ok, test.ShouldBeTrue)
}

func TestFixedPanicsOverMaxDoF(t *testing.T) {
	test.That(t, func() { NewFixed(MaxDoF + 1) }, test.ShouldPanic)
}

func TestEqualWithinTol(t *testing.T) {
	a := DynamicFromSlice([]float64{1, 2, 3})
	b := DynamicFromSlice([]float64{1, 2, 3.0000000001})
	test.That(t, EqualWithinTol(a, b, 1e-6), test.ShouldBeTrue)
	test.That(t, EqualWithinTol(a, b, 1e-14), test.ShouldBeFalse)

	c := DynamicFromSlice([]float64{1, 2})
	test.That(t, EqualWithinTol(a, c, 1e-6), test.ShouldBeFalse)
}
