package lane

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplatAndFirstN(t *testing.T) {
	t.Parallel()

	s := Splat(2.5)
	for i := 0; i < Width; i++ {
		assert.Equal(t, 2.5, s[i])
	}

	m := FirstN(2)
	assert.True(t, m[0])
	assert.True(t, m[1])
	assert.False(t, m[2])
	assert.False(t, m[3])
	assert.Equal(t, 2, m.Count())

	full := FirstN(Width + 3)
	assert.True(t, full.All())
}

func TestElementwiseArithmetic(t *testing.T) {
	t.Parallel()

	a := F64{1, 2, 3, 4}
	b := F64{4, 3, 2, 1}

	assert.Equal(t, F64{5, 5, 5, 5}, a.Add(b))
	assert.Equal(t, F64{-3, -1, 1, 3}, a.Sub(b))
	assert.Equal(t, F64{4, 6, 6, 4}, a.Mul(b))
	assert.Equal(t, F64{2, 4, 6, 8}, a.Scale(2))
	assert.Equal(t, F64{-1, -2, -3, -4}, a.Neg())
	assert.Equal(t, F64{1, 2, 2, 1}, a.Min(b))
	assert.Equal(t, F64{4, 3, 3, 4}, a.Max(b))
}

func TestDivGuard(t *testing.T) {
	t.Parallel()

	t.Run("substitutes fallback for tiny denominators", func(t *testing.T) {
		t.Parallel()
		num := F64{1, 1, 1, 1}
		den := F64{2, 0, 1e-15, -4}
		out := num.DivGuard(den, 1e-12, 99)
		assert.Equal(t, 0.5, out[0])
		assert.Equal(t, 99.0, out[1])
		assert.Equal(t, 99.0, out[2])
		assert.Equal(t, -0.25, out[3])
	})

	t.Run("never returns non-finite values", func(t *testing.T) {
		t.Parallel()
		num := F64{math.Inf(1), math.NaN(), 1, 1}
		den := F64{1, 1, 1, 1}
		out := num.DivGuard(den, 1e-12, -1)
		assert.True(t, out.IsFinite().All())
		assert.Equal(t, -1.0, out[0])
		assert.Equal(t, -1.0, out[1])
	})
}

func TestSqrtGuard(t *testing.T) {
	t.Parallel()

	a := F64{4, -1, 0, math.NaN()}
	out := a.SqrtGuard(7)
	assert.Equal(t, F64{2, 7, 0, 7}, out)
	assert.True(t, out.IsFinite().All())
}

func TestComparisonsAndBlend(t *testing.T) {
	t.Parallel()

	a := F64{1, 2, 3, 4}
	b := F64{2, 2, 2, 2}

	assert.Equal(t, Mask{true, false, false, false}, a.Less(b))
	assert.Equal(t, Mask{true, true, false, false}, a.LessEq(b))
	assert.Equal(t, Mask{false, false, true, true}, a.Greater(b))
	assert.Equal(t, Mask{false, true, true, true}, a.GreaterEq(b))

	out := Blend(a.Less(b), Splat(-1), Splat(1))
	assert.Equal(t, F64{-1, 1, 1, 1}, out)
}

// Masked-off elements may legally hold garbage. The elementwise contract
// means live results cannot depend on them, and blending with the live mask
// must fully purge them.
func TestMaskedGarbageDoesNotLeak(t *testing.T) {
	t.Parallel()

	live := FirstN(2)
	a := F64{1, 2, math.NaN(), math.Inf(1)}
	b := F64{3, 4, math.Inf(-1), math.NaN()}

	sum := a.Add(b)
	assert.Equal(t, 4.0, sum[0])
	assert.Equal(t, 6.0, sum[1])

	cleaned := Blend(live, sum, Splat(0))
	assert.True(t, cleaned.IsFinite().All())
	assert.Equal(t, F64{4, 6, 0, 0}, cleaned)
}

func TestMaskLogic(t *testing.T) {
	t.Parallel()

	m := Mask{true, true, false, false}
	o := Mask{true, false, true, false}

	assert.Equal(t, Mask{true, false, false, false}, m.And(o))
	assert.Equal(t, Mask{false, true, false, false}, m.AndNot(o))
	assert.Equal(t, Mask{true, true, true, false}, m.Or(o))
	assert.Equal(t, Mask{false, false, true, true}, m.Not())
	assert.True(t, m.Any())
	assert.False(t, m.All())
	assert.False(t, Mask{}.Any())
	assert.Equal(t, 0, Mask{}.Count())
}
