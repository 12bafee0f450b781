// Package lane provides fixed-width batches of float64 values with
// per-element masks. The candidate finder evaluates geometry and quality
// metrics on batches of track pairs at once; every operation here is strictly
// elementwise, so a masked-off element can never influence a live one.
package lane

import "math"

// Width is the number of elements processed per batch. Callers that cannot
// fill a batch leave trailing elements unused and track liveness with a Mask.
const Width = 4

// F64 is one batch of float64 values.
type F64 [Width]float64

// Mask marks which elements of a batch are live.
type Mask [Width]bool

// Splat returns a batch with every element set to v.
func Splat(v float64) F64 {
	var out F64
	for i := range out {
		out[i] = v
	}
	return out
}

// FirstN returns a mask with the first n elements live.
func FirstN(n int) Mask {
	var m Mask
	if n > Width {
		n = Width
	}
	for i := 0; i < n; i++ {
		m[i] = true
	}
	return m
}

// Add returns a + b elementwise.
func (a F64) Add(b F64) F64 {
	var out F64
	for i := range out {
		out[i] = a[i] + b[i]
	}
	return out
}

// Sub returns a - b elementwise.
func (a F64) Sub(b F64) F64 {
	var out F64
	for i := range out {
		out[i] = a[i] - b[i]
	}
	return out
}

// Mul returns a * b elementwise.
func (a F64) Mul(b F64) F64 {
	var out F64
	for i := range out {
		out[i] = a[i] * b[i]
	}
	return out
}

// Scale returns a * s elementwise.
func (a F64) Scale(s float64) F64 {
	var out F64
	for i := range out {
		out[i] = a[i] * s
	}
	return out
}

// Neg returns -a elementwise.
func (a F64) Neg() F64 {
	var out F64
	for i := range out {
		out[i] = -a[i]
	}
	return out
}

// Abs returns |a| elementwise.
func (a F64) Abs() F64 {
	var out F64
	for i := range out {
		out[i] = math.Abs(a[i])
	}
	return out
}

// Min returns the elementwise minimum of a and b.
func (a F64) Min(b F64) F64 {
	var out F64
	for i := range out {
		out[i] = math.Min(a[i], b[i])
	}
	return out
}

// Max returns the elementwise maximum of a and b.
func (a F64) Max(b F64) F64 {
	var out F64
	for i := range out {
		out[i] = math.Max(a[i], b[i])
	}
	return out
}

// Div returns a / b elementwise with no guard. Use DivGuard when the
// denominator may vanish.
func (a F64) Div(b F64) F64 {
	var out F64
	for i := range out {
		out[i] = a[i] / b[i]
	}
	return out
}

// DivGuard returns a / b elementwise, substituting fallback wherever
// |b| < eps or the quotient would not be finite.
func (a F64) DivGuard(b F64, eps, fallback float64) F64 {
	var out F64
	for i := range out {
		if math.Abs(b[i]) < eps {
			out[i] = fallback
			continue
		}
		q := a[i] / b[i]
		if math.IsNaN(q) || math.IsInf(q, 0) {
			q = fallback
		}
		out[i] = q
	}
	return out
}

// SqrtGuard returns sqrt(a) elementwise, substituting fallback for negative
// or non-finite inputs.
func (a F64) SqrtGuard(fallback float64) F64 {
	var out F64
	for i := range out {
		if a[i] < 0 || math.IsNaN(a[i]) || math.IsInf(a[i], 0) {
			out[i] = fallback
			continue
		}
		out[i] = math.Sqrt(a[i])
	}
	return out
}

// IsFinite reports which elements are neither NaN nor infinite.
func (a F64) IsFinite() Mask {
	var m Mask
	for i := range m {
		m[i] = !math.IsNaN(a[i]) && !math.IsInf(a[i], 0)
	}
	return m
}

// Less reports a < b elementwise.
func (a F64) Less(b F64) Mask {
	var m Mask
	for i := range m {
		m[i] = a[i] < b[i]
	}
	return m
}

// LessEq reports a <= b elementwise.
func (a F64) LessEq(b F64) Mask {
	var m Mask
	for i := range m {
		m[i] = a[i] <= b[i]
	}
	return m
}

// Greater reports a > b elementwise.
func (a F64) Greater(b F64) Mask {
	var m Mask
	for i := range m {
		m[i] = a[i] > b[i]
	}
	return m
}

// GreaterEq reports a >= b elementwise.
func (a F64) GreaterEq(b F64) Mask {
	var m Mask
	for i := range m {
		m[i] = a[i] >= b[i]
	}
	return m
}

// Blend returns a batch that takes its element from a where m is live and
// from b elsewhere.
func Blend(m Mask, a, b F64) F64 {
	var out F64
	for i := range out {
		if m[i] {
			out[i] = a[i]
		} else {
			out[i] = b[i]
		}
	}
	return out
}

// And returns the elementwise conjunction of two masks.
func (m Mask) And(o Mask) Mask {
	var out Mask
	for i := range out {
		out[i] = m[i] && o[i]
	}
	return out
}

// AndNot returns m && !o elementwise.
func (m Mask) AndNot(o Mask) Mask {
	var out Mask
	for i := range out {
		out[i] = m[i] && !o[i]
	}
	return out
}

// Or returns the elementwise disjunction of two masks.
func (m Mask) Or(o Mask) Mask {
	var out Mask
	for i := range out {
		out[i] = m[i] || o[i]
	}
	return out
}

// Not returns the elementwise negation of the mask.
func (m Mask) Not() Mask {
	var out Mask
	for i := range out {
		out[i] = !m[i]
	}
	return out
}

// Any reports whether at least one element is live.
func (m Mask) Any() bool {
	for i := range m {
		if m[i] {
			return true
		}
	}
	return false
}

// All reports whether every element is live.
func (m Mask) All() bool {
	for i := range m {
		if !m[i] {
			return false
		}
	}
	return true
}

// Count returns the number of live elements.
func (m Mask) Count() int {
	n := 0
	for i := range m {
		if m[i] {
			n++
		}
	}
	return n
}
