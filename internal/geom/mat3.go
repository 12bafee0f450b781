package geom

import "github.com/viktorklochkov/PFSimple/internal/lane"

// sym3 is a symmetric 3x3 matrix of lane batches, packed lower-triangular.
type sym3 struct {
	xx, xy, yy, xz, yz, zz lane.F64
}

func (c sym3) add(o sym3) sym3 {
	return sym3{
		xx: c.xx.Add(o.xx), xy: c.xy.Add(o.xy), yy: c.yy.Add(o.yy),
		xz: c.xz.Add(o.xz), yz: c.yz.Add(o.yz), zz: c.zz.Add(o.zz),
	}
}

func (c sym3) toMat() mat3 {
	return mat3{
		c.xx, c.xy, c.xz,
		c.xy, c.yy, c.yz,
		c.xz, c.yz, c.zz,
	}
}

// mat3 is a full 3x3 matrix of lane batches, row-major.
type mat3 [9]lane.F64

func (m mat3) add(o mat3) mat3 {
	var out mat3
	for i := range out {
		out[i] = m[i].Add(o[i])
	}
	return out
}

// plusTransposed returns M + M^T, which is symmetric by construction.
func (m mat3) plusTransposed() sym3 {
	return sym3{
		xx: m[0].Add(m[0]),
		xy: m[1].Add(m[3]),
		yy: m[4].Add(m[4]),
		xz: m[2].Add(m[6]),
		yz: m[5].Add(m[7]),
		zz: m[8].Add(m[8]),
	}
}

// zmat is a 3x3 matrix with the z axis decoupled:
//
//	[ a  b  0 ]
//	[ d  e  0 ]
//	[ 0  0  g ]
//
// Both the transport rotation R and the position-from-momentum block F have
// this shape, which keeps the covariance products short.
type zmat struct {
	a, b, d, e, g lane.F64
}

// mulMat returns A*M.
func (z zmat) mulMat(m mat3) mat3 {
	return mat3{
		z.a.Mul(m[0]).Add(z.b.Mul(m[3])), z.a.Mul(m[1]).Add(z.b.Mul(m[4])), z.a.Mul(m[2]).Add(z.b.Mul(m[5])),
		z.d.Mul(m[0]).Add(z.e.Mul(m[3])), z.d.Mul(m[1]).Add(z.e.Mul(m[4])), z.d.Mul(m[2]).Add(z.e.Mul(m[5])),
		z.g.Mul(m[6]), z.g.Mul(m[7]), z.g.Mul(m[8]),
	}
}

// sandwich returns A*C*A^T for symmetric C.
func (z zmat) sandwich(c sym3) sym3 {
	// Top-left 2x2 is a plane congruence, z row scales through.
	aa := z.a.Mul(z.a)
	ab := z.a.Mul(z.b)
	bb := z.b.Mul(z.b)
	dd := z.d.Mul(z.d)
	de := z.d.Mul(z.e)
	ee := z.e.Mul(z.e)

	return sym3{
		xx: aa.Mul(c.xx).Add(ab.Scale(2).Mul(c.xy)).Add(bb.Mul(c.yy)),
		xy: z.a.Mul(z.d).Mul(c.xx).
			Add(z.b.Mul(z.d).Add(z.a.Mul(z.e)).Mul(c.xy)).
			Add(z.b.Mul(z.e).Mul(c.yy)),
		yy: dd.Mul(c.xx).Add(de.Scale(2).Mul(c.xy)).Add(ee.Mul(c.yy)),
		xz: z.g.Mul(z.a.Mul(c.xz).Add(z.b.Mul(c.yz))),
		yz: z.g.Mul(z.d.Mul(c.xz).Add(z.e.Mul(c.yz))),
		zz: z.g.Mul(z.g).Mul(c.zz),
	}
}

// mulTransposed returns M*A^T.
func (m mat3) mulTransposed(z zmat) mat3 {
	return mat3{
		m[0].Mul(z.a).Add(m[1].Mul(z.b)), m[0].Mul(z.d).Add(m[1].Mul(z.e)), m[2].Mul(z.g),
		m[3].Mul(z.a).Add(m[4].Mul(z.b)), m[3].Mul(z.d).Add(m[4].Mul(z.e)), m[5].Mul(z.g),
		m[6].Mul(z.a).Add(m[7].Mul(z.b)), m[6].Mul(z.d).Add(m[7].Mul(z.e)), m[8].Mul(z.g),
	}
}
