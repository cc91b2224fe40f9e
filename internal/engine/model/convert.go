package model

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/piecemodel/pkg/math"
	"github.com/Faultbox/piecemodel/pkg/scene"
)

// poleThreshold keeps the Euler extraction away from gimbal lock.
const poleThreshold = 0.499

// ToVec3 copies an imported vector into the engine vector type.
func ToVec3(v scene.Vector3D) math.Vec3 {
	return math.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// ToMatrix converts a row-major imported matrix to the engine's column-major
// layout. The result is rebuilt from the position and basis columns of the
// transposed matrix.
func ToMatrix(m scene.Matrix4x4) math.Mat4 {
	raw := math.Mat4{
		m.A1, m.A2, m.A3, m.A4,
		m.B1, m.B2, m.B3, m.B4,
		m.C1, m.C2, m.C3, m.C4,
		m.D1, m.D2, m.D3, m.D4,
	}
	t := raw.Transpose()
	return math.FromBasis(t.Pos(), t.XAxis(), t.YAxis(), t.ZAxis())
}

// ToEulerRadians extracts (heading, attitude, bank) from q. At either pole
// the bank is left at zero and the heading absorbs the rotation.
func ToEulerRadians(q scene.Quaternion) math.Vec3 {
	sqw := q.W * q.W
	sqx := q.X * q.X
	sqy := q.Y * q.Y
	sqz := q.Z * q.Z
	unit := sqx + sqy + sqz + sqw
	test := q.X*q.Y + q.Z*q.W

	var r math.Vec3
	switch {
	case test > poleThreshold*unit:
		r.X = 2 * math32.Atan2(q.X, q.W)
		r.Y = math32.Pi / 2
	case test < -poleThreshold*unit:
		r.X = -2 * math32.Atan2(q.X, q.W)
		r.Y = -math32.Pi / 2
	default:
		r.X = math32.Atan2(2*q.Y*q.W-2*q.X*q.Z, sqx-sqy-sqz+sqw)
		r.Y = math32.Asin(2 * test / unit)
		r.Z = math32.Atan2(2*q.X*q.W-2*q.Y*q.Z, -sqx+sqy-sqz+sqw)
	}
	return r
}
