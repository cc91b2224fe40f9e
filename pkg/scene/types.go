package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Vector3D is an imported 3D vector (positions, normals, UVW).
type Vector3D struct {
	X, Y, Z float32
}

// IsNaN reports whether any component is NaN.
func (v Vector3D) IsNaN() bool {
	return v.X != v.X || v.Y != v.Y || v.Z != v.Z
}

// Quaternion is an imported rotation with the scalar part first.
type Quaternion struct {
	W, X, Y, Z float32
}

// Matrix returns the rotation matrix of q in row-major form.
func (q Quaternion) Matrix() Matrix4x4 {
	m := mgl32.Quat{W: q.W, V: mgl32.Vec3{q.X, q.Y, q.Z}}.Mat4()
	return matrixFromMgl(m)
}

// Matrix4x4 is an imported row-major matrix: A1..A4 is the first row and the
// translation lives in the fourth column (A4, B4, C4).
type Matrix4x4 struct {
	A1, A2, A3, A4 float32
	B1, B2, B3, B4 float32
	C1, C2, C3, C4 float32
	D1, D2, D3, D4 float32
}

// IdentityMatrix returns the identity transformation.
func IdentityMatrix() Matrix4x4 {
	return Matrix4x4{
		A1: 1, B2: 1, C3: 1, D4: 1,
	}
}

// Decompose splits m into scale, rotation and translation. A negative
// determinant flips the sign of all scale components.
func (m Matrix4x4) Decompose() (scale Vector3D, rotation Quaternion, translation Vector3D) {
	translation = Vector3D{m.A4, m.B4, m.C4}

	cm := m.mgl()
	sx, sy, sz := mgl32.Extract3DScale(cm)
	if cm.Mat3().Det() < 0 {
		sx, sy, sz = -sx, -sy, -sz
	}
	scale = Vector3D{sx, sy, sz}

	rot := mgl32.Ident4()
	for i, s := range [3]float32{sx, sy, sz} {
		if s == 0 {
			continue
		}
		col := cm.Col(i).Mul(1 / s)
		col[3] = 0
		rot.SetCol(i, col)
	}

	q := mgl32.Mat4ToQuat(rot).Normalize()
	rotation = Quaternion{W: q.W, X: q.V[0], Y: q.V[1], Z: q.V[2]}
	return scale, rotation, translation
}

// Mul returns m * other.
func (m Matrix4x4) Mul(other Matrix4x4) Matrix4x4 {
	return matrixFromMgl(m.mgl().Mul4(other.mgl()))
}

// ColumnMajor returns the elements in column-major order.
func (m Matrix4x4) ColumnMajor() [16]float32 {
	return [16]float32(m.mgl())
}

// MatrixFromColumnMajor builds a matrix from 16 column-major elements.
func MatrixFromColumnMajor(e [16]float32) Matrix4x4 {
	return matrixFromMgl(mgl32.Mat4(e))
}

// ComposeMatrix builds T * R * S.
func ComposeMatrix(scale Vector3D, rotation Quaternion, translation Vector3D) Matrix4x4 {
	t := mgl32.Translate3D(translation.X, translation.Y, translation.Z)
	r := mgl32.Quat{W: rotation.W, V: mgl32.Vec3{rotation.X, rotation.Y, rotation.Z}}.Mat4()
	s := mgl32.Scale3D(scale.X, scale.Y, scale.Z)
	return matrixFromMgl(t.Mul4(r).Mul4(s))
}

func (m Matrix4x4) mgl() mgl32.Mat4 {
	return mgl32.Mat4FromRows(
		mgl32.Vec4{m.A1, m.A2, m.A3, m.A4},
		mgl32.Vec4{m.B1, m.B2, m.B3, m.B4},
		mgl32.Vec4{m.C1, m.C2, m.C3, m.C4},
		mgl32.Vec4{m.D1, m.D2, m.D3, m.D4},
	)
}

func matrixFromMgl(c mgl32.Mat4) Matrix4x4 {
	return Matrix4x4{
		A1: c.At(0, 0), A2: c.At(0, 1), A3: c.At(0, 2), A4: c.At(0, 3),
		B1: c.At(1, 0), B2: c.At(1, 1), B3: c.At(1, 2), B4: c.At(1, 3),
		C1: c.At(2, 0), C2: c.At(2, 1), C3: c.At(2, 2), C4: c.At(2, 3),
		D1: c.At(3, 0), D2: c.At(3, 1), D3: c.At(3, 2), D4: c.At(3, 3),
	}
}
