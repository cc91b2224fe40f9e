package scene

import (
	"math"
	"testing"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestIdentityDecompose(t *testing.T) {
	s, r, tr := IdentityMatrix().Decompose()
	if s != (Vector3D{1, 1, 1}) {
		t.Errorf("scale = %v, want ones", s)
	}
	if !approx(r.W, 1) || !approx(r.X, 0) || !approx(r.Y, 0) || !approx(r.Z, 0) {
		t.Errorf("rotation = %v, want identity", r)
	}
	if tr != (Vector3D{}) {
		t.Errorf("translation = %v, want zero", tr)
	}
}

func TestComposeDecomposeRoundTrip(t *testing.T) {
	half := float32(math.Sqrt2 / 2)
	tests := []struct {
		name  string
		scale Vector3D
		rot   Quaternion
		trans Vector3D
	}{
		{"translation only", Vector3D{1, 1, 1}, Quaternion{W: 1}, Vector3D{1, 2, 3}},
		{"uniform scale", Vector3D{2, 2, 2}, Quaternion{W: 1}, Vector3D{0, 5, 0}},
		{"rotate z 90", Vector3D{1, 1, 1}, Quaternion{W: half, Z: half}, Vector3D{}},
		{"rotate x 90 scaled", Vector3D{3, 1, 2}, Quaternion{W: half, X: half}, Vector3D{-4, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ComposeMatrix(tt.scale, tt.rot, tt.trans)
			s, r, tr := m.Decompose()

			for i, pair := range [][2]float32{
				{s.X, tt.scale.X}, {s.Y, tt.scale.Y}, {s.Z, tt.scale.Z},
				{tr.X, tt.trans.X}, {tr.Y, tt.trans.Y}, {tr.Z, tt.trans.Z},
			} {
				if !approx(pair[0], pair[1]) {
					t.Errorf("component %d = %v, want %v", i, pair[0], pair[1])
				}
			}

			// q and -q are the same rotation
			sign := float32(1)
			if r.W*tt.rot.W < 0 {
				sign = -1
			}
			if !approx(sign*r.W, tt.rot.W) || !approx(sign*r.X, tt.rot.X) ||
				!approx(sign*r.Y, tt.rot.Y) || !approx(sign*r.Z, tt.rot.Z) {
				t.Errorf("rotation = %v, want %v", r, tt.rot)
			}
		})
	}
}

func TestMatrixRowMajorLayout(t *testing.T) {
	m := ComposeMatrix(Vector3D{1, 1, 1}, Quaternion{W: 1}, Vector3D{7, 8, 9})
	if m.A4 != 7 || m.B4 != 8 || m.C4 != 9 || m.D4 != 1 {
		t.Errorf("translation column = (%v, %v, %v, %v)", m.A4, m.B4, m.C4, m.D4)
	}

	cm := m.ColumnMajor()
	if cm[12] != 7 || cm[13] != 8 || cm[14] != 9 {
		t.Errorf("column-major translation = %v", cm[12:15])
	}
	if MatrixFromColumnMajor(cm) != m {
		t.Error("column-major round trip changed the matrix")
	}
}

func TestQuaternionMatrix(t *testing.T) {
	half := float32(math.Sqrt2 / 2)
	m := Quaternion{W: half, Z: half}.Matrix()

	// 90 degrees about Z maps X onto Y: first column is (0, 1, 0)
	if !approx(m.A1, 0) || !approx(m.B1, 1) || !approx(m.C1, 0) {
		t.Errorf("first column = (%v, %v, %v)", m.A1, m.B1, m.C1)
	}
}

func TestNegativeDeterminantFlipsScale(t *testing.T) {
	m := IdentityMatrix()
	m.A1 = -1
	s, _, _ := m.Decompose()
	if s.X > 0 || s.Y > 0 || s.Z > 0 {
		t.Errorf("scale = %v, want all components negative", s)
	}
}

func TestMeshAttributes(t *testing.T) {
	m := &Mesh{Vertices: make([]Vector3D, 3)}
	if m.HasNormals() || m.HasTangentsAndBitangents() || m.HasTextureCoords(0) {
		t.Error("empty mesh reports attributes")
	}

	m.Normals = make([]Vector3D, 3)
	m.Tangents = make([]Vector3D, 3)
	m.Bitangents = make([]Vector3D, 3)
	m.TextureCoords[1] = make([]Vector3D, 3)

	if !m.HasNormals() || !m.HasTangentsAndBitangents() {
		t.Error("attributes not detected")
	}
	if m.HasTextureCoords(0) || !m.HasTextureCoords(1) || m.HasTextureCoords(2) {
		t.Error("texture coordinate channels misreported")
	}
}

func TestMaterialTextures(t *testing.T) {
	var nilMat *Material
	if nilMat.Texture(TextureDiffuse, 0) != "" {
		t.Error("nil material returned a texture")
	}

	mat := &Material{Name: "hull"}
	mat.SetTexture(TextureDiffuse, "hull.png")
	if got := mat.Texture(TextureDiffuse, 0); got != "hull.png" {
		t.Errorf("diffuse = %q", got)
	}
	if got := mat.Texture(TextureDiffuse, 1); got != "" {
		t.Errorf("diffuse[1] = %q, want empty", got)
	}
	if got := mat.Texture(TextureSpecular, 0); got != "" {
		t.Errorf("specular = %q, want empty", got)
	}
}

func TestNodeTree(t *testing.T) {
	root := NewNode("root")
	a := NewNode("a")
	root.AddChild(a)
	a.AddChild(NewNode("b"))
	root.AddChild(NewNode("c"))

	if a.Parent != root {
		t.Error("parent link not set")
	}
	sc := &Scene{RootNode: root}
	if got := sc.NumNodes(); got != 4 {
		t.Errorf("NumNodes = %d, want 4", got)
	}
	if (&Scene{}).NumNodes() != 0 {
		t.Error("empty scene has nodes")
	}
}
