package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Faultbox/piecemodel/internal/meta"
	"github.com/Faultbox/piecemodel/internal/vfs"
	"github.com/Faultbox/piecemodel/pkg/scene"
)

func vec(x, y, z float32) scene.Vector3D {
	return scene.Vector3D{X: x, Y: y, Z: z}
}

// node creates a scene node translated to (x, y, z).
func node(name string, x, y, z float32, meshes ...int) *scene.Node {
	n := scene.NewNode(name)
	n.Transformation = scene.ComposeMatrix(vec(1, 1, 1), scene.Quaternion{W: 1}, vec(x, y, z))
	n.Meshes = meshes
	return n
}

// tree links children under parent and returns parent.
func tree(parent *scene.Node, children ...*scene.Node) *scene.Node {
	for _, c := range children {
		parent.AddChild(c)
	}
	return parent
}

// boxMesh is an axis-aligned box given by two corners, as 12 triangles.
func boxMesh(lo, hi scene.Vector3D) *scene.Mesh {
	m := &scene.Mesh{}
	for i := 0; i < 8; i++ {
		v := lo
		if i&1 != 0 {
			v.X = hi.X
		}
		if i&2 != 0 {
			v.Y = hi.Y
		}
		if i&4 != 0 {
			v.Z = hi.Z
		}
		m.Vertices = append(m.Vertices, v)
		m.Normals = append(m.Normals, vec(0, 1, 0))
	}
	quads := [][4]uint32{
		{0, 1, 3, 2}, {4, 6, 7, 5}, {0, 4, 5, 1},
		{2, 3, 7, 6}, {0, 2, 6, 4}, {1, 5, 7, 3},
	}
	for _, q := range quads {
		m.Faces = append(m.Faces,
			scene.Face{Indices: []uint32{q[0], q[1], q[2]}},
			scene.Face{Indices: []uint32{q[0], q[2], q[3]}})
	}
	return m
}

func testParser() *Parser {
	return NewParser(nil, nil, Options{Logger: zap.NewNop()})
}

func loadScene(t *testing.T, sc *scene.Scene, tbl meta.Table) *Model {
	t.Helper()
	m, err := testParser().LoadScene("objects/test.glb", sc, tbl)
	require.NoError(t, err)
	return m
}

// reachableFromRoot reports whether p's parent chain ends at the model root.
func reachableFromRoot(m *Model, p *Piece) bool {
	for cur := p; cur != nil; cur = cur.Parent {
		if cur == m.Root {
			return true
		}
	}
	return false
}

func metaNone() meta.Table {
	return meta.Table{}
}

// writeFile adds a file below the root of fs.
func writeFile(fs *vfs.DirFS, name, content string) error {
	p := filepath.Join(fs.Root(), filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}
	return os.WriteFile(p, []byte(content), 0644)
}
