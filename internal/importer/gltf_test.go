package importer

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Faultbox/piecemodel/internal/engine/model"
	"github.com/Faultbox/piecemodel/internal/vfs"
	"github.com/Faultbox/piecemodel/pkg/scene"
)

// quadBuffer returns a base64 data URI holding four positions followed by
// six uint16 indices (two triangles).
func quadBuffer() string {
	positions := []float32{
		-1, 0, -1,
		1, 0, -1,
		1, 2, 1,
		-1, 2, 1,
	}
	indices := []uint16{0, 1, 2, 0, 2, 3}

	buf := make([]byte, 0, 60)
	for _, f := range positions {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	for _, i := range indices {
		buf = binary.LittleEndian.AppendUint16(buf, i)
	}
	return "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(buf)
}

// writeGLTF writes a document with one quad mesh and the given nodes.
func writeGLTF(t *testing.T, dir, name, nodes, sceneNodes string) {
	t.Helper()
	doc := fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": %s}],
  "nodes": %s,
  "meshes": [{"name": "quad", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1, "material": 0}]}],
  "materials": [{"name": "hull", "pbrMetallicRoughness": {"baseColorTexture": {"index": 0}}}],
  "textures": [{"source": 0}],
  "images": [{"uri": "tank_color.png"}],
  "buffers": [{"byteLength": 60, "uri": %q}],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 48},
    {"buffer": 0, "byteOffset": 48, "byteLength": 12}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 4, "type": "VEC3", "min": [-1, 0, -1], "max": [1, 2, 1]},
    {"bufferView": 1, "componentType": 5123, "count": 6, "type": "SCALAR"}
  ]
}`, sceneNodes, nodes, quadBuffer())

	full := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(doc), 0o644))
}

const tankNodes = `[
  {"name": "root", "children": [1, 2]},
  {"name": "turret", "mesh": 0, "translation": [1, 2, 3]},
  {"name": "hull", "mesh": 0, "scale": [2, 2, 2]}
]`

func newImporter(dir string) *GLTF {
	return NewGLTF(vfs.NewDirFS(dir)).WithLogger(zap.NewNop())
}

func TestImportSingleRoot(t *testing.T) {
	dir := t.TempDir()
	writeGLTF(t, dir, "objects/tank.gltf", tankNodes, "[0]")

	sc, err := newImporter(dir).Import("objects/tank.gltf")
	require.NoError(t, err)

	require.NotNil(t, sc.RootNode)
	assert.Equal(t, "root", sc.RootNode.Name)
	require.Len(t, sc.RootNode.Children, 2)
	assert.Equal(t, "turret", sc.RootNode.Children[0].Name)
	assert.Equal(t, "hull", sc.RootNode.Children[1].Name)
	assert.Same(t, sc.RootNode, sc.RootNode.Children[0].Parent)
	assert.Equal(t, 3, sc.NumNodes())

	require.Len(t, sc.Meshes, 1)
	mesh := sc.Meshes[0]
	assert.Equal(t, "quad", mesh.Name)
	assert.Len(t, mesh.Vertices, 4)
	assert.False(t, mesh.HasNormals())
	assert.Equal(t, 0, mesh.MaterialIndex)
	require.Len(t, mesh.Faces, 2)
	assert.Equal(t, []uint32{0, 2, 3}, mesh.Faces[1].Indices)
	assert.Equal(t, scene.Vector3D{X: 1, Y: 2, Z: 1}, mesh.Vertices[2])
}

func TestImportTransforms(t *testing.T) {
	dir := t.TempDir()
	writeGLTF(t, dir, "tank.gltf", tankNodes, "[0]")

	sc, err := newImporter(dir).Import("tank.gltf")
	require.NoError(t, err)

	turret := sc.RootNode.Children[0].Transformation
	assert.Equal(t, float32(1), turret.A4)
	assert.Equal(t, float32(2), turret.B4)
	assert.Equal(t, float32(3), turret.C4)
	assert.Equal(t, float32(1), turret.A1)

	hull := sc.RootNode.Children[1].Transformation
	assert.Equal(t, float32(2), hull.A1)
	assert.Equal(t, float32(2), hull.B2)
	assert.Equal(t, float32(2), hull.C3)

	assert.Equal(t, scene.IdentityMatrix(), sc.RootNode.Transformation)
}

func TestImportMatrixNode(t *testing.T) {
	dir := t.TempDir()
	nodes := `[{"name": "root", "mesh": 0, "matrix": [1,0,0,0, 0,1,0,0, 0,0,1,0, 5,6,7,1]}]`
	writeGLTF(t, dir, "m.gltf", nodes, "[0]")

	sc, err := newImporter(dir).Import("m.gltf")
	require.NoError(t, err)

	m := sc.RootNode.Transformation
	assert.Equal(t, float32(5), m.A4)
	assert.Equal(t, float32(6), m.B4)
	assert.Equal(t, float32(7), m.C4)
	assert.Equal(t, []int{0}, sc.RootNode.Meshes)
}

func TestImportSynthesizesRoot(t *testing.T) {
	dir := t.TempDir()
	nodes := `[{"name": "base", "mesh": 0}, {"name": "arm", "mesh": 0}]`
	writeGLTF(t, dir, "two.gltf", nodes, "[0, 1]")

	sc, err := newImporter(dir).Import("two.gltf")
	require.NoError(t, err)

	assert.Equal(t, SyntheticRootName, sc.RootNode.Name)
	require.Len(t, sc.RootNode.Children, 2)
	assert.Equal(t, "base", sc.RootNode.Children[0].Name)
	assert.Equal(t, "arm", sc.RootNode.Children[1].Name)
}

func TestImportMaterials(t *testing.T) {
	dir := t.TempDir()
	writeGLTF(t, dir, "tank.gltf", tankNodes, "[0]")

	sc, err := newImporter(dir).Import("tank.gltf")
	require.NoError(t, err)

	require.Len(t, sc.Materials, 1)
	assert.Equal(t, "hull", sc.Materials[0].Name)
	assert.Equal(t, "tank_color.png", sc.Materials[0].Texture(scene.TextureDiffuse, 0))
	assert.Empty(t, sc.Materials[0].Texture(scene.TextureSpecular, 0))
}

func TestImportErrors(t *testing.T) {
	dir := t.TempDir()
	imp := newImporter(dir)

	_, err := imp.Import("missing.gltf")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.gltf"), []byte("{not json"), 0o644))
	_, err = imp.Import("bad.gltf")
	assert.Error(t, err)

	_, err = ConvertDocument(&gltf.Document{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrNoScenes)
}

func TestBuildFaces(t *testing.T) {
	idx := []uint32{0, 1, 2, 3, 4}

	tests := []struct {
		name string
		mode gltf.PrimitiveMode
		want [][]uint32
	}{
		{"triangles", gltf.PrimitiveTriangles, [][]uint32{{0, 1, 2}}},
		{"strip", gltf.PrimitiveTriangleStrip, [][]uint32{{0, 1, 2}, {2, 1, 3}, {2, 3, 4}}},
		{"fan", gltf.PrimitiveTriangleFan, [][]uint32{{0, 1, 2}, {0, 2, 3}, {0, 3, 4}}},
		{"lines", gltf.PrimitiveLines, [][]uint32{{0, 1}, {2, 3}}},
		{"line loop", gltf.PrimitiveLineLoop, [][]uint32{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 0}}},
		{"points", gltf.PrimitivePoints, [][]uint32{{0}, {1}, {2}, {3}, {4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			faces := buildFaces(tt.mode, idx)
			got := make([][]uint32, len(faces))
			for i, f := range faces {
				got[i] = f.Indices
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTangentFrame(t *testing.T) {
	normals := []scene.Vector3D{{Z: 1}, {Z: 1}}
	tangents := [][4]float32{{1, 0, 0, 1}, {1, 0, 0, -1}}

	tan, bitan := tangentFrame(normals, tangents)
	assert.Equal(t, scene.Vector3D{X: 1}, tan[0])
	assert.Equal(t, scene.Vector3D{Y: 1}, bitan[0])
	assert.Equal(t, scene.Vector3D{Y: -1}, bitan[1])
}

func TestImportIntoPieces(t *testing.T) {
	dir := t.TempDir()
	writeGLTF(t, dir, "objects/tank.gltf", tankNodes, "[0]")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "objects", "tank.yaml"),
		[]byte("height: 9\n"), 0o644))

	fs := vfs.NewDirFS(dir)
	opts := model.DefaultOptions()
	opts.Logger = zap.NewNop()
	p := model.NewParser(NewGLTF(fs).WithLogger(zap.NewNop()), fs, opts)

	m, err := p.Load("objects/tank.gltf")
	require.NoError(t, err)

	assert.Equal(t, 3, m.NumPieces)
	require.NotNil(t, m.Root)
	assert.Equal(t, "root", m.Root.Name)
	assert.NotNil(t, m.FindPiece("turret"))
	assert.NotNil(t, m.FindPiece("hull"))
	assert.Equal(t, float32(9), m.Height)
}

func TestImportErrorThroughParser(t *testing.T) {
	fs := vfs.NewDirFS(t.TempDir())
	opts := model.DefaultOptions()
	opts.Logger = zap.NewNop()
	p := model.NewParser(NewGLTF(fs).WithLogger(zap.NewNop()), fs, opts)

	_, err := p.Load("objects/missing.gltf")
	assert.ErrorIs(t, err, model.ErrImport)
	assert.ErrorIs(t, err, ErrNotFound)
}
