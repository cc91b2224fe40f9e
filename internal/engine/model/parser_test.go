package model

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Faultbox/piecemodel/pkg/math"
	"github.com/Faultbox/piecemodel/pkg/scene"
)

type stubImporter struct {
	scenes map[string]*scene.Scene
	err    error
}

func (s stubImporter) Import(path string) (*scene.Scene, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.scenes[path], nil
}

func tankScene() *scene.Scene {
	root := tree(node("Scene", 0, 0, 0, 0),
		tree(node("turret", 0, 2, 0, 1), node("barrel", 0, 0, 3, 1)),
		node(SpringHeightNode, 0, 0, 9),
	)
	return &scene.Scene{
		RootNode: root,
		Meshes: []*scene.Mesh{
			boxMesh(vec(-2, 0, -3), vec(2, 1, 3)),
			boxMesh(vec(-0.5, 0, -0.5), vec(0.5, 0.5, 0.5)),
		},
		Materials: []*scene.Material{material(map[scene.TextureType]string{scene.TextureDiffuse: "tank.png"})},
	}
}

func TestParserLoad(t *testing.T) {
	fs := dataDir(t, "objects/tank.glb", "unittextures/tank.png")
	require.NoError(t, writeFile(fs, "objects/tank.yaml", `
radius: 10
pieces:
  barrel:
    parent: root
    scale: [2, 2, 2]
`))

	imp := stubImporter{scenes: map[string]*scene.Scene{"objects/tank.glb": tankScene()}}
	p := NewParser(imp, fs, Options{Logger: zap.NewNop()})

	m, err := p.Load("objects/tank.glb")
	require.NoError(t, err)

	assert.Equal(t, "objects/tank.glb", m.Name)
	assert.Equal(t, 3, m.NumPieces)
	assert.Equal(t, float32(10), m.Radius)
	assert.Equal(t, float32(9), m.Height)
	assert.Equal(t, "unittextures/tank.png", m.Tex1)

	barrel := m.Pieces["barrel"]
	require.NotNil(t, barrel)
	assert.Same(t, m.Root, barrel.Parent)
	assert.True(t, barrel.ScaleRotMatrix.ApproxEqual(math.Scale(2, 2, 2), 1e-6))
	assert.Equal(t, math.Vec3{Z: 6}, barrel.GOffset)
}

func TestParserLoadWithoutMetadata(t *testing.T) {
	imp := stubImporter{scenes: map[string]*scene.Scene{"objects/tank.glb": tankScene()}}
	m, err := NewParser(imp, nil, Options{Logger: zap.NewNop()}).Load("objects/tank.glb")
	require.NoError(t, err)

	assert.Same(t, m.Pieces["turret"], m.Pieces["barrel"].Parent)
	assert.Equal(t, "tank.png", m.Tex1)
	assert.Equal(t, float32(9), m.Height)
}

func TestParserErrors(t *testing.T) {
	errBadMagic := errors.New("bad magic")
	p := NewParser(stubImporter{err: errBadMagic}, nil, Options{Logger: zap.NewNop()})
	_, err := p.Load("objects/broken.glb")
	assert.ErrorIs(t, err, ErrImport)
	assert.ErrorIs(t, err, errBadMagic)
	assert.Contains(t, err.Error(), "bad magic")

	p = NewParser(stubImporter{}, nil, Options{Logger: zap.NewNop()})
	_, err = p.Load("objects/empty.glb")
	assert.ErrorIs(t, err, ErrNoScene)

	_, err = p.LoadScene("objects/rootless.glb", &scene.Scene{}, metaNone())
	assert.ErrorIs(t, err, ErrNoScene)
}

func TestParserConcurrentLoads(t *testing.T) {
	imp := stubImporter{scenes: map[string]*scene.Scene{"objects/tank.glb": tankScene()}}
	p := NewParser(imp, nil, Options{Logger: zap.NewNop()})

	var wg sync.WaitGroup
	models := make([]*Model, 8)
	for i := range models {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := p.Load("objects/tank.glb")
			assert.NoError(t, err)
			models[i] = m
		}(i)
	}
	wg.Wait()

	for _, m := range models[1:] {
		require.NotNil(t, m)
		assert.NotSame(t, models[0].Root, m.Root)
		assert.Equal(t, models[0].Maxs, m.Maxs)
	}
}

func TestModelWalk(t *testing.T) {
	m, err := NewParser(stubImporter{scenes: map[string]*scene.Scene{"t": tankScene()}}, nil,
		Options{Logger: zap.NewNop()}).Load("t")
	require.NoError(t, err)

	var names []string
	var depths []int
	m.Walk(func(p *Piece, depth int) bool {
		names = append(names, p.Name)
		depths = append(depths, depth)
		return true
	})
	assert.Equal(t, []string{"root", "turret", "barrel"}, names)
	assert.Equal(t, []int{0, 1, 2}, depths)

	names = names[:0]
	m.Walk(func(p *Piece, depth int) bool {
		names = append(names, p.Name)
		return depth < 1
	})
	assert.Equal(t, []string{"root", "turret"}, names)
}
