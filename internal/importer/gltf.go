// Package importer reads model files into scene graphs.
package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/piecemodel/internal/logger"
	"github.com/Faultbox/piecemodel/internal/vfs"
	"github.com/Faultbox/piecemodel/pkg/scene"
)

// SyntheticRootName names the node created when a scene has several roots.
const SyntheticRootName = "ROOT"

// Import errors.
var (
	ErrNoScenes = errors.New("document has no scene")
	ErrNotFound = errors.New("model file not found")
)

// GLTF imports glTF 2.0 (.gltf, .glb) files.
type GLTF struct {
	resolver vfs.Resolver
	log      *zap.Logger
}

// NewGLTF creates an importer. Names passed to Import are resolved through
// resolver; a nil resolver treats them as host paths.
func NewGLTF(resolver vfs.Resolver) *GLTF {
	return &GLTF{resolver: resolver}
}

// WithLogger sets the logger used for import diagnostics.
func (g *GLTF) WithLogger(log *zap.Logger) *GLTF {
	g.log = log
	return g
}

func (g *GLTF) logger() *zap.Logger {
	if g.log != nil {
		return g.log
	}
	return logger.Section(logger.SectionImport)
}

// Import reads and converts the file.
func (g *GLTF) Import(name string) (*scene.Scene, error) {
	path := name
	if g.resolver != nil {
		real, ok := g.resolver.RealPath(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		path = real
	}

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}

	sc, err := ConvertDocument(doc, g.logger())
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", name, err)
	}

	g.logger().Debug("imported scene",
		zap.String("file", name),
		zap.Int("nodes", sc.NumNodes()),
		zap.Int("meshes", len(sc.Meshes)),
		zap.Int("materials", len(sc.Materials)))
	return sc, nil
}

// ConvertDocument converts the default scene of doc. Each primitive becomes
// one scene mesh.
func ConvertDocument(doc *gltf.Document, log *zap.Logger) (*scene.Scene, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if len(doc.Scenes) == 0 {
		return nil, ErrNoScenes
	}
	sceneIdx := 0
	if doc.Scene != nil {
		sceneIdx = int(*doc.Scene)
	}
	if sceneIdx < 0 || sceneIdx >= len(doc.Scenes) {
		return nil, fmt.Errorf("%w: index %d", ErrNoScenes, sceneIdx)
	}

	c := &converter{
		doc:        doc,
		log:        log,
		sc:         &scene.Scene{},
		meshPrims:  make(map[int][]int),
		visitedIdx: make(map[int]bool),
	}
	c.convertMaterials()
	if err := c.convertMeshes(); err != nil {
		return nil, err
	}

	roots := doc.Scenes[sceneIdx].Nodes
	switch len(roots) {
	case 1:
		c.sc.RootNode = c.convertNode(int(roots[0]))
	default:
		// several (or no) roots share one synthesized parent
		c.sc.RootNode = scene.NewNode(SyntheticRootName)
		for _, idx := range roots {
			if child := c.convertNode(int(idx)); child != nil {
				c.sc.RootNode.AddChild(child)
			}
		}
	}
	if c.sc.RootNode == nil {
		return nil, fmt.Errorf("%w: invalid root node", ErrNoScenes)
	}

	return c.sc, nil
}

type converter struct {
	doc *gltf.Document
	log *zap.Logger
	sc  *scene.Scene

	// glTF mesh index -> scene mesh indices, one per primitive
	meshPrims  map[int][]int
	visitedIdx map[int]bool
}

func (c *converter) convertMaterials() {
	for _, mat := range c.doc.Materials {
		out := &scene.Material{Name: mat.Name}
		if pbr := mat.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorTexture != nil {
				c.addTexture(out, scene.TextureDiffuse, int(pbr.BaseColorTexture.Index))
			}
			if pbr.MetallicRoughnessTexture != nil {
				c.addTexture(out, scene.TextureSpecular, int(pbr.MetallicRoughnessTexture.Index))
			}
		}
		if mat.EmissiveTexture != nil {
			c.addTexture(out, scene.TextureEmissive, int(mat.EmissiveTexture.Index))
		}
		c.sc.Materials = append(c.sc.Materials, out)
	}
}

// addTexture records the image URI behind texture index ti. Embedded images
// are recorded by name.
func (c *converter) addTexture(mat *scene.Material, slot scene.TextureType, ti int) {
	if ti < 0 || ti >= len(c.doc.Textures) || c.doc.Textures[ti].Source == nil {
		return
	}
	src := int(*c.doc.Textures[ti].Source)
	if src < 0 || src >= len(c.doc.Images) {
		return
	}
	img := c.doc.Images[src]

	ref := img.URI
	if ref == "" || strings.HasPrefix(ref, "data:") {
		ref = img.Name
	}
	if ref != "" {
		mat.SetTexture(slot, ref)
	}
}

func (c *converter) convertMeshes() error {
	for mi, mesh := range c.doc.Meshes {
		for pi, prim := range mesh.Primitives {
			out, err := c.convertPrimitive(prim)
			if err != nil {
				return fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}
			if out == nil {
				continue
			}
			out.Name = mesh.Name
			c.meshPrims[mi] = append(c.meshPrims[mi], len(c.sc.Meshes))
			c.sc.Meshes = append(c.sc.Meshes, out)
		}
	}
	return nil
}

func (c *converter) accessor(idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(c.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	return c.doc.Accessors[idx], nil
}

func (c *converter) convertPrimitive(prim *gltf.Primitive) (*scene.Mesh, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	acc, err := c.accessor(int(posIdx))
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(c.doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}

	out := &scene.Mesh{MaterialIndex: -1}
	if prim.Material != nil {
		out.MaterialIndex = int(*prim.Material)
	}
	out.Vertices = make([]scene.Vector3D, len(positions))
	for i, p := range positions {
		out.Vertices[i] = scene.Vector3D{X: p[0], Y: p[1], Z: p[2]}
	}
	n := len(positions)

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if acc, err := c.accessor(int(idx)); err == nil {
			normals, err := modeler.ReadNormal(c.doc, acc, nil)
			if err != nil {
				return nil, fmt.Errorf("reading normals: %w", err)
			}
			if len(normals) == n {
				out.Normals = make([]scene.Vector3D, n)
				for i, v := range normals {
					out.Normals[i] = scene.Vector3D{X: v[0], Y: v[1], Z: v[2]}
				}
			}
		}
	}

	if idx, ok := prim.Attributes[gltf.TANGENT]; ok && len(out.Normals) == n {
		if acc, err := c.accessor(int(idx)); err == nil {
			tangents, err := modeler.ReadTangent(c.doc, acc, nil)
			if err != nil {
				return nil, fmt.Errorf("reading tangents: %w", err)
			}
			if len(tangents) == n {
				out.Tangents, out.Bitangents = tangentFrame(out.Normals, tangents)
			}
		}
	}

	for ch, attr := range [scene.MaxTextureCoords]string{gltf.TEXCOORD_0, gltf.TEXCOORD_1} {
		idx, ok := prim.Attributes[attr]
		if !ok {
			continue
		}
		acc, err := c.accessor(int(idx))
		if err != nil {
			continue
		}
		uvs, err := modeler.ReadTextureCoord(c.doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", attr, err)
		}
		if len(uvs) != n {
			continue
		}
		out.TextureCoords[ch] = make([]scene.Vector3D, n)
		for i, uv := range uvs {
			out.TextureCoords[ch][i] = scene.Vector3D{X: uv[0], Y: uv[1]}
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		acc, err := c.accessor(int(*prim.Indices))
		if err != nil {
			return nil, err
		}
		indices, err = modeler.ReadIndices(c.doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
	} else {
		indices = make([]uint32, n)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	out.Faces = buildFaces(prim.Mode, indices)

	return out, nil
}

// tangentFrame splits glTF tangents into tangent and bitangent vectors. The
// bitangent is cross(normal, tangent) scaled by the handedness in w.
func tangentFrame(normals []scene.Vector3D, tangents [][4]float32) (t, b []scene.Vector3D) {
	t = make([]scene.Vector3D, len(tangents))
	b = make([]scene.Vector3D, len(tangents))
	for i, tan := range tangents {
		nv := normals[i]
		t[i] = scene.Vector3D{X: tan[0], Y: tan[1], Z: tan[2]}
		b[i] = scene.Vector3D{
			X: (nv.Y*tan[2] - nv.Z*tan[1]) * tan[3],
			Y: (nv.Z*tan[0] - nv.X*tan[2]) * tan[3],
			Z: (nv.X*tan[1] - nv.Y*tan[0]) * tan[3],
		}
	}
	return t, b
}

// buildFaces groups indices by primitive mode. Strips and fans are
// triangulated; line and point modes give 2- and 1-index faces.
func buildFaces(mode gltf.PrimitiveMode, idx []uint32) []scene.Face {
	var faces []scene.Face
	add := func(indices ...uint32) {
		faces = append(faces, scene.Face{Indices: indices})
	}

	switch mode {
	case gltf.PrimitivePoints:
		for _, i := range idx {
			add(i)
		}
	case gltf.PrimitiveLines:
		for i := 0; i+1 < len(idx); i += 2 {
			add(idx[i], idx[i+1])
		}
	case gltf.PrimitiveLineStrip, gltf.PrimitiveLineLoop:
		for i := 0; i+1 < len(idx); i++ {
			add(idx[i], idx[i+1])
		}
		if mode == gltf.PrimitiveLineLoop && len(idx) > 2 {
			add(idx[len(idx)-1], idx[0])
		}
	case gltf.PrimitiveTriangleStrip:
		for i := 0; i+2 < len(idx); i++ {
			if i%2 == 0 {
				add(idx[i], idx[i+1], idx[i+2])
			} else {
				add(idx[i+1], idx[i], idx[i+2])
			}
		}
	case gltf.PrimitiveTriangleFan:
		for i := 1; i+1 < len(idx); i++ {
			add(idx[0], idx[i], idx[i+1])
		}
	default:
		for i := 0; i+2 < len(idx); i += 3 {
			add(idx[i], idx[i+1], idx[i+2])
		}
	}
	return faces
}

func (c *converter) convertNode(idx int) *scene.Node {
	if idx < 0 || idx >= len(c.doc.Nodes) {
		c.log.Warn("node index out of range", zap.Int("node", idx))
		return nil
	}
	if c.visitedIdx[idx] {
		c.log.Warn("node visited twice, skipping", zap.Int("node", idx))
		return nil
	}
	c.visitedIdx[idx] = true

	src := c.doc.Nodes[idx]
	out := scene.NewNode(src.Name)
	out.Transformation = nodeTransform(src)

	if src.Mesh != nil {
		out.Meshes = append(out.Meshes, c.meshPrims[int(*src.Mesh)]...)
	}
	for _, ci := range src.Children {
		if child := c.convertNode(int(ci)); child != nil {
			out.AddChild(child)
		}
	}
	return out
}

// nodeTransform returns the node's local matrix. An explicit matrix wins over
// translation, rotation and scale.
func nodeTransform(n *gltf.Node) scene.Matrix4x4 {
	m := toFloat32(n.Matrix[:])
	if !isZero(m) && !isIdentity(m) {
		var cm [16]float32
		copy(cm[:], m)
		return scene.MatrixFromColumnMajor(cm)
	}

	t := toFloat32(n.Translation[:])
	r := toFloat32(n.Rotation[:])
	s := toFloat32(n.Scale[:])
	if isZero(r) {
		r[3] = 1
	}
	if isZero(s) {
		s[0], s[1], s[2] = 1, 1, 1
	}
	return scene.ComposeMatrix(
		scene.Vector3D{X: s[0], Y: s[1], Z: s[2]},
		scene.Quaternion{W: r[3], X: r[0], Y: r[1], Z: r[2]},
		scene.Vector3D{X: t[0], Y: t[1], Z: t[2]},
	)
}

func isZero(v []float32) bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}

func isIdentity(m []float32) bool {
	for i, f := range m {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if f != want {
			return false
		}
	}
	return true
}

func toFloat32[T float32 | float64](in []T) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
