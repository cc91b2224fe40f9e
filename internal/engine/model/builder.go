package model

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/piecemodel/internal/meta"
	"github.com/Faultbox/piecemodel/pkg/scene"
)

// Reserved piece and node names.
const (
	RootPieceName    = "root"
	DefaultPieceName = "piece"

	SpringHeightNode = "SpringHeight"
	SpringRadiusNode = "SpringRadius"
)

// sentinelRadiusEpsilon is the largest max-X extent treated as "no geometry"
// for a SpringRadius node.
const sentinelRadiusEpsilon = 0.00001

// nodeKind is what a scene node turns into.
type nodeKind int

const (
	nodePiece nodeKind = iota
	nodeSpringHeight
	nodeSpringRadius
)

func classifyNode(n *scene.Node) nodeKind {
	switch n.Name {
	case SpringHeightNode:
		return nodeSpringHeight
	case SpringRadiusNode:
		return nodeSpringRadius
	default:
		return nodePiece
	}
}

// buildState is the scratch data of a single load.
type buildState struct {
	model   *Model
	scene   *scene.Scene
	meta    meta.Table
	extents []Extents
	log     *zap.Logger

	// names handed out so far, including pieces not yet registered
	reserved map[string]struct{}

	// values collected from sentinel nodes
	sentinelHeight *float32
	sentinelRadius *float32
}

func newBuildState(m *Model, sc *scene.Scene, tbl meta.Table, log *zap.Logger) *buildState {
	return &buildState{
		model:    m,
		scene:    sc,
		meta:     tbl,
		log:      log,
		reserved: make(map[string]struct{}),
	}
}

// uniqueName returns name, or name with the first free two-digit suffix.
func (b *buildState) uniqueName(name string) string {
	if _, taken := b.reserved[name]; !taken {
		return name
	}
	for i := 0; ; i++ {
		candidate := fmt.Sprintf("%s%02d", name, i)
		if _, taken := b.reserved[candidate]; !taken {
			return candidate
		}
	}
}

// loadPiece converts node and its subtree. structParent is the name of the
// piece built from the node's parent, empty for the scene root.
func (b *buildState) loadPiece(node *scene.Node, structParent string) {
	name := node.Name
	if node.Parent == nil {
		name = RootPieceName
	}
	if name == "" {
		name = DefaultPieceName
	}
	name = b.uniqueName(name)
	b.reserved[name] = struct{}{}

	piece := &Piece{Name: name, NodeName: node.Name}
	log := b.log.With(zap.String("piece", name))

	log.Debug("converting node",
		zap.String("node", node.Name),
		zap.Int("meshes", len(node.Meshes)))

	pieceMeta := b.meta.SubTable("pieces").SubTable(name)
	if pieceMeta.IsValid() {
		log.Debug("found piece metadata")
	}

	loadPieceTransform(piece, node, pieceMeta, log)
	b.foldExtents(piece, node)

	switch classifyNode(node) {
	case nodeSpringHeight:
		b.applySpringHeight(piece)
		delete(b.reserved, name)
		return
	case nodeSpringRadius:
		b.applySpringRadius(piece)
		delete(b.reserved, name)
		return
	}

	b.extractGeometry(piece, node, log)
	piece.IsEmpty = len(piece.Vertices) == 0

	switch {
	case pieceMeta.KeyExists("parent"):
		piece.ParentName = pieceMeta.GetString("parent", "")
	case node.Parent != nil:
		piece.ParentName = structParent
	}

	log.Debug("loaded piece",
		zap.String("parent", piece.ParentName),
		zap.Int("vertices", len(piece.Vertices)),
		zap.Int("triangles", piece.NumTriangles()))

	for _, child := range node.Children {
		b.loadPiece(child, name)
	}

	b.model.Pieces[name] = piece
}

// foldExtents merges the cached bounds of every mesh the node references.
func (b *buildState) foldExtents(p *Piece, node *scene.Node) {
	for _, idx := range node.Meshes {
		if idx < 0 || idx >= len(b.extents) {
			continue
		}
		ext := b.extents[idx]
		if !p.HasExtents {
			p.Mins, p.Maxs = ext.Mins, ext.Maxs
			p.HasExtents = true
			continue
		}
		p.Mins = p.Mins.Min(ext.Mins)
		p.Maxs = p.Maxs.Max(ext.Maxs)
	}
}

func (b *buildState) applySpringHeight(p *Piece) {
	if b.meta.KeyExists("height") {
		return
	}
	h := p.Offset.Z
	b.sentinelHeight = &h
	b.log.Info("model height set by special node",
		zap.String("node", SpringHeightNode), zap.Float32("height", h))
}

func (b *buildState) applySpringRadius(p *Piece) {
	if !b.meta.KeyExists("midpos") {
		b.model.RelMidPos = p.ScaleRotMatrix.TransformVec3(p.Offset)
		b.log.Info("model midpos set by special node",
			zap.String("node", SpringRadiusNode), zap.Any("midpos", b.model.RelMidPos))
	}
	if b.meta.KeyExists("radius") {
		return
	}

	// without geometry the radius is carried by the node's scale
	r := p.Maxs.X
	if p.Maxs.X <= sentinelRadiusEpsilon {
		r = p.nativeScale.X
	}
	b.sentinelRadius = &r
	b.log.Info("model radius set by special node",
		zap.String("node", SpringRadiusNode), zap.Float32("radius", r))
}

// extractGeometry appends the vertices and triangles of the node's meshes to
// p. Each mesh's face indices are remapped into the shared vertex buffer.
func (b *buildState) extractGeometry(p *Piece, node *scene.Node, log *zap.Logger) {
	for _, idx := range node.Meshes {
		if idx < 0 || idx >= len(b.scene.Meshes) || b.scene.Meshes[idx] == nil {
			log.Warn("node references missing mesh", zap.Int("mesh", idx))
			continue
		}
		mesh := b.scene.Meshes[idx]

		log.Debug("processing mesh",
			zap.Int("mesh", idx),
			zap.Int("vertices", len(mesh.Vertices)),
			zap.Bool("normals", mesh.HasNormals()),
			zap.Bool("tangents", mesh.HasTangentsAndBitangents()),
			zap.Bool("texcoords", mesh.HasTextureCoords(0)))

		hasNormals := mesh.HasNormals()
		hasTangents := mesh.HasTangentsAndBitangents()
		hasUV0 := mesh.HasTextureCoords(0)
		hasUV1 := mesh.HasTextureCoords(1)

		mapping := make([]uint32, len(mesh.Vertices))
		for i, pos := range mesh.Vertices {
			v := Vertex{Position: ToVec3(pos).Array()}

			if hasNormals && !mesh.Normals[i].IsNaN() {
				v.Normal = ToVec3(mesh.Normals[i]).Array()
			}
			if hasTangents {
				v.STangent = ToVec3(mesh.Tangents[i]).Array()
				v.TTangent = ToVec3(mesh.Bitangents[i]).Array()
			}
			if hasUV0 {
				uv := mesh.TextureCoords[0][i]
				v.TexCoord = [2]float32{uv.X, uv.Y}
			}
			if hasUV1 {
				p.HasTexCoord2 = true
				uv := mesh.TextureCoords[1][i]
				v.TexCoord2 = [2]float32{uv.X, uv.Y}
			}

			mapping[i] = uint32(len(p.Vertices))
			p.Vertices = append(p.Vertices, v)
		}

		for _, face := range mesh.Faces {
			// lines and points cannot be drawn with the triangle batch
			if len(face.Indices) != 3 {
				continue
			}
			if !validFace(face, len(mapping)) {
				log.Warn("face references missing vertex", zap.Int("mesh", idx))
				continue
			}
			for _, vi := range face.Indices {
				p.Indices = append(p.Indices, mapping[vi])
			}
		}
	}
}

func validFace(f scene.Face, numVertices int) bool {
	for _, vi := range f.Indices {
		if int(vi) >= numVertices {
			return false
		}
	}
	return true
}
