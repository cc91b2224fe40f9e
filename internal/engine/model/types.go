// Package model converts imported scene graphs into engine piece hierarchies.
package model

import (
	"github.com/Faultbox/piecemodel/pkg/math"
)

// Vertex is the flattened per-vertex layout uploaded to the GPU.
type Vertex struct {
	Position  [3]float32
	Normal    [3]float32
	STangent  [3]float32
	TTangent  [3]float32
	TexCoord  [2]float32
	TexCoord2 [2]float32
}

// AxisMapping selects how script rotations map onto piece axes.
type AxisMapping int

const (
	AxisMappingXYZ AxisMapping = iota
	AxisMappingZXY
	AxisMappingYZX
	AxisMappingXZY
	AxisMappingZYX
	AxisMappingYXZ
)

// String returns the axis order name.
func (a AxisMapping) String() string {
	switch a {
	case AxisMappingXYZ:
		return "XYZ"
	case AxisMappingZXY:
		return "ZXY"
	case AxisMappingYZX:
		return "YZX"
	case AxisMappingXZY:
		return "XZY"
	case AxisMappingZYX:
		return "ZYX"
	case AxisMappingYXZ:
		return "YXZ"
	default:
		return "unknown"
	}
}

// CollisionVolume is the axis-aligned hit volume derived for a piece.
type CollisionVolume struct {
	Shape  string
	Scales math.Vec3
	Offset math.Vec3
}

// Extents is an axis-aligned min/max pair.
type Extents struct {
	Mins math.Vec3
	Maxs math.Vec3
}

// Piece is one node of the model hierarchy.
type Piece struct {
	Name     string
	NodeName string // name of the source scene node

	// ParentName is the declared parent until the hierarchy is resolved.
	ParentName string
	Parent     *Piece
	Children   []*Piece
	// Orphaned is set when the piece could not be attached to the tree.
	Orphaned bool

	Mins math.Vec3
	Maxs math.Vec3
	// HasExtents is false for pieces that reference no meshes.
	HasExtents bool

	ScaleRotMatrix math.Mat4
	Offset         math.Vec3
	AxisMap        AxisMapping
	RotSigns       math.Vec3
	IsIdentity     bool

	Vertices     []Vertex
	Indices      []uint32
	HasTexCoord2 bool
	IsEmpty      bool

	GOffset math.Vec3
	Volume  CollisionVolume

	nativeScale math.Vec3
}

// NumTriangles returns the number of triangles in the index buffer.
func (p *Piece) NumTriangles() int {
	return len(p.Indices) / 3
}

// Model is a fully loaded piece hierarchy.
type Model struct {
	Name string

	Mins       math.Vec3
	Maxs       math.Vec3
	Radius     float32
	Height     float32
	DrawRadius float32
	RelMidPos  math.Vec3

	Pieces    map[string]*Piece
	Root      *Piece
	NumPieces int

	Tex1           string
	Tex2           string
	FlipTexY       bool
	InvertTexAlpha bool
}

// FindPiece returns the piece with the given name, or nil.
func (m *Model) FindPiece(name string) *Piece {
	return m.Pieces[name]
}

// Walk visits the pieces reachable from the root in pre-order.
// Returning false from fn skips the piece's children.
func (m *Model) Walk(fn func(p *Piece, depth int) bool) {
	if m.Root == nil {
		return
	}
	var visit func(p *Piece, depth int)
	visit = func(p *Piece, depth int) {
		if !fn(p, depth) {
			return
		}
		for _, c := range p.Children {
			visit(c, depth+1)
		}
	}
	visit(m.Root, 0)
}
