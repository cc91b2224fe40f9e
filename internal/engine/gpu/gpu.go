// Package gpu uploads piece geometry to OpenGL buffers and draws it.
//
// Upload, Draw and Release issue GL calls and must run on the thread that
// owns a current GL context; the loader never calls them itself. Uploadable
// and WorldTransforms are pure and safe to use without a context.
package gpu

import (
	"sort"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/piecemodel/internal/engine/model"
	"github.com/Faultbox/piecemodel/internal/logger"
	"github.com/Faultbox/piecemodel/pkg/math"
)

// Attribute describes one vertex attribute inside model.Vertex.
type Attribute struct {
	Location uint32
	Size     int32
	Offset   uintptr
}

var vertexSize = int32(unsafe.Sizeof(model.Vertex{}))

// Attributes is the vertex layout bound for every piece.
var Attributes = []Attribute{
	{Location: 0, Size: 3, Offset: unsafe.Offsetof(model.Vertex{}.Position)},
	{Location: 1, Size: 3, Offset: unsafe.Offsetof(model.Vertex{}.Normal)},
	{Location: 2, Size: 3, Offset: unsafe.Offsetof(model.Vertex{}.STangent)},
	{Location: 3, Size: 3, Offset: unsafe.Offsetof(model.Vertex{}.TTangent)},
	{Location: 4, Size: 2, Offset: unsafe.Offsetof(model.Vertex{}.TexCoord)},
	{Location: 5, Size: 2, Offset: unsafe.Offsetof(model.Vertex{}.TexCoord2)},
}

// PieceBuffers holds the GL objects of one piece.
type PieceBuffers struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
}

// Model is a model whose piece geometry lives on the GPU.
type Model struct {
	Source  *model.Model
	buffers map[*model.Piece]*PieceBuffers
}

// Upload creates vertex and index buffers for every non-empty piece. A GL
// context must be current.
func Upload(m *model.Model) *Model {
	g := &Model{
		Source:  m,
		buffers: make(map[*model.Piece]*PieceBuffers),
	}

	for _, p := range Uploadable(m) {
		g.buffers[p] = uploadPiece(p)
	}

	logger.Section(logger.SectionGPU).Debug("model uploaded",
		zap.String("model", m.Name),
		zap.Int("pieces", len(g.buffers)))
	return g
}

// Uploadable returns the pieces that carry geometry and are reachable from
// the root, sorted by name. Orphaned pieces are never drawn.
func Uploadable(m *model.Model) []*model.Piece {
	var out []*model.Piece
	for _, p := range m.Pieces {
		if p.Orphaned || p.IsEmpty || len(p.Vertices) == 0 || len(p.Indices) == 0 {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func uploadPiece(p *model.Piece) *PieceBuffers {
	b := &PieceBuffers{}

	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(p.Vertices)*int(vertexSize), unsafe.Pointer(&p.Vertices[0]), gl.STATIC_DRAW)

	for _, a := range Attributes {
		gl.VertexAttribPointerWithOffset(a.Location, a.Size, gl.FLOAT, false, vertexSize, a.Offset)
		gl.EnableVertexAttribArray(a.Location)
	}

	gl.GenBuffers(1, &b.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(p.Indices)*4, unsafe.Pointer(&p.Indices[0]), gl.STATIC_DRAW)

	b.indexCount = int32(len(p.Indices))
	gl.BindVertexArray(0)
	return b
}

// NumUploaded returns the number of pieces with GPU buffers.
func (g *Model) NumUploaded() int {
	return len(g.buffers)
}

// Release deletes all GL objects.
func (g *Model) Release() {
	for _, b := range g.buffers {
		if b.vao != 0 {
			gl.DeleteVertexArrays(1, &b.vao)
		}
		if b.vbo != 0 {
			gl.DeleteBuffers(1, &b.vbo)
		}
		if b.ebo != 0 {
			gl.DeleteBuffers(1, &b.ebo)
		}
	}
	g.buffers = nil
}

// Draw renders every uploaded piece reachable from the root. locModel is the
// location of the model matrix uniform in the bound program.
func (g *Model) Draw(base math.Mat4, locModel int32) {
	world := WorldTransforms(g.Source, base)
	g.Source.Walk(func(p *model.Piece, _ int) bool {
		b := g.buffers[p]
		if b == nil || b.vao == 0 {
			return true
		}
		mat := world[p]
		gl.UniformMatrix4fv(locModel, 1, false, &mat[0])
		gl.BindVertexArray(b.vao)
		gl.DrawElements(gl.TRIANGLES, b.indexCount, gl.UNSIGNED_INT, nil)
		return true
	})
	gl.BindVertexArray(0)
}

// PieceTransform returns the piece's local matrix: its offset applied after
// the baked scale and rotation.
func PieceTransform(p *model.Piece) math.Mat4 {
	return math.Translate(p.Offset.X, p.Offset.Y, p.Offset.Z).Mul(p.ScaleRotMatrix)
}

// WorldTransforms returns base times the accumulated local matrices of every
// piece reachable from the root.
func WorldTransforms(m *model.Model, base math.Mat4) map[*model.Piece]math.Mat4 {
	out := make(map[*model.Piece]math.Mat4, len(m.Pieces))
	m.Walk(func(p *model.Piece, _ int) bool {
		parent := base
		if p.Parent != nil {
			parent = out[p.Parent]
		}
		out[p] = parent.Mul(PieceTransform(p))
		return true
	})
	return out
}
