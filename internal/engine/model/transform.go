package model

import (
	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/piecemodel/internal/meta"
	"github.com/Faultbox/piecemodel/pkg/math"
	"github.com/Faultbox/piecemodel/pkg/scene"
)

const degToRad = math32.Pi / 180

var defaultRotSigns = math.Vec3{X: -1, Y: -1, Z: 1}

// ComposeTransform appends a translation and a script rotation to m. The
// rotation is applied yaw, pitch, roll with negated angles.
func ComposeTransform(m math.Mat4, t, r math.Vec3) math.Mat4 {
	if t != math.Zero {
		m = m.Mul(math.Translate(t.X, t.Y, t.Z))
	}
	if r != math.Zero {
		m = m.Mul(math.RotateY(-r.Y))
		m = m.Mul(math.RotateX(-r.X))
		m = m.Mul(math.RotateZ(-r.Z))
	}
	return m
}

// loadPieceTransform fills the transform fields of p from the node's native
// transform and the piece's override table.
func loadPieceTransform(p *Piece, node *scene.Node, pm meta.Table, log *zap.Logger) {
	nativeScale, nativeRot, nativeTrans := node.Transformation.Decompose()
	p.nativeScale = ToVec3(nativeScale)

	log.Debug("native transform",
		zap.String("piece", p.Name),
		zap.Any("offset", nativeTrans),
		zap.Any("rotate", nativeRot),
		zap.Any("scale", nativeScale))

	scale := pm.GetFloat3("scale", ToVec3(nativeScale))
	scale.X = pm.GetFloat("scalex", scale.X)
	scale.Y = pm.GetFloat("scaley", scale.Y)
	scale.Z = pm.GetFloat("scalez", scale.Z)

	// non-uniform scaling is unsupported
	if !scale.AllEqual() {
		scale.Y = scale.X
		scale.Z = scale.X
	}

	rotate := pm.GetFloat3("rotate", math.Zero)
	rotate.X = pm.GetFloat("rotatex", rotate.X)
	rotate.Y = pm.GetFloat("rotatey", rotate.Y)
	rotate.Z = pm.GetFloat("rotatez", rotate.Z)
	rotate = rotate.Scale(degToRad)

	offset := pm.GetFloat3("offset", ToVec3(nativeTrans))
	offset.X = pm.GetFloat("offsetx", offset.X)
	offset.Y = pm.GetFloat("offsety", offset.Y)
	offset.Z = pm.GetFloat("offsetz", offset.Z)

	log.Debug("resolved transform",
		zap.String("piece", p.Name),
		zap.Any("offset", offset),
		zap.Any("rotate", rotate),
		zap.Any("scale", scale))

	p.AxisMap = AxisMapping(pm.GetInt("axisMapType", int(AxisMappingXZY)))
	p.RotSigns = pm.GetFloat3("axisRotSigns", defaultRotSigns)
	p.Offset = offset

	// translation stays in Offset; the baked matrix is R * S only
	baked := ToMatrix(nativeRot.Matrix()).ScaleVec(scale)
	p.ScaleRotMatrix = ComposeTransform(baked, math.Zero, rotate)
	p.IsIdentity = scale == math.Ones && rotate == math.Zero
}
