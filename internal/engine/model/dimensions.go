package model

import (
	"github.com/Faultbox/piecemodel/pkg/math"
)

// calculateDimensions walks the tree from the root, setting each piece's
// global offset and collision volume and folding piece bounds into the model
// extents. Pieces without mesh bounds do not contribute to the extents.
func calculateDimensions(m *Model) error {
	if m.Root == nil {
		return ErrNoRoot
	}

	m.Mins, m.Maxs = defMinSize, defMaxSize
	folded := false

	var visit func(p *Piece, parentOffset math.Vec3)
	visit = func(p *Piece, parentOffset math.Vec3) {
		p.GOffset = p.ScaleRotMatrix.TransformVec3(p.Offset).Add(parentOffset)

		if p.HasExtents {
			m.Mins = m.Mins.Min(p.GOffset.Add(p.Mins))
			m.Maxs = m.Maxs.Max(p.GOffset.Add(p.Maxs))
			folded = true
		}

		cvScales := p.Maxs.Sub(p.Mins)
		cvOffset := p.Maxs.Sub(p.GOffset).Add(p.Mins.Sub(p.GOffset))
		p.Volume = CollisionVolume{
			Shape:  "box",
			Scales: cvScales,
			Offset: cvOffset.Scale(0.5),
		}

		for _, c := range p.Children {
			visit(c, p.GOffset)
		}
	}
	visit(m.Root, math.Zero)

	if !folded {
		m.Mins, m.Maxs = math.Zero, math.Zero
	}
	return nil
}
