package model

import (
	"github.com/Faultbox/piecemodel/pkg/math"
	"github.com/Faultbox/piecemodel/pkg/scene"
)

// Seeds for min/max folding. A seed that survives the fold means no vertex
// touched it.
var (
	defMinSize = math.Vec3{X: 10000, Y: 10000, Z: 10000}
	defMaxSize = math.Vec3{X: -10000, Y: -10000, Z: -10000}
)

// CalculateMeshExtents returns the bounds of every mesh in sc, index-parallel
// to sc.Meshes. Meshes without vertices get zero extents.
func CalculateMeshExtents(sc *scene.Scene) []Extents {
	out := make([]Extents, len(sc.Meshes))

	for i, mesh := range sc.Meshes {
		ext := Extents{Mins: defMinSize, Maxs: defMaxSize}
		if mesh != nil {
			for _, v := range mesh.Vertices {
				p := ToVec3(v)
				ext.Mins = ext.Mins.Min(p)
				ext.Maxs = ext.Maxs.Max(p)
			}
		}

		if ext.Mins == defMinSize {
			ext.Mins = math.Zero
		}
		if ext.Maxs == defMaxSize {
			ext.Maxs = math.Zero
		}
		out[i] = ext
	}

	return out
}
