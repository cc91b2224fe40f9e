package main

import (
	"sort"

	"github.com/Faultbox/piecemodel/internal/engine/model"
	"github.com/Faultbox/piecemodel/pkg/math"
)

type modelDump struct {
	Name       string      `yaml:"name"`
	Radius     float32     `yaml:"radius"`
	Height     float32     `yaml:"height"`
	DrawRadius float32     `yaml:"draw_radius"`
	MidPos     [3]float32  `yaml:"midpos,flow"`
	Mins       [3]float32  `yaml:"mins,flow"`
	Maxs       [3]float32  `yaml:"maxs,flow"`
	Tex1       string      `yaml:"tex1,omitempty"`
	Tex2       string      `yaml:"tex2,omitempty"`
	Root       *pieceDump  `yaml:"root,omitempty"`
	Orphans    []pieceDump `yaml:"orphans,omitempty"`
}

type pieceDump struct {
	Name      string      `yaml:"name"`
	Node      string      `yaml:"node,omitempty"`
	Parent    string      `yaml:"parent,omitempty"`
	Offset    [3]float32  `yaml:"offset,flow"`
	GOffset   [3]float32  `yaml:"goffset,flow"`
	Mins      [3]float32  `yaml:"mins,flow"`
	Maxs      [3]float32  `yaml:"maxs,flow"`
	Volume    volumeDump  `yaml:"volume"`
	Vertices  int         `yaml:"vertices"`
	Triangles int         `yaml:"triangles"`
	Children  []pieceDump `yaml:"children,omitempty"`
}

type volumeDump struct {
	Shape  string     `yaml:"shape"`
	Scales [3]float32 `yaml:"scales,flow"`
	Offset [3]float32 `yaml:"offset,flow"`
}

func arr(v math.Vec3) [3]float32 {
	return v.Array()
}

func newModelDump(m *model.Model) modelDump {
	d := modelDump{
		Name:       m.Name,
		Radius:     m.Radius,
		Height:     m.Height,
		DrawRadius: m.DrawRadius,
		MidPos:     arr(m.RelMidPos),
		Mins:       arr(m.Mins),
		Maxs:       arr(m.Maxs),
		Tex1:       m.Tex1,
		Tex2:       m.Tex2,
	}
	if m.Root != nil {
		root := newPieceDump(m.Root)
		d.Root = &root
	}
	for _, name := range orphanNames(m) {
		d.Orphans = append(d.Orphans, newPieceDump(m.Pieces[name]))
	}
	return d
}

func newPieceDump(p *model.Piece) pieceDump {
	d := pieceDump{
		Name:    p.Name,
		Node:    p.NodeName,
		Offset:  arr(p.Offset),
		GOffset: arr(p.GOffset),
		Mins:    arr(p.Mins),
		Maxs:    arr(p.Maxs),
		Volume: volumeDump{
			Shape:  p.Volume.Shape,
			Scales: arr(p.Volume.Scales),
			Offset: arr(p.Volume.Offset),
		},
		Vertices:  len(p.Vertices),
		Triangles: p.NumTriangles(),
	}
	if p.Parent != nil {
		d.Parent = p.Parent.Name
	} else if p.ParentName != "" {
		d.Parent = p.ParentName
	}
	for _, c := range p.Children {
		d.Children = append(d.Children, newPieceDump(c))
	}
	return d
}

// orphanNames returns the pieces that are not reachable from the root,
// sorted by name.
func orphanNames(m *model.Model) []string {
	reachable := make(map[*model.Piece]bool, len(m.Pieces))
	m.Walk(func(p *model.Piece, _ int) bool {
		reachable[p] = true
		return true
	})

	var names []string
	for name, p := range m.Pieces {
		if !reachable[p] && p.Parent == nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
