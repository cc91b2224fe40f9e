package model

// finalizeProperties derives radius, height and mid-position from the model
// extents. Metadata wins over sentinel nodes, which win over the extents.
func (b *buildState) finalizeProperties() {
	m := b.model

	// replaces the Y a SpringRadius node may have set
	m.RelMidPos.Y = (m.Maxs.Y - m.Mins.Y) * 0.5

	radius := m.Maxs.Abs().Max(m.Mins.Abs()).Length()
	if b.sentinelRadius != nil {
		radius = *b.sentinelRadius
	}
	height := m.Maxs.Z
	if b.sentinelHeight != nil {
		height = *b.sentinelHeight
	}

	m.Radius = b.meta.GetFloat("radius", radius)
	m.Height = b.meta.GetFloat("height", height)
	m.RelMidPos = b.meta.GetFloat3("midpos", m.RelMidPos)
	m.Mins = b.meta.GetFloat3("mins", m.Mins)
	m.Maxs = b.meta.GetFloat3("maxs", m.Maxs)

	m.DrawRadius = m.Radius
}
