package model

import (
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"
)

// resolveHierarchy turns declared parent names into links. Pieces are
// processed in name order, which fixes the order of every child list.
//
// A piece with no declared parent is attached to the root. A piece whose
// declared parent does not exist, or whose parent chain loops back to itself,
// is left parentless and marked Orphaned. Its descendants keep their links and
// are marked Orphaned too.
func resolveHierarchy(m *Model, log *zap.Logger) error {
	names := slices.Sorted(maps.Keys(m.Pieces))

	for _, name := range names {
		p := m.Pieces[name]
		if name == RootPieceName {
			if m.Root != nil {
				return fmt.Errorf("%w: %s", ErrDuplicateRoot, name)
			}
			p.Parent = nil
			p.ParentName = ""
			m.Root = p
			continue
		}

		parentName := p.ParentName
		if parentName == "" {
			parentName = RootPieceName
		}

		parent, ok := m.Pieces[parentName]
		if !ok {
			if p.ParentName == "" {
				log.Error("missing root piece", zap.String("piece", name))
			} else {
				log.Error("missing piece declared as parent",
					zap.String("parent", parentName), zap.String("piece", name))
			}
			p.Orphaned = true
			continue
		}
		p.Parent = parent
	}

	for _, name := range names {
		p := m.Pieces[name]
		if p.Parent != nil && inCycle(p, len(names)) {
			log.Error("piece is its own ancestor, detaching",
				zap.String("piece", name), zap.String("parent", p.Parent.Name))
			p.Parent = nil
			p.Orphaned = true
		}
	}

	for _, name := range names {
		p := m.Pieces[name]
		if p.Parent == nil {
			continue
		}
		p.ParentName = ""
		p.Parent.Children = append(p.Parent.Children, p)
	}

	// descendants of detached pieces are cut off from the root as well
	reachable := make(map[*Piece]bool, len(names))
	m.Walk(func(p *Piece, _ int) bool {
		reachable[p] = true
		return true
	})
	for _, name := range names {
		p := m.Pieces[name]
		if !reachable[p] && !p.Orphaned {
			log.Warn("piece unreachable from root",
				zap.String("piece", name), zap.String("parent", p.Parent.Name))
			p.Orphaned = true
		}
	}

	return nil
}

// inCycle reports whether following parent links from p returns to p.
func inCycle(p *Piece, limit int) bool {
	for cur, steps := p.Parent, 0; cur != nil && steps <= limit; cur, steps = cur.Parent, steps+1 {
		if cur == p {
			return true
		}
	}
	return false
}
