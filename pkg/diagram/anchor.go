package diagram

import (
	"fmt"
	"maps"
	"slices"
)

// PopulateAnchors creates one source and one target anchor for every edge
// and replaces the anchor container with them.
//
// The node container must already be populated. Each anchor is bound to a
// callback that reads its node from the live node container; once all
// anchors are stored, every callback runs once, in anchor id order, to seed
// the initial positions. Observers of the anchor container see a single
// change carrying the seeded positions.
//
// PopulateAnchors fails with [ErrUnknownNode] if an edge references a node
// that does not exist.
func PopulateAnchors(s *Store, edges []EdgeInput, canvasID string) error {
	anchors := make(map[string]Anchor, 2*len(edges))
	for _, e := range edges {
		src := s.newAnchor(e.Source, RoleSource, canvasID, e.Label)
		dst := s.newAnchor(e.Target, RoleTarget, canvasID, e.Label)
		anchors[src.ID] = src
		anchors[dst.ID] = dst
	}

	s.Anchors.Hold()
	defer s.Anchors.Release()

	s.Anchors.Set(anchors)
	for _, id := range sortedKeys(anchors) {
		if err := anchors[id].Recompute(); err != nil {
			return err
		}
	}
	return nil
}

// newAnchor builds an anchor bound to its recompute callback. Its position
// stays zero until the callback first runs.
func (s *Store) newAnchor(nodeID string, role Role, canvasID, edgeLabel string) Anchor {
	id := s.ids.NewID()
	return Anchor{
		ID:        id,
		NodeID:    nodeID,
		EdgeLabel: edgeLabel,
		Role:      role,
		CanvasID:  canvasID,
		recompute: s.anchorCallback(id, nodeID),
	}
}

// anchorCallback closes over the ids only. The node is looked up on every
// call so a replaced node container is never read through a stale record.
func (s *Store) anchorCallback(anchorID, nodeID string) func() error {
	return func() error {
		node, ok := s.Nodes.Get(nodeID)
		if !ok {
			return fmt.Errorf("anchor %s: node %q: %w", anchorID, nodeID, ErrUnknownNode)
		}
		pos := s.placement(node)
		updated := s.Anchors.Mutate(anchorID, func(a Anchor) Anchor {
			a.Position = pos
			return a
		})
		if !updated {
			return fmt.Errorf("anchor %s: %w", anchorID, ErrUnknownAnchor)
		}
		return nil
	}
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
