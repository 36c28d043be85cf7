package diagram

import "fmt"

// Populate runs one full population pass: nodes, then anchors, then edges.
// It stops at the first error; the caller should discard the store in that
// case, since earlier stages have already been committed.
func Populate(s *Store, nodes []Node, edges []EdgeInput, canvasID string) error {
	PopulateNodes(s, nodes, canvasID)
	if err := PopulateAnchors(s, edges, canvasID); err != nil {
		return fmt.Errorf("anchors: %w", err)
	}
	if err := PopulateEdges(s, edges, canvasID); err != nil {
		return fmt.Errorf("edges: %w", err)
	}
	return nil
}

// PopulateNodes replaces the node container with nodes keyed by their ID,
// stamping canvasID on each.
//
// Uniqueness of ids is the caller's business: a later node with a repeated id
// silently replaces the earlier one.
func PopulateNodes(s *Store, nodes []Node, canvasID string) {
	out := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		n.CanvasID = canvasID
		out[n.ID] = n
	}
	s.Nodes.Set(out)
}

// PopulateEdges builds one edge per input from the anchors tagged with the
// input's label and replaces the edge container with the result.
//
// Each label must own exactly two anchors ([ErrAnchorCount]), one source and
// one target ([ErrAnchorRoles]), and both endpoints must exist in the node
// container ([ErrUnknownNode]). On error the edge container is left
// untouched.
func PopulateEdges(s *Store, edges []EdgeInput, canvasID string) error {
	byLabel := anchorsByLabel(s.Anchors.Snapshot())
	out := make(map[string]Edge, len(edges))
	for _, in := range edges {
		anchors := byLabel[in.Label]
		if len(anchors) != 2 {
			return fmt.Errorf("edge %q: %d anchors: %w", in.Label, len(anchors), ErrAnchorCount)
		}
		src, dst, err := splitAnchors(anchors)
		if err != nil {
			return fmt.Errorf("edge %q: %w", in.Label, err)
		}

		if _, ok := s.Nodes.Get(in.Source); !ok {
			return fmt.Errorf("edge %q: source %q: %w", in.Label, in.Source, ErrUnknownNode)
		}
		if _, ok := s.Nodes.Get(in.Target); !ok {
			return fmt.Errorf("edge %q: target %q: %w", in.Label, in.Target, ErrUnknownNode)
		}

		e := Edge{
			ID:             s.ids.NewID(),
			Label:          in.Label,
			CanvasID:       canvasID,
			SourceID:       in.Source,
			TargetID:       in.Target,
			SourceAnchorID: src.ID,
			TargetAnchorID: dst.ID,
			Source:         src.Position,
			Target:         dst.Position,
			Type:           in.Type,
			Text:           in.Text,
			LabelBgColor:   in.LabelBgColor,
			LabelTextColor: in.LabelTextColor,
			EdgeColor:      in.EdgeColor,
			Animate:        in.Animate,
			NoHandle:       in.NoHandle,
			Arrow:          in.Arrow,
		}
		out[e.ID] = e
	}
	s.Edges.Set(out)
	return nil
}

// anchorsByLabel groups anchors by exact edge label, each group in id order.
func anchorsByLabel(anchors map[string]Anchor) map[string][]Anchor {
	out := make(map[string][]Anchor)
	for _, id := range sortedKeys(anchors) {
		a := anchors[id]
		out[a.EdgeLabel] = append(out[a.EdgeLabel], a)
	}
	return out
}

// splitAnchors assigns a pair of anchors to source and target by role tag.
// The order of the pair carries no meaning.
func splitAnchors(pair []Anchor) (src, dst Anchor, err error) {
	var haveSrc, haveDst bool
	for _, a := range pair {
		switch {
		case a.Role == RoleSource && !haveSrc:
			src, haveSrc = a, true
		case a.Role == RoleTarget && !haveDst:
			dst, haveDst = a, true
		}
	}
	if !haveSrc || !haveDst {
		return Anchor{}, Anchor{}, ErrAnchorRoles
	}
	return src, dst, nil
}
