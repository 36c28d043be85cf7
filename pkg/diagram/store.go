package diagram

import (
	"github.com/matzehuels/canvasgraph/pkg/reactive"
)

// Container names, as reported in change notifications and metrics.
const (
	ContainerNodes   = "nodes"
	ContainerAnchors = "anchors"
	ContainerEdges   = "edges"
)

// Placement computes an anchor position from the geometry of its node.
type Placement func(n Node) Position

// TopCenter places an anchor at the horizontal midpoint of the node's top
// edge: (x + width/2, y).
func TopCenter(n Node) Position {
	return Position{X: n.Position.X + n.Width/2, Y: n.Position.Y}
}

// Store holds the three containers of one diagram.
//
// Nodes are keyed by their user label, anchors and edges by generated ids.
type Store struct {
	Nodes   *reactive.Container[Node]
	Anchors *reactive.Container[Anchor]
	Edges   *reactive.Container[Edge]

	ids       IDGenerator
	placement Placement
}

// Option configures a [Store].
type Option func(*Store)

// WithIDGenerator sets the generator used for anchor and edge ids.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithPlacement sets the anchor placement policy. The default is [TopCenter].
func WithPlacement(p Placement) Option {
	return func(s *Store) {
		if p != nil {
			s.placement = p
		}
	}
}

// NewStore creates a store with three empty containers.
func NewStore(opts ...Option) *Store {
	s := &Store{
		Nodes:     reactive.New[Node](ContainerNodes),
		Anchors:   reactive.New[Anchor](ContainerAnchors),
		Edges:     reactive.New[Edge](ContainerEdges),
		ids:       UUIDGenerator{},
		placement: TopCenter,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NodeFilter selects nodes. Empty fields match everything.
type NodeFilter struct {
	ID       string
	CanvasID string
}

func (f NodeFilter) match(n Node) bool {
	return (f.ID == "" || f.ID == n.ID) &&
		(f.CanvasID == "" || f.CanvasID == n.CanvasID)
}

// AnchorFilter selects anchors. Empty fields match everything.
type AnchorFilter struct {
	ID        string
	NodeID    string
	EdgeLabel string
	Role      Role
	CanvasID  string
}

func (f AnchorFilter) match(a Anchor) bool {
	return (f.ID == "" || f.ID == a.ID) &&
		(f.NodeID == "" || f.NodeID == a.NodeID) &&
		(f.EdgeLabel == "" || f.EdgeLabel == a.EdgeLabel) &&
		(f.Role == "" || f.Role == a.Role) &&
		(f.CanvasID == "" || f.CanvasID == a.CanvasID)
}

// EdgeFilter selects edges. Empty fields match everything.
type EdgeFilter struct {
	ID       string
	Label    string
	SourceID string
	TargetID string
	CanvasID string
}

func (f EdgeFilter) match(e Edge) bool {
	return (f.ID == "" || f.ID == e.ID) &&
		(f.Label == "" || f.Label == e.Label) &&
		(f.SourceID == "" || f.SourceID == e.SourceID) &&
		(f.TargetID == "" || f.TargetID == e.TargetID) &&
		(f.CanvasID == "" || f.CanvasID == e.CanvasID)
}

// NodesWhere returns the nodes matching f, ordered by id.
func (s *Store) NodesWhere(f NodeFilter) []Node {
	return where(s.Nodes, f.match)
}

// AnchorsWhere returns the anchors matching f, ordered by id.
func (s *Store) AnchorsWhere(f AnchorFilter) []Anchor {
	return where(s.Anchors, f.match)
}

// EdgesWhere returns the edges matching f, ordered by id.
func (s *Store) EdgesWhere(f EdgeFilter) []Edge {
	return where(s.Edges, f.match)
}

// AnchorsOf returns every anchor owned by the node with the given id.
func (s *Store) AnchorsOf(nodeID string) []Anchor {
	return s.AnchorsWhere(AnchorFilter{NodeID: nodeID})
}

func where[V any](c *reactive.Container[V], keep func(V) bool) []V {
	snap := c.Snapshot()
	var out []V
	for _, id := range sortedKeys(snap) {
		if v := snap[id]; keep(v) {
			out = append(out, v)
		}
	}
	return out
}
