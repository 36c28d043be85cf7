package diagram

import "errors"

var (
	// ErrAnchorCount is returned by [PopulateEdges] when an edge label does
	// not own exactly two anchors. It usually means two edges share a label.
	ErrAnchorCount = errors.New("edge must own exactly two anchors")

	// ErrAnchorRoles is returned by [PopulateEdges] when the two anchors of
	// an edge are not one source and one target.
	ErrAnchorRoles = errors.New("edge anchors must be one source and one target")

	// ErrUnknownNode is returned when an anchor or edge references a node id
	// that is not in the node container.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownAnchor is returned by [Anchor.Recompute] when the anchor has
	// been dropped from the anchor container.
	ErrUnknownAnchor = errors.New("unknown anchor")

	// ErrUnbound is returned by [Anchor.Recompute] on an anchor that was not
	// created by [PopulateAnchors].
	ErrUnbound = errors.New("anchor has no recompute callback")
)

// Position is a point in canvas coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Role tags an anchor as the start or the end of its edge.
type Role string

const (
	RoleSource Role = "source"
	RoleTarget Role = "target"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool { return r == RoleSource || r == RoleTarget }

// Node is a positioned, sized box on the canvas.
//
// ID is the user label of the node. Position and size are owned by the
// interaction layer after population.
type Node struct {
	ID       string   `json:"id"`
	CanvasID string   `json:"canvasId"`
	Position Position `json:"position"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`

	BgColor        string  `json:"bgColor,omitempty"`
	BorderColor    string  `json:"borderColor,omitempty"`
	BorderRadius   float64 `json:"borderRadius,omitempty"`
	TextColor      string  `json:"textColor,omitempty"`
	Image          bool    `json:"image,omitempty"`
	Src            string  `json:"src,omitempty"`
	TargetPosition string  `json:"targetPosition,omitempty"`
	SourcePosition string  `json:"sourcePosition,omitempty"`

	// Data is the user payload, JSON encoded.
	Data string `json:"data,omitempty"`
}

// Anchor is a connection point of one edge on one node.
//
// The anchor refers to its node by id only. Its position is derived from the
// node's geometry by the callback bound in [PopulateAnchors].
type Anchor struct {
	ID        string   `json:"id"`
	NodeID    string   `json:"nodeId"`
	EdgeLabel string   `json:"edgeLabel"`
	Role      Role     `json:"role"`
	Position  Position `json:"position"`
	CanvasID  string   `json:"canvasId"`

	recompute func() error
}

// Recompute re-derives the anchor position from the current geometry of its
// node and writes it to the anchor container. It is safe to call on any copy
// of the anchor, including one taken from an old snapshot.
func (a Anchor) Recompute() error {
	if a.recompute == nil {
		return ErrUnbound
	}
	return a.recompute()
}

// Bound reports whether the anchor carries a recompute callback.
func (a Anchor) Bound() bool { return a.recompute != nil }

// Edge is a directed connection between two nodes through two anchors.
//
// Source and Target are copies of the anchor positions at creation time.
type Edge struct {
	ID             string   `json:"id"`
	Label          string   `json:"label"`
	CanvasID       string   `json:"canvasId"`
	SourceID       string   `json:"sourceId"`
	TargetID       string   `json:"targetId"`
	SourceAnchorID string   `json:"sourceAnchorId"`
	TargetAnchorID string   `json:"targetAnchorId"`
	Source         Position `json:"source"`
	Target         Position `json:"target"`

	Type           string `json:"type,omitempty"`
	Text           string `json:"text,omitempty"` // display label
	LabelBgColor   string `json:"labelBgColor,omitempty"`
	LabelTextColor string `json:"labelTextColor,omitempty"`
	EdgeColor      string `json:"edgeColor,omitempty"`
	Animate        bool   `json:"animate,omitempty"`
	NoHandle       bool   `json:"noHandle,omitempty"`
	Arrow          bool   `json:"arrow,omitempty"`
}

// EdgeInput is one user edge as consumed by the anchor and edge stages.
// Label is the user label of the edge; Source and Target are node labels.
type EdgeInput struct {
	Label  string
	Source string
	Target string
	Type   string

	Text           string
	LabelBgColor   string
	LabelTextColor string
	EdgeColor      string
	Animate        bool
	NoHandle       bool
	Arrow          bool
}
