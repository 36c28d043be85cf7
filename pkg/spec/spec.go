// Package spec defines the declarative diagram documents users write and
// converts them into the inputs of the diagram package.
//
// A document lists nodes, each identified by a user label, and edges that
// reference those labels:
//
//	{
//	  "canvas": "flow",
//	  "nodes": [
//	    {"id": 1, "position": {"x": 0, "y": 0}, "width": 40, "height": 20},
//	    {"id": 2, "position": {"x": 100, "y": 0}, "width": 40, "height": 20}
//	  ],
//	  "edges": [{"id": "e1-2", "source": 1, "target": 2, "type": "straight"}]
//	}
//
// Documents can be written in JSON, YAML or TOML with the same field names.
// Labels may be strings or numbers (see [Label]).
//
// Malformed documents are rejected at this boundary by [Validate]; the
// diagram package assumes well-formed input. Duplicate node ids are allowed
// and resolved by the diagram package (last one wins).
package spec

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/canvasgraph/pkg/diagram"
)

// Point is a position in canvas coordinates.
type Point struct {
	X float64 `json:"x" yaml:"x" toml:"x"`
	Y float64 `json:"y" yaml:"y" toml:"y"`
}

// NodeSpec is one node as written by the user.
type NodeSpec struct {
	ID       Label   `json:"id" yaml:"id" toml:"id" validate:"required"`
	Position Point   `json:"position" yaml:"position" toml:"position"`
	Width    float64 `json:"width" yaml:"width" toml:"width" validate:"gte=0"`
	Height   float64 `json:"height" yaml:"height" toml:"height" validate:"gte=0"`

	BgColor        string  `json:"bgColor,omitempty" yaml:"bgColor,omitempty" toml:"bgColor,omitempty"`
	BorderColor    string  `json:"borderColor,omitempty" yaml:"borderColor,omitempty" toml:"borderColor,omitempty"`
	BorderRadius   float64 `json:"borderRadius,omitempty" yaml:"borderRadius,omitempty" toml:"borderRadius,omitempty" validate:"gte=0"`
	TextColor      string  `json:"textColor,omitempty" yaml:"textColor,omitempty" toml:"textColor,omitempty"`
	Image          bool    `json:"image,omitempty" yaml:"image,omitempty" toml:"image,omitempty"`
	Src            string  `json:"src,omitempty" yaml:"src,omitempty" toml:"src,omitempty" validate:"required_if=Image true"`
	TargetPosition string  `json:"targetPosition,omitempty" yaml:"targetPosition,omitempty" toml:"targetPosition,omitempty" validate:"omitempty,oneof=top bottom left right"`
	SourcePosition string  `json:"sourcePosition,omitempty" yaml:"sourcePosition,omitempty" toml:"sourcePosition,omitempty" validate:"omitempty,oneof=top bottom left right"`

	// Data is an arbitrary payload carried through to the node unchanged.
	Data any `json:"data,omitempty" yaml:"data,omitempty" toml:"data,omitempty"`
}

// EdgeSpec is one edge as written by the user. ID is the edge's user label;
// Source and Target are node labels.
type EdgeSpec struct {
	ID     Label  `json:"id" yaml:"id" toml:"id" validate:"required"`
	Source Label  `json:"source" yaml:"source" toml:"source" validate:"required"`
	Target Label  `json:"target" yaml:"target" toml:"target" validate:"required"`
	Type   string `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty" validate:"omitempty,oneof=default straight smoothstep step bezier"`

	Label          string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	LabelBgColor   string `json:"labelBgColor,omitempty" yaml:"labelBgColor,omitempty" toml:"labelBgColor,omitempty"`
	LabelTextColor string `json:"labelTextColor,omitempty" yaml:"labelTextColor,omitempty" toml:"labelTextColor,omitempty"`
	EdgeColor      string `json:"edgeColor,omitempty" yaml:"edgeColor,omitempty" toml:"edgeColor,omitempty"`
	Animate        bool   `json:"animate,omitempty" yaml:"animate,omitempty" toml:"animate,omitempty"`
	NoHandle       bool   `json:"noHandle,omitempty" yaml:"noHandle,omitempty" toml:"noHandle,omitempty"`
	Arrow          bool   `json:"arrow,omitempty" yaml:"arrow,omitempty" toml:"arrow,omitempty"`
}

// Document is a complete diagram description.
type Document struct {
	// Canvas identifies the diagram. It is optional; callers fall back to
	// their own default.
	Canvas string     `json:"canvas,omitempty" yaml:"canvas,omitempty" toml:"canvas,omitempty"`
	Nodes  []NodeSpec `json:"nodes" yaml:"nodes" toml:"nodes" validate:"dive"`
	Edges  []EdgeSpec `json:"edges" yaml:"edges" toml:"edges" validate:"dive"`
}

// DiagramNodes converts the node specs into diagram nodes, in order.
// The data payload is JSON encoded; a payload that cannot be encoded is an
// error.
func (d *Document) DiagramNodes() ([]diagram.Node, error) {
	out := make([]diagram.Node, 0, len(d.Nodes))
	for i, n := range d.Nodes {
		data, err := encodeData(n.Data)
		if err != nil {
			return nil, fmt.Errorf("node %d (%s): data: %w", i, n.ID, err)
		}
		out = append(out, diagram.Node{
			ID:             n.ID.String(),
			Position:       diagram.Position{X: n.Position.X, Y: n.Position.Y},
			Width:          n.Width,
			Height:         n.Height,
			BgColor:        n.BgColor,
			BorderColor:    n.BorderColor,
			BorderRadius:   n.BorderRadius,
			TextColor:      n.TextColor,
			Image:          n.Image,
			Src:            n.Src,
			TargetPosition: n.TargetPosition,
			SourcePosition: n.SourcePosition,
			Data:           data,
		})
	}
	return out, nil
}

// DiagramEdges converts the edge specs into diagram edge inputs, in order.
func (d *Document) DiagramEdges() []diagram.EdgeInput {
	out := make([]diagram.EdgeInput, 0, len(d.Edges))
	for _, e := range d.Edges {
		out = append(out, diagram.EdgeInput{
			Label:          e.ID.String(),
			Source:         e.Source.String(),
			Target:         e.Target.String(),
			Type:           e.Type,
			Text:           e.Label,
			LabelBgColor:   e.LabelBgColor,
			LabelTextColor: e.LabelTextColor,
			EdgeColor:      e.EdgeColor,
			Animate:        e.Animate,
			NoHandle:       e.NoHandle,
			Arrow:          e.Arrow,
		})
	}
	return out
}

func encodeData(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
