// Package interact edits a populated diagram the way a drag handler does.
//
// Moving or resizing a node replaces its record in the node container and
// then re-runs the recompute callback of every anchor the node owns, so the
// anchors follow the node. Edges are not touched: they hold coordinate
// snapshots taken when they were built. [Controller.RefreshEdges] re-reads
// anchor positions into those snapshots, which is what a renderer does on
// each draw.
package interact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/canvasgraph/pkg/diagram"
	"github.com/matzehuels/canvasgraph/pkg/observability"
)

// Edit operation names reported to hooks and logs.
const (
	OpMove   = "move"
	OpNudge  = "nudge"
	OpResize = "resize"
)

// ErrInvalidSize is returned by ResizeNode for a negative width or height.
var ErrInvalidSize = errors.New("node size must not be negative")

// Controller applies edits to one store. Edits and edge refreshes are
// serialized; reads of the store's containers may run concurrently with them.
type Controller struct {
	store  *diagram.Store
	logger *log.Logger
	sem    chan struct{} // one slot; held for the duration of an edit or refresh
}

// New returns a controller over s. A nil logger uses log.Default().
func New(s *diagram.Store, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{store: s, logger: logger, sem: make(chan struct{}, 1)}
}

// Store returns the store the controller edits.
func (c *Controller) Store() *diagram.Store { return c.store }

// MoveNode places the node's top-left corner at (x, y).
func (c *Controller) MoveNode(ctx context.Context, id string, x, y float64) (diagram.Node, error) {
	return c.edit(ctx, OpMove, id, func(n diagram.Node) diagram.Node {
		n.Position = diagram.Position{X: x, Y: y}
		return n
	})
}

// NudgeNode moves the node by (dx, dy).
func (c *Controller) NudgeNode(ctx context.Context, id string, dx, dy float64) (diagram.Node, error) {
	return c.edit(ctx, OpNudge, id, func(n diagram.Node) diagram.Node {
		n.Position.X += dx
		n.Position.Y += dy
		return n
	})
}

// ResizeNode sets the node's width and height.
func (c *Controller) ResizeNode(ctx context.Context, id string, w, h float64) (diagram.Node, error) {
	if w < 0 || h < 0 {
		return diagram.Node{}, fmt.Errorf("node %q: %gx%g: %w", id, w, h, ErrInvalidSize)
	}
	return c.edit(ctx, OpResize, id, func(n diagram.Node) diagram.Node {
		n.Width, n.Height = w, h
		return n
	})
}

func (c *Controller) edit(ctx context.Context, op, id string, fn func(diagram.Node) diagram.Node) (diagram.Node, error) {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return diagram.Node{}, ctx.Err()
	}
	defer func() { <-c.sem }()

	if !c.store.Nodes.Mutate(id, fn) {
		return diagram.Node{}, fmt.Errorf("node %q: %w", id, diagram.ErrUnknownNode)
	}
	observability.Interaction().OnNodeMoved(ctx, op, id)

	n, err := c.recompute(ctx, id)
	if err != nil {
		return diagram.Node{}, err
	}
	c.logger.Debug("node edited", "op", op, "node", id, "x", n.Position.X, "y", n.Position.Y,
		"width", n.Width, "height", n.Height)
	return n, nil
}

// recompute re-runs the callbacks of every anchor owned by nodeID and
// returns the node as the callbacks saw it.
func (c *Controller) recompute(ctx context.Context, nodeID string) (diagram.Node, error) {
	start := time.Now()
	anchors := c.store.AnchorsOf(nodeID)

	c.store.Anchors.Hold()
	var err error
	for _, a := range anchors {
		if err = a.Recompute(); err != nil {
			err = fmt.Errorf("recompute anchors of %q: %w", nodeID, err)
			break
		}
	}
	c.store.Anchors.Release()
	observability.Interaction().OnAnchorsRecomputed(ctx, nodeID, len(anchors), time.Since(start), err)
	if err != nil {
		return diagram.Node{}, err
	}

	n, _ := c.store.Nodes.Get(nodeID)
	return n, nil
}

// RefreshEdges copies the current anchor positions into every edge snapshot
// and returns how many edges changed. The edge container is written once,
// and only if something changed. An edge whose anchor has gone keeps its
// old coordinates. RefreshEdges waits for any edit in progress.
func (c *Controller) RefreshEdges() int {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	anchors := c.store.Anchors.Snapshot()
	edges := c.store.Edges.Snapshot()

	changed := 0
	for id, e := range edges {
		src, okSrc := anchors[e.SourceAnchorID]
		dst, okDst := anchors[e.TargetAnchorID]
		if !okSrc || !okDst {
			continue
		}
		if e.Source == src.Position && e.Target == dst.Position {
			continue
		}
		e.Source, e.Target = src.Position, dst.Position
		edges[id] = e
		changed++
	}
	if changed > 0 {
		c.store.Edges.Set(edges)
	}
	return changed
}
