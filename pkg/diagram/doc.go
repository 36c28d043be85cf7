// Package diagram builds the in-memory graph model behind an interactive
// diagram canvas: nodes, anchors and edges held in three observable
// containers.
//
// # Overview
//
// Callers describe a diagram declaratively: a list of nodes, each identified
// by a user label, and a list of edges that reference nodes by that label.
// [Populate] turns the description into a consistent graph snapshot by
// running three stages in strict order, each depending on the committed
// output of the previous one:
//
//  1. [PopulateNodes] keys every [Node] by its user label.
//  2. [PopulateAnchors] creates one source and one target [Anchor] per edge,
//     binds each to a recompute callback and seeds every position once.
//  3. [PopulateEdges] pairs the two anchors of every edge label, checks the
//     one-source/one-target invariant and records an [Edge] with a copy of
//     the anchor coordinates.
//
// Each stage replaces its container in a single write, so observers see one
// change event per stage and never a partially built container.
//
//	s := diagram.NewStore()
//	err := diagram.Populate(s, nodes, edges, "canvas-1")
//
// # Anchors
//
// An anchor refers to its node by id and looks the node up in the live node
// container whenever [Anchor.Recompute] runs, so a node replaced by a later
// write is always read fresh. Placement is a [Placement] function; the default
// [TopCenter] puts the anchor at the horizontal midpoint of the node's top
// edge.
//
// Population only seeds positions. Re-invoking the callback after a node
// moves is the job of the interaction layer (see package interact).
//
// # Edge Coordinates
//
// The coordinates stored on an [Edge] are a snapshot taken when the edge is
// built. They go stale as soon as a node moves; renderers re-read the anchor
// positions on every draw.
//
// # Errors
//
// [ErrAnchorCount] and [ErrAnchorRoles] report a broken anchor invariant,
// typically an edge label shared by two edges. [ErrUnknownNode] reports an
// edge or anchor that references a node missing from the node container.
// All of them abort the population pass; nothing is recovered locally.
package diagram
