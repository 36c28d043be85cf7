// Package pkg provides the core libraries of Canvasgraph.
//
// # Overview
//
// Canvasgraph turns a declarative diagram document (a list of nodes and a
// list of edges) into three observable containers: nodes, anchors attached
// to nodes, and edges whose endpoints are read from the anchors. Moving a
// node re-derives the positions of the anchors it owns.
//
// # Architecture
//
// The data flow through Canvasgraph:
//
//	JSON / YAML / TOML document
//	         ↓
//	    [spec] package (decode, normalize labels, validate)
//	         ↓
//	    [diagram] package (node → anchor → edge materializers)
//	         ↓
//	    [reactive] containers (nodes, anchors, edges)
//	         ↓
//	    [interact] package (move, nudge, resize; refresh edges)
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil)
//	result, err := runner.Execute(ctx, pipeline.Options{Input: "flow.yaml"})
//	if err != nil {
//	    return err
//	}
//
//	ctrl := interact.New(result.Store, nil)
//	if _, err := ctrl.MoveNode(ctx, "2", 300, 40); err != nil {
//	    return err
//	}
//	ctrl.RefreshEdges()
//
// # Main Packages
//
// [reactive] - Generic copy-on-write container with subscribe and batched
// notifications.
//
// [diagram] - Node, anchor and edge records, the three materializers, id
// generators and store queries.
//
// [spec] - Document types, decoding and validation.
//
// [pipeline] - Load and populate with per-stage timing. Used by the CLI and
// the HTTP server.
//
// [interact] - Node edits that keep anchors in sync.
//
// [observability] - Hooks for populate stages and edits; [observability/prom]
// exports them as Prometheus metrics.
//
// [errors] - Coded errors and input validation helpers.
//
// [reactive]: https://pkg.go.dev/github.com/matzehuels/canvasgraph/pkg/reactive
// [diagram]: https://pkg.go.dev/github.com/matzehuels/canvasgraph/pkg/diagram
// [spec]: https://pkg.go.dev/github.com/matzehuels/canvasgraph/pkg/spec
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/canvasgraph/pkg/pipeline
// [interact]: https://pkg.go.dev/github.com/matzehuels/canvasgraph/pkg/interact
// [observability]: https://pkg.go.dev/github.com/matzehuels/canvasgraph/pkg/observability
// [observability/prom]: https://pkg.go.dev/github.com/matzehuels/canvasgraph/pkg/observability/prom
// [errors]: https://pkg.go.dev/github.com/matzehuels/canvasgraph/pkg/errors
package pkg
