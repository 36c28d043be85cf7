package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/canvasgraph/pkg/diagram"
	"github.com/matzehuels/canvasgraph/pkg/errors"
	"github.com/matzehuels/canvasgraph/pkg/observability"
	"github.com/matzehuels/canvasgraph/pkg/spec"
)

// Runner encapsulates pipeline execution.
// Both CLI and server use this to avoid duplicating stage logic.
//
// The Runner is stateless except for the logger - it doesn't store pipeline
// results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs the complete load → populate pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	loadStart := time.Now()
	doc, err := r.Load(ctx, opts)
	loadTime := time.Since(loadStart)
	observability.Populate().OnStageComplete(ctx, observability.StageLoad, loadTime, err)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	result, err := r.Populate(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime
	return result, nil
}

// Load reads, decodes and validates the document named by opts.Input.
func (r *Runner) Load(ctx context.Context, opts Options) (*spec.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	if opts.Format == "" {
		doc, err := spec.Load(opts.Input)
		if err != nil {
			return nil, err
		}
		r.logLoaded(opts.Input, doc)
		return doc, nil
	}

	format, err := spec.ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(opts.Input)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", opts.Input)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", opts.Input)
	}
	defer f.Close()

	doc, err := spec.Decode(f, format)
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(doc); err != nil {
		return nil, err
	}
	r.logLoaded(opts.Input, doc)
	return doc, nil
}

func (r *Runner) logLoaded(path string, doc *spec.Document) {
	r.Logger.Debug("loaded document",
		"path", path,
		"nodes", len(doc.Nodes),
		"edges", len(doc.Edges))
}

// Populate validates doc and materializes it into a fresh store: nodes,
// then anchors, then edges. On error no store is returned.
func (r *Runner) Populate(ctx context.Context, doc *spec.Document, opts Options) (result *Result, err error) {
	if err := opts.validatePopulate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := spec.Validate(doc); err != nil {
		return nil, err
	}
	canvas, err := opts.canvasFor(doc)
	if err != nil {
		return nil, err
	}

	nodes, err := doc.DiagramNodes()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSpec, err, "encode node data")
	}
	edges := doc.DiagramEdges()

	hooks := observability.Populate()
	hooks.OnPopulateStart(ctx, canvas, len(nodes), len(edges))
	start := time.Now()
	defer func() {
		hooks.OnPopulateComplete(ctx, canvas, time.Since(start), err)
	}()

	store := diagram.NewStore(diagram.WithIDGenerator(opts.IDGenerator()))
	result = &Result{Store: store, Canvas: canvas}

	// Stage 1: Nodes
	stageStart := time.Now()
	diagram.PopulateNodes(store, nodes, canvas)
	result.Stats.NodeTime = time.Since(stageStart)
	result.Stats.Nodes = store.Nodes.Len()
	hooks.OnStageComplete(ctx, observability.StageNodes, result.Stats.NodeTime, nil)

	r.Logger.Debug("populated nodes",
		"nodes", result.Stats.Nodes,
		"duration", result.Stats.NodeTime)

	// Stage 2: Anchors
	stageStart = time.Now()
	err = diagram.PopulateAnchors(store, edges, canvas)
	result.Stats.AnchorTime = time.Since(stageStart)
	hooks.OnStageComplete(ctx, observability.StageAnchors, result.Stats.AnchorTime, err)
	if err != nil {
		return nil, classify(err, "anchors")
	}
	result.Stats.Anchors = store.Anchors.Len()

	r.Logger.Debug("populated anchors",
		"anchors", result.Stats.Anchors,
		"duration", result.Stats.AnchorTime)

	// Stage 3: Edges
	stageStart = time.Now()
	err = diagram.PopulateEdges(store, edges, canvas)
	result.Stats.EdgeTime = time.Since(stageStart)
	hooks.OnStageComplete(ctx, observability.StageEdges, result.Stats.EdgeTime, err)
	if err != nil {
		return nil, classify(err, "edges")
	}
	result.Stats.Edges = store.Edges.Len()

	r.Logger.Info("populated diagram",
		"canvas", canvas,
		"nodes", result.Stats.Nodes,
		"anchors", result.Stats.Anchors,
		"edges", result.Stats.Edges,
		"duration", time.Since(start))

	return result, nil
}

// classify attaches an error code to a diagram error.
func classify(err error, stage string) error {
	switch {
	case stderrors.Is(err, diagram.ErrUnknownNode):
		return errors.Wrap(errors.ErrCodeUnknownNode, err, "%s", stage)
	case stderrors.Is(err, diagram.ErrAnchorCount),
		stderrors.Is(err, diagram.ErrAnchorRoles),
		stderrors.Is(err, diagram.ErrUnknownAnchor),
		stderrors.Is(err, diagram.ErrUnbound):
		return errors.Wrap(errors.ErrCodeBrokenInvariant, err, "%s", stage)
	}
	return errors.Wrap(errors.ErrCodeInternal, err, "%s", stage)
}
