// Package pipeline provides the populate pipeline for canvasgraph.
//
// This package implements the complete load → validate → populate pipeline
// used by the CLI and the HTTP server. By centralizing this logic, every
// entry point builds diagrams with the same defaults and reports errors with
// the same codes.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: Read a JSON, YAML or TOML document from disk
//  2. Nodes: Replace the node container
//  3. Anchors: Create, store and seed two anchors per edge
//  4. Edges: Build edges from the anchors tagged with their label
//
// Each stage is timed and reported to the observability hooks. Population is
// all-or-nothing: if any stage fails, no store is returned.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Input: "flow.yaml"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	edges := result.Store.Edges.Snapshot()
package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/canvasgraph/pkg/diagram"
	"github.com/matzehuels/canvasgraph/pkg/errors"
	"github.com/matzehuels/canvasgraph/pkg/spec"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultCanvas is the canvas id used when neither the options nor the
	// document name one.
	DefaultCanvas = "canvas"

	// DefaultIDs is the default id generator.
	DefaultIDs = IDsUUID
)

// Id generator names.
const (
	IDsUUID     = "uuid"
	IDsSequence = "sequence"
)

// ValidIDs is the set of supported id generators.
var ValidIDs = map[string]bool{
	IDsUUID:     true,
	IDsSequence: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the populate pipeline.
type Options struct {
	// Input is the path of the diagram document.
	Input string `json:"input,omitempty"`

	// Format overrides the format implied by the file extension.
	Format string `json:"format,omitempty"`

	// Canvas overrides the canvas named by the document.
	Canvas string `json:"canvas,omitempty"`

	// IDs selects the anchor and edge id generator ("uuid" or "sequence").
	IDs string `json:"ids,omitempty"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Store holds the populated containers.
	Store *diagram.Store

	// Canvas is the canvas id stamped on every record.
	Canvas string

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Nodes      int
	Anchors    int
	Edges      int
	LoadTime   time.Duration
	NodeTime   time.Duration
	AnchorTime time.Duration
	EdgeTime   time.Duration
}

// Total returns the summed duration of all stages.
func (s Stats) Total() time.Duration {
	return s.LoadTime + s.NodeTime + s.AnchorTime + s.EdgeTime
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateIDs checks that an id generator name is valid.
func ValidateIDs(ids string) error {
	if !ValidIDs[ids] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid ids: %q (must be one of: uuid, sequence)", ids)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.validatePopulate(); err != nil {
		return err
	}
	if o.Format != "" {
		f, err := spec.ParseFormat(o.Format)
		if err != nil {
			return err
		}
		o.Format = string(f)
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks the options needed to read a document. Without a
// Format the input must carry a document extension.
func (o *Options) ValidateForLoad() error {
	if o.Input == "" {
		return errors.New(errors.ErrCodeInvalidInput, "input is required")
	}
	if o.Format == "" {
		return errors.ValidatePath(o.Input)
	}
	return nil
}

// validatePopulate checks and defaults the options used by Populate; the
// input path is not needed there.
func (o *Options) validatePopulate() error {
	if o.IDs == "" {
		o.IDs = DefaultIDs
	}
	if err := ValidateIDs(o.IDs); err != nil {
		return err
	}
	if o.Canvas != "" {
		if err := errors.ValidateCanvasID(o.Canvas); err != nil {
			return err
		}
	}
	return nil
}

// IDGenerator returns the generator selected by IDs. Sequence ids share one
// counter across anchors and edges: "1", "2", ...
func (o *Options) IDGenerator() diagram.IDGenerator {
	if o.IDs == IDsSequence {
		return diagram.NewSequence("")
	}
	return diagram.UUIDGenerator{}
}

// canvasFor picks the canvas id: options first, then the document, then
// DefaultCanvas.
func (o *Options) canvasFor(doc *spec.Document) (string, error) {
	switch {
	case o.Canvas != "":
		return o.Canvas, nil
	case doc.Canvas != "":
		if err := errors.ValidateCanvasID(doc.Canvas); err != nil {
			return "", fmt.Errorf("document canvas: %w", err)
		}
		return doc.Canvas, nil
	}
	return DefaultCanvas, nil
}
