// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about diagram population and interactive edits.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The Prometheus implementation lives in the prom subpackage so that the
// diagram and pipeline packages never import a metrics client.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    h := prom.New(prometheus.DefaultRegisterer)
//	    observability.SetPopulateHooks(h)
//	    observability.SetInteractionHooks(h)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Populate().OnPopulateStart(ctx, canvas, len(nodes), len(edges))
//	// ... populate ...
//	observability.Populate().OnPopulateComplete(ctx, canvas, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Populate Hooks
// =============================================================================

// Stage names reported through [PopulateHooks.OnStageComplete].
const (
	StageLoad    = "load"
	StageNodes   = "nodes"
	StageAnchors = "anchors"
	StageEdges   = "edges"
)

// PopulateHooks receives events from the populate pipeline.
type PopulateHooks interface {
	// OnPopulateStart is called before any container is written.
	OnPopulateStart(ctx context.Context, canvas string, nodeCount, edgeCount int)

	// OnStageComplete is called after each stage, successful or not.
	OnStageComplete(ctx context.Context, stage string, duration time.Duration, err error)

	// OnPopulateComplete is called once the pipeline finished or failed.
	OnPopulateComplete(ctx context.Context, canvas string, duration time.Duration, err error)
}

// =============================================================================
// Interaction Hooks
// =============================================================================

// InteractionHooks receives events from interactive edits of a populated
// diagram.
type InteractionHooks interface {
	// OnNodeMoved records a position or size change of a node. Op is the
	// name of the edit ("move", "nudge", "resize").
	OnNodeMoved(ctx context.Context, op, nodeID string)

	// OnAnchorsRecomputed records a recompute pass over a node's anchors.
	OnAnchorsRecomputed(ctx context.Context, nodeID string, count int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPopulateHooks is a no-op implementation of PopulateHooks.
type NoopPopulateHooks struct{}

func (NoopPopulateHooks) OnPopulateStart(context.Context, string, int, int)                 {}
func (NoopPopulateHooks) OnStageComplete(context.Context, string, time.Duration, error)    {}
func (NoopPopulateHooks) OnPopulateComplete(context.Context, string, time.Duration, error) {}

// NoopInteractionHooks is a no-op implementation of InteractionHooks.
type NoopInteractionHooks struct{}

func (NoopInteractionHooks) OnNodeMoved(context.Context, string, string) {}
func (NoopInteractionHooks) OnAnchorsRecomputed(context.Context, string, int, time.Duration, error) {
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	populateHooks    PopulateHooks    = NoopPopulateHooks{}
	interactionHooks InteractionHooks = NoopInteractionHooks{}
	hooksMu          sync.RWMutex
)

// SetPopulateHooks registers custom populate hooks.
// This should be called once at application startup before any diagram is populated.
func SetPopulateHooks(h PopulateHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		populateHooks = h
	}
}

// SetInteractionHooks registers custom interaction hooks.
func SetInteractionHooks(h InteractionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		interactionHooks = h
	}
}

// Populate returns the registered populate hooks.
func Populate() PopulateHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return populateHooks
}

// Interaction returns the registered interaction hooks.
func Interaction() InteractionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return interactionHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	populateHooks = NoopPopulateHooks{}
	interactionHooks = NoopInteractionHooks{}
}
