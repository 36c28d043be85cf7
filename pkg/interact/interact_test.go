package interact

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/canvasgraph/pkg/diagram"
	"github.com/matzehuels/canvasgraph/pkg/observability"
)

func newController(t *testing.T) *Controller {
	t.Helper()
	s := diagram.NewStore(diagram.WithIDGenerator(diagram.NewSequence("id-")))
	nodes := []diagram.Node{
		{ID: "1", Position: diagram.Position{X: 0, Y: 0}, Width: 40, Height: 20},
		{ID: "2", Position: diagram.Position{X: 100, Y: 0}, Width: 40, Height: 20},
		{ID: "3", Position: diagram.Position{X: 0, Y: 100}, Width: 10, Height: 10},
	}
	edges := []diagram.EdgeInput{
		{Label: "a", Source: "1", Target: "2"},
		{Label: "b", Source: "1", Target: "3"},
	}
	if err := diagram.Populate(s, nodes, edges, "c"); err != nil {
		t.Fatalf("Populate: %v", err)
	}
	return New(s, nil)
}

func anchorPositions(s *diagram.Store, nodeID string) []diagram.Position {
	var out []diagram.Position
	for _, a := range s.AnchorsOf(nodeID) {
		out = append(out, a.Position)
	}
	return out
}

func TestEditsMoveAnchors(t *testing.T) {
	tests := []struct {
		name     string
		edit     func(c *Controller) (diagram.Node, error)
		wantNode diagram.Position
		wantSize [2]float64
		want     diagram.Position
	}{
		{
			name:     "Move",
			edit:     func(c *Controller) (diagram.Node, error) { return c.MoveNode(context.Background(), "1", 50, 60) },
			wantNode: diagram.Position{X: 50, Y: 60},
			wantSize: [2]float64{40, 20},
			want:     diagram.Position{X: 70, Y: 60},
		},
		{
			name:     "Nudge",
			edit:     func(c *Controller) (diagram.Node, error) { return c.NudgeNode(context.Background(), "1", -5, 10) },
			wantNode: diagram.Position{X: -5, Y: 10},
			wantSize: [2]float64{40, 20},
			want:     diagram.Position{X: 15, Y: 10},
		},
		{
			name:     "Resize",
			edit:     func(c *Controller) (diagram.Node, error) { return c.ResizeNode(context.Background(), "1", 100, 5) },
			wantNode: diagram.Position{X: 0, Y: 0},
			wantSize: [2]float64{100, 5},
			want:     diagram.Position{X: 50, Y: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newController(t)
			n, err := tt.edit(c)
			if err != nil {
				t.Fatalf("edit: %v", err)
			}
			if n.Position != tt.wantNode || n.Width != tt.wantSize[0] || n.Height != tt.wantSize[1] {
				t.Errorf("node = %+v", n)
			}

			got := anchorPositions(c.Store(), "1")
			if len(got) != 2 {
				t.Fatalf("anchors of node 1 = %d, want 2", len(got))
			}
			for _, p := range got {
				if p != tt.want {
					t.Errorf("anchor = %+v, want %+v", p, tt.want)
				}
			}

			for _, p := range anchorPositions(c.Store(), "2") {
				if p != (diagram.Position{X: 120, Y: 0}) {
					t.Errorf("untouched anchor moved to %+v", p)
				}
			}
		})
	}
}

func TestEditEmitsOneNodeEvent(t *testing.T) {
	c := newController(t)
	nodeEvents, anchorEvents := 0, 0
	unsubN := c.Store().Nodes.Subscribe(func(map[string]diagram.Node) { nodeEvents++ })
	defer unsubN()
	unsubA := c.Store().Anchors.Subscribe(func(map[string]diagram.Anchor) { anchorEvents++ })
	defer unsubA()
	nodeEvents, anchorEvents = 0, 0

	if _, err := c.MoveNode(context.Background(), "1", 1, 1); err != nil {
		t.Fatal(err)
	}
	if nodeEvents != 1 {
		t.Errorf("node events = %d, want 1", nodeEvents)
	}
	// Both anchors of node 1 land in a single change.
	if anchorEvents != 1 {
		t.Errorf("anchor events = %d, want 1", anchorEvents)
	}
}

func TestEditsLeaveEdgeSnapshots(t *testing.T) {
	c := newController(t)
	before := c.Store().EdgesWhere(diagram.EdgeFilter{Label: "a"})[0]

	if _, err := c.MoveNode(context.Background(), "2", 300, 300); err != nil {
		t.Fatal(err)
	}
	after := c.Store().EdgesWhere(diagram.EdgeFilter{Label: "a"})[0]
	if after.Target != before.Target {
		t.Errorf("edge snapshot changed without refresh: %+v -> %+v", before.Target, after.Target)
	}
}

func TestRefreshEdges(t *testing.T) {
	c := newController(t)
	edgeEvents := 0
	unsub := c.Store().Edges.Subscribe(func(map[string]diagram.Edge) { edgeEvents++ })
	defer unsub()
	edgeEvents = 0

	if n := c.RefreshEdges(); n != 0 {
		t.Errorf("refresh of unchanged diagram = %d, want 0", n)
	}
	if edgeEvents != 0 {
		t.Errorf("edge events = %d, want 0", edgeEvents)
	}

	if _, err := c.MoveNode(context.Background(), "2", 300, 300); err != nil {
		t.Fatal(err)
	}
	if n := c.RefreshEdges(); n != 1 {
		t.Errorf("refreshed = %d, want 1", n)
	}
	if edgeEvents != 1 {
		t.Errorf("edge events = %d, want 1", edgeEvents)
	}

	e := c.Store().EdgesWhere(diagram.EdgeFilter{Label: "a"})[0]
	if e.Target != (diagram.Position{X: 320, Y: 300}) {
		t.Errorf("target = %+v, want (320,300)", e.Target)
	}
	if e.Source != (diagram.Position{X: 20, Y: 0}) {
		t.Errorf("source = %+v, want (20,0)", e.Source)
	}
}

func TestRefreshEdgesWaitsForEdit(t *testing.T) {
	c := newController(t)
	if _, err := c.MoveNode(context.Background(), "2", 300, 300); err != nil {
		t.Fatal(err)
	}

	c.sem <- struct{}{}
	done := make(chan int)
	go func() { done <- c.RefreshEdges() }()

	select {
	case <-done:
		t.Fatal("RefreshEdges ran while an edit held the controller")
	case <-time.After(50 * time.Millisecond):
	}

	<-c.sem
	select {
	case n := <-done:
		if n != 1 {
			t.Errorf("refreshed = %d, want 1", n)
		}
	case <-time.After(time.Second):
		t.Fatal("RefreshEdges did not finish after the edit released")
	}
}

func TestConcurrentRefreshKeepsLatestPositions(t *testing.T) {
	c := newController(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := c.NudgeNode(ctx, "2", float64(i%3), 1); err != nil {
				t.Error(err)
			}
		}()
		go func() {
			defer wg.Done()
			c.RefreshEdges()
		}()
	}
	wg.Wait()
	c.RefreshEdges()

	anchors := c.Store().Anchors.Snapshot()
	for _, e := range c.Store().EdgesWhere(diagram.EdgeFilter{}) {
		if e.Source != anchors[e.SourceAnchorID].Position || e.Target != anchors[e.TargetAnchorID].Position {
			t.Errorf("edge %s = %+v -> %+v, out of step with its anchors", e.Label, e.Source, e.Target)
		}
	}
}

func TestRefreshEdgesMissingAnchor(t *testing.T) {
	c := newController(t)
	if _, err := c.MoveNode(context.Background(), "2", 300, 300); err != nil {
		t.Fatal(err)
	}
	c.Store().Anchors.Set(nil)

	if n := c.RefreshEdges(); n != 0 {
		t.Errorf("refreshed = %d, want 0", n)
	}
}

func TestEditErrors(t *testing.T) {
	tests := []struct {
		name string
		edit func(c *Controller) error
		want error
	}{
		{
			name: "MoveUnknown",
			edit: func(c *Controller) error { _, err := c.MoveNode(context.Background(), "nope", 0, 0); return err },
			want: diagram.ErrUnknownNode,
		},
		{
			name: "NudgeUnknown",
			edit: func(c *Controller) error { _, err := c.NudgeNode(context.Background(), "nope", 1, 1); return err },
			want: diagram.ErrUnknownNode,
		},
		{
			name: "NegativeWidth",
			edit: func(c *Controller) error { _, err := c.ResizeNode(context.Background(), "1", -1, 1); return err },
			want: ErrInvalidSize,
		},
		{
			name: "NegativeHeight",
			edit: func(c *Controller) error { _, err := c.ResizeNode(context.Background(), "1", 1, -1); return err },
			want: ErrInvalidSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newController(t)
			if err := tt.edit(c); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEditCanceledContext(t *testing.T) {
	c := newController(t)
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.MoveNode(ctx, "1", 0, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestEditAfterAnchorsCleared(t *testing.T) {
	c := newController(t)
	// Drop the anchor container behind the controller's back; the stale
	// anchors read before the drop now point at ids that no longer exist.
	s := c.Store()
	anchors := s.Anchors.Snapshot()
	s.Anchors.Set(nil)
	for id, a := range anchors {
		if a.NodeID == "1" {
			if err := a.Recompute(); !errors.Is(err, diagram.ErrUnknownAnchor) {
				t.Errorf("anchor %s: err = %v, want ErrUnknownAnchor", id, err)
			}
		}
	}

	// With no anchors left the edit succeeds and recomputes nothing.
	if _, err := c.MoveNode(context.Background(), "1", 5, 5); err != nil {
		t.Errorf("MoveNode: %v", err)
	}
}

func TestHooksCalled(t *testing.T) {
	h := &recordingHooks{}
	observability.SetInteractionHooks(h)
	defer observability.Reset()

	c := newController(t)
	if _, err := c.MoveNode(context.Background(), "1", 5, 5); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ResizeNode(context.Background(), "3", 2, 2); err != nil {
		t.Fatal(err)
	}

	if len(h.ops) != 2 || h.ops[0] != OpMove || h.ops[1] != OpResize {
		t.Errorf("ops = %v", h.ops)
	}
	if len(h.counts) != 2 || h.counts[0] != 2 || h.counts[1] != 1 {
		t.Errorf("recompute counts = %v, want [2 1]", h.counts)
	}
}

type recordingHooks struct {
	observability.NoopInteractionHooks
	ops    []string
	counts []int
}

func (r *recordingHooks) OnNodeMoved(_ context.Context, op, _ string) {
	r.ops = append(r.ops, op)
}

func (r *recordingHooks) OnAnchorsRecomputed(_ context.Context, _ string, n int, _ time.Duration, _ error) {
	r.counts = append(r.counts, n)
}
