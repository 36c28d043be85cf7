package diagram

import (
	"math"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

const propertyNodes = 6

// randomDiagram builds propertyNodes nodes from coords and one edge per pair
// of entries in ends.
func randomDiagram(coords []float64, ends []int) ([]Node, []EdgeInput) {
	nodes := make([]Node, propertyNodes)
	for i := range nodes {
		nodes[i] = Node{
			ID:       strconv.Itoa(i),
			Position: Position{X: coords[i], Y: coords[(i+1)%propertyNodes]},
			Width:    math.Abs(coords[(i+2)%propertyNodes]),
			Height:   20,
		}
	}
	var edges []EdgeInput
	for k := 0; k+1 < len(ends); k += 2 {
		edges = append(edges, EdgeInput{
			Label:  "e" + strconv.Itoa(k/2),
			Source: strconv.Itoa(ends[k]),
			Target: strconv.Itoa(ends[k+1]),
		})
	}
	return nodes, edges
}

func populatedRandom(t *testing.T, coords []float64, ends []int) (*Store, []EdgeInput, bool) {
	s := NewStore(WithIDGenerator(NewSequence("")))
	nodes, edges := randomDiagram(coords, ends)
	if err := Populate(s, nodes, edges, "prop"); err != nil {
		t.Logf("Populate: %v", err)
		return nil, nil, false
	}
	return s, edges, true
}

// anchorsTrackNodes reports whether every anchor sits at the top center of
// its node.
func anchorsTrackNodes(s *Store) bool {
	nodes := s.Nodes.Snapshot()
	for _, a := range s.Anchors.Snapshot() {
		n, ok := nodes[a.NodeID]
		if !ok || a.Position != TopCenter(n) {
			return false
		}
	}
	return true
}

func TestGraphInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	coords := gen.SliceOfN(propertyNodes, gen.Float64Range(-500, 500))
	ends := gen.SliceOf(gen.IntRange(0, propertyNodes-1))

	properties.Property("every edge owns one source and one target anchor", prop.ForAll(
		func(coords []float64, ends []int) bool {
			s, edges, ok := populatedRandom(t, coords, ends)
			if !ok {
				return false
			}
			if s.Anchors.Len() != 2*len(edges) || s.Edges.Len() != len(edges) {
				return false
			}
			for _, e := range s.Edges.Snapshot() {
				src, ok1 := s.Anchors.Get(e.SourceAnchorID)
				dst, ok2 := s.Anchors.Get(e.TargetAnchorID)
				if !ok1 || !ok2 || src.Role != RoleSource || dst.Role != RoleTarget {
					return false
				}
				if src.NodeID != e.SourceID || dst.NodeID != e.TargetID {
					return false
				}
				if e.Source != src.Position || e.Target != dst.Position {
					return false
				}
			}
			return true
		},
		coords, ends,
	))

	properties.Property("anchors sit at the top center of their node", prop.ForAll(
		func(coords []float64, ends []int) bool {
			s, _, ok := populatedRandom(t, coords, ends)
			return ok && anchorsTrackNodes(s)
		},
		coords, ends,
	))

	properties.Property("anchors follow a moved node after recompute", prop.ForAll(
		func(coords []float64, ends []int, target int, dx, dy float64) bool {
			s, _, ok := populatedRandom(t, coords, ends)
			if !ok {
				return false
			}
			id := strconv.Itoa(target)
			s.Nodes.Mutate(id, func(n Node) Node {
				n.Position.X += dx
				n.Position.Y += dy
				return n
			})
			for _, a := range s.AnchorsOf(id) {
				if err := a.Recompute(); err != nil {
					return false
				}
			}
			return anchorsTrackNodes(s)
		},
		coords, ends,
		gen.IntRange(0, propertyNodes-1),
		gen.Float64Range(-100, 100),
		gen.Float64Range(-100, 100),
	))

	properties.TestingRun(t)
}
