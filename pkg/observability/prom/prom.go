// Package prom implements the observability hooks with Prometheus metrics.
//
// Metrics are registered on the registerer passed to [New]; the server
// exposes them on /metrics.
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/canvasgraph/pkg/observability"
)

const namespace = "canvasgraph"

// Hooks records populate and interaction events as Prometheus metrics.
// It implements both [observability.PopulateHooks] and
// [observability.InteractionHooks].
type Hooks struct {
	PopulatesTotal   *prometheus.CounterVec
	PopulateDuration *prometheus.HistogramVec
	StageDuration    *prometheus.HistogramVec
	DiagramNodes     *prometheus.GaugeVec
	DiagramEdges     *prometheus.GaugeVec

	NodeEditsTotal    *prometheus.CounterVec
	RecomputesTotal   *prometheus.CounterVec
	RecomputeDuration prometheus.Histogram
	AnchorsRecomputed prometheus.Counter
}

var (
	_ observability.PopulateHooks    = (*Hooks)(nil)
	_ observability.InteractionHooks = (*Hooks)(nil)
)

// New creates the metrics and registers them on reg. A nil reg uses a fresh
// registry that is not exposed anywhere, which is handy in tests.
func New(reg prometheus.Registerer) *Hooks {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Hooks{
		PopulatesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "populates_total",
				Help:      "Total number of populate runs",
			},
			[]string{"canvas", "status"},
		),
		PopulateDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "populate_duration_seconds",
				Help:      "Populate duration in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"canvas"},
		),
		StageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of each populate stage in seconds",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"stage", "status"},
		),
		DiagramNodes: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "diagram_nodes",
				Help:      "Node count of the last populate per canvas",
			},
			[]string{"canvas"},
		),
		DiagramEdges: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "diagram_edges",
				Help:      "Edge count of the last populate per canvas",
			},
			[]string{"canvas"},
		),
		NodeEditsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "node_edits_total",
				Help:      "Total number of node position and size edits",
			},
			[]string{"op"},
		),
		RecomputesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "anchor_recomputes_total",
				Help:      "Total number of anchor recompute passes",
			},
			[]string{"status"},
		),
		RecomputeDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "anchor_recompute_duration_seconds",
				Help:      "Duration of an anchor recompute pass in seconds",
				Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
			},
		),
		AnchorsRecomputed: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "anchors_recomputed_total",
				Help:      "Total number of anchors repositioned",
			},
		),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *Hooks) OnPopulateStart(_ context.Context, canvas string, nodeCount, edgeCount int) {
	h.DiagramNodes.WithLabelValues(canvas).Set(float64(nodeCount))
	h.DiagramEdges.WithLabelValues(canvas).Set(float64(edgeCount))
}

func (h *Hooks) OnStageComplete(_ context.Context, stage string, d time.Duration, err error) {
	h.StageDuration.WithLabelValues(stage, status(err)).Observe(d.Seconds())
}

func (h *Hooks) OnPopulateComplete(_ context.Context, canvas string, d time.Duration, err error) {
	h.PopulatesTotal.WithLabelValues(canvas, status(err)).Inc()
	h.PopulateDuration.WithLabelValues(canvas).Observe(d.Seconds())
}

func (h *Hooks) OnNodeMoved(_ context.Context, op, _ string) {
	h.NodeEditsTotal.WithLabelValues(op).Inc()
}

func (h *Hooks) OnAnchorsRecomputed(_ context.Context, _ string, count int, d time.Duration, err error) {
	h.RecomputesTotal.WithLabelValues(status(err)).Inc()
	h.RecomputeDuration.Observe(d.Seconds())
	if err == nil {
		h.AnchorsRecomputed.Add(float64(count))
	}
}
