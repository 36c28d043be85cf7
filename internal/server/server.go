// Package server exposes a populated diagram over HTTP.
//
// Routes:
//
//	GET  /health                     liveness
//	GET  /api/nodes                  nodes, filtered by ?canvas=
//	GET  /api/nodes/{id}             one node
//	GET  /api/nodes/{id}/anchors     anchors owned by a node
//	PUT  /api/nodes/{id}/position    {"x":..,"y":..}
//	POST /api/nodes/{id}/nudge       {"dx":..,"dy":..}
//	PUT  /api/nodes/{id}/size        {"width":..,"height":..}
//	GET  /api/anchors                anchors, filtered by ?node= &label= &role= &canvas=
//	GET  /api/edges                  edges, filtered by ?label= &source= &target= &canvas=
//	POST /api/edges/refresh          re-read anchor positions into edges
//	GET  /api/events                 server-sent change events
//	GET  /metrics                    Prometheus metrics
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/canvasgraph/pkg/diagram"
	"github.com/matzehuels/canvasgraph/pkg/interact"
)

// Config configures a [Server].
type Config struct {
	// Store is the populated diagram to serve. Required.
	Store *diagram.Store

	// Logger receives request and stream logs. Nil uses log.Default().
	Logger *log.Logger

	// Gatherer is exposed on /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer

	// AllowedOrigins enables CORS for browser clients on other origins,
	// e.g. "http://localhost:5173". Empty disables CORS headers.
	AllowedOrigins []string
}

// Server serves one diagram store.
type Server struct {
	store    *diagram.Store
	ctrl     *interact.Controller
	hub      *Hub
	logger   *log.Logger
	gatherer prometheus.Gatherer
	origins  []string
}

// New creates a server. It starts following the store's containers
// immediately; call Close to stop.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, stderrors.New("server: store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		store:    cfg.Store,
		ctrl:     interact.New(cfg.Store, logger),
		hub:      NewHub(cfg.Store, logger),
		logger:   logger,
		gatherer: cfg.Gatherer,
		origins:  cfg.AllowedOrigins,
	}, nil
}

// Close stops the change stream.
func (s *Server) Close() { s.hub.Close() }

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", s.health)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/events", s.hub.ServeHTTP)

		r.Route("/nodes", func(r chi.Router) {
			r.Get("/", s.listNodes)
			r.Get("/{id}", s.getNode)
			r.Get("/{id}/anchors", s.nodeAnchors)
			r.Put("/{id}/position", s.moveNode)
			r.Post("/{id}/nudge", s.nudgeNode)
			r.Put("/{id}/size", s.resizeNode)
		})
		r.Get("/anchors", s.listAnchors)
		r.Route("/edges", func(r chi.Router) {
			r.Get("/", s.listEdges)
			r.Post("/refresh", s.refreshEdges)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Streams end with ctx so Shutdown does not wait on them.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger logs one line per request through the charm logger.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
