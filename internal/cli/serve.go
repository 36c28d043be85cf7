package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/canvasgraph/internal/server"
	"github.com/matzehuels/canvasgraph/pkg/observability"
	"github.com/matzehuels/canvasgraph/pkg/observability/prom"
)

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	doc            documentFlags
	addr           string
	origins        []string
	runtimeMetrics bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Populate a document and serve its containers over HTTP",
		Long: `Serve populates a document and exposes nodes, anchors and edges as a JSON API.
Nodes can be moved, nudged and resized over HTTP; every container change is
pushed to /api/events as a server-sent event. Prometheus metrics are served
on /metrics.`,
		Example: `  canvasgraph serve examples/flow.json
  canvasgraph serve examples/flow.yaml --addr :9000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			reg := newRegistry(opts.runtimeMetrics)
			hooks := prom.New(reg)
			observability.SetPopulateHooks(hooks)
			observability.SetInteractionHooks(hooks)
			defer observability.Reset()

			result, err := populate(ctx, opts.doc.options(args[0]))
			if err != nil {
				return err
			}

			srv, err := server.New(server.Config{
				Store:          result.Store,
				Logger:         componentLogger(ctx, "http"),
				Gatherer:       reg,
				AllowedOrigins: opts.origins,
			})
			if err != nil {
				return err
			}
			defer srv.Close()

			out := cmd.OutOrStdout()
			printSuccess(out, "Serving %s on %s", StyleValue.Render(result.Canvas), StyleValue.Render("http://"+opts.addr))
			printStats(out, result.Stats)
			printNextStep(out, "Watch changes", "curl -N http://"+opts.addr+"/api/events")

			return srv.ListenAndServe(ctx, opts.addr)
		},
	}

	opts.doc.register(cmd)
	cmd.Flags().StringVar(&opts.addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringSliceVar(&opts.origins, "cors-origin", nil, "allow browser requests from this origin (repeatable)")
	cmd.Flags().BoolVar(&opts.runtimeMetrics, "runtime-metrics", true, "also export Go runtime and process metrics")

	return cmd
}

// newRegistry returns the registry served on /metrics.
func newRegistry(runtime bool) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	if runtime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return reg
}
