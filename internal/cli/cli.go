package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/canvasgraph/pkg/buildinfo"
	"github.com/matzehuels/canvasgraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "canvasgraph"

	// defaultAddr is the listen address of the serve command.
	defaultAddr = "127.0.0.1:8080"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Canvasgraph builds reactive node, anchor and edge stores from diagram documents",
		Long:          `Canvasgraph turns a declarative list of nodes and edges into three observable containers: nodes, anchors attached to nodes, and edges whose endpoints follow the anchors.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.populateCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.nudgeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Pipeline Helpers
// =============================================================================

// documentFlags are the flags shared by every command that loads a document.
type documentFlags struct {
	canvas string
	format string
	ids    string
}

func (f *documentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.canvas, "canvas", "", "canvas id (default: from document, else \""+pipeline.DefaultCanvas+"\")")
	cmd.Flags().StringVar(&f.format, "format", "", "document format: json, yaml, toml (default: from extension)")
	cmd.Flags().StringVar(&f.ids, "ids", pipeline.DefaultIDs, "anchor and edge id generator: uuid, sequence")
}

func (f *documentFlags) options(input string) pipeline.Options {
	return pipeline.Options{
		Input:  input,
		Canvas: f.canvas,
		Format: f.format,
		IDs:    f.ids,
	}
}

// populate runs the pipeline for one document and logs the elapsed time.
func populate(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	result, err := pipeline.NewRunner(logger).Execute(ctx, opts)
	if err != nil {
		return nil, err
	}
	prog.done("Populated", "canvas", result.Canvas, "file", opts.Input)
	return result, nil
}
