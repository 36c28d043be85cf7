package cli

import (
	stderrors "errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/canvasgraph/pkg/diagram"
	"github.com/matzehuels/canvasgraph/pkg/errors"
	"github.com/matzehuels/canvasgraph/pkg/interact"
)

// moveOpts holds the flags of the move command.
type moveOpts struct {
	doc    documentFlags
	width  float64
	height float64
	show   string
	asJSON bool
}

// moveCommand creates the move command. It populates a document, moves one
// node, recomputes the node's anchors and refreshes the edges.
func (c *CLI) moveCommand() *cobra.Command {
	opts := moveOpts{}

	cmd := &cobra.Command{
		Use:   "move [file] [node] [x] [y]",
		Short: "Move a node and show how its anchors and edges follow",
		Long: `Move populates a document, places the given node's top-left corner at (x, y)
and recomputes the anchors the node owns. Edges are then refreshed from the
new anchor positions.`,
		Example: `  canvasgraph move examples/flow.json 2 300 40
  canvasgraph move examples/flow.json 2 300 40 --width 200 --show anchors`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validShow[opts.show] {
				return errors.New(errors.ErrCodeInvalidInput, "--show must be one of nodes, anchors, edges, all, none; got %q", opts.show)
			}
			x, err := parseCoord("x", args[2])
			if err != nil {
				return err
			}
			y, err := parseCoord("y", args[3])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			result, err := populate(ctx, opts.doc.options(args[0]))
			if err != nil {
				return err
			}

			logger := loggerFromContext(ctx)
			ctrl := interact.New(result.Store, logger)
			id := args[1]

			n, err := ctrl.MoveNode(ctx, id, x, y)
			if err != nil {
				return editError(id, err)
			}
			if cmd.Flags().Changed("width") || cmd.Flags().Changed("height") {
				w, h := n.Width, n.Height
				if cmd.Flags().Changed("width") {
					w = opts.width
				}
				if cmd.Flags().Changed("height") {
					h = opts.height
				}
				if n, err = ctrl.ResizeNode(ctx, id, w, h); err != nil {
					return editError(id, err)
				}
			}
			refreshed := ctrl.RefreshEdges()

			out := cmd.OutOrStdout()
			if opts.asJSON {
				return writeSnapshot(out, result.Store, result.Canvas)
			}
			printSuccess(out, "Moved %s to %s", StyleValue.Render(id), formatPos(n.Position))
			printKeyValue(out, "Size", formatFloat(n.Width)+"×"+formatFloat(n.Height))
			printKeyValue(out, "Anchors", strconv.Itoa(len(result.Store.AnchorsOf(id))))
			printKeyValue(out, "Refreshed", strconv.Itoa(refreshed)+" edges")
			printContainers(out, result.Store, opts.show, id)
			return nil
		},
	}

	opts.doc.register(cmd)
	cmd.Flags().Float64Var(&opts.width, "width", 0, "also resize the node to this width")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "also resize the node to this height")
	cmd.Flags().StringVar(&opts.show, "show", showAll, "containers to print: nodes, anchors, edges, all, none")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "write the containers as JSON instead of tables")

	return cmd
}

func parseCoord(name, s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s must be a number, got %q", name, s)
	}
	return f, nil
}

// editError attaches an error code to a failed interactive edit.
func editError(id string, err error) error {
	switch {
	case stderrors.Is(err, interact.ErrInvalidSize):
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "cannot resize %s", id)
	case stderrors.Is(err, diagram.ErrUnknownNode):
		return errors.Wrap(errors.ErrCodeNotFound, err, "node %s not found", id)
	}
	return errors.Wrap(errors.ErrCodeInternal, err, "cannot edit %s", id)
}
