package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/canvasgraph/pkg/diagram"
	"github.com/matzehuels/canvasgraph/pkg/errors"
	"github.com/matzehuels/canvasgraph/pkg/interact"
)

// Nudge step bounds.
const (
	defaultStep = 10.0
	minStep     = 1.0
	maxStep     = 100.0
)

var (
	tuiDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	tuiErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
)

// nudgeKeyMap defines the key bindings of the nudge view.
type nudgeKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Left   key.Binding
	Right  key.Binding
	Up     key.Binding
	Down   key.Binding
	Bigger key.Binding
	Finer  key.Binding
	Quit   key.Binding
}

var nudgeKeys = nudgeKeyMap{
	Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next node")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev node")),
	Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Bigger: key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "double step")),
	Finer:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "halve step")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k nudgeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Up, k.Down, k.Next, k.Bigger, k.Finer, k.Quit}
}

func (k nudgeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.Next, k.Prev, k.Bigger, k.Finer},
		{k.Quit},
	}
}

// =============================================================================
// NudgeModel - Interactive node nudging
// =============================================================================

// NudgeModel is the bubbletea model of the nudge command. One node is
// selected at a time; arrow keys move it and the tables show its anchors and
// the refreshed edges.
type NudgeModel struct {
	ctx   context.Context
	ctrl  *interact.Controller
	nodes []string
	help  help.Model

	Cursor int
	Step   float64
	Edits  int
	Err    error
}

// NewNudgeModel creates a nudge model over the controller's store.
func NewNudgeModel(ctx context.Context, ctrl *interact.Controller) NudgeModel {
	return NudgeModel{
		ctx:   ctx,
		ctrl:  ctrl,
		nodes: ctrl.Store().Nodes.Keys(),
		help:  help.New(),
		Step:  defaultStep,
	}
}

// Selected returns the id of the selected node, or "" when there are none.
func (m NudgeModel) Selected() string {
	if len(m.nodes) == 0 {
		return ""
	}
	return m.nodes[m.Cursor]
}

func (m NudgeModel) Init() tea.Cmd {
	return nil
}

func (m NudgeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, nudgeKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, nudgeKeys.Next):
			if len(m.nodes) > 0 {
				m.Cursor = (m.Cursor + 1) % len(m.nodes)
			}
		case key.Matches(msg, nudgeKeys.Prev):
			if len(m.nodes) > 0 {
				m.Cursor = (m.Cursor + len(m.nodes) - 1) % len(m.nodes)
			}
		case key.Matches(msg, nudgeKeys.Bigger):
			m.Step = min(m.Step*2, maxStep)
		case key.Matches(msg, nudgeKeys.Finer):
			m.Step = max(m.Step/2, minStep)
		case key.Matches(msg, nudgeKeys.Left):
			m = m.nudge(-m.Step, 0)
		case key.Matches(msg, nudgeKeys.Right):
			m = m.nudge(m.Step, 0)
		case key.Matches(msg, nudgeKeys.Up):
			m = m.nudge(0, -m.Step)
		case key.Matches(msg, nudgeKeys.Down):
			m = m.nudge(0, m.Step)
		}
	}
	return m, nil
}

func (m NudgeModel) nudge(dx, dy float64) NudgeModel {
	id := m.Selected()
	if id == "" {
		return m
	}
	if _, err := m.ctrl.NudgeNode(m.ctx, id, dx, dy); err != nil {
		m.Err = editError(id, err)
		return m
	}
	m.ctrl.RefreshEdges()
	m.Edits++
	m.Err = nil
	return m
}

func (m NudgeModel) View() string {
	var b strings.Builder
	store := m.ctrl.Store()
	selected := m.Selected()

	b.WriteString(StyleTitle.Render("Nudge Nodes"))
	b.WriteString("\n")
	b.WriteString(m.help.View(nudgeKeys))
	b.WriteString("\n\n")

	b.WriteString(nodeTable(store.NodesWhere(diagram.NodeFilter{}), selected))
	b.WriteString("\n")
	b.WriteString(anchorTable(store.AnchorsOf(selected), selected))
	b.WriteString("\n")
	b.WriteString(edgeTable(store.EdgesWhere(diagram.EdgeFilter{})))
	b.WriteString("\n\n")

	if m.Err != nil {
		b.WriteString(tuiErrorStyle.Render(iconError + " " + m.Err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(tuiDimStyle.Render(fmt.Sprintf("  step %s · %d edits", formatFloat(m.Step), m.Edits)))

	return b.String()
}

// nudgeCommand creates the nudge command.
func (c *CLI) nudgeCommand() *cobra.Command {
	var doc documentFlags

	cmd := &cobra.Command{
		Use:   "nudge [file]",
		Short: "Move nodes interactively and watch anchors and edges follow",
		Long: `Nudge populates a document and opens an interactive view. Arrow keys move
the selected node; its anchors are recomputed and edges refreshed after
every step.`,
		Example: `  canvasgraph nudge examples/flow.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			result, err := populate(ctx, doc.options(args[0]))
			if err != nil {
				return err
			}
			if result.Store.Nodes.Len() == 0 {
				printInfo(cmd.OutOrStdout(), "Document has no nodes")
				return nil
			}

			ctrl := interact.New(result.Store, loggerFromContext(ctx))
			p := tea.NewProgram(NewNudgeModel(ctx, ctrl),
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()))
			final, err := p.Run()
			if err != nil {
				return err
			}
			m, ok := final.(NudgeModel)
			if !ok {
				return nil
			}
			if m.Err != nil {
				printError(cmd.OutOrStdout(), "%s", errors.Detail(m.Err))
			}
			if m.Edits > 0 {
				printSuccess(cmd.OutOrStdout(), "%d edits applied", m.Edits)
			}
			return nil
		},
	}

	doc.register(cmd)
	return cmd
}
