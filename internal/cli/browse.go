package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kinship/pkg/config"
	"github.com/matzehuels/kinship/pkg/highlight"
	"github.com/matzehuels/kinship/pkg/pipeline"
	"github.com/matzehuels/kinship/pkg/tree"
)

var (
	browseSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	browseNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
	browseOffStyle      = lipgloss.NewStyle().Foreground(colorDim).Padding(0, 1)
)

// browseCommand opens the interactive highlight browser.
func (c *CLI) browseCommand() *cobra.Command {
	var highlights, viewport string

	cmd := &cobra.Command{
		Use:   "browse [tree.json]",
		Short: "Toggle highlights interactively and watch overlaps change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			vp, err := parseViewport(viewport)
			if err != nil {
				return err
			}
			t, err := loadTree(ctx, args[0])
			if err != nil {
				return err
			}
			file, reg, err := c.loadHighlights(ctx, highlights)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(false)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := c.pipelineOptions()
			opts.Viewport = vp
			m := newBrowseModel(ctx, runner, t, file, reg, opts, highlights)

			p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithOutput(cmd.OutOrStdout()))
			final, err := p.Run()
			if err != nil {
				return err
			}
			if bm, ok := final.(browseModel); ok && bm.err != nil {
				return bm.err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&highlights, "highlights", "H", "", "highlight definitions file (required)")
	cmd.Flags().StringVar(&viewport, "viewport", "", "cull to minX,minY,maxX,maxY")
	_ = cmd.MarkFlagRequired("highlights")

	return cmd
}

// =============================================================================
// browseModel
// =============================================================================

// browseModel lists the highlights of a file. Toggling a row removes or
// restores that highlight and reruns the pass; the memo cache makes returning
// to an earlier selection instant.
type browseModel struct {
	ctx    context.Context
	runner *pipeline.Runner
	view   tree.View
	opts   pipeline.Options

	specs   []config.HighlightSpec
	full    highlight.Registry
	defs    []highlight.Definition
	enabled []bool

	cursor   int
	result   *pipeline.Result
	savePath string
	status   string
	err      error
}

func newBrowseModel(ctx context.Context, runner *pipeline.Runner, v tree.View, file *config.HighlightFile, reg highlight.Registry, opts pipeline.Options, savePath string) browseModel {
	m := browseModel{
		ctx:      ctx,
		runner:   runner,
		view:     v,
		opts:     opts,
		specs:    file.Highlights,
		full:     reg,
		defs:     reg.Definitions(),
		savePath: savePath,
	}
	m.enabled = make([]bool, len(m.defs))
	for i := range m.enabled {
		m.enabled[i] = true
	}
	m.recompute()
	return m
}

// active returns the registry restricted to enabled rows.
func (m browseModel) active() highlight.Registry {
	reg := m.full
	for i, d := range m.defs {
		if !m.enabled[i] {
			reg = reg.Remove(d.ID)
		}
	}
	return reg
}

func (m *browseModel) recompute() {
	result, err := m.runner.Execute(m.ctx, m.active(), m.view, m.opts)
	if err != nil {
		m.err = err
		return
	}
	m.result = result
}

func (m *browseModel) setPriority(delta int) {
	d := m.defs[m.cursor]
	p := d.Priority + delta
	full, err := m.full.Update(d.ID, highlight.StylePatch{Priority: &p})
	if err != nil {
		m.status = err.Error()
		return
	}
	m.full = full
	m.defs[m.cursor], _ = full.Get(d.ID)
	if m.cursor < len(m.specs) {
		m.specs[m.cursor].Priority = p
	}
}

// save writes the enabled highlights back to the file they came from.
func (m *browseModel) save() {
	file := &config.HighlightFile{}
	for i, spec := range m.specs {
		if i < len(m.enabled) && m.enabled[i] {
			file.Highlights = append(file.Highlights, spec)
		}
	}
	if err := config.SaveHighlights(m.savePath, file); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("saved %s to %s", plural(len(file.Highlights), "highlight"), m.savePath)
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	}
	if len(m.defs) == 0 {
		return m, nil
	}
	m.status = ""

	// Slices are shared with the previous model value; copy before mutating.
	m.enabled = append([]bool(nil), m.enabled...)
	m.defs = append([]highlight.Definition(nil), m.defs...)
	m.specs = append([]config.HighlightSpec(nil), m.specs...)

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.defs)-1 {
			m.cursor++
		}
	case " ", "space", "enter":
		m.enabled[m.cursor] = !m.enabled[m.cursor]
		m.recompute()
	case "a", "n":
		for i := range m.enabled {
			m.enabled[i] = key.String() == "a"
		}
		m.recompute()
	case "+", "=":
		m.setPriority(1)
		m.recompute()
	case "-":
		m.setPriority(-1)
		m.recompute()
	case "s":
		m.save()
	}
	if m.err != nil {
		return m, tea.Quit
	}
	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Highlights"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ move  space toggle  a all  n none  +/- priority  s save  q quit"))
	b.WriteString("\n\n")

	if len(m.defs) == 0 {
		b.WriteString(StyleDim.Render("no highlights defined"))
		b.WriteString("\n")
		return b.String()
	}

	marks := make([]string, len(m.defs))
	for i := range m.defs {
		cursor := " "
		if i == m.cursor {
			cursor = "▸"
		}
		check := "[ ]"
		if m.enabled[i] {
			check = "[x]"
		}
		marks[i] = cursor + " " + check
	}

	var counts map[string]int
	if m.result != nil {
		counts = segmentCounts(m.result.Render)
	}
	b.WriteString(definitionTable(m.defs, counts, marks, func(row int) lipgloss.Style {
		switch {
		case row == m.cursor:
			return browseSelectedStyle
		case row < len(m.enabled) && !m.enabled[row]:
			return browseOffStyle
		default:
			return browseNormalStyle
		}
	}))
	b.WriteString("\n\n")

	if m.result != nil {
		b.WriteString(passLine(m.result))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(StyleWarning.Render(m.status))
		b.WriteString("\n")
	}
	return b.String()
}
