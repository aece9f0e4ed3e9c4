package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/kinship/pkg/highlight"
	"github.com/matzehuels/kinship/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleHeader   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(w, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Pass Display
// =============================================================================

// passLine summarizes a pass on one line:
// "3 highlights · 14 segments · 9 visible · 2 overlapping · full · cached".
func passLine(r *pipeline.Result) string {
	parts := []string{
		plural(r.Stats.Definitions, "highlight"),
		plural(r.Stats.Segments, "segment"),
		fmt.Sprintf("%d visible", r.Visible),
		fmt.Sprintf("%d overlapping", len(r.Render.Overlapping)),
		r.Render.Tier.String(),
	}
	status, style := iconFresh, styleComputed
	if r.CacheHit {
		status, style = iconCached, styleCached
	}

	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteString(StyleDim.Render(" · "))
		}
		b.WriteString(StyleDim.Render(p))
	}
	b.WriteString(StyleDim.Render(" · "))
	b.WriteString(style.Render(status))
	return b.String()
}

func printPass(w io.Writer, r *pipeline.Result) {
	fmt.Fprintln(w, "  "+passLine(r))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

// swatch renders a small block in the highlight color.
func swatch(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("██") + " " + color
}

// target describes what a definition points at, e.g. "p4 → p9".
func target(d highlight.Definition) string {
	switch d.Kind {
	case highlight.KindNodeToNode, highlight.KindConnectionOnly:
		return d.From + " " + iconArrow + " " + d.To
	case highlight.KindAncestryPath:
		return withDepth(d.From, d.MaxDepth)
	case highlight.KindSubtree:
		return withDepth(d.Root, d.MaxDepth)
	case highlight.KindTreeWide:
		if d.Filter != nil {
			return "filtered"
		}
		return "all"
	}
	return ""
}

func withDepth(id string, depth int) string {
	if depth > 0 {
		return fmt.Sprintf("%s (≤%d)", id, depth)
	}
	return id
}

// shortID trims generated UUIDs to their first block.
func shortID(id string) string {
	if len(id) == 36 && strings.Count(id, "-") == 4 {
		return id[:8]
	}
	return id
}

// segmentCounts returns how many rendered segments each highlight touches.
func segmentCounts(data highlight.RenderData) map[string]int {
	counts := make(map[string]int)
	for _, s := range data.Segments {
		for _, c := range s.Contributions {
			counts[c.HighlightID]++
		}
	}
	return counts
}

// definitionTable renders definitions with their visible segment counts.
// When marks is non-nil it adds a leading column of per-row markers.
func definitionTable(defs []highlight.Definition, counts map[string]int, marks []string, styleRow func(row int) lipgloss.Style) string {
	headers := []string{"ID", "Kind", "Target", "Color", "Priority", "Segments"}
	if marks != nil {
		headers = append([]string{""}, headers...)
	}
	rows := make([][]string, len(defs))
	for i, d := range defs {
		row := []string{
			shortID(d.ID),
			string(d.Kind),
			target(d),
			swatch(d.Style.Color),
			strconv.Itoa(d.Priority),
			strconv.Itoa(counts[d.ID]),
		}
		if marks != nil {
			row = append([]string{marks[i]}, row...)
		}
		rows[i] = row
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if styleRow != nil {
				return styleRow(row)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}
