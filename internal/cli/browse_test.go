package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/kinship/pkg/cache"
	"github.com/matzehuels/kinship/pkg/config"
	"github.com/matzehuels/kinship/pkg/highlight"
	"github.com/matzehuels/kinship/pkg/pipeline"
	"github.com/matzehuels/kinship/pkg/tree"
)

func newTestBrowseModel(t *testing.T) browseModel {
	t.Helper()
	f := newFixture(t)

	tr, err := tree.ReadGraphFile(f.tree)
	if err != nil {
		t.Fatal(err)
	}
	file, err := config.LoadHighlights(f.highlights)
	if err != nil {
		t.Fatal(err)
	}
	reg, err := file.Registry(highlight.Style{})
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(cache.NewMemoryCache(16, 0), nil, nil)
	t.Cleanup(func() { runner.Close() })

	m := newBrowseModel(context.Background(), runner, tr, file, reg, pipeline.Options{}, filepath.Join(f.dir, "saved.yaml"))
	if m.err != nil {
		t.Fatalf("initial pass: %v", m.err)
	}
	return m
}

func press(t *testing.T, m browseModel, keys ...tea.KeyMsg) browseModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(browseModel)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBrowseModelInitialPass(t *testing.T) {
	m := newTestBrowseModel(t)

	if len(m.defs) != 2 {
		t.Fatalf("defs = %d, want 2", len(m.defs))
	}
	if m.result.Stats.Segments != 4 || m.result.Stats.Overlapping != 2 {
		t.Errorf("stats = %+v, want 4 segments, 2 overlapping", m.result.Stats)
	}
	view := m.View()
	for _, want := range []string{"▸ [x]", "line", "all", "2 overlapping"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestBrowseModelCursor(t *testing.T) {
	m := newTestBrowseModel(t)

	m = press(t, m, runes("k"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d after k at top, want 0", m.cursor)
	}
	m = press(t, m, runes("j"), runes("j"))
	if m.cursor != 1 {
		t.Errorf("cursor = %d after j j, want 1 (clamped)", m.cursor)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 0 {
		t.Errorf("cursor = %d after up, want 0", m.cursor)
	}
}

func TestBrowseModelToggle(t *testing.T) {
	m := newTestBrowseModel(t)
	before := m

	// Disable "all" (row 1): only the ancestry line remains.
	m = press(t, m, runes("j"), tea.KeyMsg{Type: tea.KeySpace})
	if m.enabled[1] {
		t.Fatal("row 1 should be disabled")
	}
	if got := m.result.Stats; got.Definitions != 1 || got.Segments != 2 || got.Overlapping != 0 {
		t.Errorf("stats = %+v, want 1 definition, 2 segments, 0 overlapping", got)
	}
	if !before.enabled[1] {
		t.Error("toggle mutated the previous model")
	}
	if !strings.Contains(m.View(), "[ ]") {
		t.Error("view should show an unchecked row")
	}

	// Re-enabling returns to the first selection, which is memoized.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.result.CacheHit {
		t.Error("re-enabling should hit the pass cache")
	}
	if m.result.Stats.Segments != 4 {
		t.Errorf("segments = %d, want 4", m.result.Stats.Segments)
	}
}

func TestBrowseModelAllNone(t *testing.T) {
	m := newTestBrowseModel(t)

	m = press(t, m, runes("n"))
	if m.result.Stats.Definitions != 0 || len(m.result.Render.Segments) != 0 {
		t.Errorf("none: stats = %+v", m.result.Stats)
	}
	m = press(t, m, runes("a"))
	if m.result.Stats.Definitions != 2 {
		t.Errorf("all: definitions = %d, want 2", m.result.Stats.Definitions)
	}
}

func TestBrowseModelPriority(t *testing.T) {
	m := newTestBrowseModel(t)

	m = press(t, m, runes("+"), runes("+"))
	if m.defs[0].Priority != 2 || m.specs[0].Priority != 2 {
		t.Errorf("priority = %d/%d, want 2", m.defs[0].Priority, m.specs[0].Priority)
	}
	d, _ := m.full.Get(m.defs[0].ID)
	if d.Priority != 2 {
		t.Errorf("registry priority = %d, want 2", d.Priority)
	}
	m = press(t, m, runes("-"))
	if m.defs[0].Priority != 1 {
		t.Errorf("priority = %d after -, want 1", m.defs[0].Priority)
	}
}

func TestBrowseModelSave(t *testing.T) {
	m := newTestBrowseModel(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace}, runes("s"))
	if !strings.Contains(m.status, "saved 1 highlight") {
		t.Fatalf("status = %q", m.status)
	}

	saved, err := config.LoadHighlights(m.savePath)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(saved.Highlights) != 1 || saved.Highlights[0].ID != "all" {
		t.Errorf("saved = %+v, want only \"all\"", saved.Highlights)
	}
}

func TestBrowseModelQuit(t *testing.T) {
	m := newTestBrowseModel(t)

	for _, k := range []tea.KeyMsg{runes("q"), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		if _, cmd := m.Update(k); cmd == nil {
			t.Errorf("%s should quit", k)
		}
	}
	if _, cmd := m.Update(tea.WindowSizeMsg{Width: 80}); cmd != nil {
		t.Error("non-key messages should be ignored")
	}
}

func TestBrowseModelEmpty(t *testing.T) {
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
	m := newBrowseModel(context.Background(), runner, tree.New(), &config.HighlightFile{}, highlight.NewRegistry(), pipeline.Options{}, "")

	m = press(t, m, runes("j"), tea.KeyMsg{Type: tea.KeySpace})
	if !strings.Contains(m.View(), "no highlights defined") {
		t.Errorf("view = %q", m.View())
	}
}
