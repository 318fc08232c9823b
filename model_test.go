package main

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dtkav/curvegrid/internal/analysis"
	"github.com/dtkav/curvegrid/internal/config"
	"github.com/dtkav/curvegrid/internal/grid"
)

// fakeAnalyzer records requests and answers with a fixed result.
type fakeAnalyzer struct {
	calls []analysis.Request
	resp  *analysis.Response
	err   error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req analysis.Request) (*analysis.Response, error) {
	f.calls = append(f.calls, req)
	return f.resp, f.err
}

func newTestModel(t *testing.T) (*model, *fakeAnalyzer) {
	t.Helper()
	cfg := config.Default()
	dir := t.TempDir()
	cfg.SheetPath = filepath.Join(dir, "grid.xlsx")
	cfg.ChartPath = filepath.Join(dir, "graph.png")
	fake := &fakeAnalyzer{}
	return newModel(grid.NewDefault(), cfg, fake, nil), fake
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m *model, msgs ...tea.Msg) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

// drain runs cmd and every command it batches, returning the messages.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestNewModelStartsWithSampleGrid(t *testing.T) {
	m, _ := newTestModel(t)
	if m.grid.Columns() != 3 {
		t.Errorf("Expected 3 columns, got %d", m.grid.Columns())
	}
	if m.grid.Len() != len(grid.SampleRows) {
		t.Errorf("Expected %d rows, got %d", len(grid.SampleRows), m.grid.Len())
	}
	if m.meta.Title != "Graph" {
		t.Errorf("Expected default title, got %q", m.meta.Title)
	}
}

func TestSubmitEmptyGridSendsNothing(t *testing.T) {
	m, fake := newTestModel(t)
	m.grid.Reset(grid.DefaultResetRows)

	cmd := press(t, m, runes("g"))
	if cmd != nil {
		t.Errorf("Expected no command for an empty grid")
	}
	if !errors.Is(m.err, grid.ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", m.err)
	}
	if len(fake.calls) != 0 {
		t.Errorf("Expected no requests, got %d", len(fake.calls))
	}
	if !strings.Contains(m.View(), "please enter data") {
		t.Errorf("Expected the error in the view")
	}
}

func TestSubmitRunsAnalysis(t *testing.T) {
	m, fake := newTestModel(t)
	fake.resp = &analysis.Response{
		Series: []analysis.Series{{Name: "Charge (V)", Data: []float64{0, 1}}},
		XData:  []float64{0, 1},
		Layout: analysis.Layout{Title: "Graph"},
	}

	cmd := press(t, m, runes("g"))
	if cmd == nil || !m.busy {
		t.Fatalf("Expected a pending request")
	}
	if again := press(t, m, runes("g")); again != nil {
		t.Errorf("Expected a second submit to be ignored while busy")
	}

	for _, msg := range drain(cmd) {
		if _, ok := msg.(analysisMsg); ok {
			press(t, m, msg)
		}
	}
	if m.busy {
		t.Errorf("Expected busy to clear")
	}
	if m.result != fake.resp {
		t.Errorf("Expected the response to be kept")
	}
	if len(fake.calls) != 1 {
		t.Fatalf("Expected 1 request, got %d", len(fake.calls))
	}
	req := fake.calls[0]
	if len(req.Data) != len(grid.SampleRows) || req.AxisLabels.X != "Time" {
		t.Errorf("Unexpected request %+v", req)
	}
}

func TestAnalysisErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"service", &analysis.ServiceError{Status: 400, Message: "No data provided"}, "Error: No data provided"},
		{"network", &analysis.NetworkError{Endpoint: "http://x", Err: errors.New("refused")}, "Network error."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(t)
			m.busy = true
			press(t, m, analysisMsg{err: tt.err})
			if m.busy {
				t.Errorf("Expected busy to clear")
			}
			if !strings.Contains(m.View(), tt.want) {
				t.Errorf("Expected %q in view", tt.want)
			}
			// The grid stays editable.
			press(t, m, runes("a"))
			if m.grid.Len() != len(grid.SampleRows)+1 {
				t.Errorf("Expected a row to be added after the error")
			}
		})
	}
}

func TestEditEnterAtBottomAddsRow(t *testing.T) {
	m, _ := newTestModel(t)
	last := m.grid.Len() - 1
	m.cursor = grid.Cursor{Row: last, Col: 1}

	press(t, m, runes("7"))
	if m.mode != modeEdit || m.input.Value() != "7" {
		t.Fatalf("Expected edit mode with 7, got mode %d value %q", m.mode, m.input.Value())
	}
	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.mode != modeNormal {
		t.Errorf("Expected normal mode after commit")
	}
	c, _, _ := m.grid.CellAt(last, 1)
	if c.Value != "7" {
		t.Errorf("Expected 7, got %q", c.Value)
	}
	if m.grid.Len() != last+2 {
		t.Errorf("Expected a new row, got %d rows", m.grid.Len())
	}
	if m.cursor != (grid.Cursor{Row: last + 1, Col: 1}) {
		t.Errorf("Unexpected cursor %+v", m.cursor)
	}
}

func TestEditRejectsText(t *testing.T) {
	m, _ := newTestModel(t)
	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m.input.SetValue("abc")
	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if !errors.Is(m.err, grid.ErrNotNumeric) {
		t.Errorf("Expected ErrNotNumeric, got %v", m.err)
	}
	if m.mode != modeEdit {
		t.Errorf("Expected to stay in edit mode")
	}
	press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	c, _, _ := m.grid.CellAt(0, 0)
	if c.Value != grid.SampleRows[0][0] {
		t.Errorf("Expected cell untouched, got %q", c.Value)
	}
}

func TestEditLabels(t *testing.T) {
	tests := []struct {
		key  string
		get  func(m *model) string
		want string
	}{
		{"H", func(m *model) string { return m.grid.Headers()[0] }, "Seconds"},
		{"t", func(m *model) string { return m.meta.Title }, "RC circuit"},
		{"x", func(m *model) string { return m.meta.XLabel }, "t"},
		{"y", func(m *model) string { return m.meta.YLabel }, "V"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m, _ := newTestModel(t)
			press(t, m, runes(tt.key))
			m.input.SetValue(tt.want)
			press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
			if got := tt.get(m); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
			if m.grid.Len() != len(grid.SampleRows) {
				t.Errorf("Label edits must not add rows")
			}
		})
	}
}

func TestMergeViaKeys(t *testing.T) {
	m, _ := newTestModel(t)
	press(t, m, runes(" "), runes("l"), runes(" "), runes("m"))

	if m.err != nil {
		t.Fatalf("Merge: %v", m.err)
	}
	row := m.grid.Row(0)
	if len(row.Cells) != 2 || row.Cells[0].Span != 2 {
		t.Errorf("Expected a span 2 cell, got %+v", row.Cells)
	}
	if m.grid.Selection().Len() != 0 {
		t.Errorf("Expected selection to clear after merge")
	}

	press(t, m, runes("u"))
	if len(m.grid.Row(0).Cells) != 3 {
		t.Errorf("Expected unmerge to restore 3 cells")
	}
}

func TestMergeSingleCellFails(t *testing.T) {
	m, _ := newTestModel(t)
	press(t, m, runes(" "), runes("m"))
	if !errors.Is(m.err, grid.ErrInsufficientSelection) {
		t.Errorf("Expected ErrInsufficientSelection, got %v", m.err)
	}
}

func TestRemoveLastColumnFails(t *testing.T) {
	m, _ := newTestModel(t)
	press(t, m, runes("D"), runes("D"))
	if m.err != nil {
		t.Fatalf("Unexpected error %v", m.err)
	}
	press(t, m, runes("D"))
	if !errors.Is(m.err, grid.ErrMinimumColumns) {
		t.Errorf("Expected ErrMinimumColumns, got %v", m.err)
	}
	if m.grid.Columns() != 1 {
		t.Errorf("Expected 1 column, got %d", m.grid.Columns())
	}
}

func TestPasteFromClipboard(t *testing.T) {
	orig := clipboardRead
	t.Cleanup(func() { clipboardRead = orig })
	clipboardRead = func() (string, error) { return "1\t2\n\n3\tx\n", nil }

	m, _ := newTestModel(t)
	m.grid.Reset(1)
	press(t, m, runes("p"))

	if m.err != nil {
		t.Fatalf("Paste: %v", m.err)
	}
	want := [][]string{{"1", "2", ""}, {"3", "", ""}}
	got := m.grid.Data()
	if len(got) != len(want) {
		t.Fatalf("Expected %d rows, got %v", len(want), got)
	}
	for i := range want {
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Errorf("Cell %d,%d: expected %q, got %q", i, j, want[i][j], got[i][j])
			}
		}
	}
	if m.cursor != (grid.Cursor{Row: 1, Col: 1}) {
		t.Errorf("Unexpected cursor %+v", m.cursor)
	}
}

func TestPasteClipboardFailure(t *testing.T) {
	orig := clipboardRead
	t.Cleanup(func() { clipboardRead = orig })
	clipboardRead = func() (string, error) { return "", errors.New("no clipboard") }

	m, _ := newTestModel(t)
	press(t, m, runes("p"))
	if m.err == nil {
		t.Errorf("Expected an error")
	}
}

func TestMouseClick(t *testing.T) {
	m, _ := newTestModel(t)
	click := func(row, col int, ctrl bool) {
		x := gutterWidth + 1
		for _, w := range m.colWidths()[:col] {
			x += w + 3
		}
		press(t, m, tea.MouseMsg{
			X:      x,
			Y:      tableTop + row,
			Ctrl:   ctrl,
			Action: tea.MouseActionPress,
			Button: tea.MouseButtonLeft,
		})
	}

	click(1, 0, true)
	click(1, 1, true)
	if m.grid.Selection().Len() != 2 {
		t.Fatalf("Expected 2 selected cells, got %d", m.grid.Selection().Len())
	}
	if m.cursor != (grid.Cursor{Row: 1, Col: 1}) {
		t.Errorf("Unexpected cursor %+v", m.cursor)
	}

	click(2, 2, false)
	if m.grid.Selection().Len() != 0 {
		t.Errorf("Expected a plain click to clear the selection")
	}
	if m.cursor != (grid.Cursor{Row: 2, Col: 2}) {
		t.Errorf("Unexpected cursor %+v", m.cursor)
	}
}

func TestSaveClearOpen(t *testing.T) {
	m, _ := newTestModel(t)
	want := m.grid.Data()

	press(t, m, runes("s"))
	if m.err != nil {
		t.Fatalf("Save: %v", m.err)
	}
	press(t, m, runes("c"))
	if m.grid.Len() != grid.DefaultResetRows {
		t.Fatalf("Expected %d rows after clear, got %d", grid.DefaultResetRows, m.grid.Len())
	}
	press(t, m, runes("o"))
	if m.err != nil {
		t.Fatalf("Open: %v", m.err)
	}
	got := m.grid.Data()
	if len(got) != len(want) {
		t.Fatalf("Expected %d rows, got %d", len(want), len(got))
	}
	// Numbers come back in their shortest form ("0.0" reads as "0").
	for i := range want {
		for j := range want[i] {
			w, _ := strconv.ParseFloat(want[i][j], 64)
			g, err := strconv.ParseFloat(got[i][j], 64)
			if err != nil || g != w {
				t.Errorf("Cell %d,%d: expected %s, got %q", i, j, want[i][j], got[i][j])
			}
		}
	}
}

func TestExportNeedsResult(t *testing.T) {
	m, _ := newTestModel(t)
	press(t, m, runes("P"))
	if m.err == nil {
		t.Errorf("Expected an error before any graph exists")
	}
}

func TestScrollKeepsCursorVisible(t *testing.T) {
	m, _ := newTestModel(t)
	press(t, m, tea.WindowSizeMsg{Width: 80, Height: 14})
	for i := 0; i < 20; i++ {
		press(t, m, runes("a"))
	}
	n := m.visibleRows()
	if m.cursor.Row < m.rowOffset || m.cursor.Row >= m.rowOffset+n {
		t.Errorf("Cursor row %d outside window %d+%d", m.cursor.Row, m.rowOffset, n)
	}
	if !strings.Contains(m.View(), "26 │") {
		t.Errorf("Expected the last row to be drawn")
	}
}
