package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dtkav/curvegrid/internal/analysis"
	"github.com/dtkav/curvegrid/internal/chart"
	"github.com/dtkav/curvegrid/internal/config"
	"github.com/dtkav/curvegrid/internal/grid"
	"github.com/dtkav/curvegrid/internal/sheetio"
)

// clipboardRead is swapped out in tests.
var clipboardRead = clipboard.ReadAll

// -------------------------
// Model
// -------------------------

type mode int

const (
	modeNormal mode = iota
	modeEdit
)

// editTarget is what the text input writes to when committed.
type editTarget int

const (
	editCell editTarget = iota
	editHeader
	editTitle
	editXLabel
	editYLabel
)

// analyzer is the part of analysis.Client the UI needs.
type analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Response, error)
}

// model holds the application state.
type model struct {
	grid   *grid.Grid
	cursor grid.Cursor
	meta   analysis.Meta

	cfg    config.Config
	client analyzer
	logger *slog.Logger

	mode   mode
	target editTarget
	input  textinput.Model

	keys keyMap
	help help.Model
	spin spinner.Model

	// busy is set while an analysis request is in flight.
	busy   bool
	result *analysis.Response

	status string
	err    error

	// Window dimensions.
	winWidth, winHeight int
	// rowOffset is the first grid row shown.
	rowOffset int
}

// analysisMsg carries the outcome of an analysis request.
type analysisMsg struct {
	resp *analysis.Response
	err  error
}

func newModel(g *grid.Grid, cfg config.Config, client analyzer, logger *slog.Logger) *model {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	in := textinput.New()
	in.Prompt = "› "
	in.CharLimit = 64

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &model{
		grid:   g,
		meta:   cfg.Meta(),
		cfg:    cfg,
		client: client,
		logger: logger,
		input:  in,
		keys:   defaultKeyMap(),
		help:   help.New(),
		spin:   sp,
		// Defaults for window dimensions; they will be updated on WindowSizeMsg.
		winWidth:  80,
		winHeight: 24,
	}
}

// -------------------------
// Commands and Init
// -------------------------

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

// analyzeCmd runs req against the client off the UI loop.
func analyzeCmd(client analyzer, req analysis.Request, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := client.Analyze(ctx, req)
		return analysisMsg{resp: resp, err: err}
	}
}

// -------------------------
// Update
// -------------------------

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.winWidth = msg.Width
		m.winHeight = msg.Height
		m.help.Width = msg.Width
		m.ensureCursorVisible()
		return m, nil

	case analysisMsg:
		m.busy = false
		if msg.err != nil {
			m.logger.Warn("analysis failed", "error", msg.err)
			m.err = msg.err
			return m, nil
		}
		m.result = msg.resp
		m.err = nil
		m.status = "Graph updated"
		m.ensureCursorVisible()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		if m.mode == modeNormal {
			m.handleMouse(msg)
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeEdit {
			return m.updateEdit(msg)
		}
		return m.updateNormal(msg)
	}

	if m.mode == modeEdit {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// updateNormal handles keys while no text input is active.
func (m *model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	// Navigation
	case key.Matches(msg, m.keys.Up):
		m.cursor = m.grid.Up(m.cursor)
	case key.Matches(msg, m.keys.Down):
		m.cursor = m.grid.Down(m.cursor)
	case key.Matches(msg, m.keys.Left):
		m.cursor = m.grid.Left(m.cursor)
	case key.Matches(msg, m.keys.Right):
		m.cursor = m.grid.Right(m.cursor)

	// Selection and merge
	case key.Matches(msg, m.keys.Select):
		m.setErr(m.grid.Click(m.cursor.Row, m.cursor.Col, true))
	case key.Matches(msg, m.keys.Deselect):
		m.grid.Selection().Clear()
	case key.Matches(msg, m.keys.Merge):
		if m.setErr(m.grid.Merge()) {
			m.status = "Cells merged"
		}
	case key.Matches(msg, m.keys.Unmerge):
		m.setErr(m.grid.Unmerge(m.cursor.Row, m.cursor.Col))

	// Structure
	case key.Matches(msg, m.keys.AddRow):
		m.grid.AddRow()
		m.cursor = grid.Cursor{Row: m.grid.Len() - 1, Col: m.cursor.Col}
	case key.Matches(msg, m.keys.DelRow):
		if m.grid.Len() > 0 {
			m.setErr(m.grid.RemoveRow(m.cursor.Row))
		}
	case key.Matches(msg, m.keys.AddCol):
		m.grid.AddColumn()
	case key.Matches(msg, m.keys.DelCol):
		m.setErr(m.grid.RemoveColumn())
	case key.Matches(msg, m.keys.Clear):
		m.grid.Reset(grid.DefaultResetRows)
		m.cursor = grid.Cursor{}
		m.status = "Grid cleared"

	// Clipboard
	case key.Matches(msg, m.keys.Paste):
		m.paste()

	// Text entry
	case key.Matches(msg, m.keys.Edit):
		cmd = m.startEdit(editCell, "")
	case key.Matches(msg, m.keys.Header):
		cmd = m.startEdit(editHeader, "")
	case key.Matches(msg, m.keys.Title):
		cmd = m.startEdit(editTitle, "")
	case key.Matches(msg, m.keys.XLabel):
		cmd = m.startEdit(editXLabel, "")
	case key.Matches(msg, m.keys.YLabel):
		cmd = m.startEdit(editYLabel, "")

	// Output
	case key.Matches(msg, m.keys.Analyze):
		cmd = m.submit()
	case key.Matches(msg, m.keys.Save):
		m.save()
	case key.Matches(msg, m.keys.Open):
		m.open()
	case key.Matches(msg, m.keys.Export):
		m.exportPNG()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	default:
		// Typing a number starts editing the cell with it.
		if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && strings.ContainsRune("0123456789-.+", msg.Runes[0]) {
			cmd = m.startEdit(editCell, string(msg.Runes))
		}
	}

	m.cursor = m.grid.Clamp(m.cursor)
	m.ensureCursorVisible()
	return m, cmd
}

// updateEdit handles keys while the text input is active.
func (m *model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.stopEdit()
		return m, nil
	case tea.KeyEnter:
		if m.commitEdit() && m.target == editCell {
			m.cursor = m.grid.Enter(m.cursor)
		}
	case tea.KeyUp, tea.KeyDown, tea.KeyTab:
		if m.target != editCell {
			break
		}
		if m.commitEdit() {
			switch msg.Type {
			case tea.KeyUp:
				m.cursor = m.grid.Up(m.cursor)
			case tea.KeyDown:
				m.cursor = m.grid.Down(m.cursor)
			default:
				m.cursor = m.grid.Right(m.cursor)
			}
		}
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	m.ensureCursorVisible()
	return m, nil
}

// setErr records err for the status line and reports whether it was nil.
func (m *model) setErr(err error) bool {
	m.err = err
	return err == nil
}

// -------------------------
// Editing
// -------------------------

func (m *model) startEdit(target editTarget, initial string) tea.Cmd {
	var value string
	switch target {
	case editCell:
		if m.grid.Len() == 0 {
			m.grid.AddRow()
			m.cursor = grid.Cursor{Col: m.cursor.Col}
		}
		c, _, err := m.grid.CellAt(m.cursor.Row, m.cursor.Col)
		if err != nil {
			m.err = err
			return nil
		}
		value = c.Value
		m.input.Placeholder = "number"
	case editHeader:
		value = m.grid.Headers()[m.cursor.Col]
		m.input.Placeholder = "column label"
	case editTitle:
		value = m.meta.Title
		m.input.Placeholder = "graph title"
	case editXLabel:
		value = m.meta.XLabel
		m.input.Placeholder = "x axis label"
	case editYLabel:
		value = m.meta.YLabel
		m.input.Placeholder = "y axis label"
	}
	if initial != "" {
		value = initial
	}
	m.mode = modeEdit
	m.target = target
	m.err = nil
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *model) stopEdit() {
	m.mode = modeNormal
	m.input.Blur()
	m.input.Reset()
}

// commitEdit writes the input to its target. A rejected cell value keeps
// the input open.
func (m *model) commitEdit() bool {
	value := m.input.Value()
	switch m.target {
	case editCell:
		if err := m.grid.SetCell(m.cursor.Row, m.cursor.Col, value); err != nil {
			m.err = err
			return false
		}
	case editHeader:
		if err := m.grid.SetHeader(m.cursor.Col, value); err != nil {
			m.err = err
			return false
		}
	case editTitle:
		m.meta.Title = value
	case editXLabel:
		m.meta.XLabel = value
	case editYLabel:
		m.meta.YLabel = value
	}
	m.err = nil
	m.stopEdit()
	return true
}

// paste imports the clipboard at the cursor.
func (m *model) paste() {
	text, err := clipboardRead()
	if err != nil {
		m.err = fmt.Errorf("read clipboard: %w", err)
		return
	}
	if m.grid.Len() == 0 {
		m.grid.AddRow()
	}
	res, err := m.grid.Paste(m.grid.Clamp(m.cursor), text)
	if err != nil {
		m.err = err
		return
	}
	m.cursor = res.Last
	m.status = fmt.Sprintf("Pasted %d rows", res.Rows)
	m.logger.Debug("paste", "rows", res.Rows, "added", res.Added)
}

// -------------------------
// Mouse
// -------------------------

// handleMouse focuses the clicked cell. Ctrl or Alt toggles it in the
// selection, a plain click clears the selection.
func (m *model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return
	}
	c, ok := m.cellAtPoint(msg.X, msg.Y)
	if !ok {
		return
	}
	m.cursor = c
	m.setErr(m.grid.Click(c.Row, c.Col, msg.Ctrl || msg.Alt))
}

// cellAtPoint maps screen coordinates onto the grid as drawn by viewTable.
func (m *model) cellAtPoint(x, y int) (grid.Cursor, bool) {
	row := y - tableTop + m.rowOffset
	if y < tableTop || row >= m.grid.Len() || row >= m.rowOffset+m.visibleRows() {
		return grid.Cursor{}, false
	}
	pos := gutterWidth
	for col, w := range m.colWidths() {
		if x >= pos && x < pos+w+3 {
			return grid.Cursor{Row: row, Col: col}, true
		}
		pos += w + 3
	}
	return grid.Cursor{}, false
}

// -------------------------
// Analysis and files
// -------------------------

// submit snapshots the grid and starts an analysis request.
func (m *model) submit() tea.Cmd {
	if m.busy {
		return nil
	}
	req, err := analysis.BuildRequest(m.grid, m.meta)
	if err != nil {
		m.err = err
		return nil
	}
	m.busy = true
	m.err = nil
	m.status = ""
	m.logger.Info("submit", "rows", len(req.Data), "columns", len(req.Headers))
	return tea.Batch(m.spin.Tick, analyzeCmd(m.client, req, m.cfg.Timeout))
}

func (m *model) save() {
	if err := sheetio.Save(m.cfg.SheetPath, m.grid, m.meta); err != nil {
		m.err = err
		return
	}
	m.status = "Saved " + m.cfg.SheetPath
}

func (m *model) open() {
	g, meta, err := sheetio.Load(m.cfg.SheetPath)
	if err != nil {
		m.err = err
		return
	}
	m.grid = g
	m.cursor = grid.Cursor{}
	m.rowOffset = 0
	if meta.Title != "" || meta.XLabel != "" || meta.YLabel != "" {
		m.meta = meta
	}
	m.status = "Opened " + m.cfg.SheetPath
}

func (m *model) exportPNG() {
	if m.result == nil {
		m.err = errors.New("generate a graph first")
		return
	}
	f, err := os.Create(m.cfg.ChartPath)
	if err != nil {
		m.err = err
		return
	}
	defer f.Close()
	opts := chart.Options{Width: m.cfg.ChartWidth, Height: m.cfg.ChartHeight}
	if err := chart.RenderPNG(f, m.result, opts); err != nil {
		m.err = err
		return
	}
	m.status = "Wrote " + m.cfg.ChartPath
}
