package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dtkav/curvegrid/internal/analysis"
	"github.com/dtkav/curvegrid/internal/grid"
)

const (
	// tableTop is the screen row of the first data row: header, blank,
	// instructions, blank, column labels, rule.
	tableTop = 6
	// gutterWidth is the row number column "%3d │".
	gutterWidth = 5

	minColWidth = 6
	maxColWidth = 14

	// resultHeight is the space kept below the table for the graph.
	resultHeight = 18
)

var (
	headerStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("4")).
			Foreground(lipgloss.Color("15")).
			Bold(true)

	instructionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))

	labelStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	ruleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("27")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("205"))
	mergedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	editStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("220"))

	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
)

// -------------------------
// Layout helpers
// -------------------------

// colWidths sizes each logical column to its label and unmerged values.
func (m *model) colWidths() []int {
	widths := make([]int, m.grid.Columns())
	for i, h := range m.grid.Headers() {
		widths[i] = runewidth.StringWidth(h)
	}
	for r := 0; r < m.grid.Len(); r++ {
		row := m.grid.Row(r)
		for i, c := range row.Cells {
			start := row.Start(i)
			if c.Width() == 1 && start < len(widths) {
				widths[start] = max(widths[start], runewidth.StringWidth(c.Value))
			}
		}
	}
	for i := range widths {
		widths[i] = min(maxColWidth, max(minColWidth, widths[i]))
	}
	return widths
}

// visibleRows is how many grid rows fit on screen.
func (m *model) visibleRows() int {
	reserved := tableTop + 3
	if m.result != nil {
		reserved += resultHeight
	}
	if m.help.ShowAll {
		reserved += 5
	}
	return max(3, m.winHeight-reserved)
}

// ensureCursorVisible scrolls the table so the cursor row is shown.
func (m *model) ensureCursorVisible() {
	n := m.visibleRows()
	switch {
	case m.cursor.Row < m.rowOffset:
		m.rowOffset = m.cursor.Row
	case m.cursor.Row >= m.rowOffset+n:
		m.rowOffset = m.cursor.Row - n + 1
	}
	m.rowOffset = max(0, min(m.rowOffset, m.grid.Len()-1))
}

// -------------------------
// Rendering Functions
// -------------------------

// renderHeader shows the graph title and the grid dimensions.
func (m *model) renderHeader() string {
	header := fmt.Sprintf(" curvegrid | %s | %d rows x %d columns", m.meta.Title, m.grid.Len(), m.grid.Columns())
	if n := m.grid.Selection().Len(); n > 0 {
		header += fmt.Sprintf(" | %d selected", n)
	}
	header += fmt.Sprintf(" | x: %s  y: %s ", m.meta.XLabel, m.meta.YLabel)
	return headerStyle.Render(header)
}

// renderTable draws the visible window of the grid.
func (m *model) renderTable() string {
	widths := m.colWidths()
	var b strings.Builder

	b.WriteString(strings.Repeat(" ", gutterWidth))
	for i, h := range m.grid.Headers() {
		b.WriteString(" " + labelStyle.Render(runewidth.FillRight(runewidth.Truncate(h, widths[i], "…"), widths[i])) + " " + ruleStyle.Render("│"))
	}
	b.WriteString("\n")

	total := gutterWidth
	for _, w := range widths {
		total += w + 3
	}
	b.WriteString(ruleStyle.Render(strings.Repeat("─", total)))

	if m.grid.Len() == 0 {
		b.WriteString("\n" + instructionStyle.Render("  empty grid, press enter or a to add a row"))
		return b.String()
	}

	end := min(m.grid.Len(), m.rowOffset+m.visibleRows())
	for r := m.rowOffset; r < end; r++ {
		b.WriteString("\n")
		b.WriteString(ruleStyle.Render(fmt.Sprintf("%3d │", r+1)))
		row := m.grid.Row(r)
		for i, c := range row.Cells {
			b.WriteString(m.renderCell(r, row.Start(i), c, widths) + ruleStyle.Render("│"))
		}
	}
	return b.String()
}

// renderCell pads a cell to the width of every column it spans.
func (m *model) renderCell(row, start int, c *grid.Cell, widths []int) string {
	w := -3
	for col := start; col < start+c.Width() && col < len(widths); col++ {
		w += widths[col] + 3
	}
	value := c.Value
	focused := row == m.cursor.Row && m.cursor.Col >= start && m.cursor.Col < start+c.Width()
	if focused && m.mode == modeEdit && m.target == editCell {
		value = m.input.Value() + "▏"
	}
	text := " " + runewidth.FillRight(runewidth.Truncate(value, w, "…"), w) + " "

	switch {
	case focused && m.mode == modeEdit && m.target == editCell:
		return editStyle.Render(text)
	case focused:
		return cursorStyle.Render(text)
	case m.grid.Selected(row, start):
		return selectedStyle.Render(text)
	case c.Width() > 1:
		return mergedStyle.Render(text)
	}
	return text
}

// renderStatus shows the spinner, an error, the active prompt or the last
// status message.
func (m *model) renderStatus() string {
	switch {
	case m.mode == modeEdit && m.target != editCell:
		return promptLabel(m.target) + " " + m.input.View()
	case m.busy:
		return m.spin.View() + " Generating graph..."
	case m.err != nil:
		return errorStyle.Render(errorText(m.err))
	case m.status != "":
		return statusStyle.Render(m.status)
	}
	return ""
}

func promptLabel(t editTarget) string {
	switch t {
	case editHeader:
		return "Column label:"
	case editTitle:
		return "Title:"
	case editXLabel:
		return "X axis:"
	case editYLabel:
		return "Y axis:"
	}
	return "Value:"
}

// errorText turns err into a notification line.
func errorText(err error) string {
	var netErr *analysis.NetworkError
	if errors.As(err, &netErr) {
		return "Network error. Please try again. (" + netErr.Err.Error() + ")"
	}
	var svcErr *analysis.ServiceError
	if errors.As(err, &svcErr) {
		return "Error: " + svcErr.Message
	}
	return err.Error()
}

// View renders the complete UI.
func (m *model) View() string {
	header := m.renderHeader()
	instructions := instructionStyle.Render("←→↑↓: Move | Enter: Edit | Space: Select | m: Merge | g: Graph | ?: Help | q: Quit")

	parts := []string{header, "", instructions, "", m.renderTable(), "", m.renderStatus()}
	if m.result != nil {
		parts = append(parts, renderResult(m.result, m.winWidth))
	}
	parts = append(parts, m.help.View(m.keys))
	return strings.Join(parts, "\n")
}
