package grid

import (
	"fmt"
	"regexp"
	"strings"
)

var lineBreak = regexp.MustCompile(`\r\n|\n|\r`)

// PasteResult summarises a Paste.
type PasteResult struct {
	// Rows is the number of non-blank lines written.
	Rows int
	// Added is the number of rows appended to fit the block.
	Added int
	// Last is the start of the last cell written.
	Last Cursor
}

// Paste writes tab-separated clipboard text into the grid starting at the
// cell under at. Every non-blank line goes into its own row, beginning at
// the cell covering at.Col and moving right one cell per value until the
// row runs out of cells. Rows are appended when the block is taller than
// what remains below at. Values that are not numbers are written as empty.
func (g *Grid) Paste(at Cursor, text string) (PasteResult, error) {
	res := PasteResult{Last: at}
	if g.Row(at.Row) == nil {
		return res, fmt.Errorf("%w: %d", ErrRowOutOfRange, at.Row)
	}
	if at.Col < 0 || at.Col >= g.Columns() {
		return res, fmt.Errorf("%w: %d", ErrColumnOutOfRange, at.Col)
	}

	row := at.Row
	for _, line := range lineBreak.Split(text, -1) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if res.Rows > 0 {
			row++
			if row >= len(g.rows) {
				g.AddRow()
				res.Added++
			}
		}
		r := g.rows[row]
		idx, _, _ := r.Locate(at.Col)
		for _, v := range strings.Split(line, "\t") {
			if idx >= len(r.Cells) {
				break
			}
			r.Cells[idx].Value = pasteValue(v)
			res.Last = Cursor{Row: row, Col: r.Start(idx)}
			idx++
		}
		res.Rows++
	}
	return res, nil
}

func pasteValue(v string) string {
	v = strings.TrimSpace(v)
	if !IsNumeric(v) {
		return ""
	}
	return v
}
