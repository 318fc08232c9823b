// Package grid holds the editable measurement table: typed cells, rows,
// dynamic columns, horizontal merges, selection, keyboard navigation and
// clipboard paste.
//
// Columns are addressed logically. A merged cell with Span n covers n
// logical columns and the cells it absorbed are gone from the row, so a
// row's physical cell count can be smaller than the column count while the
// sum of its spans always equals it.
package grid

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// DefaultResetRows is the number of empty rows Reset leaves behind.
const DefaultResetRows = 5

// DefaultHeaders label the columns of a freshly initialised grid.
var DefaultHeaders = []string{"Time (s)", "Charge (V)", "Discharge (V)"}

// SampleRows is a charge/discharge curve of an RC circuit, one row per second.
var SampleRows = [][]string{
	{"0.0", "0.00", "10.00"},
	{"1.0", "6.32", "3.68"},
	{"2.0", "8.65", "1.35"},
	{"3.0", "9.50", "0.50"},
	{"4.0", "9.82", "0.18"},
	{"5.0", "9.93", "0.07"},
}

// Cell is one editable data cell.
type Cell struct {
	ID    uint64
	Value string
	// Span is the number of logical columns the cell covers. Zero reads as 1.
	Span int
}

// Width returns the number of logical columns covered by c.
func (c *Cell) Width() int {
	if c.Span < 1 {
		return 1
	}
	return c.Span
}

// Row is an ordered sequence of cells.
type Row struct {
	ID    uint64
	Cells []*Cell
}

// Width returns the sum of the spans of r's cells.
func (r *Row) Width() int {
	w := 0
	for _, c := range r.Cells {
		w += c.Width()
	}
	return w
}

// Locate returns the index of the cell covering logical column col and
// the logical column that cell starts at.
func (r *Row) Locate(col int) (idx, start int, ok bool) {
	if col < 0 {
		return 0, 0, false
	}
	for i, c := range r.Cells {
		if col < start+c.Width() {
			return i, start, true
		}
		start += c.Width()
	}
	return 0, 0, false
}

// Start returns the logical column where the cell at physical index idx begins.
func (r *Row) Start(idx int) int {
	start := 0
	for _, c := range r.Cells[:idx] {
		start += c.Width()
	}
	return start
}

// Values returns the row's text with merged cells repeated once per column.
func (r *Row) Values() []string {
	out := make([]string, 0, r.Width())
	for _, c := range r.Cells {
		for i := 0; i < c.Width(); i++ {
			out = append(out, c.Value)
		}
	}
	return out
}

// Blank reports whether every cell of r is empty.
func (r *Row) Blank() bool {
	for _, c := range r.Cells {
		if c.Value != "" {
			return false
		}
	}
	return true
}

// Grid is a rectangular table with one header per logical column.
type Grid struct {
	headers []string
	rows    []*Row
	sel     Selection
	nextID  uint64
}

// New creates an empty grid with the given header labels. With no labels
// the grid starts with a single "Col 1" column.
func New(headers ...string) *Grid {
	if len(headers) == 0 {
		headers = []string{"Col 1"}
	}
	return &Grid{headers: slices.Clone(headers)}
}

// NewDefault creates the three-column grid prefilled with SampleRows.
func NewDefault() *Grid {
	g := New(DefaultHeaders...)
	for _, values := range SampleRows {
		g.AddRow(values...)
	}
	return g
}

func (g *Grid) id() uint64 {
	g.nextID++
	return g.nextID
}

func (g *Grid) newCell(value string) *Cell {
	return &Cell{ID: g.id(), Value: value, Span: 1}
}

// Columns returns the logical column count.
func (g *Grid) Columns() int { return len(g.headers) }

// Len returns the number of rows.
func (g *Grid) Len() int { return len(g.rows) }

// Headers returns a copy of the header labels.
func (g *Grid) Headers() []string { return slices.Clone(g.headers) }

// Row returns the row at index i, or nil when out of range.
func (g *Grid) Row(i int) *Row {
	if i < 0 || i >= len(g.rows) {
		return nil
	}
	return g.rows[i]
}

// Data returns every row expanded with Row.Values.
func (g *Grid) Data() [][]string {
	out := make([][]string, len(g.rows))
	for i, r := range g.rows {
		out[i] = r.Values()
	}
	return out
}

// Selection returns the grid's selection set.
func (g *Grid) Selection() *Selection { return &g.sel }

// CellAt returns the cell covering (row, col) and its starting column.
func (g *Grid) CellAt(row, col int) (*Cell, int, error) {
	r := g.Row(row)
	if r == nil {
		return nil, 0, fmt.Errorf("%w: %d", ErrRowOutOfRange, row)
	}
	idx, start, ok := r.Locate(col)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %d", ErrColumnOutOfRange, col)
	}
	return r.Cells[idx], start, nil
}

// AddRow appends a row with one empty cell per column, filled from values
// position by position.
func (g *Grid) AddRow(values ...string) *Row {
	r := &Row{ID: g.id(), Cells: make([]*Cell, g.Columns())}
	for i := range r.Cells {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		r.Cells[i] = g.newCell(v)
	}
	g.rows = append(g.rows, r)
	return r
}

// AddColumn appends a column labelled "Col N" and an empty cell at the end
// of every row.
func (g *Grid) AddColumn() {
	g.headers = append(g.headers, fmt.Sprintf("Col %d", len(g.headers)+1))
	for _, r := range g.rows {
		r.Cells = append(r.Cells, g.newCell(""))
	}
}

// RemoveColumn drops the last logical column. A merged cell ending in that
// column shrinks by one instead of disappearing.
func (g *Grid) RemoveColumn() error {
	if g.Columns() <= 1 {
		return ErrMinimumColumns
	}
	g.headers = g.headers[:len(g.headers)-1]
	for _, r := range g.rows {
		last := r.Cells[len(r.Cells)-1]
		if last.Width() > 1 {
			last.Span = last.Width() - 1
			continue
		}
		r.Cells = r.Cells[:len(r.Cells)-1]
	}
	g.pruneSelection()
	return nil
}

// RemoveRow deletes the row at index i.
func (g *Grid) RemoveRow(i int) error {
	if g.Row(i) == nil {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, i)
	}
	g.rows = slices.Delete(g.rows, i, i+1)
	g.pruneSelection()
	return nil
}

// Reset replaces all rows with n empty ones, keeping headers and columns.
func (g *Grid) Reset(n int) {
	g.rows = nil
	for i := 0; i < n; i++ {
		g.AddRow()
	}
	g.sel.Clear()
}

// SetHeader relabels column col.
func (g *Grid) SetHeader(col int, label string) error {
	if col < 0 || col >= len(g.headers) {
		return fmt.Errorf("%w: %d", ErrColumnOutOfRange, col)
	}
	g.headers[col] = label
	return nil
}

// SetCell writes a numeric or empty value into the cell covering (row, col).
func (g *Grid) SetCell(row, col int, value string) error {
	c, _, err := g.CellAt(row, col)
	if err != nil {
		return err
	}
	value = strings.TrimSpace(value)
	if !IsNumeric(value) {
		return fmt.Errorf("%w: %q", ErrNotNumeric, value)
	}
	c.Value = value
	return nil
}

// Unmerge splits the merged cell covering (row, col) back into single
// cells. The first keeps the value, the others start empty.
func (g *Grid) Unmerge(row, col int) error {
	r := g.Row(row)
	if r == nil {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, row)
	}
	idx, _, ok := r.Locate(col)
	if !ok {
		return fmt.Errorf("%w: %d", ErrColumnOutOfRange, col)
	}
	c := r.Cells[idx]
	if c.Width() < 2 {
		return ErrNotMerged
	}
	fresh := make([]*Cell, c.Width()-1)
	for i := range fresh {
		fresh[i] = g.newCell("")
	}
	c.Span = 1
	r.Cells = slices.Insert(r.Cells, idx+1, fresh...)
	return nil
}

// Clone returns a deep copy of g, selection included.
func (g *Grid) Clone() *Grid {
	out := &Grid{
		headers: slices.Clone(g.headers),
		rows:    make([]*Row, len(g.rows)),
		sel:     Selection{refs: slices.Clone(g.sel.refs)},
		nextID:  g.nextID,
	}
	for i, r := range g.rows {
		nr := &Row{ID: r.ID, Cells: make([]*Cell, len(r.Cells))}
		for j, c := range r.Cells {
			cc := *c
			nr.Cells[j] = &cc
		}
		out.rows[i] = nr
	}
	return out
}

// IsNumeric reports whether s is empty or a finite decimal number.
func IsNumeric(s string) bool {
	if s == "" {
		return true
	}
	if strings.ContainsAny(s, "xX_") {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
