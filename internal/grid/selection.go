package grid

import (
	"fmt"
	"slices"
)

// CellRef identifies a cell independently of its current position.
type CellRef struct {
	Row  uint64
	Cell uint64
}

// Selection is the working set of cells for a pending merge, kept in the
// order they were picked.
type Selection struct {
	refs []CellRef
}

// Toggle flips ref in or out of the set and reports whether it is now selected.
func (s *Selection) Toggle(ref CellRef) bool {
	if i := slices.Index(s.refs, ref); i >= 0 {
		s.refs = slices.Delete(s.refs, i, i+1)
		return false
	}
	s.refs = append(s.refs, ref)
	return true
}

// ClearOnPlainClick drops every selected cell. The clicked cell does not
// matter: a click without the multi-select modifier always resets.
func (s *Selection) ClearOnPlainClick(CellRef) {
	s.Clear()
}

// Clear empties the set.
func (s *Selection) Clear() { s.refs = nil }

// Contains reports whether ref is selected.
func (s *Selection) Contains(ref CellRef) bool { return slices.Contains(s.refs, ref) }

// Len returns the number of selected cells.
func (s *Selection) Len() int { return len(s.refs) }

// Refs returns the selected cells in pick order.
func (s *Selection) Refs() []CellRef { return slices.Clone(s.refs) }

// Ref returns the stable reference of the cell covering (row, col).
func (g *Grid) Ref(row, col int) (CellRef, error) {
	c, _, err := g.CellAt(row, col)
	if err != nil {
		return CellRef{}, err
	}
	return CellRef{Row: g.rows[row].ID, Cell: c.ID}, nil
}

// Click applies a pointer click on (row, col) to the selection: with the
// modifier the cell is toggled, without it the selection is cleared.
func (g *Grid) Click(row, col int, modifier bool) error {
	ref, err := g.Ref(row, col)
	if err != nil {
		return err
	}
	if modifier {
		g.sel.Toggle(ref)
	} else {
		g.sel.ClearOnPlainClick(ref)
	}
	return nil
}

// Selected reports whether the cell covering (row, col) is selected.
func (g *Grid) Selected(row, col int) bool {
	ref, err := g.Ref(row, col)
	return err == nil && g.sel.Contains(ref)
}

// locateRef finds the row and physical cell index of ref.
func (g *Grid) locateRef(ref CellRef) (row, idx int, ok bool) {
	for ri, r := range g.rows {
		if r.ID != ref.Row {
			continue
		}
		for ci, c := range r.Cells {
			if c.ID == ref.Cell {
				return ri, ci, true
			}
		}
		return 0, 0, false
	}
	return 0, 0, false
}

// pruneSelection forgets refs to cells that no longer exist.
func (g *Grid) pruneSelection() {
	g.sel.refs = slices.DeleteFunc(g.sel.refs, func(ref CellRef) bool {
		_, _, ok := g.locateRef(ref)
		return !ok
	})
}

// Merge joins the selected cells into the leftmost one. The selection must
// hold at least two cells of one row that sit next to each other. The
// survivor's span becomes the sum of the spans and the values of the
// absorbed cells are discarded. The selection is cleared whatever happens
// and a failed merge leaves the grid untouched.
func (g *Grid) Merge() error {
	refs := g.sel.Refs()
	g.sel.Clear()

	if len(refs) < 2 {
		return ErrInsufficientSelection
	}
	row := -1
	idxs := make([]int, 0, len(refs))
	for _, ref := range refs {
		ri, ci, ok := g.locateRef(ref)
		if !ok {
			continue
		}
		if row >= 0 && ri != row {
			return ErrCrossRowSelection
		}
		row = ri
		idxs = append(idxs, ci)
	}
	if len(idxs) < 2 {
		return ErrInsufficientSelection
	}
	slices.Sort(idxs)
	for i := 1; i < len(idxs); i++ {
		if idxs[i]-idxs[i-1] != 1 {
			return ErrNonContiguousSelection
		}
	}

	r := g.rows[row]
	first, last := idxs[0], idxs[len(idxs)-1]
	span := 0
	for _, c := range r.Cells[first : last+1] {
		span += c.Width()
	}
	r.Cells[first].Span = span
	r.Cells = slices.Delete(r.Cells, first+1, last+1)
	return nil
}

// MergeRange merges the cells of row covering logical columns
// [col, col+span) through the selection.
func (g *Grid) MergeRange(row, col, span int) error {
	r := g.Row(row)
	if r == nil {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, row)
	}
	if span < 2 {
		return ErrInsufficientSelection
	}
	g.sel.Clear()
	for c := col; c < col+span; {
		idx, start, ok := r.Locate(c)
		if !ok {
			g.sel.Clear()
			return fmt.Errorf("%w: %d", ErrColumnOutOfRange, c)
		}
		g.sel.Toggle(CellRef{Row: r.ID, Cell: r.Cells[idx].ID})
		c = start + r.Cells[idx].Width()
	}
	return g.Merge()
}
