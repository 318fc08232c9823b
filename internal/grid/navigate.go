package grid

// Cursor is the focused position in logical coordinates.
type Cursor struct {
	Row int
	Col int
}

// Clamp pulls c inside the grid. With no rows the row stays at 0.
func (g *Grid) Clamp(c Cursor) Cursor {
	if c.Row >= len(g.rows) {
		c.Row = len(g.rows) - 1
	}
	if c.Row < 0 {
		c.Row = 0
	}
	if c.Col >= g.Columns() {
		c.Col = g.Columns() - 1
	}
	if c.Col < 0 {
		c.Col = 0
	}
	return c
}

// Enter moves to the same column of the next row, appending a row when c
// is on the last one.
func (g *Grid) Enter(c Cursor) Cursor {
	c = g.Clamp(c)
	if len(g.rows) == 0 {
		g.AddRow()
		return c
	}
	if c.Row+1 >= len(g.rows) {
		g.AddRow()
	}
	c.Row++
	return c
}

// Down moves to the next row when there is one.
func (g *Grid) Down(c Cursor) Cursor {
	c = g.Clamp(c)
	if c.Row+1 < len(g.rows) {
		c.Row++
	}
	return c
}

// Up moves to the previous row when there is one.
func (g *Grid) Up(c Cursor) Cursor {
	c = g.Clamp(c)
	if c.Row > 0 {
		c.Row--
	}
	return c
}

// Left moves to the start of the cell before the one under c.
func (g *Grid) Left(c Cursor) Cursor {
	c = g.Clamp(c)
	r := g.Row(c.Row)
	if r == nil {
		if c.Col > 0 {
			c.Col--
		}
		return c
	}
	_, start, _ := r.Locate(c.Col)
	if start == 0 {
		c.Col = 0
		return c
	}
	_, prev, _ := r.Locate(start - 1)
	c.Col = prev
	return c
}

// Right moves to the start of the cell after the one under c.
func (g *Grid) Right(c Cursor) Cursor {
	c = g.Clamp(c)
	r := g.Row(c.Row)
	if r == nil {
		if c.Col+1 < g.Columns() {
			c.Col++
		}
		return c
	}
	idx, start, _ := r.Locate(c.Col)
	if next := start + r.Cells[idx].Width(); next < g.Columns() {
		c.Col = next
	}
	return c
}
