package analysis

import (
	"github.com/dtkav/curvegrid/internal/grid"
)

// Meta carries the chart labels sent alongside the grid.
type Meta struct {
	Title  string
	XLabel string
	YLabel string
}

// BuildRequest snapshots g into a Request. Merged cells are repeated once
// per covered column and rows without any value are left out. A grid with
// no remaining rows yields grid.ErrEmptyInput.
func BuildRequest(g *grid.Grid, meta Meta) (Request, error) {
	req := Request{
		Data:    [][]string{},
		Headers: g.Headers(),
		Title:   meta.Title,
		AxisLabels: AxisLabels{
			X: meta.XLabel,
			Y: meta.YLabel,
		},
	}
	for i := 0; i < g.Len(); i++ {
		r := g.Row(i)
		if r.Blank() {
			continue
		}
		req.Data = append(req.Data, r.Values())
	}
	if len(req.Data) == 0 {
		return req, grid.ErrEmptyInput
	}
	return req, nil
}
