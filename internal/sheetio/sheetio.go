// Package sheetio saves grids to xlsx workbooks and loads them back.
// Headers go on the first row of the data sheet, merged cells become xlsx
// merged ranges and the chart labels live on a separate sheet.
package sheetio

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dtkav/curvegrid/internal/analysis"
	"github.com/dtkav/curvegrid/internal/grid"
)

// Sheet names used in saved workbooks.
const (
	DataSheet  = "Data"
	GraphSheet = "Graph"
)

// ErrNoHeaders indicates the data sheet has no header row.
var ErrNoHeaders = errors.New("sheet has no header row")

// Save writes g and meta to a new workbook at path.
func Save(path string, g *grid.Grid, meta analysis.Meta) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DataSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	headers := make([]any, 0, g.Columns())
	for _, h := range g.Headers() {
		headers = append(headers, h)
	}
	if err := f.SetSheetRow(DataSheet, "A1", &headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}

	styles := map[string]int{}
	for ri := 0; ri < g.Len(); ri++ {
		r := g.Row(ri)
		excelRow := ri + 2
		col := 1
		for _, c := range r.Cells {
			start, err := excelize.CoordinatesToCellName(col, excelRow)
			if err != nil {
				return err
			}
			value, numFmt := cellValue(c.Value)
			if err := f.SetCellValue(DataSheet, start, value); err != nil {
				return fmt.Errorf("write %s: %w", start, err)
			}
			if numFmt != "" {
				style, ok := styles[numFmt]
				if !ok {
					style, err = f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
					if err != nil {
						return fmt.Errorf("number format %s: %w", numFmt, err)
					}
					styles[numFmt] = style
				}
				if err := f.SetCellStyle(DataSheet, start, start, style); err != nil {
					return fmt.Errorf("style %s: %w", start, err)
				}
			}
			if c.Width() > 1 {
				end, err := excelize.CoordinatesToCellName(col+c.Width()-1, excelRow)
				if err != nil {
					return err
				}
				if err := f.MergeCell(DataSheet, start, end); err != nil {
					return fmt.Errorf("merge %s:%s: %w", start, end, err)
				}
			}
			col += c.Width()
		}
	}

	if _, err := f.NewSheet(GraphSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	for i, kv := range [][2]string{
		{"Title", meta.Title},
		{"X Axis", meta.XLabel},
		{"Y Axis", meta.YLabel},
		{"Rows", strconv.Itoa(g.Len())},
	} {
		row := []any{kv[0], kv[1]}
		if err := f.SetSheetRow(GraphSheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return fmt.Errorf("write graph settings: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// plainDecimal matches numbers a fixed decimal format writes back verbatim.
var plainDecimal = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.([0-9]+))?$`)

// cellValue stores plain decimals as numbers with a format that keeps their
// decimal places, so spreadsheets can compute with them and Load reads the
// same text back. Other numeric text ("1e3", "+2", ".5") is stored as text.
func cellValue(v string) (value any, numFmt string) {
	if v == "" {
		return nil, ""
	}
	m := plainDecimal.FindStringSubmatch(v)
	if m == nil {
		return v, ""
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v, ""
	}
	numFmt = "0"
	if m[3] != "" {
		numFmt += "." + strings.Repeat("0", len(m[3]))
	}
	return f, numFmt
}

// preferFormatted keeps the displayed text of a number when it is the same
// value as the raw one, so "10.00" stays "10.00" instead of "10".
func preferFormatted(raw, shown string) string {
	r, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	if s, err := strconv.ParseFloat(shown, 64); err == nil && s == r && grid.IsNumeric(shown) {
		return shown
	}
	return raw
}

// mergeable reports whether logical columns [col, col+span) of row exist
// and are all unmerged single cells.
func mergeable(g *grid.Grid, row, col, span int) bool {
	r := g.Row(row)
	if r == nil || span < 2 || col < 0 || col+span > g.Columns() {
		return false
	}
	for c := col; c < col+span; c++ {
		idx, _, ok := r.Locate(c)
		if !ok || r.Cells[idx].Width() != 1 {
			return false
		}
	}
	return true
}

// Load reads a workbook written by Save, or any workbook whose first sheet
// holds a header row followed by numeric rows. Single-row merged ranges
// over unmerged cells are restored as merged cells. Ranges spanning rows,
// running past the last column or overlapping an earlier merge are ignored.
func Load(path string) (*grid.Grid, analysis.Meta, error) {
	var meta analysis.Meta

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, meta, err
	}
	defer f.Close()

	sheet := DataSheet
	if idx, _ := f.GetSheetIndex(DataSheet); idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, meta, fmt.Errorf("read %s: %w", sheet, err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, meta, ErrNoHeaders
	}
	formatted, err := f.GetRows(sheet)
	if err != nil {
		return nil, meta, fmt.Errorf("read %s: %w", sheet, err)
	}

	g := grid.New(rows[0]...)
	for ri, values := range rows[1:] {
		r := g.AddRow()
		for i, v := range values {
			if i >= len(r.Cells) {
				break
			}
			v = strings.TrimSpace(v)
			if ri+1 < len(formatted) && i < len(formatted[ri+1]) {
				v = preferFormatted(v, strings.TrimSpace(formatted[ri+1][i]))
			}
			if grid.IsNumeric(v) {
				r.Cells[i].Value = v
			}
		}
	}

	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, meta, fmt.Errorf("read merges: %w", err)
	}
	for _, mc := range merges {
		c1, r1, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			continue
		}
		c2, r2, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil || r1 != r2 || r1 < 2 {
			continue
		}
		row, col, span := r1-2, c1-1, c2-c1+1
		if !mergeable(g, row, col, span) {
			continue
		}
		if err := g.MergeRange(row, col, span); err != nil {
			return nil, meta, fmt.Errorf("merge %s: %w", mc.GetStartAxis(), err)
		}
	}

	if idx, _ := f.GetSheetIndex(GraphSheet); idx >= 0 {
		settings, err := f.GetRows(GraphSheet)
		if err != nil {
			return nil, meta, fmt.Errorf("read %s: %w", GraphSheet, err)
		}
		for _, kv := range settings {
			if len(kv) < 2 {
				continue
			}
			switch kv[0] {
			case "Title":
				meta.Title = kv[1]
			case "X Axis":
				meta.XLabel = kv[1]
			case "Y Axis":
				meta.YLabel = kv[1]
			case "Rows":
				// trailing empty rows are not stored in the sheet itself
				if n, err := strconv.Atoi(kv[1]); err == nil {
					for g.Len() < n {
						g.AddRow()
					}
				}
			}
		}
	}
	return g, meta, nil
}
