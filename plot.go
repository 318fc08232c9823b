package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dtkav/curvegrid/internal/analysis"
)

// seriesColors mirror the PNG palette in terminal colours.
var seriesColors = []lipgloss.Color{"39", "208", "76", "196", "141"}

// panelStyle is a Lip Gloss style for panels.
var panelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("250")). // Light gray border
	Padding(0, 1).
	Margin(0, 1)

// statsPanelStyle highlights the intersection read-out.
var statsPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(lipgloss.Color("205")).
	Foreground(lipgloss.Color("15")).
	Bold(true).
	Padding(0, 1).
	Margin(0, 1)

// plotRange returns the bounds of everything that will be drawn.
func plotRange(resp *analysis.Response) (xmin, xmax, ymin, ymax float64, ok bool) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	add := func(xs, ys []float64) {
		n := min(len(xs), len(ys))
		for i := 0; i < n; i++ {
			xmin, xmax = math.Min(xmin, xs[i]), math.Max(xmax, xs[i])
			ymin, ymax = math.Min(ymin, ys[i]), math.Max(ymax, ys[i])
			ok = true
		}
	}
	for _, s := range resp.Series {
		add(s.SmoothX, s.SmoothY)
		add(resp.XData, s.Data)
	}
	return xmin, xmax, ymin, ymax, ok
}

// createCurvePlot draws every series of resp onto a width x height
// character canvas: smoothed curves as dots, raw points as discs and the
// intersection as a cross. Axis bounds are printed along the edges.
func createCurvePlot(resp *analysis.Response, width, height int) string {
	if resp == nil || len(resp.Series) == 0 {
		return "No data"
	}
	xmin, xmax, ymin, ymax, ok := plotRange(resp)
	if !ok {
		return "No data"
	}
	if xmax == xmin {
		xmax = xmin + 1
	}
	if ymax == ymin {
		ymax = ymin + 1
	}

	canvas := make([][]string, height)
	for i := range canvas {
		canvas[i] = make([]string, width)
		for j := range canvas[i] {
			canvas[i][j] = " "
		}
	}
	put := func(x, y float64, glyph string) {
		col := int(math.Round((x - xmin) / (xmax - xmin) * float64(width-1)))
		row := height - 1 - int(math.Round((y-ymin)/(ymax-ymin)*float64(height-1)))
		if col < 0 || col >= width || row < 0 || row >= height {
			return
		}
		canvas[row][col] = glyph
	}

	for i, s := range resp.Series {
		style := lipgloss.NewStyle().Foreground(seriesColors[i%len(seriesColors)])
		dot, disc := style.Render("·"), style.Render("●")
		for j := 0; j < min(len(s.SmoothX), len(s.SmoothY)); j++ {
			put(s.SmoothX[j], s.SmoothY[j], dot)
		}
		for j := 0; j < min(len(resp.XData), len(s.Data)); j++ {
			put(resp.XData[j], s.Data[j], disc)
		}
	}
	if in := resp.Intersection; in != nil {
		put(in.Time, in.Voltage, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Render("✕"))
	}

	top := fmt.Sprintf("%8.2f ┤", ymax)
	bottom := fmt.Sprintf("%8.2f ┤", ymin)
	blank := strings.Repeat(" ", 9) + "│"
	var rows []string
	for i, line := range canvas {
		prefix := blank
		switch i {
		case 0:
			prefix = top
		case height - 1:
			prefix = bottom
		}
		rows = append(rows, prefix+strings.Join(line, ""))
	}
	rows = append(rows, strings.Repeat(" ", 10)+strings.Repeat("─", width))

	left := fmt.Sprintf("%.2f", xmin)
	right := fmt.Sprintf("%.2f", xmax)
	gap := max(1, width-len(left)-len(right))
	rows = append(rows, strings.Repeat(" ", 10)+left+strings.Repeat(" ", gap)+right)
	return strings.Join(rows, "\n")
}

// renderLegend lists the series names in their colours with their slopes.
func renderLegend(resp *analysis.Response) string {
	var lines []string
	for i, s := range resp.Series {
		style := lipgloss.NewStyle().Foreground(seriesColors[i%len(seriesColors)])
		line := style.Render("● " + s.Name)
		if s.Slope != nil {
			line += fmt.Sprintf("  slope %.4f", *s.Slope)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// renderStats shows where the first two series cross.
func renderStats(in *analysis.Intersection) string {
	if in == nil {
		return ""
	}
	return statsPanelStyle.Render(fmt.Sprintf("Intersection\nTime:    %g\nVoltage: %g", in.Time, in.Voltage))
}

// renderResult lays out the plot panel with its legend and stats.
func renderResult(resp *analysis.Response, width int) string {
	plotWidth := max(20, min(100, width-40))
	layout := resp.Layout
	title := lipgloss.NewStyle().Bold(true).Render(layout.Title)
	axes := lipgloss.NewStyle().Foreground(lipgloss.Color("242")).
		Render(fmt.Sprintf("x: %s   y: %s", layout.XAxis.Title, layout.YAxis.Title))

	plot := panelStyle.Render(title + "\n" + createCurvePlot(resp, plotWidth, 12) + "\n" + axes)
	side := lipgloss.JoinVertical(lipgloss.Left, panelStyle.Render(renderLegend(resp)), renderStats(resp.Intersection))
	return lipgloss.JoinHorizontal(lipgloss.Top, plot, side)
}
