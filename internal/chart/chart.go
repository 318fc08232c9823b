// Package chart draws an analysis result as a PNG line chart.
package chart

import (
	"errors"
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/dtkav/curvegrid/internal/analysis"
)

// Default canvas size in pixels.
const (
	DefaultWidth  = 800
	DefaultHeight = 500
)

// ErrNoSeries is returned for a response without any series to draw.
var ErrNoSeries = errors.New("nothing to plot")

// Palette colours series in order; it wraps around.
var Palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
}

// Options sizes the chart.
type Options struct {
	Width  int
	Height int
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// lineStyle draws the smoothed curve only.
func lineStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeColor: col,
		StrokeWidth: 3,
	}
}

// pointStyle returns a style that renders points only (no connecting line).
func pointStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: gochart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

// Build turns resp into a chart: per series a smooth line and its raw
// points, plus a labelled marker at the intersection.
func Build(resp *analysis.Response, opts Options) (*gochart.Chart, error) {
	if resp == nil || len(resp.Series) == 0 {
		return nil, ErrNoSeries
	}
	w, h := opts.size()

	series := make([]gochart.Series, 0, 2*len(resp.Series)+1)
	for i, s := range resp.Series {
		col := Palette[i%len(Palette)]
		if len(s.SmoothX) >= 2 {
			series = append(series, gochart.ContinuousSeries{
				Name:    s.Name,
				XValues: s.SmoothX,
				YValues: s.SmoothY,
				Style:   lineStyle(col),
			})
		}
		n := min(len(resp.XData), len(s.Data))
		if n == 0 {
			continue
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    s.Name + " (Points)",
			XValues: resp.XData[:n],
			YValues: s.Data[:n],
			Style:   pointStyle(col),
		})
	}
	if in := resp.Intersection; in != nil {
		series = append(series, gochart.AnnotationSeries{
			Name: "Intersection",
			Annotations: []gochart.Value2{{
				XValue: in.Time,
				YValue: in.Voltage,
				Label:  fmt.Sprintf("(%g, %g)", in.Time, in.Voltage),
			}},
		})
	}

	ch := &gochart.Chart{
		Title:      resp.Layout.Title,
		Width:      w,
		Height:     h,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: resp.Layout.XAxis.Title},
		YAxis:      gochart.YAxis{Name: resp.Layout.YAxis.Title},
		Series:     series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(ch)}
	return ch, nil
}

// RenderPNG writes resp as a PNG image to w.
func RenderPNG(w io.Writer, resp *analysis.Response, opts Options) error {
	ch, err := Build(resp, opts)
	if err != nil {
		return err
	}
	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
