package analysis

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"
)

// SmoothPoints is the resolution of every smoothed curve.
const SmoothPoints = 500

// rootScanSteps is how finely the difference curve is sampled while
// looking for a sign change.
const rootScanSteps = 2000

// ErrNoData is returned by Compute for a request without rows or headers.
var ErrNoData = errors.New("No data provided")

// ErrUnsortedX is returned when the first column does not strictly increase.
var ErrUnsortedX = errors.New("x must be strictly increasing")

// Compute runs the analysis the service performs for req. The first column
// is the X axis, every other column becomes a Series. Cells that are blank
// or not numbers count as 0.
func Compute(req Request) (*Response, error) {
	if len(req.Data) == 0 || len(req.Headers) == 0 {
		return nil, ErrNoData
	}
	cols := parseColumns(req.Data, len(req.Headers))
	xs := cols[0]

	resp := &Response{
		XData:  xs,
		Series: make([]Series, 0, len(cols)-1),
		Layout: Layout{
			Title: orDefault(req.Title, "Graph"),
			XAxis: Axis{Title: orDefault(req.AxisLabels.X, "Time")},
			YAxis: Axis{Title: orDefault(req.AxisLabels.Y, "Voltage")},
		},
	}
	for i := 1; i < len(cols); i++ {
		sx, sy, err := smooth(xs, cols[i])
		if err != nil {
			return nil, fmt.Errorf("smooth %q: %w", req.Headers[i], err)
		}
		resp.Series = append(resp.Series, Series{
			Name:    req.Headers[i],
			Data:    cols[i],
			SmoothX: sx,
			SmoothY: sy,
			Slope:   slope(xs, cols[i]),
		})
	}

	if len(resp.Series) == 2 {
		in, err := intersection(xs, resp.Series[0].Data, resp.Series[1].Data)
		if err != nil {
			return nil, fmt.Errorf("intersection: %w", err)
		}
		resp.Intersection = in
	}
	return resp, nil
}

// parseColumns transposes rows into n columns.
func parseColumns(rows [][]string, n int) [][]float64 {
	cols := make([][]float64, n)
	for c := range cols {
		cols[c] = make([]float64, len(rows))
		for r, row := range rows {
			if c >= len(row) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[c]), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			cols[c][r] = v
		}
	}
	return cols
}

// fitSpline fits a not-a-knot cubic spline. Three points get the parabola
// through them, which is what the not-a-knot conditions reduce to there,
// and two points a straight line.
func fitSpline(xs, ys []float64) (interp.Predictor, error) {
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return nil, ErrUnsortedX
		}
	}
	switch {
	case len(xs) >= 4:
		var s interp.NotAKnotCubic
		if err := s.Fit(xs, ys); err != nil {
			return nil, err
		}
		return &s, nil
	case len(xs) == 3:
		return newParabola(xs, ys), nil
	default:
		var s interp.PiecewiseLinear
		if err := s.Fit(xs, ys); err != nil {
			return nil, err
		}
		return &s, nil
	}
}

// parabola is the quadratic through three points in Lagrange form.
type parabola struct {
	xs, ys [3]float64
}

func newParabola(xs, ys []float64) *parabola {
	var p parabola
	copy(p.xs[:], xs)
	copy(p.ys[:], ys)
	return &p
}

// Predict implements interp.Predictor.
func (p *parabola) Predict(x float64) float64 {
	var y float64
	for i := range p.xs {
		l := p.ys[i]
		for j := range p.xs {
			if j != i {
				l *= (x - p.xs[j]) / (p.xs[i] - p.xs[j])
			}
		}
		y += l
	}
	return y
}

// smooth samples the spline through (xs, ys) at SmoothPoints evenly spaced
// positions. Fewer than two points are returned as they are.
func smooth(xs, ys []float64) ([]float64, []float64, error) {
	if len(xs) < 2 {
		return append([]float64{}, xs...), append([]float64{}, ys...), nil
	}
	p, err := fitSpline(xs, ys)
	if err != nil {
		return nil, nil, err
	}
	sx := floats.Span(make([]float64, SmoothPoints), xs[0], xs[len(xs)-1])
	sy := make([]float64, len(sx))
	for i, x := range sx {
		sy[i] = p.Predict(x)
	}
	return sx, sy, nil
}

// slope is the least squares gradient of ys over xs, nil when undefined.
func slope(xs, ys []float64) *float64 {
	if len(xs) < 2 {
		return nil
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return nil
	}
	beta = round4(beta)
	return &beta
}

// intersection finds the first root of the spline through a-b inside the
// X range and reports it with a's value there.
func intersection(xs, a, b []float64) (*Intersection, error) {
	if len(xs) < 2 {
		return nil, nil
	}
	diff := make([]float64, len(xs))
	floats.SubTo(diff, a, b)

	pd, err := fitSpline(xs, diff)
	if err != nil {
		return nil, err
	}
	pa, err := fitSpline(xs, a)
	if err != nil {
		return nil, err
	}

	lo, hi := xs[0], xs[len(xs)-1]
	step := (hi - lo) / rootScanSteps
	prevX, prevY := lo, pd.Predict(lo)
	for i := 0; i <= rootScanSteps; i++ {
		x := lo + float64(i)*step
		if i == rootScanSteps {
			x = hi
		}
		y := pd.Predict(x)
		var root float64
		switch {
		case y == 0:
			root = x
		case i > 0 && math.Signbit(y) != math.Signbit(prevY) && prevY != 0:
			root = bisect(pd, prevX, x)
		default:
			prevX, prevY = x, y
			continue
		}
		return &Intersection{Time: round4(root), Voltage: round4(pa.Predict(root))}, nil
	}
	return nil, nil
}

// bisect narrows a sign change of p between lo and hi.
func bisect(p interp.Predictor, lo, hi float64) float64 {
	flo := p.Predict(lo)
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		fm := p.Predict(mid)
		if fm == 0 || hi-lo < 1e-12 {
			return mid
		}
		if math.Signbit(fm) == math.Signbit(flo) {
			lo, flo = mid, fm
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
