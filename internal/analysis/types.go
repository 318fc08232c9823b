// Package analysis is the contract with the curve analysis service: the
// request built from a grid, an HTTP client for it, and a local
// implementation of the service that smooths each series with a cubic
// spline, fits slopes and finds where two series cross.
package analysis

// AxisLabels names the chart axes.
type AxisLabels struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// Request is the body POSTed to the analysis service.
type Request struct {
	Data       [][]string `json:"data"`
	Headers    []string   `json:"headers"`
	Title      string     `json:"title"`
	AxisLabels AxisLabels `json:"axis_labels"`
}

// Series is one Y column with its smoothed curve.
type Series struct {
	Name    string    `json:"name"`
	Data    []float64 `json:"data"`
	SmoothX []float64 `json:"smooth_x"`
	SmoothY []float64 `json:"smooth_y"`
	Slope   *float64  `json:"slope,omitempty"`
}

// Intersection is the first crossing of the first two series.
type Intersection struct {
	Time    float64 `json:"time"`
	Voltage float64 `json:"voltage"`
}

type Axis struct {
	Title string `json:"title"`
}

type Layout struct {
	Title string `json:"title"`
	XAxis Axis   `json:"xaxis"`
	YAxis Axis   `json:"yaxis"`
}

// Response is a successful analysis result.
type Response struct {
	Series       []Series      `json:"series"`
	XData        []float64     `json:"x_data"`
	Intersection *Intersection `json:"intersection"`
	Layout       Layout        `json:"layout"`
}

// errorBody is what the service returns on failure.
type errorBody struct {
	Error string `json:"error"`
}
