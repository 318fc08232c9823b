package analysis

import (
	"errors"
	"math"
	"testing"
)

func TestComputeNoData(t *testing.T) {
	if _, err := Compute(Request{Headers: []string{"x"}}); !errors.Is(err, ErrNoData) {
		t.Errorf("Expected ErrNoData, got %v", err)
	}
	if _, err := Compute(Request{Data: [][]string{{"1"}}}); !errors.Is(err, ErrNoData) {
		t.Errorf("Expected ErrNoData, got %v", err)
	}
}

func TestComputeLinearCrossing(t *testing.T) {
	req := Request{
		Data: [][]string{
			{"0", "0", "2"},
			{"1", "1", "1"},
			{"2", "2", "0"},
			{"3", "3", "-1"},
		},
		Headers: []string{"x", "up", "down"},
	}
	resp, err := Compute(req)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(resp.Series) != 2 {
		t.Fatalf("Expected 2 series, got %d", len(resp.Series))
	}
	up := resp.Series[0]
	if len(up.SmoothX) != SmoothPoints || len(up.SmoothY) != SmoothPoints {
		t.Fatalf("Expected %d smooth points, got %d/%d", SmoothPoints, len(up.SmoothX), len(up.SmoothY))
	}
	if up.SmoothX[0] != 0 || up.SmoothX[SmoothPoints-1] != 3 {
		t.Errorf("Smooth X should span the data, got %v..%v", up.SmoothX[0], up.SmoothX[SmoothPoints-1])
	}
	if math.Abs(up.SmoothY[SmoothPoints/2]-up.SmoothX[SmoothPoints/2]) > 1e-6 {
		t.Errorf("Spline through linear data should stay linear")
	}
	if up.Slope == nil || *up.Slope != 1 {
		t.Errorf("Expected slope 1, got %v", up.Slope)
	}
	if s := resp.Series[1].Slope; s == nil || *s != -1 {
		t.Errorf("Expected slope -1, got %v", s)
	}
	in := resp.Intersection
	if in == nil {
		t.Fatal("Expected an intersection")
	}
	if in.Time != 1 || in.Voltage != 1 {
		t.Errorf("Expected (1, 1), got (%v, %v)", in.Time, in.Voltage)
	}
	if resp.Layout.Title != "Graph" || resp.Layout.XAxis.Title != "Time" || resp.Layout.YAxis.Title != "Voltage" {
		t.Errorf("Unexpected default layout %+v", resp.Layout)
	}
}

func TestComputeSampleCurves(t *testing.T) {
	req := Request{
		Data: [][]string{
			{"0.0", "0.00", "10.00"},
			{"1.0", "6.32", "3.68"},
			{"2.0", "8.65", "1.35"},
			{"3.0", "9.50", "0.50"},
			{"4.0", "9.82", "0.18"},
			{"5.0", "9.93", "0.07"},
		},
		Headers: []string{"Time (s)", "Charge (V)", "Discharge (V)"},
		Title:   "RC",
	}
	resp, err := Compute(req)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	in := resp.Intersection
	if in == nil {
		t.Fatal("Expected an intersection")
	}
	if in.Time < 0.4 || in.Time > 1.0 {
		t.Errorf("Intersection time %v outside expected range", in.Time)
	}
	if in.Voltage < 4 || in.Voltage > 6.5 {
		t.Errorf("Intersection voltage %v outside expected range", in.Voltage)
	}
	if resp.Layout.Title != "RC" {
		t.Errorf("Expected title RC, got %q", resp.Layout.Title)
	}
}

func TestComputeNoCrossing(t *testing.T) {
	req := Request{
		Data:    [][]string{{"0", "1", "5"}, {"1", "2", "6"}, {"2", "3", "7"}},
		Headers: []string{"x", "a", "b"},
	}
	resp, err := Compute(req)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if resp.Intersection != nil {
		t.Errorf("Expected no intersection, got %+v", resp.Intersection)
	}
}

func TestComputeSinglePointAndBadCells(t *testing.T) {
	req := Request{
		Data:    [][]string{{"1", "oops"}},
		Headers: []string{"x", "y"},
	}
	resp, err := Compute(req)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	s := resp.Series[0]
	if len(s.SmoothX) != 1 || s.Data[0] != 0 {
		t.Errorf("Expected raw passthrough with 0 for bad cell, got %+v", s)
	}
	if s.Slope != nil {
		t.Errorf("Slope needs two points, got %v", *s.Slope)
	}
}

func TestComputeUnsortedTimeFails(t *testing.T) {
	req := Request{
		Data:    [][]string{{"2", "1"}, {"1", "2"}, {"0", "3"}},
		Headers: []string{"x", "y"},
	}
	if _, err := Compute(req); !errors.Is(err, ErrUnsortedX) {
		t.Errorf("Expected ErrUnsortedX, got %v", err)
	}
}

func TestParseColumnsPadsShortRows(t *testing.T) {
	cols := parseColumns([][]string{{"1"}, {"2", "x", "3"}}, 3)
	if cols[1][0] != 0 || cols[2][0] != 0 || cols[2][1] != 3 {
		t.Errorf("Unexpected columns %v", cols)
	}
}

func TestComputeThreePointsFitParabola(t *testing.T) {
	req := Request{
		Data:    [][]string{{"0", "0", "2"}, {"1", "1", "1"}, {"2", "4", "0"}},
		Headers: []string{"x", "square", "down"},
	}
	resp, err := Compute(req)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	sq := resp.Series[0]
	for i, x := range sq.SmoothX {
		if math.Abs(sq.SmoothY[i]-x*x) > 1e-9 {
			t.Fatalf("At x=%v expected %v, got %v", x, x*x, sq.SmoothY[i])
		}
	}

	// x^2 = 2 - x crosses at x = 1
	in := resp.Intersection
	if in == nil {
		t.Fatal("Expected an intersection")
	}
	if in.Time != 1 || in.Voltage != 1 {
		t.Errorf("Expected (1, 1), got (%v, %v)", in.Time, in.Voltage)
	}
}
