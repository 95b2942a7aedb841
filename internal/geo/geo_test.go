package geo

import (
	"encoding/json"
	"math"
	"testing"
)

func TestCoordinateValid(t *testing.T) {
	cases := []struct {
		c  Coordinate
		ok bool
	}{
		{Coordinate{55.7558, 37.6173}, true},
		{Coordinate{-90, 180}, true},
		{Coordinate{90.1, 0}, false},
		{Coordinate{0, -180.5}, false},
		{Coordinate{math.NaN(), 0}, false},
		{Coordinate{0, math.Inf(1)}, false},
	}
	for _, c := range cases {
		if got := c.c.Valid(); got != c.ok {
			t.Errorf("%v: Valid()=%v, want %v", c.c, got, c.ok)
		}
	}
}

func TestFitEmpty(t *testing.T) {
	if _, ok := Fit(nil, DefaultMargin); ok {
		t.Fatal("empty polyline set must not produce a bounding box")
	}
}

func TestFitCoversAllPoints(t *testing.T) {
	moscow := Coordinate{55.7558, 37.6173}
	bestyakh := Coordinate{61.8675, 129.9564}
	sangar := Coordinate{63.924, 127.471}
	pls := []Polyline{
		{From: moscow, To: bestyakh},
		{From: bestyakh, To: sangar},
	}
	bb, ok := Fit(pls, DefaultMargin)
	if !ok {
		t.Fatal("expected a bounding box")
	}
	for _, c := range []Coordinate{moscow, bestyakh, sangar} {
		if !bb.Contains(c) {
			t.Errorf("bbox %+v does not contain %v", bb, c)
		}
	}
	// lon span 92.3391 * 0.1
	if want := 37.6173 - 9.23391; math.Abs(bb.West-want) > 1e-6 {
		t.Errorf("west=%f, want %f", bb.West, want)
	}
	again, _ := Fit(pls, DefaultMargin)
	if again != bb {
		t.Errorf("fit is not deterministic: %+v vs %+v", again, bb)
	}
}

func TestFitSinglePointUsesMinimumMargin(t *testing.T) {
	c := Coordinate{62.536, 113.961}
	bb, ok := Fit([]Polyline{{From: c, To: c}}, Margin{Ratio: 0.1, MinDegrees: 0.5})
	if !ok {
		t.Fatal("expected a bounding box")
	}
	if math.Abs(bb.North-bb.South-1.0) > 1e-9 || math.Abs(bb.East-bb.West-1.0) > 1e-9 {
		t.Errorf("unexpected degenerate padding: %+v", bb)
	}
}

func TestFitClampsToWorld(t *testing.T) {
	bb, _ := Fit([]Polyline{{From: Coordinate{89.9, -179.9}, To: Coordinate{-89.9, -10}}}, DefaultMargin)
	if bb.North != 90 || bb.South != -90 || bb.West != -180 {
		t.Errorf("bbox not clamped to world bounds: %+v", bb)
	}
	if bb.East > 180 {
		t.Errorf("bbox escapes world bounds: %+v", bb)
	}
}

func TestFitAcrossAntimeridian(t *testing.T) {
	anadyr := Coordinate{64.7337, 177.5089}
	lavrentiya := Coordinate{65.5833, -171.0}
	bb, ok := Fit([]Polyline{{From: anadyr, To: lavrentiya}}, DefaultMargin)
	if !ok {
		t.Fatal("expected a bounding box")
	}
	if width := bb.East - bb.West; width > 20 {
		t.Errorf("box spans %f degrees of longitude, want a narrow box: %+v", width, bb)
	}
	for _, c := range []Coordinate{anadyr, lavrentiya} {
		if !bb.Contains(c) {
			t.Errorf("bbox %+v does not contain %v", bb, c)
		}
	}
	if bb.Contains(Coordinate{65, 0}) {
		t.Errorf("bbox %+v should not contain the prime meridian", bb)
	}
	s := bb.Slice()
	if s[0] <= s[2] || s[2] < -180 || s[2] > 180 {
		t.Errorf("geojson bbox should wrap with west > east, got %v", s)
	}
}

func TestFitWideSpanWithoutWrap(t *testing.T) {
	// Shifting -100 and -1 by 360 widens the span, so the plain frame stays.
	pls := []Polyline{
		{From: Coordinate{10, -100}, To: Coordinate{10, -1}},
		{From: Coordinate{10, -1}, To: Coordinate{10, 100}},
	}
	bb, _ := Fit(pls, DefaultMargin)
	if math.Abs(bb.West+120) > 1e-9 || math.Abs(bb.East-120) > 1e-9 {
		t.Errorf("expected plain-frame box -120..120, got %+v", bb)
	}
}

func TestDistanceKm(t *testing.T) {
	// Moscow to Yakutsk is roughly 4900 km.
	d := DistanceKm(Coordinate{55.7558, 37.6173}, Coordinate{62.0355, 129.6755})
	if d < 4800 || d > 5000 {
		t.Errorf("unexpected distance %f", d)
	}
}

func TestFeatureCollection(t *testing.T) {
	pls := []Polyline{
		{SegmentID: "s1", From: Coordinate{1, 2}, To: Coordinate{3, 4}, FromName: "A", ToName: "B"},
		{SegmentID: "s2", From: Coordinate{3, 4}, To: Coordinate{5, 6}, FromName: "B", ToName: "C"},
	}
	bb, _ := Fit(pls, DefaultMargin)
	fc := FeatureCollection(pls, &bb)
	if len(fc.Features) != 4 {
		t.Fatalf("expected 2 lines + 2 markers, got %d features", len(fc.Features))
	}
	line := fc.Features[0]
	if !line.Geometry.IsLineString() {
		t.Fatalf("first feature should be a linestring")
	}
	if got := line.Geometry.LineString[0]; got[0] != 2 || got[1] != 1 {
		t.Errorf("coordinates must be [lon, lat], got %v", got)
	}
	if end := line.Geometry.LineString[1]; end[0] != 4 || end[1] != 3 {
		t.Errorf("line should end at the destination, got %v", end)
	}
	finish := fc.Features[3]
	if finish.Properties["role"] != "finish" || finish.Properties["name"] != "C" {
		t.Errorf("unexpected finish marker %+v", finish.Properties)
	}
	b, err := json.Marshal(fc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if len(b) == 0 {
		t.Fatal("empty geojson")
	}
	if len(fc.BoundingBox) != 4 {
		t.Errorf("bbox not attached: %v", fc.BoundingBox)
	}
}
