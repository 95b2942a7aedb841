package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// BoundingBox is an axis-aligned lat/lon rectangle.
type BoundingBox struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Contains reports whether c lies inside b. A box crossing the antimeridian
// has East > 180 and is tested in the shifted frame as well.
func (b BoundingBox) Contains(c Coordinate) bool {
	if c.Lat < b.South || c.Lat > b.North {
		return false
	}
	return (c.Lon >= b.West && c.Lon <= b.East) || (c.Lon+360 >= b.West && c.Lon+360 <= b.East)
}

// Slice returns the GeoJSON bbox order: west, south, east, north. Boxes
// crossing the antimeridian come out with west > east.
func (b BoundingBox) Slice() []float64 {
	east := b.East
	if east > 180 {
		east -= 360
	}
	return []float64{b.West, b.South, east, b.North}
}

// Margin is the visual padding added around fitted bounds. Each axis is
// padded by Ratio of its span but never less than MinDegrees.
type Margin struct {
	Ratio      float64
	MinDegrees float64
}

var DefaultMargin = Margin{Ratio: 0.1, MinDegrees: 0.05}

// Fit computes the framing box for a polyline set. It returns false when
// there is nothing to frame.
func Fit(polylines []Polyline, m Margin) (BoundingBox, bool) {
	if len(polylines) == 0 {
		return BoundingBox{}, false
	}
	mp := make(orb.MultiPoint, 0, 2*len(polylines))
	for _, pl := range polylines {
		mp = append(mp, pl.From.Point(), pl.To.Point())
	}
	bound := unwrapAntimeridian(mp)

	padLon := math.Max((bound.Max.X()-bound.Min.X())*m.Ratio, m.MinDegrees)
	padLat := math.Max((bound.Max.Y()-bound.Min.Y())*m.Ratio, m.MinDegrees)

	eastLimit := 180.0
	if bound.Max.X() > 180 {
		eastLimit = 360
	}
	return BoundingBox{
		South: math.Max(bound.Min.Y()-padLat, -90),
		West:  math.Max(bound.Min.X()-padLon, -180),
		North: math.Min(bound.Max.Y()+padLat, 90),
		East:  math.Min(bound.Max.X()+padLon, eastLimit),
	}, true
}

// unwrapAntimeridian returns the bound of mp, measured with negative
// longitudes shifted by +360 when that yields a narrower span.
func unwrapAntimeridian(mp orb.MultiPoint) orb.Bound {
	bound := mp.Bound()
	span := bound.Max.X() - bound.Min.X()
	if span <= 180 {
		return bound
	}
	shifted := make(orb.MultiPoint, len(mp))
	for i, p := range mp {
		if p.X() < 0 {
			p[0] += 360
		}
		shifted[i] = p
	}
	if sb := shifted.Bound(); sb.Max.X()-sb.Min.X() < span {
		return sb
	}
	return bound
}
