// Package geo holds the geometric value types shared by the resolution
// pipeline and the display surface.
package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Valid reports whether both components are finite and inside the
// geographic ranges.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Point converts to orb's [lon, lat] order.
func (c Coordinate) Point() orb.Point { return orb.Point{c.Lon, c.Lat} }

func (c Coordinate) String() string { return fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lon) }

// DefaultCenter frames the map when nothing could be resolved.
var DefaultCenter = Coordinate{Lat: 62.0, Lon: 110.0}

// Polyline is the drawable form of one itinerary segment.
type Polyline struct {
	SegmentID    string     `json:"segmentId"`
	SegmentIndex int        `json:"segmentIndex"`
	Type         string     `json:"type,omitempty"`
	From         Coordinate `json:"from"`
	To           Coordinate `json:"to"`
	FromName     string     `json:"fromName"`
	ToName       string     `json:"toName"`
	DistanceKm   float64    `json:"distanceKm"`
}

// LineString is the straight segment from origin to destination.
func (p Polyline) LineString() orb.LineString {
	return orb.LineString{p.From.Point(), p.To.Point()}
}

// DistanceKm is the great-circle distance between two coordinates.
func DistanceKm(a, b Coordinate) float64 {
	return orbgeo.DistanceHaversine(a.Point(), b.Point()) / 1000
}
