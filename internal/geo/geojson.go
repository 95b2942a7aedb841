package geo

import (
	geojson "github.com/paulmach/go.geojson"
)

// FeatureCollection renders polylines as GeoJSON LineStrings plus start and
// finish markers for the first origin and last destination.
func FeatureCollection(polylines []Polyline, bbox *BoundingBox) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, pl := range polylines {
		ls := pl.LineString()
		coords := make([][]float64, 0, len(ls))
		for _, p := range ls {
			coords = append(coords, []float64{p.Lon(), p.Lat()})
		}
		f := geojson.NewLineStringFeature(coords)
		f.SetProperty("segment_id", pl.SegmentID)
		f.SetProperty("segment_index", pl.SegmentIndex)
		f.SetProperty("from_name", pl.FromName)
		f.SetProperty("to_name", pl.ToName)
		f.SetProperty("distance_km", pl.DistanceKm)
		if pl.Type != "" {
			f.SetProperty("type", pl.Type)
		}
		fc.AddFeature(f)
	}
	if len(polylines) > 0 {
		first, last := polylines[0], polylines[len(polylines)-1]
		start := geojson.NewPointFeature([]float64{first.From.Lon, first.From.Lat})
		start.SetProperty("role", "start")
		start.SetProperty("name", first.FromName)
		fc.AddFeature(start)
		finish := geojson.NewPointFeature([]float64{last.To.Lon, last.To.Lat})
		finish.SetProperty("role", "finish")
		finish.SetProperty("name", last.ToName)
		fc.AddFeature(finish)
	}
	if bbox != nil {
		fc.BoundingBox = bbox.Slice()
	}
	return fc
}
