package pipeline

import "itinerary-geometry/internal/geo"

type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusEmpty   Status = "empty"
	StatusError   Status = "error"
)

// DroppedSegment flags a segment left out of the drawable set because one
// or both of its endpoints could not be resolved.
type DroppedSegment struct {
	Index      int      `json:"index"`
	SegmentID  string   `json:"segmentId"`
	Unresolved []string `json:"unresolved"`
}

// Result is one state of one generation as seen by the sinks.
type Result struct {
	Generation uint64           `json:"generation"`
	RouteID    string           `json:"routeId"`
	Status     Status           `json:"status"`
	Polylines  []geo.Polyline   `json:"polylines"`
	Dropped    []DroppedSegment `json:"dropped,omitempty"`
	BBox       *geo.BoundingBox `json:"bbox"`
	Err        string           `json:"error,omitempty"`
}

// MapUnavailable reports whether the display should show a "could not build
// map" indicator: a structural error, or a finished pass with nothing drawn.
func (r Result) MapUnavailable() bool {
	return r.Status == StatusError || (r.Status == StatusReady && r.BBox == nil)
}
