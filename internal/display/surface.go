// Package display keeps the state shown on the map for the active itinerary
// and decides when the map should be framed.
package display

import (
	"sync"

	geojson "github.com/paulmach/go.geojson"

	"itinerary-geometry/internal/geo"
	"itinerary-geometry/internal/pipeline"
)

// State is a point-in-time copy of what the map shows.
type State struct {
	pipeline.Result
	Center geo.Coordinate `json:"center"`
	// Fit is the pending framing box for this generation. It is nil once the
	// fit has been applied or the user moved the map manually.
	Fit            *geo.BoundingBox `json:"fit,omitempty"`
	ManualViewport bool             `json:"manualViewport"`
	MapUnavailable bool             `json:"mapUnavailable"`
}

// Surface is a pipeline.Sink holding the latest published result.
type Surface struct {
	mu         sync.RWMutex
	current    pipeline.Result
	fitPending bool
	manual     bool
}

func NewSurface() *Surface {
	return &Surface{current: pipeline.Result{Status: pipeline.StatusEmpty}}
}

// Publish replaces the displayed state. A new generation resets the manual
// viewport flag; a ready result with geometry arms a single fit.
func (s *Surface) Publish(res pipeline.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res.Generation != s.current.Generation {
		s.manual = false
		s.fitPending = false
	}
	s.current = res
	if res.Status == pipeline.StatusReady && res.BBox != nil && !s.manual {
		s.fitPending = true
	}
}

func (s *Surface) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{
		Result:         s.current,
		Center:         center(s.current.Polylines),
		ManualViewport: s.manual,
		MapUnavailable: s.current.MapUnavailable(),
	}
	if s.fitPending {
		bb := *s.current.BBox
		st.Fit = &bb
	}
	return st
}

// TakeFit hands out the framing box for the current generation at most once.
func (s *Surface) TakeFit() (geo.BoundingBox, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.fitPending {
		return geo.BoundingBox{}, s.current.Generation, false
	}
	s.fitPending = false
	return *s.current.BBox, s.current.Generation, true
}

// MarkManualViewport records that the user panned or zoomed while gen was
// displayed, cancelling any pending fit. Marks for other generations are
// ignored and reported as false.
func (s *Surface) MarkManualViewport(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.current.Generation {
		return false
	}
	s.manual = true
	s.fitPending = false
	return true
}

func (s *Surface) FeatureCollection() *geojson.FeatureCollection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return geo.FeatureCollection(s.current.Polylines, s.current.BBox)
}

// center follows the map's initial placement: the first drawn origin, or
// the default centre when nothing is drawn.
func center(pls []geo.Polyline) geo.Coordinate {
	if len(pls) > 0 {
		return pls[0].From
	}
	return geo.DefaultCenter
}
