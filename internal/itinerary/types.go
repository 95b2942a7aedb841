package itinerary

import (
	"strings"
	"time"
)

type TransportType string

const (
	Air   TransportType = "air"
	Rail  TransportType = "rail"
	Bus   TransportType = "bus"
	River TransportType = "river"
	Ferry TransportType = "ferry"
)

// Segment is one leg of a Route. Segments are never mutated after decoding
// except for EnsureIDs filling a missing ID.
type Segment struct {
	ID        string        `json:"id"`
	FromID    string        `json:"from_id,omitempty"`
	ToID      string        `json:"to_id,omitempty"`
	FromName  string        `json:"from_name" validate:"required"`
	ToName    string        `json:"to_name" validate:"required"`
	Type      TransportType `json:"type,omitempty" validate:"omitempty,oneof=air rail bus river ferry"`
	Operator  string        `json:"operator,omitempty"`
	Departure Time          `json:"departure,omitempty"`
	Arrival   Time          `json:"arrival,omitempty"`
	Price     *float64      `json:"price,omitempty" validate:"omitempty,gte=0"`
	DelayRisk *float64      `json:"delay_risk,omitempty" validate:"omitempty,gte=0,lte=1"`
	Source    string        `json:"source,omitempty"`
}

// Route is an itinerary as produced by the search backend.
type Route struct {
	ID                   string    `json:"id"`
	Segments             []Segment `json:"segments" validate:"dive"`
	TotalDurationMinutes int       `json:"total_duration_minutes,omitempty" validate:"gte=0"`
	TotalPrice           *float64  `json:"total_price,omitempty" validate:"omitempty,gte=0"`
	Label                string    `json:"label,omitempty"`
}

// Empty reports whether r carries nothing to draw. A nil route is empty.
func (r *Route) Empty() bool {
	return r == nil || len(r.Segments) == 0
}

// Time accepts RFC 3339 timestamps as well as the zone-less ISO form the
// search backend emits ("2025-02-10T07:00:00").
type Time struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

func (t *Time) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range timeLayouts {
		v, err := time.Parse(layout, s)
		if err == nil {
			t.Time = v
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return t.Time.MarshalJSON()
}
