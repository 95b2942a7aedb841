package itinerary

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrNoSegments = errors.New("itinerary has no segments")

var validate = validator.New()

// Decode parses a JSON route. A literal null yields a nil route and no error,
// which callers treat as "clear the map".
func Decode(data []byte) (*Route, error) {
	var r *Route
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode route: %w", err)
	}
	if r != nil {
		EnsureIDs(r)
	}
	return r, nil
}

// Validate checks the structural invariants of a route: at least one segment,
// both endpoint names present, known transport types, non-negative prices.
func Validate(r *Route) error {
	if r.Empty() {
		return ErrNoSegments
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid route %q: %w", r.ID, err)
	}
	for i, s := range r.Segments {
		if strings.TrimSpace(s.FromName) == "" || strings.TrimSpace(s.ToName) == "" {
			return fmt.Errorf("invalid route %q: segment %d has a blank endpoint name", r.ID, i)
		}
	}
	return nil
}

// EnsureIDs gives every segment and the route a stable identity when the
// source omitted one. Segments become seg_<index>; the route id joins the
// segment ids so the same itinerary always gets the same id.
func EnsureIDs(r *Route) {
	if r == nil {
		return
	}
	ids := make([]string, len(r.Segments))
	for i := range r.Segments {
		if r.Segments[i].ID == "" {
			r.Segments[i].ID = "seg_" + strconv.Itoa(i)
		}
		ids[i] = r.Segments[i].ID
	}
	if r.ID == "" {
		r.ID = "route_" + strings.Join(ids, "__")
	}
}
