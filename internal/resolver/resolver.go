// Package resolver turns one named endpoint into a coordinate using two
// tiers: the static gazetteer, then the geocoding service.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"itinerary-geometry/internal/gazetteer"
	"itinerary-geometry/internal/geo"
	"itinerary-geometry/internal/geocode"
)

// ErrUnresolvable is the only failure Resolve reports; the underlying
// geocoding error is logged, not returned.
var ErrUnresolvable = errors.New("endpoint unresolvable")

// Endpoint is one terminus of a segment as named by the search backend.
type Endpoint struct {
	ID   string
	Name string
}

// Key deduplicates endpoints within one resolution pass.
type Key string

type Geocoder interface {
	Geocode(ctx context.Context, name string) (geo.Coordinate, error)
}

// Metrics receives per-tier outcomes. Outcome is one of
// "ok", "not_found", "transport_error".
type Metrics interface {
	GazetteerHit()
	GeocodeObserve(outcome string, d time.Duration)
	UnresolvableInc()
}

type Resolver struct {
	gaz      *gazetteer.Gazetteer
	geocoder Geocoder
	metrics  Metrics
}

// New builds a resolver. geocoder may be nil, in which case every gazetteer
// miss is unresolvable.
func New(gaz *gazetteer.Gazetteer, geocoder Geocoder, m Metrics) *Resolver {
	return &Resolver{gaz: gaz, geocoder: geocoder, metrics: m}
}

// Key prefers the endpoint id when the gazetteer knows it, otherwise the
// normalized name.
func (r *Resolver) Key(ep Endpoint) Key {
	if r.gaz.HasID(ep.ID) {
		return Key("id:" + ep.ID)
	}
	return Key("name:" + gazetteer.Normalize(ep.Name))
}

func (r *Resolver) Resolve(ctx context.Context, ep Endpoint) (geo.Coordinate, error) {
	if c, ok := r.gaz.Lookup(ep.ID, ep.Name); ok {
		if r.metrics != nil {
			r.metrics.GazetteerHit()
		}
		return c, nil
	}
	if r.geocoder == nil {
		r.unresolvable(ep, errors.New("not in gazetteer and geocoding disabled"))
		return geo.Coordinate{}, fmt.Errorf("%w: %q", ErrUnresolvable, ep.Name)
	}

	start := time.Now()
	c, err := r.geocoder.Geocode(ctx, ep.Name)
	if r.metrics != nil {
		r.metrics.GeocodeObserve(outcome(err), time.Since(start))
	}
	if err != nil {
		r.unresolvable(ep, err)
		return geo.Coordinate{}, fmt.Errorf("%w: %q", ErrUnresolvable, ep.Name)
	}
	return c, nil
}

func (r *Resolver) unresolvable(ep Endpoint, cause error) {
	if r.metrics != nil {
		r.metrics.UnresolvableInc()
	}
	log.Printf("endpoint unresolvable id=%q name=%q: %v", ep.ID, ep.Name, cause)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, geocode.ErrNotFound):
		return "not_found"
	default:
		return "transport_error"
	}
}
