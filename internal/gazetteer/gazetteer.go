// Package gazetteer is the first, offline resolution tier: a fixed table of
// curated places keyed by stable identifier and by normalized name.
//
// A Gazetteer is built once (compiled hubs plus optional overlays loaded at
// startup) and is read-only afterwards, so lookups never perform I/O and are
// safe for concurrent use.
package gazetteer

import (
	"strings"

	"github.com/pkg/errors"

	"itinerary-geometry/internal/geo"
)

// Place is one curated entry. ID and every name are independent keys.
type Place struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	Aliases        []string `yaml:"aliases,omitempty"`
	geo.Coordinate `yaml:",inline"`
}

type Gazetteer struct {
	byID   map[string]geo.Coordinate
	byName map[string]geo.Coordinate
}

// Normalize folds a place name into its lookup form.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// New builds a table from places in order; a later entry overrides an earlier
// one with the same key, which is how overlays replace compiled hubs.
func New(places []Place) (*Gazetteer, error) {
	g := &Gazetteer{
		byID:   make(map[string]geo.Coordinate, len(places)),
		byName: make(map[string]geo.Coordinate, len(places)),
	}
	for i, p := range places {
		if !p.Coordinate.Valid() {
			return nil, errors.Errorf("place %d (id=%q name=%q): invalid coordinate %v", i, p.ID, p.Name, p.Coordinate)
		}
		if p.ID == "" && Normalize(p.Name) == "" && len(p.Aliases) == 0 {
			return nil, errors.Errorf("place %d: neither id nor name set", i)
		}
		if p.ID != "" {
			g.byID[p.ID] = p.Coordinate
		}
		for _, n := range append([]string{p.Name}, p.Aliases...) {
			if k := Normalize(n); k != "" {
				g.byName[k] = p.Coordinate
			}
		}
	}
	return g, nil
}

// Default returns the table of compiled hubs only.
func Default() *Gazetteer {
	g, err := New(Builtin())
	if err != nil {
		panic(err)
	}
	return g
}

// Lookup tries the id table first, then the normalized name.
func (g *Gazetteer) Lookup(id, name string) (geo.Coordinate, bool) {
	if id != "" {
		if c, ok := g.byID[id]; ok {
			return c, true
		}
	}
	if k := Normalize(name); k != "" {
		if c, ok := g.byName[k]; ok {
			return c, true
		}
	}
	return geo.Coordinate{}, false
}

func (g *Gazetteer) HasID(id string) bool {
	_, ok := g.byID[id]
	return id != "" && ok
}

// Len is the number of distinct keys (ids plus names).
func (g *Gazetteer) Len() int { return len(g.byID) + len(g.byName) }
