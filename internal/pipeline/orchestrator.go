// Package pipeline drives geometry resolution for the itinerary currently on
// display.
//
// Every call to Resolve or Submit starts a new generation. Work spawned for a
// generation keeps running when a newer itinerary arrives, but its result is
// only published if its generation is still current at commit time, so the
// sinks never see geometry for anything but the latest itinerary.
package pipeline

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"itinerary-geometry/internal/geo"
	"itinerary-geometry/internal/itinerary"
	"itinerary-geometry/internal/resolver"
)

// ErrSuperseded is returned by Resolve when a newer itinerary started before
// this one finished. It is not a failure.
var ErrSuperseded = errors.New("resolution superseded by a newer itinerary")

// EndpointResolver is satisfied by *resolver.Resolver.
type EndpointResolver interface {
	Key(ep resolver.Endpoint) resolver.Key
	Resolve(ctx context.Context, ep resolver.Endpoint) (geo.Coordinate, error)
}

// Sink receives every state change of the current generation. Publish is
// called with the orchestrator lock held and must not block or call back
// into the orchestrator.
type Sink interface {
	Publish(Result)
}

type Metrics interface {
	PassStarted(distinctKeys int)
	PassFinished(status Status, drawn, dropped int, d time.Duration)
	StaleDiscarded()
}

type Options struct {
	// MaxConcurrent bounds the number of endpoints resolved at once within a
	// pass. Zero or negative means unbounded.
	MaxConcurrent int
	Margin        geo.Margin
}

type Orchestrator struct {
	res     EndpointResolver
	opts    Options
	metrics Metrics
	sinks   []Sink

	mu  sync.Mutex
	gen uint64

	wg sync.WaitGroup
}

func New(res EndpointResolver, opts Options, m Metrics, sinks ...Sink) *Orchestrator {
	return &Orchestrator{res: res, opts: opts, metrics: m, sinks: sinks}
}

// Generation returns the generation of the most recently requested itinerary.
func (o *Orchestrator) Generation() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gen
}

// Resolve resolves route synchronously. Empty routes return an empty result
// immediately. Structurally invalid routes publish an error state and return
// the validation error. If a newer itinerary arrives first, the result is
// discarded and ErrSuperseded returned.
//
// Ending ctx only releases the caller: the pass still completes and is
// committed while its generation is current, and ctx.Err() is returned
// afterwards.
func (o *Orchestrator) Resolve(ctx context.Context, route *itinerary.Route) (*Result, error) {
	initial, err := o.begin(route)
	if err != nil {
		return nil, err
	}
	if initial.Status == StatusEmpty {
		return initial, nil
	}
	res := o.run(ctx, initial.Generation, route)
	if !o.commit(res) {
		return nil, ErrSuperseded
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return res, nil
}

// Submit starts resolution in the background and returns its generation.
// The outcome reaches the sinks only.
func (o *Orchestrator) Submit(ctx context.Context, route *itinerary.Route) uint64 {
	initial, err := o.begin(route)
	if err != nil || initial.Status == StatusEmpty {
		return initial.Generation
	}
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.commit(o.run(ctx, initial.Generation, route))
	}()
	return initial.Generation
}

// Wait blocks until every background pass has returned.
func (o *Orchestrator) Wait() { o.wg.Wait() }

// begin opens a new generation and publishes its first state in one critical
// section, so an older pass cannot commit between the two. The returned
// result is never nil; err is set only for a structurally invalid route.
func (o *Orchestrator) begin(route *itinerary.Route) (*Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gen++
	res := &Result{Generation: o.gen, Status: StatusLoading}
	if route != nil {
		res.RouteID = route.ID
	}
	var err error
	if route.Empty() {
		res.Status = StatusEmpty
	} else if err = itinerary.Validate(route); err != nil {
		res.Status = StatusError
		res.Err = err.Error()
		log.Printf("generation %d route %q rejected: %v", o.gen, res.RouteID, err)
	}
	o.publishLocked(*res)
	return res, err
}

// commit publishes res if its generation is still current.
func (o *Orchestrator) commit(res *Result) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if res.Generation != o.gen {
		if o.metrics != nil {
			o.metrics.StaleDiscarded()
		}
		return false
	}
	o.publishLocked(*res)
	return true
}

func (o *Orchestrator) publishLocked(res Result) {
	for _, s := range o.sinks {
		s.Publish(res)
	}
}

func (o *Orchestrator) current(g uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gen == g
}

type segmentKeys struct {
	from, to resolver.Key
}

// run resolves every distinct endpoint of route once and assembles the
// drawable set. Lookups not yet started when the generation goes stale are
// skipped; lookups already in flight run to completion. Cancellation of ctx
// is not propagated to lookups, which are bounded by the geocoder timeout.
func (o *Orchestrator) run(ctx context.Context, g uint64, route *itinerary.Route) *Result {
	start := time.Now()
	ctx = context.WithoutCancel(ctx)

	keys := make([]segmentKeys, len(route.Segments))
	endpoints := make(map[resolver.Key]resolver.Endpoint)
	var order []resolver.Key
	add := func(ep resolver.Endpoint) resolver.Key {
		k := o.res.Key(ep)
		if _, seen := endpoints[k]; !seen {
			endpoints[k] = ep
			order = append(order, k)
		}
		return k
	}
	for i, s := range route.Segments {
		keys[i] = segmentKeys{
			from: add(resolver.Endpoint{ID: s.FromID, Name: s.FromName}),
			to:   add(resolver.Endpoint{ID: s.ToID, Name: s.ToName}),
		}
	}
	if o.metrics != nil {
		o.metrics.PassStarted(len(order))
	}

	cache := newPassCache(len(order))
	var eg errgroup.Group
	if o.opts.MaxConcurrent > 0 {
		eg.SetLimit(o.opts.MaxConcurrent)
	}
	for _, k := range order {
		ep := endpoints[k]
		eg.Go(func() error {
			if !o.current(g) {
				return nil
			}
			c, err := o.res.Resolve(ctx, ep)
			cache.settle(k, c, err == nil)
			return nil
		})
	}
	_ = eg.Wait()

	res := assemble(g, route, keys, cache, o.opts.Margin)
	if o.metrics != nil {
		o.metrics.PassFinished(res.Status, len(res.Polylines), len(res.Dropped), time.Since(start))
	}
	if len(res.Dropped) > 0 {
		log.Printf("generation %d route %q: drew %d of %d segments", g, route.ID, len(res.Polylines), len(route.Segments))
	}
	return res
}

func assemble(g uint64, route *itinerary.Route, keys []segmentKeys, cache *passCache, margin geo.Margin) *Result {
	res := &Result{Generation: g, RouteID: route.ID, Status: StatusReady}
	for i, s := range route.Segments {
		from, okFrom := cache.get(keys[i].from)
		to, okTo := cache.get(keys[i].to)
		if !okFrom || !okTo {
			d := DroppedSegment{Index: i, SegmentID: s.ID}
			if !okFrom {
				d.Unresolved = append(d.Unresolved, s.FromName)
			}
			if !okTo {
				d.Unresolved = append(d.Unresolved, s.ToName)
			}
			res.Dropped = append(res.Dropped, d)
			continue
		}
		res.Polylines = append(res.Polylines, geo.Polyline{
			SegmentID:    s.ID,
			SegmentIndex: i,
			Type:         string(s.Type),
			From:         from,
			To:           to,
			FromName:     s.FromName,
			ToName:       s.ToName,
			DistanceKm:   geo.DistanceKm(from, to),
		})
	}
	if bb, ok := geo.Fit(res.Polylines, margin); ok {
		res.BBox = &bb
	}
	return res
}
