package main

import (
	"time"

	"itinerary-geometry/internal/api"
	"itinerary-geometry/internal/metrics"
	"itinerary-geometry/internal/pipeline"
	"itinerary-geometry/internal/publisher"
	"itinerary-geometry/internal/resolver"
)

// wrapPublisherMetrics adapts our Collector to the PublisherMetrics interface.
func wrapPublisherMetrics(c *metrics.Collector) publisher.PublisherMetrics {
	if c == nil {
		return nil
	}
	return &pubMetrics{c: c}
}

type pubMetrics struct{ c *metrics.Collector }

func (p *pubMetrics) NATSPublishedInc()              { p.c.NATSPublished.Inc() }
func (p *pubMetrics) NATSPublishErrInc()             { p.c.NATSPublishErrs.Inc() }
func (p *pubMetrics) PublishObserve(d time.Duration) { p.c.PublishDuration.Observe(d.Seconds()) }
func (p *pubMetrics) NATSSetConnected(b bool) {
	if b {
		p.c.NATSConnected.Set(1)
	} else {
		p.c.NATSConnected.Set(0)
	}
}

func wrapResolverMetrics(c *metrics.Collector) resolver.Metrics {
	if c == nil {
		return nil
	}
	return &resolverMetrics{c: c}
}

type resolverMetrics struct{ c *metrics.Collector }

func (r *resolverMetrics) GazetteerHit()    { r.c.GazetteerHits.Inc() }
func (r *resolverMetrics) UnresolvableInc() { r.c.UnresolvableKeys.Inc() }
func (r *resolverMetrics) GeocodeObserve(outcome string, d time.Duration) {
	r.c.GeocodeRequests.WithLabelValues(outcome).Inc()
	r.c.GeocodeDuration.Observe(d.Seconds())
}

func wrapPipelineMetrics(c *metrics.Collector) pipeline.Metrics {
	if c == nil {
		return nil
	}
	return &pipelineMetrics{c: c}
}

type pipelineMetrics struct{ c *metrics.Collector }

func (p *pipelineMetrics) PassStarted(distinctKeys int) { p.c.DistinctKeys.Observe(float64(distinctKeys)) }
func (p *pipelineMetrics) StaleDiscarded()              { p.c.StaleDiscards.Inc() }
func (p *pipelineMetrics) PassFinished(status pipeline.Status, drawn, dropped int, d time.Duration) {
	p.c.Passes.WithLabelValues(string(status)).Inc()
	p.c.PassDuration.Observe(d.Seconds())
	p.c.SegmentsDrawn.Add(float64(drawn))
	p.c.SegmentsDropped.Add(float64(dropped))
}

func wrapAPIMetrics(c *metrics.Collector) api.Metrics {
	if c == nil {
		return nil
	}
	return &apiMetrics{c: c}
}

type apiMetrics struct{ c *metrics.Collector }

func (a *apiMetrics) ItineraryReceived(source string) {
	a.c.ItinerariesReceived.WithLabelValues(source).Inc()
}

// generationGauge is a pipeline.Sink tracking the displayed generation.
type generationGauge struct{ c *metrics.Collector }

func (g generationGauge) Publish(res pipeline.Result) {
	g.c.CurrentGeneration.Set(float64(res.Generation))
}
