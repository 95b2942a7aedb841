package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	ItinerariesReceived *prometheus.CounterVec // source label: http|nats
	CurrentGeneration   prometheus.Gauge

	Passes          *prometheus.CounterVec // status label: ready|empty|error
	PassDuration    prometheus.Histogram
	DistinctKeys    prometheus.Histogram
	SegmentsDrawn   prometheus.Counter
	SegmentsDropped prometheus.Counter
	StaleDiscards   prometheus.Counter

	GazetteerHits    prometheus.Counter
	GeocodeRequests  *prometheus.CounterVec // outcome label: ok|not_found|transport_error
	GeocodeDuration  prometheus.Histogram
	UnresolvableKeys prometheus.Counter

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge
	PublishDuration prometheus.Histogram

	GazetteerEntries prometheus.Gauge
	MaxConcurrent    prometheus.Gauge
}

func NewCollector(gazetteerEntries, maxConcurrent int) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		ItinerariesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geometry_itineraries_received_total",
			Help: "Itineraries submitted for display, by inbound surface.",
		}, []string{"source"}),
		CurrentGeneration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "geometry_current_generation",
			Help: "Generation of the most recently requested itinerary.",
		}),
		Passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geometry_resolution_passes_total",
			Help: "Finished resolution passes by final status.",
		}, []string{"status"}),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "geometry_pass_duration_seconds",
			Help:    "Wall time of one resolution pass.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 16),
		}),
		DistinctKeys: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "geometry_pass_distinct_keys",
			Help:    "Distinct endpoint keys per resolution pass.",
			Buckets: prometheus.LinearBuckets(1, 2, 10),
		}),
		SegmentsDrawn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "geometry_segments_drawn_total",
			Help: "Segments turned into polylines.",
		}),
		SegmentsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "geometry_segments_dropped_total",
			Help: "Segments left out because an endpoint was unresolvable.",
		}),
		StaleDiscards: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "geometry_stale_results_discarded_total",
			Help: "Pass results discarded because a newer itinerary superseded them.",
		}),
		GazetteerHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "geometry_gazetteer_hits_total",
			Help: "Endpoints resolved from the static gazetteer.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geometry_geocode_requests_total",
			Help: "Geocoding calls by outcome.",
		}, []string{"outcome"}),
		GeocodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "geometry_geocode_duration_seconds",
			Help:    "Latency of geocoding calls.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		UnresolvableKeys: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "geometry_unresolvable_endpoints_total",
			Help: "Endpoints neither tier could resolve.",
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "geometry_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "geometry_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "geometry_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "geometry_nats_publish_duration_seconds",
			Help:    "Duration of NATS publish calls.",
			Buckets: prometheus.DefBuckets,
		}),
		GazetteerEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "geometry_gazetteer_keys",
			Help: "Id and name keys loaded into the static gazetteer.",
		}),
		MaxConcurrent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "geometry_max_concurrent_lookups",
			Help: "Configured fan-out width per resolution pass.",
		}),
	}

	reg.MustRegister(
		c.ItinerariesReceived, c.CurrentGeneration,
		c.Passes, c.PassDuration, c.DistinctKeys,
		c.SegmentsDrawn, c.SegmentsDropped, c.StaleDiscards,
		c.GazetteerHits, c.GeocodeRequests, c.GeocodeDuration, c.UnresolvableKeys,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected, c.PublishDuration,
		c.GazetteerEntries, c.MaxConcurrent,
	)

	c.GazetteerEntries.Set(float64(gazetteerEntries))
	c.MaxConcurrent.Set(float64(maxConcurrent))

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}
