package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"itinerary-geometry/internal/api"
	"itinerary-geometry/internal/config"
	"itinerary-geometry/internal/db"
	"itinerary-geometry/internal/display"
	"itinerary-geometry/internal/gazetteer"
	"itinerary-geometry/internal/geo"
	"itinerary-geometry/internal/geocode"
	"itinerary-geometry/internal/itinerary"
	"itinerary-geometry/internal/metrics"
	"itinerary-geometry/internal/pipeline"
	"itinerary-geometry/internal/publisher"
	"itinerary-geometry/internal/resolver"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	// Load configuration from .env and environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// Root context with cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gaz, err := loadGazetteer(ctx, cfg)
	if err != nil {
		log.Fatalf("gazetteer error: %v", err)
	}
	log.Printf("gazetteer ready with %d keys", gaz.Len())

	// Metrics setup
	var mcol *metrics.Collector
	var servers []*http.Server
	if cfg.MetricsAddr != "" {
		mcol = metrics.NewCollector(gaz.Len(), cfg.MaxConcurrentLookups)
		servers = append(servers, mcol.Serve(cfg.MetricsAddr))
	}

	var gc resolver.Geocoder
	if cfg.GeocoderURL != "" {
		gc = geocode.NewClient(geocode.Options{
			BaseURL:        cfg.GeocoderURL,
			UserAgent:      cfg.GeocoderUserAgent,
			Language:       cfg.GeocoderLanguage,
			Timeout:        cfg.GeocoderTimeout,
			RequestsPerSec: cfg.GeocoderRPS,
		})
		log.Printf("geocoding via %s", cfg.GeocoderURL)
	} else {
		log.Printf("geocoding disabled; gazetteer misses are unresolvable")
	}
	res := resolver.New(gaz, gc, wrapResolverMetrics(mcol))

	surface := display.NewSurface()
	sinks := []pipeline.Sink{surface}
	if mcol != nil {
		sinks = append(sinks, generationGauge{mcol})
	}

	var pub *publisher.NATSPublisher
	if cfg.NATSURL != "" {
		pub, err = publisher.NewNATSPublisher(cfg.NATSURL, cfg.NATSGeometryPrefix, cfg.LogNATSSubjects, wrapPublisherMetrics(mcol))
		if err != nil {
			log.Fatalf("nats error: %v", err)
		}
		defer pub.Close()
		sinks = append(sinks, pub)
	}

	orch := pipeline.New(res, pipeline.Options{
		MaxConcurrent: cfg.MaxConcurrentLookups,
		Margin:        geo.Margin{Ratio: cfg.ViewportMarginRatio, MinDegrees: cfg.ViewportMinMarginDeg},
	}, wrapPipelineMetrics(mcol), sinks...)

	apiMetrics := wrapAPIMetrics(mcol)
	if pub != nil {
		sub, err := pub.SubscribeItineraries(cfg.NATSItinerarySubject, func(r *itinerary.Route) {
			if apiMetrics != nil {
				apiMetrics.ItineraryReceived("nats")
			}
			orch.Submit(ctx, r)
		})
		if err != nil {
			log.Fatalf("nats subscribe %s: %v", cfg.NATSItinerarySubject, err)
		}
		defer sub.Unsubscribe()
		log.Printf("listening for itineraries on %s", cfg.NATSItinerarySubject)
	}

	servers = append(servers, api.NewServer(ctx, orch, surface, apiMetrics).Serve(cfg.HTTPAddr))

	// Block until context cancelled
	<-ctx.Done()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	for _, srv := range servers {
		_ = srv.Shutdown(shutdownCtx)
	}
	orch.Wait()
	log.Println("shutdown complete")
}

// loadGazetteer layers the builtin hubs, the YAML overlay and the database
// table, later sources overriding earlier ones.
func loadGazetteer(ctx context.Context, cfg *config.Config) (*gazetteer.Gazetteer, error) {
	places := gazetteer.Builtin()
	if cfg.GazetteerFile != "" {
		extra, err := gazetteer.LoadFile(cfg.GazetteerFile)
		if err != nil {
			return nil, err
		}
		log.Printf("loaded %d places from %s", len(extra), cfg.GazetteerFile)
		places = append(places, extra...)
	}
	if cfg.DatabaseURL != "" {
		sqlDB, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		defer sqlDB.Close()
		if err := db.Ping(ctx, sqlDB); err != nil {
			return nil, err
		}
		extra, err := db.FetchPlaces(ctx, sqlDB, cfg.GazetteerTable)
		if err != nil {
			return nil, err
		}
		log.Printf("loaded %d places from table %s", len(extra), cfg.GazetteerTable)
		places = append(places, extra...)
	}
	return gazetteer.New(places)
}
