package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string
	MetricsAddr string

	NATSURL              string `validate:"omitempty,url"`
	NATSItinerarySubject string `validate:"required"`
	NATSGeometryPrefix   string `validate:"required"`
	LogNATSSubjects      bool

	GeocoderURL       string        `validate:"omitempty,url"`
	GeocoderUserAgent string        `validate:"required_with=GeocoderURL"`
	GeocoderLanguage  string
	GeocoderTimeout   time.Duration `validate:"gte=0"`
	GeocoderRPS       float64       `validate:"gte=0"`

	MaxConcurrentLookups int `validate:"gte=1,lte=64"`

	GazetteerFile  string
	DatabaseURL    string
	GazetteerTable string `validate:"required"`

	ViewportMarginRatio  float64 `validate:"gte=0,lte=1"`
	ViewportMinMarginDeg float64 `validate:"gte=0,lte=10"`
}

func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.HTTPAddr = getenvDefault("HTTP_ADDR", ":8080")
	// Metrics listen address (e.g., ":9102"). Empty disables the metrics server.
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	// Empty NATS_URL disables the NATS transport entirely.
	cfg.NATSURL = os.Getenv("NATS_URL")
	cfg.NATSItinerarySubject = getenvDefault("NATS_ITINERARY_SUBJECT", "itineraries.active")
	cfg.NATSGeometryPrefix = getenvDefault("NATS_GEOMETRY_PREFIX", "geometry")
	cfg.LogNATSSubjects = parseBool(os.Getenv("LOG_NATS_SUBJECTS"))

	// GEOCODER_URL may be set to an empty string to run gazetteer-only.
	if v, ok := os.LookupEnv("GEOCODER_URL"); ok {
		cfg.GeocoderURL = strings.TrimSpace(v)
	} else {
		cfg.GeocoderURL = "https://nominatim.openstreetmap.org"
	}
	cfg.GeocoderUserAgent = getenvDefault("GEOCODER_USER_AGENT", "itinerary-geometry/1.0")
	cfg.GeocoderLanguage = getenvDefault("GEOCODER_LANGUAGE", "ru")

	if v := os.Getenv("GEOCODER_TIMEOUT_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return nil, fmt.Errorf("invalid GEOCODER_TIMEOUT_MS: %q", v)
		}
		cfg.GeocoderTimeout = time.Duration(ms) * time.Millisecond
	} else {
		cfg.GeocoderTimeout = 5 * time.Second
	}

	if v := os.Getenv("GEOCODER_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("invalid GEOCODER_RPS: %q", v)
		}
		cfg.GeocoderRPS = f
	} else {
		// Nominatim usage policy: at most one request per second.
		cfg.GeocoderRPS = 1
	}

	if v := os.Getenv("MAX_CONCURRENT_LOOKUPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_CONCURRENT_LOOKUPS: %q", v)
		}
		cfg.MaxConcurrentLookups = n
	} else {
		cfg.MaxConcurrentLookups = 4
	}

	cfg.GazetteerFile = os.Getenv("GAZETTEER_FILE")
	cfg.DatabaseURL = firstNonEmpty(os.Getenv("DATABASE_URL"), os.Getenv("PG_DSN"))
	cfg.GazetteerTable = getenvDefault("GAZETTEER_TABLE", "places")

	var err error
	if cfg.ViewportMarginRatio, err = floatDefault("VIEWPORT_MARGIN_RATIO", 0.1); err != nil {
		return nil, err
	}
	if cfg.ViewportMinMarginDeg, err = floatDefault("VIEWPORT_MIN_MARGIN_DEG", 0.05); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func floatDefault(k string, def float64) (float64, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", k, v)
	}
	return f, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
