package config

import (
	"os"
	"testing"
	"time"
)

var envKeys = []string{
	"HTTP_ADDR", "METRICS_ADDR", "NATS_URL", "NATS_ITINERARY_SUBJECT", "NATS_GEOMETRY_PREFIX",
	"LOG_NATS_SUBJECTS", "GEOCODER_URL", "GEOCODER_USER_AGENT", "GEOCODER_LANGUAGE",
	"GEOCODER_TIMEOUT_MS", "GEOCODER_RPS", "MAX_CONCURRENT_LOOKUPS", "GAZETTEER_FILE",
	"DATABASE_URL", "PG_DSN", "GAZETTEER_TABLE", "VIEWPORT_MARGIN_RATIO", "VIEWPORT_MIN_MARGIN_DEG",
}

// clearEnv runs the test in an empty directory (no .env) with all known
// variables unset.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, k := range envKeys {
		if v, ok := os.LookupEnv(k); ok {
			t.Setenv(k, v)
			os.Unsetenv(k)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.MetricsAddr != "" || cfg.NATSURL != "" {
		t.Errorf("unexpected addresses %+v", cfg)
	}
	if cfg.GeocoderURL != "https://nominatim.openstreetmap.org" || cfg.GeocoderTimeout != 5*time.Second || cfg.GeocoderRPS != 1 {
		t.Errorf("unexpected geocoder defaults %+v", cfg)
	}
	if cfg.MaxConcurrentLookups != 4 || cfg.GazetteerTable != "places" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.ViewportMarginRatio != 0.1 || cfg.ViewportMinMarginDeg != 0.05 {
		t.Errorf("unexpected viewport defaults %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("NATS_URL", "nats://127.0.0.1:4222")
	t.Setenv("LOG_NATS_SUBJECTS", "yes")
	t.Setenv("GEOCODER_URL", "")
	t.Setenv("GEOCODER_TIMEOUT_MS", "250")
	t.Setenv("MAX_CONCURRENT_LOOKUPS", "8")
	t.Setenv("PG_DSN", "postgres://u@localhost/geo")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.LogNATSSubjects || cfg.NATSURL != "nats://127.0.0.1:4222" {
		t.Errorf("nats settings not applied: %+v", cfg)
	}
	if cfg.GeocoderURL != "" {
		t.Errorf("empty GEOCODER_URL should disable geocoding, got %q", cfg.GeocoderURL)
	}
	if cfg.GeocoderTimeout != 250*time.Millisecond || cfg.MaxConcurrentLookups != 8 {
		t.Errorf("numeric overrides not applied: %+v", cfg)
	}
	if cfg.DatabaseURL != "postgres://u@localhost/geo" {
		t.Errorf("PG_DSN fallback not applied: %q", cfg.DatabaseURL)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	if err := os.WriteFile(".env", []byte("HTTP_ADDR=:9000\nGEOCODER_RPS=0.5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("HTTP_ADDR")
		os.Unsetenv("GEOCODER_RPS")
	})
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9000" || cfg.GeocoderRPS != 0.5 {
		t.Errorf(".env not applied: %+v", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	cases := map[string]string{
		"GEOCODER_TIMEOUT_MS":    "soon",
		"GEOCODER_RPS":           "-1",
		"MAX_CONCURRENT_LOOKUPS": "0",
		"VIEWPORT_MARGIN_RATIO":  "2",
		"GEOCODER_URL":           "not a url",
		"NATS_URL":               "::",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(k, v)
			if _, err := Load(); err == nil {
				t.Errorf("%s=%q should be rejected", k, v)
			}
		})
	}
}
