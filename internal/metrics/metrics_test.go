package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorStaticGauges(t *testing.T) {
	c := NewCollector(27, 4)
	if v := testutil.ToFloat64(c.GazetteerEntries); v != 27 {
		t.Errorf("gazetteer keys gauge = %v", v)
	}
	if v := testutil.ToFloat64(c.MaxConcurrent); v != 4 {
		t.Errorf("max concurrent gauge = %v", v)
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	c := NewCollector(0, 1)
	c.GeocodeRequests.WithLabelValues("not_found").Inc()
	c.Passes.WithLabelValues("ready").Add(2)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)
	for _, want := range []string{
		`geometry_geocode_requests_total{outcome="not_found"} 1`,
		`geometry_resolution_passes_total{status="ready"} 2`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
