package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newServer(t *testing.T, h http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestGeocodeFirstCandidate(t *testing.T) {
	srv, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if q := r.URL.Query().Get("q"); q != "Тикси" {
			t.Errorf("unexpected query %q", q)
		}
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("unexpected user agent %q", ua)
		}
		_, _ = w.Write([]byte(`[{"lat":"71.6369","lon":"128.8647","display_name":"Тикси"},{"lat":1,"lon":2}]`))
	})
	c := NewClient(Options{BaseURL: srv.URL + "/", UserAgent: "test-agent"})
	coord, err := c.Geocode(context.Background(), " Тикси ")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if coord.Lat != 71.6369 || coord.Lon != 128.8647 {
		t.Errorf("unexpected coordinate %v", coord)
	}
	if n := atomic.LoadInt32(calls); n != 1 {
		t.Errorf("expected exactly one upstream call, got %d", n)
	}
}

func TestGeocodeNumericCoordinates(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"lat":60.1,"lon":120.2}]`))
	})
	coord, err := NewClient(Options{BaseURL: srv.URL}).Geocode(context.Background(), "x")
	if err != nil || coord.Lat != 60.1 || coord.Lon != 120.2 {
		t.Fatalf("got %v, %v", coord, err)
	}
}

func TestGeocodeNotFound(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	_, err := NewClient(Options{BaseURL: srv.URL}).Geocode(context.Background(), "Nowhere")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var te *TransportError
	if errors.As(err, &te) {
		t.Fatal("not found must not be a transport error")
	}
}

func TestGeocodeTransportErrors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		},
		"garbage": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		},
		"bad lat": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"lat":"north","lon":"1"}]`))
		},
		"out of range": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"lat":"95","lon":"1"}]`))
		},
	}
	for name, h := range cases {
		srv, _ := newServer(t, h)
		_, err := NewClient(Options{BaseURL: srv.URL}).Geocode(context.Background(), "x")
		var te *TransportError
		if !errors.As(err, &te) {
			t.Errorf("%s: expected TransportError, got %v", name, err)
		}
	}
}

func TestGeocodeTimeout(t *testing.T) {
	release := make(chan struct{})
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	c := NewClient(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	start := time.Now()
	_, err := c.Geocode(context.Background(), "slow")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError on timeout, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("timeout not honoured")
	}
}

func TestGeocodeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	_, err := NewClient(Options{BaseURL: url}).Geocode(context.Background(), "x")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}
