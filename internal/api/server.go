// Package api exposes the display surface over HTTP: submit the active
// itinerary, read the current geometry, and report viewport interaction.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"itinerary-geometry/internal/display"
	"itinerary-geometry/internal/itinerary"
	"itinerary-geometry/internal/pipeline"
)

const maxBodyBytes = 1 << 20

type Metrics interface {
	ItineraryReceived(source string)
}

type Server struct {
	// ctx outlives individual requests; background passes run under it.
	ctx     context.Context
	orch    *pipeline.Orchestrator
	surface *display.Surface
	metrics Metrics
}

func NewServer(ctx context.Context, orch *pipeline.Orchestrator, surface *display.Surface, m Metrics) *Server {
	return &Server{ctx: ctx, orch: orch, surface: surface, metrics: m}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/itinerary", s.handleItinerary)
	mux.HandleFunc("GET /api/geometry", s.handleGeometry)
	mux.HandleFunc("POST /api/viewport/manual", s.handleManualViewport)
	mux.HandleFunc("POST /api/viewport/fit", s.handleTakeFit)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Serve starts the HTTP surface on addr.
func (s *Server) Serve(addr string) *http.Server {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http server error: %v", err)
		}
	}()
	log.Printf("http listening on %s", addr)
	return srv
}

// handleItinerary accepts a route (or null to clear the map). With
// ?wait=true the response carries the final result of this generation.
func (s *Server) handleItinerary(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	route, err := itinerary.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if s.metrics != nil {
		s.metrics.ItineraryReceived("http")
	}

	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		res, err := s.orch.Resolve(r.Context(), route)
		switch {
		case errors.Is(err, pipeline.ErrSuperseded):
			writeError(w, http.StatusConflict, err)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusServiceUnavailable, err)
		case err != nil:
			writeError(w, http.StatusUnprocessableEntity, err)
		default:
			writeJSON(w, http.StatusOK, res)
		}
		return
	}

	gen := s.orch.Submit(s.ctx, route)
	if !route.Empty() {
		if err := itinerary.Validate(route); err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"generation": gen, "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"generation": gen})
}

func (s *Server) handleGeometry(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "geojson" {
		b, err := s.surface.FeatureCollection().MarshalJSON()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write(b)
		return
	}
	writeJSON(w, http.StatusOK, s.surface.Snapshot())
}

type viewportRequest struct {
	Generation uint64 `json:"generation"`
}

func (s *Server) handleManualViewport(w http.ResponseWriter, r *http.Request) {
	var req viewportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !s.surface.MarkManualViewport(req.Generation) {
		writeError(w, http.StatusConflict, errors.New("generation is no longer displayed"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTakeFit(w http.ResponseWriter, _ *http.Request) {
	bb, gen, ok := s.surface.TakeFit()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"generation": gen, "bbox": bb})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
