// Package geocode resolves free-text place names through a Nominatim
// compatible search endpoint. The client is stateless: one upstream request
// per call, no retries, no caching.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"itinerary-geometry/internal/geo"
)

// ErrNotFound is returned when the upstream service has no candidate.
var ErrNotFound = errors.New("geocode: no candidate")

// TransportError covers network failures, timeouts, non-200 replies and
// undecodable bodies.
type TransportError struct {
	Name string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("geocode %q: %v", e.Name, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

type Options struct {
	BaseURL   string
	UserAgent string
	Language  string
	// Timeout bounds a single call including rate-limit wait. Zero means
	// only the caller's context applies.
	Timeout time.Duration
	// RequestsPerSec paces outgoing calls; zero disables pacing.
	RequestsPerSec float64
	HTTPClient     *http.Client
}

type Client struct {
	baseURL    string
	userAgent  string
	language   string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		language:   opts.Language,
		timeout:    opts.Timeout,
		httpClient: hc,
	}
	if opts.RequestsPerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSec), 1)
	}
	return c
}

type candidate struct {
	Lat         flexFloat `json:"lat"`
	Lon         flexFloat `json:"lon"`
	DisplayName string    `json:"display_name"`
}

// Geocode returns the first candidate for name.
func (c *Client) Geocode(ctx context.Context, name string) (geo.Coordinate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return geo.Coordinate{}, errors.Wrap(ErrNotFound, "empty name")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return geo.Coordinate{}, &TransportError{Name: name, Err: errors.Wrap(err, "rate limit wait")}
		}
	}

	params := url.Values{}
	params.Set("q", name)
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	if c.language != "" {
		params.Set("accept-language", c.language)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return geo.Coordinate{}, &TransportError{Name: name, Err: errors.Wrap(err, "build request")}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return geo.Coordinate{}, &TransportError{Name: name, Err: errors.Wrap(err, "request")}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return geo.Coordinate{}, &TransportError{Name: name, Err: errors.Errorf("HTTP %d", resp.StatusCode)}
	}

	var results []candidate
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return geo.Coordinate{}, &TransportError{Name: name, Err: errors.Wrap(err, "decode response")}
	}
	if len(results) == 0 {
		return geo.Coordinate{}, errors.Wrapf(ErrNotFound, "name %q", name)
	}
	coord := geo.Coordinate{Lat: float64(results[0].Lat), Lon: float64(results[0].Lon)}
	if !coord.Valid() {
		return geo.Coordinate{}, &TransportError{Name: name, Err: errors.Errorf("candidate %q has invalid coordinate %v", results[0].DisplayName, coord)}
	}
	return coord, nil
}

// flexFloat accepts both JSON numbers and numeric strings; Nominatim sends
// coordinates as strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("coordinate %s: %w", b, err)
	}
	*f = flexFloat(v)
	return nil
}
