// Package distance calculates driving distances from the office reference
// point to listing coordinates using the Google Maps Distance Matrix API.
package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/HassanOPFT/apartments-scraper/internal/api"
)

// DefaultBaseURL is the Distance Matrix endpoint.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/distancematrix/json"

// batchSize is the Distance Matrix limit of destinations per request.
const batchSize = 25

// Annotation is the distance metadata attached to one listing. Available is
// the explicit marker distinguishing a computed distance from an unavailable
// one; listings are never dropped for lacking coordinates.
type Annotation struct {
	Available       bool    `json:"available"`
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes float64 `json:"duration_minutes"`
	DistanceText    string  `json:"distance_text,omitempty"`
	DurationText    string  `json:"duration_text,omitempty"`
}

// Unavailable is the marker used when no distance could be computed.
var Unavailable = Annotation{Available: false}

// Client talks to the Distance Matrix API. A nil *Client is a valid disabled
// annotator: every listing is marked unavailable.
type Client struct {
	apiKey     string
	origin     string
	baseURL    string
	httpClient *http.Client

	// batchDelay spaces out consecutive batch requests. Overridable in tests.
	batchDelay time.Duration
}

// Options configures the distance client.
type Options struct {
	APIKey    string
	OfficeLat string
	OfficeLng string
	BaseURL   string
	Timeout   time.Duration
}

// NewClient creates a distance client, or nil when no API key is configured
// so the caller can fall through to the disabled mode.
func NewClient(opts Options) *Client {
	if opts.APIKey == "" {
		return nil
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:     opts.APIKey,
		origin:     fmt.Sprintf("%s,%s", opts.OfficeLat, opts.OfficeLng),
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		batchDelay: 2 * time.Second,
	}
}

type matrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	Rows         []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Text  string `json:"text"`
				Value int    `json:"value"` // meters
			} `json:"distance"`
			Duration struct {
				Text  string `json:"text"`
				Value int    `json:"value"` // seconds
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

// Annotate returns one annotation per listing, index-aligned with the input.
// Listings without coordinates are marked unavailable without contacting the
// API; coordinate-bearing listings are resolved in batches of 25 with a
// pause between batches. A failed batch degrades to unavailable markers for
// its listings; Annotate itself never fails.
func (c *Client) Annotate(ctx context.Context, listings []api.Listing) []Annotation {
	annotations := make([]Annotation, len(listings))
	for i := range annotations {
		annotations[i] = Unavailable
	}
	if c == nil || len(listings) == 0 {
		return annotations
	}

	var indices []int
	var coords []string
	for i := range listings {
		if listings[i].HasCoordinates() {
			indices = append(indices, i)
			coords = append(coords, fmt.Sprintf("%f,%f", *listings[i].Location.Lat, *listings[i].Location.Lng))
		}
	}

	for start := 0; start < len(coords); start += batchSize {
		end := start + batchSize
		if end > len(coords) {
			end = len(coords)
		}

		results, err := c.fetchBatch(ctx, coords[start:end])
		if err != nil {
			log.Printf("distance batch failed, marking %d listings unavailable: %v", end-start, err)
		} else {
			for i, annotation := range results {
				annotations[indices[start+i]] = annotation
			}
		}

		if end < len(coords) {
			timer := time.NewTimer(c.batchDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return annotations
			case <-timer.C:
			}
		}
	}

	return annotations
}

// fetchBatch resolves up to batchSize destinations in one request. The
// returned slice is index-aligned with the destinations.
func (c *Client) fetchBatch(ctx context.Context, destinations []string) ([]Annotation, error) {
	params := url.Values{}
	params.Set("origins", c.origin)
	params.Set("destinations", strings.Join(destinations, "|"))
	params.Set("mode", "driving")
	params.Set("units", "metric")
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP status %d", resp.StatusCode)
	}

	var matrix matrixResponse
	if err := json.Unmarshal(body, &matrix); err != nil {
		return nil, fmt.Errorf("malformed response body: %w", err)
	}
	if matrix.Status != "OK" {
		if matrix.ErrorMessage != "" {
			return nil, fmt.Errorf("API status %s: %s", matrix.Status, matrix.ErrorMessage)
		}
		return nil, fmt.Errorf("API status %s", matrix.Status)
	}
	if len(matrix.Rows) == 0 || len(matrix.Rows[0].Elements) != len(destinations) {
		return nil, fmt.Errorf("response has %d rows, expected 1 row with %d elements", len(matrix.Rows), len(destinations))
	}

	annotations := make([]Annotation, len(destinations))
	for i, element := range matrix.Rows[0].Elements {
		if element.Status != "OK" {
			annotations[i] = Unavailable
			continue
		}
		annotations[i] = Annotation{
			Available:       true,
			DistanceKm:      float64(element.Distance.Value) / 1000.0,
			DurationMinutes: float64(element.Duration.Value) / 60.0,
			DistanceText:    element.Distance.Text,
			DurationText:    element.Duration.Text,
		}
	}
	return annotations, nil
}
