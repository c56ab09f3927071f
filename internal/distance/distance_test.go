package distance

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HassanOPFT/apartments-scraper/internal/api"
)

func listingAt(id int64, lat, lng float64) api.Listing {
	return api.Listing{ID: id, Location: &api.Location{Lat: &lat, Lng: &lng}}
}

func matrixJSON(elements ...string) string {
	return fmt.Sprintf(`{"status": "OK", "rows": [{"elements": [%s]}]}`, strings.Join(elements, ","))
}

func okElement(meters, seconds int) string {
	return fmt.Sprintf(`{
		"status": "OK",
		"distance": {"text": "%.1f km", "value": %d},
		"duration": {"text": "%d mins", "value": %d}
	}`, float64(meters)/1000.0, meters, seconds/60, seconds)
}

func newTestClient(serverURL string) *Client {
	client := NewClient(Options{
		APIKey:    "test-key",
		OfficeLat: "24.785698",
		OfficeLng: "46.613715",
		BaseURL:   serverURL,
	})
	client.batchDelay = 0
	return client
}

func TestAnnotate_ResolvesCoordinates(t *testing.T) {
	var captured *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		_, _ = w.Write([]byte(matrixJSON(okElement(5200, 600), okElement(12000, 1200))))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	listings := []api.Listing{
		listingAt(1, 24.7, 46.6),
		listingAt(2, 24.8, 46.7),
	}

	annotations := client.Annotate(context.Background(), listings)
	require.Len(t, annotations, 2)

	assert.True(t, annotations[0].Available)
	assert.InDelta(t, 5.2, annotations[0].DistanceKm, 0.001)
	assert.InDelta(t, 10.0, annotations[0].DurationMinutes, 0.001)
	assert.Equal(t, "5.2 km", annotations[0].DistanceText)
	assert.True(t, annotations[1].Available)
	assert.InDelta(t, 12.0, annotations[1].DistanceKm, 0.001)

	query := captured.URL.Query()
	assert.Equal(t, "24.785698,46.613715", query.Get("origins"))
	assert.Equal(t, "driving", query.Get("mode"))
	assert.Equal(t, "metric", query.Get("units"))
	assert.Len(t, strings.Split(query.Get("destinations"), "|"), 2)
}

func TestAnnotate_MissingCoordinatesSkipAPI(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		_, _ = w.Write([]byte(matrixJSON(okElement(5200, 600))))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	listings := []api.Listing{
		{ID: 1},
		listingAt(2, 24.7, 46.6),
		{ID: 3, Location: &api.Location{}},
	}

	annotations := client.Annotate(context.Background(), listings)
	require.Len(t, annotations, 3)

	assert.Equal(t, Unavailable, annotations[0])
	assert.True(t, annotations[1].Available)
	assert.Equal(t, Unavailable, annotations[2])
	assert.Equal(t, 1, requests)
}

func TestAnnotate_BatchesOf25(t *testing.T) {
	var batchSizes []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		destinations := strings.Split(r.URL.Query().Get("destinations"), "|")
		batchSizes = append(batchSizes, len(destinations))
		elements := make([]string, len(destinations))
		for i := range elements {
			elements[i] = okElement(1000, 60)
		}
		_, _ = w.Write([]byte(matrixJSON(elements...)))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	listings := make([]api.Listing, 30)
	for i := range listings {
		listings[i] = listingAt(int64(i+1), 24.7, 46.6)
	}

	annotations := client.Annotate(context.Background(), listings)
	require.Len(t, annotations, 30)
	assert.Equal(t, []int{25, 5}, batchSizes)
	for i, annotation := range annotations {
		assert.True(t, annotation.Available, "listing %d", i)
	}
}

func TestAnnotate_FailedBatchDegradesToUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	annotations := client.Annotate(context.Background(), []api.Listing{listingAt(1, 24.7, 46.6)})

	require.Len(t, annotations, 1)
	assert.Equal(t, Unavailable, annotations[0])
}

func TestAnnotate_APIErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "key invalid"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	annotations := client.Annotate(context.Background(), []api.Listing{listingAt(1, 24.7, 46.6)})

	require.Len(t, annotations, 1)
	assert.False(t, annotations[0].Available)
}

func TestAnnotate_PerElementFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(matrixJSON(okElement(5200, 600), `{"status": "ZERO_RESULTS"}`)))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	listings := []api.Listing{
		listingAt(1, 24.7, 46.6),
		listingAt(2, 0.0, 0.0),
	}

	annotations := client.Annotate(context.Background(), listings)
	require.Len(t, annotations, 2)
	assert.True(t, annotations[0].Available)
	assert.Equal(t, Unavailable, annotations[1])
}

func TestAnnotate_NilClient(t *testing.T) {
	var client *Client

	annotations := client.Annotate(context.Background(), []api.Listing{listingAt(1, 24.7, 46.6), {ID: 2}})
	require.Len(t, annotations, 2)
	assert.Equal(t, Unavailable, annotations[0])
	assert.Equal(t, Unavailable, annotations[1])
}

func TestNewClient_NoAPIKeyReturnsNil(t *testing.T) {
	assert.Nil(t, NewClient(Options{OfficeLat: "24.7", OfficeLng: "46.6"}))
}
