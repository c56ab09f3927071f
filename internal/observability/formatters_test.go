package observability

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/HassanOPFT/apartments-scraper/internal/results"
	"github.com/HassanOPFT/apartments-scraper/internal/run"
	"github.com/HassanOPFT/apartments-scraper/internal/scrape"
)

func TestPrintRunSummary(t *testing.T) {
	var buf strings.Builder
	printer := NewPrinter(&buf)

	summary := &run.Summary{
		RunID:     uuid.New(),
		StartedAt: time.Date(2025, 11, 15, 6, 0, 0, 0, time.UTC),
		Outcomes: []run.DistrictOutcome{
			{District: "Centro", Listings: 38, Path: "output/2025-11-15/Centro_listings.json"},
			{District: "North", Err: &scrape.DistrictError{District: "North", Message: "all category fetches failed"}},
		},
	}

	printer.PrintRunSummary(summary)
	out := buf.String()

	assert.Contains(t, out, "SCRAPE RUN SUMMARY")
	assert.Contains(t, out, "1 succeeded, 1 failed")
	assert.Contains(t, out, "Centro (38 listings)")
	assert.Contains(t, out, "North")
}

func TestPrintRunSummary_Nil(t *testing.T) {
	var buf strings.Builder
	NewPrinter(&buf).PrintRunSummary(nil)
	assert.Empty(t, buf.String())
}

func TestPrintDocument(t *testing.T) {
	var buf strings.Builder
	printer := NewPrinter(&buf)

	printer.PrintDocument(&results.Document{
		Metadata: results.Metadata{
			DistrictID:   7,
			DistrictName: "Centro",
			FamilyType:   "families",
			Alternatives: map[string]results.Alternative{
				"singles":  {Count: 10},
				"families": {Count: 45},
			},
			ExpectedListings: 45,
			FilteredOut:      7,
			TotalFetched:     38,
			Pagination:       scrape.Stats{Offset: 40, Total: 45, Pages: 3},
		},
	})
	out := buf.String()

	assert.Contains(t, out, "DISTRICT RESULT")
	assert.Contains(t, out, "Centro (id 7)")
	assert.Contains(t, out, "38 kept, 7 filtered out")
	assert.Contains(t, out, "singles: 10 listings")
	assert.Contains(t, out, "Expected 45 listings, got 38")
}

func TestPrintDocument_FailedProbe(t *testing.T) {
	var buf strings.Builder
	printer := NewPrinter(&buf)

	printer.PrintDocument(&results.Document{
		Metadata: results.Metadata{
			DistrictName: "Centro",
			FamilyType:   "families",
			Alternatives: map[string]results.Alternative{
				"singles":  {Failed: true},
				"families": {Count: 45},
			},
			TotalFetched: 45,
		},
	})

	assert.Contains(t, buf.String(), "singles: failed")
}
