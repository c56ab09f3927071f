package scrape

import (
	"context"
	"log"

	"github.com/HassanOPFT/apartments-scraper/internal/api"
	"github.com/HassanOPFT/apartments-scraper/internal/config"
	"github.com/HassanOPFT/apartments-scraper/internal/districts"
)

// CategoryCount is the observed outcome of probing one category candidate.
type CategoryCount struct {
	Count  int  `json:"count"`
	Failed bool `json:"failed"`
}

// Selection is the result of category auto-detection for one district. The
// winning category's fetched data is carried along so the full fetch is
// never repeated.
type Selection struct {
	Chosen   config.Category
	Listings []api.Listing
	Stats    Stats
	Counts   map[string]CategoryCount
}

// fetchAller lets tests substitute the paginator.
type fetchAller interface {
	FetchAll(ctx context.Context, d districts.District, category config.Category) ([]api.Listing, Stats, error)
}

// Selector picks the most productive category candidate for each district by
// fetching every candidate in full and keeping the largest result.
type Selector struct {
	paginator  fetchAller
	categories []config.Category
}

// NewSelector creates a selector over the given candidates. The candidate
// order is the tie-break order.
func NewSelector(paginator *Paginator, categories []config.Category) *Selector {
	return &Selector{paginator: paginator, categories: categories}
}

// Select fetches each candidate category and returns the one with the
// strictly greatest listing count; equal counts keep the earlier candidate.
// A candidate whose fetch fails is recorded as failed and skipped rather
// than aborting the district. Only when every candidate fails does the
// district fail as a whole.
func (s *Selector) Select(ctx context.Context, d districts.District) (*Selection, error) {
	sel := &Selection{Counts: make(map[string]CategoryCount, len(s.categories))}

	var chosen bool
	var lastErr error
	for _, category := range s.categories {
		listings, stats, err := s.paginator.FetchAll(ctx, d, category)
		if err != nil {
			log.Printf("[%s] category %s fetch failed: %v", d.Name, category.Label, err)
			sel.Counts[category.Label] = CategoryCount{Failed: true}
			lastErr = err
			continue
		}

		sel.Counts[category.Label] = CategoryCount{Count: len(listings)}
		if !chosen || len(listings) > len(sel.Listings) {
			sel.Chosen = category
			sel.Listings = listings
			sel.Stats = stats
			chosen = true
		}
	}

	if !chosen {
		return nil, &DistrictError{
			District: d.Name,
			Message:  "all category fetches failed",
			Cause:    lastErr,
		}
	}

	log.Printf("[%s] using %s data (%d listings)", d.Name, sel.Chosen.Label, len(sel.Listings))
	return sel, nil
}
