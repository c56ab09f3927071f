package scrape

import (
	"context"
	"log"
	"time"

	"github.com/HassanOPFT/apartments-scraper/internal/api"
	"github.com/HassanOPFT/apartments-scraper/internal/config"
	"github.com/HassanOPFT/apartments-scraper/internal/districts"
)

// PageFetcher issues one paginated request against the listings API.
// *api.Client is the production implementation.
type PageFetcher interface {
	FetchPage(ctx context.Context, d districts.District, familyCode, offset int) ([]api.Listing, int, error)
}

// Stats describes one completed pagination run.
type Stats struct {
	Offset int `json:"offset_reached"`
	Total  int `json:"total_reported"`
	Pages  int `json:"pages_fetched"`
}

// Paginator drives the page fetcher across all pages of a (district,
// category) query. Failed pages are retried with exponential backoff; once
// retries are exhausted the whole fetch fails and partial results are
// discarded.
type Paginator struct {
	fetcher    PageFetcher
	pageSize   int
	maxRetries int

	// retryDelay returns the backoff before retry attempt n (1-based).
	// Overridable in tests.
	retryDelay func(attempt int) time.Duration
}

// NewPaginator creates a paginator over the given fetcher.
func NewPaginator(fetcher PageFetcher, pageSize, maxRetries int) *Paginator {
	if pageSize <= 0 {
		pageSize = 20
	}
	if maxRetries <= 0 {
		maxRetries = 1
	}
	return &Paginator{
		fetcher:    fetcher,
		pageSize:   pageSize,
		maxRetries: maxRetries,
		retryDelay: func(attempt int) time.Duration {
			return time.Duration(1<<(attempt-1)) * time.Second
		},
	}
}

// FetchAll retrieves every listing for a (district, category) pair.
//
// Offsets advance 0, pageSize, 2*pageSize, … and the run terminates when a
// page comes back short, or when the cumulative count reaches the total the
// API reported on the first page. A page with zero records while the
// cumulative count is still below the total also terminates the run; the
// API has been observed to report totals it does not serve, and looping on
// the same offset would never finish.
func (p *Paginator) FetchAll(ctx context.Context, d districts.District, category config.Category) ([]api.Listing, Stats, error) {
	var all []api.Listing
	var stats Stats
	offset := 0

	for {
		records, total, err := p.fetchPageWithRetry(ctx, d, category, offset)
		if err != nil {
			return nil, Stats{}, &PaginationError{
				District: d.Name,
				Category: category.Label,
				Offset:   offset,
				Cause:    err,
			}
		}

		if stats.Pages == 0 {
			stats.Total = total
		}
		stats.Pages++
		stats.Offset = offset
		all = append(all, records...)

		if len(all) >= stats.Total {
			break
		}
		if len(records) == 0 {
			log.Printf("[%s/%s] empty page at offset %d with %d of %d fetched, stopping",
				d.Name, category.Label, offset, len(all), stats.Total)
			break
		}
		if len(records) < p.pageSize {
			break
		}

		offset += p.pageSize
	}

	return all, stats, nil
}

// fetchPageWithRetry retries a single page up to maxRetries attempts with
// exponential backoff. The page fetcher itself never retries.
func (p *Paginator) fetchPageWithRetry(ctx context.Context, d districts.District, category config.Category, offset int) ([]api.Listing, int, error) {
	var lastErr error
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		records, total, err := p.fetcher.FetchPage(ctx, d, category.FamilyCode, offset)
		if err == nil {
			return records, total, nil
		}
		lastErr = err
		if attempt < p.maxRetries {
			log.Printf("[%s/%s] page request at offset %d failed (attempt %d/%d): %v",
				d.Name, category.Label, offset, attempt, p.maxRetries, err)
			timer := time.NewTimer(p.retryDelay(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, 0, ctx.Err()
			case <-timer.C:
			}
		}
	}
	return nil, 0, lastErr
}
