package scrape

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HassanOPFT/apartments-scraper/internal/api"
	"github.com/HassanOPFT/apartments-scraper/internal/config"
	"github.com/HassanOPFT/apartments-scraper/internal/districts"
)

// categoryFetcher returns canned results keyed by family code.
type categoryFetcher struct {
	results map[int][]api.Listing
	errs    map[int]error
	fetched []string
}

func (f *categoryFetcher) FetchAll(_ context.Context, _ districts.District, category config.Category) ([]api.Listing, Stats, error) {
	f.fetched = append(f.fetched, category.Label)
	if err := f.errs[category.FamilyCode]; err != nil {
		return nil, Stats{}, err
	}
	listings := f.results[category.FamilyCode]
	return listings, Stats{Offset: 0, Total: len(listings), Pages: 1}, nil
}

func newTestSelector(fetcher fetchAller) *Selector {
	return &Selector{
		paginator:  fetcher,
		categories: []config.Category{singles, families},
	}
}

func TestSelect_PicksLargerCategory(t *testing.T) {
	fetcher := &categoryFetcher{results: map[int][]api.Listing{
		0: makeListings(10),
		1: makeListings(45),
	}}
	selector := newTestSelector(fetcher)

	sel, err := selector.Select(context.Background(), testDistrict)
	require.NoError(t, err)

	assert.Equal(t, "families", sel.Chosen.Label)
	assert.Len(t, sel.Listings, 45)
	assert.Equal(t, []string{"singles", "families"}, fetcher.fetched)
	assert.Equal(t, CategoryCount{Count: 10}, sel.Counts["singles"])
	assert.Equal(t, CategoryCount{Count: 45}, sel.Counts["families"])
}

func TestSelect_TieKeepsFirstCandidate(t *testing.T) {
	fetcher := &categoryFetcher{results: map[int][]api.Listing{
		0: makeListings(30),
		1: makeListings(30),
	}}
	selector := newTestSelector(fetcher)

	sel, err := selector.Select(context.Background(), testDistrict)
	require.NoError(t, err)
	assert.Equal(t, "singles", sel.Chosen.Label)
}

func TestSelect_FailedCandidateIsSkipped(t *testing.T) {
	fetcher := &categoryFetcher{
		results: map[int][]api.Listing{1: makeListings(12)},
		errs: map[int]error{
			0: &PaginationError{District: "Centro", Category: "singles", Offset: 40},
		},
	}
	selector := newTestSelector(fetcher)

	sel, err := selector.Select(context.Background(), testDistrict)
	require.NoError(t, err)

	assert.Equal(t, "families", sel.Chosen.Label)
	assert.Len(t, sel.Listings, 12)
	assert.True(t, sel.Counts["singles"].Failed)
	assert.Equal(t, CategoryCount{Count: 12}, sel.Counts["families"])
}

func TestSelect_AllCandidatesFail(t *testing.T) {
	fetcher := &categoryFetcher{errs: map[int]error{
		0: &PaginationError{District: "Centro", Category: "singles"},
		1: &PaginationError{District: "Centro", Category: "families"},
	}}
	selector := newTestSelector(fetcher)

	sel, err := selector.Select(context.Background(), testDistrict)
	require.Error(t, err)
	assert.Nil(t, sel)

	var districtErr *DistrictError
	require.ErrorAs(t, err, &districtErr)
	assert.Equal(t, "Centro", districtErr.District)

	var pageErr *PaginationError
	assert.ErrorAs(t, err, &pageErr)
}

func TestSelect_EmptyWinnerIsStillAWinner(t *testing.T) {
	fetcher := &categoryFetcher{results: map[int][]api.Listing{}}
	selector := newTestSelector(fetcher)

	sel, err := selector.Select(context.Background(), testDistrict)
	require.NoError(t, err)
	assert.Equal(t, "singles", sel.Chosen.Label)
	assert.Empty(t, sel.Listings)
}

func TestSelect_SingleCandidate(t *testing.T) {
	fetcher := &categoryFetcher{results: map[int][]api.Listing{1: makeListings(8)}}
	selector := &Selector{paginator: fetcher, categories: []config.Category{families}}

	sel, err := selector.Select(context.Background(), testDistrict)
	require.NoError(t, err)
	assert.Equal(t, "families", sel.Chosen.Label)
	assert.Len(t, sel.Listings, 8)
}
