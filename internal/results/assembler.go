package results

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HassanOPFT/apartments-scraper/internal/api"
	"github.com/HassanOPFT/apartments-scraper/internal/distance"
	"github.com/HassanOPFT/apartments-scraper/internal/districts"
	"github.com/HassanOPFT/apartments-scraper/internal/scrape"
)

// Annotator resolves distance annotations for a batch of listings,
// index-aligned with the input. *distance.Client implements it; a nil client
// marks everything unavailable.
type Annotator interface {
	Annotate(ctx context.Context, listings []api.Listing) []distance.Annotation
}

// Assembler merges fetched listings, the category selection and pagination
// statistics into one result document.
type Assembler struct {
	annotator   Annotator
	filters     Filters
	office      Office
	location    *time.Location
	siteBaseURL string
	afterDate   string
}

// AssemblerOptions configures document assembly.
type AssemblerOptions struct {
	Annotator   Annotator
	Filters     Filters
	Office      Office
	Location    *time.Location // timezone for localized timestamp fields
	SiteBaseURL string         // prefix for building full listing URLs
	AfterDate   string
}

// NewAssembler creates a result assembler.
func NewAssembler(opts AssemblerOptions) *Assembler {
	location := opts.Location
	if location == nil {
		location = time.UTC
	}
	return &Assembler{
		annotator:   opts.Annotator,
		filters:     opts.Filters,
		office:      opts.Office,
		location:    location,
		siteBaseURL: strings.TrimRight(opts.SiteBaseURL, "/"),
		afterDate:   opts.AfterDate,
	}
}

// Assemble builds the result document for one district: listings are
// filtered by room count and price, annotated with distances and localized
// timestamps, and wrapped in a metadata block. The returned document always
// satisfies Metadata.TotalFetched == len(Listings).
func (a *Assembler) Assemble(ctx context.Context, d districts.District, sel *scrape.Selection, runID uuid.UUID, now time.Time) *Document {
	kept, filteredOut := a.filterListings(sel.Listings)

	annotations := a.annotations(ctx, kept)

	listings := make([]AnnotatedListing, len(kept))
	for i, listing := range kept {
		listings[i] = AnnotatedListing{
			Listing:          listing,
			CreateTimeLocal:  a.localTime(listing.CreateTime),
			PublishedAtLocal: a.localTime(listing.PublishedAt),
			LastUpdateLocal:  a.localTime(listing.LastUpdate),
			FullURL:          a.fullURL(listing.Path),
			Distance:         annotations[i],
		}
	}

	alternatives := make(map[string]Alternative, len(sel.Counts))
	for label, count := range sel.Counts {
		alternatives[label] = Alternative{Count: count.Count, Failed: count.Failed}
	}

	return &Document{
		Metadata: Metadata{
			RunID:            runID.String(),
			DistrictID:       d.ID,
			DistrictName:     d.Name,
			DirectionID:      d.DirectionID,
			FamilyType:       sel.Chosen.Label,
			Alternatives:     alternatives,
			ExpectedListings: d.Expected,
			RawFetched:       len(sel.Listings),
			FilteredOut:      filteredOut,
			TotalFetched:     len(listings),
			Pagination:       sel.Stats,
			Filters:          a.filters,
			Office:           a.office,
			AfterDate:        a.afterDate,
			ScrapeTimestamp:  now.In(a.location).Format(time.RFC3339),
		},
		Listings: listings,
	}
}

// filterListings keeps listings within the configured room range and price
// cap. Listings missing either field are filtered out, matching the
// conservative behavior of the production filters.
func (a *Assembler) filterListings(listings []api.Listing) ([]api.Listing, int) {
	kept := make([]api.Listing, 0, len(listings))
	filteredOut := 0
	for _, listing := range listings {
		if listing.Rooms == nil || *listing.Rooms < a.filters.MinRooms || *listing.Rooms > a.filters.MaxRooms {
			filteredOut++
			continue
		}
		if listing.Price == nil || *listing.Price > a.filters.MaxPrice {
			filteredOut++
			continue
		}
		kept = append(kept, listing)
	}
	return kept, filteredOut
}

func (a *Assembler) annotations(ctx context.Context, listings []api.Listing) []distance.Annotation {
	if a.annotator != nil {
		return a.annotator.Annotate(ctx, listings)
	}
	annotations := make([]distance.Annotation, len(listings))
	for i := range annotations {
		annotations[i] = distance.Unavailable
	}
	return annotations
}

func (a *Assembler) localTime(ts *int64) string {
	if ts == nil || *ts == 0 {
		return ""
	}
	return time.Unix(*ts, 0).In(a.location).Format(time.RFC3339)
}

func (a *Assembler) fullURL(path string) string {
	if path == "" || a.siteBaseURL == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return a.siteBaseURL + path
}
