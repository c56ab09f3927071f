// Package results assembles and persists the self-describing result document
// produced for each district scrape.
package results

import (
	"github.com/HassanOPFT/apartments-scraper/internal/api"
	"github.com/HassanOPFT/apartments-scraper/internal/distance"
	"github.com/HassanOPFT/apartments-scraper/internal/scrape"
)

// AnnotatedListing is one raw API record augmented with the computed fields:
// localized timestamps, the public listing URL and the distance annotation.
type AnnotatedListing struct {
	api.Listing

	CreateTimeLocal  string              `json:"create_time_local,omitempty"`
	PublishedAtLocal string              `json:"published_at_local,omitempty"`
	LastUpdateLocal  string              `json:"last_update_local,omitempty"`
	FullURL          string              `json:"full_url,omitempty"`
	Distance         distance.Annotation `json:"distance"`
}

// Alternative records the probe outcome for one category candidate,
// including the rejected ones.
type Alternative struct {
	Count  int  `json:"count"`
	Failed bool `json:"failed"`
}

// Filters documents the listing filters that were applied before assembly.
type Filters struct {
	MinRooms int `json:"min_rooms"`
	MaxRooms int `json:"max_rooms"`
	MaxPrice int `json:"max_price"`
}

// Office documents the reference point used for distance calculations.
type Office struct {
	Coordinates string `json:"coordinates"`
	Description string `json:"description,omitempty"`
}

// Metadata is the self-describing header of a result document. TotalFetched
// always equals the number of listings in the document.
type Metadata struct {
	RunID            string                 `json:"run_id"`
	DistrictID       int                    `json:"district_id"`
	DistrictName     string                 `json:"district_name"`
	DirectionID      int                    `json:"direction_id"`
	FamilyType       string                 `json:"family_type"`
	Alternatives     map[string]Alternative `json:"alternatives"`
	ExpectedListings int                    `json:"expected_listings"`
	RawFetched       int                    `json:"raw_fetched"`
	FilteredOut      int                    `json:"filtered_out"`
	TotalFetched     int                    `json:"total_fetched"`
	Pagination       scrape.Stats           `json:"pagination"`
	Filters          Filters                `json:"filters"`
	Office           Office                 `json:"office_location"`
	AfterDate        string                 `json:"after_date,omitempty"`
	ScrapeTimestamp  string                 `json:"scrape_timestamp"`
}

// Document is the persisted unit for one district's scrape: a metadata block
// plus the ordered, annotated listings. Written once, never mutated.
type Document struct {
	Metadata Metadata           `json:"metadata"`
	Listings []AnnotatedListing `json:"listings"`
}
