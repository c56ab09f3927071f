// Package export converts persisted result documents into CSV files for
// spreadsheet use. The document is the sole input; nothing is re-derived.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/HassanOPFT/apartments-scraper/internal/results"
)

var header = []string{
	"id", "title", "rooms", "price", "area", "beds", "wc", "livings",
	"furnished", "age", "address", "district", "city", "lat", "lng",
	"distance_km", "duration_minutes", "distance_available",
	"create_time_local", "published_at_local", "full_url",
}

// Day converts every document in inputDir into a CSV file in outputDir and
// returns the number of documents exported.
func Day(inputDir, outputDir string) (int, error) {
	paths, err := results.ListDocuments(inputDir)
	if err != nil {
		return 0, err
	}
	if len(paths) == 0 {
		return 0, fmt.Errorf("no result documents found in %s", inputDir)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	for _, path := range paths {
		doc, err := results.Read(path)
		if err != nil {
			return 0, err
		}

		name := strings.TrimSuffix(filepath.Base(path), ".json") + ".csv"
		if err := Document(doc, filepath.Join(outputDir, name)); err != nil {
			return 0, err
		}
	}

	return len(paths), nil
}

// Document writes one result document as a CSV file.
func Document(doc *results.Document, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, listing := range doc.Listings {
		if err := w.Write(row(listing)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV file %s: %w", path, err)
	}
	return nil
}

func row(l results.AnnotatedListing) []string {
	var lat, lng string
	if l.HasCoordinates() {
		lat = strconv.FormatFloat(*l.Location.Lat, 'f', -1, 64)
		lng = strconv.FormatFloat(*l.Location.Lng, 'f', -1, 64)
	}

	var distanceKm, durationMin string
	if l.Distance.Available {
		distanceKm = strconv.FormatFloat(l.Distance.DistanceKm, 'f', 2, 64)
		durationMin = strconv.FormatFloat(l.Distance.DurationMinutes, 'f', 1, 64)
	}

	return []string{
		strconv.FormatInt(l.ID, 10),
		l.Title,
		intField(l.Rooms),
		intField(l.Price),
		floatField(l.Area),
		intField(l.Beds),
		intField(l.WC),
		intField(l.Livings),
		intField(l.Furnished),
		intField(l.Age),
		l.Address,
		l.District,
		l.City,
		lat,
		lng,
		distanceKm,
		durationMin,
		strconv.FormatBool(l.Distance.Available),
		l.CreateTimeLocal,
		l.PublishedAtLocal,
		l.FullURL,
	}
}

func intField(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatField(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
