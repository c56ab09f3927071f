package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Writer persists result documents under a date-based directory, one file
// per district per run day.
type Writer struct {
	baseDir string
}

// NewWriter creates a writer rooted at baseDir.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// DayDir returns the output directory for one scrape day.
func (w *Writer) DayDir(day time.Time) string {
	return filepath.Join(w.baseDir, day.Format("2006-01-02"))
}

// Write persists a document as <district>_listings.json inside the day
// directory and returns the file path. An existing file for the same
// district and day is overwritten; documents are write-once within a run.
func (w *Writer) Write(doc *Document, day time.Time) (string, error) {
	dir := w.DayDir(day)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal document for %s: %w", doc.Metadata.DistrictName, err)
	}

	path := filepath.Join(dir, FileName(doc.Metadata.DistrictName))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write document %s: %w", path, err)
	}

	return path, nil
}

// FileName builds the document file name for a district, replacing path
// separators and spaces so the district name stays usable as a file name.
func FileName(districtName string) string {
	name := strings.TrimSpace(districtName)
	replacer := strings.NewReplacer("/", "-", "\\", "-", " ", "_")
	return replacer.Replace(name) + "_listings.json"
}

// Read loads a previously persisted document.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", path, err)
	}
	return &doc, nil
}

// ListDocuments returns the document files of one day directory, sorted by
// name.
func ListDocuments(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*_listings.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list documents in %s: %w", dir, err)
	}
	return matches, nil
}
