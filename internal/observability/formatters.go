// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/HassanOPFT/apartments-scraper/internal/results"
	"github.com/HassanOPFT/apartments-scraper/internal/run"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRunSummary outputs a human-readable summary of a completed run.
func (p *Printer) PrintRunSummary(summary *run.Summary) {
	if summary == nil {
		return
	}

	succeeded := summary.Succeeded()
	failed := summary.Failed()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:       %s\n", summary.RunID))
	sb.WriteString(fmt.Sprintf("Started:   %s\n", summary.StartedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Districts: %d succeeded, %d failed\n", len(succeeded), len(failed)))

	if len(succeeded) > 0 {
		sb.WriteString("\nSucceeded:\n")
		count := min(len(succeeded), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s (%d listings)\n", succeeded[i].District, succeeded[i].Listings))
		}
		if len(succeeded) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(succeeded)-maxItemsToShow))
		}
	}

	if len(failed) > 0 {
		sb.WriteString("\nFailed:\n")
		count := min(len(failed), maxItemsToShow)
		for i := 0; i < count; i++ {
			msg := fmt.Sprintf("%v", failed[i].Err)
			if len(msg) > 45 {
				msg = msg[:42] + "..."
			}
			sb.WriteString(fmt.Sprintf("  ⚠ %s: %s\n", failed[i].District, msg))
		}
		if len(failed) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(failed)-maxItemsToShow))
		}
	}

	p.printBox("SCRAPE RUN SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDocument outputs the per-district detail of one result document: which
// category won, what the alternatives counted, and how pagination went.
func (p *Printer) PrintDocument(doc *results.Document) {
	if doc == nil {
		return
	}

	meta := doc.Metadata

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("District:  %s (id %d)\n", meta.DistrictName, meta.DistrictID))
	sb.WriteString(fmt.Sprintf("Category:  %s\n", meta.FamilyType))
	sb.WriteString(fmt.Sprintf("Listings:  %d kept, %d filtered out\n", meta.TotalFetched, meta.FilteredOut))
	sb.WriteString(fmt.Sprintf("Pages:     %d (total reported %d)\n", meta.Pagination.Pages, meta.Pagination.Total))

	if len(meta.Alternatives) > 0 {
		sb.WriteString("\nCategory probes:\n")
		for label, alt := range meta.Alternatives {
			if alt.Failed {
				sb.WriteString(fmt.Sprintf("  ⚠ %s: failed\n", label))
			} else {
				sb.WriteString(fmt.Sprintf("  • %s: %d listings\n", label, alt.Count))
			}
		}
	}

	if meta.ExpectedListings > 0 && meta.TotalFetched != meta.ExpectedListings {
		sb.WriteString(fmt.Sprintf("\nExpected %d listings, got %d\n", meta.ExpectedListings, meta.TotalFetched))
	}

	p.printBox("DISTRICT RESULT", strings.TrimSuffix(sb.String(), "\n"))
}
