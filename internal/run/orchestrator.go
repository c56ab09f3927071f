// Package run drives the per-district scrape sequence and produces the
// run-level summary.
package run

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/HassanOPFT/apartments-scraper/internal/districts"
	"github.com/HassanOPFT/apartments-scraper/internal/results"
	"github.com/HassanOPFT/apartments-scraper/internal/scrape"
)

// Selector performs category auto-detection plus the full fetch for one
// district. *scrape.Selector is the production implementation.
type Selector interface {
	Select(ctx context.Context, d districts.District) (*scrape.Selection, error)
}

// Store records runs and district results in external storage. A nil Store
// disables recording.
type Store interface {
	CreateRun(ctx context.Context, runID uuid.UUID, startedAt time.Time) error
	SaveDistrictResult(ctx context.Context, runID uuid.UUID, doc *results.Document) error
	CompleteRun(ctx context.Context, runID uuid.UUID, status string, succeeded, failed int) error
}

// DistrictOutcome is the per-district line of the run summary.
type DistrictOutcome struct {
	District string
	Listings int
	Path     string
	Err      error
}

// Summary is the run-level result: which districts succeeded, which failed,
// and where their documents were written.
type Summary struct {
	RunID     uuid.UUID
	StartedAt time.Time
	Outcomes  []DistrictOutcome
}

// Succeeded returns the outcomes of districts that produced a document.
func (s *Summary) Succeeded() []DistrictOutcome {
	var out []DistrictOutcome
	for _, o := range s.Outcomes {
		if o.Err == nil {
			out = append(out, o)
		}
	}
	return out
}

// Failed returns the outcomes of districts that failed as a unit.
func (s *Summary) Failed() []DistrictOutcome {
	var out []DistrictOutcome
	for _, o := range s.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// Orchestrator processes districts strictly sequentially: category selection,
// assembly and persistence per district, with district failures logged and
// counted rather than aborting the run.
type Orchestrator struct {
	districts []districts.District
	selector  Selector
	assembler *results.Assembler
	writer    *results.Writer
	store     Store

	// now is the clock used for run timestamps. Overridable in tests.
	now func() time.Time
}

// Options configures an orchestrator.
type Options struct {
	Districts []districts.District
	Selector  Selector
	Assembler *results.Assembler
	Writer    *results.Writer
	Store     Store
}

// New creates an orchestrator.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		districts: opts.Districts,
		selector:  opts.Selector,
		assembler: opts.Assembler,
		writer:    opts.Writer,
		store:     opts.Store,
		now:       time.Now,
	}
}

// Run executes the full scrape and returns the run summary. The returned
// error is nil even when individual districts fail; callers inspect the
// summary for per-district outcomes.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{RunID: uuid.New(), StartedAt: o.now()}

	if o.store != nil {
		if err := o.store.CreateRun(ctx, summary.RunID, summary.StartedAt); err != nil {
			// Recording is best-effort; the scrape itself proceeds.
			log.Printf("failed to record run start: %v", err)
		}
	}

	for _, d := range o.districts {
		outcome := o.runDistrict(ctx, d, summary.RunID)
		summary.Outcomes = append(summary.Outcomes, outcome)
		if outcome.Err != nil {
			log.Printf("[%s] district failed: %v", d.Name, outcome.Err)
		} else {
			log.Printf("[%s] wrote %d listings to %s", d.Name, outcome.Listings, outcome.Path)
		}
	}

	if o.store != nil {
		status := "completed"
		if len(summary.Succeeded()) == 0 && len(summary.Outcomes) > 0 {
			status = "failed"
		}
		if err := o.store.CompleteRun(ctx, summary.RunID, status, len(summary.Succeeded()), len(summary.Failed())); err != nil {
			log.Printf("failed to record run completion: %v", err)
		}
	}

	return summary, nil
}

func (o *Orchestrator) runDistrict(ctx context.Context, d districts.District, runID uuid.UUID) DistrictOutcome {
	outcome := DistrictOutcome{District: d.Name}

	sel, err := o.selector.Select(ctx, d)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	doc := o.assembler.Assemble(ctx, d, sel, runID, o.now())

	path, err := o.writer.Write(doc, o.now())
	if err != nil {
		outcome.Err = &scrape.DistrictError{District: d.Name, Message: "failed to persist document", Cause: err}
		return outcome
	}

	if o.store != nil {
		if err := o.store.SaveDistrictResult(ctx, runID, doc); err != nil {
			log.Printf("[%s] failed to record district result: %v", d.Name, err)
		}
	}

	outcome.Listings = doc.Metadata.TotalFetched
	outcome.Path = path
	return outcome
}
