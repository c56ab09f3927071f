package run

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HassanOPFT/apartments-scraper/internal/api"
	"github.com/HassanOPFT/apartments-scraper/internal/config"
	"github.com/HassanOPFT/apartments-scraper/internal/districts"
	"github.com/HassanOPFT/apartments-scraper/internal/results"
	"github.com/HassanOPFT/apartments-scraper/internal/scrape"
)

func intPtr(v int) *int { return &v }

// fakeSelector returns a canned selection per district ID, or an error.
type fakeSelector struct {
	selections map[int]*scrape.Selection
	errs       map[int]error
	selected   []int
}

func (s *fakeSelector) Select(_ context.Context, d districts.District) (*scrape.Selection, error) {
	s.selected = append(s.selected, d.ID)
	if err := s.errs[d.ID]; err != nil {
		return nil, err
	}
	return s.selections[d.ID], nil
}

// recordingStore captures every store call for assertion.
type recordingStore struct {
	created   []uuid.UUID
	saved     []string
	completed []string
	failErr   error
}

func (s *recordingStore) CreateRun(_ context.Context, runID uuid.UUID, _ time.Time) error {
	s.created = append(s.created, runID)
	return s.failErr
}

func (s *recordingStore) SaveDistrictResult(_ context.Context, _ uuid.UUID, doc *results.Document) error {
	s.saved = append(s.saved, doc.Metadata.DistrictName)
	return s.failErr
}

func (s *recordingStore) CompleteRun(_ context.Context, _ uuid.UUID, status string, _, _ int) error {
	s.completed = append(s.completed, status)
	return s.failErr
}

func selectionOf(n int) *scrape.Selection {
	listings := make([]api.Listing, n)
	for i := range listings {
		listings[i] = api.Listing{ID: int64(i + 1), Rooms: intPtr(3), Price: intPtr(40000)}
	}
	return &scrape.Selection{
		Chosen:   config.Category{Label: "families", FamilyCode: 1},
		Listings: listings,
		Stats:    scrape.Stats{Total: n, Pages: 1},
		Counts:   map[string]scrape.CategoryCount{"families": {Count: n}},
	}
}

func testAssembler() *results.Assembler {
	return results.NewAssembler(results.AssemblerOptions{
		Filters: results.Filters{MinRooms: 2, MaxRooms: 4, MaxPrice: 60000},
	})
}

func TestRun_SequentialDistricts(t *testing.T) {
	selector := &fakeSelector{selections: map[int]*scrape.Selection{
		7:  selectionOf(3),
		12: selectionOf(1),
	}}
	orchestrator := New(Options{
		Districts: []districts.District{
			{ID: 7, Name: "Centro"},
			{ID: 12, Name: "North"},
		},
		Selector:  selector,
		Assembler: testAssembler(),
		Writer:    results.NewWriter(t.TempDir()),
	})

	summary, err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{7, 12}, selector.selected)
	require.Len(t, summary.Outcomes, 2)
	assert.Len(t, summary.Succeeded(), 2)
	assert.Empty(t, summary.Failed())
	assert.Equal(t, 3, summary.Outcomes[0].Listings)
	assert.FileExists(t, summary.Outcomes[0].Path)
}

func TestRun_DistrictFailureDoesNotAbortRun(t *testing.T) {
	selector := &fakeSelector{
		selections: map[int]*scrape.Selection{12: selectionOf(2)},
		errs: map[int]error{
			7: &scrape.DistrictError{District: "Centro", Message: "all category fetches failed"},
		},
	}
	orchestrator := New(Options{
		Districts: []districts.District{
			{ID: 7, Name: "Centro"},
			{ID: 12, Name: "North"},
		},
		Selector:  selector,
		Assembler: testAssembler(),
		Writer:    results.NewWriter(t.TempDir()),
	})

	summary, err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	// The failing district is recorded and the run continues
	assert.Equal(t, []int{7, 12}, selector.selected)
	require.Len(t, summary.Failed(), 1)
	assert.Equal(t, "Centro", summary.Failed()[0].District)
	require.Len(t, summary.Succeeded(), 1)
	assert.Equal(t, "North", summary.Succeeded()[0].District)
}

func TestRun_StoreRecordsRunAndResults(t *testing.T) {
	store := &recordingStore{}
	selector := &fakeSelector{
		selections: map[int]*scrape.Selection{7: selectionOf(2)},
		errs: map[int]error{
			12: &scrape.DistrictError{District: "North", Message: "all category fetches failed"},
		},
	}
	orchestrator := New(Options{
		Districts: []districts.District{
			{ID: 7, Name: "Centro"},
			{ID: 12, Name: "North"},
		},
		Selector:  selector,
		Assembler: testAssembler(),
		Writer:    results.NewWriter(t.TempDir()),
		Store:     store,
	})

	summary, err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	assert.Equal(t, summary.RunID, store.created[0])
	assert.Equal(t, []string{"Centro"}, store.saved)
	assert.Equal(t, []string{"completed"}, store.completed)
}

func TestRun_AllDistrictsFailedMarksRunFailed(t *testing.T) {
	store := &recordingStore{}
	selector := &fakeSelector{errs: map[int]error{
		7: &scrape.DistrictError{District: "Centro", Message: "all category fetches failed"},
	}}
	orchestrator := New(Options{
		Districts: []districts.District{{ID: 7, Name: "Centro"}},
		Selector:  selector,
		Assembler: testAssembler(),
		Writer:    results.NewWriter(t.TempDir()),
		Store:     store,
	})

	summary, err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, summary.Succeeded())
	assert.Equal(t, []string{"failed"}, store.completed)
	assert.Empty(t, store.saved)
}

func TestRun_StoreFailuresAreBestEffort(t *testing.T) {
	store := &recordingStore{failErr: assert.AnError}
	selector := &fakeSelector{selections: map[int]*scrape.Selection{7: selectionOf(1)}}
	orchestrator := New(Options{
		Districts: []districts.District{{ID: 7, Name: "Centro"}},
		Selector:  selector,
		Assembler: testAssembler(),
		Writer:    results.NewWriter(t.TempDir()),
		Store:     store,
	})

	summary, err := orchestrator.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, summary.Succeeded(), 1)
}

func TestRun_NoDistricts(t *testing.T) {
	orchestrator := New(Options{
		Selector:  &fakeSelector{},
		Assembler: testAssembler(),
		Writer:    results.NewWriter(t.TempDir()),
	})

	summary, err := orchestrator.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary.Outcomes)
	assert.NotEqual(t, uuid.Nil, summary.RunID)
}
