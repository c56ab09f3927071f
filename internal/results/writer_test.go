package results

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument(district string) *Document {
	return &Document{
		Metadata: Metadata{
			RunID:        "5cfe33b6-9747-44f5-a513-0e3b8a1d9f00",
			DistrictID:   7,
			DistrictName: district,
			TotalFetched: 0,
		},
		Listings: []AnnotatedListing{},
	}
}

func TestWriter_WriteAndReadBack(t *testing.T) {
	writer := NewWriter(t.TempDir())
	day := time.Date(2025, 11, 15, 6, 0, 0, 0, time.UTC)

	path, err := writer.Write(sampleDocument("Centro"), day)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(writer.baseDir, "2025-11-15", "Centro_listings.json"), path)

	doc, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "Centro", doc.Metadata.DistrictName)
	assert.Equal(t, 7, doc.Metadata.DistrictID)
}

func TestWriter_OverwritesSameDistrictAndDay(t *testing.T) {
	writer := NewWriter(t.TempDir())
	day := time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC)

	first := sampleDocument("Centro")
	first.Metadata.RunID = "first"
	_, err := writer.Write(first, day)
	require.NoError(t, err)

	second := sampleDocument("Centro")
	second.Metadata.RunID = "second"
	path, err := writer.Write(second, day)
	require.NoError(t, err)

	doc, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "second", doc.Metadata.RunID)
}

func TestFileName_SanitizesDistrictNames(t *testing.T) {
	assert.Equal(t, "Centro_listings.json", FileName("Centro"))
	assert.Equal(t, "Al_Olaya_listings.json", FileName("Al Olaya"))
	assert.Equal(t, "North-South_listings.json", FileName("North/South"))
	assert.Equal(t, "Centro_listings.json", FileName("  Centro  "))
}

func TestListDocuments(t *testing.T) {
	writer := NewWriter(t.TempDir())
	day := time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC)

	_, err := writer.Write(sampleDocument("Centro"), day)
	require.NoError(t, err)
	_, err = writer.Write(sampleDocument("North"), day)
	require.NoError(t, err)

	// An unrelated file in the day directory is not picked up
	require.NoError(t, os.WriteFile(filepath.Join(writer.DayDir(day), "notes.txt"), []byte("x"), 0644))

	paths, err := ListDocuments(writer.DayDir(day))
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Contains(t, paths[0], "Centro_listings.json")
	assert.Contains(t, paths[1], "North_listings.json")
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read document")
}

func TestRead_MalformedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken_listings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse document")
}
