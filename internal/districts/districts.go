// Package districts loads the geographic districts used as query scopes for
// the listings API.
package districts

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/HassanOPFT/apartments-scraper/internal/config"
)

// District is one geographic query scope. DirectionID comes from the
// districts file and must accompany the district id on every API query.
// Expected is the advisory listing-count hint from the target selection.
type District struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DirectionID int    `json:"direction_id"`
	Expected    int    `json:"expected,omitempty"`
}

// fileEntry is one record of the districts JSON file, keyed by district id.
type fileEntry struct {
	Name      string `json:"name"`
	Direction struct {
		DirectionID int `json:"direction_id"`
	} `json:"direction"`
}

// Load reads the districts file and resolves the configured targets against
// it. Targets missing from the file are logged and skipped rather than
// failing the run. The returned slice preserves the target order.
func Load(path string, targets []config.TargetDistrict) ([]District, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read districts file %s: %w", path, err)
	}

	var entries map[string]fileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse districts file %s: %w", path, err)
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("no target districts configured")
	}

	districts := make([]District, 0, len(targets))
	for _, target := range targets {
		entry, ok := entries[strconv.Itoa(target.ID)]
		if !ok {
			log.Printf("district %d (%s) not found in districts file, skipping", target.ID, target.Name)
			continue
		}

		directionID := entry.Direction.DirectionID
		if directionID == 0 {
			directionID = 1
		}

		districts = append(districts, District{
			ID:          target.ID,
			Name:        target.Name,
			DirectionID: directionID,
			Expected:    target.Expected,
		})
	}

	if len(districts) == 0 {
		return nil, fmt.Errorf("none of the %d target districts were found in %s", len(targets), path)
	}

	return districts, nil
}
