// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// Category is one listing-type filter candidate. The listings API encodes the
// category as the numeric "family" field (0 = singles, 1 = families).
type Category struct {
	Label      string `json:"label" validate:"required"`
	FamilyCode int    `json:"family_code" validate:"gte=0,lte=1"`
}

// TargetDistrict selects one district to scrape. Expected is an advisory
// listing-count hint recorded in the output metadata, never used for
// pagination decisions.
type TargetDistrict struct {
	ID       int    `json:"id" validate:"required,gt=0"`
	Name     string `json:"name" validate:"required"`
	Expected int    `json:"expected,omitempty" validate:"gte=0"`
}

// Config represents the scraper configuration that can be loaded from a JSON
// file. Missing values use defaults or must be provided via CLI flags or
// environment variables.
type Config struct {
	// Listings API
	APIURL         string `json:"api_url,omitempty" validate:"omitempty,url"` // GraphQL endpoint for findListings
	CityID         int    `json:"city_id,omitempty" validate:"gte=0"`
	AfterDate      string `json:"after_date,omitempty"` // Only listings created after this date (YYYY-MM-DD)
	PageSize       int    `json:"page_size,omitempty" validate:"gte=0"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" validate:"gte=0"`
	MaxRetries     int    `json:"max_retries,omitempty" validate:"gte=0"`

	// Rate limiting
	RateLimitSeconds float64 `json:"rate_limit_seconds,omitempty" validate:"gte=0"`

	// Districts
	DistrictsFile   string           `json:"districts_file,omitempty"`
	TargetDistricts []TargetDistrict `json:"target_districts,omitempty" validate:"dive"`

	// Category auto-detection candidates, in tie-break order
	Categories []Category `json:"categories,omitempty" validate:"dive"`

	// Listing filters
	MinRooms int `json:"min_rooms,omitempty" validate:"gte=0"`
	MaxRooms int `json:"max_rooms,omitempty" validate:"gte=0"`
	MaxPrice int `json:"max_price,omitempty" validate:"gte=0"`

	// Distance calculation
	GoogleAPIKey string `json:"google_api_key,omitempty"`
	OfficeLat    string `json:"office_lat,omitempty"`
	OfficeLng    string `json:"office_lng,omitempty"`

	// Output
	OutputDir string `json:"output_dir,omitempty"`
	Timezone  string `json:"timezone,omitempty"`

	// Optional run/result recording
	DatabaseURL string `json:"database_url,omitempty"`

	// Daily schedule time for the schedule command (HH:MM)
	ScrapeTime string `json:"scrape_time,omitempty"`

	// Behavior
	Verbose bool `json:"verbose,omitempty"`
}

// Defaults returns the built-in configuration values.
func Defaults() Config {
	return Config{
		CityID:           21,
		PageSize:         20,
		TimeoutSeconds:   30,
		MaxRetries:       3,
		RateLimitSeconds: 1.0,
		DistrictsFile:    "raw/riyadh_districts.json",
		Categories: []Category{
			{Label: "singles", FamilyCode: 0},
			{Label: "families", FamilyCode: 1},
		},
		MinRooms:   2,
		MaxRooms:   4,
		MaxPrice:   60000,
		OutputDir:  "output",
		Timezone:   "Asia/Riyadh",
		ScrapeTime: "06:00",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv fills unset fields from environment variables, mirroring the
// .env-driven deployment setup: API_URL, GOOGLE_API_KEY, DATABASE_URL,
// OFFICE_LAT, OFFICE_LNG and TARGET_DISTRICTS (a JSON array of {id, name}).
func (c *Config) ApplyEnv() error {
	if c.APIURL == "" {
		c.APIURL = os.Getenv("API_URL")
	}
	if c.GoogleAPIKey == "" {
		c.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.OfficeLat == "" {
		c.OfficeLat = os.Getenv("OFFICE_LAT")
	}
	if c.OfficeLng == "" {
		c.OfficeLng = os.Getenv("OFFICE_LNG")
	}
	if len(c.TargetDistricts) == 0 {
		if raw := os.Getenv("TARGET_DISTRICTS"); raw != "" {
			var targets []TargetDistrict
			if err := json.Unmarshal([]byte(raw), &targets); err != nil {
				return fmt.Errorf("failed to parse TARGET_DISTRICTS: %w", err)
			}
			c.TargetDistricts = targets
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from
// defaults. Bool fields are not merged; CLI flags always win for those.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIURL == "" {
		result.APIURL = defaults.APIURL
	}
	if result.CityID == 0 {
		result.CityID = defaults.CityID
	}
	if result.AfterDate == "" {
		result.AfterDate = defaults.AfterDate
	}
	if result.PageSize == 0 {
		result.PageSize = defaults.PageSize
	}
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if result.MaxRetries == 0 {
		result.MaxRetries = defaults.MaxRetries
	}
	if result.RateLimitSeconds == 0 {
		result.RateLimitSeconds = defaults.RateLimitSeconds
	}
	if result.DistrictsFile == "" {
		result.DistrictsFile = defaults.DistrictsFile
	}
	if len(result.TargetDistricts) == 0 {
		result.TargetDistricts = defaults.TargetDistricts
	}
	if len(result.Categories) == 0 {
		result.Categories = defaults.Categories
	}
	if result.MinRooms == 0 {
		result.MinRooms = defaults.MinRooms
	}
	if result.MaxRooms == 0 {
		result.MaxRooms = defaults.MaxRooms
	}
	if result.MaxPrice == 0 {
		result.MaxPrice = defaults.MaxPrice
	}
	if result.GoogleAPIKey == "" {
		result.GoogleAPIKey = defaults.GoogleAPIKey
	}
	if result.OfficeLat == "" {
		result.OfficeLat = defaults.OfficeLat
	}
	if result.OfficeLng == "" {
		result.OfficeLng = defaults.OfficeLng
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.Timezone == "" {
		result.Timezone = defaults.Timezone
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ScrapeTime == "" {
		result.ScrapeTime = defaults.ScrapeTime
	}

	return result
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.PageSize <= 0 {
		return fmt.Errorf("config error: 'page_size' must be positive")
	}
	if c.MinRooms > c.MaxRooms {
		return fmt.Errorf("config error: 'min_rooms' must not exceed 'max_rooms'")
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("config error: at least one category candidate is required")
	}
	seen := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if seen[cat.Label] {
			return fmt.Errorf("config error: duplicate category label %q", cat.Label)
		}
		seen[cat.Label] = true
	}

	if c.AfterDate != "" {
		if _, err := time.Parse("2006-01-02", c.AfterDate); err != nil {
			return fmt.Errorf("config error: invalid 'after_date' %q: use YYYY-MM-DD", c.AfterDate)
		}
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config error: invalid 'timezone' %q: %w", c.Timezone, err)
	}

	return nil
}

// RateLimit returns the minimum delay between consecutive API requests.
func (c *Config) RateLimit() time.Duration {
	return time.Duration(c.RateLimitSeconds * float64(time.Second))
}

// Timeout returns the HTTP request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Location returns the configured timezone location. Validate must have
// passed for the result to be error-free.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
