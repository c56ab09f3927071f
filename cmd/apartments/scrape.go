package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/HassanOPFT/apartments-scraper/internal/api"
	"github.com/HassanOPFT/apartments-scraper/internal/config"
	"github.com/HassanOPFT/apartments-scraper/internal/db"
	"github.com/HassanOPFT/apartments-scraper/internal/distance"
	"github.com/HassanOPFT/apartments-scraper/internal/districts"
	"github.com/HassanOPFT/apartments-scraper/internal/observability"
	"github.com/HassanOPFT/apartments-scraper/internal/results"
	"github.com/HassanOPFT/apartments-scraper/internal/run"
	"github.com/HassanOPFT/apartments-scraper/internal/scrape"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape listings for all configured districts",
	Long: `Runs the full per-district sequence: category auto-detection, pagination,
filtering, distance annotation, and document persistence. A failing district
is logged and the run continues; the run summary reports both outcomes.

Configuration can be loaded from a JSON file using --config. Command-line
flags and environment variables override config file values.`,
	RunE: runScrapeCmd,
}

var (
	scrapeConfigPath    string
	scrapeAPIURL        string
	scrapeAfterDate     string
	scrapeOutputDir     string
	scrapeDistrictsFile string
	scrapeDatabaseURL   string
	scrapeGoogleAPIKey  string
	scrapeVerbose       bool
)

func init() {
	scrapeCmd.Flags().StringVar(&scrapeConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	scrapeCmd.Flags().StringVar(&scrapeAPIURL, "api-url", "", "Listings API GraphQL endpoint (defaults to API_URL env var)")
	scrapeCmd.Flags().StringVar(&scrapeAfterDate, "after-date", "", "Only listings created after this date, YYYY-MM-DD")
	scrapeCmd.Flags().StringVarP(&scrapeOutputDir, "out", "o", "", "Base output directory (default: output)")
	scrapeCmd.Flags().StringVar(&scrapeDistrictsFile, "districts-file", "", "Path to the districts JSON file")
	scrapeCmd.Flags().StringVar(&scrapeDatabaseURL, "db-url", "", "PostgreSQL connection URL for run recording (optional, defaults to DATABASE_URL env var)")
	scrapeCmd.Flags().StringVar(&scrapeGoogleAPIKey, "google-api-key", "", "Distance Matrix API key (optional, defaults to GOOGLE_API_KEY env var)")
	scrapeCmd.Flags().BoolVarP(&scrapeVerbose, "verbose", "v", false, "Print detailed progress information")

	rootCmd.AddCommand(scrapeCmd)
}

func runScrapeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadScrapeConfig(cmd)
	if err != nil {
		return err
	}

	summary, err := executeScrape(context.Background(), cfg)
	if err != nil {
		return err
	}

	printSummary(cfg, summary)

	if len(summary.Succeeded()) == 0 && len(summary.Outcomes) > 0 {
		return fmt.Errorf("all %d districts failed", len(summary.Outcomes))
	}
	return nil
}

// loadScrapeConfig merges config file, CLI flags, environment variables and
// defaults, in that priority order, then validates the result.
func loadScrapeConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if scrapeConfigPath != "" {
		loaded, err := config.LoadConfig(scrapeConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
		if scrapeVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", scrapeConfigPath)
		}
	}

	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("api-url") {
		cfg.APIURL = scrapeAPIURL
	}
	if cmd.Flags().Changed("after-date") {
		cfg.AfterDate = scrapeAfterDate
	}
	if cmd.Flags().Changed("out") {
		cfg.OutputDir = scrapeOutputDir
	}
	if cmd.Flags().Changed("districts-file") {
		cfg.DistrictsFile = scrapeDistrictsFile
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = scrapeDatabaseURL
	}
	if cmd.Flags().Changed("google-api-key") {
		cfg.GoogleAPIKey = scrapeGoogleAPIKey
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = scrapeVerbose
	}

	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.APIURL == "" {
		return cfg, fmt.Errorf("listings API URL is required: set --api-url, the config file, or the API_URL environment variable")
	}
	if len(cfg.TargetDistricts) == 0 {
		return cfg, fmt.Errorf("target districts are required: set the config file or the TARGET_DISTRICTS environment variable")
	}

	return cfg, nil
}

// executeScrape wires the components and runs the orchestrator once.
func executeScrape(ctx context.Context, cfg config.Config) (*run.Summary, error) {
	targets, err := districts.Load(cfg.DistrictsFile, cfg.TargetDistricts)
	if err != nil {
		return nil, fmt.Errorf("failed to load districts: %w", err)
	}

	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var afterDate time.Time
	if cfg.AfterDate != "" {
		afterDate, err = time.ParseInLocation("2006-01-02", cfg.AfterDate, location)
		if err != nil {
			return nil, fmt.Errorf("invalid after-date: %w", err)
		}
	}

	limiter := scrape.NewRateLimiter(cfg.RateLimit())
	client := api.NewClient(api.Options{
		URL:       cfg.APIURL,
		CityID:    cfg.CityID,
		AfterDate: afterDate,
		PageSize:  cfg.PageSize,
		Timeout:   cfg.Timeout(),
		Limiter:   limiter,
	})
	paginator := scrape.NewPaginator(client, cfg.PageSize, cfg.MaxRetries)
	selector := scrape.NewSelector(paginator, cfg.Categories)

	annotator := distance.NewClient(distance.Options{
		APIKey:    cfg.GoogleAPIKey,
		OfficeLat: cfg.OfficeLat,
		OfficeLng: cfg.OfficeLng,
		Timeout:   cfg.Timeout(),
	})
	var office results.Office
	if cfg.OfficeLat != "" && cfg.OfficeLng != "" {
		office = results.Office{
			Coordinates: cfg.OfficeLat + "," + cfg.OfficeLng,
			Description: "Office location for distance calculations",
		}
	}

	assembler := results.NewAssembler(results.AssemblerOptions{
		Annotator: annotator,
		Filters: results.Filters{
			MinRooms: cfg.MinRooms,
			MaxRooms: cfg.MaxRooms,
			MaxPrice: cfg.MaxPrice,
		},
		Office:      office,
		Location:    location,
		SiteBaseURL: strings.TrimSuffix(cfg.APIURL, "/graphql"),
		AfterDate:   cfg.AfterDate,
	})
	writer := results.NewWriter(cfg.OutputDir)

	var store run.Store
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		store = database
	}

	orchestrator := run.New(run.Options{
		Districts: targets,
		Selector:  selector,
		Assembler: assembler,
		Writer:    writer,
		Store:     store,
	})
	return orchestrator.Run(ctx)
}

func printSummary(cfg config.Config, summary *run.Summary) {
	if cfg.Verbose {
		printer := observability.NewPrinter(os.Stdout)
		for _, outcome := range summary.Succeeded() {
			if doc, err := results.Read(outcome.Path); err == nil {
				printer.PrintDocument(doc)
			}
		}
		printer.PrintRunSummary(summary)
		return
	}

	succeeded := summary.Succeeded()
	failed := summary.Failed()

	_, _ = fmt.Fprintf(os.Stdout, "\nScrape summary (run %s)\n", summary.RunID)
	_, _ = fmt.Fprintf(os.Stdout, "  Succeeded: %d districts\n", len(succeeded))
	_, _ = fmt.Fprintf(os.Stdout, "  Failed:    %d districts\n", len(failed))

	for _, outcome := range succeeded {
		_, _ = fmt.Fprintf(os.Stdout, "  + %s: %d listings (%s)\n", outcome.District, outcome.Listings, outcome.Path)
	}
	for _, outcome := range failed {
		_, _ = fmt.Fprintf(os.Stdout, "  - %s: %v\n", outcome.District, outcome.Err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "  Output: %s\n", results.NewWriter(cfg.OutputDir).DayDir(summary.StartedAt))
}
