package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/HassanOPFT/apartments-scraper/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Convert a scrape day's result documents to CSV",
	Long:  "Reads the result documents of one scrape day and writes one CSV file per district. The documents are the sole input; nothing is fetched or recomputed.",
	RunE:  runExportCmd,
}

var (
	exportDate      string
	exportInputDir  string
	exportOutputDir string
)

func init() {
	exportCmd.Flags().StringVar(&exportDate, "date", "", "Scrape day to export, YYYY-MM-DD (default: today)")
	exportCmd.Flags().StringVarP(&exportInputDir, "input", "i", "output", "Base directory containing the dated result documents")
	exportCmd.Flags().StringVarP(&exportOutputDir, "out", "o", "csv_output", "Base directory for the dated CSV files")

	rootCmd.AddCommand(exportCmd)
}

func runExportCmd(_ *cobra.Command, _ []string) error {
	day, err := resolveDay(exportDate)
	if err != nil {
		return err
	}

	inputDir := filepath.Join(exportInputDir, day)
	outputDir := filepath.Join(exportOutputDir, day)

	count, err := export.Day(inputDir, outputDir)
	if err != nil {
		return fmt.Errorf("failed to export %s: %w", inputDir, err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Exported %d documents to %s\n", count, outputDir)
	return nil
}

// resolveDay validates an explicit YYYY-MM-DD day or defaults to today.
func resolveDay(date string) (string, error) {
	if date == "" {
		return time.Now().Format("2006-01-02"), nil
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", fmt.Errorf("invalid date %q: use YYYY-MM-DD", date)
	}
	return date, nil
}
