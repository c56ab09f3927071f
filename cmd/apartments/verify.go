package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/HassanOPFT/apartments-scraper/internal/results"
	"github.com/HassanOPFT/apartments-scraper/internal/schemas"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the result documents of a scrape day",
	Long: `Validates every result document of one scrape day against the JSON Schema
and checks the internal consistency rules: the metadata listing count must
match the number of listings, and every listing must carry a distance
annotation marker.`,
	RunE: runVerifyCmd,
}

var (
	verifyDate       string
	verifyInputDir   string
	verifySchemaPath string
)

func init() {
	verifyCmd.Flags().StringVar(&verifyDate, "date", "", "Scrape day to verify, YYYY-MM-DD (default: today)")
	verifyCmd.Flags().StringVarP(&verifyInputDir, "input", "i", "output", "Base directory containing the dated result documents")
	verifyCmd.Flags().StringVar(&verifySchemaPath, "schema", "", "Path to the result document schema (default: auto-resolved)")

	rootCmd.AddCommand(verifyCmd)
}

func runVerifyCmd(_ *cobra.Command, _ []string) error {
	day, err := resolveDay(verifyDate)
	if err != nil {
		return err
	}

	schemaPath := verifySchemaPath
	if schemaPath == "" {
		schemaPath = schemas.ResolveSchemaPath(schemas.DefaultSchemaPath)
		if schemaPath == "" {
			return fmt.Errorf("could not locate %s; pass --schema", schemas.DefaultSchemaPath)
		}
	}

	dir := filepath.Join(verifyInputDir, day)
	paths, err := results.ListDocuments(dir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no result documents found in %s", dir)
	}

	failures := 0
	for _, path := range paths {
		if err := verifyDocument(schemaPath, path); err != nil {
			failures++
			_, _ = fmt.Fprintf(os.Stdout, "FAIL %s\n%v\n", filepath.Base(path), err)
			continue
		}
		_, _ = fmt.Fprintf(os.Stdout, "OK   %s\n", filepath.Base(path))
	}

	_, _ = fmt.Fprintf(os.Stdout, "\nVerified %d documents, %d failed\n", len(paths), failures)
	if failures > 0 {
		return fmt.Errorf("%d of %d documents failed verification", failures, len(paths))
	}
	return nil
}

func verifyDocument(schemaPath, documentPath string) error {
	if err := schemas.ValidateDocument(schemaPath, documentPath); err != nil {
		return err
	}

	doc, err := results.Read(documentPath)
	if err != nil {
		return err
	}
	if doc.Metadata.TotalFetched != len(doc.Listings) {
		return fmt.Errorf("metadata.total_fetched is %d but document has %d listings",
			doc.Metadata.TotalFetched, len(doc.Listings))
	}
	return nil
}
