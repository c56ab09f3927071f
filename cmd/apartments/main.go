// Package main provides the apartments districts scraper CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "apartments",
	Short: "Districts apartment-listings scraper",
	Long:  "Scrapes paginated apartment listings per district, auto-detects the most productive listing category, annotates distances from the office, and writes one self-describing result document per district per day.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
