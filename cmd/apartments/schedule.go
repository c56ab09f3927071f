package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/HassanOPFT/apartments-scraper/internal/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the scrape daily at a configured time",
	Long:  "Starts a long-running process that executes the full scrape once per day at the configured local time. Accepts the same configuration as the scrape command.",
	RunE:  runScheduleCmd,
}

var scheduleAt string

func init() {
	// The schedule command shares the scrape command's config path variable
	// so both commands read the same configuration surface.
	scheduleCmd.Flags().StringVar(&scrapeConfigPath, "config", "", "Path to config.json file")
	scheduleCmd.Flags().StringVar(&scheduleAt, "at", "", "Daily run time, HH:MM (default: config scrape_time)")

	rootCmd.AddCommand(scheduleCmd)
}

func runScheduleCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadScrapeConfig(cmd)
	if err != nil {
		return err
	}

	at := scheduleAt
	if at == "" {
		at = cfg.ScrapeTime
	}
	if _, _, err := scheduler.ParseTime(at); err != nil {
		return err
	}

	sched, err := scheduler.New(cfg.Timezone)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	task := func() {
		summary, err := executeScrape(ctx, cfg)
		if err != nil {
			log.Printf("scheduled scrape failed: %v", err)
			return
		}
		printSummary(cfg, summary)
	}

	if err := sched.ScheduleDaily(at, task); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	_, _ = fmt.Fprintf(os.Stdout, "Scheduler running; next scrape daily at %s %s. Ctrl-C to stop.\n", at, cfg.Timezone)
	<-ctx.Done()
	return nil
}
