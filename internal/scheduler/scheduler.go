// Package scheduler runs the scrape on a daily cron schedule.
package scheduler

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps a timezone-aware cron instance driving one daily task.
type Scheduler struct {
	cron     *cron.Cron
	location *time.Location
}

// New creates a scheduler in the given timezone.
func New(timezone string) (*Scheduler, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(location)),
		location: location,
	}, nil
}

// ScheduleDaily registers the task to run every day at the given local time
// (HH:MM, 24-hour).
func (s *Scheduler) ScheduleDaily(at string, task func()) error {
	hour, minute, err := ParseTime(at)
	if err != nil {
		return err
	}

	expr := fmt.Sprintf("%d %d * * *", minute, hour)
	if _, err := s.cron.AddFunc(expr, task); err != nil {
		return fmt.Errorf("failed to add cron entry: %w", err)
	}

	log.Printf("scrape scheduled daily at %s (%s)", at, s.location)
	return nil
}

// Start begins the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// ParseTime extracts hour and minute from an HH:MM string.
func ParseTime(t string) (int, int, error) {
	if len(t) != 5 || t[2] != ':' {
		return 0, 0, fmt.Errorf("invalid time format %q: must be HH:MM", t)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if t[i] < '0' || t[i] > '9' {
			return 0, 0, fmt.Errorf("invalid time format %q: must be HH:MM", t)
		}
	}

	hour := int(t[0]-'0')*10 + int(t[1]-'0')
	minute := int(t[3]-'0')*10 + int(t[4]-'0')

	if hour > 23 {
		return 0, 0, fmt.Errorf("invalid time %q: hour must be 0-23", t)
	}
	if minute > 59 {
		return 0, 0, fmt.Errorf("invalid time %q: minute must be 0-59", t)
	}

	return hour, minute, nil
}
