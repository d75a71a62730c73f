package scheduler

import (
	"fmt"
	"log"

	"LadderPilot/internal/driver"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the strategy cycle on a cron schedule for daemon mode.
// One-shot invocation from an external cron does not need it.
type Scheduler struct {
	Cron   *cron.Cron
	Driver *driver.Driver
}

// NewScheduler creates a Scheduler around a Driver.
func NewScheduler(d *driver.Driver) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Driver: d,
	}
}

// Register registers the cycle task under the given cron expression.
func (s *Scheduler) Register(cycleCron string) error {
	if _, err := s.Cron.AddFunc(cycleCron, s.cycleTask); err != nil {
		return fmt.Errorf("register cycle task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the cycle immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.cycleTask()
}

func (s *Scheduler) cycleTask() {
	log.Println("[INFO] running strategy cycle")
	if err := s.Driver.RunCycle(); err != nil {
		// A failed cycle is retried on the next tick; state was not touched.
		log.Printf("[ERROR] strategy cycle: %v", err)
	}
}
