package usecase

import (
	"context"
	"time"

	"BillSync/internal/ports"
)

// Scheduler binds the interval driver to the scheduled sync.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
}

// NewScheduler returns a helper to start and stop the recurring sync.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline}
}

// Start registers the scheduled sync with the driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		s.pipeline.logger.Info("scheduled sync triggered", "at", trigger.UTC())
		s.pipeline.SyncScheduled(ctx)
	}

	return s.driver.Start(ctx, job)
}

// Stop tears down the driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
