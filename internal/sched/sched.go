// Package sched runs recurring jobs (the daily news digest) alongside the
// event worker.
package sched

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

type Runner struct {
	cron   *cron.Cron
	logger *slog.Logger
}

func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{cron: cron.New(), logger: logger}
}

// Add registers a job under a standard 5-field cron spec. Panics inside the
// job are recovered and logged so one bad run cannot take the process down.
func (r *Runner) Add(spec, name string, job func()) error {
	_, err := r.cron.AddFunc(spec, func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("scheduled job panicked", "job", name, "panic", rec)
			}
		}()
		r.logger.Info("scheduled job running", "job", name)
		job()
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	return nil
}

// Start launches the scheduler and stops it when ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	r.cron.Start()
	go func() {
		<-ctx.Done()
		<-r.cron.Stop().Done()
		r.logger.Info("scheduler stopped")
	}()
}
