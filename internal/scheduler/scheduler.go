// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic housekeeping jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// jobTimeout bounds a single run of any job.
const jobTimeout = 5 * time.Minute

// Job is a named unit of periodic work.
type Job struct {
	Name        string
	Description string
	Schedule    string // cron expression or descriptor such as "@daily"
	Run         func(ctx context.Context) error
}

// Scheduler owns the cron instance and the registry of jobs added to it.
type Scheduler struct {
	cron     *cron.Cron
	registry *Registry
	logger   *slog.Logger
}

// New creates a new scheduler instance. Panicking jobs are recovered and
// logged by the cron chain.
func New(logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{logger})))
	return &Scheduler{
		cron:     c,
		registry: NewRegistry(logger),
		logger:   logger,
	}
}

// Add schedules job. An invalid schedule is returned as an error and
// nothing is registered.
func (s *Scheduler) Add(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("job needs a name and a run function")
	}

	run := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		return job.Run(ctx)
	}
	entryID, err := s.cron.AddFunc(job.Schedule, func() {
		if err := run(); err != nil {
			s.logger.Error("scheduled job failed", "job", job.Name, "error", err, "category", "scheduler")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", job.Schedule, job.Name, err)
	}

	s.registry.Register(job.Name, job.Description, job.Schedule, s.cron, entryID, run)
	return nil
}

// Registry returns the registry of added jobs.
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop gracefully stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append([]any{"error", err, "category", "scheduler"}, keysAndValues...)...)
}
