package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/coursebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/coursebuilder/internal/logfields"
)

// Scheduler wraps gocron scheduler for managing periodic tasks.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		logger:    slog.Default(),
	}, nil
}

// WithLogger sets the logger used for job lifecycle messages.
func (s *Scheduler) WithLogger(logger *slog.Logger) *Scheduler {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Start begins the scheduler.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler, waiting for running jobs.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// ScheduleEvery runs task every interval, starting immediately once the
// scheduler is started. A run still in progress when the next one is due
// makes the scheduler skip that tick.
func (s *Scheduler) ScheduleEvery(name string, interval time.Duration, task func()) (string, error) {
	if interval <= 0 {
		return "", errors.ValidationError("interval must be positive").
			WithContext("name", name).
			WithContext("interval", interval.String()).Build()
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.run, name, task),
		gocron.WithName(name),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create periodic job: %w", err)
	}
	s.logger.Info("Scheduled periodic job",
		logfields.ScheduleID(job.ID().String()),
		slog.String("name", name),
		slog.Duration("interval", interval))
	return job.ID().String(), nil
}

// ScheduleCron runs task on a standard five-field cron expression.
func (s *Scheduler) ScheduleCron(name, expression string, task func()) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.CronJob(expression, false),
		gocron.NewTask(s.run, name, task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryValidation, "invalid cron expression").
			WithContext("name", name).
			WithContext("expression", expression).Build()
	}
	s.logger.Info("Scheduled cron job",
		logfields.ScheduleID(job.ID().String()),
		slog.String("name", name),
		slog.String("expression", expression))
	return job.ID().String(), nil
}

// run is called by gocron to execute a scheduled task.
func (s *Scheduler) run(name string, task func()) {
	start := time.Now()
	s.logger.Info("Executing scheduled job", slog.String("name", name))
	task()
	s.logger.Info("Scheduled job finished",
		slog.String("name", name),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
}
