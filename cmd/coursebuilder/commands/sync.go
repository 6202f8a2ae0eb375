package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/coursebuilder/internal/build"
	"git.home.luguber.info/inful/coursebuilder/internal/config"
	"git.home.luguber.info/inful/coursebuilder/internal/course"
	"git.home.luguber.info/inful/coursebuilder/internal/daemon"
	"git.home.luguber.info/inful/coursebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/coursebuilder/internal/logfields"
	"git.home.luguber.info/inful/coursebuilder/internal/mirror"
)

// SyncCmd implements the 'sync' command.
type SyncCmd struct {
	Course  []string `name:"course" help:"Mirror only these course ids (repeatable)"`
	Dest    string   `short:"d" help:"Destination directory (overrides input.courses_dir)"`
	Every   string   `help:"Mirror repeatedly at this interval, e.g. 6h (overrides sync.every)"`
	Convert bool     `help:"Convert the successfully mirrored courses after each run"`
}

func (s *SyncCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	if s.Dest != "" {
		cfg.Input.CoursesDir = s.Dest
	}
	if s.Every != "" {
		cfg.Sync.Every = s.Every
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunSync(ctx, cfg, s.Course, s.Convert, logger(g))
}

// RunSync mirrors the courses once, or on every sync.every tick until ctx is
// cancelled.
func RunSync(ctx context.Context, cfg *config.Config, ids []string, convert bool, logger *slog.Logger) error {
	interval, err := cfg.Sync.Interval()
	if err != nil {
		return errors.ValidationError(err.Error()).Build()
	}
	if len(ids) == 0 {
		if ids, err = syncCourseIDs(cfg); err != nil {
			return err
		}
	}

	bucket, err := mirror.Open(ctx, cfg.Sync)
	if err != nil {
		return err
	}
	if c, ok := bucket.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	svc, err := openServices(cfg, logger, interval > 0)
	if err != nil {
		return err
	}
	defer svc.Close()

	syncer := mirror.NewSyncer(bucket, cfg.Input.CoursesDir, mirror.Options{
		Concurrency: cfg.Sync.Concurrency,
		Courses:     cfg.Build.Workers,
		Logger:      logger.With(logfields.Bucket(cfg.Sync.Bucket)),
		Recorder:    svc.recorder,
		Publisher:   svc.publisher,
	})

	var batch *build.Batch
	if convert {
		batch = build.NewBatch(cfg).
			WithRecorder(svc.recorder).
			WithPublisher(svc.publisher).
			WithLogger(logger)
	}

	runOnce := func(ctx context.Context) error {
		report, err := syncer.SyncAll(ctx, ids)
		if err != nil {
			return err
		}
		fmt.Printf("Mirrored courses: %d succeeded, %d failed\n", len(report.Succeeded()), len(report.Failed))
		svc.finishRun(ctx, report.HistoryRun())

		if batch != nil && len(report.Succeeded()) > 0 {
			if err := convertOnce(ctx, svc, batch, cfg, report.Succeeded()); err != nil {
				return err
			}
		}
		return report.Err()
	}

	if interval == 0 {
		return runOnce(ctx)
	}

	sched, err := daemon.NewScheduler()
	if err != nil {
		return err
	}
	sched.WithLogger(logger)
	if _, err := sched.ScheduleEvery("mirror", interval, func() {
		if err := runOnce(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Scheduled mirror incomplete",
				logfields.Error(err),
				slog.Bool("retry_next_tick", errors.IsTransient(err)),
				slog.Duration("interval", interval))
		}
	}); err != nil {
		return err
	}
	sched.Start(ctx)
	<-ctx.Done()
	logger.Info("Shutdown signal received, stopping scheduler")
	return sched.Stop(context.Background())
}

// syncCourseIDs reads the course list. Unlike convert, sync cannot discover
// courses since the destination may still be empty.
func syncCourseIDs(cfg *config.Config) ([]string, error) {
	if cfg.Input.CoursesList == "" {
		return nil, errors.ConfigError("no courses to mirror: pass --course or set input.courses_list").Build()
	}
	return course.LoadList(cfg.Input.CoursesList)
}
