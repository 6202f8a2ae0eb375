package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"slices"
	"syscall"

	"git.home.luguber.info/inful/coursebuilder/internal/build"
	"git.home.luguber.info/inful/coursebuilder/internal/config"
	"git.home.luguber.info/inful/coursebuilder/internal/daemon"
	"git.home.luguber.info/inful/coursebuilder/internal/logfields"
)

// ConvertCmd implements the 'convert' command.
type ConvertCmd struct {
	Course []string `name:"course" help:"Convert only these course ids (repeatable)"`
	Output string   `short:"o" help:"Output directory (overrides output.directory)"`
	Watch  bool     `help:"Keep running and rebuild courses whose exports change"`
	Commit bool     `help:"Commit the generated output to the enclosing git repository"`
}

func (c *ConvertCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	c.apply(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunConvert(ctx, cfg, c.Course, c.Watch, logger(g))
}

// apply folds the flags into cfg.
func (c *ConvertCmd) apply(cfg *config.Config) {
	if c.Output != "" {
		cfg.Output.Directory = c.Output
	}
	if c.Commit && !cfg.Publish.Commit {
		cfg.Publish.Commit = true
		_ = config.PublishDefaultApplier{}.ApplyDefaults(cfg)
	}
}

// RunConvert converts ids (all discovered courses when empty). With watch it
// keeps rebuilding changed courses until ctx is cancelled.
func RunConvert(ctx context.Context, cfg *config.Config, ids []string, watch bool, logger *slog.Logger) error {
	svc, err := openServices(cfg, logger, watch)
	if err != nil {
		return err
	}
	defer svc.Close()

	batch := build.NewBatch(cfg).
		WithRecorder(svc.recorder).
		WithPublisher(svc.publisher).
		WithLogger(logger)

	restricted := len(ids) > 0
	if !restricted {
		if ids, err = batch.CourseIDs(); err != nil {
			return err
		}
	}

	firstErr := convertOnce(ctx, svc, batch, cfg, ids)
	if !watch {
		return firstErr
	}
	if firstErr != nil && ctx.Err() == nil {
		logger.Error("Initial conversion incomplete", logfields.Error(firstErr))
	}

	watcher, err := daemon.NewCourseWatcher(cfg.Input.CoursesDir, daemon.DefaultWatcherConfig,
		func(ctx context.Context, changed []string) {
			if restricted {
				changed = slices.DeleteFunc(changed, func(id string) bool { return !slices.Contains(ids, id) })
				if len(changed) == 0 {
					return
				}
			}
			if err := convertOnce(ctx, svc, batch, cfg, changed); err != nil && ctx.Err() == nil {
				logger.Error("Rebuild incomplete", logfields.Error(err))
			}
		})
	if err != nil {
		return err
	}
	return watcher.WithLogger(logger).Run(ctx)
}

func convertOnce(ctx context.Context, svc *services, batch *build.Batch, cfg *config.Config, ids []string) error {
	summary, err := batch.Run(ctx, ids)
	if err != nil {
		return err
	}
	fmt.Printf("Converted courses: %s\n", summary)
	for _, id := range summary.FailedIDs() {
		fmt.Printf("  failed %s: %v\n", id, summary.Failed[id])
	}
	svc.finishRun(ctx, summary.HistoryRun())

	if err := svc.commit(ctx, cfg.Output.Directory, len(summary.Succeeded), len(summary.Failed)); err != nil {
		return err
	}
	return summary.Err()
}
