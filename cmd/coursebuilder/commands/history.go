package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"git.home.luguber.info/inful/coursebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/coursebuilder/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit  int    `short:"n" help:"Number of runs to show" default:"10"`
	Course string `help:"Show the results of a single course across runs"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	if cfg.History.Database == "" {
		return errors.ConfigError("run history is disabled: set history.database").Build()
	}
	store, err := history.NewSQLiteStore(cfg.History.Database)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	if h.Course != "" {
		return printCourseRuns(ctx, os.Stdout, store, h.Course, h.Limit)
	}
	return printRecentRuns(ctx, os.Stdout, store, h.Limit)
}

func printRecentRuns(ctx context.Context, w io.Writer, store history.Store, limit int) error {
	runs, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(w, "No runs recorded")
		return nil
	}
	for _, r := range runs {
		ok, failed, skipped := r.Counts()
		_, _ = fmt.Fprintf(w, "%s  %-7s  %s  %3d ok  %3d failed  %3d skipped  %s\n",
			r.StartedAt.Local().Format(time.DateTime), r.Kind, shortID(r.ID), ok, failed, skipped,
			r.Duration.Round(time.Millisecond))
		for _, c := range r.Courses {
			if c.Status == history.StatusFailed {
				_, _ = fmt.Fprintf(w, "    %s: %s\n", c.CourseID, c.Error)
			}
		}
	}
	return nil
}

func printCourseRuns(ctx context.Context, w io.Writer, store history.Store, courseID string, limit int) error {
	runs, err := store.CourseRuns(ctx, courseID, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		_, _ = fmt.Fprintf(w, "No runs recorded for %s\n", courseID)
		return nil
	}
	for _, r := range runs {
		line := fmt.Sprintf("%s  %-7s  %s  %-9s", r.StartedAt.Local().Format(time.DateTime), r.Kind, shortID(r.RunID), r.Status)
		switch r.Status {
		case history.StatusSucceeded:
			line += fmt.Sprintf("  %d documents", r.Documents)
		case history.StatusFailed:
			line += "  " + r.Error
		}
		_, _ = fmt.Fprintln(w, line)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
