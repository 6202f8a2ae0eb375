// Package publish commits generated course content into the git repository
// that contains the output directory.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	ggit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/coursebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/coursebuilder/internal/logfields"
)

// Author identifies the commit author.
type Author struct {
	Name  string
	Email string
}

// Committer stages everything under an output directory and commits it.
type Committer struct {
	author Author
	logger *slog.Logger
	now    func() time.Time
}

func NewCommitter(author Author, logger *slog.Logger) *Committer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Committer{author: author, logger: logger, now: time.Now}
}

// Result describes a publish attempt.
type Result struct {
	Hash      string
	Committed bool
	Changes   int
}

// Commit stages the changes below dir (including deletions) and commits them
// with message. The repository is found by walking up from dir. Nothing is
// committed when dir has no changes.
func (c *Committer) Commit(ctx context.Context, dir, message string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return Result{}, errors.WrapError(err, errors.CategoryFileSystem, "resolve output directory").
			WithContext("path", dir).Build()
	}

	repo, err := ggit.PlainOpenWithOptions(abs, &ggit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Result{}, errors.WrapError(err, errors.CategoryPublish, "output directory is not inside a git repository").
			WithContext("path", abs).Build()
	}
	wt, err := repo.Worktree()
	if err != nil {
		return Result{}, errors.WrapError(err, errors.CategoryPublish, "open worktree").
			WithContext("path", abs).Build()
	}

	root := wt.Filesystem.Root()
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return Result{}, errors.WrapError(err, errors.CategoryPublish, "output directory outside worktree").
			WithContext("path", abs).Build()
	}
	rel = filepath.ToSlash(rel)

	addOpts := &ggit.AddOptions{Path: rel}
	if rel == "." {
		addOpts = &ggit.AddOptions{All: true}
	}
	if err := wt.AddWithOptions(addOpts); err != nil {
		return Result{}, errors.WrapError(err, errors.CategoryPublish, "stage output").
			WithContext("path", rel).Build()
	}

	status, err := wt.Status()
	if err != nil {
		return Result{}, errors.WrapError(err, errors.CategoryPublish, "read worktree status").Build()
	}
	changes := 0
	for _, s := range status {
		if s.Staging != ggit.Unmodified && s.Staging != ggit.Untracked {
			changes++
		}
	}
	if changes == 0 {
		c.logger.Info("No content changes to publish", logfields.Path(rel))
		return Result{}, nil
	}

	hash, err := wt.Commit(message, &ggit.CommitOptions{
		Author: &object.Signature{Name: c.author.Name, Email: c.author.Email, When: c.now()},
	})
	if err != nil {
		return Result{}, errors.WrapError(err, errors.CategoryPublish, "commit output").
			WithContext("path", rel).Build()
	}

	c.logger.Info("Published content",
		logfields.Path(rel),
		slog.String("commit", hash.String()[:8]),
		slog.Int("changes", changes))
	return Result{Hash: hash.String(), Committed: true, Changes: changes}, nil
}

// Message renders the default commit message for a batch.
func Message(succeeded, failed int) string {
	if failed == 0 {
		return fmt.Sprintf("Update course content (%d courses)", succeeded)
	}
	return fmt.Sprintf("Update course content (%d courses, %d failed)", succeeded, failed)
}
