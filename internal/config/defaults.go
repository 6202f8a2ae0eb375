package config

import (
	"fmt"

	"git.home.luguber.info/inful/coursebuilder/internal/foundation/normalization"
)

const (
	defaultOutputDir     = "./site/content/courses"
	defaultCoursesDir    = "./courses"
	defaultWorkers       = 4
	defaultConcurrency   = 8
	defaultEventsSubject = "coursebuilder.course.built"
	defaultAuthorName    = "coursebuilder"
	defaultAuthorEmail   = "coursebuilder@localhost"
)

// DefaultApplier fills unset values of one configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// CompositeDefaultApplier runs each domain applier in order.
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier returns the applier chain used by Load.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{
		appliers: []DefaultApplier{
			&InputDefaultApplier{},
			&OutputDefaultApplier{},
			&BuildDefaultApplier{},
			&SyncDefaultApplier{},
			&EventsDefaultApplier{},
			&PublishDefaultApplier{},
		},
	}
}

func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, a := range c.appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("%s defaults: %w", a.Domain(), err)
		}
	}
	return nil
}

type InputDefaultApplier struct{}

func (InputDefaultApplier) Domain() string { return "input" }

func (InputDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Input.CoursesDir == "" {
		cfg.Input.CoursesDir = defaultCoursesDir
	}
	return nil
}

type OutputDefaultApplier struct{}

func (OutputDefaultApplier) Domain() string { return "output" }

func (OutputDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = defaultOutputDir
	}
	return nil
}

type BuildDefaultApplier struct{}

func (BuildDefaultApplier) Domain() string { return "build" }

func (BuildDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Build.Workers <= 0 {
		cfg.Build.Workers = defaultWorkers
	}
	return nil
}

type SyncDefaultApplier struct{}

func (SyncDefaultApplier) Domain() string { return "sync" }

var providerNormalizer = normalization.NewNormalizer("sync.provider", map[string]string{
	"s3":     ProviderS3,
	"aws":    ProviderS3,
	"gcs":    ProviderGCS,
	"gs":     ProviderGCS,
	"google": ProviderGCS,
})

func (SyncDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Sync.Provider == "" {
		cfg.Sync.Provider = ProviderS3
	} else if p, err := providerNormalizer.Normalize(cfg.Sync.Provider); err == nil {
		cfg.Sync.Provider = p
	}
	if cfg.Sync.Concurrency <= 0 {
		cfg.Sync.Concurrency = defaultConcurrency
	}
	return nil
}

type EventsDefaultApplier struct{}

func (EventsDefaultApplier) Domain() string { return "events" }

func (EventsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Events.NATSURL != "" && cfg.Events.Subject == "" {
		cfg.Events.Subject = defaultEventsSubject
	}
	return nil
}

type PublishDefaultApplier struct{}

func (PublishDefaultApplier) Domain() string { return "publish" }

func (PublishDefaultApplier) ApplyDefaults(cfg *Config) error {
	if !cfg.Publish.Commit {
		return nil
	}
	if cfg.Publish.AuthorName == "" {
		cfg.Publish.AuthorName = defaultAuthorName
	}
	if cfg.Publish.AuthorEmail == "" {
		cfg.Publish.AuthorEmail = defaultAuthorEmail
	}
	return nil
}
