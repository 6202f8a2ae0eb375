package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the coursebuilder configuration file.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Links   LinksConfig   `yaml:"links"`
	Build   BuildConfig   `yaml:"build"`
	Sync    SyncConfig    `yaml:"sync"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
	History HistoryConfig `yaml:"history,omitempty"`
	Events  EventsConfig  `yaml:"events,omitempty"`
	Publish PublishConfig `yaml:"publish,omitempty"`
}

// InputConfig locates the course JSON exports.
type InputConfig struct {
	CoursesDir  string `yaml:"courses_dir"`            // Directory holding <id>/<id>_parsed.json
	CoursesList string `yaml:"courses_list,omitempty"` // Optional {"courses": [...]} file
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Remove a course's output directory before writing it
}

// LinksConfig controls storage URL rewriting.
type LinksConfig struct {
	StripStorage bool   `yaml:"strip_storage"`
	StaticPrefix string `yaml:"static_prefix,omitempty"`
}

// BuildConfig represents conversion settings.
type BuildConfig struct {
	Workers            int  `yaml:"workers"`
	IncludeUnpublished bool `yaml:"include_unpublished"`
	SkipScaffold       bool `yaml:"skip_scaffold"`
}

// SyncConfig configures the object-storage mirror.
type SyncConfig struct {
	Provider    string `yaml:"provider"` // s3|gcs
	Bucket      string `yaml:"bucket"`
	Region      string `yaml:"region,omitempty"`
	Endpoint    string `yaml:"endpoint,omitempty"` // S3-compatible endpoint or GCS emulator URL
	AccessKey   string `yaml:"access_key,omitempty"`
	SecretKey   string `yaml:"secret_key,omitempty"`
	Concurrency int    `yaml:"concurrency"`
	Every       string `yaml:"every,omitempty"` // Interval for scheduled mirroring, e.g. "6h"
}

// MetricsConfig configures Prometheus export.
type MetricsConfig struct {
	Textfile   string `yaml:"textfile,omitempty"`    // Written after each run (node exporter textfile collector)
	ListenAddr string `yaml:"listen_addr,omitempty"` // Served while running scheduled
}

// HistoryConfig configures the run history database.
type HistoryConfig struct {
	Database string `yaml:"database,omitempty"`
}

// EventsConfig configures build event publishing.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// PublishConfig controls committing generated output to git.
type PublishConfig struct {
	Commit      bool   `yaml:"commit"`
	AuthorName  string `yaml:"author_name,omitempty"`
	AuthorEmail string `yaml:"author_email,omitempty"`
}

const (
	ProviderS3  = "s3"
	ProviderGCS = "gcs"
)

// Interval parses Sync.Every. A zero duration means "run once".
func (s SyncConfig) Interval() (time.Duration, error) {
	if s.Every == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.Every)
	if err != nil {
		return 0, fmt.Errorf("invalid sync.every %q: %w", s.Every, err)
	}
	return d, nil
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to defaults (plus environment)
// when the file does not exist.
func LoadOrDefault(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		loadEnvFiles()
		cfg := &Config{}
		if err := finalize(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Load(configPath)
}

// Parse decodes YAML configuration, expanding ${VAR} references, then applies
// environment fallbacks and defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := finalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func finalize(cfg *Config) error {
	applyEnvFallbacks(cfg)
	if err := NewDefaultApplier().ApplyDefaults(cfg); err != nil {
		return fmt.Errorf("failed to apply defaults: %w", err)
	}
	return ValidateConfig(cfg)
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Config{
		Input:  InputConfig{CoursesDir: "./courses", CoursesList: "./courses.json"},
		Output: OutputConfig{Directory: "./site/content/courses", Clean: true},
		Links:  LinksConfig{StripStorage: true, StaticPrefix: "/coursemedia"},
		Build:  BuildConfig{Workers: 4},
		Sync: SyncConfig{
			Provider:    ProviderS3,
			Bucket:      "${AWS_BUCKET_NAME}",
			Concurrency: 8,
		},
		History: HistoryConfig{Database: "./coursebuilder.db"},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(example); err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}
	_ = enc.Close()

	if err := os.WriteFile(configPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
