package config

import (
	"fmt"
	"strings"

	foundation "git.home.luguber.info/inful/coursebuilder/internal/foundation/errors"
)

// ValidateConfig checks the static parts of a configuration. Sync
// credentials are checked separately by ValidateSync since only the sync
// command needs them.
func ValidateConfig(cfg *Config) error {
	v := &configurationValidator{config: cfg}
	return v.validate()
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateBuild(); err != nil {
		return err
	}
	if err := cv.validateSyncShape(); err != nil {
		return err
	}
	if err := cv.validateLinks(); err != nil {
		return err
	}
	return cv.validateMetrics()
}

func (cv *configurationValidator) validateBuild() error {
	if cv.config.Build.Workers < 1 {
		return foundation.ValidationError("build.workers must be at least 1").
			WithContext("workers", cv.config.Build.Workers).Build()
	}
	return nil
}

func (cv *configurationValidator) validateSyncShape() error {
	switch cv.config.Sync.Provider {
	case ProviderS3, ProviderGCS:
	default:
		return foundation.ValidationError(fmt.Sprintf("invalid sync.provider: %s", cv.config.Sync.Provider)).
			WithContext("valid_values", []string{ProviderS3, ProviderGCS}).Build()
	}
	if cv.config.Sync.Concurrency < 1 {
		return foundation.ValidationError("sync.concurrency must be at least 1").Build()
	}
	if _, err := cv.config.Sync.Interval(); err != nil {
		return foundation.ValidationError(err.Error()).Build()
	}
	return nil
}

func (cv *configurationValidator) validateLinks() error {
	p := cv.config.Links.StaticPrefix
	if p != "" && !strings.HasPrefix(p, "/") {
		return foundation.ValidationError("links.static_prefix must start with '/'").
			WithContext("static_prefix", p).Build()
	}
	return nil
}

func (cv *configurationValidator) validateMetrics() error {
	if addr := cv.config.Metrics.ListenAddr; addr != "" && !strings.Contains(addr, ":") {
		return foundation.ValidationError("metrics.listen_addr must be host:port").
			WithContext("listen_addr", addr).Build()
	}
	return nil
}

// ValidateSync enforces the mirror's credential rules: a bucket is required,
// and for S3 explicit credentials come as a pair whenever any of region,
// access key or secret key is given.
func ValidateSync(s SyncConfig) error {
	if s.Bucket == "" {
		return foundation.ConfigError("sync bucket not set (sync.bucket or AWS_BUCKET_NAME)").Build()
	}
	if s.Provider != ProviderS3 {
		return nil
	}
	if s.Region != "" || s.AccessKey != "" || s.SecretKey != "" {
		if s.AccessKey == "" || s.SecretKey == "" {
			return foundation.ConfigError("AWS credentials not set").
				WithContext("region", s.Region).Build()
		}
	}
	return nil
}
