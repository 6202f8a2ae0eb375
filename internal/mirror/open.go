package mirror

import (
	"context"

	"git.home.luguber.info/inful/coursebuilder/internal/config"
	"git.home.luguber.info/inful/coursebuilder/internal/foundation/errors"
)

// Open returns the backend named by cfg.Provider.
func Open(ctx context.Context, cfg config.SyncConfig) (Bucket, error) {
	if err := config.ValidateSync(cfg); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case config.ProviderGCS:
		return NewGCSBucket(ctx, cfg)
	case config.ProviderS3, "":
		return NewS3Bucket(ctx, cfg)
	default:
		return nil, errors.ConfigError("unknown sync provider").
			WithContext("provider", cfg.Provider).Build()
	}
}
