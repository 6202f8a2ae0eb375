package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads .env/.env.local when present. Existing process
// environment variables are never overwritten.
func loadEnvFiles() {
	for _, envPath := range envFiles {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			slog.Warn("Failed to load env file", "path", envPath, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", envPath)
	}
}

// applyEnvFallbacks fills sync credentials from the AWS_* variables the
// mirror has always honoured when the file leaves them empty.
func applyEnvFallbacks(cfg *Config) {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	fill(&cfg.Sync.Bucket, "AWS_BUCKET_NAME")
	fill(&cfg.Sync.Region, "AWS_REGION")
	fill(&cfg.Sync.AccessKey, "AWS_ACCESS_KEY")
	fill(&cfg.Sync.SecretKey, "AWS_SECRET_ACCESS_KEY")
}
