package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	foundation "git.home.luguber.info/inful/coursebuilder/internal/foundation/errors"
)

func clearAWSEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"AWS_BUCKET_NAME", "AWS_REGION", "AWS_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig(t *testing.T) {
	clearAWSEnv(t)
	t.Setenv("TEST_BUCKET", "ocw-content")

	configContent := "input:\n" +
		"  courses_dir: ./data\n" +
		"  courses_list: ./data/courses.json\n" +
		"output:\n" +
		"  directory: ./out\n" +
		"  clean: true\n" +
		"links:\n" +
		"  strip_storage: true\n" +
		"  static_prefix: /coursemedia\n" +
		"build:\n" +
		"  workers: 2\n" +
		"sync:\n" +
		"  bucket: ${TEST_BUCKET}\n" +
		"  every: 6h\n" +
		"events:\n" +
		"  nats_url: nats://localhost:4222\n"

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configContent), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "./data", cfg.Input.CoursesDir)
	require.Equal(t, "./out", cfg.Output.Directory)
	require.True(t, cfg.Output.Clean)
	require.True(t, cfg.Links.StripStorage)
	require.Equal(t, 2, cfg.Build.Workers)
	require.Equal(t, "ocw-content", cfg.Sync.Bucket)
	require.Equal(t, ProviderS3, cfg.Sync.Provider)
	require.Equal(t, defaultConcurrency, cfg.Sync.Concurrency)
	require.Equal(t, defaultEventsSubject, cfg.Events.Subject)

	every, err := cfg.Sync.Interval()
	require.NoError(t, err)
	require.Equal(t, 6*time.Hour, every)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadOrDefault(t *testing.T) {
	clearAWSEnv(t)
	t.Setenv("AWS_BUCKET_NAME", "from-env")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, defaultOutputDir, cfg.Output.Directory)
	require.Equal(t, defaultWorkers, cfg.Build.Workers)
	require.Equal(t, "from-env", cfg.Sync.Bucket)
	require.Empty(t, cfg.Events.Subject, "subject only defaults when NATS is configured")
}

func TestParseRejectsUnknownFields(t *testing.T) {
	clearAWSEnv(t)
	_, err := Parse([]byte("output:\n  dir: ./x\n"))
	require.Error(t, err)
}

func TestValidationErrors(t *testing.T) {
	clearAWSEnv(t)
	cases := map[string]string{
		"provider":      "sync:\n  provider: ftp\n",
		"every":         "sync:\n  every: sometimes\n",
		"static_prefix": "links:\n  static_prefix: media\n",
		"listen_addr":   "metrics:\n  listen_addr: localhost\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			ce, ok := foundation.AsClassified(err)
			require.True(t, ok)
			require.Equal(t, foundation.CategoryValidation, ce.Category())
		})
	}
}

func TestValidateSync(t *testing.T) {
	tests := []struct {
		name    string
		sync    SyncConfig
		wantErr bool
	}{
		{"no bucket", SyncConfig{Provider: ProviderS3}, true},
		{"ambient credentials", SyncConfig{Provider: ProviderS3, Bucket: "b"}, false},
		{"region without keys", SyncConfig{Provider: ProviderS3, Bucket: "b", Region: "us-east-1"}, true},
		{"only access key", SyncConfig{Provider: ProviderS3, Bucket: "b", AccessKey: "a"}, true},
		{"full credentials", SyncConfig{Provider: ProviderS3, Bucket: "b", Region: "us-east-1", AccessKey: "a", SecretKey: "s"}, false},
		{"gcs ignores aws keys", SyncConfig{Provider: ProviderGCS, Bucket: "b", Region: "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSync(tt.sync)
			if tt.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}

	err := ValidateSync(SyncConfig{Provider: ProviderS3, Bucket: "b", Region: "r"})
	require.ErrorContains(t, err, "AWS credentials not set")
}

func TestInitWritesLoadableConfig(t *testing.T) {
	clearAWSEnv(t)
	path := filepath.Join(t.TempDir(), "coursebuilder.yaml")
	require.NoError(t, Init(path, false))
	require.Error(t, Init(path, false), "second init without force must fail")
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/coursemedia", cfg.Links.StaticPrefix)
}

func TestProviderAliases(t *testing.T) {
	clearAWSEnv(t)
	for raw, want := range map[string]string{"AWS": ProviderS3, " gs ": ProviderGCS, "Google": ProviderGCS} {
		cfg, err := Parse([]byte("sync:\n  provider: \"" + raw + "\"\n"))
		require.NoError(t, err, raw)
		require.Equal(t, want, cfg.Sync.Provider, raw)
	}
}
