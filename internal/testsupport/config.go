package testsupport

import (
	"path/filepath"
	"testing"

	"reelvault/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.RecordStore.BaseURL = "https://records.test.invalid/api"
	cfgVal.Drive.UploadURL = "https://drive.test.invalid/upload"
	cfgVal.Drive.FolderID = "test-folder"
	cfgVal.Backup.UploadURL = "https://backup.test.invalid/upload"
	cfgVal.Workflow.QueuePollInterval = 1
	cfgVal.Workflow.RetryDelaySeconds = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTranscription enables the optional transcription step on the test config.
func WithTranscription(binary, modelPath string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcription.Binary = binary
		b.cfg.Transcription.ModelPath = modelPath
	}
}

// WithBackupDisabled turns off the secondary upload destination.
func WithBackupDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backup.Enabled = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
