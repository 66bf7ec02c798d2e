package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelvault/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
[record_store]
base_url = "https://records.example.com/api"

[drive]
upload_url = "https://drive.example.com/upload"
folder_id = "folder-1"
`

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected config to resolve, exists=%v path=%q", exists, resolved)
	}
	if cfg.Deletion.RetentionDays != 50 {
		t.Fatalf("retention days = %d, want 50", cfg.Deletion.RetentionDays)
	}
	if cfg.Workflow.RetryAttempts != 3 || cfg.Workflow.RetryDelaySeconds != 10 {
		t.Fatalf("retry defaults = %d/%d", cfg.Workflow.RetryAttempts, cfg.Workflow.RetryDelaySeconds)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("log format = %q", cfg.Logging.Format)
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) {
		t.Fatalf("output dir not expanded: %q", cfg.Paths.OutputDir)
	}
}

func TestLoadRejectsMissingRecordStore(t *testing.T) {
	path := writeConfig(t, `
[drive]
upload_url = "https://drive.example.com/upload"
folder_id = "folder-1"
`)
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "record_store.base_url") {
		t.Fatalf("expected record store error, got %v", err)
	}
}

func TestLoadRejectsPartialTranscription(t *testing.T) {
	path := writeConfig(t, minimalConfig+`
[transcription]
binary = "whisper"
`)
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "transcription") {
		t.Fatalf("expected transcription error, got %v", err)
	}
}

func TestLoadRejectsBadLogFormat(t *testing.T) {
	path := writeConfig(t, minimalConfig+`
[logging]
format = "xml"
`)
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected logging format error, got %v", err)
	}
}

func TestBackupValidationOnlyWhenEnabled(t *testing.T) {
	path := writeConfig(t, minimalConfig+`
[backup]
enabled = false
`)
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("disabled backup should not require upload_url: %v", err)
	}
}

func TestTranscriptionConfigured(t *testing.T) {
	cfg := config.Default()
	if cfg.TranscriptionConfigured() {
		t.Fatal("default config should not have transcription configured")
	}
	cfg.Transcription.Binary = "whisper"
	cfg.Transcription.ModelPath = "/models/ggml-base.bin"
	if !cfg.TranscriptionConfigured() {
		t.Fatal("expected transcription configured")
	}
}

func TestCreateSampleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[record_store]") {
		t.Fatal("sample config missing record_store section")
	}
}
