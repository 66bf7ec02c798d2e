package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeRecordStore(); err != nil {
		return err
	}
	if err := c.normalizeTranscription(); err != nil {
		return err
	}
	c.normalizeWorkflow()
	c.normalizeDeletion()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeRecordStore() error {
	if c.RecordStore.APIToken == "" {
		if value, ok := os.LookupEnv("REELVAULT_RECORD_STORE_TOKEN"); ok {
			c.RecordStore.APIToken = value
		}
	}
	c.RecordStore.BaseURL = strings.TrimRight(strings.TrimSpace(c.RecordStore.BaseURL), "/")
	if c.RecordStore.TimeoutSeconds <= 0 {
		c.RecordStore.TimeoutSeconds = defaultHTTPTimeoutSeconds
	}
	if c.Drive.TimeoutSeconds <= 0 {
		c.Drive.TimeoutSeconds = defaultUploadTimeoutSeconds
	}
	if c.Backup.TimeoutSeconds <= 0 {
		c.Backup.TimeoutSeconds = defaultUploadTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeTranscription() error {
	var err error
	if strings.TrimSpace(c.Transcription.ModelPath) != "" {
		if c.Transcription.ModelPath, err = expandPath(c.Transcription.ModelPath); err != nil {
			return fmt.Errorf("transcription.model_path: %w", err)
		}
	}
	c.Transcription.Binary = strings.TrimSpace(c.Transcription.Binary)
	return nil
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.QueuePollInterval <= 0 {
		c.Workflow.QueuePollInterval = defaultQueuePollInterval
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = defaultErrorRetryInterval
	}
	if c.Workflow.RetryAttempts <= 0 {
		c.Workflow.RetryAttempts = defaultRetryAttempts
	}
	if c.Workflow.RetryDelaySeconds < 0 {
		c.Workflow.RetryDelaySeconds = defaultRetryDelaySeconds
	}
}

func (c *Config) normalizeDeletion() {
	if c.Deletion.RetentionDays <= 0 {
		c.Deletion.RetentionDays = defaultRetentionDays
	}
	if c.Deletion.SweepIntervalHours <= 0 {
		c.Deletion.SweepIntervalHours = defaultSweepIntervalHours
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = defaultLogRetentionDays
	}
}
