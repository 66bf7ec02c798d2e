package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRecordStore(); err != nil {
		return err
	}
	if err := c.validateDrive(); err != nil {
		return err
	}
	if err := c.validateBackup(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRecordStore() error {
	if strings.TrimSpace(c.RecordStore.BaseURL) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/reelvault/config.toml"
		}
		return fmt.Errorf("record_store.base_url is required. Edit %s (create with 'reelvault config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateDrive() error {
	if strings.TrimSpace(c.Drive.UploadURL) == "" {
		return errors.New("drive.upload_url must be set")
	}
	if strings.TrimSpace(c.Drive.FolderID) == "" {
		return errors.New("drive.folder_id must be set")
	}
	return nil
}

func (c *Config) validateBackup() error {
	if !c.Backup.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Backup.UploadURL) == "" {
		return errors.New("backup.upload_url must be set when backup.enabled is true")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	// Binary without model (or the reverse) is a misconfiguration rather than
	// "transcription disabled"; fail loudly at load time per the error design.
	binary := strings.TrimSpace(c.Transcription.Binary)
	model := strings.TrimSpace(c.Transcription.ModelPath)
	if (binary == "") != (model == "") {
		return errors.New("transcription.binary and transcription.model_path must be set together")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.QueuePollInterval <= 0 {
		return errors.New("workflow.queue_poll_interval must be positive")
	}
	if c.Workflow.RetryAttempts <= 0 {
		return errors.New("workflow.retry_attempts must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
