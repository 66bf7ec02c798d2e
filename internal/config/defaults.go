package config

const (
	defaultOutputDir              = "~/.local/share/reelvault/output"
	defaultLogDir                 = "~/.local/share/reelvault/logs"
	defaultAPIBind                = "127.0.0.1:7319"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultLogRetentionDays       = 60
	defaultQueuePollInterval      = 5
	defaultErrorRetryInterval     = 30
	defaultRetryAttempts          = 3
	defaultRetryDelaySeconds      = 10
	defaultRetentionDays          = 50
	defaultSweepIntervalHours     = 24
	defaultHTTPTimeoutSeconds     = 60
	defaultUploadTimeoutSeconds   = 1800
	defaultNotifyRequestTimeout   = 10
	defaultTranscriptionBinary    = ""
	defaultTranscriptionModelPath = ""
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			APIBind:   defaultAPIBind,
		},
		RecordStore: RecordStore{
			TimeoutSeconds: defaultHTTPTimeoutSeconds,
		},
		Drive: Drive{
			TimeoutSeconds: defaultUploadTimeoutSeconds,
		},
		Backup: Backup{
			Enabled:        true,
			TimeoutSeconds: defaultUploadTimeoutSeconds,
		},
		Transcription: Transcription{
			Binary:    defaultTranscriptionBinary,
			ModelPath: defaultTranscriptionModelPath,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			RetryAttempts:      defaultRetryAttempts,
			RetryDelaySeconds:  defaultRetryDelaySeconds,
		},
		Deletion: Deletion{
			RetentionDays:      defaultRetentionDays,
			SweepIntervalHours: defaultSweepIntervalHours,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Completed:      true,
			Errors:         true,
			Queue:          true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
