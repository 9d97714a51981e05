package config

const (
	defaultStateDir           = "~/.local/share/zipcrack"
	defaultLogDir             = "~/.local/share/zipcrack/logs"
	defaultExtractDir         = "extracted"
	defaultMinLength          = 8
	defaultMaxLength          = 10
	defaultCharset            = "alphanum"
	defaultWorkers            = 1
	defaultBatchSize          = 10000
	defaultCheckpointInterval = 10000
	defaultRetryAttempts      = 3
	defaultRetryDelayMS       = 50
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogRetentionDays   = 30
	defaultMetricsBind        = "127.0.0.1:9478"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:   defaultStateDir,
			LogDir:     defaultLogDir,
			ExtractDir: defaultExtractDir,
		},
		Search: Search{
			MinLength:          defaultMinLength,
			MaxLength:          defaultMaxLength,
			Charset:            defaultCharset,
			Workers:            defaultWorkers,
			BatchSize:          defaultBatchSize,
			CheckpointInterval: defaultCheckpointInterval,
		},
		Oracle: Oracle{
			RetryAttempts: defaultRetryAttempts,
			RetryDelayMS:  defaultRetryDelayMS,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Metrics: Metrics{
			Bind: defaultMetricsBind,
		},
	}
}
