package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSearch()
	c.normalizeLogging()
	c.Metrics.Bind = strings.TrimSpace(c.Metrics.Bind)
	if c.Metrics.Bind == "" {
		c.Metrics.Bind = defaultMetricsBind
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExtractDir) == "" {
		c.Paths.ExtractDir = defaultExtractDir
	}
	if c.Paths.ExtractDir, err = expandPath(c.Paths.ExtractDir); err != nil {
		return fmt.Errorf("paths.extract_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CheckpointFile) == "" {
		c.Paths.CheckpointFile = filepath.Join(c.Paths.StateDir, checkpointFileName)
	}
	if c.Paths.CheckpointFile, err = expandPath(c.Paths.CheckpointFile); err != nil {
		return fmt.Errorf("paths.checkpoint_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeSearch() {
	c.Search.Charset = strings.ToLower(strings.TrimSpace(c.Search.Charset))
	if c.Search.Charset == "" {
		c.Search.Charset = defaultCharset
	}
	if c.Search.Workers <= 0 {
		c.Search.Workers = defaultWorkers
	}
	if c.Search.BatchSize <= 0 {
		c.Search.BatchSize = defaultBatchSize
	}
	if c.Search.CheckpointInterval <= 0 {
		c.Search.CheckpointInterval = defaultCheckpointInterval
	}
	if c.Oracle.RetryAttempts <= 0 {
		c.Oracle.RetryAttempts = 1
	}
	if c.Oracle.RetryDelayMS < 0 {
		c.Oracle.RetryDelayMS = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
