package config

import (
	"errors"
	"fmt"
	"net"
	"slices"

	"zipcrack/internal/keyspace"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Metrics.Enabled {
		if _, _, err := net.SplitHostPort(c.Metrics.Bind); err != nil {
			return fmt.Errorf("metrics.bind: %w", err)
		}
	}
	return nil
}

func (c *Config) validateSearch() error {
	if err := ensurePositiveMap(map[string]int{
		"search.min_length":          c.Search.MinLength,
		"search.max_length":          c.Search.MaxLength,
		"search.workers":             c.Search.Workers,
		"search.batch_size":          c.Search.BatchSize,
		"search.checkpoint_interval": c.Search.CheckpointInterval,
	}); err != nil {
		return err
	}
	if c.Search.MinLength > c.Search.MaxLength {
		return fmt.Errorf("search.min_length (%d) must not exceed search.max_length (%d)", c.Search.MinLength, c.Search.MaxLength)
	}
	if _, err := keyspace.Charset(c.Search.Charset, c.Search.CustomCharset); err != nil {
		return fmt.Errorf("search.charset: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	}
	return errors.New("logging.level must be one of debug, info, warn, error")
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
