package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateCollection(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateSource() error {
	if c.Source.BaseURL == "" {
		return errors.New("source.base_url must be set")
	}
	if c.Source.MaxAttempts > 10 {
		return fmt.Errorf("source.max_attempts %d exceeds limit of 10", c.Source.MaxAttempts)
	}
	return nil
}

func (c *Config) validateCollection() error {
	switch c.Collection.Strategy {
	case StrategyDaily, StrategyInterval, StrategyCalendar:
	default:
		return fmt.Errorf("collection.strategy: unsupported value %q (expected daily, interval, or calendar)", c.Collection.Strategy)
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
