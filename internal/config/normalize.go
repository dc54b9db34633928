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
	c.normalizeSource()
	c.normalizeTMDB()
	c.normalizeMatching()
	c.normalizeCollection()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSource() {
	c.Source.BaseURL = strings.TrimRight(strings.TrimSpace(c.Source.BaseURL), "/")
	if c.Source.BaseURL == "" {
		c.Source.BaseURL = defaultSourceBaseURL
	}
	if strings.TrimSpace(c.Source.UserAgent) == "" {
		c.Source.UserAgent = defaultSourceUserAgent
	}
	if c.Source.RequestDelaySeconds <= 0 {
		c.Source.RequestDelaySeconds = defaultRequestDelaySeconds
	}
	if c.Source.MaxAttempts <= 0 {
		c.Source.MaxAttempts = defaultMaxAttempts
	}
	if c.Source.TimeoutSeconds <= 0 {
		c.Source.TimeoutSeconds = defaultTimeoutSeconds
	}
}

func (c *Config) normalizeTMDB() {
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = strings.TrimSpace(value)
		}
	}
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	if strings.TrimSpace(c.TMDB.Language) == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
}

func (c *Config) normalizeMatching() {
	if c.Matching.ReleaseWindowDays <= 0 {
		c.Matching.ReleaseWindowDays = defaultReleaseWindowDays
	}
}

func (c *Config) normalizeCollection() {
	c.Collection.Strategy = strings.ToLower(strings.TrimSpace(c.Collection.Strategy))
	if c.Collection.Strategy == "" {
		c.Collection.Strategy = defaultStrategy
	}
	if c.Collection.IntervalDays <= 0 {
		c.Collection.IntervalDays = defaultIntervalDays
	}
	if c.Collection.FailureThreshold <= 0 {
		c.Collection.FailureThreshold = defaultFailureThreshold
	}
	if c.Collection.Workers <= 0 {
		c.Collection.Workers = defaultWorkers
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
}
