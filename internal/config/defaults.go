package config

// Collection strategies accepted by collection.strategy.
const (
	StrategyDaily    = "daily"
	StrategyInterval = "interval"
	StrategyCalendar = "calendar"
)

const (
	defaultDataDir             = "~/.local/share/marquee/data"
	defaultLogDir              = "~/.local/share/marquee/logs"
	defaultExportDir           = "~/.local/share/marquee/exports"
	defaultSourceBaseURL       = "https://www.boxofficemojo.com"
	defaultSourceUserAgent     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	defaultRequestDelaySeconds = 2
	defaultMaxAttempts         = 3
	defaultTimeoutSeconds      = 15
	defaultTMDBBaseURL         = "https://api.themoviedb.org/3"
	defaultTMDBLanguage        = "en-US"
	defaultReleaseWindowDays   = 14
	defaultStrategy            = StrategyDaily
	defaultIntervalDays        = 14
	defaultFailureThreshold    = 10
	defaultWorkers             = 4
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			ExportDir: defaultExportDir,
		},
		Source: Source{
			BaseURL:             defaultSourceBaseURL,
			UserAgent:           defaultSourceUserAgent,
			RequestDelaySeconds: defaultRequestDelaySeconds,
			MaxAttempts:         defaultMaxAttempts,
			TimeoutSeconds:      defaultTimeoutSeconds,
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
		},
		Matching: Matching{
			ReleaseWindowDays: defaultReleaseWindowDays,
		},
		Collection: Collection{
			Strategy:         defaultStrategy,
			IntervalDays:     defaultIntervalDays,
			FailureThreshold: defaultFailureThreshold,
			Workers:          defaultWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
