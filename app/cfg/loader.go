package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath      string `long:"db-path" env:"DB_PATH" default:"./feedpipe.db" description:"Path to the SQLite database file"`
	FeedsFile   string `long:"feeds-file" env:"FEEDS_FILE" default:"./feeds.txt" description:"Plaintext file with locally registered feed URLs, one per line"`
	SourcesFile string `long:"sources-file" env:"SOURCES_FILE" default:"./sources.yml" description:"YAML file describing source categories"`

	// Application configuration
	Port            string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	RefreshInterval int    `long:"refresh-interval" env:"REFRESH_INTERVAL" default:"300" description:"Background feed refresh interval in seconds"`
	MaxEnrichment   int    `long:"max-enrichment" env:"MAX_ENRICHMENT" default:"6" description:"Maximum number of concurrently active enrichment fetches"`
	FetchTimeout    int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"HTTP fetch timeout in seconds"`
	APIAccessKey    string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Ingestion behavior
	CDNExtraction string `long:"cdn-extraction" env:"CDN_EXTRACTION" description:"Set to 'off' to disable CDN-specific image extraction"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Feedpipe/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:          raw.DBPath,
		FeedsFile:       raw.FeedsFile,
		SourcesFile:     raw.SourcesFile,
		Port:            raw.Port,
		RefreshInterval: raw.RefreshInterval,
		MaxEnrichment:   raw.MaxEnrichment,
		FetchTimeout:    raw.FetchTimeout,
		APIAccessKey:    raw.APIAccessKey,
		CDNExtraction:   raw.CDNExtraction,
		UserAgent:       raw.UserAgent,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
