package cfg

type Cfg struct {
	// Storage configuration
	DBPath      string
	FeedsFile   string
	SourcesFile string

	// Application configuration
	Port            string
	RefreshInterval int
	MaxEnrichment   int
	FetchTimeout    int
	APIAccessKey    string

	// Ingestion behavior
	CDNExtraction string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

// CDNExtractionEnabled reports whether CDN-specific image handling is active.
// Only the explicit value "off" disables it; any other value, including
// absence, leaves it enabled.
func (c *Cfg) CDNExtractionEnabled() bool {
	return c.CDNExtraction != "off"
}
