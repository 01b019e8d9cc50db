package feed

// Item is one parsed article. Items are immutable once produced and live for
// a single ingestion pass; ownership transfers to the result sink consumer.
type Item struct {
	Title     string
	Link      string
	Thumbnail string
}

// Metadata carries channel-level fields extracted independently of items.
type Metadata struct {
	Title   string
	IconURL string
	Format  string
}

// ParseOptions describe the source a body came from and which conditional
// behaviors apply to this pass.
type ParseOptions struct {
	SourceName   string
	CategoryName string
	CategoryID   int

	// Aggregate caps item accumulation for the high-volume category.
	Aggregate bool

	// CDNEnrich enables synchronous CDN URL normalization during parsing.
	CDNEnrich bool
}

// Result is the outcome of one parse: items in document order, channel
// metadata, and the indices of items whose thumbnails are missing or look
// like reduced renditions and are worth an asynchronous re-fetch.
type Result struct {
	Metadata  Metadata
	Items     []Item
	EnrichIdx []int
}
