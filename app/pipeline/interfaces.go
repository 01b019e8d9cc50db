package pipeline

import (
	"context"

	"feedpipe/app/enrich"
	"feedpipe/app/fetch"
)

// Sink is the callback contract the presentation layer implements. Every
// ingestion entry point reports through it and nothing else.
type Sink interface {
	SetLabel(text string)
	ClearItems()
	AddItem(title, link, thumbnail string, categoryID int, sourceName string)
}

// Fetcher is the subset of the HTTP client the orchestrator needs.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) fetch.Result
}

var _ Fetcher = (*fetch.Client)(nil)

// ItemEnricher schedules best-effort background thumbnail upgrades.
type ItemEnricher interface {
	Enrich(articleURL string, deliver enrich.Deliver, categoryID int, sourceName string)
}

var _ ItemEnricher = (*enrich.Enricher)(nil)

// LocalFeedList is the line-based local feed registry dead URLs are pruned
// from.
type LocalFeedList interface {
	Contains(url string) bool
	Remove(url string)
}

// FaviconStore is the slice of the feed-metadata store the favicon side
// effect touches.
type FaviconStore interface {
	GetFaviconByURL(url string) (string, error)
	UpdateFaviconByURL(url, faviconURL string) error
}
