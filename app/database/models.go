package database

import (
	"time"
)

// Feed is one persisted feed-metadata record. The ingestion pipeline only
// reads it for lookups and writes favicon updates; registration happens at
// startup from the source catalog.
type Feed struct {
	ID         int64
	URL        string
	Name       string
	CategoryID int
	FaviconURL string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
