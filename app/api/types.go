package api

import (
	"feedpipe/app/cache"
	"feedpipe/app/database"
	"feedpipe/app/pipeline"
	"feedpipe/app/sources"
)

// Refresher is the slice of the orchestrator the handlers drive.
type Refresher interface {
	Fetch(req pipeline.Request)
	Refresh() bool
}

var _ Refresher = (*pipeline.Orchestrator)(nil)

type Handler struct {
	catalog  *sources.Catalog
	feedRepo database.FeedRepository
	orch     Refresher
	views    *ViewSet
	thumbs   cache.ImageCache
	client   pipeline.Fetcher
	version  string
}
