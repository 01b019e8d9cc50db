package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"feedpipe/app/database"
	"feedpipe/app/sources"
)

// SyncCatalogTask mirrors the source catalog into the feed-metadata store so
// favicon updates and lookups have a row to land on.
type SyncCatalogTask struct {
	Task
	catalog  *sources.Catalog
	feedRepo database.FeedRepository
}

func NewSyncCatalogTask(catalog *sources.Catalog, feedRepo database.FeedRepository) *SyncCatalogTask {
	return &SyncCatalogTask{
		Task:     NewTask(TaskTypeSyncCatalog),
		catalog:  catalog,
		feedRepo: feedRepo,
	}
}

func (t *SyncCatalogTask) Execute(ctx context.Context) error {
	registered := 0
	for _, category := range t.catalog.GetCategories() {
		for _, feed := range category.Feeds {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err := t.feedRepo.UpsertFeed(feed.URL, feed.Name, category.ID); err != nil {
				return fmt.Errorf("failed to register feed %s: %w", feed.URL, err)
			}
			registered++
		}
	}

	slog.Debug("Catalog synced", "feeds", registered, "duration", t.GetDuration().String())
	return nil
}
