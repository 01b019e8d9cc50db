package database

type FeedRepository interface {
	GetFeedByURL(url string) (*Feed, error)
	GetAllFeeds() ([]Feed, error)
	GetFeedCount() (int, error)
	GetFaviconByURL(url string) (string, error)

	UpsertFeed(url, name string, categoryID int) error
	UpdateFaviconByURL(url, faviconURL string) error
}
