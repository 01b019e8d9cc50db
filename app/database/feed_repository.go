package database

import (
	"database/sql"
	"fmt"
)

var _ FeedRepository = (*SQLFeedRepository)(nil)

// SQLFeedRepository is the SQLite-backed feed-metadata store.
type SQLFeedRepository struct {
	db *DB
}

func NewFeedRepository(db *DB) *SQLFeedRepository {
	return &SQLFeedRepository{db: db}
}

// UpsertFeed registers a feed or refreshes its name/category.
func (r *SQLFeedRepository) UpsertFeed(url, name string, categoryID int) error {
	_, err := r.db.Exec(`
		INSERT INTO feeds (url, name, category_id)
		VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			name = excluded.name,
			category_id = excluded.category_id,
			updated_at = CURRENT_TIMESTAMP
	`, url, name, categoryID)

	if err != nil {
		return fmt.Errorf("failed to upsert feed: %w", err)
	}

	return nil
}

// GetFeedByURL returns the feed registered under url, or nil when absent.
func (r *SQLFeedRepository) GetFeedByURL(url string) (*Feed, error) {
	var feed Feed
	err := r.db.QueryRow(`
		SELECT id, url, name, category_id, favicon_url, created_at, updated_at
		FROM feeds
		WHERE url = ?
	`, url).Scan(
		&feed.ID, &feed.URL, &feed.Name, &feed.CategoryID, &feed.FaviconURL,
		&feed.CreatedAt, &feed.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed by URL: %w", err)
	}

	return &feed, nil
}

// GetAllFeeds returns every registered feed.
func (r *SQLFeedRepository) GetAllFeeds() ([]Feed, error) {
	rows, err := r.db.Query(`
		SELECT id, url, name, category_id, favicon_url, created_at, updated_at
		FROM feeds
		ORDER BY category_id, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get feeds: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		var feed Feed
		err := rows.Scan(
			&feed.ID, &feed.URL, &feed.Name, &feed.CategoryID, &feed.FaviconURL,
			&feed.CreatedAt, &feed.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, feed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	return feeds, nil
}

// GetFaviconByURL returns the stored favicon for url, or "" when the feed is
// unknown.
func (r *SQLFeedRepository) GetFaviconByURL(url string) (string, error) {
	var favicon string
	err := r.db.QueryRow("SELECT favicon_url FROM feeds WHERE url = ?", url).Scan(&favicon)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get favicon: %w", err)
	}
	return favicon, nil
}

// UpdateFaviconByURL stores a newly discovered channel favicon.
func (r *SQLFeedRepository) UpdateFaviconByURL(url, faviconURL string) error {
	_, err := r.db.Exec(`
		UPDATE feeds
		SET favicon_url = ?, updated_at = CURRENT_TIMESTAMP
		WHERE url = ?
	`, faviconURL, url)

	if err != nil {
		return fmt.Errorf("failed to update favicon: %w", err)
	}

	return nil
}

// GetFeedCount returns the total number of registered feeds.
func (r *SQLFeedRepository) GetFeedCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM feeds").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get feed count: %w", err)
	}
	return count, nil
}
