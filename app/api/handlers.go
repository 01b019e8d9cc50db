package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"feedpipe/app/cache"
	"feedpipe/app/database"
	"feedpipe/app/pipeline"
	"feedpipe/app/sources"
)

func NewHandler(catalog *sources.Catalog, feedRepo database.FeedRepository,
	orch Refresher, views *ViewSet, thumbs cache.ImageCache, client pipeline.Fetcher,
	version string) *Handler {
	return &Handler{
		catalog:  catalog,
		feedRepo: feedRepo,
		orch:     orch,
		views:    views,
		thumbs:   thumbs,
		client:   client,
		version:  version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		health["feeds"] = feedCount
	}
	health["categories"] = h.catalog.GetCategoryCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetCategories(c *gin.Context) {
	categories := h.catalog.GetCategories()

	out := make([]map[string]interface{}, 0, len(categories))
	for _, category := range categories {
		out = append(out, map[string]interface{}{
			"id":        category.ID,
			"name":      category.Name,
			"aggregate": category.Aggregate,
			"feeds":     len(category.Feeds),
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"categories": out,
		"total":      len(out),
	})
}

func (h *Handler) GetCategoryItems(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
		return
	}

	if _, err := h.catalog.GetCategory(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	label, items := h.views.Get(id).Snapshot()
	c.JSON(http.StatusOK, map[string]interface{}{
		"category_id": id,
		"label":       label,
		"items":       items,
		"total":       len(items),
	})
}

type refreshRequest struct {
	CategoryID int    `json:"category_id"`
	FeedURL    string `json:"feed_url"`
	Query      string `json:"query"`
}

// APIRefreshCategory starts a new fetch for a category view. The fetch runs
// in the background; the caller polls the items endpoint for results.
func (h *Handler) APIRefreshCategory(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	category, err := h.catalog.GetCategory(req.CategoryID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	source, ok := pickSource(category, req.FeedURL)
	if !ok {
		if req.FeedURL != "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found in category"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category has no feeds"})
		return
	}

	// The thumbnail cache budget follows the active view: aggregation
	// views show more images at once, so each gets a smaller share.
	if category.Aggregate {
		h.thumbs.Resize(cache.HighVolumeCapacity)
	} else {
		h.thumbs.Resize(cache.DefaultCapacity)
	}

	view := h.views.Get(category.ID)
	h.orch.Fetch(pipeline.Request{
		SourceURL:    source.URL,
		SourceName:   sourceName(source),
		CategoryName: category.Name,
		CategoryID:   category.ID,
		SearchQuery:  req.Query,
		Aggregate:    category.Aggregate,
		Sink:         view,
		Enriched:     view.ApplyEnrichment,
	})

	slog.Debug("Refresh started", "category", category.Name, "source", source.URL)
	c.JSON(http.StatusAccepted, gin.H{
		"success":     true,
		"category_id": category.ID,
		"source_url":  source.URL,
	})
}

// APIRefreshCurrent re-runs the most recent fetch, if any.
func (h *Handler) APIRefreshCurrent(c *gin.Context) {
	if !h.orch.Refresh() {
		c.JSON(http.StatusConflict, gin.H{"error": "Nothing fetched yet"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true})
}

// GetThumbnail proxies a thumbnail image through the bounded cache so the
// presentation layer never refetches what a recent view already loaded.
func (h *Handler) GetThumbnail(c *gin.Context) {
	rawURL := c.Query("url")
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid url parameter"})
		return
	}

	if data, ok := h.thumbs.Get(rawURL); ok {
		c.Data(http.StatusOK, http.DetectContentType(data), data)
		return
	}

	result := h.client.Fetch(c.Request.Context(), rawURL)
	if !result.OK() {
		slog.Debug("Thumbnail fetch failed", "url", rawURL, "error", result.ErrorMessage)
		c.Status(http.StatusBadGateway)
		return
	}

	h.thumbs.Set(rawURL, result.Body)
	c.Data(http.StatusOK, http.DetectContentType(result.Body), result.Body)
}

// pickSource returns the requested feed of a category, or its first feed when
// no URL is named.
func pickSource(category *sources.Category, feedURL string) (sources.Feed, bool) {
	if len(category.Feeds) == 0 {
		return sources.Feed{}, false
	}
	if feedURL == "" {
		return category.Feeds[0], true
	}
	for _, feed := range category.Feeds {
		if feed.URL == feedURL {
			return feed, true
		}
	}
	return sources.Feed{}, false
}

func sourceName(feed sources.Feed) string {
	if feed.Name != "" {
		return feed.Name
	}
	return feed.URL
}
