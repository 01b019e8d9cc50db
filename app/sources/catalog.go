package sources

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

const defaultBatchSize = 6

// Catalog caches the category definitions loaded from the sources YAML file.
type Catalog struct {
	path  string
	cache map[int]*Category
	order []int
	mu    sync.RWMutex
}

func NewCatalog(path string) *Catalog {
	return &Catalog{
		path:  path,
		cache: make(map[int]*Category),
	}
}

// Run loads (or reloads) the catalog from disk.
func (c *Catalog) Run() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("failed to read sources file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse sources YAML: %w", err)
	}

	cache := make(map[int]*Category, len(file.Categories))
	order := make([]int, 0, len(file.Categories))
	for i := range file.Categories {
		category := &file.Categories[i]
		if err := validateCategory(category); err != nil {
			return fmt.Errorf("invalid category at index %d: %w", i, err)
		}
		if category.BatchSize == 0 {
			category.BatchSize = defaultBatchSize
		}
		if _, exists := cache[category.ID]; exists {
			return fmt.Errorf("duplicate category id %d", category.ID)
		}
		cache[category.ID] = category
		order = append(order, category.ID)

		slog.Debug("Category loaded", "id", category.ID, "name", category.Name,
			"aggregate", category.Aggregate, "feeds", len(category.Feeds))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = cache
	c.order = order

	return nil
}

// GetCategory returns the category with the given id.
func (c *Catalog) GetCategory(id int) (*Category, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	category, ok := c.cache[id]
	if !ok {
		return nil, fmt.Errorf("category with id %d not found", id)
	}
	return category, nil
}

// GetCategories returns all categories in file order.
func (c *Catalog) GetCategories() []*Category {
	c.mu.RLock()
	defer c.mu.RUnlock()

	categories := make([]*Category, 0, len(c.order))
	for _, id := range c.order {
		categories = append(categories, c.cache[id])
	}
	return categories
}

// IsAggregate reports whether id names the high-volume aggregation category.
func (c *Catalog) IsAggregate(id int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	category, ok := c.cache[id]
	return ok && category.Aggregate
}

func (c *Catalog) GetCategoryCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func validateCategory(category *Category) error {
	if category.Name == "" {
		return fmt.Errorf("category name is required")
	}
	if category.ID < 0 {
		return fmt.Errorf("category id must be non-negative")
	}
	if category.BatchSize < 0 {
		return fmt.Errorf("batch size must be non-negative")
	}
	for i, feed := range category.Feeds {
		if feed.URL == "" {
			return fmt.Errorf("feed at index %d has no URL", i)
		}
	}
	return nil
}
