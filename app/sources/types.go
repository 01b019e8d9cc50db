package sources

// Feed is one subscribed source inside a category.
type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

// Category groups sources for one presentation view. Aggregate marks the
// high-volume aggregation category: its parses are item-capped and its sink
// deliveries are batched.
type Category struct {
	ID        int    `yaml:"id"`
	Name      string `yaml:"name"`
	Aggregate bool   `yaml:"aggregate"`
	BatchSize int    `yaml:"batch_size"`
	Feeds     []Feed `yaml:"feeds"`
}

type catalogFile struct {
	Categories []Category `yaml:"categories"`
}
