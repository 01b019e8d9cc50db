package cache

// ImageCache is the bounded in-memory cache for decoded thumbnail data. The
// presentation layer resizes it per view; high-volume categories get a
// smaller capacity.
type ImageCache interface {
	Get(url string) ([]byte, bool)
	Set(url string, data []byte)
	Resize(capacity int)
	Len() int
}
