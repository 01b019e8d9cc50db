package feed

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"feedpipe/app/image"
)

const (
	// aggregateItemCap bounds items accumulated for high-volume categories.
	aggregateItemCap = 12

	// maxEnrichPerParse bounds how many items one parse may queue for an
	// asynchronous thumbnail re-fetch.
	maxEnrichPerParse = 8
)

// Parser converts a raw feed body into an ordered item list plus channel
// metadata. It is stateless and safe for concurrent use.
type Parser struct {
	parser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{parser: gofeed.NewParser()}
}

// Run parses body into a Result. Unrecoverable parse failures yield an empty
// Result with a logged warning, never an error: the caller must always reach
// its delivery path so the consumer can exit its loading state.
func (p *Parser) Run(body []byte, opts ParseOptions) *Result {
	result := &Result{}

	parsed, err := p.parser.Parse(bytes.NewReader(Sanitize(body)))
	if err != nil {
		slog.Warn("Feed parse failed", "source", opts.SourceName, "error", err)
		return result
	}

	result.Metadata = channelMetadata(parsed, opts.SourceName)

	for _, entry := range parsed.Items {
		if opts.Aggregate && len(result.Items) >= aggregateItemCap {
			break
		}

		item := Item{
			Title:     strings.TrimSpace(entry.Title),
			Link:      strings.TrimSpace(entry.Link),
			Thumbnail: extractThumbnail(entry),
		}
		if item.Link == "" {
			continue
		}

		if opts.CDNEnrich && item.Thumbnail != "" {
			item.Thumbnail = image.NormalizeCDN(item.Thumbnail)
		}

		if len(result.EnrichIdx) < maxEnrichPerParse {
			if item.Thumbnail == "" || image.LooksLikeThumbnail(item.Thumbnail) {
				result.EnrichIdx = append(result.EnrichIdx, len(result.Items))
			}
		}

		result.Items = append(result.Items, item)
	}

	return result
}

// Matches reports whether an item passes a search filter: case-insensitive
// substring match on title or link. An empty query matches everything.
func Matches(item Item, query string) bool {
	if query == "" {
		return true
	}
	needle := strings.ToLower(query)
	return strings.Contains(strings.ToLower(item.Title), needle) ||
		strings.Contains(strings.ToLower(item.Link), needle)
}

func channelMetadata(parsed *gofeed.Feed, sourceName string) Metadata {
	meta := Metadata{
		Title:  strings.TrimSpace(parsed.Title),
		Format: parsed.FeedType,
	}
	if meta.Title == "" {
		meta.Title = sourceName
	}
	if parsed.Image != nil {
		meta.IconURL = UpgradeURL(parsed.Image.URL)
	}
	return meta
}

// extractThumbnail walks the per-item priority chain. First match wins:
// enclosure, media:thumbnail, image-like media:content, then HTML-snippet
// scans of the description, content and content:encoded fields.
func extractThumbnail(entry *gofeed.Item) string {
	for _, enclosure := range entry.Enclosures {
		if enclosure != nil && enclosure.URL != "" {
			return UpgradeURL(enclosure.URL)
		}
	}

	if url := mediaAttr(entry, "thumbnail"); url != "" {
		return UpgradeURL(url)
	}

	if url := mediaContentImage(entry); url != "" {
		return UpgradeURL(url)
	}

	if url := image.ExtractFromSnippet(entry.Description); url != "" {
		return url
	}
	if url := image.ExtractFromSnippet(entry.Content); url != "" {
		return url
	}
	if url := image.ExtractFromSnippet(contentEncoded(entry)); url != "" {
		return url
	}

	return ""
}

// mediaAttr returns the url attribute of the first media-namespace element
// with the given name.
func mediaAttr(entry *gofeed.Item, name string) string {
	for _, el := range mediaElements(entry, name) {
		if url := el.Attrs["url"]; url != "" {
			return url
		}
	}
	return ""
}

// mediaContentImage returns the first media:content URL whose type or medium
// declares an image, or whose URL carries an image file extension.
func mediaContentImage(entry *gofeed.Item) string {
	for _, el := range mediaElements(entry, "content") {
		url := el.Attrs["url"]
		if url == "" {
			continue
		}
		if strings.HasPrefix(el.Attrs["type"], "image/") ||
			el.Attrs["medium"] == "image" ||
			looksLikeImageFile(url) {
			return url
		}
	}
	return ""
}

func mediaElements(entry *gofeed.Item, name string) []ext.Extension {
	media, ok := entry.Extensions["media"]
	if !ok {
		return nil
	}
	return media[name]
}

func contentEncoded(entry *gofeed.Item) string {
	content, ok := entry.Extensions["content"]
	if !ok {
		return ""
	}
	for _, el := range content["encoded"] {
		if el.Value != "" {
			return el.Value
		}
	}
	return ""
}

var imageFileExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".avif", ".bmp"}

func looksLikeImageFile(url string) bool {
	lower := strings.ToLower(url)
	if idx := strings.IndexAny(lower, "?#"); idx >= 0 {
		lower = lower[:idx]
	}
	for _, suffix := range imageFileExtensions {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
