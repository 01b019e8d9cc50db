package enrich

import (
	"regexp"
	"strings"

	readability "codeberg.org/readeck/go-readability"
)

// Meta tags appear with attributes in either order, so each extraction has a
// property-first and a content-first pattern.
var (
	metaImageRe    = regexp.MustCompile(`(?is)<meta\s[^>]*?(?:property|name)\s*=\s*["'](?:og:image(?::secure_url|:url)?|twitter:image(?::src)?)["'][^>]*?content\s*=\s*["']([^"']+)["']`)
	metaImageRevRe = regexp.MustCompile(`(?is)<meta\s[^>]*?content\s*=\s*["']([^"']+)["'][^>]*?(?:property|name)\s*=\s*["'](?:og:image(?::secure_url|:url)?|twitter:image(?::src)?)["']`)
	metaTitleRe    = regexp.MustCompile(`(?is)<meta\s[^>]*?(?:property|name)\s*=\s*["'](?:og:title|twitter:title)["'][^>]*?content\s*=\s*["']([^"']+)["']`)
	metaTitleRevRe = regexp.MustCompile(`(?is)<meta\s[^>]*?content\s*=\s*["']([^"']+)["'][^>]*?(?:property|name)\s*=\s*["'](?:og:title|twitter:title)["']`)
)

// extractMetaImage returns the first Open Graph or Twitter card image URL.
func extractMetaImage(html string) string {
	if m := metaImageRe.FindStringSubmatch(html); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := metaImageRevRe.FindStringSubmatch(html); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// pageTitle prefers the Open Graph title and falls back to the readability
// extraction of the document. Returns "" when neither yields anything.
func pageTitle(html string) string {
	if m := metaTitleRe.FindStringSubmatch(html); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := metaTitleRevRe.FindStringSubmatch(html); m != nil {
		return strings.TrimSpace(m[1])
	}

	article, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.Title)
}
