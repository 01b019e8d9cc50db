package image

import (
	"net/url"
	"regexp"
	"strings"
)

// canonicalSize is the size token all recognized resize segments collapse to.
const canonicalSize = "s1600"

// CDNHostRe matches the Blogger image hosting hostnames the normalizer and
// the CDN enrichment fetcher recognize.
var CDNHostRe = regexp.MustCompile(`(?i)(?:^|\.)(?:bp\.blogspot\.com|blogger\.googleusercontent\.com|lh\d\.googleusercontent\.com|ggpht\.com)$`)

// CDNImageURLRe matches any absolute URL on a known CDN image host, used as
// the last-resort scan in the CDN enrichment fetcher.
var CDNImageURLRe = regexp.MustCompile(`https?://(?:\d+\.bp\.blogspot\.com|blogger\.googleusercontent\.com|lh\d\.googleusercontent\.com|[a-z0-9.-]*ggpht\.com)/[^\s"'<>\\)]+`)

// Ordered, independent path rewrites. Each pattern identifies one family of
// size-constraining segments; all collapse to the canonical token, which
// makes a second application a no-op.
var cdnPathRewrites = []struct {
	re          *regexp.Regexp
	replacement string
}{
	// Numeric size segment, e.g. /s320/ or /s72-c/.
	{regexp.MustCompile(`/s\d{2,4}(?:-c)?/`), "/" + canonicalSize + "/"},
	// Explicit WxH segment, e.g. /w400-h300/ or /w640-h360-p-k-no-nu/.
	{regexp.MustCompile(`/w\d+-h\d+(?:-[a-z0-9]+)*/`), "/" + canonicalSize + "/"},
	// Named standard/thumbnail segments.
	{regexp.MustCompile(`/(?:standard|thumbnail)/`), "/" + canonicalSize + "/"},
	// Resize/preview segments with an optional numeric argument.
	{regexp.MustCompile(`/(?:resize|preview)(?:/\d{2,4})?/`), "/" + canonicalSize + "/"},
	// Generic thumb/small/crop segments.
	{regexp.MustCompile(`/(?:thumbs?|small|crop)/`), "/" + canonicalSize + "/"},
}

// Size suffix in the googleusercontent query-less form, e.g. =s320 or =w400-h300-c.
var cdnSuffixRe = regexp.MustCompile(`=(?:s\d{2,4}|w\d+-h\d+)(?:-[a-z0-9]+)*$`)

var resizeParams = map[string]bool{
	"w":       true,
	"h":       true,
	"width":   true,
	"height":  true,
	"resize":  true,
	"fit":     true,
	"crop":    true,
	"quality": true,
	"zoom":    true,
}

// NormalizeCDN rewrites a known-CDN image URL to request the largest
// available rendition. URLs on other hosts pass through unchanged; any
// internal fault returns the original URL. Applying the normalizer to an
// already-normalized URL is a no-op.
func NormalizeCDN(rawURL string) string {
	if rawURL == "" {
		return rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}

	if !IsCDNHost(parsed.Host) {
		return rawURL
	}

	normalized := rawURL
	for _, rewrite := range cdnPathRewrites {
		normalized = rewrite.re.ReplaceAllString(normalized, rewrite.replacement)
	}
	normalized = cdnSuffixRe.ReplaceAllString(normalized, "="+canonicalSize)

	return StripResizeParams(normalized)
}

// IsCDNHost reports whether host belongs to the recognized image CDN.
func IsCDNHost(host string) bool {
	return CDNHostRe.MatchString(strings.ToLower(host))
}

// StripResizeParams removes a fixed set of resize/crop/quality query
// parameters, matched case-insensitively by key, preserving the order of all
// other parameters. Faults return the original URL.
func StripResizeParams(rawURL string) string {
	idx := strings.IndexByte(rawURL, '?')
	if idx < 0 {
		return rawURL
	}

	base := rawURL[:idx]
	query := rawURL[idx+1:]

	var fragment string
	if f := strings.IndexByte(query, '#'); f >= 0 {
		fragment = query[f:]
		query = query[:f]
	}

	// Split by hand instead of url.Values to keep parameter order stable.
	kept := make([]string, 0, 4)
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		key := pair
		if eq := strings.IndexByte(pair, '='); eq >= 0 {
			key = pair[:eq]
		}
		if resizeParams[strings.ToLower(key)] {
			continue
		}
		kept = append(kept, pair)
	}

	if len(kept) == 0 {
		return base + fragment
	}
	return base + "?" + strings.Join(kept, "&") + fragment
}
