package image

import (
	"regexp"
	"strconv"
	"strings"
)

const minCandidateLength = 20

var (
	hrefRe      = regexp.MustCompile(`(?i)<a\s[^>]*?href\s*=\s*["']([^"']+)["']`)
	srcRe       = regexp.MustCompile(`(?i)(?:data-src|src)\s*=\s*["']([^"']+)["']`)
	srcsetRe    = regexp.MustCompile(`(?i)(?:data-srcset|srcset)\s*=\s*["']([^"']+)["']`)
	imageExtRe  = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|webp|avif|bmp)([?#]|$)`)
	widthDescRe = regexp.MustCompile(`^(\d+)w$`)
	smallSizeRe = regexp.MustCompile(`(?:/s\d{1,3}(?:-c)?/|=s\d{1,3}(?:-c)?$)`)
)

var trackingMarkers = []string{
	"pixel",
	"1x1",
	"tracker",
	"tracking",
	"spacer",
	"beacon",
}

var thumbnailMarkers = []string{
	"thumb",
	"small",
	"icon",
	"preview",
	"crop",
	"resize",
}

var imageKeywords = []string{
	".jpg", ".jpeg", ".png", ".gif", ".webp", ".avif", ".bmp",
	"image", "img", "photo", "picture",
}

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&quot;", "\"",
	"&#39;", "'",
	"&lt;", "<",
	"&gt;", ">",
)

var percentReplacer = strings.NewReplacer(
	"%3A", ":", "%3a", ":",
	"%2F", "/", "%2f", "/",
	"%3F", "?", "%3f", "?",
	"%3D", "=", "%3d", "=",
	"%26", "&",
)

// ExtractFromSnippet scans an HTML fragment for a representative image URL.
// A srcset candidate wins over everything else; otherwise an href pointing at
// an image file competes with a plain src attribute, with href preferred only
// when the src looks like a thumbnail. Returns "" when nothing acceptable is
// found. The scan is attribute-level regex matching, not DOM parsing.
func ExtractFromSnippet(html string) string {
	if html == "" {
		return ""
	}

	// Srcset short-circuits unconditionally.
	for _, match := range srcsetRe.FindAllStringSubmatch(html, -1) {
		if url := cleanCandidate(SelectFromSrcset(match[1])); url != "" {
			return url
		}
	}

	var hrefCandidate string
	for _, match := range hrefRe.FindAllStringSubmatch(html, -1) {
		url := cleanCandidate(match[1])
		if url == "" || !imageExtRe.MatchString(url) {
			continue
		}
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			continue
		}
		if LooksLikeThumbnail(url) {
			continue
		}
		hrefCandidate = url
		break
	}

	var srcCandidate string
	for _, match := range srcRe.FindAllStringSubmatch(html, -1) {
		url := cleanCandidate(match[1])
		if url == "" {
			continue
		}
		srcCandidate = url
		break
	}

	// Prefer href only when the src candidate looks like a thumbnail;
	// otherwise src wins. Intentionally asymmetric with the srcset rule.
	switch {
	case hrefCandidate != "" && srcCandidate != "":
		if LooksLikeThumbnail(srcCandidate) {
			return hrefCandidate
		}
		return srcCandidate
	case hrefCandidate != "":
		return hrefCandidate
	case srcCandidate != "":
		return srcCandidate
	default:
		return ""
	}
}

// SelectFromSrcset parses a srcset attribute value and returns the entry URL
// with the largest numeric width descriptor, falling back to the first entry
// when no descriptor parses. Returns "" for an empty attribute.
func SelectFromSrcset(srcset string) string {
	var bestURL string
	bestWidth := -1
	var firstURL string

	for _, entry := range strings.Split(srcset, ",") {
		fields := strings.Fields(strings.TrimSpace(entry))
		if len(fields) == 0 {
			continue
		}
		url := fields[0]
		if firstURL == "" {
			firstURL = url
		}
		if len(fields) > 1 {
			if m := widthDescRe.FindStringSubmatch(fields[1]); m != nil {
				if width, err := strconv.Atoi(m[1]); err == nil && width > bestWidth {
					bestWidth = width
					bestURL = url
				}
			}
		}
	}

	if bestURL == "" {
		bestURL = firstURL
	}

	return bestURL
}

// cleanCandidate decodes and filters a raw attribute value, returning ""
// when the value is not an acceptable image URL.
func cleanCandidate(raw string) string {
	url := strings.TrimSpace(raw)
	if url == "" {
		return ""
	}

	url = entityReplacer.Replace(url)
	url = percentReplacer.Replace(url)

	if strings.HasPrefix(url, "data:") || strings.Contains(url, ";base64") {
		return ""
	}

	// Protocol-relative URLs upgrade to https.
	if strings.HasPrefix(url, "//") {
		url = "https:" + url
	}

	if len(url) < minCandidateLength {
		return ""
	}

	lower := strings.ToLower(url)
	for _, marker := range trackingMarkers {
		if strings.Contains(lower, marker) {
			return ""
		}
	}

	if !hasImageKeyword(lower) {
		return ""
	}

	return url
}

func hasImageKeyword(lower string) bool {
	for _, keyword := range imageKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// LooksLikeThumbnail reports whether a URL appears to reference a reduced
// rendition: a named thumbnail marker or a small CDN size segment.
func LooksLikeThumbnail(url string) bool {
	lower := strings.ToLower(url)
	for _, marker := range thumbnailMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return smallSizeRe.MatchString(lower)
}
