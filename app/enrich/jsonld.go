package enrich

import (
	"encoding/json"
	"regexp"
)

var jsonLDRe = regexp.MustCompile(`(?is)<script[^>]+type\s*=\s*["']application/ld\+json["'][^>]*>(.*?)</script>`)

// extractJSONLDImage returns the first image URL declared in a JSON-LD block.
// The image field appears in the wild as a plain string, an object with a url
// member, or an array of either; blocks that fail to decode are skipped.
func extractJSONLDImage(html string) string {
	for _, match := range jsonLDRe.FindAllStringSubmatch(html, -1) {
		var doc any
		if err := json.Unmarshal([]byte(match[1]), &doc); err != nil {
			continue
		}
		if url := jsonLDDocImage(doc); url != "" {
			return url
		}
	}
	return ""
}

func jsonLDDocImage(doc any) string {
	switch val := doc.(type) {
	case map[string]any:
		return jsonLDImageValue(val["image"])
	case []any:
		for _, entry := range val {
			if url := jsonLDDocImage(entry); url != "" {
				return url
			}
		}
	}
	return ""
}

func jsonLDImageValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if url, ok := val["url"].(string); ok {
			return url
		}
	case []any:
		for _, entry := range val {
			if url := jsonLDImageValue(entry); url != "" {
				return url
			}
		}
	}
	return ""
}
