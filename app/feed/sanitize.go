package feed

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// controlFilter removes control code points that are invalid in XML text,
// keeping tab, LF and CR.
var controlFilter = runes.Remove(runes.Predicate(func(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return r < 0x20 || r == 0x7f || (r >= 0x80 && r <= 0x9f)
}))

// Sanitize drops bytes that are invalid UTF-8 and control code points other
// than tab/LF/CR, so malformed feeds do not abort XML parsing.
func Sanitize(data []byte) []byte {
	valid := strings.ToValidUTF8(string(data), "")

	cleaned, _, err := transform.String(controlFilter, valid)
	if err != nil {
		return []byte(valid)
	}

	return []byte(cleaned)
}

// UpgradeURL normalizes a thumbnail candidate: trims whitespace, decodes
// escaped ampersands and upgrades protocol-relative URLs to https.
func UpgradeURL(url string) string {
	url = strings.TrimSpace(url)
	url = strings.ReplaceAll(url, "&amp;", "&")
	if strings.HasPrefix(url, "//") {
		url = "https:" + url
	}
	return url
}
