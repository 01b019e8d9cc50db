package enrich

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"regexp"
	"strings"
	"time"

	"feedpipe/app/fetch"
	"feedpipe/app/image"
)

// Deliver receives one improved (image URL, title) tuple. An enrichment run
// invokes it at most once; failed runs never invoke it.
type Deliver func(imageURL, title string)

// Fetcher is the subset of the HTTP client the enricher needs.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) fetch.Result
}

var _ Fetcher = (*fetch.Client)(nil)

const retryDelayMin = 200 * time.Millisecond

// retryDelaySpreadMs widens retries to a uniform [200ms, 1000ms) window so
// bursts of deferred enrichments do not stampede the throttle together.
const retryDelaySpreadMs = 800

// Article pages whose images live on the recognized CDN.
var cdnArticleHostRe = regexp.MustCompile(`(?i)(?:^|\.)blogspot\.com$`)

// Enricher runs best-effort background fetches that upgrade an already
// displayed item's thumbnail and title. Failures drop silently.
type Enricher struct {
	client     Fetcher
	throttle   *Throttle
	cdnEnabled bool
}

func NewEnricher(client Fetcher, maxActive int, cdnEnabled bool) *Enricher {
	return &Enricher{
		client:     client,
		throttle:   NewThrottle(maxActive),
		cdnEnabled: cdnEnabled,
	}
}

// Enrich schedules a fire-and-forget enrichment fetch for articleURL. When
// the throttle is saturated the call reschedules itself after a randomized
// delay instead of blocking.
func (e *Enricher) Enrich(articleURL string, deliver Deliver, categoryID int, sourceName string) {
	if !e.throttle.TryAcquire() {
		time.AfterFunc(retryDelay(), func() {
			e.Enrich(articleURL, deliver, categoryID, sourceName)
		})
		return
	}

	go func() {
		defer e.throttle.Release()
		e.run(articleURL, deliver, categoryID, sourceName)
	}()
}

func (e *Enricher) run(articleURL string, deliver Deliver, categoryID int, sourceName string) {
	result := e.client.Fetch(context.Background(), articleURL)
	if !result.OK() {
		slog.Debug("Enrichment fetch failed",
			"url", articleURL, "source", sourceName, "category", categoryID,
			"error", result.ErrorMessage)
		return
	}

	body := string(result.Body)

	var imageURL string
	if e.cdnEnabled && isCDNArticle(articleURL) {
		imageURL = extractCDNImage(body)
		if imageURL != "" {
			imageURL = image.NormalizeCDN(coerceHTTPS(imageURL))
		}
	} else {
		imageURL = extractMetaImage(body)
	}

	if imageURL == "" {
		return
	}

	deliver(coerceHTTPS(imageURL), pageTitle(body))
}

// extractCDNImage mines a CDN-hosted article page for its full-resolution
// image: JSON-LD first, then a src-family attribute scan in document order,
// then any bare URL on a known CDN image host.
func extractCDNImage(body string) string {
	if url := extractJSONLDImage(body); url != "" {
		return url
	}
	if url := image.ExtractFromSnippet(body); url != "" {
		return url
	}
	return image.CDNImageURLRe.FindString(body)
}

func isCDNArticle(articleURL string) bool {
	parsed, err := url.Parse(articleURL)
	if err != nil {
		return false
	}
	return cdnArticleHostRe.MatchString(parsed.Hostname())
}

func coerceHTTPS(rawURL string) string {
	switch {
	case strings.HasPrefix(rawURL, "//"):
		return "https:" + rawURL
	case strings.HasPrefix(rawURL, "http://"):
		return "https://" + strings.TrimPrefix(rawURL, "http://")
	}
	return rawURL
}

func retryDelay() time.Duration {
	return retryDelayMin + time.Duration(rand.IntN(retryDelaySpreadMs))*time.Millisecond
}
