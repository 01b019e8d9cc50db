package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"feedpipe/app/enrich"
	"feedpipe/app/feed"
	"feedpipe/app/fetch"
)

// Request describes one user-triggered fetch of a source into a view.
type Request struct {
	SourceURL    string
	SourceName   string
	CategoryName string
	CategoryID   int
	SearchQuery  string

	// Aggregate marks a high-volume category: items are capped during
	// parsing and batched on delivery.
	Aggregate bool

	Sink Sink

	// Enriched, when set, receives background thumbnail upgrades for
	// already-delivered items, keyed by the item link.
	Enriched func(link, imageURL, title string)
}

// Orchestrator drives the fetch state machine: each Fetch advances the epoch,
// runs the network and parse work on a background goroutine, and reports
// through the request's sink behind the epoch guard.
type Orchestrator struct {
	client    Fetcher
	parser    *feed.Parser
	enricher  ItemEnricher
	guard     *EpochGuard
	loop      *Loop
	feedList  LocalFeedList
	favicons  FaviconStore
	cdnEnrich bool

	safetyTimeout time.Duration

	timerMu sync.Mutex
	safety  *time.Timer

	reqMu   sync.Mutex
	lastReq *Request
}

func NewOrchestrator(
	client Fetcher,
	enricher ItemEnricher,
	loop *Loop,
	feedList LocalFeedList,
	favicons FaviconStore,
	cdnEnrich bool,
	safetyTimeout time.Duration,
) *Orchestrator {
	return &Orchestrator{
		client:        client,
		parser:        feed.NewParser(),
		enricher:      enricher,
		guard:         NewEpochGuard(),
		loop:          loop,
		feedList:      feedList,
		favicons:      favicons,
		cdnEnrich:     cdnEnrich,
		safetyTimeout: safetyTimeout,
	}
}

// Guard exposes the epoch guard for callers that coordinate their own
// view-state resets with in-flight fetches.
func (o *Orchestrator) Guard() *EpochGuard {
	return o.guard
}

// Fetch begins a new epoch for req and returns immediately. All prior
// in-flight fetches are superseded: their late results will fail the epoch
// check and drop.
func (o *Orchestrator) Fetch(req Request) {
	o.reqMu.Lock()
	last := req
	o.lastReq = &last
	o.reqMu.Unlock()

	epoch := o.guard.Begin()
	guarded := NewGuardedSink(req.Sink, o.guard, epoch, o.loop)

	o.armSafetyTimer(guarded)
	guarded.SetLabel("Loading " + req.SourceName)

	go o.run(req, epoch, guarded)
}

// Refresh re-issues the most recent request, keeping the active view fresh.
// Returns false when nothing has been fetched yet.
func (o *Orchestrator) Refresh() bool {
	o.reqMu.Lock()
	req := o.lastReq
	o.reqMu.Unlock()

	if req == nil {
		return false
	}
	o.Fetch(*req)
	return true
}

func (o *Orchestrator) run(req Request, epoch uint64, guarded *GuardedSink) {
	result := o.client.Fetch(context.Background(), req.SourceURL)
	if !result.OK() {
		o.disarmSafetyTimer(epoch)
		guarded.SetLabel(failureLabel(result))
		o.pruneDeadLocalFeed(req.SourceURL, result)
		return
	}

	parsed := o.parser.Run(result.Body, feed.ParseOptions{
		SourceName:   req.SourceName,
		CategoryName: req.CategoryName,
		CategoryID:   req.CategoryID,
		Aggregate:    req.Aggregate,
		CDNEnrich:    o.cdnEnrich,
	})

	var sink Sink = guarded
	var batching *BatchingSink
	if req.Aggregate {
		batching = NewBatchingSink(guarded)
		sink = batching
	}

	// The clear always runs, even for zero items, so the view exits its
	// loading state deterministically.
	sink.ClearItems()

	for _, item := range parsed.Items {
		if !feed.Matches(item, req.SearchQuery) {
			continue
		}
		sink.AddItem(item.Title, item.Link, item.Thumbnail, req.CategoryID, req.SourceName)
	}

	title := parsed.Metadata.Title
	if title == "" {
		title = req.SourceName
	}
	sink.SetLabel(title)

	o.scheduleEnrichment(req, epoch, parsed)

	if req.Aggregate && parsed.Metadata.IconURL != "" {
		go o.refreshFavicon(req.SourceURL, parsed.Metadata.IconURL)
	}

	if batching != nil {
		batching.NotifyDrained(func() { o.disarmSafetyTimer(epoch) })
	} else {
		o.disarmSafetyTimer(epoch)
	}
}

func (o *Orchestrator) scheduleEnrichment(req Request, epoch uint64, parsed *feed.Result) {
	if o.enricher == nil || req.Enriched == nil {
		return
	}

	for _, idx := range parsed.EnrichIdx {
		item := parsed.Items[idx]
		if !feed.Matches(item, req.SearchQuery) {
			continue
		}

		link := item.Link
		deliver := enrich.Deliver(func(imageURL, title string) {
			o.loop.Post(func() {
				if !o.guard.IsCurrent(epoch) {
					return
				}
				req.Enriched(link, imageURL, title)
			})
		})

		o.enricher.Enrich(link, deliver, req.CategoryID, req.SourceName)
	}
}

// refreshFavicon is a best-effort background metadata update; it never blocks
// or fails the parse that triggered it.
func (o *Orchestrator) refreshFavicon(sourceURL, iconURL string) {
	if o.favicons == nil {
		return
	}

	stored, err := o.favicons.GetFaviconByURL(sourceURL)
	if err != nil {
		slog.Debug("Favicon lookup failed", "url", sourceURL, "error", err)
		return
	}
	if stored == iconURL {
		return
	}

	if err := o.favicons.UpdateFaviconByURL(sourceURL, iconURL); err != nil {
		slog.Debug("Favicon update failed", "url", sourceURL, "error", err)
	}
}

// pruneDeadLocalFeed removes a locally-registered feed URL after a network
// failure. Best effort: a prune failure is logged inside the list itself.
func (o *Orchestrator) pruneDeadLocalFeed(url string, result fetch.Result) {
	if o.feedList == nil {
		return
	}

	switch result.Classify() {
	case fetch.FailureDNS, fetch.FailureTransport, fetch.FailureHTTPStatus, fetch.FailureEmptyBody:
	default:
		return
	}

	if !o.feedList.Contains(url) {
		return
	}

	slog.Info("Removing dead feed from local list", "url", url)
	o.feedList.Remove(url)
}

// armSafetyTimer forces a terminal label if no delivery completes in time.
// The timer self-cancels on normal completion via disarmSafetyTimer; a stale
// timer firing after a new epoch is harmless because the guarded sink drops
// it.
func (o *Orchestrator) armSafetyTimer(guarded *GuardedSink) {
	o.timerMu.Lock()
	defer o.timerMu.Unlock()

	if o.safety != nil {
		o.safety.Stop()
	}
	o.safety = time.AfterFunc(o.safetyTimeout, func() {
		guarded.SetLabel("Could not load feed")
	})
}

func (o *Orchestrator) disarmSafetyTimer(epoch uint64) {
	o.timerMu.Lock()
	defer o.timerMu.Unlock()

	if !o.guard.IsCurrent(epoch) {
		return
	}
	if o.safety != nil {
		o.safety.Stop()
		o.safety = nil
	}
}

// failureLabel maps a failed fetch to a user-visible message differentiated
// by the most specific detectable cause.
func failureLabel(result fetch.Result) string {
	switch result.Classify() {
	case fetch.FailureInvalidURL:
		return "Invalid feed address"
	case fetch.FailureDNS:
		return "Could not resolve feed host"
	case fetch.FailureTransport:
		return "Network error while loading feed"
	case fetch.FailureHTTPStatus:
		return fmt.Sprintf("Feed server returned HTTP %d", result.StatusCode)
	case fetch.FailureEmptyBody:
		return "Feed returned an empty response"
	default:
		return "Could not load feed"
	}
}
