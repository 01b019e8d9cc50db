package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"feedpipe/app/fetch"
)

type stubFetcher struct {
	mu      sync.Mutex
	results map[string]fetch.Result
	gates   map[string]chan struct{}
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		results: make(map[string]fetch.Result),
		gates:   make(map[string]chan struct{}),
	}
}

func (s *stubFetcher) set(url string, result fetch.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[url] = result
}

// gate makes Fetch for url block until the returned channel is closed.
func (s *stubFetcher) gate(url string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{})
	s.gates[url] = ch
	return ch
}

func (s *stubFetcher) Fetch(_ context.Context, rawURL string) fetch.Result {
	s.mu.Lock()
	gate := s.gates[rawURL]
	result := s.results[rawURL]
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return result
}

type stubFeedList struct {
	mu      sync.Mutex
	urls    map[string]bool
	removed []string
}

func (l *stubFeedList) Contains(url string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.urls[url]
}

func (l *stubFeedList) Remove(url string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.urls, url)
	l.removed = append(l.removed, url)
}

func feedBody(n int) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>Stub Channel</title>`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<item><title>Post %d</title><link>https://stub.example/%d</link></item>`, i, i)
	}
	b.WriteString(`</channel></rss>`)
	return []byte(b.String())
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func newTestOrchestrator(t *testing.T, client Fetcher, feedList LocalFeedList) *Orchestrator {
	t.Helper()
	loop := startLoop(t)
	return NewOrchestrator(client, nil, loop, feedList, nil, false, 30*time.Second)
}

func TestFetchDeliversItemsAndTitle(t *testing.T) {
	client := newStubFetcher()
	client.set("https://stub.example/rss", fetch.Result{StatusCode: 200, Body: feedBody(3)})

	rec := &recordingSink{}
	orch := newTestOrchestrator(t, client, nil)

	orch.Fetch(Request{
		SourceURL:  "https://stub.example/rss",
		SourceName: "Stub",
		CategoryID: 1,
		Sink:       rec,
	})

	waitFor(t, "channel title label", func() bool { return rec.lastLabel() == "Stub Channel" })

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.clears != 1 {
		t.Errorf("Expected 1 clear, got %d", rec.clears)
	}
	if len(rec.items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(rec.items))
	}
	for i, item := range rec.items {
		if item.title != fmt.Sprintf("Post %d", i) {
			t.Errorf("Item %d out of order: '%s'", i, item.title)
		}
		if item.categoryID != 1 || item.sourceName != "Stub" {
			t.Errorf("Item %d lost request context: %+v", i, item)
		}
	}
}

func TestFetchSearchQueryFiltersItems(t *testing.T) {
	client := newStubFetcher()
	client.set("https://stub.example/rss", fetch.Result{StatusCode: 200, Body: feedBody(10)})

	rec := &recordingSink{}
	orch := newTestOrchestrator(t, client, nil)

	orch.Fetch(Request{
		SourceURL:   "https://stub.example/rss",
		SourceName:  "Stub",
		SearchQuery: "post 7",
		Sink:        rec,
	})

	waitFor(t, "filtered delivery", func() bool { return rec.lastLabel() == "Stub Channel" })

	if rec.itemCount() != 1 {
		t.Fatalf("Expected 1 matching item, got %d", rec.itemCount())
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.items[0].title != "Post 7" {
		t.Errorf("Expected 'Post 7', got '%s'", rec.items[0].title)
	}
}

func TestFetchAggregateCapsAndBatches(t *testing.T) {
	client := newStubFetcher()
	client.set("https://stub.example/rss", fetch.Result{StatusCode: 200, Body: feedBody(50)})

	rec := &recordingSink{}
	orch := newTestOrchestrator(t, client, nil)

	orch.Fetch(Request{
		SourceURL:  "https://stub.example/rss",
		SourceName: "Stub",
		Aggregate:  true,
		Sink:       rec,
	})

	waitFor(t, "capped batched delivery", func() bool { return rec.itemCount() == 12 })

	// Give the batcher a chance to (incorrectly) deliver more.
	time.Sleep(2 * batchInterval)
	if rec.itemCount() != 12 {
		t.Errorf("Expected exactly 12 items for a high-volume category, got %d", rec.itemCount())
	}
}

func TestFetchFailureLabels(t *testing.T) {
	tests := []struct {
		name   string
		result fetch.Result
		want   string
	}{
		{"invalid url", fetch.Result{ErrorMessage: "invalid URL: ://nope"}, "Invalid feed address"},
		{"dns", fetch.Result{ErrorMessage: "DNS error: no such host"}, "Could not resolve feed host"},
		{"transport", fetch.Result{ErrorMessage: "network error: connection refused"}, "Network error while loading feed"},
		{"http status", fetch.Result{StatusCode: 503, Body: []byte("x")}, "Feed server returned HTTP 503"},
		{"empty body", fetch.Result{StatusCode: 200}, "Feed returned an empty response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newStubFetcher()
			client.set("https://stub.example/rss", tt.result)

			rec := &recordingSink{}
			orch := newTestOrchestrator(t, client, nil)

			orch.Fetch(Request{SourceURL: "https://stub.example/rss", SourceName: "Stub", Sink: rec})

			waitFor(t, "failure label", func() bool { return rec.lastLabel() == tt.want })

			if rec.itemCount() != 0 {
				t.Errorf("Expected no items on failure, got %d", rec.itemCount())
			}
		})
	}
}

func TestFetchPrunesDeadLocalFeed(t *testing.T) {
	client := newStubFetcher()
	client.set("https://dead.example/rss", fetch.Result{ErrorMessage: "DNS error: no such host"})

	list := &stubFeedList{urls: map[string]bool{"https://dead.example/rss": true}}
	rec := &recordingSink{}
	orch := newTestOrchestrator(t, client, list)

	orch.Fetch(Request{SourceURL: "https://dead.example/rss", SourceName: "Dead", Sink: rec})

	waitFor(t, "dead feed pruning", func() bool {
		list.mu.Lock()
		defer list.mu.Unlock()
		return len(list.removed) == 1
	})
}

func TestFetchKeepsUnregisteredFeedOnFailure(t *testing.T) {
	client := newStubFetcher()
	client.set("https://dead.example/rss", fetch.Result{ErrorMessage: "DNS error: no such host"})

	list := &stubFeedList{urls: map[string]bool{}}
	rec := &recordingSink{}
	orch := newTestOrchestrator(t, client, list)

	orch.Fetch(Request{SourceURL: "https://dead.example/rss", SourceName: "Dead", Sink: rec})

	waitFor(t, "failure label", func() bool { return rec.lastLabel() == "Could not resolve feed host" })

	list.mu.Lock()
	defer list.mu.Unlock()
	if len(list.removed) != 0 {
		t.Errorf("Expected no pruning for unregistered URL, got %v", list.removed)
	}
}

func TestFetchSupersededResultsDropped(t *testing.T) {
	client := newStubFetcher()
	client.set("https://slow.example/rss", fetch.Result{StatusCode: 200, Body: feedBody(3)})
	client.set("https://fast.example/rss", fetch.Result{StatusCode: 200, Body: feedBody(1)})
	release := client.gate("https://slow.example/rss")

	slowRec := &recordingSink{}
	fastRec := &recordingSink{}
	orch := newTestOrchestrator(t, client, nil)

	orch.Fetch(Request{SourceURL: "https://slow.example/rss", SourceName: "Slow", Sink: slowRec})
	orch.Fetch(Request{SourceURL: "https://fast.example/rss", SourceName: "Fast", Sink: fastRec})

	waitFor(t, "fast delivery", func() bool { return fastRec.lastLabel() == "Stub Channel" })

	// Let the superseded fetch finish; none of its effects may land.
	close(release)
	time.Sleep(200 * time.Millisecond)

	slowRec.mu.Lock()
	defer slowRec.mu.Unlock()
	if len(slowRec.items) != 0 || slowRec.clears != 0 {
		t.Errorf("Superseded fetch mutated its view: %d items, %d clears",
			len(slowRec.items), slowRec.clears)
	}
	// The loading label predates the supersession and is allowed.
	for _, label := range slowRec.labels {
		if label == "Stub Channel" {
			t.Error("Superseded fetch delivered its completion label")
		}
	}
}

func TestFetchSafetyTimerForcesTerminalLabel(t *testing.T) {
	client := newStubFetcher()
	client.set("https://hung.example/rss", fetch.Result{StatusCode: 200, Body: feedBody(1)})
	client.gate("https://hung.example/rss")

	rec := &recordingSink{}
	loop := startLoop(t)
	orch := NewOrchestrator(client, nil, loop, nil, nil, false, 50*time.Millisecond)

	orch.Fetch(Request{SourceURL: "https://hung.example/rss", SourceName: "Hung", Sink: rec})

	waitFor(t, "safety timer label", func() bool { return rec.lastLabel() == "Could not load feed" })
}
