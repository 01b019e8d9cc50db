package enrich

import (
	"context"
	"testing"
	"time"

	"feedpipe/app/fetch"
)

type stubFetcher struct {
	result fetch.Result
}

func (s *stubFetcher) Fetch(_ context.Context, _ string) fetch.Result {
	return s.result
}

func pageResult(body string) fetch.Result {
	return fetch.Result{StatusCode: 200, Body: []byte(body)}
}

func awaitDelivery(t *testing.T, deliveries chan [2]string) [2]string {
	t.Helper()
	select {
	case d := <-deliveries:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("Expected a delivery")
		return [2]string{}
	}
}

func TestEnrichDeliversOpenGraphImageAndTitle(t *testing.T) {
	client := &stubFetcher{result: pageResult(`<html><head>
		<meta property="og:title" content="A Better Title"/>
		<meta property="og:image" content="http://site.example/images/hero.jpg"/>
	</head></html>`)}

	enricher := NewEnricher(client, 6, false)
	deliveries := make(chan [2]string, 1)

	enricher.Enrich("https://site.example/post", func(imageURL, title string) {
		deliveries <- [2]string{imageURL, title}
	}, 1, "Site")

	got := awaitDelivery(t, deliveries)
	if got[0] != "https://site.example/images/hero.jpg" {
		t.Errorf("Expected https-coerced og:image, got '%s'", got[0])
	}
	if got[1] != "A Better Title" {
		t.Errorf("Expected og:title, got '%s'", got[1])
	}
}

func TestEnrichSilentOnFailure(t *testing.T) {
	for name, result := range map[string]fetch.Result{
		"http error":  {StatusCode: 404, Body: []byte("not found")},
		"empty body":  {StatusCode: 200},
		"no og image": pageResult("<html><body>plain page</body></html>"),
	} {
		t.Run(name, func(t *testing.T) {
			enricher := NewEnricher(&stubFetcher{result: result}, 6, false)

			delivered := make(chan struct{}, 1)
			enricher.Enrich("https://site.example/post", func(string, string) {
				delivered <- struct{}{}
			}, 1, "Site")

			select {
			case <-delivered:
				t.Error("Expected no delivery on failure")
			case <-time.After(100 * time.Millisecond):
			}
		})
	}
}

func TestEnrichCDNPrefersJSONLD(t *testing.T) {
	client := &stubFetcher{result: pageResult(`<html><head>
		<script type="application/ld+json">
		{"@type": "BlogPosting", "image": {"url": "https://1.bp.blogspot.com/abc/s320/cover.jpg"}}
		</script>
	</head><body>
		<img src="https://1.bp.blogspot.com/abc/s72-c/inline-photo.jpg"/>
	</body></html>`)}

	enricher := NewEnricher(client, 6, true)
	deliveries := make(chan [2]string, 1)

	enricher.Enrich("https://blog.blogspot.com/2024/01/post.html", func(imageURL, title string) {
		deliveries <- [2]string{imageURL, title}
	}, 1, "Blog")

	got := awaitDelivery(t, deliveries)
	if got[0] != "https://1.bp.blogspot.com/abc/s1600/cover.jpg" {
		t.Errorf("Expected normalized JSON-LD image, got '%s'", got[0])
	}
}

func TestEnrichCDNFallsBackToHostScan(t *testing.T) {
	client := &stubFetcher{result: pageResult(`<html><body>
		<p>background: url(https://blogger.googleusercontent.com/img/a/photo=s320)</p>
	</body></html>`)}

	enricher := NewEnricher(client, 6, true)
	deliveries := make(chan [2]string, 1)

	enricher.Enrich("https://blog.blogspot.com/post.html", func(imageURL, title string) {
		deliveries <- [2]string{imageURL, title}
	}, 1, "Blog")

	got := awaitDelivery(t, deliveries)
	if got[0] != "https://blogger.googleusercontent.com/img/a/photo=s1600" {
		t.Errorf("Expected normalized host-scan image, got '%s'", got[0])
	}
}

func TestEnrichReschedulesWhenSaturated(t *testing.T) {
	client := &stubFetcher{result: pageResult(`<html><head>
		<meta property="og:image" content="https://site.example/images/hero.jpg"/>
	</head></html>`)}

	enricher := NewEnricher(client, 1, false)

	// Hold the only slot so the first Enrich call must defer itself.
	if !enricher.throttle.TryAcquire() {
		t.Fatal("Expected to hold the only slot")
	}

	deliveries := make(chan [2]string, 1)
	enricher.Enrich("https://site.example/post", func(imageURL, title string) {
		deliveries <- [2]string{imageURL, title}
	}, 1, "Site")

	select {
	case <-deliveries:
		t.Fatal("Expected no delivery while throttle is saturated")
	case <-time.After(50 * time.Millisecond):
	}

	enricher.throttle.Release()
	awaitDelivery(t, deliveries)
}

func TestExtractJSONLDImageShapes(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"plain string",
			`<script type="application/ld+json">{"image": "https://cdn.example/a.jpg"}</script>`,
			"https://cdn.example/a.jpg",
		},
		{
			"object with url",
			`<script type="application/ld+json">{"image": {"url": "https://cdn.example/b.jpg"}}</script>`,
			"https://cdn.example/b.jpg",
		},
		{
			"array of strings",
			`<script type="application/ld+json">{"image": ["https://cdn.example/c.jpg", "https://cdn.example/d.jpg"]}</script>`,
			"https://cdn.example/c.jpg",
		},
		{
			"top-level array",
			`<script type="application/ld+json">[{"name": "x"}, {"image": "https://cdn.example/e.jpg"}]</script>`,
			"https://cdn.example/e.jpg",
		},
		{
			"malformed block skipped",
			`<script type="application/ld+json">{broken</script>
			 <script type="application/ld+json">{"image": "https://cdn.example/f.jpg"}</script>`,
			"https://cdn.example/f.jpg",
		},
		{"no image field", `<script type="application/ld+json">{"name": "x"}</script>`, ""},
		{"no block", `<html><body/></html>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSONLDImage(tt.html); got != tt.want {
				t.Errorf("extractJSONLDImage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractMetaImageAttributeOrder(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"property first",
			`<meta property="og:image" content="https://x.example/a.jpg">`,
			"https://x.example/a.jpg",
		},
		{
			"content first",
			`<meta content="https://x.example/b.jpg" property="og:image">`,
			"https://x.example/b.jpg",
		},
		{
			"twitter name",
			`<meta name="twitter:image" content="https://x.example/c.jpg">`,
			"https://x.example/c.jpg",
		},
		{"absent", `<meta name="description" content="words">`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractMetaImage(tt.html); got != tt.want {
				t.Errorf("extractMetaImage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCoerceHTTPS(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"//cdn.example/a.jpg", "https://cdn.example/a.jpg"},
		{"http://cdn.example/a.jpg", "https://cdn.example/a.jpg"},
		{"https://cdn.example/a.jpg", "https://cdn.example/a.jpg"},
	}

	for _, tt := range tests {
		if got := coerceHTTPS(tt.input); got != tt.want {
			t.Errorf("coerceHTTPS(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
