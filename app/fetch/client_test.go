package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "Test Agent" {
			t.Errorf("Expected User-Agent 'Test Agent', got '%s'", r.Header.Get("User-Agent"))
		}
		if r.Header.Get("Accept") == "" {
			t.Error("Expected Accept header to be set")
		}
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	client := NewClient("Test Agent", 5)
	result := client.Fetch(context.Background(), server.URL)

	if !result.OK() {
		t.Fatalf("Expected OK result, got status=%d error=%q", result.StatusCode, result.ErrorMessage)
	}
	if string(result.Body) != "hello" {
		t.Errorf("Expected body 'hello', got '%s'", result.Body)
	}
	if result.Classify() != FailureNone {
		t.Errorf("Expected FailureNone, got %v", result.Classify())
	}
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient("Test Agent", 5)
	result := client.Fetch(context.Background(), server.URL)

	if result.OK() {
		t.Fatal("Expected failure for 404 response")
	}
	if result.Classify() != FailureHTTPStatus {
		t.Errorf("Expected FailureHTTPStatus, got %v", result.Classify())
	}
	if result.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", result.StatusCode)
	}
}

func TestFetchEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient("Test Agent", 5)
	result := client.Fetch(context.Background(), server.URL)

	if result.OK() {
		t.Fatal("Expected failure for empty body")
	}
	if result.Classify() != FailureEmptyBody {
		t.Errorf("Expected FailureEmptyBody, got %v", result.Classify())
	}
}

func TestFetchInvalidURL(t *testing.T) {
	client := NewClient("Test Agent", 5)

	tests := []string{
		"not a url at all",
		"ftp://example.com/feed.xml",
		"",
	}

	for _, rawURL := range tests {
		result := client.Fetch(context.Background(), rawURL)
		if result.OK() {
			t.Errorf("Expected failure for URL %q", rawURL)
		}
		if result.Classify() != FailureInvalidURL {
			t.Errorf("Expected FailureInvalidURL for %q, got %v (%s)", rawURL, result.Classify(), result.ErrorMessage)
		}
	}
}

func TestFetchDNSError(t *testing.T) {
	client := NewClient("Test Agent", 2)
	result := client.Fetch(context.Background(), "http://nonexistent.invalid/feed.xml")

	if result.OK() {
		t.Fatal("Expected failure for unresolvable host")
	}
	class := result.Classify()
	if class != FailureDNS && class != FailureTransport {
		t.Errorf("Expected DNS or transport failure, got %v (%s)", class, result.ErrorMessage)
	}
}

func TestFetchLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.xml")
	if err := os.WriteFile(path, []byte("<rss/>"), 0644); err != nil {
		t.Fatal(err)
	}

	client := NewClient("Test Agent", 5)
	result := client.Fetch(context.Background(), "file://"+path)

	if !result.OK() {
		t.Fatalf("Expected OK result for local file, got %q", result.ErrorMessage)
	}
	if string(result.Body) != "<rss/>" {
		t.Errorf("Expected '<rss/>', got '%s'", result.Body)
	}
}

func TestFetchMissingLocalFile(t *testing.T) {
	client := NewClient("Test Agent", 5)
	result := client.Fetch(context.Background(), "file:///nonexistent/feed.xml")

	if result.OK() {
		t.Fatal("Expected failure for missing local file")
	}
	if result.Classify() != FailureTransport {
		t.Errorf("Expected FailureTransport, got %v", result.Classify())
	}
}
