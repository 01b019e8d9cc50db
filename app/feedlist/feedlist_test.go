package feedlist

import (
	"os"
	"path/filepath"
	"testing"
)

func writeList(t *testing.T, content string) *List {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feeds.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return NewList(path)
}

func TestReadSkipsBlankLines(t *testing.T) {
	list := writeList(t, "https://a.example/feed\n\n  \nhttps://b.example/feed\n")

	urls, err := list.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 2 {
		t.Fatalf("Expected 2 URLs, got %d", len(urls))
	}
	if urls[0] != "https://a.example/feed" || urls[1] != "https://b.example/feed" {
		t.Errorf("Unexpected URLs: %v", urls)
	}
}

func TestReadMissingFile(t *testing.T) {
	list := NewList(filepath.Join(t.TempDir(), "missing.txt"))

	urls, err := list.Read()
	if err != nil {
		t.Fatalf("Missing file should not error, got %v", err)
	}
	if urls != nil {
		t.Errorf("Expected nil URLs, got %v", urls)
	}
}

func TestContains(t *testing.T) {
	list := writeList(t, "https://a.example/feed\nhttps://b.example/feed\n")

	if !list.Contains("https://a.example/feed") {
		t.Error("Expected list to contain registered URL")
	}
	if list.Contains("https://c.example/feed") {
		t.Error("Expected list to not contain unregistered URL")
	}
}

func TestRemove(t *testing.T) {
	list := writeList(t, "https://a.example/feed\nhttps://b.example/feed\nhttps://c.example/feed\n")

	list.Remove("https://b.example/feed")

	urls, err := list.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 2 {
		t.Fatalf("Expected 2 URLs after removal, got %d", len(urls))
	}
	if urls[0] != "https://a.example/feed" || urls[1] != "https://c.example/feed" {
		t.Errorf("Unexpected URLs after removal: %v", urls)
	}
}

func TestRemoveUnknownURLLeavesFileUntouched(t *testing.T) {
	list := writeList(t, "https://a.example/feed\n")

	list.Remove("https://unknown.example/feed")

	urls, err := list.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 1 || urls[0] != "https://a.example/feed" {
		t.Errorf("Unexpected URLs: %v", urls)
	}
}

func TestRemoveMissingFileIsSilent(t *testing.T) {
	list := NewList(filepath.Join(t.TempDir(), "missing.txt"))
	// Must not panic or create the file.
	list.Remove("https://a.example/feed")

	if _, err := os.Stat(list.path); !os.IsNotExist(err) {
		t.Error("Remove should not create a missing feed list")
	}
}
