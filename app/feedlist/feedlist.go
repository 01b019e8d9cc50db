package feedlist

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// List is the locally registered feed-URL list: a plaintext file with one
// URL per line. Reads tolerate a missing file; removal is a best-effort
// read-modify-write that never fails the caller.
type List struct {
	path string
	mu   sync.Mutex
}

func NewList(path string) *List {
	return &List{path: path}
}

// Read returns all registered URLs, skipping blank lines.
func (l *List) Read() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.readLocked()
}

// Contains reports whether url is registered locally.
func (l *List) Contains(url string) bool {
	urls, err := l.Read()
	if err != nil {
		return false
	}
	for _, u := range urls {
		if u == url {
			return true
		}
	}
	return false
}

// Remove deletes url from the list via read-modify-write. Used to prune dead
// feeds; errors are logged and swallowed since pruning is best-effort.
func (l *List) Remove(url string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	urls, err := l.readLocked()
	if err != nil {
		slog.Warn("Failed to read feed list for pruning", "path", l.path, "error", err)
		return
	}

	kept := make([]string, 0, len(urls))
	removed := false
	for _, u := range urls {
		if u == url {
			removed = true
			continue
		}
		kept = append(kept, u)
	}

	if !removed {
		return
	}

	var sb strings.Builder
	for _, u := range kept {
		sb.WriteString(u)
		sb.WriteByte('\n')
	}

	if err := os.WriteFile(l.path, []byte(sb.String()), 0644); err != nil {
		slog.Warn("Failed to prune feed list", "path", l.path, "url", url, "error", err)
		return
	}

	slog.Info("Pruned dead feed URL from local list", "url", url)
}

func (l *List) readLocked() ([]string, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read feed list: %w", err)
	}

	var urls []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		urls = append(urls, line)
	}

	return urls, nil
}
