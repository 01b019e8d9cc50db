package api

import (
	"sync"

	"feedpipe/app/pipeline"
)

// Item is one article as exposed to API consumers.
type Item struct {
	Title      string `json:"title"`
	Link       string `json:"link"`
	Thumbnail  string `json:"thumbnail,omitempty"`
	SourceName string `json:"source_name"`
}

// View is the presentation-side state for one category. It implements the
// pipeline sink contract; the pipeline loop is its only writer, HTTP handlers
// read snapshots.
type View struct {
	mu    sync.Mutex
	label string
	items []Item
}

var _ pipeline.Sink = (*View)(nil)

func (v *View) SetLabel(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.label = text
}

func (v *View) ClearItems() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.items = v.items[:0]
}

func (v *View) AddItem(title, link, thumbnail string, _ int, sourceName string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.items = append(v.items, Item{
		Title:      title,
		Link:       link,
		Thumbnail:  thumbnail,
		SourceName: sourceName,
	})
}

// ApplyEnrichment upgrades an already-delivered item in place, keyed by link.
// Unknown links are dropped: the item was filtered out or the view moved on.
func (v *View) ApplyEnrichment(link, imageURL, title string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.items {
		if v.items[i].Link != link {
			continue
		}
		v.items[i].Thumbnail = imageURL
		if title != "" {
			v.items[i].Title = title
		}
		return
	}
}

// Snapshot returns a copy of the view safe to serialize outside the lock.
func (v *View) Snapshot() (string, []Item) {
	v.mu.Lock()
	defer v.mu.Unlock()
	items := make([]Item, len(v.items))
	copy(items, v.items)
	return v.label, items
}

// ViewSet holds one lazily-created view per category.
type ViewSet struct {
	mu    sync.Mutex
	views map[int]*View
}

func NewViewSet() *ViewSet {
	return &ViewSet{views: make(map[int]*View)}
}

func (s *ViewSet) Get(categoryID int) *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	view, ok := s.views[categoryID]
	if !ok {
		view = &View{}
		s.views[categoryID] = view
	}
	return view
}
