package model

import (
	"time"
)

// Playlist is an ordered selection set of media items
type Playlist struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	URL       string       `json:"url"`
	Items     []*MediaItem `json:"-"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewPlaylist creates an empty playlist for the given URL
func NewPlaylist(url string) *Playlist {
	return &Playlist{
		URL:       url,
		Items:     make([]*MediaItem, 0),
		CreatedAt: time.Now(),
	}
}

// Add appends an item
func (p *Playlist) Add(item *MediaItem) {
	p.Items = append(p.Items, item)
}

// Len returns the number of items
func (p *Playlist) Len() int {
	return len(p.Items)
}

// SelectAll selects or deselects every item
func (p *Playlist) SelectAll(selected bool) error {
	for _, item := range p.Items {
		if err := item.SetSelected(selected); err != nil {
			return err
		}
	}
	return nil
}

// Toggle flips the selection of the item at index i
func (p *Playlist) Toggle(i int) error {
	if i < 0 || i >= len(p.Items) {
		return nil
	}
	item := p.Items[i]
	return item.SetSelected(!item.Selected())
}

// Selected returns the selected items in playlist order
func (p *Playlist) Selected() []*MediaItem {
	var selected []*MediaItem
	for _, item := range p.Items {
		if item.Selected() {
			selected = append(selected, item)
		}
	}
	return selected
}

// SelectedCount returns the number of selected items
func (p *Playlist) SelectedCount() int {
	n := 0
	for _, item := range p.Items {
		if item.Selected() {
			n++
		}
	}
	return n
}

// Failed returns the items whose last run failed
func (p *Playlist) Failed() []*MediaItem {
	var failed []*MediaItem
	for _, item := range p.Items {
		if item.State() == StateFailed {
			failed = append(failed, item)
		}
	}
	return failed
}

// SelectFailed narrows the selection to the failed subset and resets those
// items to Pending. It returns the number of items selected.
func (p *Playlist) SelectFailed() (int, error) {
	n := 0
	for _, item := range p.Items {
		if item.State() != StateFailed {
			if err := item.SetSelected(false); err != nil {
				return 0, err
			}
			continue
		}
		if err := item.Reset(); err != nil {
			return 0, err
		}
		if err := item.SetSelected(true); err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}

// ResetAll returns every finished item to Pending
func (p *Playlist) ResetAll() error {
	for _, item := range p.Items {
		if err := item.Reset(); err != nil {
			return err
		}
	}
	return nil
}

// Summarize counts the terminal states of the selected items
func (p *Playlist) Summarize() Summary {
	var s Summary
	for _, item := range p.Items {
		snap := item.Snapshot()
		if !snap.Selected {
			continue
		}
		s.Total++
		s.Add(snap.State)
	}
	return s
}
