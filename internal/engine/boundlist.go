package engine

import (
	"sync"

	"tracklist/internal/models"
)

// ListEventKind enumerates the mutations a BoundList can emit.
type ListEventKind int

const (
	ListReplaced ListEventKind = iota // Tracks holds the full new contents
	ListAppended                      // Tracks holds the appended tail
	ListMoved                         // From and To hold the move indices
)

// ListEvent describes one mutation of the bound list.
type ListEvent struct {
	Kind   ListEventKind
	Tracks []models.Track
	From   int
	To     int
}

// Listener receives bound list events on the dispatcher goroutine.
type Listener func(ListEvent)

// BoundList is the observable ordered sequence of materialized tracks exposed
// to the UI-binding layer. Mutations are restricted to replace, append, and
// move; there is no external splice. All mutations must happen on the
// dispatcher goroutine, reads are safe from anywhere.
type BoundList struct {
	mu        sync.RWMutex
	tracks    []models.Track
	listeners []Listener
}

// NewBoundList creates an empty BoundList.
func NewBoundList() *BoundList {
	return &BoundList{}
}

// Subscribe registers a listener for subsequent mutations.
func (b *BoundList) Subscribe(l Listener) {
	b.mu.Lock()
	b.listeners = append(b.listeners, l)
	b.mu.Unlock()
}

// Len returns the number of materialized tracks.
func (b *BoundList) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.tracks)
}

// Items returns a copy of the current contents.
func (b *BoundList) Items() []models.Track {
	b.mu.RLock()
	defer b.mu.RUnlock()
	items := make([]models.Track, len(b.tracks))
	copy(items, b.tracks)
	return items
}

// At returns the track at index i.
func (b *BoundList) At(i int) (models.Track, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i < 0 || i >= len(b.tracks) {
		return models.Track{}, false
	}
	return b.tracks[i], true
}

// IndexOf returns the index of the track with the given id, or -1.
func (b *BoundList) IndexOf(id string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for i, t := range b.tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Replace swaps the full contents of the list.
func (b *BoundList) Replace(tracks []models.Track) {
	b.mu.Lock()
	b.tracks = make([]models.Track, len(tracks))
	copy(b.tracks, tracks)
	contents := make([]models.Track, len(b.tracks))
	copy(contents, b.tracks)
	listeners := b.snapshotListeners()
	b.mu.Unlock()

	b.notify(listeners, ListEvent{Kind: ListReplaced, Tracks: contents})
}

// Append adds tracks to the end of the list.
func (b *BoundList) Append(tracks []models.Track) {
	if len(tracks) == 0 {
		return
	}

	b.mu.Lock()
	b.tracks = append(b.tracks, tracks...)
	tail := make([]models.Track, len(tracks))
	copy(tail, tracks)
	listeners := b.snapshotListeners()
	b.mu.Unlock()

	b.notify(listeners, ListEvent{Kind: ListAppended, Tracks: tail})
}

// Move relocates the track at index from to index to.
func (b *BoundList) Move(from, to int) bool {
	b.mu.Lock()
	if from < 0 || from >= len(b.tracks) || to < 0 || to >= len(b.tracks) || from == to {
		b.mu.Unlock()
		return false
	}

	track := b.tracks[from]
	b.tracks = append(b.tracks[:from], b.tracks[from+1:]...)
	rest := make([]models.Track, 0, len(b.tracks)+1)
	rest = append(rest, b.tracks[:to]...)
	rest = append(rest, track)
	rest = append(rest, b.tracks[to:]...)
	b.tracks = rest
	listeners := b.snapshotListeners()
	b.mu.Unlock()

	b.notify(listeners, ListEvent{Kind: ListMoved, From: from, To: to})
	return true
}

// snapshotListeners must be called with b.mu held.
func (b *BoundList) snapshotListeners() []Listener {
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	return listeners
}

func (b *BoundList) notify(listeners []Listener, ev ListEvent) {
	for _, l := range listeners {
		l(ev)
	}
}
