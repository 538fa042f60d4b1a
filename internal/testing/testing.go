// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tracklist/internal/models"
)

// MoveRecord captures one PersistSingleMove call.
type MoveRecord struct {
	PlaylistID string
	TrackID    string
	Position   float64
}

// FakeTrackSource is a scripted in-memory [models.TrackSource].
//
// Tracks are keyed by playlist id; FetchPage slices the playlist's track
// slice and FetchAllIDs returns its ids in the same order. Persist calls are
// recorded for assertions rather than applied.
type FakeTrackSource struct {
	mu         sync.Mutex
	playlists  map[string][]models.Track
	pageDelay  time.Duration
	pageErr    error
	idsErr     error
	moveErr    error
	fullErr    error
	pageCalls  []int
	idCalls    int
	moves      []MoveRecord
	fullOrders map[string][][]string
}

// NewFakeTrackSource creates an empty fake source.
func NewFakeTrackSource() *FakeTrackSource {
	return &FakeTrackSource{
		playlists:  make(map[string][]models.Track),
		fullOrders: make(map[string][][]string),
	}
}

// SetTracks installs the ordered track list for a playlist.
func (f *FakeTrackSource) SetTracks(playlistID string, tracks []models.Track) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := make([]models.Track, len(tracks))
	copy(copied, tracks)
	f.playlists[playlistID] = copied
}

// SetPageDelay makes every FetchPage sleep before responding.
func (f *FakeTrackSource) SetPageDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageDelay = d
}

// FailPages makes FetchPage return err.
func (f *FakeTrackSource) FailPages(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageErr = err
}

// FailIDs makes FetchAllIDs return err.
func (f *FakeTrackSource) FailIDs(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.idsErr = err
}

// FailMoves makes PersistSingleMove return err.
func (f *FakeTrackSource) FailMoves(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moveErr = err
}

// FailFullOrders makes PersistFullOrder return err.
func (f *FakeTrackSource) FailFullOrders(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fullErr = err
}

// FetchPage implements [models.TrackSource].
func (f *FakeTrackSource) FetchPage(ctx context.Context, query models.Query, pageNumber, pageSize int) (*models.Page, error) {
	f.mu.Lock()
	delay := f.pageDelay
	pageErr := f.pageErr
	tracks := f.playlists[query.PlaylistID]
	f.pageCalls = append(f.pageCalls, pageNumber)
	f.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if pageErr != nil {
		return nil, pageErr
	}

	total := len(tracks)
	start := (pageNumber - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	page := make([]models.Track, end-start)
	copy(page, tracks[start:end])

	return &models.Page{
		Tracks:      page,
		PageNumber:  pageNumber,
		TotalCount:  total,
		HasNextPage: end < total,
	}, nil
}

// FetchAllIDs implements [models.TrackSource].
func (f *FakeTrackSource) FetchAllIDs(ctx context.Context, query models.Query) ([]string, error) {
	f.mu.Lock()
	idsErr := f.idsErr
	tracks := f.playlists[query.PlaylistID]
	f.idCalls++
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if idsErr != nil {
		return nil, idsErr
	}

	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}
	return ids, nil
}

// PersistSingleMove implements [models.TrackSource].
func (f *FakeTrackSource) PersistSingleMove(ctx context.Context, playlistID, trackID string, position float64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.moveErr != nil {
		return false, f.moveErr
	}

	f.moves = append(f.moves, MoveRecord{PlaylistID: playlistID, TrackID: trackID, Position: position})

	for _, t := range f.playlists[playlistID] {
		if t.ID == trackID {
			return true, nil
		}
	}
	return false, nil
}

// PersistFullOrder implements [models.TrackSource].
func (f *FakeTrackSource) PersistFullOrder(ctx context.Context, playlistID string, orderedIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fullErr != nil {
		return f.fullErr
	}

	copied := make([]string, len(orderedIDs))
	copy(copied, orderedIDs)
	f.fullOrders[playlistID] = append(f.fullOrders[playlistID], copied)
	return nil
}

// PageCalls returns the page numbers requested so far, in call order.
func (f *FakeTrackSource) PageCalls() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := make([]int, len(f.pageCalls))
	copy(calls, f.pageCalls)
	return calls
}

// IDCalls returns the number of FetchAllIDs calls so far.
func (f *FakeTrackSource) IDCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.idCalls
}

// Moves returns the recorded single-move persists, in call order.
func (f *FakeTrackSource) Moves() []MoveRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	moves := make([]MoveRecord, len(f.moves))
	copy(moves, f.moves)
	return moves
}

// FullOrders returns the recorded batch order persists for a playlist.
func (f *FakeTrackSource) FullOrders(playlistID string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	orders := make([][]string, len(f.fullOrders[playlistID]))
	copy(orders, f.fullOrders[playlistID])
	return orders
}

// ErrScripted is a sentinel for scripted failures in tests.
var ErrScripted = errors.New("scripted failure")

// SeedTracks builds n tracks with ids t1..tn and dense integer positions.
func SeedTracks(n int) []models.Track {
	tracks := make([]models.Track, n)
	for i := range tracks {
		id := fmt.Sprintf("t%d", i+1)
		tracks[i] = models.Track{
			ID:       id,
			Title:    "Track " + id,
			Artist:   "Artist",
			Duration: 180,
			Position: float64(i + 1),
		}
	}
	return tracks
}
