package models

import "context"

// TrackSource is the contract the list engine requires from storage.
//
// FetchPage and FetchAllIDs must apply the same sort and filter for a given
// Query so that materialized pages are always a subsequence of the full id
// list. Persistence calls are fire-and-forget from the engine's perspective:
// the in-memory order stays correct regardless of persistence outcome.
type TrackSource interface {
	// FetchPage retrieves one page of materialized tracks. Page numbers start at 1.
	FetchPage(ctx context.Context, query Query, pageNumber, pageSize int) (*Page, error)

	// FetchAllIDs retrieves the complete ordered id sequence for the view,
	// independent of how many tracks have been materialized.
	FetchAllIDs(ctx context.Context, query Query) ([]string, error)

	// PersistSingleMove writes one track's new fractional position.
	// Returns false when the track no longer exists in the playlist.
	PersistSingleMove(ctx context.Context, playlistID, trackID string, position float64) (bool, error)

	// PersistFullOrder rewrites every track's position as a dense integer
	// sequence (1, 2, 3, ...) following orderedIDs, in one batch.
	PersistFullOrder(ctx context.Context, playlistID string, orderedIDs []string) error
}
