package models

import "time"

// Track represents a single song row in a playlist view.
//
// Position is a fractional sort key: inserting a track between two neighbors
// assigns the midpoint of their positions, so a single move never renumbers
// the rest of the playlist. Renormalization resets positions to dense
// integers when neighboring keys collapse below float64 precision.
type Track struct {
	ID        string
	Title     string
	Artist    string
	Album     string
	Duration  int // Duration in seconds
	ISRC      string
	Position  float64
	CreatedAt time.Time
}

// SortField enumerates the supported track sort orders.
type SortField string

const (
	SortByPosition SortField = "position"
	SortByTitle    SortField = "title"
	SortByArtist   SortField = "artist"
	SortByAdded    SortField = "added"
)

// Query identifies one view of a playlist: which playlist, in which order,
// filtered by which search text. A new Query starts a new list generation.
type Query struct {
	PlaylistID string
	Sort       SortField
	Descending bool
	Search     string
}

// Page is one materialized page of tracks plus the paging cursor data the
// engine needs to decide whether to keep prefetching.
type Page struct {
	Tracks      []Track
	PageNumber  int
	TotalCount  int
	HasNextPage bool
}
