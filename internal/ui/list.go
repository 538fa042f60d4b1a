package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"tracklist/internal/formatter"
	"tracklist/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = trackItem{}
)

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist *models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name() }
func (i playlistItem) Title() string       { return i.playlist.Name() }
func (i playlistItem) Description() string {
	desc := formatter.TrackCountLabel(i.playlist.TrackCount())
	if i.playlist.Description() != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.playlist.Description())
	}
	return desc
}

// trackItem wraps [models.Track] to implement [list.Item]. selected controls
// the checkmark prefix and is refreshed whenever the selection changes.
type trackItem struct {
	track    models.Track
	selected bool
}

func (i trackItem) FilterValue() string { return i.track.Title }
func (i trackItem) Title() string {
	if i.selected {
		return fmt.Sprintf("✓ %s", i.track.Title)
	}
	return i.track.Title
}
func (i trackItem) Description() string {
	desc := i.track.Artist
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	if i.track.Duration > 0 {
		desc = fmt.Sprintf("%s • %s", desc, formatter.FormatDuration(i.track.Duration))
	}
	return desc
}
