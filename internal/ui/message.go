package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"tracklist/internal/engine"
	"tracklist/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsFetched MsgKind = iota
	MsgListChanged
	MsgRefreshDone
)

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []*models.Playlist, err error) Msg {
	return Msg{
		kind: MsgPlaylistsFetched,
		data: struct {
			playlists []*models.Playlist
			err       error
		}{playlists, err},
	}
}

// listChangedMsg is the constructor for [MsgListChanged]
func listChangedMsg(ev engine.ListEvent) Msg {
	return Msg{kind: MsgListChanged, data: ev}
}

// refreshDoneMsg is the constructor for [MsgRefreshDone]
func refreshDoneMsg(err error) Msg {
	return Msg{kind: MsgRefreshDone, data: err}
}
