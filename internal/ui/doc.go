// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a two-view library browser:
//  1. [PlaylistListView] : Browse playlists and open one
//  2. [TrackListView] : Page through tracks, select, and reorder
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// List mutations flow through a channel from the engine's bound list, so background prefetch shows up without blocking input.
//
// Keyboard navigation uses vim-style bindings (j/k, J/K, space, a/n, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
