package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"tracklist/internal/engine"
	"tracklist/internal/models"
	"tracklist/internal/repositories"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	TrackListView
)

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	playlists  *repositories.PlaylistRepository
	controller *engine.Controller
	view       ViewState
	width      int
	height     int

	playlistList list.Model
	trackList    list.Model
	current      *models.Playlist

	events chan engine.ListEvent
	err    error
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model bound to the given controller. The bound
// list subscription is installed here so prefetched pages surface as messages.
func NewModel(ctx context.Context, playlists *repositories.PlaylistRepository, controller *engine.Controller) *Model {
	m := &Model{
		ctx:        ctx,
		playlists:  playlists,
		controller: controller,
		view:       PlaylistListView,
		events:     make(chan engine.ListEvent, 64),
		help:       help.New(),
		keys:       newKeyMap(),
	}

	// The track view rebuilds from a fresh snapshot on every wakeup, so a
	// dropped event is coalesced into the next one rather than lost state.
	controller.List().Subscribe(func(ev engine.ListEvent) {
		select {
		case m.events <- ev:
		default:
		}
	})

	return m
}

// Init loads the playlist overview and starts the list event pump.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchPlaylists(), m.waitForListEvent())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.playlistList.Width() == 0 {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.trackList.Width() == 0 {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsFetched:
		data := msg.data.(struct {
			playlists []*models.Playlist
			err       error
		})
		if data.err != nil {
			m.err = data.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(data.playlists))
		for i, pl := range data.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Playlists"
		m.playlistList.SetSize(m.width-4, m.height-8)
		return m, nil

	case MsgListChanged:
		m.rebuildTrackItems()
		return m, m.waitForListEvent()

	case MsgRefreshDone:
		if err, ok := msg.data.(error); ok && err != nil {
			m.err = err
		}
		return m, nil
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case TrackListView:
		return m.renderTrackList()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.playlistList.SelectedItem()
		if selected != nil {
			if pl, ok := selected.(playlistItem); ok {
				return m, m.openPlaylist(pl.playlist)
			}
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = PlaylistListView
		return m, nil
	case " ":
		if item, ok := m.trackList.SelectedItem().(trackItem); ok {
			m.controller.ToggleSelected(item.track.ID)
			m.rebuildTrackItems()
		}
		return m, nil
	case "a":
		m.controller.SelectAll()
		m.rebuildTrackItems()
		return m, nil
	case "n":
		m.controller.ClearSelection()
		m.rebuildTrackItems()
		return m, nil
	case "K":
		return m.moveSelected(-1)
	case "J":
		return m.moveSelected(1)
	case "r":
		if m.current != nil {
			return m, m.openPlaylist(m.current)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

// moveSelected moves the track under the cursor by delta rows and keeps the
// cursor on it. The authoritative reorder happens in the controller; the list
// itself is rebuilt when the resulting event arrives.
func (m *Model) moveSelected(delta int) (tea.Model, tea.Cmd) {
	item, ok := m.trackList.SelectedItem().(trackItem)
	if !ok {
		return m, nil
	}

	target := m.trackList.Index() + delta
	if target < 0 || target >= len(m.trackList.Items()) {
		return m, nil
	}

	if err := m.controller.MoveTrack(item.track.ID, target); err != nil {
		m.err = err
		return m, nil
	}

	m.trackList.Select(target)
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.playlists.List(nil)
		return playlistsFetchedMsg(playlists, err)
	}
}

func (m *Model) openPlaylist(pl *models.Playlist) tea.Cmd {
	m.current = pl
	m.view = TrackListView
	m.trackList = list.New(nil, list.NewDefaultDelegate(), m.width-4, m.height-8)
	m.trackList.Title = pl.Name()

	return func() tea.Msg {
		err := m.controller.Refresh(m.ctx, models.Query{PlaylistID: pl.ID()})
		return refreshDoneMsg(err)
	}
}

func (m *Model) waitForListEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return nil
		}
		return listChangedMsg(ev)
	}
}

// rebuildTrackItems refreshes the track view from the controller's current
// snapshot, preserving the cursor position where possible.
func (m *Model) rebuildTrackItems() {
	tracks := m.controller.List().Items()
	items := make([]list.Item, len(tracks))
	for i, track := range tracks {
		items[i] = trackItem{track: track, selected: m.controller.IsSelected(track.ID)}
	}

	index := m.trackList.Index()
	m.trackList.SetItems(items)
	if index >= len(items) {
		index = len(items) - 1
	}
	if index >= 0 {
		m.trackList.Select(index)
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderTrackList() string {
	status := fmt.Sprintf("%s • %s", m.controller.TotalCountText(), m.controller.SelectionSummary())

	state := m.controller.State()
	switch {
	case state.Loading:
		status = fmt.Sprintf("%s • %s", status, styles.warn.Render("loading..."))
	case state.LoadingMore:
		status = fmt.Sprintf("%s • %s", status, styles.warn.Render("loading more..."))
	case state.LoadFailed:
		status = fmt.Sprintf("%s • %s", status, styles.err.Render(state.Message))
	}

	helpKeys := []key.Binding{m.keys.toggle, m.keys.all, m.keys.moveUp, m.keys.moveDown, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n\n%s\n%s", m.trackList.View(), styles.help.Render(status), helpView)
}
