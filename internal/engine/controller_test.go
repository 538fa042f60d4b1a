package engine

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"tracklist/internal/models"
	"tracklist/internal/shared"

	tu "tracklist/internal/testing"
)

func newTestController(t *testing.T, source models.TrackSource, cfg Config) *Controller {
	t.Helper()
	c := NewController(source, cfg, shared.NewLogger(io.Discard))
	t.Cleanup(c.Close)
	return c
}

func listIDs(c *Controller) []string {
	return ids(c.List().Items())
}

func TestControllerRefreshPrefetchesAllPages(t *testing.T) {
	source := tu.NewFakeTrackSource()
	source.SetTracks("p1", tu.SeedTracks(600))

	c := newTestController(t, source, Config{PageSize: 250, PrefetchDelay: 10 * time.Millisecond})

	if err := c.Refresh(context.Background(), models.Query{PlaylistID: "p1"}); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}

	// the full id sequence is in place as soon as Refresh returns
	if got := len(c.IDs()); got != 600 {
		t.Fatalf("id sequence length = %d, want 600", got)
	}

	c.WaitQuiescent()

	got := listIDs(c)
	if len(got) != 600 {
		t.Fatalf("materialized %d tracks, want 600", len(got))
	}
	for i, want := range fullOrder(600) {
		if got[i] != want {
			t.Fatalf("order broken at index %d: got %s, want %s", i, got[i], want)
		}
	}

	calls := source.PageCalls()
	if len(calls) != 3 || calls[0] != 1 || calls[1] != 2 || calls[2] != 3 {
		t.Errorf("page calls = %v, want [1 2 3]", calls)
	}

	cursor := c.Cursor()
	if cursor.TotalCount != 600 || cursor.HasNextPage {
		t.Errorf("cursor = %+v, want total 600 and no next page", cursor)
	}
	if state := c.State(); state.Loading || state.LoadingMore || state.LoadFailed {
		t.Errorf("load flags should be clear when quiescent, got %+v", state)
	}
	if got := c.TotalCountText(); got != "600 songs" {
		t.Errorf("TotalCountText() = %q, want %q", got, "600 songs")
	}
}

func TestControllerConcurrentRefreshIsNoOp(t *testing.T) {
	source := tu.NewFakeTrackSource()
	source.SetTracks("p1", tu.SeedTracks(5))
	source.SetPageDelay(100 * time.Millisecond)

	c := newTestController(t, source, Config{PageSize: 250})

	first := make(chan error, 1)
	go func() { first <- c.Refresh(context.Background(), models.Query{PlaylistID: "p1"}) }()

	time.Sleep(10 * time.Millisecond)
	if err := c.Refresh(context.Background(), models.Query{PlaylistID: "p1"}); err != nil {
		t.Fatalf("overlapping refresh should be a silent no-op, got %v", err)
	}
	if err := <-first; err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}
	c.WaitQuiescent()

	if got := source.IDCalls(); got != 1 {
		t.Errorf("FetchAllIDs called %d times, want 1", got)
	}
	if got := c.List().Len(); got != 5 {
		t.Errorf("list length = %d, want 5", got)
	}
}

func TestControllerRefreshFailureKeepsLastState(t *testing.T) {
	source := tu.NewFakeTrackSource()
	source.SetTracks("p1", tu.SeedTracks(3))

	c := newTestController(t, source, Config{PageSize: 250})

	if err := c.Refresh(context.Background(), models.Query{PlaylistID: "p1"}); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}
	c.WaitQuiescent()

	source.FailPages(tu.ErrScripted)
	err := c.Refresh(context.Background(), models.Query{PlaylistID: "p1"})
	if !errors.Is(err, shared.ErrDataSource) {
		t.Fatalf("expected a data source error, got %v", err)
	}

	state := c.State()
	if !state.LoadFailed || state.Message == "" {
		t.Errorf("expected a sticky failure flag with a message, got %+v", state)
	}

	// the last consistent contents stay on screen
	c.WaitQuiescent()
	if got := c.List().Len(); got != 3 {
		t.Errorf("list length after failed refresh = %d, want 3", got)
	}
	if got := len(c.IDs()); got != 3 {
		t.Errorf("id sequence after failed refresh = %d, want 3", got)
	}
}

func TestControllerRefreshCancelledContext(t *testing.T) {
	source := tu.NewFakeTrackSource()
	source.SetTracks("p1", tu.SeedTracks(3))

	c := newTestController(t, source, Config{PageSize: 250})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Refresh(ctx, models.Query{PlaylistID: "p1"}); err != nil {
		t.Errorf("cancelled refresh should return nil, got %v", err)
	}
	if c.List().Len() != 0 {
		t.Error("cancelled refresh should not publish anything")
	}
}

func TestControllerRefreshSupersedesPrefetch(t *testing.T) {
	source := tu.NewFakeTrackSource()
	source.SetTracks("p1", tu.SeedTracks(600))

	second := []models.Track{
		{ID: "b1", Title: "B One", Position: 1},
		{ID: "b2", Title: "B Two", Position: 2},
		{ID: "b3", Title: "B Three", Position: 3},
		{ID: "b4", Title: "B Four", Position: 4},
		{ID: "b5", Title: "B Five", Position: 5},
	}
	source.SetTracks("p2", second)

	c := newTestController(t, source, Config{PageSize: 250, PrefetchDelay: 50 * time.Millisecond})

	if err := c.Refresh(context.Background(), models.Query{PlaylistID: "p1"}); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}
	// supersede while pages 2 and 3 are still pending
	if err := c.Refresh(context.Background(), models.Query{PlaylistID: "p2"}); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}
	c.WaitQuiescent()

	got := listIDs(c)
	want := []string{"b1", "b2", "b3", "b4", "b5"}
	if len(got) != len(want) {
		t.Fatalf("final list = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("final list = %v, want %v", got, want)
		}
	}
	if q := c.Query(); q.PlaylistID != "p2" {
		t.Errorf("active query playlist = %s, want p2", q.PlaylistID)
	}
}

func TestControllerSupersededPrefetchKeepsLoadingMoreFlag(t *testing.T) {
	source := tu.NewFakeTrackSource()
	source.SetTracks("p1", tu.SeedTracks(600))
	source.SetTracks("p2", tu.SeedTracks(600))

	c := newTestController(t, source, Config{PageSize: 250, PrefetchDelay: 100 * time.Millisecond})

	if err := c.Refresh(context.Background(), models.Query{PlaylistID: "p1"}); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}
	// let the first prefetch raise the flag before superseding it
	time.Sleep(10 * time.Millisecond)

	if err := c.Refresh(context.Background(), models.Query{PlaylistID: "p2"}); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}
	// by now the cancelled prefetch has unwound; the new one still has pages pending
	time.Sleep(30 * time.Millisecond)

	if cursor := c.Cursor(); !cursor.HasNextPage {
		t.Fatalf("cursor = %+v, want pages still pending", cursor)
	}
	if state := c.State(); !state.LoadingMore {
		t.Errorf("LoadingMore should stay set while the active prefetch has pages pending, got %+v", state)
	}

	c.WaitQuiescent()
	if state := c.State(); state.LoadingMore {
		t.Errorf("LoadingMore should clear once prefetch finishes, got %+v", state)
	}
}

func TestControllerLoadPage(t *testing.T) {
	source := tu.NewFakeTrackSource()
	source.SetTracks("p1", tu.SeedTracks(600))

	c := newTestController(t, source, Config{PageSize: 250, PrefetchDelay: 5 * time.Millisecond})

	if err := c.Refresh(context.Background(), models.Query{PlaylistID: "p1"}); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}
	c.WaitQuiescent()

	if err := c.LoadPage(context.Background(), 2); err != nil {
		t.Fatalf("failed to load page: %v", err)
	}
	c.WaitQuiescent()

	got := listIDs(c)
	if len(got) != 250 {
		t.Fatalf("page length = %d, want 250", len(got))
	}
	if got[0] != "t251" || got[249] != "t500" {
		t.Errorf("page window = %s..%s, want t251..t500", got[0], got[249])
	}

	cursor := c.Cursor()
	if cursor.CurrentPage != 2 || !cursor.HasNextPage {
		t.Errorf("cursor = %+v, want page 2 with a next page", cursor)
	}

	// the id sequence is untouched by explicit paging
	if got := len(c.IDs()); got != 600 {
		t.Errorf("id sequence length = %d, want 600", got)
	}
}

func TestControllerMoveTrack(t *testing.T) {
	source := tu.NewFakeTrackSource()
	source.SetTracks("p1", tu.SeedTracks(5))

	c := newTestController(t, source, Config{PageSize: 250})

	if err := c.Refresh(context.Background(), models.Query{PlaylistID: "p1"}); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}
	c.WaitQuiescent()

	if err := c.MoveTrack("t5", 1); err != nil {
		t.Fatalf("failed to move track: %v", err)
	}
	c.WaitQuiescent()
	c.Scheduler().Flush()

	want := []string{"t1", "t5", "t2", "t3", "t4"}
	gotIDs := c.IDs()
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("id sequence = %v, want %v", gotIDs, want)
		}
	}
	gotList := listIDs(c)
	for i := range want {
		if gotList[i] != want[i] {
			t.Fatalf("bound list = %v, want %v", gotList, want)
		}
	}

	moves := source.Moves()
	if len(moves) != 1 {
		t.Fatalf("persisted %d moves, want 1", len(moves))
	}
	wantMove := tu.MoveRecord{PlaylistID: "p1", TrackID: "t5", Position: 1.5}
	if moves[0] != wantMove {
		t.Errorf("move = %+v, want %+v", moves[0], wantMove)
	}
	if len(source.FullOrders("p1")) != 0 {
		t.Error("a clean midpoint move should not trigger a full rewrite")
	}
}

func TestControllerMoveUnknownTrack(t *testing.T) {
	source := tu.NewFakeTrackSource()
	source.SetTracks("p1", tu.SeedTracks(3))

	c := newTestController(t, source, Config{PageSize: 250})

	if err := c.Refresh(context.Background(), models.Query{PlaylistID: "p1"}); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}
	c.WaitQuiescent()

	if err := c.MoveTrack("nope", 0); !errors.Is(err, shared.ErrTrackNotFound) {
		t.Errorf("expected track-not-found, got %v", err)
	}
}

func TestControllerMoveExhaustsPrecision(t *testing.T) {
	source := tu.NewFakeTrackSource()
	source.SetTracks("p1", []models.Track{
		{ID: "t1", Title: "One", Position: 0.500000001},
		{ID: "t2", Title: "Two", Position: 0.500000002},
		{ID: "t3", Title: "Three", Position: 5},
	})

	c := newTestController(t, source, Config{PageSize: 250, RenormalizeQuiet: 30 * time.Millisecond})

	if err := c.Refresh(context.Background(), models.Query{PlaylistID: "p1"}); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}
	c.WaitQuiescent()

	if err := c.MoveTrack("t3", 1); err != nil {
		t.Fatalf("failed to move track: %v", err)
	}
	c.Scheduler().Flush()

	// the single move still persists, then the debounced rewrite densifies
	if moves := source.Moves(); len(moves) != 1 {
		t.Fatalf("persisted %d moves, want 1", len(moves))
	}
	orders := source.FullOrders("p1")
	if len(orders) != 1 {
		t.Fatalf("persisted %d full orders, want 1", len(orders))
	}
	want := []string{"t1", "t3", "t2"}
	for i := range want {
		if orders[0][i] != want[i] {
			t.Fatalf("renormalized order = %v, want %v", orders[0], want)
		}
	}
}

func TestControllerRenormalizationSkipsDenseOrder(t *testing.T) {
	source := tu.NewFakeTrackSource()
	source.SetTracks("p1", tu.SeedTracks(4))

	c := newTestController(t, source, Config{PageSize: 250, RenormalizeQuiet: 10 * time.Millisecond})

	if err := c.Refresh(context.Background(), models.Query{PlaylistID: "p1"}); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}
	c.WaitQuiescent()

	c.Scheduler().ScheduleRenormalization("p1")
	c.Scheduler().Flush()

	if len(source.FullOrders("p1")) != 0 {
		t.Error("an already dense order should not be rewritten")
	}
}

func TestControllerMoveWithUnmaterializedNeighbor(t *testing.T) {
	source := tu.NewFakeTrackSource()
	source.SetTracks("p1", tu.SeedTracks(6))

	// a long prefetch delay keeps pages past the first unmaterialized
	c := newTestController(t, source, Config{
		PageSize:         2,
		PrefetchDelay:    time.Hour,
		RenormalizeQuiet: 20 * time.Millisecond,
	})

	if err := c.Refresh(context.Background(), models.Query{PlaylistID: "p1"}); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}

	if err := c.MoveTrack("t1", 4); err != nil {
		t.Fatalf("failed to move track: %v", err)
	}
	c.Scheduler().Flush()

	// no single-move write; the unknown neighbor forces a dense rewrite
	if moves := source.Moves(); len(moves) != 0 {
		t.Errorf("expected no single moves, got %v", moves)
	}
	orders := source.FullOrders("p1")
	if len(orders) != 1 {
		t.Fatalf("persisted %d full orders, want 1", len(orders))
	}
	want := []string{"t2", "t3", "t4", "t5", "t1", "t6"}
	for i := range want {
		if orders[0][i] != want[i] {
			t.Fatalf("renormalized order = %v, want %v", orders[0], want)
		}
	}
}

func TestControllerSelection(t *testing.T) {
	source := tu.NewFakeTrackSource()
	source.SetTracks("p1", tu.SeedTracks(600))

	// prefetch never completes; selection must still cover the full sequence
	c := newTestController(t, source, Config{PageSize: 250, PrefetchDelay: time.Hour})

	if err := c.Refresh(context.Background(), models.Query{PlaylistID: "p1"}); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}

	c.SelectAll()
	if got := c.SelectedCount(); got != 600 {
		t.Errorf("SelectedCount() = %d, want 600", got)
	}
	if got := c.SelectionSummary(); got != "All 600 selected" {
		t.Errorf("SelectionSummary() = %q", got)
	}

	c.ToggleSelected("t300")
	if c.IsSelected("t300") {
		t.Error("toggled id should be deselected")
	}
	if got := c.SelectedCount(); got != 599 {
		t.Errorf("SelectedCount() = %d, want 599", got)
	}

	c.ClearSelection()
	c.ToggleSelected("t42")
	if id, ok := c.SingleSelected(); !ok || id != "t42" {
		t.Errorf("SingleSelected() = %q, %v, want t42", id, ok)
	}

	selected := c.SelectedIDs()
	if len(selected) != 1 || selected[0] != "t42" {
		t.Errorf("SelectedIDs() = %v, want [t42]", selected)
	}
}

func TestControllerRefreshClearsSelection(t *testing.T) {
	source := tu.NewFakeTrackSource()
	source.SetTracks("p1", tu.SeedTracks(5))

	c := newTestController(t, source, Config{PageSize: 250})

	if err := c.Refresh(context.Background(), models.Query{PlaylistID: "p1"}); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}
	c.WaitQuiescent()

	c.SelectAll()
	if err := c.Refresh(context.Background(), models.Query{PlaylistID: "p1"}); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}
	c.WaitQuiescent()

	if got := c.SelectedCount(); got != 0 {
		t.Errorf("selection should reset on refresh, count = %d", got)
	}
	if got := c.SelectionSummary(); got != "No selection" {
		t.Errorf("SelectionSummary() = %q", got)
	}
}
