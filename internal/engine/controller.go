package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"tracklist/internal/formatter"
	"tracklist/internal/models"
	"tracklist/internal/shared"
)

// Config holds the engine tunables. Zero fields take the defaults below; the
// delay and threshold values are deliberately configurable rather than
// semantic constants.
type Config struct {
	PageSize           int
	PrefetchDelay      time.Duration
	RenormalizeQuiet   time.Duration
	PrecisionThreshold float64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		PageSize:           250,
		PrefetchDelay:      250 * time.Millisecond,
		RenormalizeQuiet:   2 * time.Second,
		PrecisionThreshold: DefaultPrecisionThreshold,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.PageSize <= 0 {
		c.PageSize = def.PageSize
	}
	if c.PrefetchDelay <= 0 {
		c.PrefetchDelay = def.PrefetchDelay
	}
	if c.RenormalizeQuiet <= 0 {
		c.RenormalizeQuiet = def.RenormalizeQuiet
	}
	if c.PrecisionThreshold <= 0 {
		c.PrecisionThreshold = def.PrecisionThreshold
	}
	return c
}

// Cursor is the paging cursor for the current generation.
type Cursor struct {
	CurrentPage int
	HasNextPage bool
	TotalCount  int
}

// LoadState mirrors the UI-visible load flags.
type LoadState struct {
	Loading     bool
	LoadingMore bool
	LoadFailed  bool
	Message     string
}

// Controller owns the visible item window, the authoritative ordered id
// sequence, and background prefetching for one list view.
//
// The id sequence, position map, and cursor are guarded by mu, which is never
// held across a data-source call. Bound list mutations go through the
// dispatcher. Each Refresh or LoadPage starts a new generation; stale
// generations are discarded by comparing the generation counter before any
// shared-state write.
type Controller struct {
	source    models.TrackSource
	cfg       Config
	logger    *log.Logger
	disp      *Dispatcher
	list      *BoundList
	selection *Selection
	sched     *Scheduler

	mu        sync.RWMutex
	ids       []string
	positions map[string]float64
	cursor    Cursor
	query     models.Query

	stateMu sync.RWMutex
	state   LoadState

	refreshing atomic.Bool

	genMu  sync.Mutex
	gen    uint64
	cancel context.CancelFunc

	bg sync.WaitGroup
}

// NewController creates a Controller over the given data source.
func NewController(source models.TrackSource, cfg Config, logger *log.Logger) *Controller {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	c := &Controller{
		source:    source,
		cfg:       cfg.withDefaults(),
		logger:    logger,
		disp:      NewDispatcher(),
		list:      NewBoundList(),
		selection: NewSelection(),
		positions: make(map[string]float64),
	}
	c.sched = NewScheduler(source, c.renormalizeSnapshot, c.cfg.RenormalizeQuiet, logger)
	return c
}

// List returns the bound observable list for UI binding.
func (c *Controller) List() *BoundList { return c.list }

// Scheduler returns the reorder persistence scheduler.
func (c *Controller) Scheduler() *Scheduler { return c.sched }

// Cursor returns a copy of the current paging cursor.
func (c *Controller) Cursor() Cursor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cursor
}

// Query returns the query of the current generation.
func (c *Controller) Query() models.Query {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.query
}

// IDs returns a copy of the authoritative ordered id sequence.
func (c *Controller) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, len(c.ids))
	copy(ids, c.ids)
	return ids
}

// State returns the current UI-visible load flags.
func (c *Controller) State() LoadState {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

func (c *Controller) setState(s LoadState) {
	c.stateMu.Lock()
	c.state = s
	c.stateMu.Unlock()
}

// setLoadingMore writes the loading-more flag only while gen is still the
// active generation. Holding genMu across the check and the write keeps a
// superseded prefetch from clearing the flag the new generation's prefetch
// owns.
func (c *Controller) setLoadingMore(gen uint64, v bool) {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	if c.gen != gen {
		return
	}
	c.stateMu.Lock()
	c.state.LoadingMore = v
	c.stateMu.Unlock()
}

// beginGeneration cancels the previous generation, then installs and returns
// a new one. Cancel-then-replace ordering prevents a just-cancelled operation
// from clobbering the new generation's state after the swap.
func (c *Controller) beginGeneration(parent context.Context) (uint64, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	c.genMu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	c.cancel = cancel
	c.genMu.Unlock()

	return gen, ctx
}

func (c *Controller) currentGen() uint64 {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	return c.gen
}

// Refresh starts a new list generation: it cancels any in-flight prefetch,
// fetches the full id sequence and the first page concurrently, publishes the
// first page, clears the selection, and launches background prefetch when
// more pages exist.
//
// Only one refresh may be in progress at a time; a concurrent call while one
// is active is a no-op. A cancelled refresh returns nil. A data-source
// failure leaves the bound list in its last consistent state and surfaces as
// a sticky load-error flag plus a wrapped error.
func (c *Controller) Refresh(ctx context.Context, query models.Query) error {
	if !c.refreshing.CompareAndSwap(false, true) {
		return nil
	}
	defer c.refreshing.Store(false)

	gen, gctx := c.beginGeneration(ctx)
	c.setState(LoadState{Loading: true})

	type idsResult struct {
		ids []string
		err error
	}
	idsCh := make(chan idsResult, 1)
	go func() {
		ids, err := c.source.FetchAllIDs(gctx, query)
		idsCh <- idsResult{ids, err}
	}()

	page, pageErr := c.source.FetchPage(gctx, query, 1, c.cfg.PageSize)
	idsRes := <-idsCh

	if gctx.Err() != nil {
		// superseded or caller cancelled; not an error
		return nil
	}

	if err := errors.Join(pageErr, idsRes.err); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		c.logger.Error("refresh failed", "playlist", query.PlaylistID, "error", err)
		c.setState(LoadState{LoadFailed: true, Message: err.Error()})
		return fmt.Errorf("%w: %v", shared.ErrDataSource, err)
	}

	c.mu.Lock()
	if c.currentGen() != gen {
		c.mu.Unlock()
		return nil
	}
	c.query = query
	c.ids = idsRes.ids
	c.cursor = Cursor{
		CurrentPage: page.PageNumber,
		HasNextPage: page.HasNextPage,
		TotalCount:  page.TotalCount,
	}
	c.positions = make(map[string]float64, len(idsRes.ids))
	for _, t := range page.Tracks {
		c.positions[t.ID] = t.Position
	}
	c.mu.Unlock()

	c.selection.Clear()

	tracks := page.Tracks
	c.disp.Post(func() {
		if c.currentGen() != gen {
			return
		}
		c.list.Replace(tracks)
	})
	c.setState(LoadState{})

	if page.HasNextPage {
		c.bg.Add(1)
		go c.prefetch(gctx, gen, query, page.PageNumber+1)
	}

	return nil
}

// prefetch sequentially fetches pages until HasNextPage is false or the
// generation is cancelled. Failures are logged and end the loop without
// touching the already-displayed pages.
func (c *Controller) prefetch(ctx context.Context, gen uint64, query models.Query, startPage int) {
	defer c.bg.Done()

	limiter := rate.NewLimiter(rate.Every(c.cfg.PrefetchDelay), 1)
	// spend the initial token so the first prefetch waits a full interval
	limiter.Allow()

	c.setLoadingMore(gen, true)
	defer c.setLoadingMore(gen, false)

	for pageNumber := startPage; ; pageNumber++ {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		page, err := c.source.FetchPage(ctx, query, pageNumber, c.cfg.PageSize)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			c.logger.Error("background prefetch failed",
				"playlist", query.PlaylistID, "page", pageNumber, "error", err)
			return
		}
		if ctx.Err() != nil {
			return
		}

		c.mu.Lock()
		if c.currentGen() != gen {
			c.mu.Unlock()
			return
		}
		c.cursor = Cursor{
			CurrentPage: page.PageNumber,
			HasNextPage: page.HasNextPage,
			TotalCount:  page.TotalCount,
		}
		for _, t := range page.Tracks {
			c.positions[t.ID] = t.Position
		}
		c.mu.Unlock()

		tracks := page.Tracks
		c.disp.Post(func() {
			if c.currentGen() != gen {
				return
			}
			c.list.Append(tracks)
		})

		if !page.HasNextPage {
			return
		}
	}
}

// LoadPage publishes one explicit page for non-infinite-scroll pagination.
// It cancels background prefetch first and does not touch the id sequence.
func (c *Controller) LoadPage(ctx context.Context, pageNumber int) error {
	gen, gctx := c.beginGeneration(ctx)
	query := c.Query()

	c.setState(LoadState{Loading: true})

	page, err := c.source.FetchPage(gctx, query, pageNumber, c.cfg.PageSize)
	if gctx.Err() != nil {
		return nil
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		c.logger.Error("page load failed", "playlist", query.PlaylistID, "page", pageNumber, "error", err)
		c.setState(LoadState{LoadFailed: true, Message: err.Error()})
		return fmt.Errorf("%w: %v", shared.ErrDataSource, err)
	}

	c.mu.Lock()
	if c.currentGen() != gen {
		c.mu.Unlock()
		return nil
	}
	c.cursor = Cursor{
		CurrentPage: page.PageNumber,
		HasNextPage: page.HasNextPage,
		TotalCount:  page.TotalCount,
	}
	for _, t := range page.Tracks {
		c.positions[t.ID] = t.Position
	}
	c.mu.Unlock()

	tracks := page.Tracks
	c.disp.Post(func() {
		if c.currentGen() != gen {
			return
		}
		c.list.Replace(tracks)
	})
	c.setState(LoadState{})

	return nil
}

// MoveTrack moves a track to targetIndex within the authoritative id
// sequence, assigns it a fractional key between its new neighbors, persists
// the single move, and schedules a debounced renormalization when neighbor
// precision is exhausted.
func (c *Controller) MoveTrack(trackID string, targetIndex int) error {
	c.mu.Lock()

	from := -1
	for i, id := range c.ids {
		if id == trackID {
			from = i
			break
		}
	}
	if from == -1 {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, trackID)
	}

	if targetIndex < 0 {
		targetIndex = 0
	}
	if targetIndex > len(c.ids)-1 {
		targetIndex = len(c.ids) - 1
	}
	if targetIndex == from {
		c.mu.Unlock()
		return nil
	}

	ids := make([]string, 0, len(c.ids))
	ids = append(ids, c.ids[:from]...)
	ids = append(ids, c.ids[from+1:]...)
	tail := make([]string, 0, len(ids)-targetIndex+1)
	tail = append(tail, trackID)
	tail = append(tail, ids[targetIndex:]...)
	ids = append(ids[:targetIndex], tail...)

	prev, next := NoPrev, NoNext
	known := true
	if targetIndex > 0 {
		if p, ok := c.positions[ids[targetIndex-1]]; ok {
			prev = p
		} else {
			known = false
		}
	}
	if targetIndex < len(ids)-1 {
		if n, ok := c.positions[ids[targetIndex+1]]; ok {
			next = n
		} else {
			known = false
		}
	}

	c.ids = ids
	playlistID := c.query.PlaylistID

	if !known {
		// a neighbor was never materialized; a dense rewrite recovers the order
		c.mu.Unlock()
		c.logger.Warn("neighbor position unknown, forcing renormalization",
			"playlist", playlistID, "track", trackID)
		c.postMove(trackID, targetIndex)
		c.sched.ScheduleRenormalization(playlistID)
		return nil
	}

	key := ComputeOrderKey(prev, next, c.cfg.PrecisionThreshold)
	c.positions[trackID] = key.Value
	c.mu.Unlock()

	if key.Fallback {
		c.logger.Warn("computed order key was not finite, falling back",
			"playlist", playlistID, "track", trackID, "prev", prev, "next", next)
	}

	c.postMove(trackID, targetIndex)
	c.sched.RecordMove(playlistID, trackID, key.Value)
	if key.Renormalize {
		c.sched.ScheduleRenormalization(playlistID)
	}

	return nil
}

func (c *Controller) postMove(trackID string, targetIndex int) {
	c.disp.Post(func() {
		from := c.list.IndexOf(trackID)
		if from == -1 {
			return
		}
		c.list.Move(from, targetIndex)
	})
}

// renormalizeSnapshot reassigns dense in-memory positions and returns the id
// order to persist. ok is false when the playlist is no longer the active
// view or the order is already dense.
func (c *Controller) renormalizeSnapshot(playlistID string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.query.PlaylistID != playlistID || len(c.ids) == 0 {
		return nil, false
	}

	dense := true
	for i, id := range c.ids {
		pos, ok := c.positions[id]
		if !ok || pos != float64(i+1) {
			dense = false
			break
		}
	}
	if dense {
		return nil, false
	}

	ids := make([]string, len(c.ids))
	copy(ids, c.ids)
	for i, id := range ids {
		c.positions[id] = float64(i + 1)
	}
	return ids, true
}

// SelectAll marks every item in the view as selected in O(1).
func (c *Controller) SelectAll() { c.selection.SelectAll() }

// ClearSelection deselects everything in O(1).
func (c *Controller) ClearSelection() { c.selection.Clear() }

// ToggleSelected flips one item's selection.
func (c *Controller) ToggleSelected(id string) { c.selection.Toggle(id) }

// IsSelected reports whether one item counts as selected.
func (c *Controller) IsSelected(id string) bool { return c.selection.Selected(id) }

// SelectedCount returns the selection size against the full id sequence,
// without enumerating it.
func (c *Controller) SelectedCount() int {
	c.mu.RLock()
	total := len(c.ids)
	c.mu.RUnlock()
	return c.selection.Count(total)
}

// SelectedIDs materializes the selected ids in sequence order. O(N); callers
// use it to build playback queues or bulk requests, not for count display.
func (c *Controller) SelectedIDs() []string {
	return c.selection.IDs(c.IDs())
}

// SingleSelected returns the id of the sole selected item, if exactly one is selected.
func (c *Controller) SingleSelected() (string, bool) {
	if c.SelectedCount() != 1 {
		return "", false
	}
	ids := c.SelectedIDs()
	if len(ids) != 1 {
		return "", false
	}
	return ids[0], true
}

// TotalCountText returns the display string for the view's total item count.
func (c *Controller) TotalCountText() string {
	return formatter.TrackCountLabel(c.Cursor().TotalCount)
}

// SelectionSummary returns the display string for the current selection.
func (c *Controller) SelectionSummary() string {
	c.mu.RLock()
	total := len(c.ids)
	c.mu.RUnlock()
	return formatter.SelectionSummary(c.selection.Count(total), total)
}

// WaitQuiescent blocks until background prefetch has finished and every
// posted list mutation has been applied. Intended for one-shot callers and tests.
func (c *Controller) WaitQuiescent() {
	c.bg.Wait()
	c.disp.Sync()
}

// Close cancels the active generation and stops the background machinery.
func (c *Controller) Close() {
	c.genMu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++ // invalidate any in-flight completions
	c.genMu.Unlock()

	c.bg.Wait()
	c.sched.Close()
	c.disp.Close()
}
