package engine

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// ReorderStore is the subset of models.TrackSource the scheduler writes through.
type ReorderStore interface {
	PersistSingleMove(ctx context.Context, playlistID, trackID string, position float64) (bool, error)
	PersistFullOrder(ctx context.Context, playlistID string, orderedIDs []string) error
}

// SnapshotFunc returns the id order to persist for a renormalization of the
// given playlist. ok must be false when the playlist is no longer the active
// view, or when the order is already dense and nothing needs rewriting.
type SnapshotFunc func(playlistID string) (ids []string, ok bool)

// Scheduler persists reorder operations: single moves immediately, full
// renormalizations debounced. Persistence failures are logged, never
// surfaced; the in-memory order stays correct regardless of outcome.
type Scheduler struct {
	store    ReorderStore
	snapshot SnapshotFunc
	quiet    time.Duration
	logger   *log.Logger

	mu            sync.Mutex
	pendingGen    uint64
	pendingCancel context.CancelFunc
	wg            sync.WaitGroup
}

// NewScheduler creates a Scheduler with the given quiet period for debouncing.
func NewScheduler(store ReorderStore, snapshot SnapshotFunc, quiet time.Duration, logger *log.Logger) *Scheduler {
	return &Scheduler{
		store:    store,
		snapshot: snapshot,
		quiet:    quiet,
		logger:   logger,
	}
}

// RecordMove persists one track's new position without blocking the caller.
func (s *Scheduler) RecordMove(playlistID, trackID string, position float64) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ok, err := s.store.PersistSingleMove(context.Background(), playlistID, trackID, position)
		if err != nil {
			s.logger.Error("failed to persist move", "playlist", playlistID, "track", trackID, "error", err)
			return
		}
		if !ok {
			s.logger.Warn("move targeted a missing track", "playlist", playlistID, "track", trackID)
		}
	}()
}

// ScheduleRenormalization debounces a dense rewrite of the playlist's order.
// A newer call supersedes the pending one; the rewrite only runs if the
// playlist is still the active target when the quiet period elapses.
func (s *Scheduler) ScheduleRenormalization(playlistID string) {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if s.pendingCancel != nil {
		s.pendingCancel()
	}
	s.pendingGen++
	gen := s.pendingGen
	s.pendingCancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(s.quiet)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		s.mu.Lock()
		current := s.pendingGen == gen
		if current {
			s.pendingCancel = nil
		}
		s.mu.Unlock()
		if !current {
			return
		}

		ids, ok := s.snapshot(playlistID)
		if !ok {
			s.logger.Debug("renormalization skipped", "playlist", playlistID)
			return
		}

		if err := s.store.PersistFullOrder(ctx, playlistID, ids); err != nil {
			s.logger.Error("failed to persist renormalized order", "playlist", playlistID, "error", err)
			return
		}

		s.logger.Info("playlist order renormalized", "playlist", playlistID, "tracks", len(ids))
	}()
}

// Flush waits for all in-flight persistence work, including a pending
// debounce running out its quiet period.
func (s *Scheduler) Flush() {
	s.wg.Wait()
}

// Close cancels any pending renormalization and waits for in-flight writes.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.pendingCancel != nil {
		s.pendingCancel()
		s.pendingCancel = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}
