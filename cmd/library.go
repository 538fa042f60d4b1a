package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"tracklist/internal/engine"
	"tracklist/internal/formatter"
	"tracklist/internal/models"
	"tracklist/internal/repositories"
	"tracklist/internal/shared"
)

// PlaylistCreate creates a new empty playlist.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	db, cleanup, err := r.database()
	if err != nil {
		return err
	}
	defer cleanup()

	repo := repositories.NewPlaylistRepository(db)
	playlist := models.NewPlaylist(0, cmd.String("name"), cmd.String("description"))

	if err := repo.Create(playlist); err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}

	r.logger.Info("playlist created", "id", playlist.ID(), "name", playlist.Name())
	r.writePlain("✓ Created playlist '%s'\n", playlist.Name())
	r.writePlain("ID: %s\n", playlist.ID())
	return nil
}

// PlaylistList prints all playlists in sequence order.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	db, cleanup, err := r.database()
	if err != nil {
		return err
	}
	defer cleanup()

	repo := repositories.NewPlaylistRepository(db)
	playlists, err := repo.List(nil)
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	if cmd.Bool("json") {
		rows := make([]map[string]any, len(playlists))
		for i, pl := range playlists {
			rows[i] = map[string]any{
				"id":          pl.ID(),
				"name":        pl.Name(),
				"description": pl.Description(),
				"track_count": pl.TrackCount(),
			}
		}
		return r.writeJSON(rows, true)
	}

	if len(playlists) == 0 {
		r.writePlain("No playlists. Create one with 'tracklist playlist create --name ...'\n")
		return nil
	}

	for _, pl := range playlists {
		r.writePlain("%s  %s (%s)\n", pl.ID(), pl.Name(), formatter.TrackCountLabel(pl.TrackCount()))
	}
	return nil
}

// PlaylistDelete soft-deletes a playlist.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	db, cleanup, err := r.database()
	if err != nil {
		return err
	}
	defer cleanup()

	repo := repositories.NewPlaylistRepository(db)
	id := cmd.String("id")

	if err := repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	r.writePlain("✓ Deleted playlist %s\n", id)
	return nil
}

// sample metadata pools for generated tracks
var (
	seedArtists = []string{"The Midnight Collective", "Aurora Fields", "Stereo Canyon", "Vera Lux", "Paper Satellites"}
	seedAlbums  = []string{"First Light", "Road Atlas", "Glasshouse", "Night Signals", "Wildflower"}
)

// PlaylistSeed fills a playlist with generated tracks for demos and testing.
func (r *Runner) PlaylistSeed(ctx context.Context, cmd *cli.Command) error {
	db, cleanup, err := r.database()
	if err != nil {
		return err
	}
	defer cleanup()

	playlistID := cmd.String("id")
	count := int(cmd.Int("count"))
	if count < 1 {
		return fmt.Errorf("%w: count must be >= 1, got %d", shared.ErrInvalidFlag, count)
	}

	playlists := repositories.NewPlaylistRepository(db)
	if _, err := playlists.Get(playlistID); err != nil {
		return fmt.Errorf("failed to look up playlist: %w", err)
	}

	library := repositories.NewLibraryRepository(db)
	for i := 0; i < count; i++ {
		track := models.Track{
			Title:    fmt.Sprintf("Track %03d", i+1),
			Artist:   seedArtists[i%len(seedArtists)],
			Album:    seedAlbums[(i/len(seedArtists))%len(seedAlbums)],
			Duration: 150 + (i*17)%180,
		}
		if _, err := library.AddTrack(ctx, playlistID, track); err != nil {
			return fmt.Errorf("failed to add track %d: %w", i+1, err)
		}
	}

	r.logger.Info("playlist seeded", "playlist", playlistID, "tracks", count)
	r.writePlain("✓ Added %d tracks to %s\n", count, playlistID)
	return nil
}

// parseSort maps the --sort flag onto a [models.SortField].
func parseSort(value string) (models.SortField, error) {
	switch models.SortField(value) {
	case models.SortByPosition, models.SortByTitle, models.SortByArtist, models.SortByAdded:
		return models.SortField(value), nil
	default:
		return "", fmt.Errorf("%w: unknown sort field %q", shared.ErrInvalidFlag, value)
	}
}

// TracksList prints one page of tracks for a playlist.
func (r *Runner) TracksList(ctx context.Context, cmd *cli.Command) error {
	db, cleanup, err := r.database()
	if err != nil {
		return err
	}
	defer cleanup()

	sort, err := parseSort(cmd.String("sort"))
	if err != nil {
		return err
	}

	query := models.Query{
		PlaylistID: cmd.String("playlist"),
		Sort:       sort,
		Descending: cmd.Bool("desc"),
		Search:     cmd.String("search"),
	}

	pageSize := int(cmd.Int("page-size"))
	if pageSize <= 0 {
		pageSize = r.config.List.PageSize
	}

	library := repositories.NewLibraryRepository(db)
	page, err := library.FetchPage(ctx, query, int(cmd.Int("page")), pageSize)
	if err != nil {
		return fmt.Errorf("failed to fetch tracks: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, true)
	}

	offset := (page.PageNumber - 1) * pageSize
	for i, track := range page.Tracks {
		r.writePlain("%4d. %s - %s [%s]\n", offset+i+1, track.Artist, track.Title, formatter.FormatDuration(track.Duration))
	}

	more := ""
	if page.HasNextPage {
		more = fmt.Sprintf(", more on page %d", page.PageNumber+1)
	}
	r.writePlainln("Page %d of %s%s", page.PageNumber, formatter.TrackCountLabel(page.TotalCount), more)
	return nil
}

// TrackAdd appends one track to the end of a playlist.
func (r *Runner) TrackAdd(ctx context.Context, cmd *cli.Command) error {
	db, cleanup, err := r.database()
	if err != nil {
		return err
	}
	defer cleanup()

	library := repositories.NewLibraryRepository(db)
	track := models.Track{
		Title:    cmd.String("title"),
		Artist:   cmd.String("artist"),
		Album:    cmd.String("album"),
		Duration: int(cmd.Int("duration")),
	}

	id, err := library.AddTrack(ctx, cmd.String("playlist"), track)
	if err != nil {
		return fmt.Errorf("failed to add track: %w", err)
	}

	r.writePlain("✓ Added '%s'\n", track.Title)
	r.writePlain("ID: %s\n", id)
	return nil
}

// TrackRemove removes one track from a playlist.
func (r *Runner) TrackRemove(ctx context.Context, cmd *cli.Command) error {
	db, cleanup, err := r.database()
	if err != nil {
		return err
	}
	defer cleanup()

	library := repositories.NewLibraryRepository(db)
	trackID := cmd.String("id")

	if err := library.RemoveTrack(ctx, cmd.String("playlist"), trackID); err != nil {
		return fmt.Errorf("failed to remove track: %w", err)
	}

	r.writePlain("✓ Removed track %s\n", trackID)
	return nil
}

// TrackMove moves one track to a new index through the reorder engine, so the
// CLI takes the same fractional-key and renormalization path as the TUI.
func (r *Runner) TrackMove(ctx context.Context, cmd *cli.Command) error {
	db, cleanup, err := r.database()
	if err != nil {
		return err
	}
	defer cleanup()

	library := repositories.NewLibraryRepository(db)

	cfg := r.engineConfig()
	// one-shot invocation reading a local database, no need to pace prefetch
	cfg.PrefetchDelay = time.Millisecond
	cfg.RenormalizeQuiet = 10 * time.Millisecond

	ctrl := engine.NewController(library, cfg, r.logger)
	defer ctrl.Close()

	playlistID := cmd.String("playlist")
	if err := ctrl.Refresh(ctx, models.Query{PlaylistID: playlistID}); err != nil {
		return err
	}
	ctrl.WaitQuiescent()

	trackID := cmd.String("track")
	target := int(cmd.Int("to"))
	if err := ctrl.MoveTrack(trackID, target); err != nil {
		return err
	}

	ctrl.WaitQuiescent()
	ctrl.Scheduler().Flush()

	r.writePlain("✓ Moved %s to index %d\n", trackID, target)
	return nil
}

// TracksRenormalize rewrites a playlist's positions as dense integers.
func (r *Runner) TracksRenormalize(ctx context.Context, cmd *cli.Command) error {
	db, cleanup, err := r.database()
	if err != nil {
		return err
	}
	defer cleanup()

	library := repositories.NewLibraryRepository(db)
	playlistID := cmd.String("playlist")

	ids, err := library.FetchAllIDs(ctx, models.Query{PlaylistID: playlistID})
	if err != nil {
		return fmt.Errorf("failed to fetch track ids: %w", err)
	}
	if len(ids) == 0 {
		r.writePlain("Playlist %s has no tracks\n", playlistID)
		return nil
	}

	if err := library.PersistFullOrder(ctx, playlistID, ids); err != nil {
		return fmt.Errorf("failed to renormalize: %w", err)
	}

	r.logger.Info("playlist renormalized", "playlist", playlistID, "tracks", len(ids))
	r.writePlain("✓ Renormalized %s\n", formatter.TrackCountLabel(len(ids)))
	return nil
}

// TracksExport writes a playlist's full track list as CSV or text.
func (r *Runner) TracksExport(ctx context.Context, cmd *cli.Command) error {
	db, cleanup, err := r.database()
	if err != nil {
		return err
	}
	defer cleanup()

	playlistID := cmd.String("playlist")

	playlists := repositories.NewPlaylistRepository(db)
	playlist, err := playlists.Get(playlistID)
	if err != nil {
		return fmt.Errorf("failed to look up playlist: %w", err)
	}

	library := repositories.NewLibraryRepository(db)
	query := models.Query{PlaylistID: playlistID}

	var tracks []models.Track
	for pageNumber := 1; ; pageNumber++ {
		page, err := library.FetchPage(ctx, query, pageNumber, r.config.List.PageSize)
		if err != nil {
			return fmt.Errorf("failed to fetch tracks: %w", err)
		}
		tracks = append(tracks, page.Tracks...)
		if !page.HasNextPage {
			break
		}
	}

	var data []byte
	switch cmd.String("format") {
	case "csv":
		if data, err = formatter.ExportToCSV(tracks); err != nil {
			return fmt.Errorf("failed to export CSV: %w", err)
		}
	case "txt":
		data = formatter.ExportToText(playlist, tracks)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, cmd.String("format"))
	}

	if outputPath := cmd.String("output"); outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		r.writePlain("✓ Exported %s to %s\n", formatter.TrackCountLabel(len(tracks)), outputPath)
		return nil
	}

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
