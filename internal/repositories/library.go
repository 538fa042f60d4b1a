package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tracklist/internal/models"
	"tracklist/internal/shared"
)

var _ models.TrackSource = (*LibraryRepository)(nil)

// LibraryRepository implements [models.TrackSource] on SQLite.
//
// Paged fetches and full-id fetches apply identical ordering so materialized
// pages are always a subsequence of the id list for the same query.
type LibraryRepository struct {
	db *sql.DB
}

// NewLibraryRepository creates a new LibraryRepository with the given database connection
func NewLibraryRepository(db *sql.DB) *LibraryRepository {
	return &LibraryRepository{db: db}
}

// trackColumns is the select list shared by every track query.
const trackColumns = "id, title, artist, album, duration, isrc, position, created_at"

// orderClause maps a query's sort field to a deterministic ORDER BY.
// The id tie-breaker keeps pagination stable when sort values collide.
func orderClause(query models.Query) string {
	var col string
	switch query.Sort {
	case models.SortByTitle:
		col = "title COLLATE NOCASE"
	case models.SortByArtist:
		col = "artist COLLATE NOCASE"
	case models.SortByAdded:
		col = "created_at"
	default:
		col = "position"
	}

	dir := "ASC"
	if query.Descending {
		dir = "DESC"
	}

	return fmt.Sprintf("ORDER BY %s %s, id ASC", col, dir)
}

// filterClause builds the WHERE tail and args for a query's search text.
func filterClause(query models.Query) (string, []any) {
	clause := "playlist_id = ? AND deleted_at IS NULL"
	args := []any{query.PlaylistID}

	if query.Search != "" {
		clause += " AND (title LIKE ? OR artist LIKE ? OR album LIKE ?)"
		pattern := "%" + query.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}

	return clause, args
}

// FetchPage retrieves one page of tracks plus the total matching count.
func (r *LibraryRepository) FetchPage(ctx context.Context, query models.Query, pageNumber, pageSize int) (*models.Page, error) {
	if pageNumber < 1 {
		return nil, fmt.Errorf("%w: page number must be >= 1, got %d", shared.ErrInvalidArgument, pageNumber)
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("%w: page size must be >= 1, got %d", shared.ErrInvalidArgument, pageSize)
	}

	where, args := filterClause(query)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM tracks WHERE %s", where)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count tracks: %w", err)
	}

	offset := (pageNumber - 1) * pageSize
	pageQuery := fmt.Sprintf(
		"SELECT %s FROM tracks WHERE %s %s LIMIT ? OFFSET ?",
		trackColumns, where, orderClause(query),
	)

	rows, err := r.db.QueryContext(ctx, pageQuery, append(args, pageSize, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return &models.Page{
		Tracks:      tracks,
		PageNumber:  pageNumber,
		TotalCount:  total,
		HasNextPage: offset+len(tracks) < total,
	}, nil
}

// FetchAllIDs retrieves the complete ordered id sequence for the query.
func (r *LibraryRepository) FetchAllIDs(ctx context.Context, query models.Query) ([]string, error) {
	where, args := filterClause(query)

	idQuery := fmt.Sprintf("SELECT id FROM tracks WHERE %s %s", where, orderClause(query))

	rows, err := r.db.QueryContext(ctx, idQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query track ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan track id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}

// PersistSingleMove writes one track's new fractional position.
func (r *LibraryRepository) PersistSingleMove(ctx context.Context, playlistID, trackID string, position float64) (bool, error) {
	query := `
		UPDATE tracks
		SET position = ?, updated_at = ?
		WHERE id = ? AND playlist_id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, position, time.Now(), trackID, playlistID)
	if err != nil {
		return false, fmt.Errorf("failed to persist move: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows > 0, nil
}

// PersistFullOrder rewrites every track's position as a dense integer sequence in one transaction.
func (r *LibraryRepository) PersistFullOrder(ctx context.Context, playlistID string, orderedIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE tracks
		SET position = ?, updated_at = ?
		WHERE id = ? AND playlist_id = ? AND deleted_at IS NULL
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare order update: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for i, id := range orderedIDs {
		if _, err := stmt.ExecContext(ctx, float64(i+1), now, id, playlistID); err != nil {
			return fmt.Errorf("failed to update position for track %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order update: %w", err)
	}

	return nil
}

// AddTrack inserts a track at the end of a playlist, assigning the next integer position.
func (r *LibraryRepository) AddTrack(ctx context.Context, playlistID string, track models.Track) (string, error) {
	var maxPos sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		"SELECT MAX(position) FROM tracks WHERE playlist_id = ? AND deleted_at IS NULL",
		playlistID,
	).Scan(&maxPos)
	if err != nil {
		return "", fmt.Errorf("failed to query max position: %w", err)
	}

	position := 1.0
	if maxPos.Valid {
		position = maxPos.Float64 + 1.0
	}

	id := track.ID
	if id == "" {
		id = shared.GenerateID()
	}

	now := time.Now()
	query := `
		INSERT INTO tracks (id, playlist_id, title, artist, album, duration, isrc, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		id,
		playlistID,
		track.Title,
		track.Artist,
		track.Album,
		track.Duration,
		track.ISRC,
		position,
		now,
		now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert track: %w", err)
	}

	return id, nil
}

// RemoveTrack soft-deletes a track from a playlist.
func (r *LibraryRepository) RemoveTrack(ctx context.Context, playlistID, trackID string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE tracks
		SET deleted_at = ?
		WHERE id = ? AND playlist_id = ? AND deleted_at IS NULL
	`, time.Now(), trackID, playlistID)
	if err != nil {
		return fmt.Errorf("failed to remove track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, trackID)
	}

	return nil
}

// scanTrack scans a row from [sql.Rows] into a [models.Track]
func scanTrack(rows *sql.Rows) (models.Track, error) {
	var (
		track     models.Track
		createdAt time.Time
	)

	err := rows.Scan(
		&track.ID,
		&track.Title,
		&track.Artist,
		&track.Album,
		&track.Duration,
		&track.ISRC,
		&track.Position,
		&createdAt,
	)
	if err != nil {
		return models.Track{}, fmt.Errorf("failed to scan track: %w", err)
	}

	track.CreatedAt = createdAt
	return track, nil
}
