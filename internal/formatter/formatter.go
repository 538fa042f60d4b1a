// package formatter renders engine counts, selection summaries, and playlist
// exports (CSV, plain text) as display output
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"tracklist/internal/models"
)

// TrackCountLabel returns the display string for a view's total item count.
func TrackCountLabel(n int) string {
	if n == 1 {
		return "1 song"
	}
	return fmt.Sprintf("%d songs", n)
}

// SelectionSummary returns the display string for the current selection.
func SelectionSummary(selected, total int) string {
	switch {
	case selected == 0:
		return "No selection"
	case selected == total && total > 0:
		return fmt.Sprintf("All %d selected", total)
	default:
		return fmt.Sprintf("%d of %d selected", selected, total)
	}
}

// FormatDuration renders a duration in seconds as M:SS or H:MM:SS.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}

	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// ExportToCSV converts a track listing to CSV format with columns: ID, Title, Artist, Album, Duration, ISRC
func ExportToCSV(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Duration", "ISRC"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			track.ID,
			track.Title,
			track.Artist,
			track.Album,
			strconv.Itoa(track.Duration),
			track.ISRC,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a playlist and its tracks to plain text format
func ExportToText(playlist *models.Playlist, tracks []models.Track) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", playlist.Name()))
	if playlist.Description() != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", playlist.Description()))
	}
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(tracks)))

	for i, track := range tracks {
		duration := FormatDuration(track.Duration)
		buf.WriteString(fmt.Sprintf("%d. %s - %s [%s]\n", i+1, track.Artist, track.Title, duration))
	}

	return buf.Bytes()
}
