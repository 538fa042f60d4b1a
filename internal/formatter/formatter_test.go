package formatter

import (
	"strings"
	"testing"

	"tracklist/internal/models"
)

func TestTrackCountLabel(t *testing.T) {
	tc := []struct {
		n    int
		want string
	}{
		{0, "0 songs"},
		{1, "1 song"},
		{2, "2 songs"},
		{600, "600 songs"},
	}

	for _, tt := range tc {
		if got := TrackCountLabel(tt.n); got != tt.want {
			t.Errorf("TrackCountLabel(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestSelectionSummary(t *testing.T) {
	tc := []struct {
		name     string
		selected int
		total    int
		want     string
	}{
		{"none", 0, 600, "No selection"},
		{"partial", 3, 600, "3 of 600 selected"},
		{"all", 600, 600, "All 600 selected"},
		{"empty list", 0, 0, "No selection"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectionSummary(tt.selected, tt.total); got != tt.want {
				t.Errorf("SelectionSummary(%d, %d) = %q, want %q", tt.selected, tt.total, got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{59, "0:59"},
		{225, "3:45"},
		{3723, "1:02:03"},
		{-5, "0:00"},
	}

	for _, tt := range tc {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestExportToCSV(t *testing.T) {
	tracks := []models.Track{
		{ID: "t1", Title: "First", Artist: "Artist A", Album: "Album A", Duration: 180, ISRC: "US1234567890"},
		{ID: "t2", Title: "Second, With Comma", Artist: "Artist B", Duration: 240},
	}

	data, err := ExportToCSV(tracks)
	if err != nil {
		t.Fatalf("failed to export CSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 records, got %d lines", len(lines))
	}

	if lines[0] != "ID,Title,Artist,Album,Duration,ISRC" {
		t.Errorf("unexpected header: %q", lines[0])
	}

	if !strings.Contains(lines[2], `"Second, With Comma"`) {
		t.Errorf("expected quoted title in record, got %q", lines[2])
	}
}

func TestExportToText(t *testing.T) {
	playlist := models.NewPlaylist(1, "Road Trip", "Long drives")
	tracks := []models.Track{
		{ID: "t1", Title: "First", Artist: "Artist A", Duration: 225},
		{ID: "t2", Title: "Second", Artist: "Artist B", Duration: 180},
	}

	text := string(ExportToText(playlist, tracks))

	if !strings.Contains(text, "Playlist: Road Trip") {
		t.Errorf("expected playlist name in output, got %q", text)
	}
	if !strings.Contains(text, "Description: Long drives") {
		t.Errorf("expected description in output, got %q", text)
	}
	if !strings.Contains(text, "1. Artist A - First [3:45]") {
		t.Errorf("expected numbered track line, got %q", text)
	}
}
