package engine

import (
	"testing"

	"tracklist/internal/models"

	tu "tracklist/internal/testing"
)

func TestBoundListReplace(t *testing.T) {
	b := NewBoundList()

	var events []ListEvent
	b.Subscribe(func(ev ListEvent) { events = append(events, ev) })

	b.Replace(tu.SeedTracks(3))

	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	if got := b.IndexOf("t2"); got != 1 {
		t.Errorf("IndexOf(t2) = %d, want 1", got)
	}
	if _, ok := b.At(3); ok {
		t.Error("At(3) should be out of range")
	}

	if len(events) != 1 || events[0].Kind != ListReplaced {
		t.Fatalf("expected one ListReplaced event, got %v", events)
	}
	if len(events[0].Tracks) != 3 {
		t.Errorf("event carried %d tracks, want 3", len(events[0].Tracks))
	}

	// the published copy must not alias internal state
	events[0].Tracks[0].ID = "mutated"
	if b.IndexOf("mutated") != -1 {
		t.Error("mutating the event payload leaked into the list")
	}
}

func TestBoundListAppend(t *testing.T) {
	b := NewBoundList()
	b.Replace(tu.SeedTracks(2))

	var events []ListEvent
	b.Subscribe(func(ev ListEvent) { events = append(events, ev) })

	b.Append([]models.Track{{ID: "t3", Title: "Track t3"}})
	b.Append(nil) // no-op, no event

	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	if len(events) != 1 || events[0].Kind != ListAppended {
		t.Fatalf("expected one ListAppended event, got %v", events)
	}
	if len(events[0].Tracks) != 1 || events[0].Tracks[0].ID != "t3" {
		t.Errorf("event tail = %v, want just t3", events[0].Tracks)
	}
}

func TestBoundListMove(t *testing.T) {
	b := NewBoundList()
	b.Replace(tu.SeedTracks(4))

	var events []ListEvent
	b.Subscribe(func(ev ListEvent) { events = append(events, ev) })

	if !b.Move(3, 0) {
		t.Fatal("valid move returned false")
	}

	want := []string{"t4", "t1", "t2", "t3"}
	items := b.Items()
	for i, id := range want {
		if items[i].ID != id {
			t.Fatalf("order after move = %v, want %v", ids(items), want)
		}
	}

	if len(events) != 1 || events[0].Kind != ListMoved {
		t.Fatalf("expected one ListMoved event, got %v", events)
	}
	if events[0].From != 3 || events[0].To != 0 {
		t.Errorf("move event = (%d, %d), want (3, 0)", events[0].From, events[0].To)
	}

	if b.Move(0, 0) {
		t.Error("same-index move should be a no-op")
	}
	if b.Move(-1, 2) || b.Move(1, 4) {
		t.Error("out-of-range move should be rejected")
	}
	if len(events) != 1 {
		t.Errorf("rejected moves should not emit events, got %d", len(events))
	}
}

func ids(tracks []models.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}
