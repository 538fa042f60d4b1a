package engine

import (
	"fmt"
	"testing"
)

func fullOrder(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("t%d", i+1)
	}
	return ids
}

func TestSelectionPartialMode(t *testing.T) {
	s := NewSelection()

	if s.Count(1000) != 0 {
		t.Errorf("empty selection count = %d, want 0", s.Count(1000))
	}

	s.Toggle("t3")
	s.Toggle("t7")

	if s.Count(1000) != 2 {
		t.Errorf("count after two toggles = %d, want 2", s.Count(1000))
	}
	if !s.Selected("t3") || !s.Selected("t7") {
		t.Error("toggled ids should be selected")
	}
	if s.Selected("t1") {
		t.Error("untouched id should not be selected")
	}

	s.Toggle("t3")
	if s.Selected("t3") {
		t.Error("toggling again should deselect")
	}
	if s.Count(1000) != 1 {
		t.Errorf("count after re-toggle = %d, want 1", s.Count(1000))
	}

	ids := s.IDs(fullOrder(10))
	if len(ids) != 1 || ids[0] != "t7" {
		t.Errorf("IDs() = %v, want [t7]", ids)
	}
}

func TestSelectionComplementMode(t *testing.T) {
	const n = 1000
	s := NewSelection()
	s.SelectAll()

	// count reflects the full sequence immediately, no enumeration needed
	if s.Count(n) != n {
		t.Errorf("count after SelectAll = %d, want %d", s.Count(n), n)
	}
	if !s.Selected("t500") {
		t.Error("every id should be selected in complement mode")
	}

	excluded := []string{"t10", "t500", "t999"}
	for _, id := range excluded {
		s.Toggle(id)
	}

	if s.Count(n) != n-len(excluded) {
		t.Errorf("count after exclusions = %d, want %d", s.Count(n), n-len(excluded))
	}
	for _, id := range excluded {
		if s.Selected(id) {
			t.Errorf("excluded id %s should not be selected", id)
		}
	}

	s.Toggle("t500")
	if !s.Selected("t500") {
		t.Error("re-toggling an excluded id should re-select it")
	}

	ids := s.IDs(fullOrder(n))
	if len(ids) != n-2 {
		t.Fatalf("IDs() length = %d, want %d", len(ids), n-2)
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	if _, ok := seen["t10"]; ok {
		t.Error("IDs() should omit excluded t10")
	}
	if _, ok := seen["t999"]; ok {
		t.Error("IDs() should omit excluded t999")
	}
	if _, ok := seen["t500"]; !ok {
		t.Error("IDs() should include re-selected t500")
	}

	// order must follow the full sequence order
	if ids[0] != "t1" || ids[len(ids)-1] != "t1000" {
		t.Errorf("IDs() should preserve sequence order, got first=%s last=%s", ids[0], ids[len(ids)-1])
	}
}

func TestSelectionModeSwitches(t *testing.T) {
	s := NewSelection()

	s.Toggle("t1")
	s.Toggle("t2")
	s.SelectAll()

	if s.Count(100) != 100 {
		t.Errorf("SelectAll should discard partial state, count = %d", s.Count(100))
	}

	s.Toggle("t50")
	s.Clear()

	if s.Count(100) != 0 {
		t.Errorf("Clear should discard complement state, count = %d", s.Count(100))
	}
	if s.Selected("t1") {
		t.Error("nothing should be selected after Clear")
	}
}

func TestSelectionCountClamp(t *testing.T) {
	s := NewSelection()
	s.SelectAll()
	s.Toggle("stale-id")

	// excluded set larger than the known total must not go negative
	if got := s.Count(0); got != 0 {
		t.Errorf("count with stale exclusions = %d, want 0", got)
	}
}
