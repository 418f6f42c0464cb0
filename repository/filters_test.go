package repository

import "testing"

func TestFiltersSetSkipsBlank(t *testing.T) {
	f := Filters{}
	f.Set("status", "UPCOMING").Set("organizer_id", "  ").Set("user_id", "")
	if len(f) != 1 {
		t.Fatalf("expected 1 filter, got %v", f)
	}
	if f["status"] != "UPCOMING" {
		t.Errorf("status filter = %v", f["status"])
	}
}

func TestFiltersSetTrims(t *testing.T) {
	f := Filters{}.Set("tournament_id", " abc ")
	if f["tournament_id"] != "abc" {
		t.Errorf("tournament_id = %q", f["tournament_id"])
	}
}
