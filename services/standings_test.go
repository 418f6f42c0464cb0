package services

import (
	"testing"

	"tournament-dashboard/models"
)

func TestSortStandings(t *testing.T) {
	teams := []models.Team{
		{ID: "d", Name: "Delta", Points: 6, Wins: 2},
		{ID: "b", Name: "Bravo", Points: 7, Wins: 2},
		{ID: "c2", Name: "Charlie", Points: 6, Wins: 2},
		{ID: "a", Name: "Alpha", Points: 6, Wins: 1},
		{ID: "c1", Name: "Charlie", Points: 6, Wins: 2},
	}
	SortStandings(teams)

	want := []string{"b", "c1", "c2", "d", "a"}
	for i, id := range want {
		if teams[i].ID != id {
			t.Fatalf("position %d: got %s, want %s (order %v)", i, teams[i].ID, id, ids(teams))
		}
	}
}

func ids(teams []models.Team) []string {
	out := make([]string, len(teams))
	for i, tm := range teams {
		out[i] = tm.ID
	}
	return out
}

func TestResultDeltas(t *testing.T) {
	tests := []struct {
		home, away int
		wantHome   TeamDelta
		wantAway   TeamDelta
	}{
		{2, 1, TeamDelta{Wins: 1, Points: 3}, TeamDelta{Losses: 1}},
		{0, 3, TeamDelta{Losses: 1}, TeamDelta{Wins: 1, Points: 3}},
		{1, 1, TeamDelta{Draws: 1, Points: 1}, TeamDelta{Draws: 1, Points: 1}},
	}
	for _, tt := range tests {
		h, a := ResultDeltas(tt.home, tt.away)
		if h != tt.wantHome || a != tt.wantAway {
			t.Errorf("ResultDeltas(%d, %d) = %+v, %+v", tt.home, tt.away, h, a)
		}
	}

	h, _ := ResultDeltas(3, 0)
	if n := h.Negate(); n.Wins != -1 || n.Points != -3 {
		t.Errorf("Negate = %+v", n)
	}
}
