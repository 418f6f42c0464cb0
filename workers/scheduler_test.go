package workers

import (
	"testing"
	"time"

	"tournament-dashboard/models"
)

func TestNextStatus(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 5, d, 0, 0, 0, 0, time.UTC) }
	tour := func(status models.TournamentStatus) *models.Tournament {
		return &models.Tournament{Status: status, StartDate: day(10), StartTime: "09:00", EndDate: day(12), EndTime: "18:00"}
	}

	tests := []struct {
		name   string
		status models.TournamentStatus
		now    time.Time
		want   models.TournamentStatus
		moved  bool
	}{
		{"before start", models.TournamentUpcoming, day(10).Add(8 * time.Hour), models.TournamentUpcoming, false},
		{"at start", models.TournamentUpcoming, day(10).Add(9 * time.Hour), models.TournamentOngoing, true},
		{"running", models.TournamentOngoing, day(11), models.TournamentOngoing, false},
		{"at end", models.TournamentOngoing, day(12).Add(18 * time.Hour), models.TournamentCompleted, true},
		{"missed whole window", models.TournamentUpcoming, day(20), models.TournamentCompleted, true},
		{"cancelled stays", models.TournamentCancelled, day(20), models.TournamentCancelled, false},
		{"completed stays", models.TournamentCompleted, day(1), models.TournamentCompleted, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, moved := NextStatus(tour(tt.status), tt.now)
			if got != tt.want || moved != tt.moved {
				t.Fatalf("NextStatus = %s, %v; want %s, %v", got, moved, tt.want, tt.moved)
			}
		})
	}
}

func TestNextStatusBadClock(t *testing.T) {
	tour := &models.Tournament{Status: models.TournamentUpcoming, StartDate: time.Now(), StartTime: "late", EndDate: time.Now(), EndTime: "18:00"}
	if _, moved := NextStatus(tour, time.Now().Add(48*time.Hour)); moved {
		t.Fatal("tournament with unparseable clock advanced")
	}
}
