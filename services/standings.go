package services

import (
	"sort"

	"tournament-dashboard/models"
)

// standingsOrder pre-sorts in SQL; SortStandings is the authoritative order.
const standingsOrder = "points DESC, wins DESC, name ASC, id ASC"

// SortStandings orders teams by points, then wins (both descending), then
// name and id so that equal records always come back in the same order.
func SortStandings(teams []models.Team) {
	sort.SliceStable(teams, func(i, j int) bool {
		a, b := teams[i], teams[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

const (
	pointsForWin  = 3
	pointsForDraw = 1
)

// TeamDelta is a change to a team's record caused by one match result.
type TeamDelta struct {
	Wins   int
	Losses int
	Draws  int
	Points int
}

// Negate returns the delta that undoes d.
func (d TeamDelta) Negate() TeamDelta {
	return TeamDelta{Wins: -d.Wins, Losses: -d.Losses, Draws: -d.Draws, Points: -d.Points}
}

// ResultDeltas returns the record changes for the home and away team of a
// finished match.
func ResultDeltas(homeScore, awayScore int) (home, away TeamDelta) {
	switch {
	case homeScore > awayScore:
		return TeamDelta{Wins: 1, Points: pointsForWin}, TeamDelta{Losses: 1}
	case homeScore < awayScore:
		return TeamDelta{Losses: 1}, TeamDelta{Wins: 1, Points: pointsForWin}
	default:
		return TeamDelta{Draws: 1, Points: pointsForDraw}, TeamDelta{Draws: 1, Points: pointsForDraw}
	}
}

// countsTowardStandings reports whether m's result is reflected in team records.
func countsTowardStandings(m *models.Match) bool {
	return m.Status == models.MatchCompleted && m.HasResult()
}
