package models

import "time"

type MatchStatus string

const (
	MatchScheduled  MatchStatus = "SCHEDULED"
	MatchInProgress MatchStatus = "IN_PROGRESS"
	MatchCompleted  MatchStatus = "COMPLETED"
	MatchCancelled  MatchStatus = "CANCELLED"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchScheduled, MatchInProgress, MatchCompleted, MatchCancelled:
		return true
	}
	return false
}

// Match is a fixture between two teams of the same tournament.
type Match struct {
	ID           string      `json:"id" gorm:"primaryKey"`
	TournamentID string      `json:"tournamentId" gorm:"not null;index"`
	HomeTeamID   string      `json:"homeTeamId" gorm:"not null;index"`
	AwayTeamID   string      `json:"awayTeamId" gorm:"not null;index"`
	HomeScore    *int        `json:"homeScore"`
	AwayScore    *int        `json:"awayScore"`
	MatchDate    time.Time   `json:"matchDate" gorm:"not null;index"`
	MatchTime    string      `json:"matchTime" gorm:"not null"`
	Status       MatchStatus `json:"status" gorm:"type:varchar(16);not null;default:'SCHEDULED';index"`
	Timestamps

	Tournament *Tournament `json:"tournament,omitempty" gorm:"foreignKey:TournamentID"`
	HomeTeam   *Team       `json:"homeTeam,omitempty" gorm:"foreignKey:HomeTeamID"`
	AwayTeam   *Team       `json:"awayTeam,omitempty" gorm:"foreignKey:AwayTeamID"`
}

// HasResult reports whether both scores are recorded.
func (m *Match) HasResult() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}
