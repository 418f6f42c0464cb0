package models

// Team belongs to exactly one tournament.
type Team struct {
	ID           string `json:"id" gorm:"primaryKey"`
	TournamentID string `json:"tournamentId" gorm:"not null;index"`
	Name         string `json:"name" gorm:"not null"`
	Wins         int    `json:"wins" gorm:"not null;default:0"`
	Losses       int    `json:"losses" gorm:"not null;default:0"`
	Draws        int    `json:"draws" gorm:"not null;default:0"`
	Points       int    `json:"points" gorm:"not null;default:0"`
	Timestamps

	Tournament  *Tournament `json:"tournament,omitempty" gorm:"foreignKey:TournamentID"`
	HomeMatches []Match     `json:"homeMatches,omitempty" gorm:"foreignKey:HomeTeamID;constraint:OnDelete:CASCADE"`
	AwayMatches []Match     `json:"awayMatches,omitempty" gorm:"foreignKey:AwayTeamID;constraint:OnDelete:CASCADE"`
}
