package models

import "time"

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "PENDING"
	RegistrationApproved  RegistrationStatus = "APPROVED"
	RegistrationRejected  RegistrationStatus = "REJECTED"
	RegistrationCancelled RegistrationStatus = "CANCELLED"
)

func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationPending, RegistrationApproved, RegistrationRejected, RegistrationCancelled:
		return true
	}
	return false
}

// Active reports whether the registration still occupies the
// (user, tournament) pair.
func (s RegistrationStatus) Active() bool {
	return s != RegistrationCancelled
}

// Registration links one user to one tournament.
type Registration struct {
	ID           string             `json:"id" gorm:"primaryKey"`
	TournamentID string             `json:"tournamentId" gorm:"not null;index"`
	UserID       string             `json:"userId" gorm:"not null;index"`
	Status       RegistrationStatus `json:"status" gorm:"type:varchar(16);not null;default:'PENDING';index"`
	RegisteredAt time.Time          `json:"registeredAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time          `json:"updatedAt" gorm:"autoUpdateTime"`

	Tournament *Tournament `json:"tournament,omitempty" gorm:"foreignKey:TournamentID"`
	User       *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
