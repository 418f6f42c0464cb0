package models

import (
	"fmt"
	"time"
)

type TournamentStatus string

const (
	TournamentUpcoming  TournamentStatus = "UPCOMING"
	TournamentOngoing   TournamentStatus = "ONGOING"
	TournamentCompleted TournamentStatus = "COMPLETED"
	TournamentCancelled TournamentStatus = "CANCELLED"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentUpcoming, TournamentOngoing, TournamentCompleted, TournamentCancelled:
		return true
	}
	return false
}

// Tournament is owned by its organizer. EntryFee is in minor currency units.
// A nil MaxParticipants means the tournament has no capacity limit.
type Tournament struct {
	ID              string           `json:"id" gorm:"primaryKey"`
	Slug            string           `json:"slug" gorm:"uniqueIndex;not null"`
	Name            string           `json:"name" gorm:"not null"`
	Description     *string          `json:"description"`
	Location        string           `json:"location" gorm:"not null"`
	StartDate       time.Time        `json:"startDate" gorm:"not null;index"`
	StartTime       string           `json:"startTime" gorm:"not null"`
	EndDate         time.Time        `json:"endDate" gorm:"not null"`
	EndTime         string           `json:"endTime" gorm:"not null"`
	Status          TournamentStatus `json:"status" gorm:"type:varchar(16);not null;default:'UPCOMING';index"`
	EntryFee        int64            `json:"entryFee" gorm:"not null;default:0"`
	MaxParticipants *int             `json:"maxParticipants"`
	OrganizerID     string           `json:"organizerId" gorm:"not null;index"`
	Timestamps

	Organizer     *User          `json:"organizer,omitempty" gorm:"foreignKey:OrganizerID;constraint:OnDelete:RESTRICT"`
	Teams         []Team         `json:"teams,omitempty" gorm:"foreignKey:TournamentID;constraint:OnDelete:CASCADE"`
	Matches       []Match        `json:"matches,omitempty" gorm:"foreignKey:TournamentID;constraint:OnDelete:CASCADE"`
	Registrations []Registration `json:"registrations,omitempty" gorm:"foreignKey:TournamentID;constraint:OnDelete:CASCADE"`
	Payments      []Payment      `json:"-" gorm:"foreignKey:TournamentID;constraint:OnDelete:RESTRICT"`

	// Calculated fields (not stored in DB)
	EntryFeeDisplay string            `json:"entryFeeDisplay,omitempty" gorm:"-"`
	Counts          *TournamentCounts `json:"counts,omitempty" gorm:"-"`
}

type TournamentCounts struct {
	Registrations int64 `json:"registrations"`
	Teams         int64 `json:"teams"`
	Matches       int64 `json:"matches"`
}

// AcceptsRegistrations reports whether new registrations may be created.
func (t *Tournament) AcceptsRegistrations() bool {
	return t.Status == TournamentUpcoming || t.Status == TournamentOngoing
}

// HasCapacityFor reports whether one more registration can be approved when
// approved registrations already exist.
func (t *Tournament) HasCapacityFor(approved int64) bool {
	if t.MaxParticipants == nil {
		return true
	}
	return approved < int64(*t.MaxParticipants)
}

// StartsAt combines StartDate and StartTime into a UTC instant.
func (t *Tournament) StartsAt() (time.Time, error) {
	return CombineDateClock(t.StartDate, t.StartTime)
}

// EndsAt combines EndDate and EndTime into a UTC instant.
func (t *Tournament) EndsAt() (time.Time, error) {
	return CombineDateClock(t.EndDate, t.EndTime)
}

// CombineDateClock places an "HH:MM" wall clock on the calendar day of date (UTC).
func CombineDateClock(date time.Time, clock string) (time.Time, error) {
	c, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid clock %q: %w", clock, err)
	}
	y, m, d := date.UTC().Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, time.UTC), nil
}
