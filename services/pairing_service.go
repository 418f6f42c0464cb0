package services

import (
	"context"
	"log"

	"tournament-dashboard/models"
	"tournament-dashboard/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PairingService generates round-robin fixtures for a tournament's teams.
type PairingService struct {
	DB *gorm.DB
}

func NewPairingService(db *gorm.DB) *PairingService {
	return &PairingService{DB: db}
}

// Pair is one fixture of a round. Round numbers start at 1.
type Pair struct {
	HomeTeamID string `json:"homeTeamId"`
	AwayTeamID string `json:"awayTeamId"`
	Round      int    `json:"round"`
}

// PairingInput controls fixture placement. Blank StartDate and MatchTime
// fall back to the tournament's start; DaysBetweenRounds defaults to 1.
type PairingInput struct {
	StartDate         string
	MatchTime         string
	DaysBetweenRounds *int
}

// RoundRobinPairs schedules every team against every other team exactly
// once using the circle method. With an odd team count one team sits out
// each round. Home and away alternate for the fixed team.
func RoundRobinPairs(teamIDs []string) []Pair {
	n := len(teamIDs)
	if n < 2 {
		return nil
	}
	ring := append([]string(nil), teamIDs...)
	if n%2 == 1 {
		ring = append(ring, "")
		n++
	}

	pairs := make([]Pair, 0, n*(n-1)/2)
	for round := 1; round < n; round++ {
		for i := 0; i < n/2; i++ {
			home, away := ring[i], ring[n-1-i]
			if home == "" || away == "" {
				continue
			}
			if i == 0 && round%2 == 0 {
				home, away = away, home
			}
			pairs = append(pairs, Pair{HomeTeamID: home, AwayTeamID: away, Round: round})
		}
		// rotate everything but the first slot
		last := ring[n-1]
		copy(ring[2:], ring[1:n-1])
		ring[1] = last
	}
	return pairs
}

// Generate creates SCHEDULED matches for a full round robin. It refuses to
// run when the tournament already has matches.
func (ps *PairingService) Generate(ctx context.Context, actor Actor, tournamentID string, in PairingInput) ([]models.Match, error) {
	t, err := managedTournament(ctx, ps.DB, actor, tournamentID)
	if err != nil {
		return nil, err
	}

	start := t.StartDate
	if in.StartDate != "" {
		if start, err = utils.ParseDate(in.StartDate); err != nil {
			return nil, validationf("startDate: %v", err)
		}
	}
	clock := t.StartTime
	if in.MatchTime != "" {
		clock = in.MatchTime
	}
	if !utils.ValidClock(clock) {
		return nil, validationf("matchTime must be HH:MM")
	}
	gap := 1
	if in.DaysBetweenRounds != nil {
		gap = *in.DaysBetweenRounds
	}
	if gap < 0 {
		return nil, validationf("daysBetweenRounds must not be negative")
	}

	var created []models.Match
	err = ps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockTournament(tx, t.ID); err != nil {
			return err
		}
		var existing int64
		if err := tx.Model(&models.Match{}).Where("tournament_id = ?", t.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return conflictf("tournament already has %d match(es)", existing)
		}

		var teamIDs []string
		if err := tx.Model(&models.Team{}).
			Where("tournament_id = ?", t.ID).
			Order("name ASC, id ASC").
			Pluck("id", &teamIDs).Error; err != nil {
			return err
		}
		pairs := RoundRobinPairs(teamIDs)
		if len(pairs) == 0 {
			return validationf("at least two teams are required to generate pairings")
		}

		created = make([]models.Match, 0, len(pairs))
		for _, p := range pairs {
			created = append(created, models.Match{
				ID:           uuid.NewString(),
				TournamentID: t.ID,
				HomeTeamID:   p.HomeTeamID,
				AwayTeamID:   p.AwayTeamID,
				MatchDate:    start.AddDate(0, 0, (p.Round-1)*gap),
				MatchTime:    clock,
				Status:       models.MatchScheduled,
			})
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🎲 [PAIRING] %d match(es) generated for %s", len(created), t.Name)
	return created, nil
}
