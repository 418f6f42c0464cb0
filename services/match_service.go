package services

import (
	"context"
	"log"

	"tournament-dashboard/models"
	"tournament-dashboard/repository"
	"tournament-dashboard/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MatchService struct {
	DB   *gorm.DB
	Repo *repository.GormRepository[models.Match]
}

func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{DB: db, Repo: repository.New[models.Match](db)}
}

type MatchInput struct {
	TournamentID string
	HomeTeamID   string
	AwayTeamID   string
	HomeScore    *int
	AwayScore    *int
	MatchDate    string
	MatchTime    string
	Status       string
}

type MatchPatch struct {
	HomeScore Nullable[int]
	AwayScore Nullable[int]
	MatchDate *string
	MatchTime *string
	Status    *string
}

type MatchFilter struct {
	TournamentID string
	HomeTeamID   string
	AwayTeamID   string
	TeamID       string
	Status       string
}

func checkScores(home, away *int) error {
	if (home != nil && *home < 0) || (away != nil && *away < 0) {
		return validationf("scores must not be negative")
	}
	return nil
}

func (s *MatchService) Create(ctx context.Context, actor Actor, in MatchInput) (*models.Match, error) {
	if in.TournamentID == "" || in.HomeTeamID == "" || in.AwayTeamID == "" || in.MatchDate == "" || in.MatchTime == "" {
		return nil, validationf("tournamentId, homeTeamId, awayTeamId, matchDate and matchTime are required")
	}
	if in.HomeTeamID == in.AwayTeamID {
		return nil, validationf("a team cannot play itself")
	}
	date, err := utils.ParseDate(in.MatchDate)
	if err != nil {
		return nil, validationf("matchDate: %v", err)
	}
	if !utils.ValidClock(in.MatchTime) {
		return nil, validationf("matchTime must be HH:MM")
	}
	if err := checkScores(in.HomeScore, in.AwayScore); err != nil {
		return nil, err
	}
	status := models.MatchScheduled
	if in.Status != "" {
		status = models.MatchStatus(in.Status)
		if !status.Valid() {
			return nil, validationf("invalid match status %q", in.Status)
		}
	}

	if _, err := managedTournament(ctx, s.DB, actor, in.TournamentID); err != nil {
		return nil, err
	}

	m := &models.Match{
		ID:           uuid.NewString(),
		TournamentID: in.TournamentID,
		HomeTeamID:   in.HomeTeamID,
		AwayTeamID:   in.AwayTeamID,
		HomeScore:    in.HomeScore,
		AwayScore:    in.AwayScore,
		MatchDate:    date,
		MatchTime:    in.MatchTime,
		Status:       status,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Team{}).
			Where("id IN ? AND tournament_id = ?", []string{m.HomeTeamID, m.AwayTeamID}, m.TournamentID).
			Count(&n).Error; err != nil {
			return err
		}
		if n != 2 {
			return validationf("both teams must belong to the tournament")
		}
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		if countsTowardStandings(m) {
			return applyResult(tx, m, false)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("⚽ [MATCH] scheduled %s vs %s (%s)", m.HomeTeamID, m.AwayTeamID, m.ID)
	return s.Get(ctx, m.ID)
}

// applyResult adds (or, with revert, removes) m's result from both team records.
func applyResult(tx *gorm.DB, m *models.Match, revert bool) error {
	home, away := ResultDeltas(*m.HomeScore, *m.AwayScore)
	if revert {
		home, away = home.Negate(), away.Negate()
	}
	for teamID, d := range map[string]TeamDelta{m.HomeTeamID: home, m.AwayTeamID: away} {
		err := tx.Model(&models.Team{}).Where("id = ?", teamID).Updates(map[string]interface{}{
			"wins":   gorm.Expr("wins + ?", d.Wins),
			"losses": gorm.Expr("losses + ?", d.Losses),
			"draws":  gorm.Expr("draws + ?", d.Draws),
			"points": gorm.Expr("points + ?", d.Points),
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *MatchService) Get(ctx context.Context, id string) (*models.Match, error) {
	m, err := s.Repo.Get(ctx, id,
		repository.Preload{Association: "Tournament"},
		repository.Preload{Association: "HomeTeam"},
		repository.Preload{Association: "AwayTeam"},
	)
	if err != nil {
		return nil, notFound("Match", err)
	}
	return m, nil
}

// List returns fixtures in date order. TeamID matches either side.
func (s *MatchService) List(ctx context.Context, f MatchFilter) ([]models.Match, error) {
	filters := repository.Filters{}.
		Set("tournament_id", f.TournamentID).
		Set("home_team_id", f.HomeTeamID).
		Set("away_team_id", f.AwayTeamID)
	if f.Status != "" {
		if !models.MatchStatus(f.Status).Valid() {
			return nil, validationf("invalid match status %q", f.Status)
		}
		filters.Set("status", f.Status)
	}
	q := repository.Query{
		Filters: filters,
		Order:   "match_date ASC, match_time ASC",
		Preloads: []repository.Preload{
			{Association: "HomeTeam"},
			{Association: "AwayTeam"},
		},
	}
	if f.TeamID != "" {
		teamID := f.TeamID
		q.Scopes = append(q.Scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("home_team_id = ? OR away_team_id = ?", teamID, teamID)
		})
	}
	return s.Repo.List(ctx, q)
}

// Update edits a fixture. Team records always reflect exactly the completed
// matches with both scores: a previously counted result is reverted before
// the new one is applied.
func (s *MatchService) Update(ctx context.Context, actor Actor, id string, p MatchPatch) (*models.Match, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.Match
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, "id = ?", id).Error; err != nil {
			return notFound("Match", err)
		}
		if _, err := managedTournament(ctx, tx, actor, m.TournamentID); err != nil {
			return err
		}

		before := m
		fields := map[string]interface{}{}
		if p.HomeScore.Set {
			m.HomeScore = p.HomeScore.Value
			fields["home_score"] = m.HomeScore
		}
		if p.AwayScore.Set {
			m.AwayScore = p.AwayScore.Value
			fields["away_score"] = m.AwayScore
		}
		if err := checkScores(m.HomeScore, m.AwayScore); err != nil {
			return err
		}
		if v, ok := nonEmpty(p.MatchDate); ok {
			d, err := utils.ParseDate(v)
			if err != nil {
				return validationf("matchDate: %v", err)
			}
			fields["match_date"] = d
		}
		if v, ok := nonEmpty(p.MatchTime); ok {
			if !utils.ValidClock(v) {
				return validationf("matchTime must be HH:MM")
			}
			fields["match_time"] = v
		}
		if v, ok := nonEmpty(p.Status); ok {
			status := models.MatchStatus(v)
			if !status.Valid() {
				return validationf("invalid match status %q", v)
			}
			m.Status = status
			fields["status"] = status
		}
		if len(fields) == 0 {
			return nil
		}

		if countsTowardStandings(&before) {
			if err := applyResult(tx, &before, true); err != nil {
				return err
			}
		}
		if countsTowardStandings(&m) {
			if err := applyResult(tx, &m, false); err != nil {
				return err
			}
		}
		return tx.Model(&models.Match{}).Where("id = ?", id).Updates(fields).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a match, reverting its result from the standings.
func (s *MatchService) Delete(ctx context.Context, actor Actor, id string) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.Match
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, "id = ?", id).Error; err != nil {
			return notFound("Match", err)
		}
		if _, err := managedTournament(ctx, tx, actor, m.TournamentID); err != nil {
			return err
		}
		if countsTowardStandings(&m) {
			if err := applyResult(tx, &m, true); err != nil {
				return err
			}
		}
		return tx.Delete(&models.Match{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}
	log.Printf("🗑️ [MATCH] deleted %s", id)
	return nil
}
