package services

import (
	"context"
	"log"
	"strings"

	"tournament-dashboard/models"
	"tournament-dashboard/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TeamService struct {
	DB   *gorm.DB
	Repo *repository.GormRepository[models.Team]
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{DB: db, Repo: repository.New[models.Team](db)}
}

type TeamInput struct {
	TournamentID string
	Name         string
	Wins         *int
	Losses       *int
	Draws        *int
	Points       *int
}

type TeamPatch struct {
	Name   *string
	Wins   *int
	Losses *int
	Draws  *int
	Points *int
}

func orZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func checkRecord(fields map[string]*int) error {
	for name, v := range fields {
		if v != nil && *v < 0 {
			return validationf("%s must not be negative", name)
		}
	}
	return nil
}

func (s *TeamService) Create(ctx context.Context, actor Actor, in TeamInput) (*models.Team, error) {
	name := strings.TrimSpace(in.Name)
	if in.TournamentID == "" || name == "" {
		return nil, validationf("tournamentId and name are required")
	}
	if err := checkRecord(map[string]*int{"wins": in.Wins, "losses": in.Losses, "draws": in.Draws, "points": in.Points}); err != nil {
		return nil, err
	}
	if _, err := managedTournament(ctx, s.DB, actor, in.TournamentID); err != nil {
		return nil, err
	}

	team := &models.Team{
		ID:           uuid.NewString(),
		TournamentID: in.TournamentID,
		Name:         name,
		Wins:         orZero(in.Wins),
		Losses:       orZero(in.Losses),
		Draws:        orZero(in.Draws),
		Points:       orZero(in.Points),
	}
	if err := s.Repo.Create(ctx, team); err != nil {
		return nil, err
	}
	log.Printf("👥 [TEAM] created %s in tournament %s", team.Name, team.TournamentID)
	return s.Get(ctx, team.ID)
}

// Get returns a team with its tournament and fixtures.
func (s *TeamService) Get(ctx context.Context, id string) (*models.Team, error) {
	team, err := s.Repo.Get(ctx, id,
		repository.Preload{Association: "Tournament"},
		repository.Preload{Association: "HomeMatches", Order: "match_date ASC, match_time ASC"},
		repository.Preload{Association: "HomeMatches.AwayTeam"},
		repository.Preload{Association: "AwayMatches", Order: "match_date ASC, match_time ASC"},
		repository.Preload{Association: "AwayMatches.HomeTeam"},
	)
	if err != nil {
		return nil, notFound("Team", err)
	}
	return team, nil
}

// List returns teams in standings order.
func (s *TeamService) List(ctx context.Context, tournamentID string) ([]models.Team, error) {
	teams, err := s.Repo.List(ctx, repository.Query{
		Filters:  repository.Filters{}.Set("tournament_id", tournamentID),
		Order:    standingsOrder,
		Preloads: []repository.Preload{{Association: "Tournament"}},
	})
	if err != nil {
		return nil, err
	}
	SortStandings(teams)
	return teams, nil
}

func (s *TeamService) managedTeam(ctx context.Context, actor Actor, id string) (*models.Team, error) {
	team, err := s.Repo.Get(ctx, id, repository.Preload{Association: "Tournament"})
	if err != nil {
		return nil, notFound("Team", err)
	}
	if team.Tournament == nil || !actor.Manages(team.Tournament) {
		return nil, forbidden("only the tournament organizer or an admin can manage its teams")
	}
	return team, nil
}

func (s *TeamService) Update(ctx context.Context, actor Actor, id string, p TeamPatch) (*models.Team, error) {
	if _, err := s.managedTeam(ctx, actor, id); err != nil {
		return nil, err
	}
	if err := checkRecord(map[string]*int{"wins": p.Wins, "losses": p.Losses, "draws": p.Draws, "points": p.Points}); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if v, ok := nonEmpty(p.Name); ok {
		fields["name"] = strings.TrimSpace(v)
	}
	for column, v := range map[string]*int{"wins": p.Wins, "losses": p.Losses, "draws": p.Draws, "points": p.Points} {
		if v != nil {
			fields[column] = *v
		}
	}
	if err := s.Repo.Update(ctx, id, fields); err != nil {
		return nil, notFound("Team", err)
	}
	return s.Get(ctx, id)
}

// Delete removes a team and the matches it plays in. Opponents lose the
// results of those matches.
func (s *TeamService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := s.managedTeam(ctx, actor, id); err != nil {
		return err
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var matches []models.Match
		if err := tx.Where("home_team_id = ? OR away_team_id = ?", id, id).Find(&matches).Error; err != nil {
			return err
		}
		for i := range matches {
			if countsTowardStandings(&matches[i]) {
				if err := applyResult(tx, &matches[i], true); err != nil {
					return err
				}
			}
		}
		if err := tx.Where("home_team_id = ? OR away_team_id = ?", id, id).Delete(&models.Match{}).Error; err != nil {
			return err
		}
		return s.Repo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return notFound("Team", err)
	}
	log.Printf("🗑️ [TEAM] deleted %s", id)
	return nil
}
