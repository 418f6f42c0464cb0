package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"tournament-dashboard/models"
	"tournament-dashboard/repository"
	"tournament-dashboard/utils"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type TournamentService struct {
	DB   *gorm.DB
	Repo *repository.GormRepository[models.Tournament]
}

func NewTournamentService(db *gorm.DB) *TournamentService {
	return &TournamentService{DB: db, Repo: repository.New[models.Tournament](db)}
}

type TournamentInput struct {
	Name            string
	Description     *string
	Location        string
	StartDate       string
	StartTime       string
	EndDate         string
	EndTime         string
	Status          string
	EntryFee        *int64
	MaxParticipants *int
	OrganizerID     string
}

// TournamentPatch holds a partial update. String fields apply only when
// non-empty; Description and MaxParticipants may be cleared with null.
type TournamentPatch struct {
	Name            *string
	Description     Nullable[string]
	Location        *string
	StartDate       *string
	StartTime       *string
	EndDate         *string
	EndTime         *string
	Status          *string
	EntryFee        *int64
	MaxParticipants Nullable[int]
}

type TournamentFilter struct {
	Status      string
	OrganizerID string
}

// schedule is a validated start/end pair.
type schedule struct {
	StartDate time.Time
	StartTime string
	EndDate   time.Time
	EndTime   string
}

func parseSchedule(startDate, startTime, endDate, endTime string) (*schedule, error) {
	sd, err := utils.ParseDate(startDate)
	if err != nil {
		return nil, validationf("startDate: %v", err)
	}
	ed, err := utils.ParseDate(endDate)
	if err != nil {
		return nil, validationf("endDate: %v", err)
	}
	if !utils.ValidClock(startTime) {
		return nil, validationf("startTime must be HH:MM")
	}
	if !utils.ValidClock(endTime) {
		return nil, validationf("endTime must be HH:MM")
	}
	return checkSchedule(sd, startTime, ed, endTime)
}

func checkSchedule(sd time.Time, st string, ed time.Time, et string) (*schedule, error) {
	start, err := models.CombineDateClock(sd, st)
	if err != nil {
		return nil, validationf("startTime must be HH:MM")
	}
	end, err := models.CombineDateClock(ed, et)
	if err != nil {
		return nil, validationf("endTime must be HH:MM")
	}
	if end.Before(start) {
		return nil, validationf("tournament cannot end before it starts")
	}
	return &schedule{StartDate: sd, StartTime: st, EndDate: ed, EndTime: et}, nil
}

func (s *TournamentService) Create(ctx context.Context, actor Actor, in TournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(in.Name)
	location := strings.TrimSpace(in.Location)
	if name == "" || location == "" || in.StartDate == "" || in.StartTime == "" || in.EndDate == "" || in.EndTime == "" {
		return nil, validationf("name, location, startDate, startTime, endDate and endTime are required")
	}

	organizerID := strings.TrimSpace(in.OrganizerID)
	if organizerID == "" {
		organizerID = actor.UserID
	}
	if organizerID != actor.UserID && !actor.IsAdmin() {
		return nil, forbidden("only admins can create tournaments for another organizer")
	}

	sched, err := parseSchedule(in.StartDate, in.StartTime, in.EndDate, in.EndTime)
	if err != nil {
		return nil, err
	}

	status := models.TournamentUpcoming
	if in.Status != "" {
		status = models.TournamentStatus(in.Status)
		if !status.Valid() {
			return nil, validationf("invalid tournament status %q", in.Status)
		}
	}

	var fee int64
	if in.EntryFee != nil {
		fee = *in.EntryFee
	}
	if fee < 0 {
		return nil, validationf("entryFee must not be negative")
	}
	if in.MaxParticipants != nil && *in.MaxParticipants < 1 {
		return nil, validationf("maxParticipants must be at least 1")
	}

	var organizer models.User
	if err := s.DB.WithContext(ctx).First(&organizer, "id = ?", organizerID).Error; err != nil {
		return nil, notFound("User", err)
	}
	if !organizer.Role.CanOrganize() {
		return nil, validationf("organizer must have the ORGANIZER or ADMIN role")
	}

	tournamentSlug, err := s.uniqueSlug(ctx, name)
	if err != nil {
		return nil, err
	}

	t := &models.Tournament{
		ID:              uuid.NewString(),
		Slug:            tournamentSlug,
		Name:            name,
		Description:     in.Description,
		Location:        location,
		StartDate:       sched.StartDate,
		StartTime:       sched.StartTime,
		EndDate:         sched.EndDate,
		EndTime:         sched.EndTime,
		Status:          status,
		EntryFee:        fee,
		MaxParticipants: in.MaxParticipants,
		OrganizerID:     organizerID,
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, duplicate("a tournament with this slug already exists", err)
	}

	log.Printf("🏆 [TOURNAMENT] created %s (%s) by %s", t.Name, t.ID, actor.UserID)
	return s.Get(ctx, t.ID)
}

// uniqueSlug derives a URL slug from name, suffixing it when taken.
func (s *TournamentService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "tournament"
	}
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.Tournament{}).Where("slug = ?", base).Count(&n).Error; err != nil {
		return "", err
	}
	if n == 0 {
		return base, nil
	}
	return base + "-" + uuid.NewString()[:8], nil
}

// publicUserColumns is what tournament pages reveal about organizers and
// registrants. Contact details and roles stay behind the user and
// registration endpoints.
var publicUserColumns = []string{"id", "name", "image"}

func tournamentDetailPreloads() []repository.Preload {
	return []repository.Preload{
		{Association: "Organizer", Columns: publicUserColumns},
		{Association: "Teams", Order: standingsOrder},
		{Association: "Matches", Order: "match_date ASC, match_time ASC"},
		{Association: "Matches.HomeTeam"},
		{Association: "Matches.AwayTeam"},
		{Association: "Registrations", Order: "registered_at DESC"},
		{Association: "Registrations.User", Columns: publicUserColumns},
	}
}

// Get returns a tournament with organizer, standings, fixtures and registrations.
func (s *TournamentService) Get(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.Repo.Get(ctx, id, tournamentDetailPreloads()...)
	if err != nil {
		return nil, notFound("Tournament", err)
	}
	decorateTournamentDetail(t)
	return t, nil
}

func (s *TournamentService) GetBySlug(ctx context.Context, tournamentSlug string) (*models.Tournament, error) {
	var t models.Tournament
	db := repository.ApplyPreloads(s.DB.WithContext(ctx), tournamentDetailPreloads())
	if err := db.First(&t, "slug = ?", tournamentSlug).Error; err != nil {
		return nil, notFound("Tournament", err)
	}
	decorateTournamentDetail(&t)
	return &t, nil
}

func decorateTournamentDetail(t *models.Tournament) {
	SortStandings(t.Teams)
	t.Counts = &models.TournamentCounts{
		Registrations: int64(len(t.Registrations)),
		Teams:         int64(len(t.Teams)),
		Matches:       int64(len(t.Matches)),
	}
	setFeeDisplay(t)
}

func setFeeDisplay(t *models.Tournament) {
	if display, err := utils.FormatMinorUnits(t.EntryFee, utils.DefaultCurrency); err == nil {
		t.EntryFeeDisplay = display
	}
}

// List returns tournaments newest first with child counts.
func (s *TournamentService) List(ctx context.Context, f TournamentFilter) ([]models.Tournament, error) {
	filters := repository.Filters{}
	if f.Status != "" {
		if !models.TournamentStatus(f.Status).Valid() {
			return nil, validationf("invalid tournament status %q", f.Status)
		}
		filters.Set("status", f.Status)
	}
	filters.Set("organizer_id", f.OrganizerID)

	list, err := s.Repo.List(ctx, repository.Query{
		Filters:  filters,
		Order:    "created_at DESC",
		Preloads: []repository.Preload{{Association: "Organizer", Columns: publicUserColumns}},
	})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return list, nil
	}

	ids := make([]string, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	regs, err := countByTournament(ctx, s.DB, &models.Registration{}, ids)
	if err != nil {
		return nil, err
	}
	teams, err := countByTournament(ctx, s.DB, &models.Team{}, ids)
	if err != nil {
		return nil, err
	}
	matches, err := countByTournament(ctx, s.DB, &models.Match{}, ids)
	if err != nil {
		return nil, err
	}

	for i := range list {
		id := list[i].ID
		list[i].Counts = &models.TournamentCounts{Registrations: regs[id], Teams: teams[id], Matches: matches[id]}
		setFeeDisplay(&list[i])
	}
	return list, nil
}

func countByTournament(ctx context.Context, db *gorm.DB, model interface{}, ids []string) (map[string]int64, error) {
	var rows []struct {
		TournamentID string
		N            int64
	}
	err := db.WithContext(ctx).Model(model).
		Select("tournament_id, COUNT(*) AS n").
		Where("tournament_id IN ?", ids).
		Group("tournament_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.TournamentID] = r.N
	}
	return out, nil
}

// Update applies a partial update under the tournament row lock so that a
// lowered capacity is checked against a stable approved count.
func (s *TournamentService) Update(ctx context.Context, actor Actor, id string, p TournamentPatch) (*models.Tournament, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := lockTournament(tx, id)
		if err != nil {
			return err
		}
		if !actor.Manages(t) {
			return forbidden("only the tournament organizer or an admin can edit this tournament")
		}

		fields := map[string]interface{}{}
		if v, ok := nonEmpty(p.Name); ok {
			fields["name"] = strings.TrimSpace(v)
		}
		if v, ok := nonEmpty(p.Location); ok {
			fields["location"] = strings.TrimSpace(v)
		}
		if p.Description.Set {
			fields["description"] = p.Description.Value
		}
		if v, ok := nonEmpty(p.Status); ok {
			if !models.TournamentStatus(v).Valid() {
				return validationf("invalid tournament status %q", v)
			}
			fields["status"] = v
		}
		if p.EntryFee != nil {
			if *p.EntryFee < 0 {
				return validationf("entryFee must not be negative")
			}
			fields["entry_fee"] = *p.EntryFee
		}

		if p.MaxParticipants.Set {
			if limit := p.MaxParticipants.Value; limit != nil {
				if *limit < 1 {
					return validationf("maxParticipants must be at least 1")
				}
				var approved int64
				if err := tx.Model(&models.Registration{}).
					Where("tournament_id = ? AND status = ?", id, models.RegistrationApproved).
					Count(&approved).Error; err != nil {
					return err
				}
				if approved > int64(*limit) {
					return conflictf("maxParticipants cannot be lower than the %d approved registrations", approved)
				}
			}
			fields["max_participants"] = p.MaxParticipants.Value
		}

		if err := applySchedulePatch(t, p, fields); err != nil {
			return err
		}

		if len(fields) == 0 {
			return nil
		}
		return tx.Model(t).Updates(fields).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✏️ [TOURNAMENT] updated %s by %s", id, actor.UserID)
	return s.Get(ctx, id)
}

func applySchedulePatch(t *models.Tournament, p TournamentPatch, fields map[string]interface{}) error {
	sd, st, ed, et := t.StartDate, t.StartTime, t.EndDate, t.EndTime
	changed := false
	if v, ok := nonEmpty(p.StartDate); ok {
		d, err := utils.ParseDate(v)
		if err != nil {
			return validationf("startDate: %v", err)
		}
		sd, changed = d, true
		fields["start_date"] = d
	}
	if v, ok := nonEmpty(p.EndDate); ok {
		d, err := utils.ParseDate(v)
		if err != nil {
			return validationf("endDate: %v", err)
		}
		ed, changed = d, true
		fields["end_date"] = d
	}
	if v, ok := nonEmpty(p.StartTime); ok {
		if !utils.ValidClock(v) {
			return validationf("startTime must be HH:MM")
		}
		st, changed = v, true
		fields["start_time"] = v
	}
	if v, ok := nonEmpty(p.EndTime); ok {
		if !utils.ValidClock(v) {
			return validationf("endTime must be HH:MM")
		}
		et, changed = v, true
		fields["end_time"] = v
	}
	if !changed {
		return nil
	}
	_, err := checkSchedule(sd, st, ed, et)
	return err
}

// Delete removes a tournament with its matches, teams and registrations.
// Tournaments referenced by payments are kept.
func (s *TournamentService) Delete(ctx context.Context, actor Actor, id string) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := lockTournament(tx, id)
		if err != nil {
			return err
		}
		if !actor.Manages(t) {
			return forbidden("only the tournament organizer or an admin can delete this tournament")
		}

		var payments int64
		if err := tx.Model(&models.Payment{}).Where("tournament_id = ?", id).Count(&payments).Error; err != nil {
			return err
		}
		if payments > 0 {
			return conflictf("tournament has %d payments and cannot be deleted", payments)
		}

		for _, child := range []interface{}{&models.Match{}, &models.Team{}, &models.Registration{}} {
			if err := tx.Where("tournament_id = ?", id).Delete(child).Error; err != nil {
				return fmt.Errorf("delete tournament children: %w", err)
			}
		}
		return tx.Delete(&models.Tournament{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}
	log.Printf("🗑️ [TOURNAMENT] deleted %s by %s", id, actor.UserID)
	return nil
}

// managedTournament loads tournament id and checks actor may administer it.
func managedTournament(ctx context.Context, db *gorm.DB, actor Actor, id string) (*models.Tournament, error) {
	var t models.Tournament
	if err := db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, notFound("Tournament", err)
	}
	if !actor.Manages(&t) {
		return nil, forbidden("only the tournament organizer or an admin can manage this tournament")
	}
	return &t, nil
}
