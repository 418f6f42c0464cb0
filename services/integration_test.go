package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"tournament-dashboard/db"
	"tournament-dashboard/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// openTestDB connects to TEST_DATABASE_URL and migrates it. Tests using it
// are skipped when the variable is unset.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	gdb, err := db.Connect(dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, role models.Role) models.User {
	t.Helper()
	u := models.User{ID: uuid.NewString(), Email: uuid.NewString() + "@example.com", Role: role}
	if err := gdb.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedTournament(t *testing.T, gdb *gorm.DB, organizer models.User, capacity *int) *models.Tournament {
	t.Helper()
	svc := NewTournamentService(gdb)
	tour, err := svc.Create(context.Background(), Actor{UserID: organizer.ID, Role: organizer.Role}, TournamentInput{
		Name:            "Integration Cup",
		Location:        "Hall 1",
		StartDate:       "2030-05-01",
		StartTime:       "09:00",
		EndDate:         "2030-05-02",
		EndTime:         "18:00",
		MaxParticipants: capacity,
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	return tour
}

func TestIntegrationConcurrentApprovals(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	org := seedUser(t, gdb, models.RoleOrganizer)
	tour := seedTournament(t, gdb, org, intPtr(3))
	organizer := Actor{UserID: org.ID, Role: org.Role}

	regs := NewRegistrationService(gdb)
	var ids []string
	for i := 0; i < 10; i++ {
		u := seedUser(t, gdb, models.RoleUser)
		reg, err := regs.Register(ctx, Actor{UserID: u.ID, Role: u.Role}, RegisterInput{TournamentID: tour.ID})
		if err != nil {
			t.Fatalf("register: %v", err)
		}
		ids = append(ids, reg.ID)
	}

	var wg sync.WaitGroup
	results := make(chan error, len(ids))
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := regs.ChangeStatus(ctx, organizer, id, models.RegistrationApproved)
			results <- err
		}(id)
	}
	wg.Wait()
	close(results)

	ok, full := 0, 0
	for err := range results {
		var conflict *ConflictError
		switch {
		case err == nil:
			ok++
		case errors.As(err, &conflict):
			full++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 3 || full != 7 {
		t.Errorf("approved=%d conflicts=%d, want 3 and 7", ok, full)
	}

	var approved int64
	gdb.Model(&models.Registration{}).
		Where("tournament_id = ? AND status = ?", tour.ID, models.RegistrationApproved).
		Count(&approved)
	if approved != 3 {
		t.Errorf("approved rows = %d, want 3", approved)
	}
}

func TestIntegrationDuplicateActiveRegistration(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	org := seedUser(t, gdb, models.RoleOrganizer)
	tour := seedTournament(t, gdb, org, nil)
	u := seedUser(t, gdb, models.RoleUser)
	actor := Actor{UserID: u.ID, Role: u.Role}

	regs := NewRegistrationService(gdb)
	first, err := regs.Register(ctx, actor, RegisterInput{TournamentID: tour.ID})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err = regs.Register(ctx, actor, RegisterInput{TournamentID: tour.ID})
	assertErrorKind(t, err, (*ConflictError)(nil))

	if _, err := regs.ChangeStatus(ctx, actor, first.ID, models.RegistrationCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := regs.Register(ctx, actor, RegisterInput{TournamentID: tour.ID}); err != nil {
		t.Fatalf("re-register after cancel: %v", err)
	}
}

func TestIntegrationStandingsFollowMatches(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	org := seedUser(t, gdb, models.RoleOrganizer)
	tour := seedTournament(t, gdb, org, nil)
	actor := Actor{UserID: org.ID, Role: org.Role}

	teams := NewTeamService(gdb)
	home, err := teams.Create(ctx, actor, TeamInput{TournamentID: tour.ID, Name: "Home"})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	away, err := teams.Create(ctx, actor, TeamInput{TournamentID: tour.ID, Name: "Away"})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}

	matches := NewMatchService(gdb)
	m, err := matches.Create(ctx, actor, MatchInput{
		TournamentID: tour.ID,
		HomeTeamID:   home.ID,
		AwayTeamID:   away.ID,
		HomeScore:    intPtr(2),
		AwayScore:    intPtr(1),
		MatchDate:    "2030-05-01",
		MatchTime:    "10:00",
		Status:       string(models.MatchCompleted),
	})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}

	standings, err := teams.List(ctx, tour.ID)
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if standings[0].ID != home.ID || standings[0].Points != 3 || standings[1].Losses != 1 {
		t.Errorf("standings after win = %+v", standings)
	}

	if err := matches.Delete(ctx, actor, m.ID); err != nil {
		t.Fatalf("delete match: %v", err)
	}
	standings, _ = teams.List(ctx, tour.ID)
	for _, team := range standings {
		if team.Points != 0 || team.Wins != 0 || team.Losses != 0 {
			t.Errorf("team %s not reverted: %+v", team.Name, team)
		}
	}
}

func TestIntegrationTournamentDeleteCascades(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	org := seedUser(t, gdb, models.RoleOrganizer)
	tour := seedTournament(t, gdb, org, nil)
	actor := Actor{UserID: org.ID, Role: org.Role}

	teams := NewTeamService(gdb)
	home, err := teams.Create(ctx, actor, TeamInput{TournamentID: tour.ID, Name: "Home"})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	away, err := teams.Create(ctx, actor, TeamInput{TournamentID: tour.ID, Name: "Away"})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	if _, err := NewMatchService(gdb).Create(ctx, actor, MatchInput{
		TournamentID: tour.ID,
		HomeTeamID:   home.ID,
		AwayTeamID:   away.ID,
		MatchDate:    "2030-05-01",
		MatchTime:    "10:00",
	}); err != nil {
		t.Fatalf("create match: %v", err)
	}
	u := seedUser(t, gdb, models.RoleUser)
	if _, err := NewRegistrationService(gdb).Register(ctx, Actor{UserID: u.ID, Role: u.Role}, RegisterInput{TournamentID: tour.ID}); err != nil {
		t.Fatalf("register: %v", err)
	}

	svc := NewTournamentService(gdb)
	if err := svc.Delete(ctx, actor, tour.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = svc.Get(ctx, tour.ID)
	assertErrorKind(t, err, (*NotFoundError)(nil))

	var teamCount, matchCount, regCount int64
	gdb.Model(&models.Team{}).Where("tournament_id = ?", tour.ID).Count(&teamCount)
	gdb.Model(&models.Match{}).Where("tournament_id = ?", tour.ID).Count(&matchCount)
	gdb.Model(&models.Registration{}).Where("tournament_id = ?", tour.ID).Count(&regCount)
	if teamCount != 0 || matchCount != 0 || regCount != 0 {
		t.Errorf("leftover teams=%d matches=%d registrations=%d", teamCount, matchCount, regCount)
	}
}

func seedPayment(t *testing.T, gdb *gorm.DB, u models.User, tour *models.Tournament) *models.Payment {
	t.Helper()
	amount := int64(1500)
	p, err := NewPaymentService(gdb).Create(context.Background(), PaymentInput{
		UserID:       u.ID,
		TournamentID: tour.ID,
		Amount:       &amount,
		Currency:     "EUR",
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	return p
}

func TestIntegrationTournamentWithPaymentsIsKept(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	org := seedUser(t, gdb, models.RoleOrganizer)
	tour := seedTournament(t, gdb, org, nil)
	p := seedPayment(t, gdb, seedUser(t, gdb, models.RoleUser), tour)
	if p.Currency != "eur" || p.Status != models.PaymentPending || p.DisplayAmount != "15.00 EUR" {
		t.Errorf("payment = %+v", p)
	}

	svc := NewTournamentService(gdb)
	err := svc.Delete(ctx, Actor{UserID: org.ID, Role: org.Role}, tour.ID)
	assertErrorKind(t, err, (*ConflictError)(nil))
	if _, err := svc.Get(ctx, tour.ID); err != nil {
		t.Errorf("tournament gone after refused delete: %v", err)
	}
}

func TestIntegrationTournamentDefaults(t *testing.T) {
	gdb := openTestDB(t)
	org := seedUser(t, gdb, models.RoleOrganizer)
	created := seedTournament(t, gdb, org, nil)

	got, err := NewTournamentService(gdb).Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	raw, _ := json.Marshal(got)
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["entryFee"] != float64(0) {
		t.Errorf("entryFee = %v, want 0", body["entryFee"])
	}
	if v, ok := body["maxParticipants"]; !ok || v != nil {
		t.Errorf("maxParticipants = %v (present %v), want null", v, ok)
	}
	if body["status"] != "UPCOMING" {
		t.Errorf("status = %v, want UPCOMING", body["status"])
	}
	if body["slug"] == "" || body["organizerId"] != org.ID {
		t.Errorf("unexpected body %v", body)
	}
}

func TestIntegrationTournamentDetailHidesEmails(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	org := seedUser(t, gdb, models.RoleOrganizer)
	tour := seedTournament(t, gdb, org, nil)
	u := seedUser(t, gdb, models.RoleUser)
	if _, err := NewRegistrationService(gdb).Register(ctx, Actor{UserID: u.ID, Role: u.Role}, RegisterInput{TournamentID: tour.ID}); err != nil {
		t.Fatalf("register: %v", err)
	}

	svc := NewTournamentService(gdb)
	detail, err := svc.Get(ctx, tour.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(detail.Registrations) != 1 || detail.Registrations[0].User == nil || detail.Registrations[0].User.ID != u.ID {
		t.Fatalf("registrant summary missing: %+v", detail.Registrations)
	}
	raw, _ := json.Marshal(detail)
	for _, email := range []string{org.Email, u.Email} {
		if strings.Contains(string(raw), email) {
			t.Errorf("tournament detail exposes %s", email)
		}
	}

	list, err := svc.List(ctx, TournamentFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	raw, _ = json.Marshal(list)
	if strings.Contains(string(raw), org.Email) {
		t.Errorf("tournament list exposes organizer email")
	}
}

func TestIntegrationTeamListOrdering(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	org := seedUser(t, gdb, models.RoleOrganizer)
	tour := seedTournament(t, gdb, org, nil)
	actor := Actor{UserID: org.ID, Role: org.Role}

	teams := NewTeamService(gdb)
	for _, in := range []TeamInput{
		{Name: "Charlie", Points: intPtr(3), Wins: intPtr(1)},
		{Name: "Bravo", Points: intPtr(3), Wins: intPtr(1)},
		{Name: "Alpha", Points: intPtr(1)},
		{Name: "Delta", Points: intPtr(3), Wins: intPtr(0), Draws: intPtr(3)},
	} {
		in.TournamentID = tour.ID
		if _, err := teams.Create(ctx, actor, in); err != nil {
			t.Fatalf("create team %s: %v", in.Name, err)
		}
	}

	names := func() string {
		list, err := teams.List(ctx, tour.ID)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		out := make([]string, 0, len(list))
		for _, team := range list {
			out = append(out, team.Name)
		}
		return strings.Join(out, ",")
	}
	first := names()
	if first != "Bravo,Charlie,Delta,Alpha" {
		t.Errorf("standings = %s", first)
	}
	if again := names(); again != first {
		t.Errorf("second listing %s differs from %s", again, first)
	}
}

func TestIntegrationUserDeleteConflicts(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	users := NewUserService(gdb, nil)

	org := seedUser(t, gdb, models.RoleOrganizer)
	tour := seedTournament(t, gdb, org, nil)
	assertErrorKind(t, users.Delete(ctx, org.ID), (*ConflictError)(nil))

	payer := seedUser(t, gdb, models.RoleUser)
	seedPayment(t, gdb, payer, tour)
	assertErrorKind(t, users.Delete(ctx, payer.ID), (*ConflictError)(nil))

	plain := seedUser(t, gdb, models.RoleUser)
	if _, err := NewRegistrationService(gdb).Register(ctx, Actor{UserID: plain.ID, Role: plain.Role}, RegisterInput{TournamentID: tour.ID}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := users.Delete(ctx, plain.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var regs int64
	gdb.Model(&models.Registration{}).Where("user_id = ?", plain.ID).Count(&regs)
	if regs != 0 {
		t.Errorf("registrations left after user delete: %d", regs)
	}
	assertErrorKind(t, users.Delete(ctx, plain.ID), (*NotFoundError)(nil))
}
