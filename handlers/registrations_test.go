package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"tournament-dashboard/middleware"
	"tournament-dashboard/models"
	"tournament-dashboard/repository"
	"tournament-dashboard/services"

	"github.com/gofiber/fiber/v2"
)

type tokenResolver map[string]*models.User

func (r tokenResolver) Resolve(ctx context.Context, token string) (*models.User, error) {
	if u, ok := r[token]; ok {
		return u, nil
	}
	return nil, &services.UnauthorizedError{Message: "invalid or expired token"}
}

// registrationFake backs both the store and the repository of a
// RegistrationService.
type registrationFake struct {
	mu         sync.Mutex
	tournament *models.Tournament
	regs       map[string]*models.Registration
}

func (f *registrationFake) Create(ctx context.Context, reg *models.Registration, check func(t *models.Tournament, active int64) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if reg.TournamentID != f.tournament.ID {
		return &services.NotFoundError{Entity: "Tournament"}
	}
	var active int64
	for _, r := range f.regs {
		if r.UserID == reg.UserID && r.Status.Active() {
			active++
		}
	}
	if err := check(f.tournament, active); err != nil {
		return err
	}
	cp := *reg
	f.regs[reg.ID] = &cp
	return nil
}

func (f *registrationFake) Transition(ctx context.Context, id string, to models.RegistrationStatus, check func(reg *models.Registration, t *models.Tournament, approved int64) error) (*models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.regs[id]
	if !ok {
		return nil, &services.NotFoundError{Entity: "Registration"}
	}
	var approved int64
	for _, r := range f.regs {
		if r.Status == models.RegistrationApproved {
			approved++
		}
	}
	if err := check(reg, f.tournament, approved); err != nil {
		return nil, err
	}
	reg.Status = to
	out := *reg
	return &out, nil
}

type registrationFakeRepo struct{ *registrationFake }

func (r registrationFakeRepo) Create(ctx context.Context, reg *models.Registration) error {
	return errors.New("not supported")
}

func (r registrationFakeRepo) Get(ctx context.Context, id string, preloads ...repository.Preload) (*models.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *reg
	return &out, nil
}

func (r registrationFakeRepo) List(ctx context.Context, q repository.Query) ([]models.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Registration{}
	for _, reg := range r.regs {
		if v, ok := q.Filters["user_id"]; ok && v != reg.UserID {
			continue
		}
		out = append(out, *reg)
	}
	return out, nil
}

func (r registrationFakeRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return errors.New("not supported")
}

func (r registrationFakeRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.regs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.regs, id)
	return nil
}

func (r registrationFakeRepo) Count(ctx context.Context, filters map[string]interface{}) (int64, error) {
	return int64(len(r.regs)), nil
}

func newRegistrationApp(maxParticipants int) *fiber.App {
	fake := &registrationFake{
		tournament: &models.Tournament{ID: "t1", OrganizerID: "org", Status: models.TournamentUpcoming, MaxParticipants: &maxParticipants},
		regs:       map[string]*models.Registration{},
	}
	resolver := tokenResolver{
		"org":   {ID: "org", Role: models.RoleOrganizer},
		"admin": {ID: "admin", Role: models.RoleAdmin},
		"u1":    {ID: "u1", Role: models.RoleUser},
		"u2":    {ID: "u2", Role: models.RoleUser},
	}
	svc := &services.RegistrationService{Repo: registrationFakeRepo{fake}, Store: fake}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	SetupRegistrationRoutes(app.Group("/api"), &RegistrationHandler{Service: svc}, middleware.SessionAuth(resolver))
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]interface{}{}
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func registerUser(t *testing.T, app *fiber.App, token string) string {
	t.Helper()
	status, body := call(t, app, "POST", "/api/registrations", token, `{"tournamentId":"t1"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("register %s: status %d body %v", token, status, body)
	}
	if body["status"] != "PENDING" || body["userId"] != token {
		t.Fatalf("register %s: unexpected body %v", token, body)
	}
	return body["id"].(string)
}

func TestRegistrationCapacityConflict(t *testing.T) {
	app := newRegistrationApp(1)
	r1 := registerUser(t, app, "u1")
	r2 := registerUser(t, app, "u2")

	status, body := call(t, app, "PATCH", "/api/registrations/"+r1, "org", `{"status":"APPROVED"}`)
	if status != fiber.StatusOK || body["status"] != "APPROVED" {
		t.Fatalf("approve r1: %d %v", status, body)
	}

	status, body = call(t, app, "PATCH", "/api/registrations/"+r2, "org", `{"status":"APPROVED"}`)
	if status != fiber.StatusConflict {
		t.Fatalf("approve r2: status %d, want 409 (%v)", status, body)
	}
	if _, ok := body["error"].(string); !ok {
		t.Fatalf("conflict body has no error message: %v", body)
	}
}

func TestRegistrationCancelThenApprove(t *testing.T) {
	app := newRegistrationApp(5)
	r1 := registerUser(t, app, "u1")

	if status, body := call(t, app, "PATCH", "/api/registrations/"+r1, "u1", `{"status":"CANCELLED"}`); status != fiber.StatusOK {
		t.Fatalf("cancel: %d %v", status, body)
	}
	if status, _ := call(t, app, "PATCH", "/api/registrations/"+r1, "org", `{"status":"APPROVED"}`); status != fiber.StatusConflict {
		t.Fatalf("approve cancelled: status %d, want 409", status)
	}
}

func TestRegistrationActorRules(t *testing.T) {
	app := newRegistrationApp(5)
	r1 := registerUser(t, app, "u1")

	if status, _ := call(t, app, "PATCH", "/api/registrations/"+r1, "u1", `{"status":"APPROVED"}`); status != fiber.StatusForbidden {
		t.Errorf("self approval: status %d, want 403", status)
	}
	if status, _ := call(t, app, "PATCH", "/api/registrations/"+r1, "u2", `{"status":"CANCELLED"}`); status != fiber.StatusForbidden {
		t.Errorf("cancel by stranger: status %d, want 403", status)
	}
	if status, _ := call(t, app, "PATCH", "/api/registrations/"+r1, "org", `{}`); status != fiber.StatusBadRequest {
		t.Errorf("missing status: status %d, want 400", status)
	}
	if status, _ := call(t, app, "PATCH", "/api/registrations/missing", "org", `{"status":"APPROVED"}`); status != fiber.StatusNotFound {
		t.Errorf("unknown id: status %d, want 404", status)
	}
	if status, _ := call(t, app, "POST", "/api/registrations", "u2", `{"tournamentId":"t1","userId":"u1"}`); status != fiber.StatusForbidden {
		t.Errorf("registering someone else: status %d, want 403", status)
	}
	if status, _ := call(t, app, "POST", "/api/registrations", "u1", `{"tournamentId":"t1"}`); status != fiber.StatusConflict {
		t.Errorf("duplicate registration: status %d, want 409", status)
	}
}

func TestRegistrationRequiresSession(t *testing.T) {
	app := newRegistrationApp(5)
	if status, body := call(t, app, "GET", "/api/registrations", "", ""); status != fiber.StatusUnauthorized {
		t.Fatalf("status %d, want 401 (%v)", status, body)
	}
}

func TestRegistrationDeleteIsAdminOnly(t *testing.T) {
	app := newRegistrationApp(5)
	r1 := registerUser(t, app, "u1")

	if status, _ := call(t, app, "DELETE", "/api/registrations/"+r1, "org", ""); status != fiber.StatusForbidden {
		t.Errorf("organizer delete: status %d, want 403", status)
	}
	status, body := call(t, app, "DELETE", "/api/registrations/"+r1, "admin", "")
	if status != fiber.StatusOK || body["message"] != "Registration deleted successfully" {
		t.Errorf("admin delete: %d %v", status, body)
	}
}
