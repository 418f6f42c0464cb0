package repository

import (
	"context"
	"errors"
	"os"
	"testing"

	"tournament-dashboard/db"
	"tournament-dashboard/models"

	"github.com/google/uuid"
)

func TestGormRepositoryCRUD(t *testing.T) {
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

	ctx := context.Background()
	repo := New[models.User](gdb)
	marker := uuid.NewString()
	u := &models.User{ID: uuid.NewString(), Email: marker + "@example.com", Role: models.RoleUser}

	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := repo.Get(ctx, u.ID)
	if err != nil || got.Email != u.Email {
		t.Fatalf("get = %+v, %v", got, err)
	}

	if err := repo.Update(ctx, u.ID, map[string]interface{}{"role": models.RoleOrganizer}); err != nil {
		t.Fatalf("update: %v", err)
	}
	list, err := repo.List(ctx, Query{Filters: Filters{}.Set("email", u.Email)})
	if err != nil || len(list) != 1 || list[0].Role != models.RoleOrganizer {
		t.Fatalf("list = %+v, %v", list, err)
	}
	n, err := repo.Count(ctx, Filters{}.Set("id", u.ID))
	if err != nil || n != 1 {
		t.Fatalf("count = %d, %v", n, err)
	}

	if err := repo.Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete err = %v, want ErrNotFound", err)
	}
	if err := repo.Update(ctx, u.ID, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing err = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete missing err = %v, want ErrNotFound", err)
	}
}
