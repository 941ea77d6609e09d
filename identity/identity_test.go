package identity

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newService(t *testing.T) *GormService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewGormService(db)
}

func TestCreateAndLookup(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	id := &Identity{UID: "u1", Email: "chef@test.local", PasswordHash: "x", Name: "Chef", Role: "Kitchen Staff"}
	if err := s.Create(ctx, id); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := s.Lookup(ctx, "u1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if got.Email != "chef@test.local" || got.Role != "Kitchen Staff" {
		t.Errorf("unexpected identity: %+v", got)
	}

	byEmail, err := s.LookupByEmail(ctx, "chef@test.local")
	if err != nil || byEmail.UID != "u1" {
		t.Errorf("lookup by email failed: %v %+v", err, byEmail)
	}

	if _, err := s.Lookup(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetRoleClaim(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_ = s.Create(ctx, &Identity{UID: "u1", Email: "chef@test.local", PasswordHash: "x", Role: "Staff"})

	if err := s.SetRoleClaim(ctx, "u1", "Admin"); err != nil {
		t.Fatalf("set role claim failed: %v", err)
	}
	got, _ := s.Lookup(ctx, "u1")
	if got.Role != "Admin" {
		t.Errorf("claim not updated: %q", got.Role)
	}

	if err := s.SetRoleClaim(ctx, "ghost", "Admin"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown uid, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_ = s.Create(ctx, &Identity{UID: "u1", Email: "chef@test.local", PasswordHash: "x"})

	if err := s.Delete(ctx, "u1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.Lookup(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("identity should be gone, got %v", err)
	}
	if err := s.Delete(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete should report ErrNotFound, got %v", err)
	}
}
