package engine_test

import (
	"errors"
	"testing"

	"binsight/internal/engine"
	"binsight/internal/repo"
)

func TestCreateAdminAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	a, err := env.Engine.CreateAdmin(env.Ctx, "marie", "marie@example.org", "un-bon-secret")
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if a.PasswordHash == "un-bon-secret" {
		t.Fatalf("password stored in clear")
	}

	got, err := env.Engine.Authenticate(env.Ctx, "marie", "un-bon-secret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != a.ID {
		t.Fatalf("expected admin %s, got %s", a.ID, got.ID)
	}

	if _, err := env.Engine.Authenticate(env.Ctx, "marie", "mauvais"); !errors.Is(err, engine.ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
	if _, err := env.Engine.Authenticate(env.Ctx, "inconnue", "un-bon-secret"); !errors.Is(err, engine.ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
}

func TestCreateAdminValidation(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Engine.CreateAdmin(env.Ctx, "", "a@b.c", "un-bon-secret"); err == nil {
		t.Fatalf("expected username error")
	}
	if _, err := env.Engine.CreateAdmin(env.Ctx, "marie", "a@b.c", "court"); err == nil {
		t.Fatalf("expected short password error")
	}
}

func TestCreateAdminDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Engine.CreateAdmin(env.Ctx, "marie", "marie@example.org", "un-bon-secret"); err != nil {
		t.Fatal(err)
	}
	_, err := env.Engine.CreateAdmin(env.Ctx, "marie", "autre@example.org", "un-bon-secret")
	if !errors.Is(err, repo.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}
